// Package reader loads datasets from files, streams and JSON documents into
// law.Input values.
package reader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"lawkit/domain/law"
	"lawkit/internal/analysis"
	"lawkit/internal/errors"
	"lawkit/internal/numeral"
)

// Format names a dataset encoding.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Options controls how raw files become datasets.
type Options struct {
	// Format overrides detection by extension or content.
	Format Format
	// Words turns prose into word frequencies instead of reading numbers.
	Words bool
	// Sheet selects the XLSX sheet; the first sheet when empty.
	Sheet string
}

// DataReader reads datasets for the analyzers
type DataReader struct {
	opts   Options
	logger *slog.Logger
}

// NewDataReader creates a reader; a nil logger uses slog.Default.
func NewDataReader(opts Options, logger *slog.Logger) *DataReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataReader{opts: opts, logger: logger.With("component", "reader")}
}

// ReadFiles reads every file and concatenates their datasets in argument order.
func (r *DataReader) ReadFiles(paths []string) (law.Input, error) {
	var input law.Input
	for _, p := range paths {
		in, err := r.ReadFile(p)
		if err != nil {
			return law.Input{}, err
		}
		input.Datasets = append(input.Datasets, in.Datasets...)
		if in.Spec != nil {
			input.Spec = in.Spec
		}
	}
	return input, nil
}

// ReadFile reads one file, choosing the format by extension.
func (r *DataReader) ReadFile(path string) (law.Input, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return law.Input{}, errors.InvalidInput(fmt.Sprintf("file not found: %s", path))
	}

	format := r.opts.Format
	if format == FormatAuto {
		format = formatFromExtension(path)
	}

	startTime := time.Now()
	if format == FormatXLSX {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return law.Input{}, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open Excel file")
		}
		defer f.Close()
		in, err := r.readWorkbook(f, path)
		r.logger.Debug("read workbook", "path", path, "elapsed", time.Since(startTime))
		return in, err
	}

	file, err := os.Open(path)
	if err != nil {
		return law.Input{}, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open file")
	}
	defer file.Close()

	in, err := r.readAs(file, path, format)
	r.logger.Debug("read file", "path", path, "format", format, "datasets", len(in.Datasets), "elapsed", time.Since(startTime))
	return in, err
}

// Read reads a stream such as stdin. Without an explicit format the content
// decides: JSON when it starts with '[' or '{', text otherwise.
func (r *DataReader) Read(src io.Reader, name string) (law.Input, error) {
	format := r.opts.Format
	if format == FormatAuto {
		buffered := bufio.NewReader(src)
		format = sniff(buffered)
		src = buffered
	}
	if format == FormatXLSX {
		f, err := excelize.OpenReader(src)
		if err != nil {
			return law.Input{}, errors.Wrap(errors.InvalidInput(err.Error()), "failed to open Excel stream")
		}
		defer f.Close()
		return r.readWorkbook(f, name)
	}
	return r.readAs(src, name, format)
}

func (r *DataReader) readAs(src io.Reader, name string, format Format) (law.Input, error) {
	switch format {
	case FormatCSV, FormatTSV:
		reader := csv.NewReader(src)
		reader.FieldsPerRecord = -1
		reader.TrimLeadingSpace = true
		if format == FormatTSV {
			reader.Comma = '\t'
		}
		rows, err := reader.ReadAll()
		if err != nil {
			return law.Input{}, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read CSV")
		}
		return law.Input{Datasets: columns(rows, name)}, nil
	case FormatJSON:
		data, err := io.ReadAll(src)
		if err != nil {
			return law.Input{}, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read JSON")
		}
		return FromJSON(data, name)
	default:
		data, err := io.ReadAll(src)
		if err != nil {
			return law.Input{}, errors.Wrap(errors.InvalidInput(err.Error()), "failed to read text")
		}
		return r.fromText(string(data), name), nil
	}
}

func (r *DataReader) readWorkbook(f *excelize.File, name string) (law.Input, error) {
	sheet := r.opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return law.Input{}, errors.InvalidInput("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return law.Input{}, errors.Wrap(errors.InvalidInput(err.Error()), fmt.Sprintf("failed to read sheet %s", sheet))
	}
	return law.Input{Datasets: columns(rows, name)}, nil
}

// fromText splits on whitespace. In word mode the text becomes a descending
// list of word frequencies.
func (r *DataReader) fromText(text, name string) law.Input {
	if r.opts.Words {
		return law.NewInput(name, analysis.TokenFrequencies(text))
	}
	return law.Input{Datasets: []law.Dataset{{Path: name, Tokens: strings.Fields(text)}}}
}

// columns turns a table into one dataset per column. A first row with no
// numeric cell is a header and names the columns; a single column keeps the
// source name as its path.
func columns(rows [][]string, name string) []law.Dataset {
	if len(rows) == 0 {
		return []law.Dataset{{Path: name}}
	}

	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	var headers []string
	if isHeader(rows[0]) {
		headers = rows[0]
		rows = rows[1:]
	}

	datasets := make([]law.Dataset, width)
	for c := range datasets {
		path := name
		if width > 1 {
			label := fmt.Sprintf("column%d", c+1)
			if c < len(headers) && strings.TrimSpace(headers[c]) != "" {
				label = strings.TrimSpace(headers[c])
			}
			path = name + "#" + label
		}
		datasets[c].Path = path
	}

	for _, row := range rows {
		for c, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			datasets[c].Tokens = append(datasets[c].Tokens, cell)
		}
	}
	return datasets
}

func isHeader(row []string) bool {
	nonEmpty := 0
	for _, cell := range row {
		if strings.TrimSpace(cell) == "" {
			continue
		}
		nonEmpty++
		if _, err := numeral.Parse(cell, numeral.Options{Japanese: true, International: true}); err == nil {
			return false
		}
	}
	return nonEmpty > 0
}

func formatFromExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".tsv", ".tab":
		return FormatTSV
	case ".xlsx", ".xlsm":
		return FormatXLSX
	case ".json":
		return FormatJSON
	default:
		return FormatText
	}
}

func sniff(r *bufio.Reader) Format {
	peek, _ := r.Peek(512)
	trimmed := bytes.TrimLeft(peek, " \t\r\n\uFEFF")
	switch {
	case len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{'):
		return FormatJSON
	case bytes.HasPrefix(trimmed, []byte("PK\x03\x04")):
		return FormatXLSX
	default:
		return FormatText
	}
}
