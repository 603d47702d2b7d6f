package render

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"lawkit/domain/law"
)

// writeCSV writes one row per result. Columns are the union of all fields in
// order of first appearance; nested values are embedded as JSON, and only in
// detail mode.
func writeCSV(w io.Writer, results []law.Result, s Settings) error {
	var header []string
	seen := map[string]bool{}
	rows := make([]map[string]string, 0, len(results))

	for _, r := range results {
		fs, err := fields(r)
		if err != nil {
			return err
		}
		row := make(map[string]string, len(fs))
		for _, f := range fs {
			nested := f.Value.IsArray() || f.Value.IsObject()
			if nested && !s.ShowDetails && !listKeys[f.Key] {
				continue
			}
			if f.Key == "recommendations" && !s.ShowRecommendations {
				continue
			}
			if !seen[f.Key] {
				seen[f.Key] = true
				header = append(header, f.Key)
			}
			if nested {
				row[f.Key] = f.Value.Raw
			} else {
				row[f.Key] = scalar(f.Value)
			}
		}
		rows = append(rows, row)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		record := make([]string, len(header))
		for i, key := range header {
			record[i] = row[key]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeMarkdown(w io.Writer, results []law.Result, s Settings) error {
	md, err := markdownReport(results, s)
	if err != nil {
		return err
	}
	_, err = w.Write(md)
	return err
}

// writeHTML renders the markdown report as a standalone page.
func writeHTML(w io.Writer, results []law.Result, s Settings) error {
	md, err := markdownReport(results, s)
	if err != nil {
		return err
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Title: "lawkit report",
		Flags: html.CommonFlags | html.CompletePage,
	})
	_, err = w.Write(markdown.ToHTML(md, p, renderer))
	return err
}

func markdownReport(results []law.Result, s Settings) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("# lawkit report\n")
	for _, r := range results {
		fs, err := fields(r)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&buf, "\n## %s\n\n", escapeMarkdown(title(r)))
		if summary := findField(fs, "analysis_summary"); summary != "" {
			fmt.Fprintf(&buf, "%s\n\n", escapeMarkdown(summary))
		}

		buf.WriteString("| Metric | Value |\n|---|---|\n")
		var lists []field
		for _, f := range fs {
			switch {
			case f.Key == "result_type" || f.Key == "path" || f.Key == "analysis_summary":
				continue
			case listKeys[f.Key]:
				lists = append(lists, f)
			case f.Value.IsArray() || f.Value.IsObject():
				if s.ShowDetails {
					fmt.Fprintf(&buf, "| %s | %s |\n", label(f.Key), escapeMarkdown(compact(f)))
				}
			default:
				fmt.Fprintf(&buf, "| %s | %s |\n", label(f.Key), escapeMarkdown(scalar(f.Value)))
			}
		}

		for _, f := range lists {
			items := f.Value.Array()
			if len(items) == 0 || (f.Key == "recommendations" && !s.ShowRecommendations) {
				continue
			}
			fmt.Fprintf(&buf, "\n### %s\n\n", label(f.Key))
			for _, item := range items {
				fmt.Fprintf(&buf, "- %s\n", escapeMarkdown(scalar(item)))
			}
		}
	}
	return buf.Bytes(), nil
}

var markdownEscaper = strings.NewReplacer("|", "\\|", "*", "\\*", "_", "\\_")

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
