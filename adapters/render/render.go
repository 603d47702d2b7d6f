// Package render writes analysis results in every supported output format.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

// Settings are the presentation switches taken from the resolved
// configuration.
type Settings struct {
	Format              config.OutputFormat
	ShowDetails         bool
	ShowRecommendations bool
}

// SettingsFrom extracts the presentation switches of cfg.
func SettingsFrom(cfg *config.Resolved) Settings {
	if cfg == nil {
		cfg = config.Default()
	}
	return Settings{
		Format:              cfg.OutputFormat,
		ShowDetails:         cfg.ShowDetails,
		ShowRecommendations: cfg.ShowRecommendations,
	}
}

// Render writes results to w in the configured format.
func Render(w io.Writer, results []law.Result, s Settings) error {
	switch s.Format {
	case config.FormatText, "":
		return writeText(w, results, s)
	case config.FormatJSON:
		return writeJSON(w, results)
	case config.FormatCSV:
		return writeCSV(w, results, s)
	case config.FormatYAML:
		return writeYAML(w, results)
	case config.FormatTOML:
		return writeTOML(w, results)
	case config.FormatXML:
		return writeXML(w, results)
	case config.FormatMarkdown:
		return writeMarkdown(w, results, s)
	case config.FormatHTML:
		return writeHTML(w, results, s)
	default:
		return errors.InvalidConfigurationf("output_format", "unsupported format %q", s.Format)
	}
}

// field is one top-level key of a result's JSON encoding.
type field struct {
	Key   string
	Value gjson.Result
}

// fields returns the encoded fields of r in declaration order, discriminant
// first.
func fields(r law.Result) ([]field, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", r.Type())
	}
	var out []field
	gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
		out = append(out, field{Key: key.String(), Value: value})
		return true
	})
	return out, nil
}

// generic converts r into plain maps and slices for the yaml and toml
// encoders.
func generic(r law.Result) (map[string]any, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s", r.Type())
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "decode %s", r.Type())
	}
	return m, nil
}

// listKeys name the fields holding advice rather than measurements.
var listKeys = map[string]bool{
	"recommendations":     true,
	"conflicting_results": true,
	"findings":            true,
	"issues_found":        true,
}

func title(r law.Result) string {
	names := map[law.ResultType]string{
		law.TypeBenford:     "Benford's Law Analysis",
		law.TypePareto:      "Pareto Principle Analysis",
		law.TypeZipf:        "Zipf's Law Analysis",
		law.TypeNormal:      "Normal Distribution Analysis",
		law.TypePoisson:     "Poisson Distribution Analysis",
		law.TypeIntegration: "Multi-Law Integration Analysis",
		law.TypeValidation:  "Data Validation",
		law.TypeDiagnostic:  "Diagnostic Report",
		law.TypeGenerated:   "Generated Data",
	}
	name, ok := names[r.Type()]
	if !ok {
		name = string(r.Type())
	}
	if p := r.SourcePath(); p != "" {
		return fmt.Sprintf("%s: %s", name, p)
	}
	return name
}

// scalar formats a leaf value for text, csv and markdown cells.
func scalar(v gjson.Result) string {
	switch v.Type {
	case gjson.Number:
		return formatNumber(v.Float())
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) && f < 1e15 && f > -1e15 {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%.6g", f)
}
