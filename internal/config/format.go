package config

import (
	"fmt"
	"strings"
)

// OutputFormat is one of the renderings supported by adapters/render.
type OutputFormat string

const (
	FormatText     OutputFormat = "text"
	FormatJSON     OutputFormat = "json"
	FormatCSV      OutputFormat = "csv"
	FormatYAML     OutputFormat = "yaml"
	FormatTOML     OutputFormat = "toml"
	FormatXML      OutputFormat = "xml"
	FormatMarkdown OutputFormat = "markdown"
	FormatHTML     OutputFormat = "html"
)

// Formats is the closed set of output formats.
var Formats = []OutputFormat{FormatText, FormatJSON, FormatCSV, FormatYAML, FormatTOML, FormatXML, FormatMarkdown, FormatHTML}

// ParseFormat matches case-insensitively; "yml" and "md" are accepted aliases.
func ParseFormat(s string) (OutputFormat, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "yml":
		return FormatYAML, nil
	case "md":
		return FormatMarkdown, nil
	}
	for _, f := range Formats {
		if string(f) == v {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported output format %q", s)
}
