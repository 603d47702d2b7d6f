package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"lawkit/domain/law"
)

// writeText prints a human-readable report. Array fields appear only in
// detail mode; advice lists only when recommendations are requested.
func writeText(w io.Writer, results []law.Result, s Settings) error {
	bw := bufio.NewWriter(w)
	for i, r := range results {
		if i > 0 {
			fmt.Fprintln(bw)
		}
		fs, err := fields(r)
		if err != nil {
			return err
		}

		heading := title(r)
		fmt.Fprintln(bw, heading)
		fmt.Fprintln(bw, strings.Repeat("=", len([]rune(heading))))

		var lists []field
		for _, f := range fs {
			switch {
			case f.Key == "result_type" || f.Key == "path" || f.Key == "analysis_summary":
				continue
			case listKeys[f.Key]:
				lists = append(lists, f)
			case f.Value.IsArray() || f.Value.IsObject():
				if s.ShowDetails {
					fmt.Fprintf(bw, "  %-28s %s\n", label(f.Key)+":", compact(f))
				}
			default:
				fmt.Fprintf(bw, "  %-28s %s\n", label(f.Key)+":", scalar(f.Value))
			}
		}

		if summary := findField(fs, "analysis_summary"); summary != "" {
			fmt.Fprintf(bw, "\n%s\n", summary)
		}

		for _, f := range lists {
			items := f.Value.Array()
			if len(items) == 0 {
				continue
			}
			if f.Key == "recommendations" && !s.ShowRecommendations {
				continue
			}
			fmt.Fprintf(bw, "\n%s:\n", label(f.Key))
			for _, item := range items {
				fmt.Fprintf(bw, "  - %s\n", scalar(item))
			}
		}
	}
	return bw.Flush()
}

func label(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// compact renders an array or object on one line, numbers shortened.
func compact(f field) string {
	if f.Value.IsObject() {
		return f.Value.Raw
	}
	var parts []string
	for _, item := range f.Value.Array() {
		if item.IsObject() {
			parts = append(parts, item.Raw)
			continue
		}
		parts = append(parts, scalar(item))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func findField(fs []field, key string) string {
	for _, f := range fs {
		if f.Key == key {
			return scalar(f.Value)
		}
	}
	return ""
}
