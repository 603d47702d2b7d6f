package render

import (
	"encoding/json"
	"encoding/xml"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"lawkit/domain/law"
)

func writeJSON(w io.Writer, results []law.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []law.Result{}
	}
	return enc.Encode(results)
}

func genericAll(results []law.Result) ([]any, error) {
	out := make([]any, 0, len(results))
	for _, r := range results {
		m, err := generic(r)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func writeYAML(w io.Writer, results []law.Result) error {
	docs, err := genericAll(results)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]any{"results": docs}); err != nil {
		return err
	}
	return enc.Close()
}

// writeTOML emits the results as an array of tables; TOML has no top-level
// arrays.
func writeTOML(w io.Writer, results []law.Result) error {
	docs, err := genericAll(results)
	if err != nil {
		return err
	}
	return toml.NewEncoder(w).Encode(map[string]any{"results": docs})
}

func writeXML(w io.Writer, results []law.Result) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "results"}}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}
	for _, r := range results {
		fs, err := fields(r)
		if err != nil {
			return err
		}
		start := xml.StartElement{
			Name: xml.Name{Local: "result"},
			Attr: []xml.Attr{
				{Name: xml.Name{Local: "type"}, Value: string(r.Type())},
				{Name: xml.Name{Local: "path"}, Value: r.SourcePath()},
			},
		}
		if err := enc.EncodeToken(start); err != nil {
			return err
		}
		for _, f := range fs {
			if f.Key == "result_type" || f.Key == "path" {
				continue
			}
			if err := encodeXMLValue(enc, f.Key, f.Value); err != nil {
				return err
			}
		}
		if err := enc.EncodeToken(start.End()); err != nil {
			return err
		}
	}
	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	if err := enc.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeXMLValue(enc *xml.Encoder, name string, v gjson.Result) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	var err error
	switch {
	case v.IsArray():
		for _, item := range v.Array() {
			if err = encodeXMLValue(enc, "item", item); err != nil {
				return err
			}
		}
	case v.IsObject():
		v.ForEach(func(key, value gjson.Result) bool {
			err = encodeXMLValue(enc, key.String(), value)
			return err == nil
		})
		if err != nil {
			return err
		}
	default:
		if err = enc.EncodeToken(xml.CharData(scalar(v))); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
