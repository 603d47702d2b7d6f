package reader

import (
	"fmt"

	"github.com/tidwall/gjson"

	"lawkit/domain/law"
	"lawkit/internal/errors"
)

var specKeys = map[string]bool{
	"type": true, "count": true, "min": true, "max": true, "seed": true, "params": true,
}

// FromJSON interprets a JSON document as analysis input:
//   - an array is one dataset named name;
//   - an object whose keys are all generation fields is a GenerateSpec;
//   - any other object yields one dataset per array it contains, keyed by
//     the dotted path of that array.
func FromJSON(data []byte, name string) (law.Input, error) {
	if !gjson.ValidBytes(data) {
		return law.Input{}, errors.InvalidInput("malformed JSON document")
	}
	return FromResult(gjson.ParseBytes(data), name)
}

// FromResult is FromJSON for an already parsed value.
func FromResult(doc gjson.Result, name string) (law.Input, error) {
	switch {
	case doc.IsArray():
		return law.Input{Datasets: []law.Dataset{arrayDataset(doc, name)}}, nil
	case doc.IsObject():
		if isSpec(doc) {
			spec, err := parseSpec(doc)
			if err != nil {
				return law.Input{}, err
			}
			return law.Input{Spec: spec}, nil
		}
		var datasets []law.Dataset
		collectArrays(doc, "", &datasets)
		if len(datasets) == 0 {
			return law.Input{}, errors.InvalidInput("JSON object contains no arrays")
		}
		return law.Input{Datasets: datasets}, nil
	default:
		return law.Input{}, errors.InvalidInput(fmt.Sprintf("expected a JSON array or object, got %s", doc.Type))
	}
}

// arrayDataset keeps numbers as numbers and everything else as tokens, so
// that null or boolean entries surface as missing values downstream.
func arrayDataset(arr gjson.Result, path string) law.Dataset {
	ds := law.Dataset{Path: path}
	arr.ForEach(func(_, v gjson.Result) bool {
		switch v.Type {
		case gjson.Number:
			ds.Numbers = append(ds.Numbers, v.Float())
		case gjson.String:
			ds.Tokens = append(ds.Tokens, v.Str)
		default:
			ds.Tokens = append(ds.Tokens, v.Raw)
		}
		return true
	})
	return ds
}

func collectArrays(obj gjson.Result, prefix string, out *[]law.Dataset) {
	obj.ForEach(func(key, v gjson.Result) bool {
		path := key.String()
		if prefix != "" {
			path = prefix + "." + path
		}
		switch {
		case v.IsArray():
			*out = append(*out, arrayDataset(v, path))
		case v.IsObject():
			collectArrays(v, path, out)
		}
		return true
	})
}

func isSpec(obj gjson.Result) bool {
	n := 0
	spec := true
	obj.ForEach(func(key, _ gjson.Result) bool {
		n++
		if !specKeys[key.String()] {
			spec = false
			return false
		}
		return true
	})
	return spec && n > 0
}

func parseSpec(obj gjson.Result) (*law.GenerateSpec, error) {
	spec := &law.GenerateSpec{Distribution: obj.Get("type").String()}

	if v := obj.Get("count"); v.Exists() {
		if v.Type != gjson.Number {
			return nil, errors.InvalidInput("generation count must be a number")
		}
		c := int(v.Int())
		spec.Count = &c
	}
	for key, dst := range map[string]**float64{"min": &spec.Min, "max": &spec.Max} {
		if v := obj.Get(key); v.Exists() {
			if v.Type != gjson.Number {
				return nil, errors.InvalidInput(fmt.Sprintf("generation %s must be a number", key))
			}
			f := v.Float()
			*dst = &f
		}
	}
	if v := obj.Get("seed"); v.Exists() {
		if v.Type != gjson.Number && v.Type != gjson.String {
			return nil, errors.InvalidInput("generation seed must be a number")
		}
		s := v.Uint()
		spec.Seed = &s
	}
	if v := obj.Get("params"); v.Exists() {
		if !v.IsObject() {
			return nil, errors.InvalidInput("generation params must be an object")
		}
		spec.Params = make(map[string]float64)
		v.ForEach(func(key, p gjson.Result) bool {
			spec.Params[key.String()] = p.Float()
			return true
		})
	}
	return spec, nil
}
