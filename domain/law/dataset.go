package law

// Dataset is one named sequence of observations. Numbers are ready to use;
// Tokens are textual values that still have to pass through numeral
// normalization. Analyzers never modify either slice.
type Dataset struct {
	Path    string
	Numbers []float64
	Tokens  []string
}

// Len returns the number of raw observations before normalization.
func (d Dataset) Len() int {
	return len(d.Numbers) + len(d.Tokens)
}

// GenerateSpec carries generation parameters supplied with the request.
// Every field is optional and overrides the configuration's generate_* values.
type GenerateSpec struct {
	Distribution string             `json:"type,omitempty"`
	Count        *int               `json:"count,omitempty"`
	Min          *float64           `json:"min,omitempty"`
	Max          *float64           `json:"max,omitempty"`
	Seed         *uint64            `json:"seed,omitempty"`
	Params       map[string]float64 `json:"params,omitempty"`
}

// Input is everything an analysis call consumes besides configuration.
type Input struct {
	Datasets []Dataset
	Spec     *GenerateSpec
}

// NewInput wraps plain numbers into a single-dataset input.
func NewInput(path string, numbers []float64) Input {
	return Input{Datasets: []Dataset{{Path: path, Numbers: numbers}}}
}

// EstimatedBytes approximates the in-memory footprint of the input values.
func (in Input) EstimatedBytes() int64 {
	var n int64
	for _, ds := range in.Datasets {
		n += int64(len(ds.Numbers)) * 8
		for _, tok := range ds.Tokens {
			n += int64(len(tok)) + 16
		}
	}
	return n
}
