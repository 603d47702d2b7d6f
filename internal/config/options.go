package config

// GenericOptions are the law-independent knobs. Nil means "not supplied".
type GenericOptions struct {
	IgnoreKeysRegex       *string `json:"ignore_keys_regex,omitempty"`
	PathFilter            *string `json:"path_filter,omitempty"`
	OutputFormat          *string `json:"output_format,omitempty"`
	ShowDetails           *bool   `json:"show_details,omitempty"`
	ShowRecommendations   *bool   `json:"show_recommendations,omitempty"`
	UseMemoryOptimization *bool   `json:"use_memory_optimization,omitempty"`
	BatchSize             *int    `json:"batch_size,omitempty"`
}

// LawOptions are the analyzer tuning knobs. Nil means "not supplied".
type LawOptions struct {
	RiskThreshold               *string  `json:"risk_threshold,omitempty"`
	ConfidenceLevel             *float64 `json:"confidence_level,omitempty"`
	AnalysisThreshold           *float64 `json:"analysis_threshold,omitempty"`
	SignificanceLevel           *float64 `json:"significance_level,omitempty"`
	MinSampleSize               *int     `json:"min_sample_size,omitempty"`
	EnableOutlierDetection      *bool    `json:"enable_outlier_detection,omitempty"`
	BenfordDigits               *string  `json:"benford_digits,omitempty"`
	BenfordBase                 *int     `json:"benford_base,omitempty"`
	ParetoRatio                 *float64 `json:"pareto_ratio,omitempty"`
	ParetoCategoryLimit         *int     `json:"pareto_category_limit,omitempty"`
	ZipfRankLimit               *int     `json:"zipf_rank_limit,omitempty"`
	ZipfFrequencyCutoff         *float64 `json:"zipf_frequency_cutoff,omitempty"`
	GenerateCount               *int     `json:"generate_count,omitempty"`
	GenerateRangeMin            *float64 `json:"generate_range_min,omitempty"`
	GenerateRangeMax            *float64 `json:"generate_range_max,omitempty"`
	GenerateSeed                *string  `json:"generate_seed,omitempty"`
	EnableJapaneseNumerals      *bool    `json:"enable_japanese_numerals,omitempty"`
	EnableInternationalNumerals *bool    `json:"enable_international_numerals,omitempty"`
	EnableParallelProcessing    *bool    `json:"enable_parallel_processing,omitempty"`
	MemoryLimitMB               *int     `json:"memory_limit_mb,omitempty"`
	Laws                        []string `json:"laws,omitempty"`
}

// Options is the flat record accepted at the boundary; it splits into the
// two layered records the resolver consumes.
type Options struct {
	GenericOptions
	LawOptions
}

// Split returns the generic and law-specific halves.
func (o *Options) Split() (*GenericOptions, *LawOptions) {
	if o == nil {
		return nil, nil
	}
	g, l := o.GenericOptions, o.LawOptions
	return &g, &l
}

// Ptr returns a pointer to v; handy for building option records.
func Ptr[T any](v T) *T {
	return &v
}
