package config

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"lawkit/domain/law"
	"lawkit/internal/errors"
)

// DigitMode selects which leading digits the Benford analyzer extracts.
type DigitMode string

const (
	DigitsFirst  DigitMode = "first"
	DigitsSecond DigitMode = "second"
	DigitsBoth   DigitMode = "both"
)

const (
	DefaultBatchSize         = 10000
	DefaultRiskThreshold     = law.RiskHigh
	DefaultConfidenceLevel   = 0.95
	DefaultSignificanceLevel = 0.05
	DefaultAnalysisThreshold = 1.5
	DefaultMinSampleSize     = 30
	DefaultBenfordBase       = 10
	DefaultParetoRatio       = 0.8
	DefaultGenerateCount     = 1000

	// MaxGenerateCount bounds one generated sample to about 80 MB of values.
	MaxGenerateCount = 10_000_000

	minBenfordBase = 3
	maxBenfordBase = 36
)

// Resolved is the immutable configuration handed to the dispatcher and
// every analyzer of one call.
type Resolved struct {
	IgnoreKeys            *regexp.Regexp
	PathFilter            string
	OutputFormat          OutputFormat
	ShowDetails           bool
	ShowRecommendations   bool
	UseMemoryOptimization bool
	BatchSize             int

	// Law is nil when the caller supplied no law-specific option at all.
	Law *LawConfig
}

// LawConfig is the law-specific half of a resolved configuration with every
// default applied.
type LawConfig struct {
	RiskThreshold               law.RiskLevel
	ConfidenceLevel             float64
	AnalysisThreshold           float64
	SignificanceLevel           float64
	MinSampleSize               int
	EnableOutlierDetection      bool
	BenfordDigits               DigitMode
	BenfordBase                 int
	ParetoRatio                 float64
	ParetoCategoryLimit         int
	ZipfRankLimit               int
	ZipfFrequencyCutoff         float64
	GenerateCount               int
	GenerateRangeMin            *float64
	GenerateRangeMax            *float64
	GenerateSeed                *uint64
	EnableJapaneseNumerals      bool
	EnableInternationalNumerals bool
	EnableParallelProcessing    bool
	MemoryLimitMB               int
	Laws                        []law.ID
}

// DefaultLawConfig returns the documented defaults.
func DefaultLawConfig() LawConfig {
	return LawConfig{
		RiskThreshold:     DefaultRiskThreshold,
		ConfidenceLevel:   DefaultConfidenceLevel,
		AnalysisThreshold: DefaultAnalysisThreshold,
		SignificanceLevel: DefaultSignificanceLevel,
		MinSampleSize:     DefaultMinSampleSize,
		BenfordDigits:     DigitsFirst,
		BenfordBase:       DefaultBenfordBase,
		ParetoRatio:       DefaultParetoRatio,
		GenerateCount:     DefaultGenerateCount,
		Laws:              append([]law.ID(nil), law.SingleLaws...),
	}
}

// Default returns the configuration produced by resolving no options.
func Default() *Resolved {
	return &Resolved{
		OutputFormat: FormatText,
		BatchSize:    DefaultBatchSize,
	}
}

// LawSettings returns the law-specific record, or the defaults when the
// caller requested no law tuning.
func (r *Resolved) LawSettings() LawConfig {
	if r == nil || r.Law == nil {
		return DefaultLawConfig()
	}
	return *r.Law
}

// Resolve merges both option records over the defaults and validates the
// outcome. It never returns a partially applied configuration.
func Resolve(generic *GenericOptions, specific *LawOptions) (*Resolved, error) {
	resolved := Default()

	if generic != nil {
		if err := applyGeneric(resolved, generic); err != nil {
			return nil, err
		}
	}

	if specific != nil {
		lawCfg, present, err := resolveLaw(specific)
		if err != nil {
			return nil, err
		}
		if present {
			resolved.Law = lawCfg
		}
	}

	return resolved, nil
}

// ResolveOptions resolves the flat boundary record.
func ResolveOptions(opts *Options) (*Resolved, error) {
	g, l := opts.Split()
	return Resolve(g, l)
}

func applyGeneric(r *Resolved, g *GenericOptions) error {
	if g.IgnoreKeysRegex != nil {
		re, err := regexp.Compile(*g.IgnoreKeysRegex)
		if err != nil {
			return errors.InvalidConfiguration("ignore_keys_regex", err)
		}
		r.IgnoreKeys = re
	}
	if g.PathFilter != nil {
		r.PathFilter = *g.PathFilter
	}
	if g.OutputFormat != nil {
		format, err := ParseFormat(*g.OutputFormat)
		if err != nil {
			return errors.InvalidConfiguration("output_format", err)
		}
		r.OutputFormat = format
	}
	if g.ShowDetails != nil {
		r.ShowDetails = *g.ShowDetails
	}
	if g.ShowRecommendations != nil {
		r.ShowRecommendations = *g.ShowRecommendations
	}
	if g.UseMemoryOptimization != nil {
		r.UseMemoryOptimization = *g.UseMemoryOptimization
	}
	if g.BatchSize != nil {
		if *g.BatchSize < 0 {
			return errors.InvalidConfigurationf("batch_size", "must be >= 0, got %d", *g.BatchSize)
		}
		if *g.BatchSize > 0 {
			r.BatchSize = *g.BatchSize
		}
	}
	return nil
}

func resolveLaw(o *LawOptions) (*LawConfig, bool, error) {
	cfg := DefaultLawConfig()
	present := false

	if o.RiskThreshold != nil {
		level, err := law.ParseRiskLevel(*o.RiskThreshold)
		if err != nil {
			return nil, false, errors.InvalidConfiguration("risk_threshold", err)
		}
		cfg.RiskThreshold = level
		present = true
	}
	if o.ConfidenceLevel != nil {
		if err := openUnit("confidence_level", *o.ConfidenceLevel); err != nil {
			return nil, false, err
		}
		cfg.ConfidenceLevel = *o.ConfidenceLevel
		cfg.SignificanceLevel = 1 - *o.ConfidenceLevel
		present = true
	}
	if o.AnalysisThreshold != nil {
		v := *o.AnalysisThreshold
		if !finite(v) || v <= 0 {
			return nil, false, errors.InvalidConfigurationf("analysis_threshold", "must be a positive finite number, got %v", v)
		}
		cfg.AnalysisThreshold = v
		present = true
	}
	if o.SignificanceLevel != nil {
		if err := openUnit("significance_level", *o.SignificanceLevel); err != nil {
			return nil, false, err
		}
		cfg.SignificanceLevel = *o.SignificanceLevel
		present = true
	}
	if o.MinSampleSize != nil {
		if err := nonNegative("min_sample_size", *o.MinSampleSize); err != nil {
			return nil, false, err
		}
		if *o.MinSampleSize > 0 {
			cfg.MinSampleSize = *o.MinSampleSize
		}
		present = true
	}
	if o.EnableOutlierDetection != nil {
		cfg.EnableOutlierDetection = *o.EnableOutlierDetection
		present = true
	}
	if o.BenfordDigits != nil {
		mode := DigitMode(strings.ToLower(strings.TrimSpace(*o.BenfordDigits)))
		switch mode {
		case DigitsFirst, DigitsSecond, DigitsBoth:
		default:
			return nil, false, errors.InvalidConfigurationf("benford_digits", "want first, second or both, got %q", *o.BenfordDigits)
		}
		cfg.BenfordDigits = mode
		present = true
	}
	if o.BenfordBase != nil {
		b := *o.BenfordBase
		if b < minBenfordBase || b > maxBenfordBase {
			return nil, false, errors.InvalidConfigurationf("benford_base", "must be within [%d, %d], got %d", minBenfordBase, maxBenfordBase, b)
		}
		cfg.BenfordBase = b
		present = true
	}
	if o.ParetoRatio != nil {
		v := *o.ParetoRatio
		if !finite(v) || v <= 0 || v > 1 {
			return nil, false, errors.InvalidConfigurationf("pareto_ratio", "must be within (0, 1], got %v", v)
		}
		cfg.ParetoRatio = v
		present = true
	}
	if o.ParetoCategoryLimit != nil {
		if err := nonNegative("pareto_category_limit", *o.ParetoCategoryLimit); err != nil {
			return nil, false, err
		}
		cfg.ParetoCategoryLimit = *o.ParetoCategoryLimit
		present = true
	}
	if o.ZipfRankLimit != nil {
		if err := nonNegative("zipf_rank_limit", *o.ZipfRankLimit); err != nil {
			return nil, false, err
		}
		cfg.ZipfRankLimit = *o.ZipfRankLimit
		present = true
	}
	if o.ZipfFrequencyCutoff != nil {
		v := *o.ZipfFrequencyCutoff
		if !finite(v) || v < 0 {
			return nil, false, errors.InvalidConfigurationf("zipf_frequency_cutoff", "must be a finite number >= 0, got %v", v)
		}
		cfg.ZipfFrequencyCutoff = v
		present = true
	}
	if o.GenerateCount != nil {
		if err := nonNegative("generate_count", *o.GenerateCount); err != nil {
			return nil, false, err
		}
		if *o.GenerateCount > MaxGenerateCount {
			return nil, false, errors.InvalidConfigurationf("generate_count", "must not exceed %d, got %d", MaxGenerateCount, *o.GenerateCount)
		}
		if *o.GenerateCount > 0 {
			cfg.GenerateCount = *o.GenerateCount
		}
		present = true
	}
	if o.GenerateRangeMin != nil {
		if !finite(*o.GenerateRangeMin) {
			return nil, false, errors.InvalidConfigurationf("generate_range_min", "must be finite, got %v", *o.GenerateRangeMin)
		}
		cfg.GenerateRangeMin = Ptr(*o.GenerateRangeMin)
		present = true
	}
	if o.GenerateRangeMax != nil {
		if !finite(*o.GenerateRangeMax) {
			return nil, false, errors.InvalidConfigurationf("generate_range_max", "must be finite, got %v", *o.GenerateRangeMax)
		}
		cfg.GenerateRangeMax = Ptr(*o.GenerateRangeMax)
		present = true
	}
	if cfg.GenerateRangeMin != nil && cfg.GenerateRangeMax != nil && *cfg.GenerateRangeMin >= *cfg.GenerateRangeMax {
		return nil, false, errors.InvalidConfigurationf("generate_range_min", "must be below generate_range_max (%v >= %v)", *cfg.GenerateRangeMin, *cfg.GenerateRangeMax)
	}
	// An unparseable seed is dropped without error and does not mark the
	// law-specific record as present.
	if o.GenerateSeed != nil {
		if seed, err := strconv.ParseUint(strings.TrimSpace(*o.GenerateSeed), 10, 64); err == nil {
			cfg.GenerateSeed = Ptr(seed)
			present = true
		}
	}
	if o.EnableJapaneseNumerals != nil {
		cfg.EnableJapaneseNumerals = *o.EnableJapaneseNumerals
		present = true
	}
	if o.EnableInternationalNumerals != nil {
		cfg.EnableInternationalNumerals = *o.EnableInternationalNumerals
		present = true
	}
	if o.EnableParallelProcessing != nil {
		cfg.EnableParallelProcessing = *o.EnableParallelProcessing
		present = true
	}
	if o.MemoryLimitMB != nil {
		if err := nonNegative("memory_limit_mb", *o.MemoryLimitMB); err != nil {
			return nil, false, err
		}
		cfg.MemoryLimitMB = *o.MemoryLimitMB
		present = true
	}
	if o.Laws != nil {
		laws, err := resolveLaws(o.Laws)
		if err != nil {
			return nil, false, err
		}
		cfg.Laws = laws
		present = true
	}

	return &cfg, present, nil
}

// resolveLaws validates the integration subset and returns it in canonical
// order without duplicates.
func resolveLaws(names []string) ([]law.ID, error) {
	if len(names) == 0 {
		return nil, errors.InvalidConfigurationf("laws", "at least one law is required")
	}
	seen := make(map[law.ID]bool, len(names))
	for _, name := range names {
		id, ok := law.ParseSingle(name)
		if !ok {
			return nil, errors.InvalidConfigurationf("laws", "%q is not one of benf, pareto, zipf, normal, poisson", name)
		}
		seen[id] = true
	}
	laws := make([]law.ID, 0, len(seen))
	for _, id := range law.SingleLaws {
		if seen[id] {
			laws = append(laws, id)
		}
	}
	return laws, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func openUnit(field string, v float64) error {
	if !finite(v) || v <= 0 || v >= 1 {
		return errors.InvalidConfigurationf(field, "must be within (0, 1), got %v", v)
	}
	return nil
}

func nonNegative(field string, v int) error {
	if v < 0 {
		return errors.InvalidConfigurationf(field, "must be >= 0, got %d", v)
	}
	return nil
}
