package main

import (
	"github.com/spf13/pflag"

	"lawkit/internal/config"
)

// optionFlags holds the raw flag values. Only flags the user actually set
// reach the option records, so unset flags keep their resolver defaults.
type optionFlags struct {
	ignoreKeys         string
	pathFilter         string
	format             string
	details            bool
	recommendations    bool
	memoryOptimization bool
	batchSize          int

	riskThreshold    string
	confidence       float64
	threshold        float64
	significance     float64
	minCount         int
	outliers         bool
	digits           string
	base             int
	paretoRatio      float64
	categoryLimit    int
	rankLimit        int
	frequencyCutoff  float64
	count            int
	rangeMin         float64
	rangeMax         float64
	seed             string
	japanese         bool
	international    bool
	parallel         bool
	memoryLimit      int
	laws             []string
}

func (f *optionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ignoreKeys, "ignore-keys", "", "regular expression of dataset paths to skip")
	fs.StringVar(&f.pathFilter, "path-filter", "", "only analyze dataset paths containing this text")
	fs.StringVarP(&f.format, "format", "f", "", "output format (text|json|csv|yaml|toml|xml|markdown|html)")
	fs.BoolVar(&f.details, "details", false, "include distributions and other detail fields")
	fs.BoolVar(&f.recommendations, "recommendations", true, "include recommendations in the output")
	fs.BoolVar(&f.memoryOptimization, "memory-optimization", false, "process oversized input in batches")
	fs.IntVar(&f.batchSize, "batch-size", config.DefaultBatchSize, "values per batch with memory optimization")

	fs.StringVar(&f.riskThreshold, "risk-threshold", "", "risk level that counts as an anomaly (low|medium|high|critical)")
	fs.Float64Var(&f.confidence, "confidence", 0.95, "confidence level")
	fs.Float64Var(&f.threshold, "threshold", 0, "analysis threshold")
	fs.Float64Var(&f.significance, "significance", 0.05, "significance level of the statistical tests")
	fs.IntVar(&f.minCount, "min-count", 0, "minimum sample size for a reliable result")
	fs.BoolVar(&f.outliers, "outliers", false, "count outliers in the normal analysis")
	fs.StringVar(&f.digits, "digits", "", "benford digit mode (first|second|both)")
	fs.IntVar(&f.base, "base", 10, "benford number base")
	fs.Float64Var(&f.paretoRatio, "pareto-ratio", 0.8, "expected share of the top 20 percent")
	fs.IntVar(&f.categoryLimit, "category-limit", 0, "largest number of items the pareto analysis keeps")
	fs.IntVar(&f.rankLimit, "rank-limit", 0, "largest rank the zipf analysis keeps")
	fs.Float64Var(&f.frequencyCutoff, "frequency-cutoff", 0, "smallest frequency the zipf analysis keeps")
	fs.IntVar(&f.count, "count", 0, "number of values to generate")
	fs.Float64Var(&f.rangeMin, "min", 0, "lower bound of generated values")
	fs.Float64Var(&f.rangeMax, "max", 0, "upper bound of generated values")
	fs.StringVar(&f.seed, "seed", "", "seed for reproducible generation")
	fs.BoolVar(&f.japanese, "japanese", true, "accept Japanese numerals")
	fs.BoolVar(&f.international, "international", true, "accept full-width and other international numerals")
	fs.BoolVar(&f.parallel, "parallel", false, "run datasets and integrated laws concurrently")
	fs.IntVar(&f.memoryLimit, "memory-limit", 0, "memory limit in MB")
	fs.StringSliceVar(&f.laws, "laws", nil, "laws combined by analyze and diagnose")
}

// options builds the flat option record from the flags that were set.
func (f *optionFlags) options(fs *pflag.FlagSet) *config.Options {
	return &config.Options{
		GenericOptions: config.GenericOptions{
			IgnoreKeysRegex:       changed(fs, "ignore-keys", f.ignoreKeys),
			PathFilter:            changed(fs, "path-filter", f.pathFilter),
			OutputFormat:          changed(fs, "format", f.format),
			ShowDetails:           changed(fs, "details", f.details),
			ShowRecommendations:   changed(fs, "recommendations", f.recommendations),
			UseMemoryOptimization: changed(fs, "memory-optimization", f.memoryOptimization),
			BatchSize:             changed(fs, "batch-size", f.batchSize),
		},
		LawOptions: config.LawOptions{
			RiskThreshold:               changed(fs, "risk-threshold", f.riskThreshold),
			ConfidenceLevel:             changed(fs, "confidence", f.confidence),
			AnalysisThreshold:           changed(fs, "threshold", f.threshold),
			SignificanceLevel:           changed(fs, "significance", f.significance),
			MinSampleSize:               changed(fs, "min-count", f.minCount),
			EnableOutlierDetection:      changed(fs, "outliers", f.outliers),
			BenfordDigits:               changed(fs, "digits", f.digits),
			BenfordBase:                 changed(fs, "base", f.base),
			ParetoRatio:                 changed(fs, "pareto-ratio", f.paretoRatio),
			ParetoCategoryLimit:         changed(fs, "category-limit", f.categoryLimit),
			ZipfRankLimit:               changed(fs, "rank-limit", f.rankLimit),
			ZipfFrequencyCutoff:         changed(fs, "frequency-cutoff", f.frequencyCutoff),
			GenerateCount:               changed(fs, "count", f.count),
			GenerateRangeMin:            changed(fs, "min", f.rangeMin),
			GenerateRangeMax:            changed(fs, "max", f.rangeMax),
			GenerateSeed:                changed(fs, "seed", f.seed),
			EnableJapaneseNumerals:      changed(fs, "japanese", f.japanese),
			EnableInternationalNumerals: changed(fs, "international", f.international),
			EnableParallelProcessing:    changed(fs, "parallel", f.parallel),
			MemoryLimitMB:               changed(fs, "memory-limit", f.memoryLimit),
			Laws:                        f.lawsIfChanged(fs),
		},
	}
}

func (f *optionFlags) lawsIfChanged(fs *pflag.FlagSet) []string {
	if !fs.Changed("laws") {
		return nil
	}
	return f.laws
}

func changed[T any](fs *pflag.FlagSet, name string, v T) *T {
	if !fs.Changed(name) {
		return nil
	}
	return &v
}
