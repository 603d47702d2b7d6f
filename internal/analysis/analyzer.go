// Package analysis implements the statistical-law analyzers. Each analyzer is
// an independent unit with the same shape: it takes one dataset and the
// immutable resolved configuration of the call and returns one result
// variant or a typed error.
package analysis

import (
	"context"
	"log/slog"
	"math"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/numeral"
)

// Analyzer evaluates one dataset against one law.
type Analyzer interface {
	Law() law.ID
	Analyze(ctx context.Context, ds law.Dataset, cfg *config.Resolved) (law.Result, error)
}

// Registry maps every dataset-driven identifier to its analyzer. Generation
// is not in the registry; it produces a dataset instead of consuming one.
type Registry struct {
	analyzers map[law.ID]Analyzer
	generator *Generator
}

// NewRegistry wires all analyzers. The integration analyzer and the
// diagnoser share the single-law analyzers of the same registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	singles := map[law.ID]Analyzer{
		law.Benford: NewBenfordAnalyzer(),
		law.Pareto:  NewParetoAnalyzer(),
		law.Zipf:    NewZipfAnalyzer(),
		law.Normal:  NewNormalAnalyzer(),
		law.Poisson: NewPoissonAnalyzer(),
	}

	integration := NewIntegrationAnalyzer(singles, logger)
	validator := NewValidator()

	analyzers := make(map[law.ID]Analyzer, len(singles)+3)
	for id, a := range singles {
		analyzers[id] = a
	}
	analyzers[law.Integration] = integration
	analyzers[law.Validation] = validator
	analyzers[law.Diagnostic] = NewDiagnoser(validator, integration)

	return &Registry{
		analyzers: analyzers,
		generator: NewGenerator(),
	}
}

// Get returns the analyzer for id.
func (r *Registry) Get(id law.ID) (Analyzer, bool) {
	a, ok := r.analyzers[id]
	return a, ok
}

// Generator returns the synthetic data generator.
func (r *Registry) Generator() *Generator {
	return r.generator
}

// sample is the numeric view of a dataset after normalization.
type sample struct {
	values  []float64 // finite values in input order
	missing int       // tokens that failed to parse plus non-finite numbers
	raw     int
}

// collect normalizes a dataset with the numeral flags of the call.
func collect(ds law.Dataset, lc config.LawConfig) sample {
	s := sample{
		values: make([]float64, 0, ds.Len()),
		raw:    ds.Len(),
	}
	for _, v := range ds.Numbers {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			s.missing++
			continue
		}
		s.values = append(s.values, v)
	}
	if len(ds.Tokens) > 0 {
		parsed, failed := numeral.ParseAll(ds.Tokens, numeral.Options{
			Japanese:      lc.EnableJapaneseNumerals,
			International: lc.EnableInternationalNumerals,
		})
		s.values = append(s.values, parsed...)
		s.missing += failed
	}
	return s
}

// forEachBatch calls fn over consecutive windows of values. With memory
// optimization off the whole slice is one batch.
func forEachBatch(ctx context.Context, values []float64, cfg *config.Resolved, fn func([]float64)) error {
	size := len(values)
	if cfg != nil && cfg.UseMemoryOptimization && cfg.BatchSize > 0 {
		size = cfg.BatchSize
	}
	if size == 0 {
		return nil
	}
	for start := 0; start < len(values); start += size {
		if err := ctx.Err(); err != nil {
			return err
		}
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		fn(values[start:end])
	}
	return nil
}

// classifyByPValue maps a goodness-of-fit p-value onto a risk level.
func classifyByPValue(p, significance float64) law.RiskLevel {
	switch {
	case p > significance:
		return law.RiskMedium
	case p > significance/10:
		return law.RiskHigh
	default:
		return law.RiskCritical
	}
}

func reliabilityNote(n, minSample int) string {
	if n < minSample {
		return " (low reliability: sample below minimum size)"
	}
	return ""
}
