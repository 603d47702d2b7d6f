package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

// ParetoAnalyzer measures how concentrated a set of magnitudes is in its
// largest items.
type ParetoAnalyzer struct{}

func NewParetoAnalyzer() *ParetoAnalyzer { return &ParetoAnalyzer{} }

func (a *ParetoAnalyzer) Law() law.ID { return law.Pareto }

func (a *ParetoAnalyzer) Analyze(ctx context.Context, ds law.Dataset, cfg *config.Resolved) (law.Result, error) {
	lc := cfg.LawSettings()
	s := collect(ds, lc)

	magnitudes := make([]float64, 0, len(s.values))
	negatives := 0
	for _, v := range s.values {
		if v < 0 {
			negatives++
			continue
		}
		magnitudes = append(magnitudes, v)
	}
	if len(magnitudes) == 0 {
		return nil, errors.InsufficientData("pareto", "no non-negative values")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(magnitudes)))
	if lc.ParetoCategoryLimit > 0 && len(magnitudes) > lc.ParetoCategoryLimit {
		magnitudes = magnitudes[:lc.ParetoCategoryLimit]
	}

	total := 0.0
	for _, v := range magnitudes {
		total += v
	}
	if total == 0 {
		return nil, errors.ComputationError("pareto", "concentration", "total magnitude is zero")
	}

	n := len(magnitudes)
	topCount := TopCount(n, lc.ParetoRatio)
	top := 0.0
	for _, v := range magnitudes[:topCount] {
		top += v
	}
	share := top / total

	risk := paretoRisk(math.Abs(share - lc.ParetoRatio))
	gini := GiniDescending(magnitudes, total)

	result := &law.ParetoAnalysis{
		Path:                     ds.Path,
		Top20PercentContribution: share * 100,
		ParetoRatio:              share,
		ConcentrationIndex:       gini,
		RiskLevel:                risk,
		TotalItems:               n,
		AnalysisSummary: fmt.Sprintf("Pareto: top %d of %d items hold %.2f%% of the total (expected %.0f%%), Gini %.3f, risk %s%s",
			topCount, n, share*100, lc.ParetoRatio*100, gini, risk, reliabilityNote(n, lc.MinSampleSize)),
	}
	if negatives > 0 {
		result.AnalysisSummary += fmt.Sprintf("; %d negative values ignored", negatives)
	}
	if cfg != nil && cfg.ShowDetails {
		result.Curve = cumulativeCurve(magnitudes, total)
	}
	return result, nil
}

// TopCount is the number of items in the top (1 - ratio) fraction, never
// less than one.
func TopCount(n int, ratio float64) int {
	k := int(math.Ceil(float64(n)*(1-ratio) - 1e-9))
	if k < 1 {
		k = 1
	}
	if k > n {
		k = n
	}
	return k
}

// GiniDescending computes the Gini coefficient of values sorted in
// descending order.
func GiniDescending(desc []float64, total float64) float64 {
	n := len(desc)
	if n < 2 || total == 0 {
		return 0
	}
	weighted := 0.0
	for i, v := range desc {
		// ascending rank of desc[i] is n-i
		weighted += float64(n-i) * v
	}
	g := 2*weighted/(float64(n)*total) - float64(n+1)/float64(n)
	return math.Max(0, math.Min(1, g))
}

// cumulativeCurve returns the cumulative share held by the top 10%, 20%, ...
// 100% of items.
func cumulativeCurve(desc []float64, total float64) []float64 {
	curve := make([]float64, 10)
	n := len(desc)
	sum, taken := 0.0, 0
	for k := 1; k <= 10; k++ {
		upto := int(math.Ceil(float64(n*k)/10 - 1e-9))
		for taken < upto {
			sum += desc[taken]
			taken++
		}
		curve[k-1] = sum / total
	}
	return curve
}

func paretoRisk(deviation float64) law.RiskLevel {
	switch {
	case deviation < 0.1:
		return law.RiskLow
	case deviation < 0.2:
		return law.RiskMedium
	case deviation < 0.3:
		return law.RiskHigh
	default:
		return law.RiskCritical
	}
}
