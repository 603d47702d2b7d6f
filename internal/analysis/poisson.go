package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

const (
	minExpectedPerBin = 5.0
	overDispersion    = 1.5
	underDispersion   = 0.5
	// maxPoissonSupport bounds the number of integers the binned test walks.
	maxPoissonSupport = 1 << 20
)

// PoissonAnalyzer checks whether event counts follow a Poisson distribution.
type PoissonAnalyzer struct{}

func NewPoissonAnalyzer() *PoissonAnalyzer { return &PoissonAnalyzer{} }

func (a *PoissonAnalyzer) Law() law.ID { return law.Poisson }

func (a *PoissonAnalyzer) Analyze(ctx context.Context, ds law.Dataset, cfg *config.Resolved) (law.Result, error) {
	lc := cfg.LawSettings()
	s := collect(ds, lc)

	counts := make([]float64, 0, len(s.values))
	dropped := 0
	for _, v := range s.values {
		if v < 0 || v != math.Trunc(v) {
			dropped++
			continue
		}
		counts = append(counts, v)
	}
	n := len(counts)
	if n < 2 {
		return nil, errors.InsufficientData("poisson", fmt.Sprintf("need at least 2 non-negative integer counts, got %d", n))
	}

	summary, err := Summarize(counts)
	if err != nil {
		return nil, errors.ComputationError("poisson", "moments", err.Error())
	}
	lambda := summary.Mean
	if lambda == 0 {
		return nil, errors.ComputationError("poisson", "variance ratio", "mean count is zero")
	}
	ratio := summary.Variance / lambda

	histogram := make(map[float64]int)
	events := 0.0
	err = forEachBatch(ctx, counts, cfg, func(batch []float64) {
		for _, c := range batch {
			histogram[c]++
			events += c
		}
	})
	if err != nil {
		return nil, err
	}

	pValue, method, err := poissonGoodnessOfFit(ctx, histogram, n, lambda)
	if err != nil {
		return nil, err
	}
	if method == "dispersion" {
		pValue = ChiSquareTwoSidedPValue(float64(n-1)*ratio, n-1)
	}

	risk := classifyByPValue(pValue, lc.SignificanceLevel)
	if pValue > lc.SignificanceLevel && math.Abs(ratio-1) <= 0.2 {
		risk = law.RiskLow
	}
	if (ratio > overDispersion || ratio < underDispersion) && risk < law.RiskHigh {
		risk = law.RiskHigh
	}

	summaryText := fmt.Sprintf("Poisson: lambda %.3f, variance/mean %.3f, %s test p=%.4f, risk %s%s",
		lambda, ratio, method, pValue, risk, reliabilityNote(n, lc.MinSampleSize))
	switch {
	case ratio > overDispersion:
		summaryText += "; over-dispersed"
	case ratio < underDispersion:
		summaryText += "; under-dispersed"
	}
	if dropped > 0 {
		summaryText += fmt.Sprintf("; %d non-count values ignored", dropped)
	}

	return &law.PoissonAnalysis{
		Path:            ds.Path,
		Lambda:          lambda,
		VarianceRatio:   ratio,
		PoissonTestP:    pValue,
		RiskLevel:       risk,
		TotalEvents:     events,
		Observations:    n,
		AnalysisSummary: summaryText,
	}, nil
}

// poissonGoodnessOfFit runs a chi-square test over count bins merged until
// each expects at least five observations. The walk covers lambda ± 10
// standard deviations; mass outside it joins the first and last bins. When
// fewer than three bins are possible, or the support is too wide to walk,
// it reports the dispersion method instead.
func poissonGoodnessOfFit(ctx context.Context, histogram map[float64]int, n int, lambda float64) (float64, string, error) {
	if float64(n) < 3*minExpectedPerBin {
		return 0, "dispersion", nil
	}
	spread := 10*math.Sqrt(lambda) + 10
	if 2*spread > maxPoissonSupport {
		return 0, "dispersion", nil
	}

	values := make([]float64, 0, len(histogram))
	for v := range histogram {
		values = append(values, v)
	}
	sort.Float64s(values)
	next := 0
	// observedUpTo consumes the observed counts at or below k.
	observedUpTo := func(k float64) float64 {
		obs := 0.0
		for next < len(values) && values[next] <= k {
			obs += float64(histogram[values[next]])
			next++
		}
		return obs
	}

	dist := distuv.Poisson{Lambda: lambda}
	total := float64(n)

	type bin struct{ observed, expected float64 }
	var bins []bin
	k := math.Max(0, math.Floor(lambda-spread))
	cumulative := dist.CDF(k) * total
	cur := bin{observed: observedUpTo(k), expected: cumulative}
	for step := 0; ; step++ {
		if step%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return 0, "", err
			}
		}
		if cur.expected >= minExpectedPerBin {
			bins = append(bins, cur)
			cur = bin{}
		}
		k++
		tail := math.Max(0, total-cumulative)
		if (k > lambda && tail < minExpectedPerBin) || k > lambda+spread {
			cur.observed += observedUpTo(math.Inf(1))
			cur.expected += tail
			break
		}
		p := dist.Prob(k) * total
		cumulative += p
		cur.observed += observedUpTo(k)
		cur.expected += p
	}
	if len(bins) == 0 {
		bins = append(bins, cur)
	} else {
		bins[len(bins)-1].observed += cur.observed
		bins[len(bins)-1].expected += cur.expected
	}

	df := len(bins) - 2
	if df < 1 {
		return 0, "dispersion", nil
	}
	chiSquare := 0.0
	for _, b := range bins {
		if b.expected <= 0 {
			continue
		}
		diff := b.observed - b.expected
		chiSquare += diff * diff / b.expected
	}
	return ChiSquarePValue(chiSquare, df), "chi-square", nil
}
