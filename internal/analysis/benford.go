package analysis

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

// BenfordAnalyzer compares leading-digit frequencies with Benford's law.
type BenfordAnalyzer struct{}

func NewBenfordAnalyzer() *BenfordAnalyzer { return &BenfordAnalyzer{} }

func (a *BenfordAnalyzer) Law() law.ID { return law.Benford }

// madBands are Nigrini's conformity cut-offs for the mean absolute deviation:
// close, acceptable and marginal conformity. Anything above is nonconformity.
var madBands = map[config.DigitMode][3]float64{
	config.DigitsFirst:  {0.006, 0.012, 0.015},
	config.DigitsSecond: {0.008, 0.010, 0.012},
	config.DigitsBoth:   {0.0012, 0.0018, 0.0022},
}

func (a *BenfordAnalyzer) Analyze(ctx context.Context, ds law.Dataset, cfg *config.Resolved) (law.Result, error) {
	lc := cfg.LawSettings()
	s := collect(ds, lc)

	mode, base := lc.BenfordDigits, lc.BenfordBase
	labels, expected := BenfordExpected(mode, base)
	offset := labels[0]
	counts := make([]float64, len(labels))
	total := 0

	err := forEachBatch(ctx, s.values, cfg, func(batch []float64) {
		for _, v := range batch {
			d, ok := LeadingDigits(v, base, mode)
			if !ok {
				continue
			}
			counts[d-offset]++
			total++
		}
	})
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, errors.InsufficientData("benford", "no value with a significant digit")
	}

	observed := make([]float64, len(labels))
	chiSquare, absDev := 0.0, 0.0
	for i := range labels {
		observed[i] = counts[i] / float64(total)
		exp := expected[i] * float64(total)
		diff := counts[i] - exp
		chiSquare += diff * diff / exp
		absDev += math.Abs(observed[i] - expected[i])
	}
	mad := absDev / float64(len(labels))
	pValue := ChiSquarePValue(chiSquare, len(labels)-1)

	risk := madRisk(mode, mad)
	// acceptable conformity the chi-square test cannot reject counts as close
	if risk == law.RiskMedium && pValue > lc.SignificanceLevel {
		risk = law.RiskLow
	}
	if total >= lc.MinSampleSize && pValue < lc.SignificanceLevel/10 {
		risk = risk.Escalate()
	}

	return &law.BenfordAnalysis{
		Path:                 ds.Path,
		DigitMode:            string(mode),
		Base:                 base,
		Digits:               labels,
		ObservedDistribution: observed,
		ExpectedDistribution: expected,
		ChiSquare:            chiSquare,
		PValue:               pValue,
		MAD:                  mad,
		RiskLevel:            risk,
		TotalNumbers:         total,
		AnalysisSummary: fmt.Sprintf("Benford (%s digit, base %d): MAD %.4f, chi-square %.2f (p=%.4f), risk %s%s",
			mode, base, mad, chiSquare, pValue, risk, reliabilityNote(total, lc.MinSampleSize)),
	}, nil
}

func madRisk(mode config.DigitMode, mad float64) law.RiskLevel {
	bands, ok := madBands[mode]
	if !ok {
		bands = madBands[config.DigitsFirst]
	}
	switch {
	case mad <= bands[0]:
		return law.RiskLow
	case mad <= bands[1]:
		return law.RiskMedium
	case mad <= bands[2]:
		return law.RiskHigh
	default:
		return law.RiskCritical
	}
}

// BenfordExpected returns the digit labels for a mode and their expected
// probabilities in the given base. First-two-digit labels run from base to
// base²-1.
func BenfordExpected(mode config.DigitMode, base int) ([]int, []float64) {
	b := float64(base)
	logb := func(x float64) float64 { return math.Log(x) / math.Log(b) }

	var labels []int
	var probs []float64
	switch mode {
	case config.DigitsSecond:
		for d := 0; d < base; d++ {
			p := 0.0
			for k := 1; k < base; k++ {
				p += logb(1 + 1/float64(k*base+d))
			}
			labels = append(labels, d)
			probs = append(probs, p)
		}
	case config.DigitsBoth:
		for d := base; d < base*base; d++ {
			labels = append(labels, d)
			probs = append(probs, logb(1+1/float64(d)))
		}
	default:
		for d := 1; d < base; d++ {
			labels = append(labels, d)
			probs = append(probs, logb(1+1/float64(d)))
		}
	}
	return labels, probs
}

// LeadingDigits extracts the digit label of v for the mode. Zero and
// non-finite values have no significant digit.
func LeadingDigits(v float64, base int, mode config.DigitMode) (int, bool) {
	x := math.Abs(v)
	if x == 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}

	var first, second int
	if base == 10 {
		// Exact decimal digits; log10 loses them for values like 1000.
		s := strconv.FormatFloat(x, 'e', -1, 64)
		first = int(s[0] - '0')
		if len(s) > 2 && s[1] == '.' {
			second = int(s[2] - '0')
		}
	} else {
		b := float64(base)
		m := x / math.Pow(b, math.Floor(math.Log(x)/math.Log(b)))
		for m >= b {
			m /= b
		}
		for m < 1 {
			m *= b
		}
		m *= 1 + 1e-12
		first = min(int(m), base-1)
		second = min(int((m-float64(first))*b), base-1)
	}

	switch mode {
	case config.DigitsSecond:
		return second, true
	case config.DigitsBoth:
		return first*base + second, true
	default:
		return first, true
	}
}
