package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/stat"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

// ZipfAnalyzer fits a power law to rank-ordered frequencies by least squares
// on the log-log scale.
type ZipfAnalyzer struct{}

func NewZipfAnalyzer() *ZipfAnalyzer { return &ZipfAnalyzer{} }

func (a *ZipfAnalyzer) Law() law.ID { return law.Zipf }

func (a *ZipfAnalyzer) Analyze(ctx context.Context, ds law.Dataset, cfg *config.Resolved) (law.Result, error) {
	lc := cfg.LawSettings()
	s := collect(ds, lc)

	freqs := make([]float64, 0, len(s.values))
	for _, v := range s.values {
		if v > 0 && v >= lc.ZipfFrequencyCutoff {
			freqs = append(freqs, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(freqs)))
	if lc.ZipfRankLimit > 0 && len(freqs) > lc.ZipfRankLimit {
		freqs = freqs[:lc.ZipfRankLimit]
	}
	if len(freqs) < 3 {
		return nil, errors.InsufficientData("zipf", fmt.Sprintf("need at least 3 positive frequencies, got %d", len(freqs)))
	}
	if freqs[0] == freqs[len(freqs)-1] {
		return nil, errors.ComputationError("zipf", "exponent", "all frequencies are equal")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	logRank := make([]float64, len(freqs))
	logFreq := make([]float64, len(freqs))
	for i, f := range freqs {
		logRank[i] = math.Log(float64(i + 1))
		logFreq[i] = math.Log(f)
	}

	_, slope := stat.LinearRegression(logRank, logFreq, nil, false)
	r := math.Max(-1, math.Min(1, finiteOrZero(stat.Correlation(logRank, logFreq, nil))))

	exponent := -slope
	correlation := math.Abs(r)
	deviation := math.Abs(exponent - 1)
	pValue := CorrelationPValue(r, len(freqs))
	risk := zipfRisk(deviation, correlation)

	return &law.ZipfAnalysis{
		Path:                   ds.Path,
		ZipfCoefficient:        exponent,
		CorrelationCoefficient: correlation,
		CorrelationPValue:      pValue,
		DeviationScore:         deviation,
		RiskLevel:              risk,
		TotalItems:             len(freqs),
		AnalysisSummary: fmt.Sprintf("Zipf: exponent %.3f (ideal 1.0), log-log fit |r|=%.3f, risk %s%s",
			exponent, correlation, risk, reliabilityNote(len(freqs), lc.MinSampleSize)),
	}, nil
}

func zipfRisk(deviation, correlation float64) law.RiskLevel {
	switch {
	case deviation < 0.1 && correlation >= 0.95:
		return law.RiskLow
	case deviation < 0.25 && correlation >= 0.9:
		return law.RiskMedium
	case deviation < 0.5 && correlation >= 0.8:
		return law.RiskHigh
	default:
		return law.RiskCritical
	}
}

// TokenFrequencies counts word occurrences in text, case-folded, and returns
// the counts in descending order. It turns a document into Zipf input.
func TokenFrequencies(text string) []float64 {
	counts := make(map[string]int)
	for _, word := range strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	}) {
		counts[strings.ToLower(word)]++
	}

	freqs := make([]float64, 0, len(counts))
	for _, c := range counts {
		freqs = append(freqs, float64(c))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(freqs)))
	return freqs
}
