package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

// NormalAnalyzer tests a sample against the normal distribution fitted to
// its own mean and standard deviation.
type NormalAnalyzer struct{}

func NewNormalAnalyzer() *NormalAnalyzer { return &NormalAnalyzer{} }

func (a *NormalAnalyzer) Law() law.ID { return law.Normal }

func (a *NormalAnalyzer) Analyze(ctx context.Context, ds law.Dataset, cfg *config.Resolved) (law.Result, error) {
	lc := cfg.LawSettings()
	s := collect(ds, lc)

	n := len(s.values)
	if n < 3 {
		return nil, errors.InsufficientData("normal", fmt.Sprintf("need at least 3 values, got %d", n))
	}

	summary, err := Summarize(s.values)
	if err != nil {
		return nil, errors.ComputationError("normal", "moments", err.Error())
	}
	if summary.StdDev == 0 {
		return nil, errors.ComputationError("normal", "normality test", "zero variance")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := KolmogorovSmirnov(s.values, distuv.Normal{Mu: summary.Mean, Sigma: summary.StdDev})
	pValue := KolmogorovPValue(d, n)
	risk := normalRisk(pValue, summary.Skewness, summary.Kurtosis, lc.SignificanceLevel)

	result := &law.NormalAnalysis{
		Path:           ds.Path,
		Mean:           summary.Mean,
		StdDev:         summary.StdDev,
		Skewness:       summary.Skewness,
		Kurtosis:       summary.Kurtosis,
		NormalityTestP: pValue,
		RiskLevel:      risk,
		TotalNumbers:   n,
		AnalysisSummary: fmt.Sprintf("Normal: mean %.4g, std dev %.4g, skewness %.3f, excess kurtosis %.3f, KS p=%.4f, risk %s%s",
			summary.Mean, summary.StdDev, summary.Skewness, summary.Kurtosis, pValue, risk, reliabilityNote(n, lc.MinSampleSize)),
	}
	if lc.EnableOutlierDetection {
		outliers := DetectOutliers(s.values, lc.AnalysisThreshold)
		result.OutlierCount = &outliers
		result.AnalysisSummary += fmt.Sprintf("; %d outliers beyond %.1f IQR", outliers, lc.AnalysisThreshold)
	}
	return result, nil
}

func normalRisk(p, skew, exKurt, significance float64) law.RiskLevel {
	if p > significance && math.Abs(skew) < 0.5 && math.Abs(exKurt) < 1 {
		return law.RiskLow
	}
	return classifyByPValue(p, significance)
}

// KolmogorovSmirnov returns the largest distance between the empirical CDF
// of data and the reference CDF.
func KolmogorovSmirnov(data []float64, ref interface{ CDF(float64) float64 }) float64 {
	sorted := sortedCopy(data)
	n := float64(len(sorted))
	d := 0.0
	for i, x := range sorted {
		f := ref.CDF(x)
		d = math.Max(d, math.Max(float64(i+1)/n-f, f-float64(i)/n))
	}
	return d
}
