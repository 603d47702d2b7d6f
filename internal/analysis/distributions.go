package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ChiSquarePValue computes the upper-tail p-value of a chi-square statistic
func ChiSquarePValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(chiSquare) {
		return 1.0
	}
	if chiSquare <= 0 {
		return 1.0
	}

	chiDist := distuv.ChiSquared{K: float64(degreesOfFreedom)}
	return clampProbability(1 - chiDist.CDF(chiSquare))
}

// ChiSquareTwoSidedPValue is used by dispersion tests, where both too little
// and too much variance are evidence against the model.
func ChiSquareTwoSidedPValue(chiSquare float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(chiSquare) {
		return 1.0
	}
	cdf := distuv.ChiSquared{K: float64(degreesOfFreedom)}.CDF(chiSquare)
	return clampProbability(2 * math.Min(cdf, 1-cdf))
}

// TTestPValue computes the two-tailed p-value for Student's t
func TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 || math.IsNaN(tStatistic) {
		return 1.0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}
	return clampProbability(2 * (1 - tDist.CDF(math.Abs(tStatistic))))
}

// CorrelationPValue tests a Pearson correlation against zero
func CorrelationPValue(correlation float64, sampleSize int) float64 {
	if sampleSize < 3 {
		return 1.0
	}
	r := math.Max(-1, math.Min(1, correlation))
	if math.Abs(r) == 1 {
		return 0
	}

	df := float64(sampleSize - 2)
	tStatistic := r * math.Sqrt(df/(1-r*r))
	return TTestPValue(tStatistic, sampleSize-2)
}

// KolmogorovPValue returns the asymptotic p-value of a one-sample
// Kolmogorov-Smirnov statistic d over n observations, using Stephens'
// small-sample correction of the scaling factor.
func KolmogorovPValue(d float64, n int) float64 {
	if n <= 0 || math.IsNaN(d) {
		return 1.0
	}
	sqrtN := math.Sqrt(float64(n))
	lambda := (sqrtN + 0.12 + 0.11/sqrtN) * d
	return kolmogorovQ(lambda)
}

// kolmogorovQ evaluates Q(λ) = 2 Σ (-1)^(j-1) exp(-2 j² λ²).
func kolmogorovQ(lambda float64) float64 {
	if lambda < 0.2 {
		return 1.0
	}
	sum := 0.0
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2*float64(j*j)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}
	return clampProbability(2 * sum)
}

func clampProbability(p float64) float64 {
	if math.IsNaN(p) {
		return 1.0
	}
	return math.Max(0, math.Min(1, p))
}
