package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds the moments shared by the normality analyzer, the validator
// and the diagnoser.
type Summary struct {
	N        int
	Mean     float64
	StdDev   float64 // sample standard deviation
	Variance float64 // sample variance
	Min      float64
	Max      float64
	Median   float64
	Q25      float64
	Q75      float64
	Skewness float64
	Kurtosis float64 // excess kurtosis
}

// Summarize calculates summary statistics. Skewness needs three values and
// kurtosis four; below that they are reported as zero.
func Summarize(data []float64) (Summary, error) {
	s := Summary{N: len(data)}

	mean, err := stats.Mean(data)
	if err != nil {
		return s, err
	}
	min, err := stats.Min(data)
	if err != nil {
		return s, err
	}
	max, err := stats.Max(data)
	if err != nil {
		return s, err
	}
	median, err := stats.Median(data)
	if err != nil {
		return s, err
	}
	q25, err := stats.Percentile(data, 25)
	if err != nil {
		q25 = min
	}
	q75, err := stats.Percentile(data, 75)
	if err != nil {
		q75 = max
	}

	s.Mean, s.Min, s.Max, s.Median, s.Q25, s.Q75 = mean, min, max, median, q25, q75

	if len(data) > 1 {
		variance, err := stats.SampleVariance(data)
		if err != nil {
			return s, err
		}
		s.Variance = variance
		s.StdDev = math.Sqrt(variance)
	}

	if s.StdDev > 0 {
		if len(data) >= 3 {
			s.Skewness = finiteOrZero(stat.Skew(data, nil))
		}
		if len(data) >= 4 {
			s.Kurtosis = finiteOrZero(stat.ExKurtosis(data, nil))
		}
	}
	return s, nil
}

// DetectOutliers counts values outside the IQR fences. The multiplier is
// normally 1.5 (Tukey).
func DetectOutliers(data []float64, multiplier float64) int {
	if len(data) < 4 {
		return 0
	}
	q25, err := stats.Percentile(data, 25)
	if err != nil {
		return 0
	}
	q75, err := stats.Percentile(data, 75)
	if err != nil {
		return 0
	}

	iqr := q75 - q25
	lowerBound := q25 - multiplier*iqr
	upperBound := q75 + multiplier*iqr

	outliers := 0
	for _, v := range data {
		if v < lowerBound || v > upperBound {
			outliers++
		}
	}
	return outliers
}

// sortedCopy returns an ascending copy; callers' slices are never reordered.
func sortedCopy(data []float64) []float64 {
	out := make([]float64, len(data))
	copy(out, data)
	sort.Float64s(out)
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
