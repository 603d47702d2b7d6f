package analysis

import (
	"context"
	"fmt"
	"math"

	"lawkit/domain/law"
	"lawkit/internal/config"
)

// Issue categories prefix every entry of IssuesFound.
const (
	IssueEmptyDataset      = "EMPTY_DATASET"
	IssueMissingValues     = "MISSING_VALUES"
	IssueOutOfRange        = "OUT_OF_RANGE"
	IssueDuplicateValues   = "DUPLICATE_VALUES"
	IssueInsufficientSize  = "INSUFFICIENT_SAMPLE"
	IssueZeroVariance      = "ZERO_VARIANCE"
	IssueOutliers          = "OUTLIERS"
	duplicateShareLimit    = 0.5
)

// Validator checks whether a dataset is fit for statistical-law analysis.
// It never fails on bad data; problems are reported as issues.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

func (v *Validator) Law() law.ID { return law.Validation }

func (v *Validator) Analyze(ctx context.Context, ds law.Dataset, cfg *config.Resolved) (law.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.Validate(ds, cfg), nil
}

// Validate runs every check and scores the dataset in [0,1].
func (v *Validator) Validate(ds law.Dataset, cfg *config.Resolved) *law.ValidationResult {
	lc := cfg.LawSettings()
	s := collect(ds, lc)
	result := &law.ValidationResult{Path: ds.Path, IssuesFound: []string{}}

	if s.raw == 0 {
		result.IssuesFound = append(result.IssuesFound, IssueEmptyDataset+": dataset contains no values")
		result.AnalysisSummary = "Validation failed: dataset is empty"
		return result
	}

	penalty := 0.0
	addIssue := func(cost float64, category, format string, args ...any) {
		result.IssuesFound = append(result.IssuesFound, category+": "+fmt.Sprintf(format, args...))
		penalty += cost
	}

	if s.missing > 0 {
		share := float64(s.missing) / float64(s.raw)
		addIssue(0.1+0.5*share, IssueMissingValues, "%d of %d values are missing or not numeric", s.missing, s.raw)
	}

	if lc.GenerateRangeMin != nil || lc.GenerateRangeMax != nil {
		lo, hi := math.Inf(-1), math.Inf(1)
		if lc.GenerateRangeMin != nil {
			lo = *lc.GenerateRangeMin
		}
		if lc.GenerateRangeMax != nil {
			hi = *lc.GenerateRangeMax
		}
		outside := 0
		for _, x := range s.values {
			if x < lo || x > hi {
				outside++
			}
		}
		if outside > 0 {
			share := float64(outside) / float64(s.raw)
			addIssue(0.1+0.5*share, IssueOutOfRange, "%d values fall outside [%g, %g]", outside, lo, hi)
		}
	}

	n := len(s.values)
	if n > 0 {
		distinct := make(map[float64]struct{}, n)
		for _, x := range s.values {
			distinct[x] = struct{}{}
		}
		if dup := n - len(distinct); dup > 0 {
			// a few repeats are common in real data and cost little
			dupShare := float64(dup) / float64(n)
			weight := 0.05
			if dupShare > duplicateShareLimit {
				weight = 0.2
			}
			addIssue(weight*dupShare, IssueDuplicateValues, "%d of %d values repeat an earlier value (%.0f%%)", dup, n, dupShare*100)
		}
		if n > 1 && len(distinct) == 1 {
			addIssue(0.3, IssueZeroVariance, "all %d values are equal", n)
		}
	}

	if n < lc.MinSampleSize {
		addIssue(0.2, IssueInsufficientSize, "%d usable values, minimum is %d", n, lc.MinSampleSize)
	}

	if lc.EnableOutlierDetection && n > 0 {
		if outliers := DetectOutliers(s.values, lc.AnalysisThreshold); outliers > 0 {
			addIssue(0.3*float64(outliers)/float64(n), IssueOutliers, "%d values beyond %.1f IQR", outliers, lc.AnalysisThreshold)
		}
	}

	result.DataQualityScore = math.Max(0, math.Min(1, 1-penalty))
	result.ValidationPassed = len(result.IssuesFound) == 0
	if result.ValidationPassed {
		result.AnalysisSummary = fmt.Sprintf("Validation passed: %d usable values", n)
	} else {
		result.AnalysisSummary = fmt.Sprintf("Validation found %d issue(s) in %d values, quality score %.2f",
			len(result.IssuesFound), s.raw, result.DataQualityScore)
	}
	return result
}
