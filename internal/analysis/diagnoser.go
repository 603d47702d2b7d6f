package analysis

import (
	"context"
	"fmt"
	"math"
	"strings"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

// Diagnostic types, from most to least fundamental.
const (
	DiagnosisInsufficientData     = "insufficient_data"
	DiagnosisDataQuality          = "data_quality"
	DiagnosisConflictingSignals   = "conflicting_signals"
	DiagnosisDistributionMismatch = "distribution_mismatch"
	DiagnosisConformant           = "conformant"

	minQualityScore = 0.7
)

// Diagnoser combines validation and integration into a single verdict with
// a confidence estimate.
type Diagnoser struct {
	validator   *Validator
	integration *IntegrationAnalyzer
}

func NewDiagnoser(validator *Validator, integration *IntegrationAnalyzer) *Diagnoser {
	return &Diagnoser{validator: validator, integration: integration}
}

func (d *Diagnoser) Law() law.ID { return law.Diagnostic }

func (d *Diagnoser) Analyze(ctx context.Context, ds law.Dataset, cfg *config.Resolved) (law.Result, error) {
	lc := cfg.LawSettings()
	validation := d.validator.Validate(ds, cfg)

	result := &law.DiagnosticResult{Path: ds.Path, Findings: []string{}}
	result.Findings = append(result.Findings, validation.IssuesFound...)

	insufficient := hasIssue(validation, IssueEmptyDataset) || hasIssue(validation, IssueInsufficientSize)

	var integration *law.IntegrationAnalysis
	res, err := d.integration.Analyze(ctx, ds, cfg)
	switch {
	case err == nil:
		integration = res.(*law.IntegrationAnalysis)
	case errors.Is(err, errors.ErrInsufficientData):
		insufficient = true
		result.Findings = append(result.Findings, err.Error())
	default:
		return nil, err
	}

	agreement := 1.0
	if integration != nil {
		for _, lr := range integration.LawRisks {
			if lr.PValue != nil {
				result.Findings = append(result.Findings, fmt.Sprintf("%s: risk %s (p=%.4f)", lr.Law, lr.Risk, *lr.PValue))
			} else {
				result.Findings = append(result.Findings, fmt.Sprintf("%s: risk %s", lr.Law, lr.Risk))
			}
		}
		result.Findings = append(result.Findings, integration.ConflictingResults...)
		if k := len(integration.LawRisks); k > 1 {
			pairs := float64(k * (k - 1) / 2)
			agreement = 1 - float64(len(integration.ConflictingResults))/pairs
		}
	}

	switch {
	case insufficient:
		result.DiagnosticType = DiagnosisInsufficientData
	case validation.DataQualityScore < minQualityScore:
		result.DiagnosticType = DiagnosisDataQuality
	case len(integration.ConflictingResults) > 0:
		result.DiagnosticType = DiagnosisConflictingSignals
	case integration.OverallRisk.AtLeast(lc.RiskThreshold):
		result.DiagnosticType = DiagnosisDistributionMismatch
	default:
		result.DiagnosticType = DiagnosisConformant
	}

	usable := len(collect(ds, lc).values)
	sampleFactor := 1.0
	if lc.MinSampleSize > 0 {
		sampleFactor = math.Min(1, float64(usable)/float64(4*lc.MinSampleSize))
	}
	confidence := sampleFactor * (0.6 + 0.4*agreement) * (0.5 + 0.5*validation.DataQualityScore)
	result.ConfidenceLevel = math.Max(0, math.Min(1, confidence))

	result.AnalysisSummary = fmt.Sprintf("Diagnosis: %s (confidence %.2f)", strings.ReplaceAll(result.DiagnosticType, "_", " "), result.ConfidenceLevel)
	if integration != nil {
		result.AnalysisSummary += fmt.Sprintf("; overall risk %s driven by %s", integration.OverallRisk, integration.DominantLaw)
	}
	return result, nil
}

func hasIssue(v *law.ValidationResult, category string) bool {
	for _, issue := range v.IssuesFound {
		if strings.HasPrefix(issue, category+":") {
			return true
		}
	}
	return false
}
