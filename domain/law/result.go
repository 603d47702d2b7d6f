package law

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// ResultType is the discriminant written as "result_type" at the boundary.
type ResultType string

const (
	TypeBenford     ResultType = "BenfordAnalysis"
	TypePareto      ResultType = "ParetoAnalysis"
	TypeZipf        ResultType = "ZipfAnalysis"
	TypeNormal      ResultType = "NormalAnalysis"
	TypePoisson     ResultType = "PoissonAnalysis"
	TypeIntegration ResultType = "IntegrationAnalysis"
	TypeValidation  ResultType = "ValidationResult"
	TypeDiagnostic  ResultType = "DiagnosticResult"
	TypeGenerated   ResultType = "GeneratedData"
)

// Result is the closed union of analysis outcomes. Only the variants in this
// package implement it; consumers switch on the concrete pointer type.
type Result interface {
	Type() ResultType
	SourcePath() string
	sealed()
}

// Assessment is implemented by the single-law variants, which all grade the
// dataset with a risk level.
type Assessment interface {
	Result
	Risk() RiskLevel
	// Significance returns the test p-value backing the risk level, when the
	// law has one.
	Significance() (float64, bool)
}

type BenfordAnalysis struct {
	Path                 string    `json:"path"`
	DigitMode            string    `json:"digit_mode"`
	Base                 int       `json:"base"`
	Digits               []int     `json:"digits"`
	ObservedDistribution []float64 `json:"observed_distribution"`
	ExpectedDistribution []float64 `json:"expected_distribution"`
	ChiSquare            float64   `json:"chi_square"`
	PValue               float64   `json:"p_value"`
	MAD                  float64   `json:"mad"`
	RiskLevel            RiskLevel `json:"risk_level"`
	TotalNumbers         int       `json:"total_numbers"`
	AnalysisSummary      string    `json:"analysis_summary"`
}

type ParetoAnalysis struct {
	Path                     string    `json:"path"`
	Top20PercentContribution float64   `json:"top_20_percent_contribution"`
	ParetoRatio              float64   `json:"pareto_ratio"`
	ConcentrationIndex       float64   `json:"concentration_index"`
	RiskLevel                RiskLevel `json:"risk_level"`
	TotalItems               int       `json:"total_items"`
	AnalysisSummary          string    `json:"analysis_summary"`
	// Curve holds cumulative shares at each decile of items; detail output only.
	Curve []float64 `json:"cumulative_curve,omitempty"`
}

type ZipfAnalysis struct {
	Path                   string    `json:"path"`
	ZipfCoefficient        float64   `json:"zipf_coefficient"`
	CorrelationCoefficient float64   `json:"correlation_coefficient"`
	CorrelationPValue      float64   `json:"correlation_p_value"`
	DeviationScore         float64   `json:"deviation_score"`
	RiskLevel              RiskLevel `json:"risk_level"`
	TotalItems             int       `json:"total_items"`
	AnalysisSummary        string    `json:"analysis_summary"`
}

type NormalAnalysis struct {
	Path            string    `json:"path"`
	Mean            float64   `json:"mean"`
	StdDev          float64   `json:"std_dev"`
	Skewness        float64   `json:"skewness"`
	Kurtosis        float64   `json:"kurtosis"` // excess kurtosis
	NormalityTestP  float64   `json:"normality_test_p"`
	RiskLevel       RiskLevel `json:"risk_level"`
	TotalNumbers    int       `json:"total_numbers"`
	AnalysisSummary string    `json:"analysis_summary"`
	OutlierCount    *int      `json:"outlier_count,omitempty"`
}

type PoissonAnalysis struct {
	Path            string    `json:"path"`
	Lambda          float64   `json:"lambda"`
	VarianceRatio   float64   `json:"variance_ratio"`
	PoissonTestP    float64   `json:"poisson_test_p"`
	RiskLevel       RiskLevel `json:"risk_level"`
	TotalEvents     float64   `json:"total_events"`
	Observations    int       `json:"observations"`
	AnalysisSummary string    `json:"analysis_summary"`
}

// LawRisk is one sub-analysis outcome inside an integration run.
type LawRisk struct {
	Law    ID        `json:"law"`
	Risk   RiskLevel `json:"risk_level"`
	PValue *float64  `json:"p_value,omitempty"`
}

type IntegrationAnalysis struct {
	Path               string    `json:"path"`
	LawsAnalyzed       []ID      `json:"laws_analyzed"`
	OverallRisk        RiskLevel `json:"overall_risk"`
	DominantLaw        ID        `json:"dominant_law"`
	LawRisks           []LawRisk `json:"law_risks"`
	ConflictingResults []string  `json:"conflicting_results"`
	Recommendations    []string  `json:"recommendations"`
	AnalysisSummary    string    `json:"analysis_summary"`
}

type ValidationResult struct {
	Path             string   `json:"path"`
	ValidationPassed bool     `json:"validation_passed"`
	IssuesFound      []string `json:"issues_found"`
	DataQualityScore float64  `json:"data_quality_score"`
	AnalysisSummary  string   `json:"analysis_summary"`
}

type DiagnosticResult struct {
	Path            string   `json:"path"`
	DiagnosticType  string   `json:"diagnostic_type"`
	Findings        []string `json:"findings"`
	ConfidenceLevel float64  `json:"confidence_level"`
	AnalysisSummary string   `json:"analysis_summary"`
}

type GeneratedData struct {
	Path       string             `json:"path"`
	DataType   string             `json:"data_type"`
	Count      int                `json:"count"`
	Parameters map[string]float64 `json:"parameters"`
	Seed       *uint64            `json:"seed,omitempty"`
	SampleData []float64          `json:"sample_data"`
}

func (*BenfordAnalysis) Type() ResultType     { return TypeBenford }
func (*ParetoAnalysis) Type() ResultType      { return TypePareto }
func (*ZipfAnalysis) Type() ResultType        { return TypeZipf }
func (*NormalAnalysis) Type() ResultType      { return TypeNormal }
func (*PoissonAnalysis) Type() ResultType     { return TypePoisson }
func (*IntegrationAnalysis) Type() ResultType { return TypeIntegration }
func (*ValidationResult) Type() ResultType    { return TypeValidation }
func (*DiagnosticResult) Type() ResultType    { return TypeDiagnostic }
func (*GeneratedData) Type() ResultType       { return TypeGenerated }

func (r *BenfordAnalysis) SourcePath() string     { return r.Path }
func (r *ParetoAnalysis) SourcePath() string      { return r.Path }
func (r *ZipfAnalysis) SourcePath() string        { return r.Path }
func (r *NormalAnalysis) SourcePath() string      { return r.Path }
func (r *PoissonAnalysis) SourcePath() string     { return r.Path }
func (r *IntegrationAnalysis) SourcePath() string { return r.Path }
func (r *ValidationResult) SourcePath() string    { return r.Path }
func (r *DiagnosticResult) SourcePath() string    { return r.Path }
func (r *GeneratedData) SourcePath() string       { return r.Path }

func (*BenfordAnalysis) sealed()     {}
func (*ParetoAnalysis) sealed()      {}
func (*ZipfAnalysis) sealed()        {}
func (*NormalAnalysis) sealed()      {}
func (*PoissonAnalysis) sealed()     {}
func (*IntegrationAnalysis) sealed() {}
func (*ValidationResult) sealed()    {}
func (*DiagnosticResult) sealed()    {}
func (*GeneratedData) sealed()       {}

func (r *BenfordAnalysis) Risk() RiskLevel { return r.RiskLevel }
func (r *ParetoAnalysis) Risk() RiskLevel  { return r.RiskLevel }
func (r *ZipfAnalysis) Risk() RiskLevel    { return r.RiskLevel }
func (r *NormalAnalysis) Risk() RiskLevel  { return r.RiskLevel }
func (r *PoissonAnalysis) Risk() RiskLevel { return r.RiskLevel }

func (r *BenfordAnalysis) Significance() (float64, bool) { return r.PValue, true }
func (r *ParetoAnalysis) Significance() (float64, bool)  { return 0, false }
func (r *ZipfAnalysis) Significance() (float64, bool)    { return r.CorrelationPValue, true }
func (r *NormalAnalysis) Significance() (float64, bool)  { return r.NormalityTestP, true }
func (r *PoissonAnalysis) Significance() (float64, bool) { return r.PoissonTestP, true }

// Each variant flattens its own fields next to the discriminant through a
// local alias type, so inactive variants contribute nothing to the encoding.

func (r *BenfordAnalysis) MarshalJSON() ([]byte, error) {
	type alias BenfordAnalysis
	return json.Marshal(struct {
		ResultType ResultType `json:"result_type"`
		*alias
	}{TypeBenford, (*alias)(r)})
}

func (r *ParetoAnalysis) MarshalJSON() ([]byte, error) {
	type alias ParetoAnalysis
	return json.Marshal(struct {
		ResultType ResultType `json:"result_type"`
		*alias
	}{TypePareto, (*alias)(r)})
}

func (r *ZipfAnalysis) MarshalJSON() ([]byte, error) {
	type alias ZipfAnalysis
	return json.Marshal(struct {
		ResultType ResultType `json:"result_type"`
		*alias
	}{TypeZipf, (*alias)(r)})
}

func (r *NormalAnalysis) MarshalJSON() ([]byte, error) {
	type alias NormalAnalysis
	return json.Marshal(struct {
		ResultType ResultType `json:"result_type"`
		*alias
	}{TypeNormal, (*alias)(r)})
}

func (r *PoissonAnalysis) MarshalJSON() ([]byte, error) {
	type alias PoissonAnalysis
	return json.Marshal(struct {
		ResultType ResultType `json:"result_type"`
		*alias
	}{TypePoisson, (*alias)(r)})
}

func (r *IntegrationAnalysis) MarshalJSON() ([]byte, error) {
	type alias IntegrationAnalysis
	return json.Marshal(struct {
		ResultType ResultType `json:"result_type"`
		*alias
	}{TypeIntegration, (*alias)(r)})
}

func (r *ValidationResult) MarshalJSON() ([]byte, error) {
	type alias ValidationResult
	return json.Marshal(struct {
		ResultType ResultType `json:"result_type"`
		*alias
	}{TypeValidation, (*alias)(r)})
}

func (r *DiagnosticResult) MarshalJSON() ([]byte, error) {
	type alias DiagnosticResult
	return json.Marshal(struct {
		ResultType ResultType `json:"result_type"`
		*alias
	}{TypeDiagnostic, (*alias)(r)})
}

func (r *GeneratedData) MarshalJSON() ([]byte, error) {
	type alias GeneratedData
	return json.Marshal(struct {
		ResultType ResultType `json:"result_type"`
		*alias
	}{TypeGenerated, (*alias)(r)})
}

// DecodeResult reads one boundary-encoded result back into its variant.
func DecodeResult(data []byte) (Result, error) {
	tag := gjson.GetBytes(data, "result_type")
	if !tag.Exists() {
		return nil, fmt.Errorf("decode result: missing result_type")
	}

	var r Result
	switch ResultType(tag.String()) {
	case TypeBenford:
		r = &BenfordAnalysis{}
	case TypePareto:
		r = &ParetoAnalysis{}
	case TypeZipf:
		r = &ZipfAnalysis{}
	case TypeNormal:
		r = &NormalAnalysis{}
	case TypePoisson:
		r = &PoissonAnalysis{}
	case TypeIntegration:
		r = &IntegrationAnalysis{}
	case TypeValidation:
		r = &ValidationResult{}
	case TypeDiagnostic:
		r = &DiagnosticResult{}
	case TypeGenerated:
		r = &GeneratedData{}
	default:
		return nil, fmt.Errorf("decode result: unknown result_type %q", tag.String())
	}

	if err := json.Unmarshal(data, r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag.String(), err)
	}
	return r, nil
}
