package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

// IntegrationAnalyzer runs a subset of the single-law analyzers on one
// dataset and reconciles their verdicts.
type IntegrationAnalyzer struct {
	singles map[law.ID]Analyzer
	logger  *slog.Logger
}

func NewIntegrationAnalyzer(singles map[law.ID]Analyzer, logger *slog.Logger) *IntegrationAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrationAnalyzer{singles: singles, logger: logger}
}

func (a *IntegrationAnalyzer) Law() law.ID { return law.Integration }

// lawOutcome is one sub-analysis, kept at the law's canonical position.
type lawOutcome struct {
	id     law.ID
	result law.Assessment
	err    error
}

func (a *IntegrationAnalyzer) Analyze(ctx context.Context, ds law.Dataset, cfg *config.Resolved) (law.Result, error) {
	lc := cfg.LawSettings()
	ids := append([]law.ID(nil), lc.Laws...)
	if len(ids) == 0 {
		ids = append(ids, law.SingleLaws...)
	}
	sort.SliceStable(ids, func(i, j int) bool { return ids[i].Rank() < ids[j].Rank() })

	outcomes, err := a.runAll(ctx, ds, cfg, ids, lc.EnableParallelProcessing)
	if err != nil {
		return nil, err
	}

	var succeeded []lawOutcome
	var failed []lawOutcome
	for _, o := range outcomes {
		if o.err != nil {
			failed = append(failed, o)
			continue
		}
		succeeded = append(succeeded, o)
	}
	if len(succeeded) == 0 {
		reasons := make([]string, len(failed))
		for i, f := range failed {
			reasons[i] = f.err.Error()
		}
		return nil, errors.InsufficientData("integration", "no law could be evaluated: "+strings.Join(reasons, "; "))
	}

	result := &law.IntegrationAnalysis{
		Path:               ds.Path,
		LawsAnalyzed:       make([]law.ID, 0, len(succeeded)),
		LawRisks:           make([]law.LawRisk, 0, len(succeeded)),
		ConflictingResults: []string{},
		Recommendations:    []string{},
	}

	dominant := succeeded[0]
	for _, o := range succeeded {
		result.LawsAnalyzed = append(result.LawsAnalyzed, o.id)
		lr := law.LawRisk{Law: o.id, Risk: o.result.Risk()}
		if p, ok := o.result.Significance(); ok {
			lr.PValue = &p
		}
		result.LawRisks = append(result.LawRisks, lr)
		if moreSevere(o.result, dominant.result) {
			dominant = o
		}
	}
	result.OverallRisk = dominant.result.Risk()
	result.DominantLaw = dominant.id

	threshold := lc.RiskThreshold
	type conflict struct {
		anomalous, conformant lawOutcome
	}
	var conflicts []conflict
	for i := 0; i < len(succeeded); i++ {
		for j := i + 1; j < len(succeeded); j++ {
			x, y := succeeded[i], succeeded[j]
			xa := x.result.Risk().AtLeast(threshold)
			ya := y.result.Risk().AtLeast(threshold)
			if xa == ya {
				continue
			}
			if ya {
				x, y = y, x
			}
			conflicts = append(conflicts, conflict{anomalous: x, conformant: y})
			result.ConflictingResults = append(result.ConflictingResults,
				fmt.Sprintf("%s (%s) vs %s (%s): %s signals an anomaly while %s indicates conformity",
					x.id, x.result.Risk(), y.id, y.result.Risk(), x.id, y.id))
		}
	}

	for _, o := range succeeded {
		if o.result.Risk().AtLeast(threshold) {
			result.Recommendations = append(result.Recommendations, lawRecommendation(o.id, o.result.Risk()))
		}
	}
	for _, c := range conflicts {
		gap := int(c.anomalous.result.Risk()) - int(c.conformant.result.Risk())
		if gap >= 2 {
			result.Recommendations = append(result.Recommendations, fmt.Sprintf(
				"Strong disagreement between %s and %s: the data may mix populations; analyze its segments separately",
				c.anomalous.id, c.conformant.id))
		} else {
			result.Recommendations = append(result.Recommendations, fmt.Sprintf(
				"Mild disagreement between %s and %s: collect more data before drawing conclusions",
				c.anomalous.id, c.conformant.id))
		}
	}
	for _, f := range failed {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"%s could not be evaluated (%s); supply data suited to this law", f.id, f.err))
	}
	if len(result.Recommendations) == 0 {
		result.Recommendations = append(result.Recommendations,
			"All analyzed laws indicate conformity; no further action required")
	}

	result.AnalysisSummary = fmt.Sprintf("Integrated %d of %d laws: overall risk %s driven by %s, %d conflict(s)",
		len(succeeded), len(outcomes), result.OverallRisk, result.DominantLaw, len(conflicts))
	if len(failed) > 0 {
		names := make([]string, len(failed))
		for i, f := range failed {
			names[i] = string(f.id)
		}
		result.AnalysisSummary += fmt.Sprintf("; not evaluated: %s", strings.Join(names, ", "))
	}
	return result, nil
}

// runAll executes every requested law. Data-shape failures are recorded per
// law; any other error aborts the whole call.
func (a *IntegrationAnalyzer) runAll(ctx context.Context, ds law.Dataset, cfg *config.Resolved, ids []law.ID, parallel bool) ([]lawOutcome, error) {
	outcomes := make([]lawOutcome, len(ids))

	run := func(ctx context.Context, i int) error {
		id := ids[i]
		analyzer, ok := a.singles[id]
		if !ok {
			return errors.UnknownLaw(string(id))
		}
		res, err := analyzer.Analyze(ctx, ds, cfg)
		if err != nil {
			if errors.Is(err, errors.ErrInsufficientData) || errors.Is(err, errors.ErrComputation) {
				a.logger.Debug("law not evaluated", "law", id, "path", ds.Path, "error", err)
				outcomes[i] = lawOutcome{id: id, err: err}
				return nil
			}
			return err
		}
		assessment, ok := res.(law.Assessment)
		if !ok {
			return errors.InternalError(fmt.Sprintf("%s returned %s, not an assessment", id, res.Type()))
		}
		outcomes[i] = lawOutcome{id: id, result: assessment}
		return nil
	}

	if !parallel {
		for i := range ids {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
		return outcomes, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range ids {
		g.Go(func() error { return run(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// moreSevere orders by risk, then by the smaller p-value. A law without a
// p-value ranks as p=1.
func moreSevere(a, b law.Assessment) bool {
	if a.Risk() != b.Risk() {
		return a.Risk() > b.Risk()
	}
	return pOrOne(a) < pOrOne(b)
}

func pOrOne(a law.Assessment) float64 {
	if p, ok := a.Significance(); ok && !math.IsNaN(p) {
		return p
	}
	return 1
}

func lawRecommendation(id law.ID, risk law.RiskLevel) string {
	switch id {
	case law.Benford:
		return fmt.Sprintf("benf is %s: audit the records whose leading digits are over-represented for manipulation or fabrication", risk)
	case law.Pareto:
		return fmt.Sprintf("pareto is %s: review the concentration; a few items dominate differently than the 80/20 pattern", risk)
	case law.Zipf:
		return fmt.Sprintf("zipf is %s: the rank-frequency profile departs from a power law; check for truncation or synthetic data", risk)
	case law.Normal:
		return fmt.Sprintf("normal is %s: inspect skewness and outliers before applying methods that assume normality", risk)
	case law.Poisson:
		return fmt.Sprintf("poisson is %s: events are not independent at a constant rate; look for clustering or dispersion", risk)
	default:
		return fmt.Sprintf("%s is %s", id, risk)
	}
}
