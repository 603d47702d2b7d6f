package analysis

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

func integrationAnalyzer() *IntegrationAnalyzer {
	a, _ := NewRegistry(slog.Default()).Get(law.Integration)
	return a.(*IntegrationAnalyzer)
}

func TestIntegration_ConflictRaisesOverallRisk(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		cfg := withLaw(func(lc *config.LawConfig) {
			lc.Laws = []law.ID{law.Normal, law.Benford}
			lc.EnableParallelProcessing = parallel
		})

		res, err := integrationAnalyzer().Analyze(context.Background(), numbers(logUniformGrid(10000)...), cfg)
		require.NoError(t, err)

		ia := res.(*law.IntegrationAnalysis)
		assert.Equal(t, []law.ID{law.Benford, law.Normal}, ia.LawsAnalyzed, "canonical order")
		require.Len(t, ia.LawRisks, 2)
		assert.Equal(t, law.RiskLow, ia.LawRisks[0].Risk)
		assert.Equal(t, law.RiskCritical, ia.LawRisks[1].Risk)
		assert.Equal(t, law.RiskCritical, ia.OverallRisk)
		assert.Equal(t, law.Normal, ia.DominantLaw)
		require.Len(t, ia.ConflictingResults, 1)
		assert.Contains(t, ia.ConflictingResults[0], "normal (CRITICAL) vs benf (LOW)")
		assert.NotEmpty(t, ia.Recommendations)
	}
}

func TestIntegration_PartialFailure(t *testing.T) {
	count, seed := 500, uint64(3)
	gen, err := NewGenerator().Generate(context.Background(), &law.GenerateSpec{
		Distribution: "normal", Count: &count, Seed: &seed,
	}, config.Default())
	require.NoError(t, err)

	// fractional values cannot be Poisson counts
	res, err := integrationAnalyzer().Analyze(context.Background(), numbers(gen.SampleData...), config.Default())
	require.NoError(t, err)

	ia := res.(*law.IntegrationAnalysis)
	assert.NotContains(t, ia.LawsAnalyzed, law.Poisson)
	assert.Contains(t, ia.LawsAnalyzed, law.Normal)
	assert.Contains(t, ia.AnalysisSummary, "not evaluated: poisson")

	found := false
	for _, r := range ia.Recommendations {
		if strings.HasPrefix(r, "poisson could not be evaluated") {
			found = true
		}
	}
	assert.True(t, found, "failed law is reported in recommendations")
}

func TestIntegration_AllLawsFail(t *testing.T) {
	_, err := integrationAnalyzer().Analyze(context.Background(), numbers(), config.Default())
	assert.ErrorIs(t, err, errors.ErrInsufficientData)
}

func TestIntegration_TieBrokenBySmallerPValue(t *testing.T) {
	low := &law.BenfordAnalysis{RiskLevel: law.RiskHigh, PValue: 0.01}
	lower := &law.NormalAnalysis{RiskLevel: law.RiskHigh, NormalityTestP: 0.001}
	pareto := &law.ParetoAnalysis{RiskLevel: law.RiskHigh}

	assert.True(t, moreSevere(lower, low))
	assert.False(t, moreSevere(low, lower))
	assert.True(t, moreSevere(low, pareto))
	assert.True(t, moreSevere(&law.ZipfAnalysis{RiskLevel: law.RiskCritical, CorrelationPValue: 1}, lower))
}

func TestIntegration_NoConflictWhenAllConform(t *testing.T) {
	cfg := withLaw(func(lc *config.LawConfig) { lc.Laws = []law.ID{law.Benford} })
	res, err := integrationAnalyzer().Analyze(context.Background(), numbers(perfectBenford(10000)...), cfg)
	require.NoError(t, err)

	ia := res.(*law.IntegrationAnalysis)
	assert.Empty(t, ia.ConflictingResults)
	assert.Equal(t, law.RiskLow, ia.OverallRisk)
	assert.Equal(t, []string{"All analyzed laws indicate conformity; no further action required"}, ia.Recommendations)
}

func TestIntegration_LargeAmountsFinish(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ds := numbers(1200, 35000, 870, 1.5e10, 420, 9100)
	res, err := integrationAnalyzer().Analyze(ctx, ds, config.Default())
	require.NoError(t, err)
	assert.Contains(t, res.(*law.IntegrationAnalysis).LawsAnalyzed, law.Poisson)
}
