package analysis

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawkit/domain/law"
	"lawkit/internal/config"
)

func diagnose(t *testing.T, ds law.Dataset, cfg *config.Resolved) *law.DiagnosticResult {
	t.Helper()
	a, ok := NewRegistry(slog.Default()).Get(law.Diagnostic)
	require.True(t, ok)
	res, err := a.Analyze(context.Background(), ds, cfg)
	require.NoError(t, err)
	return res.(*law.DiagnosticResult)
}

func TestDiagnoser_EmptyDataset(t *testing.T) {
	d := diagnose(t, numbers(), config.Default())
	assert.Equal(t, DiagnosisInsufficientData, d.DiagnosticType)
	assert.Equal(t, 0.0, d.ConfidenceLevel)
	assert.NotEmpty(t, d.Findings)
}

func TestDiagnoser_ConflictingSignals(t *testing.T) {
	cfg := withLaw(func(lc *config.LawConfig) { lc.Laws = []law.ID{law.Benford, law.Normal} })
	d := diagnose(t, numbers(logUniformGrid(10000)...), cfg)

	assert.Equal(t, DiagnosisConflictingSignals, d.DiagnosticType)
	assert.Greater(t, d.ConfidenceLevel, 0.0)
	assert.LessOrEqual(t, d.ConfidenceLevel, 1.0)
}

func TestDiagnoser_DistributionMismatch(t *testing.T) {
	cfg := withLaw(func(lc *config.LawConfig) { lc.Laws = []law.ID{law.Normal} })
	d := diagnose(t, numbers(logUniformGrid(10000)...), cfg)
	assert.Equal(t, DiagnosisDistributionMismatch, d.DiagnosticType)
}

func TestDiagnoser_Conformant(t *testing.T) {
	cfg := withLaw(func(lc *config.LawConfig) { lc.Laws = []law.ID{law.Benford} })
	d := diagnose(t, numbers(logUniformGrid(10000)...), cfg)

	assert.Equal(t, DiagnosisConformant, d.DiagnosticType)
	assert.InDelta(t, 1.0, d.ConfidenceLevel, 1e-9)
}

func TestDiagnoser_DataQuality(t *testing.T) {
	tokens := make([]string, 60)
	for i := range tokens {
		tokens[i] = "missing"
	}
	ds := law.Dataset{Path: "gappy", Numbers: logUniformGrid(60), Tokens: tokens}
	cfg := withLaw(func(lc *config.LawConfig) { lc.Laws = []law.ID{law.Benford} })

	d := diagnose(t, ds, cfg)
	assert.Equal(t, DiagnosisDataQuality, d.DiagnosticType)
}

func TestDiagnoser_ConfidenceCountsParsedValuesOnly(t *testing.T) {
	cfg := withLaw(func(lc *config.LawConfig) { lc.Laws = []law.ID{law.Benford} })
	values := logUniformGrid(60) // half of four times the minimum sample

	clean := diagnose(t, law.Dataset{Path: "clean", Numbers: values}, cfg)

	tokens := make([]string, 300)
	for i := range tokens {
		tokens[i] = "n/a"
	}
	noisy := diagnose(t, law.Dataset{Path: "noisy", Numbers: values, Tokens: tokens}, cfg)

	assert.LessOrEqual(t, clean.ConfidenceLevel, 0.5)
	assert.LessOrEqual(t, noisy.ConfidenceLevel, clean.ConfidenceLevel)
}
