package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

func TestNormal_GeneratedSampleIsConformant(t *testing.T) {
	count, lo, hi, seed := 1000, 0.0, 100.0, uint64(42)
	gen, err := NewGenerator().Generate(context.Background(), &law.GenerateSpec{
		Distribution: "normal", Count: &count, Min: &lo, Max: &hi, Seed: &seed,
	}, config.Default())
	require.NoError(t, err)

	res, err := NewNormalAnalyzer().Analyze(context.Background(), numbers(gen.SampleData...), config.Default())
	require.NoError(t, err)

	n := res.(*law.NormalAnalysis)
	assert.Greater(t, n.NormalityTestP, 0.05)
	assert.Equal(t, law.RiskLow, n.RiskLevel)
	assert.InDelta(t, 50, n.Mean, 2)
	assert.InDelta(t, 100.0/6, n.StdDev, 1.5)
	assert.Nil(t, n.OutlierCount)
}

func TestNormal_SkewedSampleIsCritical(t *testing.T) {
	values := make([]float64, 200)
	for i := range values {
		values[i] = math.Pow(float64(i+1), 3)
	}
	res, err := NewNormalAnalyzer().Analyze(context.Background(), numbers(values...), config.Default())
	require.NoError(t, err)

	n := res.(*law.NormalAnalysis)
	assert.Equal(t, law.RiskCritical, n.RiskLevel)
	assert.Greater(t, n.Skewness, 0.5)
}

func TestNormal_OutlierCount(t *testing.T) {
	values := make([]float64, 0, 21)
	for i := 1; i <= 20; i++ {
		values = append(values, float64(i))
	}
	values = append(values, 1000)

	cfg := withLaw(func(lc *config.LawConfig) { lc.EnableOutlierDetection = true })
	res, err := NewNormalAnalyzer().Analyze(context.Background(), numbers(values...), cfg)
	require.NoError(t, err)

	n := res.(*law.NormalAnalysis)
	require.NotNil(t, n.OutlierCount)
	assert.Equal(t, 1, *n.OutlierCount)
}

func TestNormal_Errors(t *testing.T) {
	_, err := NewNormalAnalyzer().Analyze(context.Background(), numbers(1, 2), config.Default())
	assert.ErrorIs(t, err, errors.ErrInsufficientData)

	_, err = NewNormalAnalyzer().Analyze(context.Background(), numbers(7, 7, 7, 7), config.Default())
	assert.ErrorIs(t, err, errors.ErrComputation)
}
