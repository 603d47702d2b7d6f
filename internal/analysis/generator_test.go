package analysis

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

func generate(t *testing.T, dist string, count int, seed uint64) *law.GeneratedData {
	t.Helper()
	out, err := NewGenerator().Generate(context.Background(), &law.GenerateSpec{
		Distribution: dist, Count: &count, Seed: &seed,
	}, config.Default())
	require.NoError(t, err)
	return out
}

func TestGenerator_SeedIsDeterministic(t *testing.T) {
	for _, dist := range []string{"benf", "pareto", "zipf", "normal", "poisson"} {
		a := generate(t, dist, 200, 42)
		b := generate(t, dist, 200, 42)
		c := generate(t, dist, 200, 43)

		assert.Equal(t, a.SampleData, b.SampleData, dist)
		assert.NotEqual(t, a.SampleData, c.SampleData, dist)
		assert.Equal(t, 200, a.Count)
		assert.Equal(t, dist, a.DataType)
		require.NotNil(t, a.Seed)
		assert.Equal(t, uint64(42), *a.Seed)
	}
}

func TestGenerator_ConfigSeedAndCount(t *testing.T) {
	seed := uint64(42)
	cfg := withLaw(func(lc *config.LawConfig) {
		lc.GenerateCount = 50
		lc.GenerateSeed = &seed
	})
	a, err := NewGenerator().Generate(context.Background(), &law.GenerateSpec{Distribution: "normal"}, cfg)
	require.NoError(t, err)
	b, err := NewGenerator().Generate(context.Background(), &law.GenerateSpec{Distribution: "normal"}, cfg)
	require.NoError(t, err)

	assert.Len(t, a.SampleData, 50)
	assert.Equal(t, a.SampleData, b.SampleData)
}

func TestGenerator_DefaultsToBenford(t *testing.T) {
	out, err := NewGenerator().Generate(context.Background(), nil, config.Default())
	require.NoError(t, err)
	assert.Equal(t, "benf", out.DataType)
	assert.Len(t, out.SampleData, config.DefaultGenerateCount)
	assert.Nil(t, out.Seed)
}

func TestGenerator_RespectsRange(t *testing.T) {
	count, lo, hi, seed := 2000, 0.0, 100.0, uint64(9)
	out, err := NewGenerator().Generate(context.Background(), &law.GenerateSpec{
		Distribution: "normal", Count: &count, Min: &lo, Max: &hi, Seed: &seed,
	}, config.Default())
	require.NoError(t, err)

	for _, v := range out.SampleData {
		assert.True(t, v >= 0 && v <= 100, "value %v outside range", v)
	}
	assert.InDelta(t, 50, out.Parameters["mean"], 1e-12)
}

func TestGenerator_SamplesHaveLawShape(t *testing.T) {
	for _, v := range generate(t, "poisson", 500, 1).SampleData {
		assert.Equal(t, math.Trunc(v), v)
		assert.GreaterOrEqual(t, v, 0.0)
	}
	for _, v := range generate(t, "pareto", 500, 1).SampleData {
		assert.GreaterOrEqual(t, v, 1.0)
	}

	benf := generate(t, "benf", 20000, 5)
	res, err := NewBenfordAnalyzer().Analyze(context.Background(), numbers(benf.SampleData...), config.Default())
	require.NoError(t, err)
	assert.LessOrEqual(t, int(res.(*law.BenfordAnalysis).RiskLevel), int(law.RiskMedium))

	zipf := generate(t, "zipf", 500, 5)
	res, err = NewZipfAnalyzer().Analyze(context.Background(), numbers(zipf.SampleData...), config.Default())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.(*law.ZipfAnalysis).ZipfCoefficient, 0.1)
}

func TestGenerator_SamplesAnalyzeAsLowRisk(t *testing.T) {
	reg := NewRegistry(slog.Default())
	for _, id := range []law.ID{law.Benford, law.Pareto, law.Zipf, law.Normal, law.Poisson} {
		a, ok := reg.Get(id)
		require.True(t, ok)
		for _, seed := range []uint64{1, 42, 7} {
			gen := generate(t, string(id), 1000, seed)
			res, err := a.Analyze(context.Background(), numbers(gen.SampleData...), config.Default())
			require.NoError(t, err, "%s seed %d", id, seed)
			assert.Equal(t, law.RiskLow, res.(law.Assessment).Risk(), "%s seed %d", id, seed)
		}
	}
}

func TestGenerator_ParetoHoldsEightyTwenty(t *testing.T) {
	for _, seed := range []uint64{1, 2, 3, 7, 42} {
		gen := generate(t, "pareto", 1000, seed)
		res, err := NewParetoAnalyzer().Analyze(context.Background(), numbers(gen.SampleData...), config.Default())
		require.NoError(t, err)
		assert.InDelta(t, 0.8, res.(*law.ParetoAnalysis).ParetoRatio, 0.02, "seed %d", seed)
	}
}

func TestGenerator_BoundedSamplesStayInRange(t *testing.T) {
	count, lo, hi, seed := 1000, 2.0, 500.0, uint64(11)
	out, err := NewGenerator().Generate(context.Background(), &law.GenerateSpec{
		Distribution: "pareto", Count: &count, Min: &lo, Max: &hi, Seed: &seed,
	}, config.Default())
	require.NoError(t, err)
	for _, v := range out.SampleData {
		assert.True(t, v >= lo && v <= hi, "value %v outside range", v)
	}
}

func TestGenerator_Errors(t *testing.T) {
	_, err := NewGenerator().Generate(context.Background(), &law.GenerateSpec{Distribution: "cauchy"}, config.Default())
	assert.ErrorIs(t, err, errors.ErrUnknownLaw)

	zero := 0
	_, err = NewGenerator().Generate(context.Background(), &law.GenerateSpec{Count: &zero}, config.Default())
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)

	huge := 100_000_000_000
	_, err = NewGenerator().Generate(context.Background(), &law.GenerateSpec{Distribution: "normal", Count: &huge}, config.Default())
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)

	lo, hi := 5.0, 1.0
	_, err = NewGenerator().Generate(context.Background(), &law.GenerateSpec{Min: &lo, Max: &hi}, config.Default())
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)

	_, err = NewGenerator().Generate(context.Background(), &law.GenerateSpec{
		Distribution: "pareto", Params: map[string]float64{"alpha": -1},
	}, config.Default())
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
}
