package app

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

func benfordLike(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Pow(10, 4*(float64(i)+0.5)/float64(n))
	}
	return out
}

func TestDispatcher_UnknownLaw(t *testing.T) {
	d := NewDispatcher(nil)

	_, err := d.Analyze(context.Background(), "not_a_law", law.NewInput("x", []float64{1, 2, 3}), config.Default())
	assert.ErrorIs(t, err, errors.ErrUnknownLaw)

	// the identifier is checked before the options are resolved
	_, err = d.Law(context.Background(), "not_a_law", law.Input{}, nil, &config.LawOptions{ConfidenceLevel: config.Ptr(2.0)})
	assert.ErrorIs(t, err, errors.ErrUnknownLaw)
}

func TestDispatcher_LawResolvesOptions(t *testing.T) {
	d := NewDispatcher(nil)

	_, err := d.Law(context.Background(), "benf", law.NewInput("x", benfordLike(100)), nil,
		&config.LawOptions{ConfidenceLevel: config.Ptr(1.5)})
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)

	results, err := d.Law(context.Background(), "benf", law.NewInput("x", benfordLike(1000)), nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, law.TypeBenford, results[0].Type())
	assert.Equal(t, "x", results[0].SourcePath())
}

func TestDispatcher_PathFilteringKeepsOrder(t *testing.T) {
	input := law.Input{Datasets: []law.Dataset{
		{Path: "sales.q1", Numbers: benfordLike(200)},
		{Path: "sales.q2", Numbers: benfordLike(300)},
		{Path: "costs.q1", Numbers: benfordLike(400)},
		{Path: "sales.tmp", Numbers: benfordLike(500)},
	}}

	for _, parallel := range []bool{false, true} {
		results, err := NewDispatcher(nil).Law(context.Background(), "pareto", input,
			&config.GenericOptions{PathFilter: config.Ptr("sales"), IgnoreKeysRegex: config.Ptr(`\.tmp$`)},
			&config.LawOptions{EnableParallelProcessing: config.Ptr(parallel)})
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "sales.q1", results[0].SourcePath())
		assert.Equal(t, "sales.q2", results[1].SourcePath())
		assert.Equal(t, 200, results[0].(*law.ParetoAnalysis).TotalItems)
	}
}

func TestDispatcher_EverythingFilteredOut(t *testing.T) {
	_, err := NewDispatcher(nil).Law(context.Background(), "normal", law.NewInput("a", benfordLike(50)),
		&config.GenericOptions{PathFilter: config.Ptr("zzz")}, nil)
	assert.ErrorIs(t, err, errors.ErrInsufficientData)
}

func TestDispatcher_ExactIdentifiersOnly(t *testing.T) {
	for _, id := range []string{"BENF", " pareto ", "benford", "Normal", ""} {
		_, err := NewDispatcher(nil).Law(context.Background(), id, law.NewInput("x", benfordLike(100)), nil, nil)
		assert.ErrorIs(t, err, errors.ErrUnknownLaw, "%q", id)
	}
}

func TestDispatcher_Generate(t *testing.T) {
	spec := &law.GenerateSpec{Distribution: "poisson", Count: config.Ptr(25)}
	results, err := NewDispatcher(nil).Law(context.Background(), "generate", law.Input{Spec: spec}, nil,
		&config.LawOptions{GenerateSeed: config.Ptr("42")})
	require.NoError(t, err)
	require.Len(t, results, 1)

	gen := results[0].(*law.GeneratedData)
	assert.Len(t, gen.SampleData, 25)
	require.NotNil(t, gen.Seed)
	assert.Equal(t, uint64(42), *gen.Seed)
}

func TestDispatcher_MemoryGuard(t *testing.T) {
	input := law.NewInput("big", make([]float64, 200_000)) // about 1.5 MB
	for i := range input.Datasets[0].Numbers {
		input.Datasets[0].Numbers[i] = float64(i%97 + 1)
	}
	limit := &config.LawOptions{MemoryLimitMB: config.Ptr(1)}

	_, err := NewDispatcher(nil).Law(context.Background(), "benf", input, nil, limit)
	assert.ErrorIs(t, err, errors.ErrComputation)

	results, err := NewDispatcher(nil).Law(context.Background(), "benf", input,
		&config.GenericOptions{UseMemoryOptimization: config.Ptr(true), BatchSize: config.Ptr(1000)}, limit)
	require.NoError(t, err)
	assert.Equal(t, 200_000, results[0].(*law.BenfordAnalysis).TotalNumbers)
}

func TestDispatcher_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDispatcher(nil).Analyze(ctx, "normal", law.NewInput("a", benfordLike(50)), config.Default())
	assert.ErrorIs(t, err, context.Canceled)
}
