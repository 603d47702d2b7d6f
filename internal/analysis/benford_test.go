package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawkit/domain/law"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

func TestBenford_PerfectMatch(t *testing.T) {
	values := perfectBenford(100000)

	res, err := NewBenfordAnalyzer().Analyze(context.Background(), numbers(values...), config.Default())
	require.NoError(t, err)

	b := res.(*law.BenfordAnalysis)
	assert.Equal(t, len(values), b.TotalNumbers)
	assert.Less(t, b.ChiSquare, 0.01)
	assert.Greater(t, b.PValue, 0.99)
	assert.Less(t, b.MAD, 0.001)
	assert.Equal(t, law.RiskLow, b.RiskLevel)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, b.Digits)
	assert.Len(t, b.ObservedDistribution, 9)
}

// digitSample repeats each leading digit d counts[d-1] times, scaled by m.
func digitSample(counts []int, m int) []float64 {
	var out []float64
	for i, c := range counts {
		for j := 0; j < c*m; j++ {
			out = append(out, float64(i+1)*100+float64(j%97))
		}
	}
	return out
}

func TestBenford_AcceptableMADFollowsChiSquare(t *testing.T) {
	counts := []int{31, 17, 13, 9, 9, 6, 6, 4, 5}

	res, err := NewBenfordAnalyzer().Analyze(context.Background(), numbers(digitSample(counts, 1)...), config.Default())
	require.NoError(t, err)
	small := res.(*law.BenfordAnalysis)
	assert.InDelta(t, 0.0069, small.MAD, 0.0002)
	assert.Greater(t, small.PValue, 0.05)
	assert.Equal(t, law.RiskLow, small.RiskLevel)

	// same proportions, forty times the evidence
	res, err = NewBenfordAnalyzer().Analyze(context.Background(), numbers(digitSample(counts, 40)...), config.Default())
	require.NoError(t, err)
	large := res.(*law.BenfordAnalysis)
	assert.InDelta(t, small.MAD, large.MAD, 1e-12)
	assert.Less(t, large.PValue, 0.005)
	assert.Equal(t, law.RiskHigh, large.RiskLevel)
}

func TestBenford_UniformDigitsAreCritical(t *testing.T) {
	var values []float64
	for d := 1; d <= 9; d++ {
		for i := 0; i < 100; i++ {
			values = append(values, float64(d*100+i%100))
		}
	}

	res, err := NewBenfordAnalyzer().Analyze(context.Background(), numbers(values...), config.Default())
	require.NoError(t, err)

	b := res.(*law.BenfordAnalysis)
	assert.Equal(t, law.RiskCritical, b.RiskLevel)
	assert.Less(t, b.PValue, 1e-6)
}

func TestBenford_SkipsZerosAndParsesTokens(t *testing.T) {
	ds := law.Dataset{
		Path:    "mixed",
		Numbers: []float64{0, 0, 123},
		Tokens:  []string{"４５６", "x"},
	}
	cfg := withLaw(func(lc *config.LawConfig) { lc.EnableJapaneseNumerals = true })

	res, err := NewBenfordAnalyzer().Analyze(context.Background(), ds, cfg)
	require.NoError(t, err)

	b := res.(*law.BenfordAnalysis)
	assert.Equal(t, 2, b.TotalNumbers)
	assert.Contains(t, b.AnalysisSummary, "low reliability")
}

func TestBenford_NoDigits(t *testing.T) {
	_, err := NewBenfordAnalyzer().Analyze(context.Background(), numbers(0, 0), config.Default())
	assert.ErrorIs(t, err, errors.ErrInsufficientData)
}

func TestBenford_MemoryOptimizedMatchesSinglePass(t *testing.T) {
	values := logUniformGrid(5000)
	plain, err := NewBenfordAnalyzer().Analyze(context.Background(), numbers(values...), config.Default())
	require.NoError(t, err)

	batched := config.Default()
	batched.UseMemoryOptimization = true
	batched.BatchSize = 128
	chunked, err := NewBenfordAnalyzer().Analyze(context.Background(), numbers(values...), batched)
	require.NoError(t, err)

	assert.Equal(t, plain, chunked)
}

func TestLeadingDigits(t *testing.T) {
	tests := []struct {
		v     float64
		base  int
		mode  config.DigitMode
		want  int
		valid bool
	}{
		{1000, 10, config.DigitsFirst, 1, true},
		{0.0456, 10, config.DigitsFirst, 4, true},
		{0.0456, 10, config.DigitsSecond, 5, true},
		{0.0456, 10, config.DigitsBoth, 45, true},
		{-72, 10, config.DigitsFirst, 7, true},
		{7, 10, config.DigitsSecond, 0, true},
		{255, 16, config.DigitsFirst, 15, true},
		{255, 16, config.DigitsSecond, 15, true},
		{256, 16, config.DigitsFirst, 1, true},
		{0, 10, config.DigitsFirst, 0, false},
	}
	for _, tt := range tests {
		got, ok := LeadingDigits(tt.v, tt.base, tt.mode)
		assert.Equal(t, tt.valid, ok, "%v base %d", tt.v, tt.base)
		if tt.valid {
			assert.Equal(t, tt.want, got, "%v base %d %s", tt.v, tt.base, tt.mode)
		}
	}
}

func TestBenfordExpected_SumsToOne(t *testing.T) {
	for _, base := range []int{8, 10, 16} {
		for _, mode := range []config.DigitMode{config.DigitsFirst, config.DigitsSecond, config.DigitsBoth} {
			_, probs := BenfordExpected(mode, base)
			sum := 0.0
			for _, p := range probs {
				sum += p
			}
			assert.InDelta(t, 1.0, sum, 1e-9, "base %d mode %s", base, mode)
		}
	}
}
