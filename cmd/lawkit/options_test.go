package main

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lawkit/internal/config"
)

func parseOptions(t *testing.T, args ...string) *config.Options {
	t.Helper()
	var f optionFlags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.register(fs)
	require.NoError(t, fs.Parse(args))
	return f.options(fs)
}

func TestOptions_UnsetFlagsStayNil(t *testing.T) {
	opts := parseOptions(t)

	assert.Equal(t, config.GenericOptions{}, opts.GenericOptions)
	assert.Equal(t, config.LawOptions{}, opts.LawOptions)

	// defaults shown in help must not leak into the records
	cfg, err := config.ResolveOptions(opts)
	require.NoError(t, err)
	assert.Nil(t, cfg.Law)
}

func TestOptions_SetFlags(t *testing.T) {
	opts := parseOptions(t,
		"--format", "json",
		"--details",
		"--recommendations=false",
		"--path-filter", "sales",
		"--confidence", "0.99",
		"--digits", "both",
		"--base", "16",
		"--count", "250",
		"--min", "0",
		"--seed", "7",
		"--parallel",
		"--laws", "benf,normal",
	)

	require.NotNil(t, opts.OutputFormat)
	assert.Equal(t, "json", *opts.OutputFormat)
	assert.Equal(t, config.Ptr(true), opts.ShowDetails)
	assert.Equal(t, config.Ptr(false), opts.ShowRecommendations)
	assert.Equal(t, config.Ptr("sales"), opts.PathFilter)
	assert.Nil(t, opts.BatchSize)

	assert.Equal(t, config.Ptr(0.99), opts.ConfidenceLevel)
	assert.Equal(t, config.Ptr("both"), opts.BenfordDigits)
	assert.Equal(t, config.Ptr(16), opts.BenfordBase)
	assert.Equal(t, config.Ptr(250), opts.GenerateCount)
	assert.Equal(t, config.Ptr(0.0), opts.GenerateRangeMin, "an explicit zero is still supplied")
	assert.Nil(t, opts.GenerateRangeMax)
	assert.Equal(t, config.Ptr("7"), opts.GenerateSeed)
	assert.Equal(t, config.Ptr(true), opts.EnableParallelProcessing)
	assert.Equal(t, []string{"benf", "normal"}, opts.Laws)
	assert.Nil(t, opts.SignificanceLevel)
}
