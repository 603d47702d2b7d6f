package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"lawkit/internal/errors"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LAWKIT_FORMAT", "")
	t.Setenv("LAWKIT_LOG_LEVEL", "")

	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeColumn(t *testing.T, values []float64) string {
	t.Helper()
	var b strings.Builder
	for _, v := range values {
		fmt.Fprintf(&b, "%g\n", v)
	}
	path := filepath.Join(t.TempDir(), "values.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func benfordColumn(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Round(math.Pow(10, 1+4*(float64(i)+0.5)/float64(n)))
	}
	return out
}

func TestLawCommand_FileToJSON(t *testing.T) {
	path := writeColumn(t, benfordColumn(1000))

	out, err := execute(t, "", "benf", path, "--format", "json")
	require.NoError(t, err)

	results := gjson.Parse(out).Array()
	require.Len(t, results, 1)
	assert.Equal(t, "BenfordAnalysis", results[0].Get("result_type").String())
	assert.Equal(t, int64(1000), results[0].Get("total_numbers").Int())
	assert.Equal(t, "low", strings.ToLower(results[0].Get("risk_level").String()))
}

func TestLawCommand_ReadsStdin(t *testing.T) {
	out, err := execute(t, "10 20 30 40 50 60 70 80 90 1000", "pareto", "--format", "json")
	require.NoError(t, err)

	result := gjson.Get(out, "0")
	assert.Equal(t, "ParetoAnalysis", result.Get("result_type").String())
	assert.Equal(t, int64(10), result.Get("total_items").Int())
}

func TestLawCommand_Alias(t *testing.T) {
	path := writeColumn(t, benfordColumn(200))
	out, err := execute(t, "", "benford", path, "-f", "json")
	require.NoError(t, err)
	assert.Equal(t, "BenfordAnalysis", gjson.Get(out, "0.result_type").String())
}

func TestLawCommand_FailOnRisk(t *testing.T) {
	// evenly spread leading digits are far from Benford
	var values []float64
	for d := 1; d <= 9; d++ {
		for i := 0; i < 100; i++ {
			values = append(values, float64(d*100+i))
		}
	}
	path := writeColumn(t, values)

	_, err := execute(t, "", "benf", path, "--format", "json")
	require.NoError(t, err)

	_, err = execute(t, "", "benf", path, "--format", "json", "--fail-on-risk")
	require.Error(t, err)
	assert.ErrorIs(t, err, errRiskExceeded)
	assert.Equal(t, exitRisk, exitCode(err))
}

func TestGenerateCommand_Deterministic(t *testing.T) {
	args := []string{"generate", "pareto", "--count", "50", "--seed", "42", "--param", "alpha=2", "-f", "json"}

	first, err := execute(t, "", args...)
	require.NoError(t, err)
	second, err := execute(t, "", args...)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	gen := gjson.Get(first, "0")
	assert.Equal(t, "GeneratedData", gen.Get("result_type").String())
	assert.Equal(t, int64(50), gen.Get("count").Int())
	assert.Equal(t, 2.0, gen.Get("parameters.alpha").Float())
	assert.Len(t, gen.Get("sample_data").Array(), 50)
}

func TestGenerateCommand_BadParam(t *testing.T) {
	_, err := execute(t, "", "generate", "zipf", "--param", "exponent=steep")
	assert.ErrorIs(t, err, errors.ErrInvalidConfiguration)
	assert.Equal(t, exitUsage, exitCode(err))
}

func TestExitCodes(t *testing.T) {
	_, err := execute(t, "", "generate", "cauchy")
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, "", "benf", "--confidence", "3", "-f", "json")
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, "1 2", "normal")
	assert.Equal(t, exitInsufficient, exitCode(err))

	_, err = execute(t, "5 5 5 5 5", "normal")
	assert.Equal(t, exitComputation, exitCode(err))

	_, err = execute(t, "", "serve", "extra")
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, "", "benf", "--no-such-flag")
	assert.Equal(t, exitUsage, exitCode(err))

	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitInternal, exitCode(fmt.Errorf("boom")))
}
