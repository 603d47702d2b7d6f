package reader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lawkit/domain/law"
	"lawkit/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFile_CSVWithHeader(t *testing.T) {
	path := writeFile(t, "sales.csv", "region,amount,units\nnorth,\"1,200\",3\nsouth,950,\n")

	in, err := NewDataReader(Options{}, nil).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, in.Datasets, 3)

	assert.Equal(t, path+"#amount", in.Datasets[1].Path)
	assert.Equal(t, []string{"1,200", "950"}, in.Datasets[1].Tokens)
	assert.Equal(t, []string{"3"}, in.Datasets[2].Tokens)
}

func TestReadFile_SingleColumnKeepsName(t *testing.T) {
	path := writeFile(t, "values.csv", "10\n20\n30\n")

	in, err := NewDataReader(Options{}, nil).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, in.Datasets, 1)
	assert.Equal(t, path, in.Datasets[0].Path)
	assert.Equal(t, []string{"10", "20", "30"}, in.Datasets[0].Tokens)
}

func TestReadFile_Text(t *testing.T) {
	path := writeFile(t, "numbers.txt", "1 2\n３ 四\n")

	in, err := NewDataReader(Options{}, nil).ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "３", "四"}, in.Datasets[0].Tokens)
}

func TestReadFile_Words(t *testing.T) {
	path := writeFile(t, "doc.txt", "a b a c a b")

	in, err := NewDataReader(Options{Words: true}, nil).ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 2, 1}, in.Datasets[0].Numbers)
}

func TestReadFile_XLSX(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "amount"))
	require.NoError(t, f.SetCellValue("Sheet1", "A2", 125))
	require.NoError(t, f.SetCellValue("Sheet1", "A3", 7.5))
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	in, err := NewDataReader(Options{}, nil).ReadFile(path)
	require.NoError(t, err)
	require.Len(t, in.Datasets, 1)
	assert.Equal(t, []string{"125", "7.5"}, in.Datasets[0].Tokens)
}

func TestReadFile_Missing(t *testing.T) {
	_, err := NewDataReader(Options{}, nil).ReadFile(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, errors.ErrInvalidInput)
}

func TestRead_SniffsJSON(t *testing.T) {
	in, err := NewDataReader(Options{}, nil).Read(strings.NewReader("  [1, 2.5, \"3\", null]"), "stdin")
	require.NoError(t, err)
	require.Len(t, in.Datasets, 1)
	assert.Equal(t, []float64{1, 2.5}, in.Datasets[0].Numbers)
	assert.Equal(t, []string{"3", "null"}, in.Datasets[0].Tokens)
	assert.Equal(t, 4, in.Datasets[0].Len())
}

func TestFromJSON_ObjectPaths(t *testing.T) {
	in, err := FromJSON([]byte(`{"sales": {"q1": [1, 2], "q2": [3]}, "note": "x", "costs": [4]}`), "doc")
	require.NoError(t, err)

	var paths []string
	for _, ds := range in.Datasets {
		paths = append(paths, ds.Path)
	}
	assert.Equal(t, []string{"sales.q1", "sales.q2", "costs"}, paths)
}

func TestFromJSON_GenerateSpec(t *testing.T) {
	in, err := FromJSON([]byte(`{"type": "normal", "count": 10, "min": 0, "max": 5, "seed": "42", "params": {"mean": 2}}`), "spec")
	require.NoError(t, err)
	require.NotNil(t, in.Spec)
	assert.Empty(t, in.Datasets)

	spec := in.Spec
	assert.Equal(t, "normal", spec.Distribution)
	assert.Equal(t, 10, *spec.Count)
	assert.Equal(t, 5.0, *spec.Max)
	assert.Equal(t, uint64(42), *spec.Seed)
	assert.Equal(t, map[string]float64{"mean": 2}, spec.Params)
}

func TestFromJSON_Rejects(t *testing.T) {
	for _, doc := range []string{`{`, `42`, `{"a": 1}`, `{"count": "many"}`} {
		_, err := FromJSON([]byte(doc), "x")
		assert.ErrorIs(t, err, errors.ErrInvalidInput, doc)
	}
}

func TestReadFiles_Concatenates(t *testing.T) {
	a := writeFile(t, "a.txt", "1 2")
	b := writeFile(t, "b.json", "[3]")

	in, err := NewDataReader(Options{}, nil).ReadFiles([]string{a, b})
	require.NoError(t, err)
	require.Len(t, in.Datasets, 2)
	assert.Equal(t, []law.Dataset{
		{Path: a, Tokens: []string{"1", "2"}},
		{Path: b, Numbers: []float64{3}},
	}, in.Datasets)
}
