package sample_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/statloom-cli/internal/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_PlainList(t *testing.T) {
	p := write(t, "weights.txt", "# body weight (kg)\n71.2 68.4\n80.1, 77\n\n65.5\n")
	xs, err := sample.Load(p, sample.Options{})
	require.NoError(t, err)
	assert.Equal(t, []float64{71.2, 68.4, 80.1, 77, 65.5}, xs)
}

func TestLoad_PlainListRejectsText(t *testing.T) {
	p := write(t, "bad.txt", "1\n2\nthree\n")
	_, err := sample.Load(p, sample.Options{})
	var pe *sample.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, "three", pe.Value)
}

func TestLoad_CSVNamedColumn(t *testing.T) {
	p := write(t, "plots.csv", "plot,yield,moisture\nA1,12.5,74\nA2,,71\nB3,10.2,68\n")
	xs, err := sample.Load(p, sample.Options{Column: "Yield"})
	require.NoError(t, err)
	assert.Equal(t, []float64{12.5, 10.2}, xs)

	_, err = sample.Load(p, sample.Options{Column: "ph"})
	assert.Error(t, err)
}

func TestLoad_TSVIndexedColumnWithHeader(t *testing.T) {
	p := write(t, "runs.tsv", "run\tms\n1\t20.5\n2\t19.0\n")
	xs, err := sample.Load(p, sample.Options{Column: "2"})
	require.NoError(t, err)
	assert.Equal(t, []float64{20.5, 19.0}, xs)
}

func TestLoad_CSVBadValue(t *testing.T) {
	p := write(t, "runs.csv", "ms\n20\nfast\n")
	_, err := sample.Load(p, sample.Options{})
	var pe *sample.ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 3, pe.Line)
}

func TestLoad_Empty(t *testing.T) {
	p := write(t, "empty.txt", "# nothing\n")
	_, err := sample.Load(p, sample.Options{})
	assert.ErrorIs(t, err, sample.ErrEmpty)

	_, err = sample.Load(filepath.Join(t.TempDir(), "nope.txt"), sample.Options{})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseList(t *testing.T) {
	xs, err := sample.ParseList("1;2\t3\r\n4")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, xs)
}
