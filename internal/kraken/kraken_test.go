package kraken

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var beforeReport = strings.Join([]string{
	" 12.50\t1250\t1250\tU\t0\tunclassified",
	" 40.00\t4000\t10\tS\t562\t      Escherichia coli",
	"  7.25\t725\t725\tS\t1280\t      Staphylococcus aureus",
	"N/A\t0\t0\tS\t1310\t      Enterococcus faecalis",
	" 20.00\t2000\t2000\tS\t1639\t      Listeria monocytogenes",
	"",
	"  7.25\t725\t725\tS\t287\t      Pseudomonas aeruginosa",
}, "\n")

var afterReport = strings.Join([]string{
	" 30.00\t3000\t3000\tU\t0\tunclassified",
	" 10.00\t1000\t10\tS\t562\t      Escherichia coli",
	"  2.00\t200\t200\tS\t287\t      Pseudomonas aeruginosa",
	" 55.00\t5500\t5500\tS\t1280\t      Staphylococcus aureus",
}, "\n")

func mustParse(t *testing.T, body, name string) *Table {
	t.Helper()
	tbl, err := Parse(strings.NewReader(body), name)
	require.NoError(t, err)
	return tbl
}

func TestParse_TrimsLabelsAndCoercesPercentages(t *testing.T) {
	tbl := mustParse(t, beforeReport, "before.kreport")

	require.Equal(t, 6, tbl.Len())
	assert.Equal(t, []string{
		"unclassified", "Escherichia coli", "Staphylococcus aureus",
		"Enterococcus faecalis", "Listeria monocytogenes", "Pseudomonas aeruginosa",
	}, tbl.Labels())
	assert.Equal(t, Float(40), tbl.Records[1].Percentage)
	assert.False(t, tbl.Records[3].Percentage.Valid, "N/A must become a missing value")
	assert.Equal(t, 1, tbl.Missing())
}

func TestParse_ShortRowsArePadded(t *testing.T) {
	tbl := mustParse(t, "3.5\t10\n", "short")
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "", tbl.Records[0].Label)
	assert.Equal(t, Float(3.5), tbl.Records[0].Percentage)
}

func TestParse_TooManyFields(t *testing.T) {
	body := "1\t1\t1\tS\t1\tA\n2\t2\t2\tS\t2\tB\textra\n"
	_, err := Parse(strings.NewReader(body), "wide")
	require.Error(t, err)

	var re *RowError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 2, re.Line)
	assert.ErrorIs(t, err, ErrTooManyFields)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "sample.kreport")
	require.NoError(t, os.WriteFile(p, []byte(afterReport), 0o644))

	tbl, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "sample.kreport", tbl.Name)
	assert.Equal(t, 4, tbl.Len())

	_, err = Load(filepath.Join(dir, "missing.kreport"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFilter(t *testing.T) {
	tbl := mustParse(t, beforeReport, "before")

	assert.Same(t, tbl, Filter(tbl, nil))
	assert.Same(t, tbl, Filter(tbl, []string{}))

	got := Filter(tbl, []string{"Pseudomonas aeruginosa", "Escherichia coli", "Not present"})
	assert.Equal(t, []string{"Escherichia coli", "Pseudomonas aeruginosa"}, got.Labels())
	assert.Equal(t, 6, tbl.Len(), "filter must not mutate its input")
}

func TestTopN(t *testing.T) {
	tbl := mustParse(t, beforeReport, "before")

	assert.Same(t, tbl, TopN(tbl, 0))

	top := TopN(tbl, 3)
	assert.Equal(t, []string{"Escherichia coli", "Listeria monocytogenes", "unclassified"}, top.Labels())

	// Ties keep file order.
	top = TopN(tbl, 5)
	assert.Equal(t, []string{
		"Escherichia coli", "Listeria monocytogenes", "unclassified",
		"Staphylococcus aureus", "Pseudomonas aeruginosa",
	}, top.Labels())

	// Missing values come last and only when n reaches them.
	all := TopN(tbl, 100)
	require.Equal(t, tbl.Len(), all.Len())
	assert.Equal(t, "Enterococcus faecalis", all.Records[all.Len()-1].Label)
}

func TestTopN_KeepsLargest(t *testing.T) {
	tbl := mustParse(t, beforeReport, "before")
	for n := 1; n <= 8; n++ {
		top := TopN(tbl, n)
		want := n
		if want > tbl.Len() {
			want = tbl.Len()
		}
		require.Equal(t, want, top.Len(), "n=%d", n)

		kept := map[string]bool{}
		minKept := top.Records[top.Len()-1].Percentage
		for _, r := range top.Records {
			kept[r.Label] = true
		}
		for _, r := range tbl.Records {
			if kept[r.Label] || !r.Percentage.Valid {
				continue
			}
			require.True(t, minKept.Valid)
			assert.GreaterOrEqual(t, minKept.Float64, r.Percentage.Float64, "n=%d excluded %s", n, r.Label)
		}
	}
}

func TestCompare(t *testing.T) {
	before := mustParse(t, beforeReport, "before")
	after := mustParse(t, afterReport, "after")

	pairs := Compare(before, after)
	require.Len(t, pairs, 3)
	assert.Equal(t, Pair{Label: "Escherichia coli", Before: Float(40), After: Float(10)}, pairs[0])
	assert.Equal(t, Pair{Label: "Staphylococcus aureus", Before: Float(7.25), After: Float(55)}, pairs[1])
	assert.Equal(t, Pair{Label: "Pseudomonas aeruginosa", Before: Float(7.25), After: Float(2)}, pairs[2])

	for _, p := range pairs {
		assert.NotEqual(t, Unclassified, p.Label)
	}
	d, ok := pairs[0].Delta()
	require.True(t, ok)
	assert.InDelta(t, -30, d, 1e-12)
}

func TestCompare_EqualValuesSurvive(t *testing.T) {
	a := &Table{Records: []Record{{Label: "X", Percentage: Float(3)}, {Label: Unclassified, Percentage: Float(1)}}}
	b := &Table{Records: []Record{{Label: Unclassified, Percentage: Float(1)}, {Label: "X", Percentage: Float(3)}}}

	pairs := Compare(a, b)
	require.Len(t, pairs, 1)
	assert.Equal(t, pairs[0].Before, pairs[0].After)
}

func TestCompare_DisjointIsEmpty(t *testing.T) {
	a := &Table{Records: []Record{{Label: "A", Percentage: Float(1)}}}
	b := &Table{Records: []Record{{Label: "B", Percentage: Float(1)}}}
	assert.Empty(t, Compare(a, b))
}

func TestCompare_DuplicateLabels(t *testing.T) {
	a := &Table{Records: []Record{{Label: "A", Percentage: Float(1)}, {Label: "A", Percentage: Float(2)}}}
	b := &Table{Records: []Record{{Label: "A", Percentage: Float(5)}, {Label: "A", Percentage: Float(6)}}}

	pairs := Compare(a, b)
	require.Len(t, pairs, 4)
	assert.Equal(t, Float(1), pairs[0].Before)
	assert.Equal(t, Float(6), pairs[1].After)
	assert.Equal(t, Float(2), pairs[2].Before)
}

func TestPrepare_FilterThenTopN(t *testing.T) {
	tbl := mustParse(t, beforeReport, "before")
	got := Prepare(tbl, Options{
		Labels: []string{"Staphylococcus aureus", "Pseudomonas aeruginosa", "Escherichia coli"},
		TopN:   2,
	})
	assert.Equal(t, []string{"Escherichia coli", "Staphylococcus aureus"}, got.Labels())

	_, ok := Pair{Before: Float(1)}.Delta()
	assert.False(t, ok)
}
