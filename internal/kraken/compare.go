package kraken

import "sort"

// Unclassified is the label Kraken uses for reads it could not assign.
// It is never part of a comparison.
const Unclassified = "unclassified"

// Options selects which records of a report take part in a comparison.
type Options struct {
	// Labels restricts the table to these taxa. Empty keeps everything.
	Labels []string
	// TopN keeps only the N most abundant records. Zero keeps everything.
	TopN int
}

// Prepare applies the label filter and then the top-N truncation.
func Prepare(t *Table, opt Options) *Table {
	return TopN(Filter(t, opt.Labels), opt.TopN)
}

// Filter keeps the records whose label is in labels, preserving order.
// A nil or empty label set returns t unchanged.
func Filter(t *Table, labels []string) *Table {
	if len(labels) == 0 {
		return t
	}
	keep := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		keep[l] = struct{}{}
	}
	out := &Table{Name: t.Name}
	for _, r := range t.Records {
		if _, ok := keep[r.Label]; ok {
			out.Records = append(out.Records, r)
		}
	}
	return out
}

// TopN keeps the n records with the largest percentage, largest first.
// Equal values keep their file order and missing values rank below every
// valid one. n <= 0 returns t unchanged.
func TopN(t *Table, n int) *Table {
	if n <= 0 {
		return t
	}
	recs := make([]Record, len(t.Records))
	copy(recs, t.Records)
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].Percentage, recs[j].Percentage
		if a.Valid != b.Valid {
			return a.Valid
		}
		return a.Valid && a.Float64 > b.Float64
	})
	if n < len(recs) {
		recs = recs[:n]
	}
	return &Table{Name: t.Name, Records: recs}
}

// Pair is a taxon present in both reports.
type Pair struct {
	Label  string
	Before NullFloat
	After  NullFloat
}

// Delta returns After - Before, or false if either side is missing.
func (p Pair) Delta() (float64, bool) {
	if !p.Before.Valid || !p.After.Valid {
		return 0, false
	}
	return p.After.Float64 - p.Before.Float64, true
}

// Compare inner-joins two reports on exact label match after dropping
// Unclassified from both. Pairs follow the order of before; a label that
// repeats on either side yields one pair per combination. Reports with no
// shared label give a nil slice.
func Compare(before, after *Table) []Pair {
	index := make(map[string][]NullFloat)
	for _, r := range after.Records {
		if r.Label == Unclassified {
			continue
		}
		index[r.Label] = append(index[r.Label], r.Percentage)
	}
	var out []Pair
	for _, r := range before.Records {
		if r.Label == Unclassified {
			continue
		}
		for _, v := range index[r.Label] {
			out = append(out, Pair{Label: r.Label, Before: r.Percentage, After: v})
		}
	}
	return out
}
