package kraken

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// reportFields is the number of positional columns in a Kraken summary report:
// percentage, reads, reads under clade, rank code, taxonomy id, taxon label.
const reportFields = 6

const (
	colPercentage = 0
	colLabel      = 5
)

// NullFloat is a percentage that may be missing. A zero NullFloat is missing.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float wraps a valid value.
func Float(v float64) NullFloat { return NullFloat{Float64: v, Valid: true} }

func (n NullFloat) String() string {
	if !n.Valid {
		return "NaN"
	}
	return strconv.FormatFloat(n.Float64, 'g', 4, 64)
}

// Record is one taxon row of a report.
type Record struct {
	Label      string
	Percentage NullFloat
}

// Table holds the records of a single report in file order.
type Table struct {
	Name    string
	Records []Record
}

// Len returns the number of records.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}

// Labels returns the record labels in order.
func (t *Table) Labels() []string {
	out := make([]string, 0, t.Len())
	for _, r := range t.Records {
		out = append(out, r.Label)
	}
	return out
}

// Missing counts records whose percentage could not be parsed.
func (t *Table) Missing() int {
	n := 0
	for _, r := range t.Records {
		if !r.Percentage.Valid {
			n++
		}
	}
	return n
}

// RowError reports a malformed report row.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string { return fmt.Sprintf("line %d: %v", e.Line, e.Err) }

func (e *RowError) Unwrap() error { return e.Err }

// ErrTooManyFields indicates a row with more than the six report columns.
var ErrTooManyFields = errors.New("too many fields")

// Load reads a Kraken summary report from disk.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()
	t, err := Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Parse reads tab-separated report rows from r. Only the percentage and the
// whitespace-trimmed label are kept. Percentages that do not parse are
// recorded as missing.
func Parse(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	t := &Table{Name: name}
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &RowError{Line: pe.Line, Err: pe.Err}
			}
			return nil, fmt.Errorf("read row %d: %w", len(t.Records)+1, err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) > reportFields {
			return nil, &RowError{Line: line, Err: fmt.Errorf("%w: got %d, want %d", ErrTooManyFields, len(rec), reportFields)}
		}
		// Short rows behave like a positional reader with named columns: absent fields are empty.
		var fields [reportFields]string
		copy(fields[:], rec)
		t.Records = append(t.Records, Record{
			Label:      strings.TrimSpace(fields[colLabel]),
			Percentage: parsePercentage(fields[colPercentage]),
		})
	}
	return t, nil
}

func parsePercentage(s string) NullFloat {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return NullFloat{}
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return NullFloat{}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) { // ParseFloat accepts "NaN" and "Inf"
		return NullFloat{}
	}
	return Float(f)
}

// MarshalJSON encodes a missing value as null.
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}
