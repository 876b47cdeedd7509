package sample

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
)

type listParser struct{}

func (listParser) CanParse(string) bool { return true }

func (listParser) Parse(path string, _ Options) ([]float64, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sample: %w", err)
	}
	return ParseList(string(b))
}

type delimitedParser struct{}

func (delimitedParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".csv") || strings.HasSuffix(name, ".tsv")
}

func (delimitedParser) Parse(path string, opt Options) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sample: %w", err)
	}
	defer f.Close()
	delim := opt.Delimiter
	if delim == 0 {
		delim = ','
		if strings.HasSuffix(strings.ToLower(path), ".tsv") {
			delim = '\t'
		}
	}
	return readColumn(f, delim, opt.Column)
}

// rowFunc yields the next record and its 1-based line, or io.EOF.
type rowFunc func() (rec []string, line int, err error)

func csvRows(r io.Reader, delim rune) rowFunc {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	return func() ([]string, int, error) {
		rec, err := cr.Read()
		if err != nil {
			return nil, 0, err
		}
		line, _ := cr.FieldPos(0)
		return rec, line, nil
	}
}

func readColumn(r io.Reader, delim rune, column string) ([]float64, error) {
	return selectColumn(csvRows(r, delim), column)
}

// selectColumn extracts one numeric column. A named column requires a header
// row; otherwise a non-numeric first row is taken as a header and skipped.
func selectColumn(next rowFunc, column string) ([]float64, error) {
	idx := 0
	named := false
	if column != "" {
		if n, err := strconv.Atoi(column); err == nil {
			if n < 1 {
				return nil, fmt.Errorf("column index must be >= 1, got %d", n)
			}
			idx = n - 1
		} else {
			named = true
		}
	}

	var out []float64
	for row := 1; ; row++ {
		rec, line, err := next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}
		if row == 1 && named {
			found := false
			for i, h := range rec {
				if strings.EqualFold(strings.TrimSpace(h), column) {
					idx, found = i, true
					break
				}
			}
			if !found {
				return nil, fmt.Errorf("column %q not found in header", column)
			}
			continue
		}
		if idx >= len(rec) {
			continue
		}
		v := strings.TrimSpace(rec[idx])
		if v == "" {
			continue
		}
		x, ok := parseNumber(v)
		if !ok {
			if row == 1 {
				continue // header
			}
			return nil, &ParseError{Line: line, Value: v}
		}
		out = append(out, x)
	}
	return out, nil
}

func parseNumber(s string) (float64, bool) {
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, false
	}
	return x, true
}
