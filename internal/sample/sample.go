package sample

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Options selects what to read from a file.
type Options struct {
	// Column is a header name or a 1-based index; used by delimited files and workbooks.
	// Empty means the first column.
	Column string
	// Delimiter overrides the delimiter implied by the file extension.
	Delimiter rune
	// Sheet picks a workbook sheet by name or 1-based index; empty means the first.
	Sheet string
}

// Parser reads a numeric sample from a file.
type Parser interface {
	CanParse(filename string) bool
	Parse(path string, opt Options) ([]float64, error)
}

var registry []Parser

// Register adds a parser implementation to the registry.
func Register(p Parser) {
	registry = append(registry, p)
}

// ParseError reports a value that is not a number.
type ParseError struct {
	Line  int
	Value string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: not a number: %q", e.Line, e.Value)
}

// ErrEmpty indicates a file without any values.
var ErrEmpty = errors.New("no values in sample")

// Load reads the sample in path with the first matching parser, falling back
// to plain number lists.
func Load(path string, opt Options) ([]float64, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open sample: %w", err)
	}
	var p Parser = listParser{}
	for _, cand := range registry {
		if cand.CanParse(path) {
			p = cand
			break
		}
	}
	xs, err := p.Parse(path, opt)
	if err != nil {
		return nil, err
	}
	if len(xs) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmpty)
	}
	return xs, nil
}

// ParseList parses whitespace- or comma-separated numbers, one or more per
// line. Text after '#' is ignored.
func ParseList(s string) ([]float64, error) {
	var out []float64
	for i, line := range strings.Split(s, "\n") {
		if k := strings.IndexByte(line, '#'); k >= 0 {
			line = line[:k]
		}
		for _, tok := range strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ';' || r == ' ' || r == '\t' || r == '\r'
		}) {
			x, ok := parseNumber(tok)
			if !ok {
				return nil, &ParseError{Line: i + 1, Value: tok}
			}
			out = append(out, x)
		}
	}
	return out, nil
}

func init() {
	Register(delimitedParser{})
	Register(xlsxParser{})
}
