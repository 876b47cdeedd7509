package sample

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
)

// xlsxParser reads one column from a worksheet of an Office Open XML workbook.
type xlsxParser struct{}

func (xlsxParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".xlsx")
}

func (xlsxParser) Parse(p string, opt Options) ([]float64, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer zr.Close()

	target, err := resolveSheet(&zr.Reader, opt.Sheet)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path.Base(p), err)
	}
	var shared []string
	if b, ok, err := zipEntry(&zr.Reader, "xl/sharedStrings.xml"); err != nil {
		return nil, err
	} else if ok {
		shared = sharedStrings(b)
	}
	data, ok, err := zipEntry(&zr.Reader, target)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: worksheet %s missing", path.Base(p), target)
	}
	rows := &sheetRows{dec: xml.NewDecoder(bytes.NewReader(data)), shared: shared}
	return selectColumn(rows.next, opt.Column)
}

type workbookSheet struct {
	Name string
	ID   int
	RID  string
}

// resolveSheet maps a sheet name or 1-based position to its zip entry.
func resolveSheet(zr *zip.Reader, sheet string) (string, error) {
	wb, _, err := zipEntry(zr, "xl/workbook.xml")
	if err != nil {
		return "", err
	}
	rels, _, err := zipEntry(zr, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return "", err
	}
	sheets := workbookSheets(wb)
	targets := relationships(rels)

	pick := -1
	switch n, convErr := strconv.Atoi(sheet); {
	case sheet == "":
		pick = 0
	case convErr == nil:
		if n < 1 {
			return "", fmt.Errorf("sheet index must be >= 1, got %d", n)
		}
		pick = n - 1
		if pick >= len(sheets) && len(sheets) > 0 {
			return "", fmt.Errorf("sheet %d out of range (workbook has %d)", n, len(sheets))
		}
	default:
		names := make([]string, 0, len(sheets))
		for i, s := range sheets {
			names = append(names, s.Name)
			if strings.EqualFold(s.Name, sheet) {
				pick = i
			}
		}
		if pick < 0 {
			return "", fmt.Errorf("sheet %q not found (available: %s)", sheet, strings.Join(names, ", "))
		}
	}
	if pick < len(sheets) {
		if t, ok := targets[sheets[pick].RID]; ok {
			return normalizeTarget(t), nil
		}
	}
	// workbooks without relationships use the conventional entry names
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", pick+1), nil
}

func zipEntry(zr *zip.Reader, name string) ([]byte, bool, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, false, fmt.Errorf("open %s: %w", name, err)
		}
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return nil, false, fmt.Errorf("read %s: %w", name, err)
		}
		return b, true, nil
	}
	return nil, false, nil
}

func workbookSheets(data []byte) []workbookSheet {
	var out []workbookSheet
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "sheet" {
			continue
		}
		var s workbookSheet
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "name":
				s.Name = a.Value
			case "sheetId":
				s.ID, _ = strconv.Atoi(a.Value)
			case "id": // r:id
				s.RID = a.Value
			}
		}
		out = append(out, s)
	}
}

func relationships(data []byte) map[string]string {
	out := map[string]string{}
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Relationship" {
			continue
		}
		var id, target string
		for _, a := range se.Attr {
			switch a.Name.Local {
			case "Id":
				id = a.Value
			case "Target":
				target = a.Value
			}
		}
		if id != "" && target != "" {
			out[id] = target
		}
	}
}

// normalizeTarget turns a relationship target into a zip entry name.
func normalizeTarget(t string) string {
	t = strings.TrimPrefix(t, "/")
	if strings.HasPrefix(t, "xl/") {
		return t
	}
	return path.Join("xl", t)
}

func sharedStrings(data []byte) []string {
	var out []string
	var buf strings.Builder
	inText := false
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err != nil {
			return out
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch se.Name.Local {
			case "si":
				buf.Reset()
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "t":
				inText = false
			case "si":
				out = append(out, buf.String())
			}
		case xml.CharData:
			if inText {
				buf.Write(se)
			}
		}
	}
}

// sheetRows streams worksheet rows as string records.
type sheetRows struct {
	dec    *xml.Decoder
	shared []string
	line   int
}

func (r *sheetRows) next() ([]string, int, error) {
	var (
		rec   []string
		inRow bool
	)
	for {
		tok, err := r.dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, 0, io.EOF
			}
			return nil, 0, fmt.Errorf("worksheet xml: %w", err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			switch {
			case se.Name.Local == "row":
				inRow = true
				rec = nil
				r.line++
				for _, a := range se.Attr {
					if a.Name.Local == "r" {
						if n, err := strconv.Atoi(a.Value); err == nil {
							r.line = n
						}
					}
				}
			case inRow && se.Name.Local == "c":
				var ref, typ string
				for _, a := range se.Attr {
					switch a.Name.Local {
					case "r":
						ref = a.Value
					case "t":
						typ = a.Value
					}
				}
				col := len(rec)
				if c := columnIndex(ref); c >= 0 {
					col = c
				}
				val, err := r.cellValue(typ)
				if err != nil {
					return nil, 0, err
				}
				for len(rec) <= col {
					rec = append(rec, "")
				}
				rec[col] = val
			}
		case xml.EndElement:
			if se.Name.Local == "row" {
				return rec, r.line, nil
			}
		}
	}
}

// cellValue consumes a <c> element and returns its text, resolving shared strings.
func (r *sheetRows) cellValue(typ string) (string, error) {
	var val strings.Builder
	inValue := false
	for {
		tok, err := r.dec.Token()
		if err != nil {
			return "", fmt.Errorf("worksheet xml: %w", err)
		}
		switch se := tok.(type) {
		case xml.StartElement:
			if se.Name.Local == "v" || se.Name.Local == "t" {
				inValue = true
			}
		case xml.CharData:
			if inValue {
				val.Write(se)
			}
		case xml.EndElement:
			switch se.Name.Local {
			case "v", "t":
				inValue = false
			case "c":
				s := val.String()
				if typ == "s" {
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || i < 0 || i >= len(r.shared) {
						return "", nil
					}
					return r.shared[i], nil
				}
				return s, nil
			}
		}
	}
}

// columnIndex converts a cell reference such as "C12" to a 0-based column.
func columnIndex(ref string) int {
	idx := 0
	for i := 0; i < len(ref); i++ {
		c := ref[i]
		switch {
		case c >= 'A' && c <= 'Z':
			idx = idx*26 + int(c-'A'+1)
		case c >= 'a' && c <= 'z':
			idx = idx*26 + int(c-'a'+1)
		default:
			return idx - 1
		}
	}
	return idx - 1
}
