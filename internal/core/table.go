package core

// table.go provides the in-memory table abstraction and the CSV front end
// that produces it. Parsing operates on a byte buffer handed in by the
// caller; this file performs no I/O.

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// utf8BOM is the byte order mark some spreadsheet exports prepend.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed tabular file: an ordered header plus a rectangular
// cell matrix. All rows have exactly len(Columns()) cells.
type Table struct {
	columns []string
	rows    [][]string
}

// Columns returns the ordered column names.
func (t *Table) Columns() []string {
	return t.columns
}

// RowCount returns the number of data rows (the header is not counted).
func (t *Table) RowCount() int {
	return len(t.rows)
}

// ColumnValues returns the ordered cell values of column i.
func (t *Table) ColumnValues(i int) []string {
	values := make([]string, len(t.rows))
	for r, row := range t.rows {
		values[r] = row[i]
	}
	return values
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Preview returns up to k row snapshots as column-name keyed maps.
func (t *Table) Preview(k int) []map[string]string {
	if k > len(t.rows) {
		k = len(t.rows)
	}
	out := make([]map[string]string, 0, k)
	for _, row := range t.rows[:k] {
		m := make(map[string]string, len(t.columns))
		for i, col := range t.columns {
			m[col] = row[i]
		}
		out = append(out, m)
	}
	return out
}

// ParseTable parses raw CSV bytes into a Table.
//
// The first record is the header; every data row must have the same number
// of fields as the header. Malformed input (unterminated quotes, ragged
// rows, duplicate or empty column names) returns a *ParseError. A file with
// a header and zero data rows is valid.
func ParseTable(data []byte) (*Table, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	data = sanitizeUTF8(data)

	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		var csvErr *csv.ParseError
		if errors.As(err, &csvErr) {
			return nil, &ParseError{Line: csvErr.Line, Reason: csvErr.Err.Error()}
		}
		return nil, &ParseError{Reason: err.Error()}
	}

	if len(records) == 0 {
		return nil, &ParseError{Reason: "empty input"}
	}

	header := records[0]
	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		name := cleanCell(h)
		if name == "" {
			return nil, &ParseError{Line: 1, Reason: fmt.Sprintf("column %d has an empty name", i+1)}
		}
		if prev, ok := seen[name]; ok {
			return nil, &ParseError{Line: 1, Reason: fmt.Sprintf("duplicate column %q (positions %d and %d)", name, prev+1, i+1)}
		}
		seen[name] = i
		columns[i] = name
	}

	return &Table{columns: columns, rows: records[1:]}, nil
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement rune so
// downstream string handling never sees broken encoding.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('�')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}

// cleanCell removes common CSV artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func cleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	return strings.Trim(s, `"'`)
}
