package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseTable(t *testing.T) {
	data := []byte("name,age\nalice,30\nbob,25\n")

	table, err := ParseTable(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if want := []string{"name", "age"}; !reflect.DeepEqual(table.Columns(), want) {
		t.Errorf("columns = %v, want %v", table.Columns(), want)
	}
	if table.RowCount() != 2 {
		t.Errorf("rows = %d, want 2", table.RowCount())
	}
	if want := []string{"30", "25"}; !reflect.DeepEqual(table.ColumnValues(1), want) {
		t.Errorf("age values = %v, want %v", table.ColumnValues(1), want)
	}
}

func TestParseTableErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty input", ""},
		{"ragged row", "a,b\n1,2\n3\n"},
		{"extra field", "a,b\n1,2,3\n"},
		{"unterminated quote", "a,b\n\"unterminated,2\n"},
		{"duplicate column", "a,a\n1,2\n"},
		{"empty column name", "a,\n1,2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTable([]byte(tt.data))
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
		})
	}
}

func TestParseTableHeaderOnly(t *testing.T) {
	table, err := ParseTable([]byte("a,b,c\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.RowCount() != 0 {
		t.Errorf("rows = %d, want 0", table.RowCount())
	}
	if len(table.Columns()) != 3 {
		t.Errorf("columns = %d, want 3", len(table.Columns()))
	}
}

func TestParseTableStripsBOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nx\n")...)

	table, err := ParseTable(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Columns()[0]; got != "name" {
		t.Errorf("first column = %q, want %q", got, "name")
	}
}

func TestTablePreview(t *testing.T) {
	table, err := ParseTable([]byte("id,name\n1,a\n2,b\n3,c\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	preview := table.Preview(2)
	if len(preview) != 2 {
		t.Fatalf("preview rows = %d, want 2", len(preview))
	}
	if want := map[string]string{"id": "1", "name": "a"}; !reflect.DeepEqual(preview[0], want) {
		t.Errorf("preview[0] = %v, want %v", preview[0], want)
	}

	// Asking for more rows than exist returns all of them.
	if got := len(table.Preview(10)); got != 3 {
		t.Errorf("preview rows = %d, want 3", got)
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"whitespace", "  hello  ", "hello"},
		{"excel formula", `="0001"`, "0001"},
		{"leading equals", "=x", "x"},
		{"quoted", `"value"`, "value"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanCell(tt.input); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
