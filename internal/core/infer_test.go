package core

import (
	"reflect"
	"testing"
)

func TestInferColumnDType(t *testing.T) {
	ti := NewTypeInferencer()

	tests := []struct {
		name   string
		values []string
		want   DType
	}{
		{
			name:   "integers",
			values: []string{"1", "2", "30", "-4"},
			want:   DTypeInteger,
		},
		{
			name:   "floats",
			values: []string{"1.5", "2", "3.25"},
			want:   DTypeFloat,
		},
		{
			name:   "booleans",
			values: []string{"true", "FALSE", "yes", "n"},
			want:   DTypeBoolean,
		},
		{
			name:   "ones and zeros prefer boolean",
			values: []string{"1", "0", "1"},
			want:   DTypeBoolean,
		},
		{
			name:   "datetimes",
			values: []string{"2024-01-02", "2024-06-30", "2024-12-31"},
			want:   DTypeDatetime,
		},
		{
			name:   "mixed falls back to string",
			values: []string{"1", "two", "3"},
			want:   DTypeString,
		},
		{
			name:   "missing cells are ignored for typing",
			values: []string{"", "25", "NA", "30"},
			want:   DTypeInteger,
		},
		{
			name:   "entirely missing column is unknown",
			values: []string{"", "null", "N/A"},
			want:   DTypeUnknown,
		},
		{
			name:   "scientific notation is float",
			values: []string{"1e3", "2.5e-2"},
			want:   DTypeFloat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ti.InferColumn(tt.values)
			if got.DType != tt.want {
				t.Errorf("dtype = %q, want %q", got.DType, tt.want)
			}
		})
	}
}

func TestInferColumnCounts(t *testing.T) {
	ti := NewTypeInferencer()

	inf := ti.InferColumn([]string{"25", "30", "", "40"})
	if inf.MissingCount != 1 {
		t.Errorf("missing = %d, want 1", inf.MissingCount)
	}
	if inf.UniqueCount != 3 {
		t.Errorf("unique = %d, want 3", inf.UniqueCount)
	}
	if want := []string{"25", "30", "40"}; !reflect.DeepEqual(inf.ExampleValues, want) {
		t.Errorf("examples = %v, want %v", inf.ExampleValues, want)
	}
}

func TestInferColumnUniqueUsesTypedEquality(t *testing.T) {
	ti := NewTypeInferencer()

	// As floats, "1" and "1.0" are the same value.
	inf := ti.InferColumn([]string{"1", "1.0", "2.5"})
	if inf.DType != DTypeFloat {
		t.Fatalf("dtype = %q, want float", inf.DType)
	}
	if inf.UniqueCount != 2 {
		t.Errorf("unique = %d, want 2", inf.UniqueCount)
	}

	// As strings they stay distinct.
	inf = ti.InferColumn([]string{"1", "1.0", "x"})
	if inf.DType != DTypeString {
		t.Fatalf("dtype = %q, want string", inf.DType)
	}
	if inf.UniqueCount != 3 {
		t.Errorf("unique = %d, want 3", inf.UniqueCount)
	}
}

func TestInferColumnExampleValuesCapAndOrder(t *testing.T) {
	ti := NewTypeInferencer()

	inf := ti.InferColumn([]string{"c", "a", "c", "b", "d"})
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(inf.ExampleValues, want) {
		t.Errorf("examples = %v, want %v", inf.ExampleValues, want)
	}
}

func TestMissingPolicy(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"empty string", "", true},
		{"whitespace only", "   ", true},
		{"na token", "NA", true},
		{"null token", "null", true},
		{"dash token", "-", true},
		{"regular value", "hello", false},
		{"zero", "0", false},
	}

	p := DefaultMissingPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.IsMissing(tt.value); got != tt.want {
				t.Errorf("IsMissing(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestCustomMissingTokens(t *testing.T) {
	p := NewMissingPolicy([]string{"?"})

	if !p.IsMissing("?") {
		t.Error("custom token should be missing")
	}
	if p.IsMissing("na") {
		t.Error("default tokens should not apply to a custom policy")
	}
	if !p.IsMissing("") {
		t.Error("empty string is always missing")
	}
}
