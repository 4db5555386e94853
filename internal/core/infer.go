package core

// infer.go classifies raw column values into semantic types.
//
// Cells arrive as strings from the CSV front end; each non-missing cell is
// probed against the candidate types in priority order (boolean, integer,
// float, datetime) and a column's dtype is the most specific type that
// every non-missing value satisfies, falling back to string. Malformed
// cells are simply non-matches for the stricter types; nothing here panics
// or returns an error.

import (
	"strconv"
	"strings"
	"time"
)

// datetimeLayouts are tried in order when probing a cell as a datetime.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// MaxExampleValues caps the sample values kept per column.
const MaxExampleValues = 3

// MissingPolicy decides which raw cell contents count as missing.
// Matching is case-insensitive after trimming; the empty string is always
// missing.
type MissingPolicy struct {
	tokens map[string]struct{}
}

// DefaultMissingTokens are the null-equivalent markers recognized out of
// the box, alongside the empty string.
var DefaultMissingTokens = []string{"na", "n/a", "null", "nil", "none", "nan", "-"}

// NewMissingPolicy builds a policy recognizing the given tokens
// (case-insensitive) plus the empty string.
func NewMissingPolicy(tokens []string) MissingPolicy {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			set[t] = struct{}{}
		}
	}
	return MissingPolicy{tokens: set}
}

// DefaultMissingPolicy returns the policy with DefaultMissingTokens.
func DefaultMissingPolicy() MissingPolicy {
	return NewMissingPolicy(DefaultMissingTokens)
}

// IsMissing reports whether the raw cell content counts as missing.
func (p MissingPolicy) IsMissing(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := p.tokens[strings.ToLower(s)]
	return ok
}

// Inference is the result of classifying one column.
type Inference struct {
	DType         DType
	MissingCount  int
	UniqueCount   int
	ExampleValues []string
}

// TypeInferencer classifies columns of raw cell values.
type TypeInferencer struct {
	Missing MissingPolicy
}

// NewTypeInferencer returns an inferencer with the default missing policy.
func NewTypeInferencer() TypeInferencer {
	return TypeInferencer{Missing: DefaultMissingPolicy()}
}

// InferColumn classifies an ordered sequence of raw cell values.
//
// The dtype is the most specific candidate every non-missing value
// satisfies; an entirely missing column infers unknown. UniqueCount uses
// value equality under the inferred type, so "1" and "1.0" collapse in a
// float column but stay distinct in a string column. ExampleValues holds
// up to MaxExampleValues distinct non-missing values in first-appearance
// order.
func (ti TypeInferencer) InferColumn(values []string) Inference {
	inf := Inference{}

	canBool, canInt, canFloat, canDatetime := true, true, true, true
	seenExamples := make(map[string]struct{}, MaxExampleValues)
	nonMissing := make([]string, 0, len(values))

	for _, raw := range values {
		if ti.Missing.IsMissing(raw) {
			inf.MissingCount++
			continue
		}

		v := strings.TrimSpace(raw)
		nonMissing = append(nonMissing, v)

		if canBool {
			_, canBool = probeBool(v)
		}
		if canInt {
			_, canInt = probeInt(v)
		}
		if canFloat {
			_, canFloat = probeFloat(v)
		}
		if canDatetime {
			_, canDatetime = probeDatetime(v)
		}

		if len(inf.ExampleValues) < MaxExampleValues {
			if _, dup := seenExamples[v]; !dup {
				seenExamples[v] = struct{}{}
				inf.ExampleValues = append(inf.ExampleValues, v)
			}
		}
	}

	if len(nonMissing) == 0 {
		inf.DType = DTypeUnknown
		return inf
	}

	switch {
	case canBool:
		inf.DType = DTypeBoolean
	case canInt:
		inf.DType = DTypeInteger
	case canFloat:
		inf.DType = DTypeFloat
	case canDatetime:
		inf.DType = DTypeDatetime
	default:
		inf.DType = DTypeString
	}

	distinct := make(map[string]struct{}, len(nonMissing))
	for _, v := range nonMissing {
		distinct[canonicalKey(v, inf.DType)] = struct{}{}
	}
	inf.UniqueCount = len(distinct)

	return inf
}

// canonicalKey renders a value so that equal values under the inferred
// type produce equal keys.
func canonicalKey(v string, dtype DType) string {
	switch dtype {
	case DTypeBoolean:
		if b, ok := probeBool(v); ok {
			return strconv.FormatBool(b)
		}
	case DTypeInteger:
		if n, ok := probeInt(v); ok {
			return strconv.FormatInt(n, 10)
		}
	case DTypeFloat:
		if f, ok := probeFloat(v); ok {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
	case DTypeDatetime:
		if t, ok := probeDatetime(v); ok {
			return t.UTC().Format(time.RFC3339Nano)
		}
	}
	return v
}

// probeBool accepts the usual CSV boolean spellings: true/false, t/f,
// yes/no, y/n, 1/0.
func probeBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	default:
		return false, false
	}
}

func probeInt(s string) (int64, bool) {
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil
}

func probeFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

func probeDatetime(s string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
