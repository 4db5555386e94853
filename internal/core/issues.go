package core

// issues.go scans a table plus its inferred schema for data-quality
// problems. Rules run per column, in a fixed order, against the same
// immutable snapshot; a failing rule is recovered and surfaced as a
// synthetic "other" issue so one bad rule never sinks the scan.

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// DetectorConfig holds the tunable thresholds for the built-in rules.
// The defaults are a starting point, not canon; deployments can adjust
// them through configuration.
type DetectorConfig struct {
	// MissingHighRatio is the missing-value ratio above which the issue is
	// flagged high severity.
	MissingHighRatio float64

	// MissingMediumRatio is the ratio above which severity is medium.
	MissingMediumRatio float64

	// InvalidFormatRatio is the minimum fraction of non-missing values that
	// must fail a format check before an invalid_format issue is emitted.
	InvalidFormatRatio float64
}

// DefaultDetectorConfig returns the default thresholds.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		MissingHighRatio:   0.5,
		MissingMediumRatio: 0.1,
		InvalidFormatRatio: 0.2,
	}
}

// IssueDetector applies the built-in data-quality rules to a table.
type IssueDetector struct {
	cfg     DetectorConfig
	missing MissingPolicy
}

// NewIssueDetector returns a detector with the given thresholds and
// missing-value policy.
func NewIssueDetector(cfg DetectorConfig, missing MissingPolicy) IssueDetector {
	return IssueDetector{cfg: cfg, missing: missing}
}

// ruleFunc inspects one column and returns zero or more issues.
type ruleFunc func(meta ColumnMeta, values []string, rowCount int) []Issue

// Detect scans the table and returns all detected issues.
//
// Output order is deterministic: columns in table order, and within a
// column the rules in priority order (missing_values, outlier,
// invalid_format). Neither the table nor the schema is mutated.
func (d IssueDetector) Detect(t *Table, schema map[string]ColumnMeta) []Issue {
	rules := []struct {
		name string
		fn   ruleFunc
	}{
		{"missing_values", d.checkMissingValues},
		{"outlier", d.checkOutliers},
		{"invalid_format", d.checkInvalidFormat},
	}

	issues := []Issue{}
	for i, col := range t.Columns() {
		meta, ok := schema[col]
		if !ok {
			continue
		}
		values := t.ColumnValues(i)
		for _, r := range rules {
			issues = append(issues, runRule(r.name, r.fn, meta, values, t.RowCount())...)
		}
	}
	return issues
}

// runRule invokes a rule and converts a panic into a synthetic issue so
// detection always completes.
func runRule(name string, fn ruleFunc, meta ColumnMeta, values []string, rowCount int) (issues []Issue) {
	defer func() {
		if r := recover(); r != nil {
			err := &DetectorError{Rule: name, Cause: r}
			issues = []Issue{{
				Column:      meta.Name,
				Type:        IssueOther,
				Description: err.Error(),
				Severity:    SeverityLow,
			}}
		}
	}()
	return fn(meta, values, rowCount)
}

// checkMissingValues flags columns with any missing cells. Severity scales
// with the missing ratio per the configured cutoffs.
func (d IssueDetector) checkMissingValues(meta ColumnMeta, _ []string, rowCount int) []Issue {
	if meta.MissingCount == 0 || rowCount == 0 {
		return nil
	}

	ratio := float64(meta.MissingCount) / float64(rowCount)
	severity := SeverityLow
	switch {
	case ratio > d.cfg.MissingHighRatio:
		severity = SeverityHigh
	case ratio > d.cfg.MissingMediumRatio:
		severity = SeverityMedium
	}

	return []Issue{{
		Column:      meta.Name,
		Type:        IssueMissingValues,
		Description: fmt.Sprintf("%d of %d values missing (%.1f%%)", meta.MissingCount, rowCount, ratio*100),
		Severity:    severity,
	}}
}

// checkOutliers flags numeric columns containing values beyond 1.5x the
// interquartile range from the nearest quartile.
func (d IssueDetector) checkOutliers(meta ColumnMeta, values []string, _ int) []Issue {
	if !meta.DType.Numeric() {
		return nil
	}

	nums := make([]float64, 0, len(values))
	for _, v := range values {
		if d.missing.IsMissing(v) {
			continue
		}
		if f, ok := probeFloat(strings.TrimSpace(v)); ok {
			nums = append(nums, f)
		}
	}
	// Quartiles are not meaningful on tiny samples.
	if len(nums) < 4 {
		return nil
	}

	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)
	q1 := percentile(sorted, 0.25)
	q3 := percentile(sorted, 0.75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	count := 0
	for _, f := range nums {
		if f < lo || f > hi {
			count++
		}
	}
	if count == 0 {
		return nil
	}

	return []Issue{{
		Column:      meta.Name,
		Type:        IssueOutlier,
		Description: fmt.Sprintf("%d value(s) beyond 1.5x IQR [%g, %g]", count, lo, hi),
		Severity:    SeverityMedium,
	}}
}

// Format checks for semantically named string columns.
var (
	emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{5,18}[0-9]$`)
)

// checkInvalidFormat flags string columns whose name suggests a known
// semantic format (email, date, phone) when too many values fail the check.
func (d IssueDetector) checkInvalidFormat(meta ColumnMeta, values []string, _ int) []Issue {
	if meta.DType != DTypeString {
		return nil
	}

	name := strings.ToLower(meta.Name)
	var valid func(string) bool
	var format string
	switch {
	case strings.Contains(name, "email"):
		format, valid = "email", emailRegex.MatchString
	case strings.Contains(name, "phone"):
		format, valid = "phone", phoneRegex.MatchString
	case strings.Contains(name, "date"):
		format, valid = "date", func(s string) bool {
			_, ok := probeDatetime(s)
			return ok
		}
	default:
		return nil
	}

	total, invalid := 0, 0
	for _, v := range values {
		if d.missing.IsMissing(v) {
			continue
		}
		total++
		if !valid(strings.TrimSpace(v)) {
			invalid++
		}
	}
	if total == 0 {
		return nil
	}

	fraction := float64(invalid) / float64(total)
	if fraction < d.cfg.InvalidFormatRatio || invalid == 0 {
		return nil
	}

	return []Issue{{
		Column:      meta.Name,
		Type:        IssueInvalidFormat,
		Description: fmt.Sprintf("%d of %d values are not valid %s values (%.1f%%)", invalid, total, format, fraction*100),
		Severity:    SeverityHigh,
	}}
}

// percentile returns the p-quantile of sorted values using linear
// interpolation between closest ranks. sorted must be non-empty and ascending.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (sorted[lo+1]-sorted[lo])*frac
}
