// Package core implements the dataset metadata and lineage pipeline.
// This package has no HTTP or storage dependencies and can be used by any frontend.
package core

import (
	"time"

	"github.com/google/uuid"
)

// DType is the inferred semantic type of a column.
type DType string

const (
	DTypeInteger  DType = "integer"
	DTypeFloat    DType = "float"
	DTypeBoolean  DType = "boolean"
	DTypeString   DType = "string"
	DTypeDatetime DType = "datetime"
	DTypeUnknown  DType = "unknown"
)

// Numeric reports whether the dtype supports arithmetic comparisons.
func (d DType) Numeric() bool {
	return d == DTypeInteger || d == DTypeFloat
}

// ColumnMeta holds the inferred type and summary statistics for one column.
// It is built once during schema inference and not mutated afterwards.
type ColumnMeta struct {
	Name          string   `json:"name"`
	DType         DType    `json:"dtype"`
	MissingCount  int      `json:"missingCount"`
	UniqueCount   *int     `json:"uniqueCount,omitempty"`
	ExampleValues []string `json:"exampleValues,omitempty"`
}

// IssueType classifies a detected data-quality problem.
type IssueType string

const (
	IssueMissingValues IssueType = "missing_values"
	IssueOutlier       IssueType = "outlier"
	IssueInvalidFormat IssueType = "invalid_format"
	IssueOther         IssueType = "other"
)

// Severity is the impact level of an issue.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Issue is a data-quality problem scoped to a single column.
// Issues are immutable once created; the list on a dataset only grows.
type Issue struct {
	Column      string    `json:"column"`
	Type        IssueType `json:"issueType"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
}

// Transformation is a named, parameterized cleaning operation applied to a
// dataset, e.g. "fill-missing" or "drop-duplicates".
type Transformation struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters,omitempty"`
	Timestamp  time.Time      `json:"timestamp"`
}

// ProvenanceEvent records who or what acted on a dataset and when.
type ProvenanceEvent struct {
	Actor     string         `json:"actor"`
	Action    string         `json:"action"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// Status is the lifecycle stage of a dataset. Forward progression
// (raw -> cleaned -> validated) is expected but not enforced here.
type Status string

const (
	StatusRaw       Status = "raw"
	StatusCleaned   Status = "cleaned"
	StatusValidated Status = "validated"
)

// ValidStatus reports whether s is one of the known lifecycle stages.
func ValidStatus(s Status) bool {
	switch s {
	case StatusRaw, StatusCleaned, StatusValidated:
		return true
	}
	return false
}

// DatasetRecord is the aggregate entity for one uploaded tabular file:
// the raw-file reference, inferred schema, detected issues, and the
// append-only transformation and provenance ledgers.
type DatasetRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	StorageURL string    `json:"storageUrl"`
	UploadedAt time.Time `json:"uploadedAt"`
	Size       int64     `json:"size"`

	Preview []map[string]string   `json:"preview"`
	Schema  map[string]ColumnMeta `json:"schema"`
	Issues  []Issue               `json:"issues"`

	Transformations *TransformationLedger `json:"transformations"`
	Provenance      *ProvenanceLedger     `json:"provenance"`

	RowCount int    `json:"rowCount"`
	Status   Status `json:"status"`
	Notes    string `json:"notes,omitempty"`
}

// SystemActor is the actor recorded for events the pipeline itself emits.
const SystemActor = "System"

// NewDatasetRecord creates a dataset record with a fresh id, status raw,
// empty ledgers, and provenance seeded with the mandatory upload event.
// Every instance gets its own slices and ledgers; nothing is shared.
func NewDatasetRecord(filename string, size int64) *DatasetRecord {
	rec := &DatasetRecord{
		ID:              uuid.NewString(),
		Filename:        filename,
		UploadedAt:      time.Now().UTC(),
		Size:            size,
		Preview:         []map[string]string{},
		Schema:          map[string]ColumnMeta{},
		Issues:          []Issue{},
		Transformations: NewTransformationLedger(),
		Provenance:      NewProvenanceLedger(),
		Status:          StatusRaw,
	}
	// A dataset is never without provenance: the upload event comes first.
	_ = rec.Provenance.Append(ProvenanceEvent{Actor: SystemActor, Action: "upload"})
	return rec
}
