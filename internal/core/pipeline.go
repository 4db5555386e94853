package core

// pipeline.go orchestrates one ingestion: parse raw bytes, infer the
// schema, scan for issues, assemble the dataset record. The pipeline is
// stateless and re-entrant; concurrent ingestions share nothing. It
// performs no persistence or object-storage I/O — the caller hands in an
// in-memory buffer and receives a complete record (or a typed error,
// never a partial record).

import (
	"context"
)

// DefaultPreviewRows is how many leading rows the assembled record keeps
// as its read-only preview.
const DefaultPreviewRows = 5

// PipelineConfig tunes one pipeline instance.
type PipelineConfig struct {
	// PreviewRows caps the preview kept on the record (default 5).
	PreviewRows int

	// MissingTokens overrides the default null-equivalent markers when
	// non-empty.
	MissingTokens []string

	// Detector holds the issue-detection thresholds.
	Detector DetectorConfig
}

// Pipeline turns raw tabular bytes into a DatasetRecord.
type Pipeline struct {
	previewRows int
	builder     SchemaBuilder
	detector    IssueDetector
}

// NewPipeline builds a pipeline from the given config, filling in defaults
// for zero values.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	if cfg.PreviewRows <= 0 {
		cfg.PreviewRows = DefaultPreviewRows
	}
	if cfg.Detector == (DetectorConfig{}) {
		cfg.Detector = DefaultDetectorConfig()
	}

	missing := DefaultMissingPolicy()
	if len(cfg.MissingTokens) > 0 {
		missing = NewMissingPolicy(cfg.MissingTokens)
	}

	return &Pipeline{
		previewRows: cfg.PreviewRows,
		builder:     SchemaBuilder{Inferencer: TypeInferencer{Missing: missing}},
		detector:    NewIssueDetector(cfg.Detector, missing),
	}
}

// Ingest runs the full pipeline on raw bytes.
//
// Stage progression is Parsing -> SchemaInference -> IssueScan ->
// Assembled. A failure in Parsing or SchemaInference aborts the whole
// ingestion and returns an *IngestionError naming the stage; issue-scan
// rule failures are recovered inside the scan and appear as synthetic
// issues. Cancelling ctx discards all partial results.
func (p *Pipeline) Ingest(ctx context.Context, data []byte, filename string, size int64) (*DatasetRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, &IngestionError{Stage: StageParsing, Err: err}
	}

	table, err := ParseTable(data)
	if err != nil {
		return nil, &IngestionError{Stage: StageParsing, Err: err}
	}

	schema, err := p.builder.Build(ctx, table)
	if err != nil {
		return nil, &IngestionError{Stage: StageSchemaInference, Err: err}
	}

	if err := ctx.Err(); err != nil {
		return nil, &IngestionError{Stage: StageIssueScan, Err: err}
	}
	issues := p.detector.Detect(table, schema)

	if err := ctx.Err(); err != nil {
		return nil, &IngestionError{Stage: StageAssembled, Err: err}
	}

	rec := NewDatasetRecord(filename, size)
	rec.Preview = table.Preview(p.previewRows)
	rec.Schema = schema
	rec.Issues = issues
	rec.RowCount = table.RowCount()
	return rec, nil
}
