package core

// errors.go defines the typed failures the pipeline can surface.
//
// Parsing and schema inference fail the whole ingestion (no partial record
// is ever returned); detector failures are recovered per rule inside the
// issue scan and never reach callers as errors.

import (
	"context"
	"errors"
	"fmt"
)

// ParseError reports malformed tabular input: unterminated quotes, rows
// with inconsistent field counts, broken headers.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse: line %d: %s", e.Line, e.Reason)
	}
	return "parse: " + e.Reason
}

// SchemaError reports a structural problem with a parsed table, such as a
// table with no columns or a column whose length disagrees with the row count.
type SchemaError struct {
	Column string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("schema: column %q: %s", e.Column, e.Reason)
	}
	return "schema: " + e.Reason
}

// DetectorError reports a single issue-detection rule that failed. It is
// recovered where it occurs and surfaced as a synthetic "other" issue;
// callers of the pipeline never see it as an error.
type DetectorError struct {
	Rule  string
	Cause any
}

func (e *DetectorError) Error() string {
	return fmt.Sprintf("detector %q failed: %v", e.Rule, e.Cause)
}

// Stage identifies where in the ingestion pipeline a failure occurred.
type Stage string

const (
	StageParsing         Stage = "parsing"
	StageSchemaInference Stage = "schema_inference"
	StageIssueScan       Stage = "issue_scan"
	StageAssembled       Stage = "assembled"
)

// IngestionError wraps a stage failure for callers of Ingest. The wrapped
// error is one of the typed failures above (or a context error).
type IngestionError struct {
	Stage Stage
	Err   error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed at %s: %v", e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// UserMessage is a user-facing rendering of an error, safe to return to
// clients. Code is a stable reference for support.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// MapError converts an internal error into a user-friendly message.
// Technical details stay in the server logs; clients get the gist plus a
// suggested action.
func MapError(err error) UserMessage {
	var parseErr *ParseError
	var schemaErr *SchemaError
	var orderErr *OrderingError
	var ingestErr *IngestionError

	switch {
	case errors.As(err, &parseErr):
		return UserMessage{
			Code:    "ING001",
			Message: "The file could not be parsed: " + parseErr.Reason,
			Action:  "Ensure the file is valid CSV with a consistent number of columns per row.",
		}
	case errors.As(err, &schemaErr):
		return UserMessage{
			Code:    "ING002",
			Message: "The table structure is invalid: " + schemaErr.Reason,
			Action:  "Check that the file has a header row and rectangular data.",
		}
	case errors.As(err, &orderErr):
		return UserMessage{
			Code:    "LDG001",
			Message: "The entry's timestamp is older than the newest ledger entry.",
			Action:  "Omit the timestamp to have it assigned automatically.",
		}
	case errors.As(err, &ingestErr):
		// Unwrap so the stage-specific message above applies when possible.
		inner := MapError(ingestErr.Err)
		if inner.Code != "GEN001" {
			return inner
		}
		return UserMessage{
			Code:    "ING000",
			Message: fmt.Sprintf("Ingestion failed during %s.", ingestErr.Stage),
			Action:  "Review the file and try again.",
		}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return UserMessage{
			Code:    "GEN002",
			Message: "The request was cancelled or timed out.",
			Action:  "Please try again.",
		}
	default:
		return UserMessage{
			Code:    "GEN001",
			Message: "Something went wrong while processing the request.",
			Action:  "Please try again; contact support if the problem persists.",
		}
	}
}
