package core

// ledger.go implements the append-only transformation and provenance logs.
//
// Both ledgers share the same rules:
//   - Append assigns "now" when the entry carries no timestamp.
//   - Timestamps are non-decreasing; an explicitly supplied out-of-order
//     timestamp is rejected with OrderingError and the ledger is untouched.
//   - Entries are never edited or removed once appended.
//   - Iteration is lazy and restartable over a stable snapshot, so a
//     concurrent append never disturbs an in-flight reader.

import (
	"encoding/json"
	"fmt"
	"iter"
	"sync"
	"time"
)

// OrderingError reports an append whose explicit timestamp precedes the
// newest entry already in the ledger. The offending append is rejected;
// existing entries are unaffected.
type OrderingError struct {
	Last time.Time
	Got  time.Time
}

func (e *OrderingError) Error() string {
	return fmt.Sprintf("ledger: timestamp %s precedes last entry %s",
		e.Got.Format(time.RFC3339Nano), e.Last.Format(time.RFC3339Nano))
}

// TransformationLedger is the append-only log of transformations applied
// to one dataset. The zero value is not usable; use NewTransformationLedger.
type TransformationLedger struct {
	mu      sync.Mutex
	entries []Transformation
	last    time.Time
}

// NewTransformationLedger returns an empty ledger.
func NewTransformationLedger() *TransformationLedger {
	return &TransformationLedger{entries: []Transformation{}}
}

// Append adds an entry to the ledger. A zero timestamp is replaced with the
// current time; a non-zero timestamp earlier than the newest entry returns
// an OrderingError.
func (l *TransformationLedger) Append(t Transformation) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.Timestamp.IsZero() {
		t.Timestamp = nowAfter(l.last)
	} else if t.Timestamp.Before(l.last) {
		return &OrderingError{Last: l.last, Got: t.Timestamp}
	}

	l.entries = append(l.entries, t)
	l.last = t.Timestamp
	return nil
}

// Entries returns a lazy, restartable sequence over the ledger in insertion
// order. The sequence iterates a snapshot taken at call time.
func (l *TransformationLedger) Entries() iter.Seq[Transformation] {
	l.mu.Lock()
	snapshot := l.entries[:len(l.entries):len(l.entries)]
	l.mu.Unlock()

	return func(yield func(Transformation) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of entries.
func (l *TransformationLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// MarshalJSON encodes the ledger as an ordered array of entries.
func (l *TransformationLedger) MarshalJSON() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return json.Marshal(l.entries)
}

// UnmarshalJSON restores a ledger from an ordered array of entries.
func (l *TransformationLedger) UnmarshalJSON(data []byte) error {
	var entries []Transformation
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = entries
	l.last = time.Time{}
	if n := len(entries); n > 0 {
		l.last = entries[n-1].Timestamp
	}
	return nil
}

// ProvenanceLedger is the append-only log of actor/action events for one
// dataset. The zero value is not usable; use NewProvenanceLedger.
type ProvenanceLedger struct {
	mu      sync.Mutex
	entries []ProvenanceEvent
	last    time.Time
}

// NewProvenanceLedger returns an empty ledger.
func NewProvenanceLedger() *ProvenanceLedger {
	return &ProvenanceLedger{entries: []ProvenanceEvent{}}
}

// Append adds an event to the ledger. A zero timestamp is replaced with the
// current time; a non-zero timestamp earlier than the newest entry returns
// an OrderingError.
func (l *ProvenanceLedger) Append(e ProvenanceEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e.Timestamp.IsZero() {
		e.Timestamp = nowAfter(l.last)
	} else if e.Timestamp.Before(l.last) {
		return &OrderingError{Last: l.last, Got: e.Timestamp}
	}

	l.entries = append(l.entries, e)
	l.last = e.Timestamp
	return nil
}

// Entries returns a lazy, restartable sequence over the ledger in insertion
// order. The sequence iterates a snapshot taken at call time.
func (l *ProvenanceLedger) Entries() iter.Seq[ProvenanceEvent] {
	l.mu.Lock()
	snapshot := l.entries[:len(l.entries):len(l.entries)]
	l.mu.Unlock()

	return func(yield func(ProvenanceEvent) bool) {
		for _, e := range snapshot {
			if !yield(e) {
				return
			}
		}
	}
}

// Len returns the number of events.
func (l *ProvenanceLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// MarshalJSON encodes the ledger as an ordered array of events.
func (l *ProvenanceLedger) MarshalJSON() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return json.Marshal(l.entries)
}

// UnmarshalJSON restores a ledger from an ordered array of events.
func (l *ProvenanceLedger) UnmarshalJSON(data []byte) error {
	var entries []ProvenanceEvent
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = entries
	l.last = time.Time{}
	if n := len(entries); n > 0 {
		l.last = entries[n-1].Timestamp
	}
	return nil
}

// nowAfter returns the current UTC time, clamped so assigned timestamps
// never run backwards even if the wall clock does.
func nowAfter(last time.Time) time.Time {
	now := time.Now().UTC()
	if now.Before(last) {
		return last
	}
	return now
}
