package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestTransformationLedgerAppend(t *testing.T) {
	l := NewTransformationLedger()

	for _, name := range []string{"fill-missing", "drop-duplicates", "normalize"} {
		if err := l.Append(Transformation{Name: name}); err != nil {
			t.Fatalf("append %q: %v", name, err)
		}
	}

	if l.Len() != 3 {
		t.Fatalf("len = %d, want 3", l.Len())
	}

	var names []string
	var prev time.Time
	for e := range l.Entries() {
		names = append(names, e.Name)
		if e.Timestamp.IsZero() {
			t.Errorf("entry %q has a zero timestamp", e.Name)
		}
		if e.Timestamp.Before(prev) {
			t.Errorf("entry %q timestamp runs backwards", e.Name)
		}
		prev = e.Timestamp
	}
	if want := []string{"fill-missing", "drop-duplicates", "normalize"}; len(names) != 3 || names[0] != want[0] || names[1] != want[1] || names[2] != want[2] {
		t.Errorf("order = %v, want %v", names, want)
	}
}

func TestLedgerRejectsOutOfOrderTimestamp(t *testing.T) {
	l := NewProvenanceLedger()

	if err := l.Append(ProvenanceEvent{Actor: "alice", Action: "clean"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	past := time.Now().UTC().Add(-time.Hour)
	err := l.Append(ProvenanceEvent{Actor: "bob", Action: "validate", Timestamp: past})

	var orderErr *OrderingError
	if !errors.As(err, &orderErr) {
		t.Fatalf("err = %v, want *OrderingError", err)
	}
	if !orderErr.Got.Equal(past) {
		t.Errorf("Got = %v, want %v", orderErr.Got, past)
	}
	// The rejected append leaves the ledger untouched.
	if l.Len() != 1 {
		t.Errorf("len = %d, want 1", l.Len())
	}
}

func TestLedgerAcceptsExplicitLaterTimestamp(t *testing.T) {
	l := NewTransformationLedger()

	first := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := l.Append(Transformation{Name: "a", Timestamp: first}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.Append(Transformation{Name: "b", Timestamp: first.Add(time.Minute)}); err != nil {
		t.Fatalf("append: %v", err)
	}
	// Equal timestamps are in order.
	if err := l.Append(Transformation{Name: "c", Timestamp: first.Add(time.Minute)}); err != nil {
		t.Fatalf("append equal timestamp: %v", err)
	}
}

func TestLedgerEntriesSnapshot(t *testing.T) {
	l := NewTransformationLedger()
	for i := 0; i < 3; i++ {
		if err := l.Append(Transformation{Name: "t"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	seq := l.Entries()

	// Appends after the snapshot are invisible to it.
	if err := l.Append(Transformation{Name: "late"}); err != nil {
		t.Fatalf("append: %v", err)
	}

	count := 0
	for range seq {
		count++
	}
	if count != 3 {
		t.Errorf("snapshot yielded %d entries, want 3", count)
	}

	// The sequence is restartable.
	count = 0
	for range seq {
		count++
	}
	if count != 3 {
		t.Errorf("second pass yielded %d entries, want 3", count)
	}
}

func TestLedgerEntriesEarlyStop(t *testing.T) {
	l := NewProvenanceLedger()
	for i := 0; i < 5; i++ {
		if err := l.Append(ProvenanceEvent{Actor: "a", Action: "x"}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	count := 0
	for range l.Entries() {
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("yielded %d entries before break, want 2", count)
	}
}

func TestLedgerJSONRoundTrip(t *testing.T) {
	l := NewProvenanceLedger()
	events := []ProvenanceEvent{
		{Actor: SystemActor, Action: "upload"},
		{Actor: "alice", Action: "clean", Details: map[string]any{"column": "age"}},
	}
	for _, e := range events {
		if err := l.Append(e); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	data, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	restored := NewProvenanceLedger()
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if restored.Len() != l.Len() {
		t.Fatalf("restored len = %d, want %d", restored.Len(), l.Len())
	}

	var got []ProvenanceEvent
	for e := range restored.Entries() {
		got = append(got, e)
	}
	if got[0].Action != "upload" || got[1].Action != "clean" {
		t.Errorf("restored actions = %q, %q", got[0].Action, got[1].Action)
	}

	// Ordering is still enforced after restore.
	past := got[1].Timestamp.Add(-time.Hour)
	var orderErr *OrderingError
	if err := restored.Append(ProvenanceEvent{Actor: "bob", Action: "x", Timestamp: past}); !errors.As(err, &orderErr) {
		t.Errorf("append past after restore: err = %v, want *OrderingError", err)
	}
}
