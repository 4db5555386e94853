package store

import (
	"sync"
	"testing"
	"time"

	"github.com/chiraglokhande04/Data-Cleaning-Agent/internal/core"
)

func TestKeyedLocksSerializeSameKey(t *testing.T) {
	var k keyedLocks

	const workers = 20
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.lock("dataset-a")
			defer unlock()
			// Unsynchronized increment; the keyed lock is the only guard.
			c := counter
			time.Sleep(time.Microsecond)
			counter = c + 1
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Errorf("counter = %d, want %d", counter, workers)
	}
}

func TestKeyedLocksIndependentKeys(t *testing.T) {
	var k keyedLocks

	unlockA := k.lock("a")
	defer unlockA()

	// A different key must not block.
	done := make(chan struct{})
	go func() {
		unlockB := k.lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on independent key blocked")
	}
}

func TestKeyedLocksReleaseDropsEntry(t *testing.T) {
	var k keyedLocks

	unlock := k.lock("x")
	unlock()

	k.mu.Lock()
	defer k.mu.Unlock()
	if len(k.locks) != 0 {
		t.Errorf("locks map holds %d entries after release, want 0", len(k.locks))
	}
}

func TestSummarize(t *testing.T) {
	rec := core.NewDatasetRecord("sales.csv", 2048)
	rec.RowCount = 120
	rec.Issues = append(rec.Issues, core.Issue{Column: "email", Type: core.IssueInvalidFormat, Severity: core.SeverityHigh})

	s := Summarize(rec)
	if s.ID != rec.ID {
		t.Errorf("id = %q, want %q", s.ID, rec.ID)
	}
	if s.Filename != "sales.csv" {
		t.Errorf("filename = %q, want %q", s.Filename, "sales.csv")
	}
	if s.RowCount != 120 {
		t.Errorf("rowCount = %d, want 120", s.RowCount)
	}
	if s.Status != core.StatusRaw {
		t.Errorf("status = %q, want raw", s.Status)
	}
	if s.IssueCount != 1 {
		t.Errorf("issueCount = %d, want 1", s.IssueCount)
	}
}
