// Package store persists dataset records in PostgreSQL.
//
// Records are stored whole as JSONB documents keyed by dataset id. The
// document is the single source of truth; List projects summaries out of
// it rather than maintaining separate columns.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/chiraglokhande04/Data-Cleaning-Agent/internal/core"
)

// ErrNotFound is returned when no dataset exists under the given id.
var ErrNotFound = errors.New("store: dataset not found")

// DBTX is the subset of pgx a Store needs; *pgxpool.Pool satisfies it.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store reads and writes dataset records.
type Store struct {
	db DBTX

	locks keyedLocks
}

// New creates a store backed by the given connection source.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// Init creates the datasets table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS datasets (
			id UUID PRIMARY KEY,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("store: init schema: %w", err)
	}
	return nil
}

// Save inserts the record, or replaces the stored document when the id
// already exists.
func (s *Store) Save(ctx context.Context, rec *core.DatasetRecord) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("store: invalid dataset id %q: %w", rec.ID, err)
	}

	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: encode dataset %s: %w", rec.ID, err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO datasets (id, doc, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = now()`,
		id, doc)
	if err != nil {
		return fmt.Errorf("store: save dataset %s: %w", rec.ID, err)
	}
	return nil
}

// Load retrieves one dataset record by id. Returns ErrNotFound when the id
// is unknown or not a valid UUID.
func (s *Store) Load(ctx context.Context, id string) (*core.DatasetRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc []byte
	err = s.db.QueryRow(ctx, `SELECT doc FROM datasets WHERE id = $1`, uid).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: load dataset %s: %w", id, err)
	}

	rec := &core.DatasetRecord{}
	if err := json.Unmarshal(doc, rec); err != nil {
		return nil, fmt.Errorf("store: decode dataset %s: %w", id, err)
	}
	return rec, nil
}

// Summary is the listing projection of a dataset record.
type Summary struct {
	ID         string      `json:"id"`
	Filename   string      `json:"filename"`
	UploadedAt time.Time   `json:"uploadedAt"`
	RowCount   int         `json:"rowCount"`
	Status     core.Status `json:"status"`
	IssueCount int         `json:"issueCount"`
}

// Summarize projects a record into its listing form.
func Summarize(rec *core.DatasetRecord) Summary {
	return Summary{
		ID:         rec.ID,
		Filename:   rec.Filename,
		UploadedAt: rec.UploadedAt,
		RowCount:   rec.RowCount,
		Status:     rec.Status,
		IssueCount: len(rec.Issues),
	}
}

// List returns summaries of all datasets, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.Query(ctx, `SELECT doc FROM datasets ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list datasets: %w", err)
	}
	defer rows.Close()

	summaries := make([]Summary, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("store: list datasets: %w", err)
		}
		rec := &core.DatasetRecord{}
		if err := json.Unmarshal(doc, rec); err != nil {
			return nil, fmt.Errorf("store: decode dataset: %w", err)
		}
		summaries = append(summaries, Summarize(rec))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list datasets: %w", err)
	}
	return summaries, nil
}

// Update loads a record, applies fn, and saves the result. Updates to the
// same dataset are serialized through a per-id lock so concurrent ledger
// appends cannot clobber each other; fn returning an error aborts the
// update without writing.
func (s *Store) Update(ctx context.Context, id string, fn func(*core.DatasetRecord) error) (*core.DatasetRecord, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	rec, err := s.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(rec); err != nil {
		return nil, err
	}
	if err := s.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a dataset record. Returns ErrNotFound when nothing was
// deleted.
func (s *Store) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	tag, err := s.db.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, uid)
	if err != nil {
		return fmt.Errorf("store: delete dataset %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// keyedLocks hands out one mutex per dataset id.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*entryLock
}

type entryLock struct {
	mu   sync.Mutex
	refs int
}

// lock acquires the mutex for key and returns its release func. Entries
// are dropped once the last holder releases, so the map stays bounded by
// the number of in-flight updates.
func (k *keyedLocks) lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*entryLock)
	}
	e, ok := k.locks[key]
	if !ok {
		e = &entryLock{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
