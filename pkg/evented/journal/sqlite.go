package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// ErrStoreClosed is returned when operating on a closed store.
var ErrStoreClosed = fmt.Errorf("journal store is closed")

// SQLiteStore persists the journal to SQLite.
// It is suitable for single-process production use.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
}

// NewSQLiteStore creates a new SQLite journal store.
// The path should be a file path (e.g., "./journal.db") or ":memory:" for
// testing.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS failed_dispatches (
			id TEXT PRIMARY KEY,
			event TEXT NOT NULL,
			dispatch_id TEXT NOT NULL,
			listener INTEGER NOT NULL,
			error TEXT NOT NULL,
			occurred_at TEXT NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}

	if _, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_failed_dispatches_event
		ON failed_dispatches(event)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create index: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append implements Store.
func (s *SQLiteStore) Append(ctx context.Context, rec *FailedDispatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}
	if rec.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO failed_dispatches (id, event, dispatch_id, listener, error, occurred_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Event, rec.DispatchID, rec.Listener, rec.Error,
		rec.OccurredAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// List implements Store.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]*FailedDispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event, dispatch_id, listener, error, occurred_at
		FROM failed_dispatches
		ORDER BY occurred_at, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// ListByEvent implements Store.
func (s *SQLiteStore) ListByEvent(ctx context.Context, event string, limit int) ([]*FailedDispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event, dispatch_id, listener, error, occurred_at
		FROM failed_dispatches
		WHERE event = ?
		ORDER BY occurred_at, id
		LIMIT ?
	`, event, limit)
	if err != nil {
		return nil, fmt.Errorf("list records by event: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// Acknowledge implements Store.
func (s *SQLiteStore) Acknowledge(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM failed_dispatches WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("acknowledge record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("acknowledge record: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Count implements Store.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, ErrStoreClosed
	}

	var count int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM failed_dispatches
	`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

// Close releases the underlying database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func scanRecords(rows *sql.Rows) ([]*FailedDispatch, error) {
	var out []*FailedDispatch
	for rows.Next() {
		rec := &FailedDispatch{}
		var occurredAt string
		if err := rows.Scan(&rec.ID, &rec.Event, &rec.DispatchID, &rec.Listener, &rec.Error, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		ts, err := time.Parse(time.RFC3339Nano, occurredAt)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp: %w", err)
		}
		rec.OccurredAt = ts
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}
