// Package journal persists listener failures swallowed by best-effort
// dispatch. SettleInSeries deliberately discards listener errors so one
// bad listener cannot halt the others; the journal is where those errors
// land so they can be inspected and acknowledged later.
//
// The journal stores failure records only. Listener registrations are
// never persisted.
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/evented/pkg/evented"
)

// FailedDispatch records one listener failure.
type FailedDispatch struct {
	ID         string    `json:"id"`
	Event      string    `json:"event"`
	DispatchID string    `json:"dispatch_id"`
	Listener   int       `json:"listener"`
	Error      string    `json:"error"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewFailedDispatch builds a record from a dispatch error.
func NewFailedDispatch(derr *evented.DispatchError) *FailedDispatch {
	return &FailedDispatch{
		ID:         fmt.Sprintf("jrn-%s", uuid.New().String()[:8]),
		Event:      derr.Event,
		DispatchID: derr.DispatchID,
		Listener:   derr.Listener,
		Error:      derr.Err.Error(),
		OccurredAt: time.Now().UTC(),
	}
}

// Store persists failed dispatch records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append adds a record to the journal.
	Append(ctx context.Context, rec *FailedDispatch) error

	// List returns up to limit records in occurrence order.
	List(ctx context.Context, limit int) ([]*FailedDispatch, error)

	// ListByEvent returns up to limit records for one event, in
	// occurrence order.
	ListByEvent(ctx context.Context, event string, limit int) ([]*FailedDispatch, error)

	// Acknowledge removes a record by ID.
	Acknowledge(ctx context.Context, id string) error

	// Count returns the number of records in the journal.
	Count(ctx context.Context) (int, error)
}

// ErrNotFound is returned when a record cannot be found.
var ErrNotFound = fmt.Errorf("failed dispatch not found")

// ErrJournalFull is returned when a bounded journal cannot accept more
// records.
var ErrJournalFull = fmt.Errorf("journal is full")

// Config configures journal behavior.
type Config struct {
	// MaxSize limits the number of records held.
	// Default: 10000
	MaxSize int

	// OnAppend is called after a record is stored.
	OnAppend func(*FailedDispatch)
}

// DefaultConfig provides reasonable defaults.
var DefaultConfig = Config{
	MaxSize: 10000,
}

// MemoryStore is an in-memory Store implementation.
// Suitable for testing and single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	records []*FailedDispatch
	byID    map[string]*FailedDispatch
	cfg     Config
}

// NewMemoryStore creates a new in-memory journal store.
func NewMemoryStore(cfg Config) *MemoryStore {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultConfig.MaxSize
	}
	return &MemoryStore{
		byID: make(map[string]*FailedDispatch),
		cfg:  cfg,
	}
}

// Append adds a record to the journal.
func (s *MemoryStore) Append(_ context.Context, rec *FailedDispatch) error {
	if rec.ID == "" {
		return fmt.Errorf("record ID is required")
	}

	s.mu.Lock()
	if len(s.records) >= s.cfg.MaxSize {
		s.mu.Unlock()
		return ErrJournalFull
	}
	s.records = append(s.records, rec)
	s.byID[rec.ID] = rec
	s.mu.Unlock()

	if s.cfg.OnAppend != nil {
		s.cfg.OnAppend(rec)
	}
	return nil
}

// List returns up to limit records in occurrence order.
func (s *MemoryStore) List(_ context.Context, limit int) ([]*FailedDispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*FailedDispatch, 0, min(limit, len(s.records)))
	for _, rec := range s.records {
		if len(out) >= limit {
			break
		}
		out = append(out, rec)
	}
	return out, nil
}

// ListByEvent returns up to limit records for one event.
func (s *MemoryStore) ListByEvent(_ context.Context, event string, limit int) ([]*FailedDispatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*FailedDispatch, 0, limit)
	for _, rec := range s.records {
		if len(out) >= limit {
			break
		}
		if rec.Event == event {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Acknowledge removes a record by ID.
func (s *MemoryStore) Acknowledge(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	for i, rec := range s.records {
		if rec.ID == id {
			s.records = append(s.records[:i:i], s.records[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of records in the journal.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Recorder bridges a Store into an evented.ErrorHandler: plug it in via
// evented.WithErrorHandler and every error SettleInSeries swallows is
// appended to the journal. Append failures are logged and otherwise
// dropped; the journal never disturbs a dispatch run.
func Recorder(store Store, logger *slog.Logger) evented.ErrorHandler {
	return func(ctx context.Context, derr *evented.DispatchError) {
		if err := store.Append(ctx, NewFailedDispatch(derr)); err != nil && logger != nil {
			logger.Warn("journal append failed",
				slog.String("event", derr.Event),
				slog.String("dispatch_id", derr.DispatchID),
				slog.String("error", err.Error()),
			)
		}
	}
}
