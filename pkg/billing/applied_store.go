package billing

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AppliedEventStore records which provider event IDs have been applied, so
// at-least-once webhook delivery cannot double-apply tier or seat changes.
// The key is the provider's event identifier, never the event's effect.
type AppliedEventStore interface {
	// MarkApplied records the event ID, returning false when it was
	// already recorded. The insert is atomic: of two concurrent deliveries
	// of the same event, exactly one observes true.
	MarkApplied(ctx context.Context, eventID string) (bool, error)

	// Forget removes the record so a failed apply can be retried.
	Forget(ctx context.Context, eventID string) error
}

// MemoryAppliedStore is the in-memory AppliedEventStore.
type MemoryAppliedStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryAppliedStore creates an empty in-memory applied-event store.
func NewMemoryAppliedStore() *MemoryAppliedStore {
	return &MemoryAppliedStore{seen: make(map[string]struct{})}
}

func (s *MemoryAppliedStore) MarkApplied(ctx context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[eventID]; ok {
		return false, nil
	}
	s.seen[eventID] = struct{}{}
	return true, nil
}

func (s *MemoryAppliedStore) Forget(ctx context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.seen, eventID)
	return nil
}

// PGAppliedStore persists applied event IDs in the billing_events table.
type PGAppliedStore struct {
	pool *pgxpool.Pool
}

// NewPGAppliedStore creates a PostgreSQL-backed applied-event store.
func NewPGAppliedStore(pool *pgxpool.Pool) *PGAppliedStore {
	if pool == nil {
		panic("billing: pgxpool is required")
	}
	return &PGAppliedStore{pool: pool}
}

func (s *PGAppliedStore) MarkApplied(ctx context.Context, eventID string) (bool, error) {
	const query = `
		INSERT INTO billing_events (event_id, applied_at)
		VALUES ($1, now())
		ON CONFLICT (event_id) DO NOTHING`

	tag, err := s.pool.Exec(ctx, query, eventID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PGAppliedStore) Forget(ctx context.Context, eventID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM billing_events WHERE event_id = $1`, eventID)
	return err
}
