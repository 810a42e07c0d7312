package tenant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore implements Store with an in-memory map.
// Intended for tests and single-process deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]Tenant
}

// NewMemoryStore creates an empty in-memory tenant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[uuid.UUID]Tenant)}
}

func (s *MemoryStore) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}

	// Copy so callers cannot mutate stored state through the pointer.
	out := t
	return &out, nil
}

func (s *MemoryStore) Save(ctx context.Context, t *Tenant) error {
	if t == nil || t.ID == uuid.Nil {
		return ErrInvalidTenantID
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *t
	if existing, ok := s.tenants[t.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.UpdatedAt = time.Now().UTC()

	s.tenants[t.ID] = stored
	return nil
}
