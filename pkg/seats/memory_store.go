package seats

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/tier"
)

// MemoryStore implements Store with an in-memory map guarded by a mutex,
// giving every mutation the same all-or-nothing semantics as the
// conditional updates in the PostgreSQL store.
type MemoryStore struct {
	mu          sync.Mutex
	allocations map[uuid.UUID]*Allocation
}

// NewMemoryStore creates an empty in-memory seat store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{allocations: make(map[uuid.UUID]*Allocation)}
}

func (s *MemoryStore) Get(ctx context.Context, tenantID uuid.UUID) (*Allocation, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[tenantID]
	if !ok {
		return nil, ErrAllocationNotFound
	}
	out := *a
	return &out, nil
}

func (s *MemoryStore) Ensure(ctx context.Context, tenantID uuid.UUID, includedSeats int64) (*Allocation, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[tenantID]
	if !ok {
		a = &Allocation{TenantID: tenantID, IncludedSeats: includedSeats}
		s.allocations[tenantID] = a
	}
	out := *a
	return &out, nil
}

func (s *MemoryStore) SetIncludedSeats(ctx context.Context, tenantID uuid.UUID, includedSeats int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[tenantID]
	if !ok {
		return ErrAllocationNotFound
	}
	a.IncludedSeats = includedSeats
	return nil
}

func (s *MemoryStore) SyncCounts(ctx context.Context, tenantID uuid.UUID, active, pending int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[tenantID]
	if !ok {
		return ErrAllocationNotFound
	}
	a.ActiveSeats = active
	a.PendingInvites = pending
	a.LastSyncedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) Reserve(ctx context.Context, tenantID uuid.UUID, autoGrow bool) (*ReserveOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[tenantID]
	if !ok {
		return nil, ErrAllocationNotFound
	}

	switch {
	case a.IncludedSeats == tier.Unlimited:
		a.PendingInvites++
		return &ReserveOutcome{Reserved: true, Allocation: *a}, nil
	case a.Committed() < a.Capacity():
		a.PendingInvites++
		return &ReserveOutcome{Reserved: true, Allocation: *a}, nil
	case autoGrow:
		a.AddonSeats++
		a.PendingInvites++
		return &ReserveOutcome{Reserved: true, GrewAddon: true, BillingOwed: true, Allocation: *a}, nil
	default:
		return &ReserveOutcome{Reserved: false, Allocation: *a}, nil
	}
}

func (s *MemoryStore) Activate(ctx context.Context, tenantID uuid.UUID) (*Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[tenantID]
	if !ok {
		return nil, ErrAllocationNotFound
	}
	if a.PendingInvites == 0 {
		return nil, ErrInvalidTransition
	}
	a.PendingInvites--
	a.ActiveSeats++
	out := *a
	return &out, nil
}

func (s *MemoryStore) Release(ctx context.Context, tenantID uuid.UUID, kind SlotKind) (*Allocation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[tenantID]
	if !ok {
		return nil, ErrAllocationNotFound
	}

	switch kind {
	case SlotKindPending:
		if a.PendingInvites == 0 {
			return nil, ErrNothingToRelease
		}
		a.PendingInvites--
	case SlotKindActive:
		if a.ActiveSeats == 0 {
			return nil, ErrNothingToRelease
		}
		a.ActiveSeats--
	default:
		return nil, ErrInvalidTransition
	}

	out := *a
	return &out, nil
}

func (s *MemoryStore) AddAddonSeats(ctx context.Context, tenantID uuid.UUID, n int64) (*Allocation, error) {
	if n <= 0 {
		return nil, ErrInvalidSeatCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[tenantID]
	if !ok {
		return nil, ErrAllocationNotFound
	}
	a.AddonSeats += n
	out := *a
	return &out, nil
}

func (s *MemoryStore) RemoveAddonSeats(ctx context.Context, tenantID uuid.UUID, n int64) (*Allocation, error) {
	if n <= 0 {
		return nil, ErrInvalidSeatCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.allocations[tenantID]
	if !ok {
		return nil, ErrAllocationNotFound
	}
	if a.AddonSeats < n {
		return nil, ErrInvalidSeatCount
	}
	if a.IncludedSeats != tier.Unlimited && a.IncludedSeats+a.AddonSeats-n < a.Committed() {
		return nil, ErrCapacityBelowCommitted
	}
	a.AddonSeats -= n
	out := *a
	return &out, nil
}
