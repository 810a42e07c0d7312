package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/tier"
)

type periodKey struct {
	tenantID    uuid.UUID
	periodStart time.Time
}

// MemoryStore implements Store with an in-memory map guarded by a mutex.
// The mutex makes every debit a single atomic read-modify-write, matching
// the conditional-update semantics of the PostgreSQL store.
type MemoryStore struct {
	mu      sync.Mutex
	periods map[periodKey]*Period
	latest  map[uuid.UUID]time.Time
}

// NewMemoryStore creates an empty in-memory usage store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		periods: make(map[periodKey]*Period),
		latest:  make(map[uuid.UUID]time.Time),
	}
}

func (s *MemoryStore) GetLatestPeriod(ctx context.Context, tenantID uuid.UUID) (*Period, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	start, ok := s.latest[tenantID]
	if !ok {
		return nil, ErrNoPeriodOpen
	}

	p := s.periods[periodKey{tenantID, start}]
	out := *p
	return &out, nil
}

func (s *MemoryStore) CreatePeriod(ctx context.Context, p *Period) (*Period, error) {
	if p == nil || p.TenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := periodKey{p.TenantID, p.PeriodStart}
	if existing, ok := s.periods[key]; ok {
		out := *existing
		return &out, nil
	}

	stored := *p
	now := time.Now().UTC()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.periods[key] = &stored

	if last, ok := s.latest[p.TenantID]; !ok || p.PeriodStart.After(last) {
		s.latest[p.TenantID] = p.PeriodStart
	}

	out := stored
	return &out, nil
}

func (s *MemoryStore) Debit(ctx context.Context, tenantID uuid.UUID, periodStart time.Time, amount int64, allowOverage bool) (*DebitResult, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.periods[periodKey{tenantID, periodStart}]
	if !ok {
		return nil, ErrPeriodNotFound
	}

	switch {
	case p.Pool == tier.Unlimited:
		p.Used += amount
	case p.Pool-p.Used >= amount:
		p.Used += amount
	case allowOverage:
		p.Overage += amount - (p.Pool - p.Used)
		p.Used = p.Pool
	default:
		return &DebitResult{Used: p.Used, Remaining: p.Remaining(), Overage: p.Overage}, ErrQuotaExceeded
	}

	p.UpdatedAt = time.Now().UTC()
	return &DebitResult{Used: p.Used, Remaining: p.Remaining(), Overage: p.Overage}, nil
}
