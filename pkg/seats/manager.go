package seats

import (
	"context"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/tenant"
	"github.com/taskforge/entitlement/pkg/tier"
)

// CounterFunc returns a derived count (active members, pending invites) for
// a tenant. Membership data lives outside this core; counters bridge to it.
// Must be fast as they run on every seat read.
type CounterFunc func(ctx context.Context, tenantID uuid.UUID) (int64, error)

// TierResolver resolves the effective tier for a tenant.
type TierResolver func(ctx context.Context, tenantID uuid.UUID) (tier.Tier, error)

// StoreTierResolver resolves the effective tier from a tenant store.
func StoreTierResolver(store tenant.Store) TierResolver {
	return func(ctx context.Context, tenantID uuid.UUID) (tier.Tier, error) {
		t, err := store.Get(ctx, tenantID)
		if err != nil {
			return "", err
		}
		return t.EffectiveTier(), nil
	}
}

// Manager exposes seat reservation and capacity operations with the
// invariant active + pending <= included + addons enforced atomically.
type Manager struct {
	store          Store
	catalog        *tier.Catalog
	resolver       TierResolver
	activeCounter  CounterFunc
	pendingCounter CounterFunc
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithActiveCounter registers the derived active-member counter.
func WithActiveCounter(fn CounterFunc) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.activeCounter = fn
		}
	}
}

// WithPendingCounter registers the derived pending-invite counter.
func WithPendingCounter(fn CounterFunc) ManagerOption {
	return func(m *Manager) {
		if fn != nil {
			m.pendingCounter = fn
		}
	}
}

// NewManager creates a seat allocation manager.
// Panics on nil required dependencies to fail fast during initialization.
func NewManager(store Store, catalog *tier.Catalog, resolver TierResolver, opts ...ManagerOption) *Manager {
	if store == nil {
		panic("seats: Store is required")
	}
	if catalog == nil {
		panic("seats: tier catalog is required")
	}
	if resolver == nil {
		panic("seats: TierResolver is required")
	}

	m := &Manager{
		store:    store,
		catalog:  catalog,
		resolver: resolver,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// GetSeatInfo returns the allocation with derived counts computed fresh
// from the registered counters, never from cache, so external membership
// changes are visible immediately.
func (m *Manager) GetSeatInfo(ctx context.Context, tenantID uuid.UUID) (*Allocation, error) {
	a, err := m.ensure(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if m.activeCounter == nil && m.pendingCounter == nil {
		return a, nil
	}

	active, pending := a.ActiveSeats, a.PendingInvites
	if m.activeCounter != nil {
		if active, err = m.activeCounter(ctx, tenantID); err != nil {
			return nil, err
		}
	}
	if m.pendingCounter != nil {
		if pending, err = m.pendingCounter(ctx, tenantID); err != nil {
			return nil, err
		}
	}

	if err := m.store.SyncCounts(ctx, tenantID, active, pending); err != nil {
		return nil, err
	}

	return m.store.Get(ctx, tenantID)
}

// ReserveSeat commits one pending invite slot. A full allocation grows an
// addon seat automatically only when the tier's catalog entry enables
// auto-grow; the lowest tier never grows. Fails with ErrSeatLimitReached
// when no capacity can be found.
func (m *Manager) ReserveSeat(ctx context.Context, tenantID uuid.UUID) (*ReserveOutcome, error) {
	cfg, err := m.tierConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if _, err := m.ensure(ctx, tenantID); err != nil {
		return nil, err
	}

	outcome, err := m.store.Reserve(ctx, tenantID, cfg.AutoGrowSeats)
	if err != nil {
		return nil, err
	}
	if !outcome.Reserved {
		return outcome, ErrSeatLimitReached
	}
	return outcome, nil
}

// ActivateSeat moves a pending invite to an active member (invite accepted).
func (m *Manager) ActivateSeat(ctx context.Context, tenantID uuid.UUID) (*Allocation, error) {
	return m.store.Activate(ctx, tenantID)
}

// ReleaseSeat returns a committed seat to the pool: a revoked or expired
// invite releases a pending slot, a removed member releases an active one.
func (m *Manager) ReleaseSeat(ctx context.Context, tenantID uuid.UUID, kind SlotKind) (*Allocation, error) {
	return m.store.Release(ctx, tenantID, kind)
}

// AddAddonSeats purchases n extra seats. Rejected for tiers whose catalog
// entry does not allow addon seats.
func (m *Manager) AddAddonSeats(ctx context.Context, tenantID uuid.UUID, n int64) (*Allocation, error) {
	if n <= 0 {
		return nil, ErrInvalidSeatCount
	}

	cfg, err := m.tierConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if !cfg.AddonSeatsAllowed {
		return nil, ErrAddonSeatsNotAllowed
	}

	if _, err := m.ensure(ctx, tenantID); err != nil {
		return nil, err
	}

	return m.store.AddAddonSeats(ctx, tenantID, n)
}

// RemoveAddonSeats gives back n purchased seats. Capacity can never be
// reduced below the currently committed active + pending seats.
func (m *Manager) RemoveAddonSeats(ctx context.Context, tenantID uuid.UUID, n int64) (*Allocation, error) {
	if n <= 0 {
		return nil, ErrInvalidSeatCount
	}
	return m.store.RemoveAddonSeats(ctx, tenantID, n)
}

func (m *Manager) tierConfig(ctx context.Context, tenantID uuid.UUID) (tier.Config, error) {
	if tenantID == uuid.Nil {
		return tier.Config{}, ErrInvalidTenantID
	}

	currentTier, err := m.resolver(ctx, tenantID)
	if err != nil {
		return tier.Config{}, err
	}
	return m.catalog.Get(currentTier), nil
}

func (m *Manager) ensure(ctx context.Context, tenantID uuid.UUID) (*Allocation, error) {
	cfg, err := m.tierConfig(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return m.store.Ensure(ctx, tenantID, cfg.IncludedSeats)
}
