package usage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/tenant"
	"github.com/taskforge/entitlement/pkg/tier"
)

// TierResolver resolves the effective tier for a tenant.
type TierResolver func(ctx context.Context, tenantID uuid.UUID) (tier.Tier, error)

// StoreTierResolver resolves the effective tier from a tenant store.
// Lapsed subscriptions and expired trials resolve to the lowest tier.
func StoreTierResolver(store tenant.Store) TierResolver {
	return func(ctx context.Context, tenantID uuid.UUID) (tier.Tier, error) {
		t, err := store.Get(ctx, tenantID)
		if err != nil {
			return "", err
		}
		return t.EffectiveTier(), nil
	}
}

// Service is the usage metering engine: lazy period creation with rollover,
// atomic debits, and read-only summaries.
type Service struct {
	store    Store
	catalog  *tier.Catalog
	resolver TierResolver
	now      func() time.Time
}

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// WithClock overrides the time source. Used by tests to cross period
// boundaries deterministically.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates the metering engine.
// Panics on nil dependencies to fail fast during initialization.
func NewService(store Store, catalog *tier.Catalog, resolver TierResolver, opts ...ServiceOption) *Service {
	if store == nil {
		panic("usage: Store is required")
	}
	if catalog == nil {
		panic("usage: tier catalog is required")
	}
	if resolver == nil {
		panic("usage: TierResolver is required")
	}

	s := &Service{
		store:    store,
		catalog:  catalog,
		resolver: resolver,
		now:      func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// GetOrCreatePeriod returns the open period for the current calendar month,
// creating it if needed. On a month transition the prior period's unused
// remainder rolls in, capped at the tier's rollover percentage; the rollover
// is computed exactly once because period creation is first-writer-wins.
func (s *Service) GetOrCreatePeriod(ctx context.Context, tenantID uuid.UUID) (*Period, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	now := s.now()
	start := periodStartFor(now)

	latest, err := s.store.GetLatestPeriod(ctx, tenantID)
	if err != nil && !errors.Is(err, ErrNoPeriodOpen) {
		return nil, err
	}
	if latest != nil && latest.PeriodStart.Equal(start) {
		return latest, nil
	}

	currentTier, err := s.resolver(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	cfg := s.catalog.Get(currentTier)

	pool := cfg.IncludedActions
	carried := rolloverIn(latest, cfg)
	if pool != tier.Unlimited {
		pool += carried
	}

	return s.store.CreatePeriod(ctx, &Period{
		TenantID:         tenantID,
		PeriodStart:      start,
		PeriodEnd:        start.AddDate(0, 1, 0),
		Pool:             pool,
		RolloverIn:       carried,
		RolloverEligible: cfg.RolloverEligible,
	})
}

// Debit atomically consumes amount from the tenant's open pool.
// Tiers whose catalog entry allows overage record the shortfall instead of
// failing; everyone else gets ErrQuotaExceeded with the balance untouched.
func (s *Service) Debit(ctx context.Context, tenantID uuid.UUID, amount int64) (*DebitResult, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	period, err := s.GetOrCreatePeriod(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	currentTier, err := s.resolver(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	cfg := s.catalog.Get(currentTier)

	return s.store.Debit(ctx, tenantID, period.PeriodStart, amount, cfg.OverageAllowed)
}

// GetUsageSummary returns the read-only usage view for the current period.
// It never mutates: a tenant with no usage this month gets a summary over
// the pool the next debit would open, computed without persisting anything.
func (s *Service) GetUsageSummary(ctx context.Context, tenantID uuid.UUID) (*Summary, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	now := s.now()
	start := periodStartFor(now)

	period, err := s.store.GetLatestPeriod(ctx, tenantID)
	if err != nil && !errors.Is(err, ErrNoPeriodOpen) {
		return nil, err
	}

	if period == nil || !period.PeriodStart.Equal(start) {
		currentTier, err := s.resolver(ctx, tenantID)
		if err != nil {
			return nil, err
		}
		cfg := s.catalog.Get(currentTier)

		pool := cfg.IncludedActions
		carried := rolloverIn(period, cfg)
		if pool != tier.Unlimited {
			pool += carried
		}

		period = &Period{
			TenantID:         tenantID,
			PeriodStart:      start,
			PeriodEnd:        start.AddDate(0, 1, 0),
			Pool:             pool,
			RolloverIn:       carried,
			RolloverEligible: cfg.RolloverEligible,
		}
	}

	summary := &Summary{
		Used:      period.Used,
		Limit:     period.Pool,
		Remaining: period.Remaining(),
		Overage:   period.Overage,
		PeriodEnd: period.PeriodEnd,
	}

	switch {
	case period.Pool == tier.Unlimited:
		summary.PercentUsed = -1
	case period.Pool == 0:
		summary.PercentUsed = 100
	default:
		summary.PercentUsed = min(int((period.Used*100)/period.Pool), 100)
	}

	return summary, nil
}
