package entitlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/ratelimit"
	"github.com/taskforge/entitlement/pkg/seats"
	"github.com/taskforge/entitlement/pkg/tenant"
	"github.com/taskforge/entitlement/pkg/tier"
	"github.com/taskforge/entitlement/pkg/usage"
)

// defaultLookupTimeout bounds every store round trip inside a check so a
// slow backend turns into a denial, not a hung request.
const defaultLookupTimeout = 3 * time.Second

// Meter is the consumable-pool surface the decision point debits against.
// Implemented by usage.Service.
type Meter interface {
	Debit(ctx context.Context, tenantID uuid.UUID, amount int64) (*usage.DebitResult, error)
	GetUsageSummary(ctx context.Context, tenantID uuid.UUID) (*usage.Summary, error)
}

// RateLimiter is the frequency-gating surface. Implemented by
// ratelimit.Limiter.
type RateLimiter interface {
	CheckAndIncrement(ctx context.Context, key string, class tier.ActionClass, ceiling int64) (*ratelimit.Result, error)
}

// SeatReserver is the seat-consuming surface. Implemented by seats.Manager.
type SeatReserver interface {
	ReserveSeat(ctx context.Context, tenantID uuid.UUID) (*seats.ReserveOutcome, error)
}

// UpgradeHintFunc renders the pointer a denied caller follows to resolve a
// tier shortfall. The default names the required tier.
type UpgradeHintFunc func(current, required tier.Tier) string

// Service is the single synchronous decision point protected operations
// call. It composes the tenant store, tier catalog, usage meter, rate
// limiter, and seat manager into one allow/deny answer, and fails closed on
// every infrastructure error.
type Service struct {
	tenants tenant.Store
	catalog *tier.Catalog
	meter   Meter
	limiter RateLimiter
	seats   SeatReserver

	costs       map[tier.Feature]FeatureCost
	timeout     time.Duration
	upgradeHint UpgradeHintFunc
	now         func() time.Time
	log         *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLookupTimeout bounds store lookups inside a single check.
func WithLookupTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithFeatureCosts replaces the default feature cost table.
func WithFeatureCosts(costs map[tier.Feature]FeatureCost) Option {
	return func(s *Service) {
		if costs != nil {
			s.costs = costs
		}
	}
}

// WithUpgradeHint replaces the default upgrade hint renderer.
func WithUpgradeHint(fn UpgradeHintFunc) Option {
	return func(s *Service) {
		if fn != nil {
			s.upgradeHint = fn
		}
	}
}

// WithClock overrides time.Now, used in tests for trial expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger for infrastructure failures.
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// NewService creates the entitlement decision point.
// The meter, limiter, and seat reserver are optional; a nil collaborator
// skips its gate. The tenant store and catalog are required and panic when
// absent to fail fast during initialization.
func NewService(tenants tenant.Store, catalog *tier.Catalog, meter Meter, limiter RateLimiter, reserver SeatReserver, opts ...Option) *Service {
	if tenants == nil {
		panic("entitlement: tenant.Store is required")
	}
	if catalog == nil {
		panic("entitlement: tier catalog is required")
	}

	s := &Service{
		tenants: tenants,
		catalog: catalog,
		meter:   meter,
		limiter: limiter,
		seats:   reserver,
		costs:   defaultFeatureCosts(),
		timeout: defaultLookupTimeout,
		upgradeHint: func(current, required tier.Tier) string {
			return fmt.Sprintf("upgrade to the %s tier", required)
		},
		now: func() time.Time { return time.Now().UTC() },
		log: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CheckAccess decides whether the tenant may perform an operation gated at
// requiredTier, optionally consuming the given feature. The answer is
// always a Decision value; infrastructure faults surface as
// SERVICE_UNAVAILABLE with Allowed=false, never as an error and never as a
// default allow. A requiredTier of the lowest rank is always granted even
// for lapsed tenants. When the feature carries a consumable cost the debit
// happens atomically within this call.
func (s *Service) CheckAccess(ctx context.Context, tenantID uuid.UUID, requiredTier tier.Tier, feature ...tier.Feature) Decision {
	d := Decision{Reason: ReasonServiceUnavailable, CurrentTier: tier.Lowest, RequiredTier: requiredTier}

	if tenantID == uuid.Nil {
		return d
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	effective := tier.Lowest
	t, err := s.tenants.Get(ctx, tenantID)
	switch {
	case err == nil:
		effective = t.EffectiveTierAt(s.now())
	case errors.Is(err, tenant.ErrTenantNotFound):
		// An absent record gates at the lowest tier rather than erroring,
		// same as an unknown tier value.
	default:
		s.log.ErrorContext(ctx, "entitlement check failed closed",
			slog.String("tenant_id", tenantID.String()),
			slog.Any("error", err))
		return d
	}
	d.CurrentTier = effective

	if !tier.Satisfies(effective, requiredTier) {
		d.Reason = ReasonTierInsufficient
		d.UpgradeHint = s.upgradeHint(effective, requiredTier)
		return d
	}

	if len(feature) > 0 {
		if denied := s.gateFeature(ctx, &d, tenantID, effective, feature[0]); denied {
			return d
		}
	}

	d.Allowed = true
	d.Reason = ReasonOK
	return d
}

// gateFeature applies feature membership, rate limiting, and the atomic
// consumable debit, filling d in place. Returns true when the check is a
// denial and must stop.
func (s *Service) gateFeature(ctx context.Context, d *Decision, tenantID uuid.UUID, effective tier.Tier, f tier.Feature) bool {
	cfg := s.catalog.Get(effective)

	if !cfg.HasFeature(f) {
		d.Reason = ReasonTierInsufficient
		if required, ok := s.minTierFor(f); ok {
			d.RequiredTier = required
			d.UpgradeHint = s.upgradeHint(effective, required)
		}
		return true
	}

	cost, metered := s.costs[f]
	if !metered {
		return false
	}

	if s.limiter != nil {
		res, err := s.limiter.CheckAndIncrement(ctx, tenantID.String(), cost.Class, cfg.RateCeiling(cost.Class))
		if err != nil {
			s.log.ErrorContext(ctx, "rate limit check failed closed",
				slog.String("tenant_id", tenantID.String()),
				slog.String("action_class", string(cost.Class)),
				slog.Any("error", err))
			d.Reason = ReasonServiceUnavailable
			return true
		}
		if !res.Allowed {
			d.Reason = ReasonRateLimited
			d.RetryAfter = res.RetryAfter()
			return true
		}
	}

	if cost.Units > 0 && s.meter != nil {
		result, err := s.meter.Debit(ctx, tenantID, cost.Units)
		switch {
		case err == nil:
			d.RemainingUsage = result.Remaining
		case errors.Is(err, usage.ErrQuotaExceeded):
			d.Reason = ReasonQuotaExceeded
			if result != nil {
				d.RemainingUsage = result.Remaining
			}
			return true
		default:
			s.log.ErrorContext(ctx, "usage debit failed closed",
				slog.String("tenant_id", tenantID.String()),
				slog.Any("error", err))
			d.Reason = ReasonServiceUnavailable
			return true
		}
	}

	return false
}

// ReserveSeat gates a seat-consuming operation such as sending an invite.
// Same contract as CheckAccess: a Decision value, fail closed on
// infrastructure errors.
func (s *Service) ReserveSeat(ctx context.Context, tenantID uuid.UUID) Decision {
	d := Decision{Reason: ReasonServiceUnavailable, CurrentTier: tier.Lowest}

	if tenantID == uuid.Nil || s.seats == nil {
		return d
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	t, err := s.tenants.Get(ctx, tenantID)
	if err != nil && !errors.Is(err, tenant.ErrTenantNotFound) {
		s.log.ErrorContext(ctx, "seat reservation failed closed",
			slog.String("tenant_id", tenantID.String()),
			slog.Any("error", err))
		return d
	}
	if err == nil {
		d.CurrentTier = t.EffectiveTierAt(s.now())
	}

	_, err = s.seats.ReserveSeat(ctx, tenantID)
	switch {
	case err == nil:
		d.Allowed = true
		d.Reason = ReasonOK
	case errors.Is(err, seats.ErrSeatLimitReached):
		d.Reason = ReasonSeatLimitReached
		d.UpgradeHint = "add seats or upgrade the tier"
	default:
		s.log.ErrorContext(ctx, "seat reservation failed closed",
			slog.String("tenant_id", tenantID.String()),
			slog.Any("error", err))
	}
	return d
}

// minTierFor returns the lowest-ranked tier whose catalog entry unlocks f.
func (s *Service) minTierFor(f tier.Feature) (tier.Tier, bool) {
	for _, t := range s.catalog.Tiers() {
		if s.catalog.Get(t).HasFeature(f) {
			return t, true
		}
	}
	return "", false
}
