package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/seats"
	"github.com/taskforge/entitlement/pkg/tenant"
	"github.com/taskforge/entitlement/pkg/tier"
)

// PlanResolver maps a provider price/plan ID to the tier it sells.
type PlanResolver func(planID string) (tier.Tier, bool)

// MapPlanResolver builds a PlanResolver from a static price-to-tier map.
func MapPlanResolver(plans map[string]tier.Tier) PlanResolver {
	return func(planID string) (tier.Tier, bool) {
		t, ok := plans[planID]
		return t, ok
	}
}

// Reconciler applies normalized billing events to tenant state: tier,
// subscription status, and seat counts. Application is idempotent under
// at-least-once delivery, keyed on the provider's event ID, and every
// tenant mutation is a total replacement so a duplicate that slips past the
// key check cannot half-apply.
type Reconciler struct {
	tenants tenant.Store
	seats   seats.Store
	applied AppliedEventStore
	catalog *tier.Catalog
	plans   PlanResolver
	now     func() time.Time
	log     *slog.Logger
}

// ReconcilerOption configures a Reconciler.
type ReconcilerOption func(*Reconciler)

// WithReconcilerClock overrides time.Now, used in tests for trial windows.
func WithReconcilerClock(now func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// WithReconcilerLogger sets the logger for event application.
func WithReconcilerLogger(log *slog.Logger) ReconcilerOption {
	return func(r *Reconciler) {
		if log != nil {
			r.log = log
		}
	}
}

// NewReconciler creates a billing reconciler.
// Panics on nil required dependencies to fail fast during initialization.
func NewReconciler(tenants tenant.Store, seatStore seats.Store, applied AppliedEventStore, catalog *tier.Catalog, plans PlanResolver, opts ...ReconcilerOption) *Reconciler {
	if tenants == nil {
		panic("billing: tenant.Store is required")
	}
	if seatStore == nil {
		panic("billing: seats.Store is required")
	}
	if applied == nil {
		panic("billing: AppliedEventStore is required")
	}
	if catalog == nil {
		panic("billing: tier catalog is required")
	}
	if plans == nil {
		panic("billing: PlanResolver is required")
	}

	r := &Reconciler{
		tenants: tenants,
		seats:   seatStore,
		applied: applied,
		catalog: catalog,
		plans:   plans,
		now:     func() time.Time { return time.Now().UTC() },
		log:     slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Apply performs the tenant-state transition for one webhook event.
// Replaying an already-applied event ID is a no-op. A failed application
// releases the ID again so the provider's retry can succeed.
func (r *Reconciler) Apply(ctx context.Context, event *WebhookEvent) error {
	if event == nil || event.ID == "" {
		return ErrMissingEventID
	}
	if event.TenantID == uuid.Nil {
		return ErrNoTenantReference
	}

	first, err := r.applied.MarkApplied(ctx, event.ID)
	if err != nil {
		return fmt.Errorf("failed to record billing event %s: %w", event.ID, err)
	}
	if !first {
		r.log.InfoContext(ctx, "billing event replayed, skipping",
			slog.String("event_id", event.ID),
			slog.String("event_type", string(event.Type)))
		return nil
	}

	if err := r.apply(ctx, event); err != nil {
		if forgetErr := r.applied.Forget(ctx, event.ID); forgetErr != nil {
			r.log.ErrorContext(ctx, "failed to release billing event for retry",
				slog.String("event_id", event.ID),
				slog.Any("error", forgetErr))
		}
		return err
	}

	r.log.InfoContext(ctx, "billing event applied",
		slog.String("event_id", event.ID),
		slog.String("event_type", string(event.Type)),
		slog.String("tenant_id", event.TenantID.String()))
	return nil
}

func (r *Reconciler) apply(ctx context.Context, event *WebhookEvent) error {
	switch event.Type {
	case EventSubscriptionCreated, EventSubscriptionUpdated, EventSubscriptionResumed:
		return r.applySubscription(ctx, event)
	case EventSubscriptionCanceled:
		return r.setStatus(ctx, event.TenantID, tenant.StatusCanceled)
	case EventPaymentSucceeded:
		return r.setStatus(ctx, event.TenantID, tenant.StatusActive)
	case EventPaymentFailed:
		return r.setStatus(ctx, event.TenantID, tenant.StatusPastDue)
	default:
		r.log.WarnContext(ctx, "ignoring unmapped billing event",
			slog.String("event_id", event.ID),
			slog.String("provider_event", event.ProviderEvent))
		return nil
	}
}

func (r *Reconciler) applySubscription(ctx context.Context, event *WebhookEvent) error {
	newTier, ok := r.plans(event.PlanID)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPlan, event.PlanID)
	}

	t, err := r.tenants.Get(ctx, event.TenantID)
	switch {
	case err == nil:
	case errors.Is(err, tenant.ErrTenantNotFound):
		t = &tenant.Tenant{ID: event.TenantID, Status: tenant.StatusInactive}
	default:
		return err
	}

	status := event.Status
	if status == "" {
		status = tenant.StatusActive
	}

	t.Tier = newTier
	t.Status = status
	if event.SubscriptionID != "" {
		t.ProviderSubID = event.SubscriptionID
	}
	if event.CustomerID != "" {
		t.ProviderCustID = event.CustomerID
	}

	cfg := r.catalog.Get(newTier)
	if status == tenant.StatusTrialing && t.TrialEndsAt == nil && cfg.TrialDays > 0 {
		endsAt := r.now().AddDate(0, 0, cfg.TrialDays)
		t.TrialEndsAt = &endsAt
	}
	if status != tenant.StatusTrialing {
		t.TrialEndsAt = nil
	}

	if err := r.tenants.Save(ctx, t); err != nil {
		return err
	}

	return r.syncSeats(ctx, event, cfg)
}

func (r *Reconciler) setStatus(ctx context.Context, tenantID uuid.UUID, status tenant.Status) error {
	t, err := r.tenants.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	t.Status = status
	if status != tenant.StatusTrialing {
		t.TrialEndsAt = nil
	}
	return r.tenants.Save(ctx, t)
}

// syncSeats aligns the seat allocation with the subscription: included
// seats come from the tier, and any quantity purchased past them becomes
// addon seats. Shrinking below committed seats is refused by the store and
// only logged, so a downgrade never strands active members.
func (r *Reconciler) syncSeats(ctx context.Context, event *WebhookEvent, cfg tier.Config) error {
	if _, err := r.seats.Ensure(ctx, event.TenantID, cfg.IncludedSeats); err != nil {
		return err
	}
	if err := r.seats.SetIncludedSeats(ctx, event.TenantID, cfg.IncludedSeats); err != nil {
		return err
	}

	if cfg.IncludedSeats == tier.Unlimited || event.Seats == 0 {
		return nil
	}

	targetAddons := event.Seats - cfg.IncludedSeats
	if targetAddons < 0 {
		targetAddons = 0
	}

	allocation, err := r.seats.Get(ctx, event.TenantID)
	if err != nil {
		return err
	}

	switch delta := targetAddons - allocation.AddonSeats; {
	case delta > 0:
		_, err = r.seats.AddAddonSeats(ctx, event.TenantID, delta)
	case delta < 0:
		_, err = r.seats.RemoveAddonSeats(ctx, event.TenantID, -delta)
		if errors.Is(err, seats.ErrCapacityBelowCommitted) {
			r.log.WarnContext(ctx, "keeping addon seats above billed quantity, committed seats exceed it",
				slog.String("tenant_id", event.TenantID.String()),
				slog.Int64("billed_seats", event.Seats),
				slog.Int64("committed", allocation.Committed()))
			err = nil
		}
	}
	return err
}
