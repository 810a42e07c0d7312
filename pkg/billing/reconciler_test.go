package billing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/entitlement/pkg/billing"
	"github.com/taskforge/entitlement/pkg/seats"
	"github.com/taskforge/entitlement/pkg/tenant"
	"github.com/taskforge/entitlement/pkg/tier"
)

var testPlans = map[string]tier.Tier{
	"pri_core": tier.Core,
	"pri_pro":  tier.Pro,
	"pri_team": tier.Team,
}

type fixture struct {
	tenants    *tenant.MemoryStore
	seats      *seats.MemoryStore
	applied    *billing.MemoryAppliedStore
	reconciler *billing.Reconciler
}

func newFixture(t *testing.T, opts ...billing.ReconcilerOption) *fixture {
	t.Helper()

	catalog, err := tier.NewCatalog(context.Background(), tier.NewInMemSource(tier.DefaultConfigs()))
	require.NoError(t, err)

	f := &fixture{
		tenants: tenant.NewMemoryStore(),
		seats:   seats.NewMemoryStore(),
		applied: billing.NewMemoryAppliedStore(),
	}
	f.reconciler = billing.NewReconciler(f.tenants, f.seats, f.applied, catalog,
		billing.MapPlanResolver(testPlans), opts...)
	return f
}

func TestReconciler_SubscriptionCreated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	tenantID := uuid.New()

	err := f.reconciler.Apply(ctx, &billing.WebhookEvent{
		ID:             "evt_1",
		Type:           billing.EventSubscriptionCreated,
		TenantID:       tenantID,
		SubscriptionID: "sub_1",
		CustomerID:     "ctm_1",
		Status:         tenant.StatusActive,
		PlanID:         "pri_pro",
		Seats:          12,
	})
	require.NoError(t, err)

	tn, err := f.tenants.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, tier.Pro, tn.Tier)
	assert.Equal(t, tenant.StatusActive, tn.Status)
	assert.Equal(t, "sub_1", tn.ProviderSubID)
	assert.Equal(t, "ctm_1", tn.ProviderCustID)

	a, err := f.seats.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), a.IncludedSeats) // Pro includes 10
	assert.Equal(t, int64(2), a.AddonSeats)     // 12 billed - 10 included
}

func TestReconciler_ReplayIsNoOp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	tenantID := uuid.New()

	created := &billing.WebhookEvent{
		ID:       "evt_dup",
		Type:     billing.EventSubscriptionCreated,
		TenantID: tenantID,
		Status:   tenant.StatusActive,
		PlanID:   "pri_core",
		Seats:    5,
	}
	require.NoError(t, f.reconciler.Apply(ctx, created))

	// Same event ID with a mutated payload must not re-apply.
	replay := *created
	replay.PlanID = "pri_team"
	require.NoError(t, f.reconciler.Apply(ctx, &replay))

	tn, err := f.tenants.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, tier.Core, tn.Tier)
}

func TestReconciler_FailedApplyIsRetried(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	tenantID := uuid.New()

	bad := &billing.WebhookEvent{
		ID:       "evt_retry",
		Type:     billing.EventSubscriptionCreated,
		TenantID: tenantID,
		PlanID:   "pri_unmapped",
	}
	err := f.reconciler.Apply(ctx, bad)
	require.ErrorIs(t, err, billing.ErrUnknownPlan)

	// The event ID was released, so a corrected redelivery applies.
	bad.PlanID = "pri_core"
	require.NoError(t, f.reconciler.Apply(ctx, bad))

	tn, err := f.tenants.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, tier.Core, tn.Tier)
}

func TestReconciler_StatusTransitions(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	tenantID := uuid.New()

	require.NoError(t, f.reconciler.Apply(ctx, &billing.WebhookEvent{
		ID:       "evt_created",
		Type:     billing.EventSubscriptionCreated,
		TenantID: tenantID,
		Status:   tenant.StatusActive,
		PlanID:   "pri_team",
		Seats:    25,
	}))

	steps := []struct {
		eventID string
		evType  billing.EventType
		want    tenant.Status
	}{
		{"evt_pay_fail", billing.EventPaymentFailed, tenant.StatusPastDue},
		{"evt_pay_ok", billing.EventPaymentSucceeded, tenant.StatusActive},
		{"evt_cancel", billing.EventSubscriptionCanceled, tenant.StatusCanceled},
	}
	for _, step := range steps {
		require.NoError(t, f.reconciler.Apply(ctx, &billing.WebhookEvent{
			ID:       step.eventID,
			Type:     step.evType,
			TenantID: tenantID,
		}))

		tn, err := f.tenants.Get(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, step.want, tn.Status, "after %s", step.evType)
		assert.Equal(t, tier.Team, tn.Tier, "stored tier survives %s", step.evType)
	}
}

func TestReconciler_TrialingSetsTrialEnd(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	f := newFixture(t, billing.WithReconcilerClock(func() time.Time { return now }))
	tenantID := uuid.New()

	require.NoError(t, f.reconciler.Apply(ctx, &billing.WebhookEvent{
		ID:       "evt_trial",
		Type:     billing.EventSubscriptionCreated,
		TenantID: tenantID,
		Status:   tenant.StatusTrialing,
		PlanID:   "pri_pro",
	}))

	tn, err := f.tenants.Get(ctx, tenantID)
	require.NoError(t, err)
	require.NotNil(t, tn.TrialEndsAt)
	assert.Equal(t, now.AddDate(0, 0, 14), *tn.TrialEndsAt) // Pro has a 14 day trial
}

func TestReconciler_DowngradeKeepsCommittedSeats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)
	tenantID := uuid.New()

	require.NoError(t, f.reconciler.Apply(ctx, &billing.WebhookEvent{
		ID:       "evt_up",
		Type:     billing.EventSubscriptionCreated,
		TenantID: tenantID,
		Status:   tenant.StatusActive,
		PlanID:   "pri_core",
		Seats:    8, // 5 included + 3 addons
	}))
	require.NoError(t, f.seats.SyncCounts(ctx, tenantID, 7, 0))

	// Billed quantity drops to 6, but 7 members are active; the addon count
	// only shrinks as far as the committed seats allow.
	require.NoError(t, f.reconciler.Apply(ctx, &billing.WebhookEvent{
		ID:       "evt_down",
		Type:     billing.EventSubscriptionUpdated,
		TenantID: tenantID,
		Status:   tenant.StatusActive,
		PlanID:   "pri_core",
		Seats:    6,
	}))

	a, err := f.seats.Get(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), a.AddonSeats)
	assert.GreaterOrEqual(t, a.Capacity(), a.Committed())
}

func TestReconciler_RejectsUnusableEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	err := f.reconciler.Apply(ctx, &billing.WebhookEvent{Type: billing.EventSubscriptionCreated, TenantID: uuid.New()})
	assert.ErrorIs(t, err, billing.ErrMissingEventID)

	err = f.reconciler.Apply(ctx, &billing.WebhookEvent{ID: "evt_x", Type: billing.EventSubscriptionCreated})
	assert.ErrorIs(t, err, billing.ErrNoTenantReference)

	err = f.reconciler.Apply(ctx, nil)
	assert.ErrorIs(t, err, billing.ErrMissingEventID)
}
