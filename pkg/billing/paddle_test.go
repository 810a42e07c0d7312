package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/entitlement/pkg/tenant"
)

func TestNewPaddleProvider_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewPaddleProvider(PaddleConfig{WebhookSecret: "sec"})
	assert.Error(t, err)

	_, err = NewPaddleProvider(PaddleConfig{APIKey: "key"})
	assert.Error(t, err)

	_, err = NewPaddleProvider(PaddleConfig{APIKey: "key", WebhookSecret: "sec", Environment: "staging"})
	assert.Error(t, err)
}

func TestMapPaddleEventType(t *testing.T) {
	t.Parallel()

	cases := map[string]EventType{
		"subscription.created":          EventSubscriptionCreated,
		"transaction.completed":         EventSubscriptionCreated,
		"subscription.updated":          EventSubscriptionUpdated,
		"subscription.canceled":         EventSubscriptionCanceled,
		"subscription.resumed":          EventSubscriptionResumed,
		"transaction.payment_succeeded": EventPaymentSucceeded,
		"transaction.payment_failed":    EventPaymentFailed,
		"adjustment.created":            EventType("adjustment.created"),
	}
	for provider, want := range cases {
		assert.Equal(t, want, mapPaddleEventType(provider), provider)
	}
}

func TestMapPaddleStatus(t *testing.T) {
	t.Parallel()

	cases := map[string]tenant.Status{
		"trialing":  tenant.StatusTrialing,
		"active":    tenant.StatusActive,
		"Active":    tenant.StatusActive,
		"past_due":  tenant.StatusPastDue,
		"canceled":  tenant.StatusCanceled,
		"cancelled": tenant.StatusCanceled,
		"paused":    tenant.StatusInactive, // unknown statuses gate restrictively
	}
	for provider, want := range cases {
		assert.Equal(t, want, mapPaddleStatus(provider), provider)
	}
}

func TestTenantIDFromCustomData(t *testing.T) {
	t.Parallel()

	id := uuid.New()

	got := tenantIDFromCustomData(map[string]any{
		"custom_data": map[string]any{"tenant_id": id.String()},
	})
	assert.Equal(t, id, got)

	assert.Equal(t, uuid.Nil, tenantIDFromCustomData(map[string]any{}))
	assert.Equal(t, uuid.Nil, tenantIDFromCustomData(map[string]any{
		"custom_data": map[string]any{"tenant_id": "not-a-uuid"},
	}))
}

func TestPlanAndSeatsFromItems(t *testing.T) {
	t.Parallel()

	t.Run("subscription payload nests the price object", func(t *testing.T) {
		t.Parallel()

		planID, seatCount := planAndSeatsFromItems(map[string]any{
			"items": []any{
				map[string]any{
					"price":    map[string]any{"id": "pri_pro"},
					"quantity": float64(12),
				},
			},
		}, "price")
		assert.Equal(t, "pri_pro", planID)
		assert.Equal(t, int64(12), seatCount)
	})

	t.Run("transaction payload carries a flat price_id", func(t *testing.T) {
		t.Parallel()

		planID, seatCount := planAndSeatsFromItems(map[string]any{
			"items": []any{
				map[string]any{"price_id": "pri_core", "quantity": float64(5)},
			},
		}, "price_id")
		assert.Equal(t, "pri_core", planID)
		assert.Equal(t, int64(5), seatCount)
	})

	t.Run("missing items yield zero values", func(t *testing.T) {
		t.Parallel()

		planID, seatCount := planAndSeatsFromItems(map[string]any{}, "price")
		assert.Empty(t, planID)
		assert.Zero(t, seatCount)
	})
}

func TestFillFromSubscription(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	event := &WebhookEvent{}

	fillFromSubscription(event, map[string]any{
		"id":          "sub_42",
		"customer_id": "ctm_42",
		"status":      "active",
		"custom_data": map[string]any{"tenant_id": id.String()},
		"items": []any{
			map[string]any{
				"price":    map[string]any{"id": "pri_team"},
				"quantity": float64(25),
			},
		},
	})

	require.Equal(t, "sub_42", event.SubscriptionID)
	assert.Equal(t, "ctm_42", event.CustomerID)
	assert.Equal(t, tenant.StatusActive, event.Status)
	assert.Equal(t, id, event.TenantID)
	assert.Equal(t, "pri_team", event.PlanID)
	assert.Equal(t, int64(25), event.Seats)
}
