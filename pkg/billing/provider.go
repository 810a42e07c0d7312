package billing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/tenant"
)

// Provider defines the minimal interface for payment provider integrations.
// This abstraction allows support for different providers (Paddle, Stripe,
// Lemonsqueezy) while avoiding vendor lock-in. The provider handles all
// payment complexity through hosted checkouts and customer portals.
//
// Implementations should use official provider SDKs and handle
// provider-specific quirks internally (e.g., Paddle's customer ID mapping).
type Provider interface {
	// CreateCheckoutLink creates a hosted checkout session for a tier's
	// price, binding the tenant ID into the provider's custom data so
	// webhooks can be routed back.
	CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error)

	// GetCustomerPortalLink returns a temporary link to the customer portal
	// where tenants can update payment methods, cancel, or change plans.
	GetCustomerPortalLink(ctx context.Context, req PortalRequest) (*PortalLink, error)

	// ParseWebhook validates and parses incoming webhook data.
	// Must verify the signature before returning anything; a payload that
	// fails verification never produces an event.
	ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error)
}

// CheckoutRequest contains data needed to create a checkout session.
type CheckoutRequest struct {
	PriceID    string    // provider's price identifier for the tier
	TenantID   uuid.UUID // bound into custom data for webhook routing
	Seats      int64     // seat quantity, 0 defaults to 1
	Email      string    // optional billing email
	SuccessURL string    // redirect after successful payment
	CancelURL  string    // redirect if the customer bails out
}

// CheckoutLink represents a hosted checkout session.
type CheckoutLink struct {
	URL       string
	SessionID string
	ExpiresAt time.Time
}

// PortalRequest identifies the subscription a portal session is opened for.
type PortalRequest struct {
	CustomerID     string // provider's customer ID
	SubscriptionID string // provider's subscription ID
}

// PortalLink represents a customer portal session.
type PortalLink struct {
	URL              string
	CancelURL        string // direct link to cancel the subscription
	UpdatePaymentURL string // direct link to update the payment method
	ExpiresAt        time.Time
}

// EventType is the normalized billing event type. Each provider
// implementation maps its specific events to these.
type EventType string

const (
	EventSubscriptionCreated  EventType = "subscription_created"
	EventSubscriptionUpdated  EventType = "subscription_updated"
	EventSubscriptionCanceled EventType = "subscription_canceled"
	EventSubscriptionResumed  EventType = "subscription_resumed"

	EventPaymentSucceeded EventType = "payment_succeeded"
	EventPaymentFailed    EventType = "payment_failed"
)

// WebhookEvent is a normalized webhook event from the billing provider.
// ID is the provider's event identifier and keys idempotent application:
// replaying the same ID is a no-op regardless of the event's effect.
type WebhookEvent struct {
	ID             string
	Type           EventType
	ProviderEvent  string    // original provider event name
	TenantID       uuid.UUID // from custom data, zero when absent
	SubscriptionID string        // provider's subscription ID
	CustomerID     string        // provider's customer ID
	Status         tenant.Status // normalized subscription status
	PlanID         string    // the price/plan subscribed to
	Seats          int64     // seat quantity on the subscription, 0 when absent
	OccurredAt     time.Time
	Raw            map[string]any
}
