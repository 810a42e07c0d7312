package billing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	paddle "github.com/PaddleHQ/paddle-go-sdk/v4"
	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/tenant"
)

// customDataTenantKey is the custom-data field carrying our tenant ID
// through Paddle checkouts and back on every webhook.
const customDataTenantKey = "tenant_id"

// PaddleConfig holds configuration for the Paddle billing provider.
type PaddleConfig struct {
	APIKey        string `env:"PADDLE_API_KEY,required"`
	WebhookSecret string `env:"PADDLE_WEBHOOK_SECRET,required"`
	Environment   string `env:"PADDLE_ENVIRONMENT" envDefault:"production"`
}

// PaddleProvider implements Provider for Paddle.
type PaddleProvider struct {
	client   *paddle.SDK
	verifier *paddle.WebhookVerifier
}

// NewPaddleProvider creates a Paddle billing provider.
func NewPaddleProvider(config PaddleConfig) (*PaddleProvider, error) {
	if config.APIKey == "" {
		return nil, errors.New("paddle API key is required")
	}
	if config.WebhookSecret == "" {
		return nil, errors.New("paddle webhook secret is required")
	}

	var client *paddle.SDK
	var err error

	switch strings.ToLower(config.Environment) {
	case "sandbox":
		client, err = paddle.NewSandbox(config.APIKey)
	case "production", "":
		client, err = paddle.New(config.APIKey)
	default:
		return nil, fmt.Errorf("invalid paddle environment: %s", config.Environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle client: %w", err)
	}

	return &PaddleProvider{
		client:   client,
		verifier: paddle.NewWebhookVerifier(config.WebhookSecret),
	}, nil
}

// CreateCheckoutLink creates a hosted checkout session in Paddle.
func (p *PaddleProvider) CreateCheckoutLink(ctx context.Context, req CheckoutRequest) (*CheckoutLink, error) {
	if req.PriceID == "" {
		return nil, errors.New("price ID is required")
	}
	if req.TenantID == uuid.Nil {
		return nil, errors.New("tenant ID is required")
	}

	quantity := req.Seats
	if quantity <= 0 {
		quantity = 1
	}

	item := paddle.NewCreateTransactionItemsTransactionItemFromCatalog(&paddle.TransactionItemFromCatalog{
		PriceID:  req.PriceID,
		Quantity: int(quantity),
	})

	transactionReq := &paddle.CreateTransactionRequest{
		Items: []paddle.CreateTransactionItems{*item},
		CustomData: paddle.CustomData{
			customDataTenantKey: req.TenantID.String(),
		},
	}
	if req.Email != "" {
		transactionReq.CustomData["email"] = req.Email
	}
	if req.SuccessURL != "" {
		transactionReq.Checkout = &paddle.TransactionCheckout{
			URL: paddle.PtrTo(req.SuccessURL),
		}
	}

	transaction, err := p.client.TransactionsClient.CreateTransaction(ctx, transactionReq)
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle transaction: %w", err)
	}

	if transaction.Checkout == nil || transaction.Checkout.URL == nil {
		return nil, errors.New("no checkout URL returned from paddle")
	}

	return &CheckoutLink{
		URL:       *transaction.Checkout.URL,
		SessionID: transaction.ID,
		ExpiresAt: time.Now().Add(24 * time.Hour), // Paddle checkout links expire in 24 hours
	}, nil
}

// GetCustomerPortalLink opens a customer portal session in Paddle.
func (p *PaddleProvider) GetCustomerPortalLink(ctx context.Context, req PortalRequest) (*PortalLink, error) {
	if req.CustomerID == "" {
		return nil, errors.New("customer ID is required")
	}
	if req.SubscriptionID == "" {
		return nil, errors.New("subscription ID is required")
	}

	session, err := p.client.CustomerPortalSessionsClient.CreateCustomerPortalSession(ctx, &paddle.CreateCustomerPortalSessionRequest{
		CustomerID:      req.CustomerID,
		SubscriptionIDs: []string{req.SubscriptionID},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create paddle customer portal session: %w", err)
	}

	link := &PortalLink{
		URL:       session.URLs.General.Overview,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}

	for _, subURL := range session.URLs.Subscriptions {
		if subURL.ID != req.SubscriptionID {
			continue
		}
		link.CancelURL = subURL.CancelSubscription
		link.UpdatePaymentURL = subURL.UpdateSubscriptionPaymentMethod
		break
	}

	if link.URL == "" {
		return nil, errors.New("no portal URL returned from paddle")
	}
	return link, nil
}

// ParseWebhook verifies the Paddle signature and normalizes the payload.
// Verification failure always returns an error before any payload field is
// trusted.
func (p *PaddleProvider) ParseWebhook(ctx context.Context, payload []byte, signature string) (*WebhookEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "/webhook", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request for verification: %w", err)
	}
	req.Header.Set("Paddle-Signature", signature)

	valid, err := p.verifier.Verify(req)
	if err != nil {
		return nil, fmt.Errorf("webhook verification error: %w", err)
	}
	if !valid {
		return nil, ErrWebhookVerificationFailed
	}

	var paddleEvent struct {
		EventID    string         `json:"event_id"`
		EventType  string         `json:"event_type"`
		OccurredAt string         `json:"occurred_at"`
		Data       map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &paddleEvent); err != nil {
		return nil, fmt.Errorf("failed to parse webhook payload: %w", err)
	}
	if paddleEvent.EventID == "" {
		return nil, errors.New("paddle event has no event_id")
	}

	event := &WebhookEvent{
		ID:            paddleEvent.EventID,
		Type:          mapPaddleEventType(paddleEvent.EventType),
		ProviderEvent: paddleEvent.EventType,
		Raw:           paddleEvent.Data,
	}
	if occurredAt, err := time.Parse(time.RFC3339, paddleEvent.OccurredAt); err == nil {
		event.OccurredAt = occurredAt
	}

	switch {
	case strings.HasPrefix(paddleEvent.EventType, "subscription."):
		fillFromSubscription(event, paddleEvent.Data)
	case strings.HasPrefix(paddleEvent.EventType, "transaction."):
		fillFromTransaction(event, paddleEvent.Data)
	}

	return event, nil
}

// ParseWebhookRequest accepts the full HTTP request when available.
func (p *PaddleProvider) ParseWebhookRequest(req *http.Request) (*WebhookEvent, error) {
	body, err := readBody(req)
	if err != nil {
		return nil, err
	}
	return p.ParseWebhook(req.Context(), body, req.Header.Get("Paddle-Signature"))
}

func fillFromSubscription(event *WebhookEvent, data map[string]any) {
	if subID, ok := data["id"].(string); ok {
		event.SubscriptionID = subID
	}
	if custID, ok := data["customer_id"].(string); ok {
		event.CustomerID = custID
	}
	if status, ok := data["status"].(string); ok {
		event.Status = mapPaddleStatus(status)
	}
	event.TenantID = tenantIDFromCustomData(data)
	event.PlanID, event.Seats = planAndSeatsFromItems(data, "price")
}

func fillFromTransaction(event *WebhookEvent, data map[string]any) {
	if subID, ok := data["subscription_id"].(string); ok {
		event.SubscriptionID = subID
	}
	if custID, ok := data["customer_id"].(string); ok {
		event.CustomerID = custID
	}
	// Transaction status names payment state, not subscription state; the
	// reconciler derives the tenant status from the event type instead.
	event.TenantID = tenantIDFromCustomData(data)
	event.PlanID, event.Seats = planAndSeatsFromItems(data, "price_id")
}

func tenantIDFromCustomData(data map[string]any) uuid.UUID {
	customData, ok := data["custom_data"].(map[string]any)
	if !ok {
		return uuid.Nil
	}
	raw, ok := customData[customDataTenantKey].(string)
	if !ok {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// planAndSeatsFromItems extracts the price ID and seat quantity from the
// first line item. Subscription payloads nest the price object under
// "price"; transaction payloads carry a flat "price_id".
func planAndSeatsFromItems(data map[string]any, priceField string) (string, int64) {
	items, ok := data["items"].([]any)
	if !ok || len(items) == 0 {
		return "", 0
	}
	item, ok := items[0].(map[string]any)
	if !ok {
		return "", 0
	}

	var planID string
	switch priceField {
	case "price":
		if price, ok := item["price"].(map[string]any); ok {
			planID, _ = price["id"].(string)
		}
	default:
		planID, _ = item[priceField].(string)
	}

	var seats int64
	if quantity, ok := item["quantity"].(float64); ok {
		seats = int64(quantity)
	}
	return planID, seats
}

func readBody(req *http.Request) ([]byte, error) {
	defer req.Body.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(req.Body); err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return buf.Bytes(), nil
}

// mapPaddleEventType maps Paddle event types to the normalized EventType.
func mapPaddleEventType(paddleEvent string) EventType {
	switch paddleEvent {
	case "subscription.created", "transaction.completed":
		return EventSubscriptionCreated
	case "subscription.updated":
		return EventSubscriptionUpdated
	case "subscription.canceled":
		return EventSubscriptionCanceled
	case "subscription.resumed":
		return EventSubscriptionResumed
	case "transaction.payment_succeeded":
		return EventPaymentSucceeded
	case "transaction.payment_failed":
		return EventPaymentFailed
	default:
		return EventType(paddleEvent)
	}
}

// mapPaddleStatus maps a Paddle subscription status to a tenant status.
// Unknown statuses map to inactive so a surprise value gates restrictively.
func mapPaddleStatus(paddleStatus string) tenant.Status {
	switch strings.ToLower(paddleStatus) {
	case "trialing":
		return tenant.StatusTrialing
	case "active":
		return tenant.StatusActive
	case "past_due":
		return tenant.StatusPastDue
	case "canceled", "cancelled":
		return tenant.StatusCanceled
	default:
		return tenant.StatusInactive
	}
}
