// Package billing bridges the external billing provider and tenant state.
//
// The Provider interface wraps hosted checkout, customer portal, and
// webhook parsing behind a normalized WebhookEvent; PaddleProvider is the
// production implementation. Webhook signatures are verified before any
// payload field is trusted.
//
// The Reconciler consumes normalized events and performs the matching
// tenant mutation: tier and status on subscription changes, past_due on
// failed payments, seat counts synced to the billed quantity. Application
// is idempotent under at-least-once delivery, keyed on the provider's
// event ID via an AppliedEventStore, so replays never double-apply.
package billing
