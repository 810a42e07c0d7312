package billing

import "errors"

var (
	ErrWebhookVerificationFailed = errors.New("webhook signature verification failed")
	ErrUnknownPlan               = errors.New("no tier mapped for billing plan")
	ErrNoTenantReference         = errors.New("billing event carries no tenant reference")
	ErrMissingEventID            = errors.New("billing event has no provider event ID")
)
