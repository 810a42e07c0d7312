package tenant

import "errors"

var (
	ErrTenantNotFound    = errors.New("tenant not found")
	ErrInvalidTenantID   = errors.New("invalid tenant ID")
	ErrInvalidStatus     = errors.New("invalid subscription status")
	ErrTenantNotInContext = errors.New("tenant ID not found in context")
	ErrTenantSaveFailed   = errors.New("failed to save tenant")
)
