package tenant

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for tenant persistence.
// Each tenant record is keyed by its UUID; there is exactly one row per tenant.
type Store interface {
	// Get retrieves a tenant by ID.
	// Returns ErrTenantNotFound if no tenant exists.
	Get(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// Save creates or updates a tenant as a total replacement.
	// Returns ErrInvalidTenantID for a zero ID and ErrInvalidStatus for an
	// unknown status so malformed records never reach the store.
	Save(ctx context.Context, t *Tenant) error
}
