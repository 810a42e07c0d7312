package tenant

import (
	"context"

	"github.com/google/uuid"
)

type tenantIDCtxKey struct{}

// SetIDToContext stores the tenant ID in the context for request-scoped use.
func SetIDToContext(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantIDCtxKey{}, id)
}

// GetIDFromContext retrieves the tenant ID from the context.
func GetIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(tenantIDCtxKey{}).(uuid.UUID)
	return id, ok
}

// MustIDFromContext retrieves the tenant ID or returns ErrTenantNotInContext.
// Callers that already resolved the tenant should prefer passing the ID
// explicitly; this helper exists for request-scoped plumbing.
func MustIDFromContext(ctx context.Context) (uuid.UUID, error) {
	id, ok := GetIDFromContext(ctx)
	if !ok || id == uuid.Nil {
		return uuid.Nil, ErrTenantNotInContext
	}
	return id, nil
}
