package tenant_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/entitlement/pkg/tenant"
	"github.com/taskforge/entitlement/pkg/tier"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("get missing tenant", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemoryStore()
		_, err := store.Get(ctx, uuid.New())
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("rejects zero tenant ID", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemoryStore()
		_, err := store.Get(ctx, uuid.Nil)
		assert.ErrorIs(t, err, tenant.ErrInvalidTenantID)

		err = store.Save(ctx, &tenant.Tenant{Status: tenant.StatusActive})
		assert.ErrorIs(t, err, tenant.ErrInvalidTenantID)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemoryStore()
		err := store.Save(ctx, &tenant.Tenant{ID: uuid.New(), Status: tenant.Status("bogus")})
		assert.ErrorIs(t, err, tenant.ErrInvalidStatus)
	})

	t.Run("save and get round trip", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemoryStore()
		id := uuid.New()

		err := store.Save(ctx, &tenant.Tenant{
			ID:     id,
			Name:   "Acme Studio",
			Tier:   tier.Pro,
			Status: tenant.StatusActive,
		})
		require.NoError(t, err)

		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, tier.Pro, got.Tier)
		assert.Equal(t, tenant.StatusActive, got.Status)
		assert.False(t, got.CreatedAt.IsZero())

		// Updates replace the record wholesale but keep CreatedAt.
		created := got.CreatedAt
		got.Tier = tier.Team
		got.Status = tenant.StatusPastDue
		require.NoError(t, store.Save(ctx, got))

		updated, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, tier.Team, updated.Tier)
		assert.Equal(t, tenant.StatusPastDue, updated.Status)
		assert.Equal(t, created, updated.CreatedAt)
	})

	t.Run("returned tenant is a copy", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemoryStore()
		id := uuid.New()
		require.NoError(t, store.Save(ctx, &tenant.Tenant{ID: id, Tier: tier.Core, Status: tenant.StatusActive}))

		first, err := store.Get(ctx, id)
		require.NoError(t, err)
		first.Tier = tier.Enterprise

		second, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, tier.Core, second.Tier)
	})
}

func TestContextHelpers(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	ctx := tenant.SetIDToContext(context.Background(), id)

	got, ok := tenant.GetIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = tenant.GetIDFromContext(context.Background())
	assert.False(t, ok)

	_, err := tenant.MustIDFromContext(context.Background())
	assert.ErrorIs(t, err, tenant.ErrTenantNotInContext)
}
