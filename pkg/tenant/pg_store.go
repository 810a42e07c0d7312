package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/entitlement/pkg/pg"
	"github.com/taskforge/entitlement/pkg/tier"
)

// PGStore implements Store backed by PostgreSQL.
// Save is a single upsert so tier/status transitions are total replacements.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed tenant store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("tenant: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

func (s *PGStore) Get(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	if id == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	const query = `
		SELECT id, name, tier, status, trial_ends_at, provider_sub_id, provider_cust_id, created_at, updated_at
		FROM tenants
		WHERE id = $1`

	var t Tenant
	var tierValue, status string
	err := s.pool.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Name, &tierValue, &status, &t.TrialEndsAt,
		&t.ProviderSubID, &t.ProviderCustID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	t.Tier = tier.Tier(tierValue)
	t.Status = Status(status)
	return &t, nil
}

func (s *PGStore) Save(ctx context.Context, t *Tenant) error {
	if t == nil || t.ID == uuid.Nil {
		return ErrInvalidTenantID
	}
	if !t.Status.IsValid() {
		return ErrInvalidStatus
	}

	const query = `
		INSERT INTO tenants (id, name, tier, status, trial_ends_at, provider_sub_id, provider_cust_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			tier = EXCLUDED.tier,
			status = EXCLUDED.status,
			trial_ends_at = EXCLUDED.trial_ends_at,
			provider_sub_id = EXCLUDED.provider_sub_id,
			provider_cust_id = EXCLUDED.provider_cust_id,
			updated_at = now()`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.Name, string(t.Tier), string(t.Status), t.TrialEndsAt,
		t.ProviderSubID, t.ProviderCustID,
	)
	if err != nil {
		return errors.Join(ErrTenantSaveFailed, err)
	}
	return nil
}
