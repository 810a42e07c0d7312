package usage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/entitlement/pkg/pg"
)

// PGStore implements Store backed by PostgreSQL.
// Debits are conditional UPDATEs so the balance check and the increment
// happen in one statement; the database serializes concurrent debits.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed usage store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("usage: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

const periodColumns = `tenant_id, period_start, period_end, pool, used, overage, rollover_in, rollover_eligible, created_at, updated_at`

func (s *PGStore) GetLatestPeriod(ctx context.Context, tenantID uuid.UUID) (*Period, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	const query = `
		SELECT ` + periodColumns + `
		FROM usage_periods
		WHERE tenant_id = $1
		ORDER BY period_start DESC
		LIMIT 1`

	var p Period
	err := s.pool.QueryRow(ctx, query, tenantID).Scan(
		&p.TenantID, &p.PeriodStart, &p.PeriodEnd, &p.Pool, &p.Used,
		&p.Overage, &p.RolloverIn, &p.RolloverEligible, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNoPeriodOpen
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &p, nil
}

func (s *PGStore) CreatePeriod(ctx context.Context, p *Period) (*Period, error) {
	if p == nil || p.TenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	// First writer wins; replays read back whatever the winner computed so
	// rollover is applied exactly once per (tenant, period_start).
	const insert = `
		INSERT INTO usage_periods (tenant_id, period_start, period_end, pool, used, overage, rollover_in, rollover_eligible, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, 0, $5, $6, now(), now())
		ON CONFLICT (tenant_id, period_start) DO NOTHING`

	_, err := s.pool.Exec(ctx, insert,
		p.TenantID, p.PeriodStart, p.PeriodEnd, p.Pool, p.RolloverIn, p.RolloverEligible,
	)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	const query = `
		SELECT ` + periodColumns + `
		FROM usage_periods
		WHERE tenant_id = $1 AND period_start = $2`

	var stored Period
	err = s.pool.QueryRow(ctx, query, p.TenantID, p.PeriodStart).Scan(
		&stored.TenantID, &stored.PeriodStart, &stored.PeriodEnd, &stored.Pool, &stored.Used,
		&stored.Overage, &stored.RolloverIn, &stored.RolloverEligible, &stored.CreatedAt, &stored.UpdatedAt,
	)
	if err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return &stored, nil
}

func (s *PGStore) Debit(ctx context.Context, tenantID uuid.UUID, periodStart time.Time, amount int64, allowOverage bool) (*DebitResult, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	// Happy path: balance covers the debit (or the pool is unlimited).
	const debit = `
		UPDATE usage_periods
		SET used = used + $3, updated_at = now()
		WHERE tenant_id = $1 AND period_start = $2
		  AND (pool = -1 OR pool - used >= $3)
		RETURNING used, pool, overage`

	var used, pool, overage int64
	err := s.pool.QueryRow(ctx, debit, tenantID, periodStart, amount).Scan(&used, &pool, &overage)
	if err == nil {
		return &DebitResult{Used: used, Remaining: remainingOf(pool, used), Overage: overage}, nil
	}
	if !pg.IsNotFoundError(err) {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if allowOverage {
		// Shortfall path: pin used to the pool and record the excess as
		// overage, still one conditional statement.
		const overdebit = `
			UPDATE usage_periods
			SET overage = overage + ($3 - (pool - used)), used = pool, updated_at = now()
			WHERE tenant_id = $1 AND period_start = $2
			  AND pool <> -1 AND pool - used < $3
			RETURNING used, pool, overage`

		err = s.pool.QueryRow(ctx, overdebit, tenantID, periodStart, amount).Scan(&used, &pool, &overage)
		if err == nil {
			return &DebitResult{Used: used, Remaining: remainingOf(pool, used), Overage: overage}, nil
		}
		if !pg.IsNotFoundError(err) {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		return nil, ErrPeriodNotFound
	}

	// The conditional update matched nothing: either the period is missing
	// or the balance is short. Distinguish with a plain read.
	const query = `
		SELECT used, pool, overage
		FROM usage_periods
		WHERE tenant_id = $1 AND period_start = $2`

	err = s.pool.QueryRow(ctx, query, tenantID, periodStart).Scan(&used, &pool, &overage)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrPeriodNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return &DebitResult{Used: used, Remaining: remainingOf(pool, used), Overage: overage}, ErrQuotaExceeded
}

func remainingOf(pool, used int64) int64 {
	if pool == -1 {
		return -1
	}
	return max(pool-used, 0)
}
