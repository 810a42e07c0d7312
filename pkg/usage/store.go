package usage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store defines the persistence interface for usage periods.
//
// Debit must be a single atomic read-modify-write (conditional update or
// equivalent) so concurrent debits cannot both observe sufficient balance.
// CreatePeriod must be idempotent per (tenant, periodStart): the first
// writer wins and later calls observe the existing row unchanged.
type Store interface {
	// GetLatestPeriod returns the tenant's most recent period (open or closed).
	// Returns ErrNoPeriodOpen when the tenant has no periods at all.
	GetLatestPeriod(ctx context.Context, tenantID uuid.UUID) (*Period, error)

	// CreatePeriod inserts a new period. If a period with the same
	// (tenant, periodStart) already exists it is left unchanged and the
	// stored row is returned, so rollover is never applied twice.
	CreatePeriod(ctx context.Context, p *Period) (*Period, error)

	// Debit atomically increases used by amount when remaining covers it.
	// When the balance is short and allowOverage is set, the shortfall is
	// recorded as overage and used is pinned to the pool. Otherwise the
	// period is unchanged and ErrQuotaExceeded is returned alongside the
	// current balance.
	Debit(ctx context.Context, tenantID uuid.UUID, periodStart time.Time, amount int64, allowOverage bool) (*DebitResult, error)
}
