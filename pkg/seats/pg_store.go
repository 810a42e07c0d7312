package seats

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskforge/entitlement/pkg/pg"
)

// PGStore implements Store backed by PostgreSQL. Capacity checks ride in
// the WHERE clause of each UPDATE so the database serializes concurrent
// reservations against the same tenant row.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed seat store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	if pool == nil {
		panic("seats: pgxpool is required")
	}
	return &PGStore{pool: pool}
}

const allocationColumns = `tenant_id, included_seats, addon_seats, active_seats, pending_invites, last_synced_at`

func (s *PGStore) scanAllocation(row interface{ Scan(dest ...any) error }) (*Allocation, error) {
	var a Allocation
	err := row.Scan(&a.TenantID, &a.IncludedSeats, &a.AddonSeats, &a.ActiveSeats, &a.PendingInvites, &a.LastSyncedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PGStore) Get(ctx context.Context, tenantID uuid.UUID) (*Allocation, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	const query = `SELECT ` + allocationColumns + ` FROM seat_allocations WHERE tenant_id = $1`

	a, err := s.scanAllocation(s.pool.QueryRow(ctx, query, tenantID))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAllocationNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return a, nil
}

func (s *PGStore) Ensure(ctx context.Context, tenantID uuid.UUID, includedSeats int64) (*Allocation, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}

	const insert = `
		INSERT INTO seat_allocations (tenant_id, included_seats, addon_seats, active_seats, pending_invites, last_synced_at)
		VALUES ($1, $2, 0, 0, 0, now())
		ON CONFLICT (tenant_id) DO NOTHING`

	if _, err := s.pool.Exec(ctx, insert, tenantID, includedSeats); err != nil {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	return s.Get(ctx, tenantID)
}

func (s *PGStore) SetIncludedSeats(ctx context.Context, tenantID uuid.UUID, includedSeats int64) error {
	const update = `UPDATE seat_allocations SET included_seats = $2 WHERE tenant_id = $1`

	tag, err := s.pool.Exec(ctx, update, tenantID, includedSeats)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAllocationNotFound
	}
	return nil
}

func (s *PGStore) SyncCounts(ctx context.Context, tenantID uuid.UUID, active, pending int64) error {
	const update = `
		UPDATE seat_allocations
		SET active_seats = $2, pending_invites = $3, last_synced_at = now()
		WHERE tenant_id = $1`

	tag, err := s.pool.Exec(ctx, update, tenantID, active, pending)
	if err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAllocationNotFound
	}
	return nil
}

func (s *PGStore) Reserve(ctx context.Context, tenantID uuid.UUID, autoGrow bool) (*ReserveOutcome, error) {
	// Capacity check and increment commit together; -1 included seats means
	// unlimited capacity.
	const reserve = `
		UPDATE seat_allocations
		SET pending_invites = pending_invites + 1
		WHERE tenant_id = $1
		  AND (included_seats = -1 OR active_seats + pending_invites < included_seats + addon_seats)
		RETURNING ` + allocationColumns

	a, err := s.scanAllocation(s.pool.QueryRow(ctx, reserve, tenantID))
	if err == nil {
		return &ReserveOutcome{Reserved: true, Allocation: *a}, nil
	}
	if !pg.IsNotFoundError(err) {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	if autoGrow {
		// Grow and reserve in one statement so two concurrent grows each
		// buy their own seat instead of sharing one.
		const growReserve = `
			UPDATE seat_allocations
			SET addon_seats = addon_seats + 1, pending_invites = pending_invites + 1
			WHERE tenant_id = $1
			  AND included_seats <> -1
			  AND active_seats + pending_invites >= included_seats + addon_seats
			RETURNING ` + allocationColumns

		a, err = s.scanAllocation(s.pool.QueryRow(ctx, growReserve, tenantID))
		if err == nil {
			return &ReserveOutcome{Reserved: true, GrewAddon: true, BillingOwed: true, Allocation: *a}, nil
		}
		if !pg.IsNotFoundError(err) {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
		// Raced with another reservation freeing or filling capacity; try
		// the plain path once more before reporting the row missing.
		a, err = s.scanAllocation(s.pool.QueryRow(ctx, reserve, tenantID))
		if err == nil {
			return &ReserveOutcome{Reserved: true, Allocation: *a}, nil
		}
		if !pg.IsNotFoundError(err) {
			return nil, errors.Join(ErrStoreUnavailable, err)
		}
	}

	a, err = s.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return &ReserveOutcome{Reserved: false, Allocation: *a}, nil
}

func (s *PGStore) Activate(ctx context.Context, tenantID uuid.UUID) (*Allocation, error) {
	const update = `
		UPDATE seat_allocations
		SET pending_invites = pending_invites - 1, active_seats = active_seats + 1
		WHERE tenant_id = $1 AND pending_invites > 0
		RETURNING ` + allocationColumns

	a, err := s.scanAllocation(s.pool.QueryRow(ctx, update, tenantID))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrInvalidTransition
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return a, nil
}

func (s *PGStore) Release(ctx context.Context, tenantID uuid.UUID, kind SlotKind) (*Allocation, error) {
	var update string
	switch kind {
	case SlotKindPending:
		update = `
			UPDATE seat_allocations
			SET pending_invites = pending_invites - 1
			WHERE tenant_id = $1 AND pending_invites > 0
			RETURNING ` + allocationColumns
	case SlotKindActive:
		update = `
			UPDATE seat_allocations
			SET active_seats = active_seats - 1
			WHERE tenant_id = $1 AND active_seats > 0
			RETURNING ` + allocationColumns
	default:
		return nil, ErrInvalidTransition
	}

	a, err := s.scanAllocation(s.pool.QueryRow(ctx, update, tenantID))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrNothingToRelease
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return a, nil
}

func (s *PGStore) AddAddonSeats(ctx context.Context, tenantID uuid.UUID, n int64) (*Allocation, error) {
	if n <= 0 {
		return nil, ErrInvalidSeatCount
	}

	const update = `
		UPDATE seat_allocations
		SET addon_seats = addon_seats + $2
		WHERE tenant_id = $1
		RETURNING ` + allocationColumns

	a, err := s.scanAllocation(s.pool.QueryRow(ctx, update, tenantID, n))
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrAllocationNotFound
		}
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return a, nil
}

func (s *PGStore) RemoveAddonSeats(ctx context.Context, tenantID uuid.UUID, n int64) (*Allocation, error) {
	if n <= 0 {
		return nil, ErrInvalidSeatCount
	}

	// Capacity may never drop below committed seats.
	const update = `
		UPDATE seat_allocations
		SET addon_seats = addon_seats - $2
		WHERE tenant_id = $1 AND addon_seats >= $2
		  AND (included_seats = -1 OR included_seats + addon_seats - $2 >= active_seats + pending_invites)
		RETURNING ` + allocationColumns

	a, err := s.scanAllocation(s.pool.QueryRow(ctx, update, tenantID, n))
	if err == nil {
		return a, nil
	}
	if !pg.IsNotFoundError(err) {
		return nil, errors.Join(ErrStoreUnavailable, err)
	}

	// Distinguish why the conditional update matched nothing.
	current, getErr := s.Get(ctx, tenantID)
	if getErr != nil {
		return nil, getErr
	}
	if current.AddonSeats < n {
		return nil, ErrInvalidSeatCount
	}
	return nil, ErrCapacityBelowCommitted
}
