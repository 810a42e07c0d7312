package seats

import (
	"context"

	"github.com/google/uuid"
)

// SlotKind names which committed count a release or activation touches.
type SlotKind string

const (
	SlotKindPending SlotKind = "pending"
	SlotKindActive  SlotKind = "active"
)

// Store defines seat allocation persistence. Every mutation is a single
// atomic conditional update scoped to one tenant's row; the capacity check
// and the count change commit together or not at all.
type Store interface {
	// Get returns the allocation, or ErrAllocationNotFound.
	Get(ctx context.Context, tenantID uuid.UUID) (*Allocation, error)

	// Ensure creates the allocation row with the given included seats if it
	// does not exist, and returns the stored allocation either way.
	Ensure(ctx context.Context, tenantID uuid.UUID, includedSeats int64) (*Allocation, error)

	// SetIncludedSeats replaces the tier-provided capacity, used by billing
	// reconciliation on plan changes.
	SetIncludedSeats(ctx context.Context, tenantID uuid.UUID, includedSeats int64) error

	// SyncCounts overwrites the derived counts from freshly computed values.
	SyncCounts(ctx context.Context, tenantID uuid.UUID, active, pending int64) error

	// Reserve adds one pending invite iff committed < capacity. With
	// autoGrow set, a full allocation instead grows addon seats by one and
	// reserves in the same atomic step. Returns the outcome with the
	// post-reservation allocation; a full allocation without autoGrow
	// returns Reserved=false and leaves the row untouched.
	Reserve(ctx context.Context, tenantID uuid.UUID, autoGrow bool) (*ReserveOutcome, error)

	// Activate moves one committed seat from pending to active.
	Activate(ctx context.Context, tenantID uuid.UUID) (*Allocation, error)

	// Release returns one committed seat of the given kind to the pool.
	// Fails with ErrNothingToRelease when the count is already zero.
	Release(ctx context.Context, tenantID uuid.UUID, kind SlotKind) (*Allocation, error)

	// AddAddonSeats increases purchased capacity by n.
	AddAddonSeats(ctx context.Context, tenantID uuid.UUID, n int64) (*Allocation, error)

	// RemoveAddonSeats decreases purchased capacity by n iff the remaining
	// capacity still covers committed seats; otherwise
	// ErrCapacityBelowCommitted and no change.
	RemoveAddonSeats(ctx context.Context, tenantID uuid.UUID, n int64) (*Allocation, error)
}
