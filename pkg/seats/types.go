package seats

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/tier"
)

// Allocation is one tenant's seat state. ActiveSeats and PendingInvites are
// derived counts; IncludedSeats and AddonSeats are the capacity side.
type Allocation struct {
	TenantID       uuid.UUID
	IncludedSeats  int64 // from the tier catalog, -1 unlimited
	AddonSeats     int64 // purchased extras, paid tiers only
	ActiveSeats    int64
	PendingInvites int64
	LastSyncedAt   time.Time
}

// Capacity returns the total seat capacity, or Unlimited.
func (a *Allocation) Capacity() int64 {
	if a.IncludedSeats == tier.Unlimited {
		return tier.Unlimited
	}
	return a.IncludedSeats + a.AddonSeats
}

// Committed returns the seats already spoken for.
func (a *Allocation) Committed() int64 {
	return a.ActiveSeats + a.PendingInvites
}

// HasRoom reports whether one more seat fits without growing capacity.
func (a *Allocation) HasRoom() bool {
	if a.IncludedSeats == tier.Unlimited {
		return true
	}
	return a.Committed() < a.Capacity()
}

// SlotState is the lifecycle state of a single seat slot.
type SlotState string

const (
	SlotUnreserved SlotState = "unreserved"
	SlotPending    SlotState = "pending" // invite sent
	SlotActive     SlotState = "active"  // invite accepted
	SlotRevoked    SlotState = "revoked"
	SlotExpired    SlotState = "expired"
)

// slotTransitions encodes the seat slot state machine:
// unreserved -> pending -> active | revoked/expired -> unreserved.
var slotTransitions = map[SlotState][]SlotState{
	SlotUnreserved: {SlotPending},
	SlotPending:    {SlotActive, SlotRevoked, SlotExpired},
	SlotActive:     {SlotUnreserved},
	SlotRevoked:    {SlotUnreserved},
	SlotExpired:    {SlotUnreserved},
}

// CanTransition reports whether moving a slot from one state to another is
// a valid lifecycle step.
func CanTransition(from, to SlotState) bool {
	for _, next := range slotTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ReserveOutcome reports the result of a seat reservation.
type ReserveOutcome struct {
	Reserved    bool
	GrewAddon   bool // an addon seat was auto-purchased to make room
	BillingOwed bool // auto-grown seats accrue additional per-seat billing
	Allocation  Allocation
}
