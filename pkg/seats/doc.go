// Package seats tracks per-tenant seat capacity: seats included by the
// tier, purchased addon seats, active members, and outstanding invitations.
//
// The capacity invariant is active + pending <= included + addons after
// every successful reservation. Reservations are atomic conditional updates
// against the backing store, so concurrent invites cannot transiently
// overshoot capacity; violations are rejected before commit, never
// corrected after the fact.
//
// Active member and pending invite counts can be derived fresh from
// registered counter functions (membership lives outside this core), and
// the stored allocation is re-synced from them on every read.
package seats
