// Package tenant models the organization that owns a subscription and
// provides persistence for its tier, status, and trial state.
//
// A tenant has exactly one current tier and subscription status at any
// instant; transitions replace the whole record, never parts of it. The
// effective tier used for entitlement gating collapses to the lowest tier
// when the subscription lapses or the trial expires, regardless of what the
// stored tier says.
//
// Stores are tenant-scoped: every read and write is keyed by tenant ID, and
// a zero tenant ID is rejected at the boundary.
package tenant
