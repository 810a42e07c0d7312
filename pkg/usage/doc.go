// Package usage implements the per-tenant consumable metering engine:
// a monthly pool of AI actions with atomic debit, partial rollover between
// billing periods, and tier-controlled overage recording.
//
// Every debit is a single atomic conditional update against the backing
// store. Two concurrent debits can never both succeed against the same
// remaining balance; the final used value always equals the sum of the
// amounts that reported success.
//
// Periods are created lazily on first usage in a calendar month. When a new
// period opens, the unused remainder of the prior period rolls in, capped at
// the tier's rollover percentage, computed exactly once per transition.
package usage
