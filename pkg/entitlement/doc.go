// Package entitlement is the single synchronous decision point protected
// operations call before proceeding. It composes the tenant store, tier
// catalog, usage meter, rate limiter, and seat manager into one Decision
// value with a machine-readable reason.
//
// The contract is fail-closed: any infrastructure fault, timeout, or
// malformed tenant state yields Allowed=false with SERVICE_UNAVAILABLE.
// There is no code path that defaults to allow on error, and no error ever
// crosses the public boundary where upstream code could misread it as a
// grant. Consumable features debit the usage pool atomically within the
// same check, leaving no check-then-act gap for concurrent requests.
package entitlement
