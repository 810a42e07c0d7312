// Package ratelimit implements a fixed-window rate limiter keyed by
// (subject, action class) with tier-scaled ceilings.
//
// The ceiling is supplied at check time, derived from the caller's tier
// catalog entry, so a tier change takes effect on the next request without
// touching stored windows. A ceiling of zero means no access at all;
// unlimited access is the explicit Unlimited sentinel, never a large number.
//
// Counting is a single atomic increment per check against the backing store
// (in-memory or Redis), so concurrent requests cannot sneak past the
// ceiling between a read and a write.
package ratelimit
