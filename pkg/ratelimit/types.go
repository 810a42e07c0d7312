package ratelimit

import (
	"time"

	"github.com/taskforge/entitlement/pkg/tier"
)

// Unlimited is the ceiling sentinel meaning no rate limit applies.
// Kept distinct from a literal large number to avoid silent overflow.
const Unlimited = tier.Unlimited

// Result contains the outcome of a rate limit check.
type Result struct {
	Allowed   bool
	Limit     int64     // ceiling applied to this check, Unlimited when exempt
	Remaining int64     // requests left in the window, 0 when denied
	ResetAt   time.Time // end of the current window
}

// RetryAfter returns how long to wait before the next request.
// Returns 0 if the request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}
