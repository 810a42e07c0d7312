package entitlement

import (
	"time"

	"github.com/taskforge/entitlement/pkg/tier"
)

// Reason is the machine-readable denial code callers map to transport-level
// status without this package knowing about transport at all.
type Reason string

const (
	ReasonOK                 Reason = "OK"
	ReasonTierInsufficient   Reason = "TIER_INSUFFICIENT"
	ReasonQuotaExceeded      Reason = "QUOTA_EXCEEDED"
	ReasonRateLimited        Reason = "RATE_LIMITED"
	ReasonSeatLimitReached   Reason = "SEAT_LIMIT_REACHED"
	ReasonServiceUnavailable Reason = "SERVICE_UNAVAILABLE"
)

// Decision is the sole output contract of an access check. It is a result
// value, never an error: callers cannot accidentally let a failure fall
// through to default-allow.
type Decision struct {
	Allowed      bool
	Reason       Reason
	CurrentTier  tier.Tier
	RequiredTier tier.Tier

	// RemainingUsage carries the consumable balance after a debit, or the
	// balance at denial time for QUOTA_EXCEEDED. Unlimited pools report -1.
	RemainingUsage int64

	// RetryAfter is set for RATE_LIMITED denials.
	RetryAfter time.Duration

	// UpgradeHint points the caller at how to resolve a TIER_INSUFFICIENT
	// or SEAT_LIMIT_REACHED denial, typically the tier to upgrade to.
	UpgradeHint string
}
