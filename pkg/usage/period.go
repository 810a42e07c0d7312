package usage

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/tier"
)

// Period is one tenant's usage record for a single billing period.
// At most one period is open per tenant at a time; used only increases
// through Store.Debit, never by direct update.
type Period struct {
	TenantID         uuid.UUID
	PeriodStart      time.Time // calendar-month boundary, UTC
	PeriodEnd        time.Time
	Pool             int64 // total allowance including rollover-in, -1 unlimited
	Used             int64 // monotonically non-decreasing within a period
	Overage          int64 // usage recorded past the pool, only for overage-allowed tiers
	RolloverIn       int64 // portion of Pool carried from the prior period
	RolloverEligible bool  // carried from the tier catalog at creation
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Remaining returns the unused allowance, never negative.
// Unlimited pools report Unlimited.
func (p *Period) Remaining() int64 {
	if p.Pool == tier.Unlimited {
		return tier.Unlimited
	}
	return max(p.Pool-p.Used, 0)
}

// Covers reports whether now falls inside the period's window.
func (p *Period) Covers(now time.Time) bool {
	return !now.Before(p.PeriodStart) && now.Before(p.PeriodEnd)
}

// DebitResult reports the outcome of an atomic debit.
type DebitResult struct {
	Used      int64
	Remaining int64
	Overage   int64 // total overage recorded on the period so far
}

// Summary is the read-only usage view consumed by dashboards and quota
// warnings. PercentUsed is -1 for unlimited pools, capped at 100 otherwise.
type Summary struct {
	Used        int64
	Limit       int64
	Remaining   int64
	Overage     int64
	PercentUsed int
	PeriodEnd   time.Time
}

// periodStartFor returns the calendar-month boundary containing now.
func periodStartFor(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// rolloverIn computes the allowance carried from a closed period into the
// next one: the unused remainder capped at the tier's rollover percentage of
// the closed period's pool. Ineligible tiers and unlimited pools carry zero.
func rolloverIn(prior *Period, cfg tier.Config) int64 {
	if prior == nil || !prior.RolloverEligible || !cfg.RolloverEligible {
		return 0
	}
	if prior.Pool == tier.Unlimited {
		return 0
	}
	cap := prior.Pool * int64(cfg.RolloverPercent) / 100
	return min(prior.Remaining(), cap)
}
