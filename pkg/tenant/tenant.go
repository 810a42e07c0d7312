package tenant

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskforge/entitlement/pkg/tier"
)

// Status represents the current state of a tenant's subscription.
type Status string

const (
	StatusActive   Status = "active"
	StatusTrialing Status = "trialing"
	StatusPastDue  Status = "past_due"
	StatusCanceled Status = "canceled"
	StatusInactive Status = "inactive"
)

// IsValid reports whether s is a known subscription status.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusTrialing, StatusPastDue, StatusCanceled, StatusInactive:
		return true
	}
	return false
}

// Tenant represents an organization with exactly one current tier and
// subscription status. Mutated by sign-up, plan changes, and billing
// reconciliation; every mutation is a total replacement via Store.Save.
type Tenant struct {
	ID              uuid.UUID
	Name            string
	Tier            tier.Tier
	Status          Status
	TrialEndsAt     *time.Time // set only while trialing
	ProviderSubID   string     // billing provider's subscription ID, empty for free tenants
	ProviderCustID  string     // billing provider's customer ID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsTrialExpiredAt reports whether the trial window has lapsed at now.
func (t *Tenant) IsTrialExpiredAt(now time.Time) bool {
	if t.TrialEndsAt == nil {
		return false
	}
	return now.After(*t.TrialEndsAt)
}

// EffectiveTierAt returns the tier used for entitlement gating at now.
// Lapsed status or an expired trial collapses to the lowest tier even though
// the stored tier is untouched, so a reactivated subscription recovers its
// entitlements without a catalog write.
func (t *Tenant) EffectiveTierAt(now time.Time) tier.Tier {
	switch t.Status {
	case StatusActive:
		return t.Tier
	case StatusTrialing:
		if t.IsTrialExpiredAt(now) {
			return tier.Lowest
		}
		return t.Tier
	default:
		return tier.Lowest
	}
}

// EffectiveTier returns the gating tier at the current time.
func (t *Tenant) EffectiveTier() tier.Tier {
	return t.EffectiveTierAt(time.Now().UTC())
}
