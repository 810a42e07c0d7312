package tenant_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/taskforge/entitlement/pkg/tenant"
	"github.com/taskforge/entitlement/pkg/tier"
)

func TestEffectiveTierAt(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	future := now.Add(72 * time.Hour)
	past := now.Add(-72 * time.Hour)

	tests := []struct {
		name        string
		status      tenant.Status
		tier        tier.Tier
		trialEndsAt *time.Time
		want        tier.Tier
	}{
		{"active keeps stored tier", tenant.StatusActive, tier.Pro, nil, tier.Pro},
		{"trialing within window keeps tier", tenant.StatusTrialing, tier.Core, &future, tier.Core},
		{"trialing past window collapses", tenant.StatusTrialing, tier.Core, &past, tier.Free},
		{"trialing without end date keeps tier", tenant.StatusTrialing, tier.Team, nil, tier.Team},
		{"past due collapses", tenant.StatusPastDue, tier.Team, nil, tier.Free},
		{"canceled collapses", tenant.StatusCanceled, tier.Enterprise, nil, tier.Free},
		{"inactive collapses", tenant.StatusInactive, tier.Pro, nil, tier.Free},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tn := &tenant.Tenant{
				Tier:        tt.tier,
				Status:      tt.status,
				TrialEndsAt: tt.trialEndsAt,
			}
			assert.Equal(t, tt.want, tn.EffectiveTierAt(now))
		})
	}
}

func TestIsTrialExpiredAt(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&tenant.Tenant{}).IsTrialExpiredAt(now))
	assert.True(t, (&tenant.Tenant{TrialEndsAt: &past}).IsTrialExpiredAt(now))
	assert.False(t, (&tenant.Tenant{TrialEndsAt: &future}).IsTrialExpiredAt(now))
}

func TestStatusIsValid(t *testing.T) {
	t.Parallel()

	valid := []tenant.Status{
		tenant.StatusActive, tenant.StatusTrialing, tenant.StatusPastDue,
		tenant.StatusCanceled, tenant.StatusInactive,
	}
	for _, s := range valid {
		assert.True(t, s.IsValid(), "status %s", s)
	}

	assert.False(t, tenant.Status("suspended").IsValid())
	assert.False(t, tenant.Status("").IsValid())
}
