package tier_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taskforge/entitlement/pkg/tier"
)

func TestRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		tier tier.Tier
		want int
	}{
		{tier.Free, 0},
		{tier.Starter, 0},
		{tier.Core, 1},
		{tier.Pro, 2},
		{tier.Team, 3},
		{tier.Enterprise, 4},
		{tier.Tier("unknown"), 0},
		{tier.Tier(""), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.tier.Rank())
		})
	}
}

func TestSatisfies(t *testing.T) {
	t.Parallel()

	ordered := []tier.Tier{tier.Free, tier.Core, tier.Pro, tier.Team, tier.Enterprise}

	t.Run("matches rank comparison for all pairs", func(t *testing.T) {
		t.Parallel()

		for _, a := range ordered {
			for _, b := range ordered {
				assert.Equal(t, a.Rank() >= b.Rank(), tier.Satisfies(a, b),
					"Satisfies(%s, %s)", a, b)
			}
		}
	})

	t.Run("reflexive", func(t *testing.T) {
		t.Parallel()

		for _, a := range ordered {
			assert.True(t, tier.Satisfies(a, a))
		}
	})

	t.Run("transitive", func(t *testing.T) {
		t.Parallel()

		for _, a := range ordered {
			for _, b := range ordered {
				for _, c := range ordered {
					if tier.Satisfies(a, b) && tier.Satisfies(b, c) {
						assert.True(t, tier.Satisfies(a, c),
							"Satisfies(%s,%s) && Satisfies(%s,%s) but not Satisfies(%s,%s)",
							a, b, b, c, a, c)
					}
				}
			}
		}
	})

	t.Run("unknown tier is most restrictive", func(t *testing.T) {
		t.Parallel()

		unknown := tier.Tier("platinum")
		assert.False(t, tier.Satisfies(unknown, tier.Core))
		assert.True(t, tier.Satisfies(unknown, tier.Free))
		assert.True(t, tier.Satisfies(tier.Core, unknown))
	})

	t.Run("starter aliases free", func(t *testing.T) {
		t.Parallel()

		assert.True(t, tier.Satisfies(tier.Starter, tier.Free))
		assert.True(t, tier.Satisfies(tier.Free, tier.Starter))
		assert.False(t, tier.Satisfies(tier.Starter, tier.Core))
	})
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	assert.True(t, tier.Pro.IsValid())
	assert.True(t, tier.Starter.IsValid())
	assert.False(t, tier.Tier("gold").IsValid())
	assert.False(t, tier.Tier("").IsValid())
}
