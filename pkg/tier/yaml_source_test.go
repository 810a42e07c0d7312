package tier_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskforge/entitlement/pkg/tier"
)

const testCatalogYAML = `
tiers:
  - tier: free
    name: Free
    included_seats: 3
    included_actions: 25
    rate_ceilings:
      ai_generate: 5
      api_read: 60
  - tier: pro
    name: Pro
    included_seats: 10
    included_actions: 1000
    per_seat_price:
      amount: 1900
      currency: USD
    rate_ceilings:
      ai_generate: 60
    features:
      - ai_generation
      - smart_context
    trial_days: 14
    rollover_eligible: true
    rollover_percent: 25
    addon_seats_allowed: true
    auto_grow_seats: true
`

func TestYAMLSource(t *testing.T) {
	t.Parallel()

	t.Run("parses catalog document", func(t *testing.T) {
		t.Parallel()

		src := tier.NewYAMLSource(strings.NewReader(testCatalogYAML))
		catalog, err := tier.NewCatalog(context.Background(), src)
		require.NoError(t, err)

		cfg, ok := catalog.Lookup(tier.Pro)
		require.True(t, ok)
		assert.Equal(t, int64(1000), cfg.IncludedActions)
		assert.Equal(t, int64(1900), cfg.PerSeatPrice.Amount)
		assert.Equal(t, 25, cfg.RolloverPercent)
		assert.True(t, cfg.HasFeature(tier.FeatureSmartContext))
		assert.Equal(t, int64(60), cfg.RateCeiling(tier.ActionAIGenerate))
	})

	t.Run("rejects duplicate tiers", func(t *testing.T) {
		t.Parallel()

		doc := `
tiers:
  - tier: free
    included_seats: 3
    included_actions: 25
  - tier: free
    included_seats: 5
    included_actions: 50
`
		src := tier.NewYAMLSource(strings.NewReader(doc))
		_, err := src.Load(context.Background())
		assert.ErrorIs(t, err, tier.ErrInvalidCatalogEntry)
	})

	t.Run("rejects malformed yaml", func(t *testing.T) {
		t.Parallel()

		src := tier.NewYAMLSource(strings.NewReader("tiers: [whoops"))
		_, err := src.Load(context.Background())
		assert.ErrorIs(t, err, tier.ErrFailedToLoadCatalog)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		src := tier.NewYAMLFileSource("/nonexistent/catalog.yaml")
		_, err := src.Load(context.Background())
		assert.ErrorIs(t, err, tier.ErrFailedToLoadCatalog)
	})
}
