package tier

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// inMemSource implements the Source interface using an in-memory config map.
type inMemSource struct {
	mu      sync.RWMutex
	configs map[Tier]Config
}

// NewInMemSource returns an in-memory Source with a deep copy of the given configs.
func NewInMemSource(configs map[Tier]Config) Source {
	return &inMemSource{configs: cloneConfigs(configs)}
}

// Load returns a copy of all tier configurations from memory.
func (s *inMemSource) Load(ctx context.Context) (map[Tier]Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneConfigs(s.configs), nil
}

func cloneConfigs(configs map[Tier]Config) map[Tier]Config {
	out := make(map[Tier]Config, len(configs))
	for t, cfg := range configs {
		cfg.RateCeilings = maps.Clone(cfg.RateCeilings)
		cfg.Features = slices.Clone(cfg.Features)
		out[t] = cfg
	}
	return out
}

// DefaultConfigs returns the built-in tier catalog for the project-management
// product. Serves as the baseline; deployments can override via a YAML source.
func DefaultConfigs() map[Tier]Config {
	return map[Tier]Config{
		Free: {
			Tier:            Free,
			Name:            "Free",
			IncludedSeats:   3,
			IncludedActions: 25,
			RateCeilings: map[ActionClass]int64{
				ActionAIGenerate: 5,
				ActionAPIRead:    60,
				ActionAPIWrite:   30,
				ActionInvite:     5,
			},
			Features: []Feature{FeatureTimeTracking},
		},
		Core: {
			Tier:            Core,
			Name:            "Core",
			IncludedSeats:   5,
			IncludedActions: 250,
			PerSeatPrice:    Money{Amount: 900, Currency: "USD"},
			RateCeilings: map[ActionClass]int64{
				ActionAIGenerate: 20,
				ActionAPIRead:    300,
				ActionAPIWrite:   120,
				ActionExport:     10,
				ActionInvite:     20,
			},
			Features: []Feature{
				FeatureAIGeneration, FeatureTimeTracking, FeatureInvoicing,
			},
			TrialDays:         14,
			AddonSeatsAllowed: true,
		},
		Pro: {
			Tier:            Pro,
			Name:            "Pro",
			IncludedSeats:   10,
			IncludedActions: 1_000,
			PerSeatPrice:    Money{Amount: 1900, Currency: "USD"},
			RateCeilings: map[ActionClass]int64{
				ActionAIGenerate: 60,
				ActionAPIRead:    1_000,
				ActionAPIWrite:   500,
				ActionExport:     30,
				ActionInvite:     50,
			},
			Features: []Feature{
				FeatureAIGeneration, FeatureSmartContext, FeatureTimeTracking,
				FeatureInvoicing, FeatureClientPortal, FeatureCustomFields,
				FeatureAPIAccess,
			},
			TrialDays:         14,
			RolloverEligible:  true,
			RolloverPercent:   25,
			AddonSeatsAllowed: true,
			AutoGrowSeats:     true,
		},
		Team: {
			Tier:            Team,
			Name:            "Team",
			IncludedSeats:   25,
			IncludedActions: 5_000,
			PerSeatPrice:    Money{Amount: 2900, Currency: "USD"},
			RateCeilings: map[ActionClass]int64{
				ActionAIGenerate: 150,
				ActionAPIRead:    5_000,
				ActionAPIWrite:   2_000,
				ActionExport:     100,
				ActionInvite:     100,
			},
			Features: []Feature{
				FeatureAIGeneration, FeatureSmartContext, FeatureTimeTracking,
				FeatureInvoicing, FeatureClientPortal, FeatureCustomFields,
				FeatureAPIAccess, FeatureAuditLog,
			},
			TrialDays:         14,
			RolloverEligible:  true,
			RolloverPercent:   50,
			OverageAllowed:    true,
			AddonSeatsAllowed: true,
			AutoGrowSeats:     true,
		},
		Enterprise: {
			Tier:            Enterprise,
			Name:            "Enterprise",
			IncludedSeats:   Unlimited,
			IncludedActions: Unlimited,
			RateCeilings: map[ActionClass]int64{
				ActionAIGenerate: Unlimited,
				ActionAPIRead:    Unlimited,
				ActionAPIWrite:   Unlimited,
				ActionExport:     Unlimited,
				ActionInvite:     Unlimited,
			},
			Features: []Feature{
				FeatureAIGeneration, FeatureSmartContext, FeatureTimeTracking,
				FeatureInvoicing, FeatureClientPortal, FeatureCustomFields,
				FeatureAPIAccess, FeatureAuditLog, FeatureSSO, FeatureWhiteLabel,
			},
			OverageAllowed:    true,
			AddonSeatsAllowed: true,
			AutoGrowSeats:     true,
		},
	}
}
