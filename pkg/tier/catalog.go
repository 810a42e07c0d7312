package tier

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Unlimited indicates no limit for a pool or ceiling (-1 chosen for SQL compatibility).
const Unlimited int64 = -1

// Feature represents a tier-gated capability.
type Feature string

const (
	FeatureAIGeneration  Feature = "ai_generation"
	FeatureSmartContext  Feature = "smart_context"
	FeatureClientPortal  Feature = "client_portal"
	FeatureInvoicing     Feature = "invoicing"
	FeatureTimeTracking  Feature = "time_tracking"
	FeatureCustomFields  Feature = "custom_fields"
	FeatureAPIAccess     Feature = "api_access"
	FeatureAuditLog      Feature = "audit_log"
	FeatureSSO           Feature = "sso"
	FeatureWhiteLabel    Feature = "white_label"
)

// ActionClass groups operations that share a rate-limit budget.
type ActionClass string

const (
	ActionAIGenerate ActionClass = "ai_generate"
	ActionAPIRead    ActionClass = "api_read"
	ActionAPIWrite   ActionClass = "api_write"
	ActionExport     ActionClass = "export"
	ActionInvite     ActionClass = "invite"
)

// Money represents a monetary amount in the smallest currency unit.
// For example, $10.99 USD would be Amount: 1099, Currency: "USD".
type Money struct {
	Amount   int64  `yaml:"amount"`
	Currency string `yaml:"currency"`
}

// Config describes one tier's entitlements. Pure data, no runtime state.
type Config struct {
	Tier            Tier                  `yaml:"tier"`
	Name            string                `yaml:"name"`
	IncludedSeats   int64                 `yaml:"included_seats"`   // -1 represents unlimited
	IncludedActions int64                 `yaml:"included_actions"` // monthly AI action pool, -1 unlimited
	PerSeatPrice    Money                 `yaml:"per_seat_price"`
	RateCeilings    map[ActionClass]int64 `yaml:"rate_ceilings"` // per window; 0 means no access, -1 unlimited
	Features        []Feature             `yaml:"features"`
	TrialDays       int                   `yaml:"trial_days"`

	// Billing capabilities. Modeled as explicit flags because policies vary
	// per tier, not universally.
	RolloverEligible  bool `yaml:"rollover_eligible"`
	RolloverPercent   int  `yaml:"rollover_percent"` // cap on carried-over unused pool, 0-100
	OverageAllowed    bool `yaml:"overage_allowed"`  // record billed overage instead of rejecting
	AddonSeatsAllowed bool `yaml:"addon_seats_allowed"`
	AutoGrowSeats     bool `yaml:"auto_grow_seats"` // reserve past capacity by growing addons
}

// HasFeature reports whether the tier unlocks the given feature.
func (c Config) HasFeature(f Feature) bool {
	return slices.Contains(c.Features, f)
}

// RateCeiling returns the ceiling for an action class.
// Classes absent from the map get 0 (no access), keeping gating fail-closed.
func (c Config) RateCeiling(class ActionClass) int64 {
	ceiling, ok := c.RateCeilings[class]
	if !ok {
		return 0
	}
	return ceiling
}

// Catalog is an immutable tier lookup table. Build it once at startup with
// NewCatalog and share it freely; it requires no locking.
type Catalog struct {
	configs map[Tier]Config
}

// Source defines how tier configurations are loaded into a Catalog.
type Source interface {
	Load(ctx context.Context) (map[Tier]Config, error)
}

// NewCatalog loads and validates tier configurations from the given source.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("tier: Source is required")
	}

	configs, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadCatalog, err)
	}

	if err := validateConfigs(configs); err != nil {
		return nil, err
	}

	return &Catalog{configs: configs}, nil
}

// Get returns the configuration for a tier.
// Unknown tiers resolve to the lowest tier's configuration so callers gate
// against the most restrictive entitlements rather than erroring.
func (c *Catalog) Get(t Tier) Config {
	if cfg, ok := c.configs[t]; ok {
		return cfg
	}
	return c.configs[Lowest]
}

// Lookup returns the configuration for a tier and whether it is defined.
func (c *Catalog) Lookup(t Tier) (Config, bool) {
	cfg, ok := c.configs[t]
	return cfg, ok
}

// Tiers returns all defined tiers ordered by rank.
func (c *Catalog) Tiers() []Tier {
	tiers := make([]Tier, 0, len(c.configs))
	for t := range c.configs {
		tiers = append(tiers, t)
	}
	slices.SortFunc(tiers, func(a, b Tier) int {
		return a.Rank() - b.Rank()
	})
	return tiers
}

// validateConfigs ensures catalog entries are internally consistent.
// Catches configuration errors early to prevent runtime surprises.
func validateConfigs(configs map[Tier]Config) error {
	if len(configs) == 0 {
		return errors.Join(ErrInvalidCatalogEntry, errors.New("catalog is empty"))
	}

	if _, ok := configs[Lowest]; !ok {
		return errors.Join(ErrInvalidCatalogEntry,
			fmt.Errorf("catalog must define the lowest tier %q", Lowest))
	}

	for t, cfg := range configs {
		if !t.IsValid() {
			return errors.Join(ErrInvalidCatalogEntry, fmt.Errorf("unknown tier %q", t))
		}
		if cfg.Tier != t {
			return errors.Join(ErrInvalidCatalogEntry,
				fmt.Errorf("tier mismatch: map key %s != config.Tier %s", t, cfg.Tier))
		}
		if cfg.IncludedSeats < Unlimited {
			return errors.Join(ErrInvalidCatalogEntry,
				fmt.Errorf("tier %s has invalid included seats: %d", t, cfg.IncludedSeats))
		}
		if cfg.IncludedActions < Unlimited {
			return errors.Join(ErrInvalidCatalogEntry,
				fmt.Errorf("tier %s has invalid included actions: %d", t, cfg.IncludedActions))
		}
		if cfg.RolloverPercent < 0 || cfg.RolloverPercent > 100 {
			return errors.Join(ErrInvalidCatalogEntry,
				fmt.Errorf("tier %s has rollover percent out of range: %d", t, cfg.RolloverPercent))
		}
		if cfg.RolloverEligible && cfg.RolloverPercent == 0 {
			return errors.Join(ErrInvalidCatalogEntry,
				fmt.Errorf("tier %s is rollover eligible but has zero rollover percent", t))
		}
		if cfg.TrialDays < 0 {
			return errors.Join(ErrInvalidCatalogEntry,
				fmt.Errorf("tier %s has negative trial days: %d", t, cfg.TrialDays))
		}
		if cfg.AutoGrowSeats && !cfg.AddonSeatsAllowed {
			return errors.Join(ErrInvalidCatalogEntry,
				fmt.Errorf("tier %s auto-grows seats but does not allow addon seats", t))
		}
		for class, ceiling := range cfg.RateCeilings {
			if ceiling < Unlimited {
				return errors.Join(ErrInvalidCatalogEntry,
					fmt.Errorf("tier %s has invalid rate ceiling for %s: %d", t, class, ceiling))
			}
		}
	}

	return nil
}
