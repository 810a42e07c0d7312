package entitlement

import "github.com/taskforge/entitlement/pkg/tier"

// FeatureCost binds a feature to its rate-limit class and the number of
// pool units one invocation consumes. Units of zero means the feature is
// rate limited but free of consumable cost.
type FeatureCost struct {
	Class tier.ActionClass
	Units int64
}

// defaultFeatureCosts covers the features with metered or rate-limited
// access. Features absent here gate on tier membership alone.
func defaultFeatureCosts() map[tier.Feature]FeatureCost {
	return map[tier.Feature]FeatureCost{
		tier.FeatureAIGeneration: {Class: tier.ActionAIGenerate, Units: 1},
		tier.FeatureSmartContext: {Class: tier.ActionAIGenerate, Units: 1},
		tier.FeatureAPIAccess:    {Class: tier.ActionAPIRead},
		tier.FeatureInvoicing:    {Class: tier.ActionExport},
	}
}
