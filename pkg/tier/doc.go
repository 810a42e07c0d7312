// Package tier defines the subscription tier catalog and the total order
// used for entitlement comparisons.
//
// A Catalog is immutable static configuration loaded once at process start
// and injected into every component that needs tier data. It maps each tier
// to its included seats, monthly usage pool, rate-limit ceilings, gated
// features, and billing capabilities (rollover, overage, addon seats).
//
// The hierarchy comparator is a pure function over tier ranks. Unknown tier
// values are treated as the most restrictive rank so that a missing or
// corrupt tier fails closed instead of failing open.
//
// Example:
//
//	catalog, err := tier.NewCatalog(ctx, tier.NewInMemSource(tier.DefaultConfigs()))
//	if err != nil {
//		// handle error
//	}
//
//	if tier.Satisfies(tier.Pro, tier.Core) {
//		// pro unlocks everything core does
//	}
package tier
