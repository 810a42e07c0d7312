package tier

// Tier is a named subscription level with a total order.
type Tier string

const (
	Free       Tier = "free"
	Starter    Tier = "starter" // legacy alias, same rank as free
	Core       Tier = "core"
	Pro        Tier = "pro"
	Team       Tier = "team"
	Enterprise Tier = "enterprise"
)

// Lowest is the most restrictive tier. Lapsed subscriptions collapse to it.
const Lowest = Free

// ranks defines the fixed total order over tiers.
// Unknown tiers are deliberately absent: Rank maps them to 0 so a corrupt
// or missing tier value is treated as the most restrictive, never an error.
var ranks = map[Tier]int{
	Free:       0,
	Starter:    0,
	Core:       1,
	Pro:        2,
	Team:       3,
	Enterprise: 4,
}

// Rank returns the position of t in the tier hierarchy.
// Undefined tiers rank 0 (most restrictive).
func (t Tier) Rank() int {
	return ranks[t]
}

// IsValid reports whether t is a known tier.
func (t Tier) IsValid() bool {
	_, ok := ranks[t]
	return ok
}

// Satisfies reports whether current unlocks a requirement of required or
// higher. It is reflexive, transitive, and total over known tiers.
func Satisfies(current, required Tier) bool {
	return current.Rank() >= required.Rank()
}
