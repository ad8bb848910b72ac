// Package entitlement decides whether a subscription plan may use a given
// feature, and what usage limits apply to it. It is a pure lookup over a
// static table: plan changes are owned by the billing service, which stores
// the new tier on the user and simply calls back in with it.
package entitlement

// Plan is a subscription tier. Tiers form a total order:
// free < pro < enterprise.
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// planRank maps each tier to its position in the total order.
var planRank = map[Plan]int{
	PlanFree:       0,
	PlanPro:        1,
	PlanEnterprise: 2,
}

// Valid reports whether p is a known plan tier.
func (p Plan) Valid() bool {
	_, ok := planRank[p]
	return ok
}

// AtLeast reports whether p sits at or above required in the tier order.
// Unknown tiers rank below free.
func (p Plan) AtLeast(required Plan) bool {
	return planRank[p] >= planRank[required]
}

// Feature is a canonical feature identifier. Call sites must use these
// constants; raw strings only cross the API boundary.
type Feature string

const (
	FeatureBacktest       Feature = "backtest"
	FeaturePeerComparison Feature = "peer-comparison"
	FeatureAIScanner      Feature = "ai-scanner"
	FeatureAlerts         Feature = "alerts"
	FeatureRealtimeQuotes Feature = "realtime-quotes"
)

// featureLocks maps each gated feature to the minimum tier required.
// A feature locked at pro is available to pro and enterprise.
var featureLocks = map[Feature]Plan{
	FeatureBacktest:       PlanPro,
	FeaturePeerComparison: PlanPro,
	FeatureAIScanner:      PlanEnterprise,
	FeatureAlerts:         PlanFree,
	FeatureRealtimeQuotes: PlanPro,
}

// Decision is the outcome of an entitlement evaluation.
type Decision struct {
	Allowed      bool `json:"allowed"`
	RequiredPlan Plan `json:"required_plan,omitempty"`
}

// Evaluate returns whether the given plan may use the given feature.
//
// Unknown feature identifiers are allowed (fail-open). This is a deliberate
// product decision so that shipping a new feature key in a client never
// hard-locks users before the table is updated; gated server actions only
// ever pass the constants above, so the open path cannot bypass a real lock.
func Evaluate(plan Plan, feature Feature) Decision {
	required, ok := featureLocks[feature]
	if !ok {
		return Decision{Allowed: true}
	}
	if plan.AtLeast(required) {
		return Decision{Allowed: true}
	}
	return Decision{Allowed: false, RequiredPlan: required}
}

// Features returns all known feature identifiers in a stable order.
func Features() []Feature {
	return []Feature{
		FeatureBacktest,
		FeaturePeerComparison,
		FeatureAIScanner,
		FeatureAlerts,
		FeatureRealtimeQuotes,
	}
}

// Limit identifies a per-plan usage cap.
type Limit string

const (
	LimitAlerts         Limit = "alerts"
	LimitWatchlistItems Limit = "watchlist_items"
	LimitQuotesPerDay   Limit = "quotes_per_day"
)

// Unlimited marks a limit with no cap.
const Unlimited = -1

var planLimits = map[Plan]map[Limit]int{
	PlanFree: {
		LimitAlerts:         3,
		LimitWatchlistItems: 10,
		LimitQuotesPerDay:   100,
	},
	PlanPro: {
		LimitAlerts:         25,
		LimitWatchlistItems: 100,
		LimitQuotesPerDay:   5000,
	},
	PlanEnterprise: {
		LimitAlerts:         Unlimited,
		LimitWatchlistItems: Unlimited,
		LimitQuotesPerDay:   Unlimited,
	},
}

// LimitFor returns the cap for the given plan and limit, or Unlimited.
// Unknown plans get the free tier's caps.
func LimitFor(plan Plan, limit Limit) int {
	limits, ok := planLimits[plan]
	if !ok {
		limits = planLimits[PlanFree]
	}
	value, ok := limits[limit]
	if !ok {
		return Unlimited
	}
	return value
}

// WithinLimit reports whether a current usage count leaves room for one
// more item under the plan's cap.
func WithinLimit(plan Plan, limit Limit, current int64) bool {
	cap := LimitFor(plan, limit)
	if cap == Unlimited {
		return true
	}
	return current < int64(cap)
}

// Limits returns all caps for a plan, keyed by limit name.
func Limits(plan Plan) map[Limit]int {
	limits, ok := planLimits[plan]
	if !ok {
		limits = planLimits[PlanFree]
	}
	out := make(map[Limit]int, len(limits))
	for k, v := range limits {
		out[k] = v
	}
	return out
}
