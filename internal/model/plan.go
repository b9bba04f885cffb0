package model

import (
	"fmt"
	"strings"
)

// Plan is the subscription tier of an account. The auth core never mutates
// usage counters; the tier only travels on the identity so downstream
// collaborators can enforce quotas.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// planTokenLimits maps each tier to its monthly summarization token quota.
var planTokenLimits = map[Plan]uint64{
	PlanFree:    10_000,
	PlanPremium: 100_000,
}

// ParsePlan validates a plan string, defaulting empty input to the free tier.
func ParsePlan(s string) (Plan, error) {
	switch Plan(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return PlanFree, nil
	case PlanFree:
		return PlanFree, nil
	case PlanPremium:
		return PlanPremium, nil
	default:
		return "", fmt.Errorf("unknown plan %q", s)
	}
}

// TokenLimit returns the monthly token quota for the plan.
func (p Plan) TokenLimit() uint64 { return planTokenLimits[p] }
