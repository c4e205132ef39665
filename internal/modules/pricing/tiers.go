// README: Experience tiers and their resolution from years of experience.
package pricing

import "math"

// TierKey names an experience tier ("junior", "mid", "senior").
type TierKey string

const (
	TierJunior TierKey = "junior"
	TierMid    TierKey = "mid"
	TierSenior TierKey = "senior"
)

// ExperienceTier is one bracket of the ordered tier set. MaxYears is the
// inclusive upper bound; nil marks the unbounded final tier.
type ExperienceTier struct {
	Key        TierKey  `json:"key" yaml:"key"`
	Label      string   `json:"label" yaml:"label"`
	Multiplier float64  `json:"multiplier" yaml:"multiplier"`
	MaxYears   *float64 `json:"maxYears" yaml:"maxYears"`
}

func (t ExperienceTier) bound(last bool) float64 {
	if last || t.MaxYears == nil {
		return math.Inf(1)
	}
	return *t.MaxYears
}

// ResolveExperienceTier maps an experience input onto a tier key. A known
// tier key passes through unchanged; years at or below zero (and anything
// unresolvable) land in the lowest tier.
func (rt *RateTable) ResolveExperienceTier(in ExperienceInput) TierKey {
	if key, ok := in.TierKey(); ok {
		if _, found := rt.tierIndex(key); found {
			return key
		}
	}
	return rt.tierForYears(in.Years())
}

func (rt *RateTable) tierForYears(years float64) TierKey {
	if len(rt.Tiers) == 0 {
		return ""
	}
	if !(years > 0) {
		return rt.Tiers[0].Key
	}
	last := len(rt.Tiers) - 1
	for i, t := range rt.Tiers {
		if years <= t.bound(i == last) {
			return t.Key
		}
	}
	return rt.Tiers[last].Key
}

// Tier returns the tier for key, or the lowest tier when key is unknown.
func (rt *RateTable) Tier(key TierKey) ExperienceTier {
	if i, ok := rt.tierIndex(key); ok {
		return rt.Tiers[i]
	}
	if len(rt.Tiers) == 0 {
		return ExperienceTier{Key: key, Multiplier: 1.0}
	}
	return rt.Tiers[0]
}

func (rt *RateTable) tierIndex(key TierKey) (int, bool) {
	for i, t := range rt.Tiers {
		if t.Key == key {
			return i, true
		}
	}
	return 0, false
}

func years(v float64) *float64 {
	return &v
}
