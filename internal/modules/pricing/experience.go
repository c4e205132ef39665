// README: Experience input accepted by the engine: raw years or a resolved tier key.
package pricing

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ExperienceInput is either a years-of-experience value or an already
// resolved tier key. The zero value is zero years.
type ExperienceInput struct {
	years float64
	tier  TierKey
}

func YearsOfExperience(years float64) ExperienceInput {
	return ExperienceInput{years: years}
}

func ResolvedTier(key TierKey) ExperienceInput {
	return ExperienceInput{tier: key}
}

// TierKey reports the tier key when the input was built with ResolvedTier.
func (e ExperienceInput) TierKey() (TierKey, bool) {
	return e.tier, e.tier != ""
}

// Years is the years value; a tier-key input reports zero years.
func (e ExperienceInput) Years() float64 {
	if e.tier != "" {
		return 0
	}
	return e.years
}

func (e ExperienceInput) String() string {
	if e.tier != "" {
		return string(e.tier)
	}
	return strconv.FormatFloat(e.years, 'f', -1, 64)
}

// UnmarshalJSON accepts a number (years), a numeric string (years) or any
// other string (tier key). null, booleans and objects decode to zero years.
// Unknown tier keys are left for ResolveExperienceTier to demote to zero
// years.
func (e *ExperienceInput) UnmarshalJSON(b []byte) error {
	*e = ExperienceInput{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			e.years = v
			return nil
		}
		e.tier = TierKey(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var v float64
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		e.years = v
	}
	return nil
}

func (e ExperienceInput) MarshalJSON() ([]byte, error) {
	if e.tier != "" {
		return json.Marshal(string(e.tier))
	}
	return json.Marshal(e.years)
}
