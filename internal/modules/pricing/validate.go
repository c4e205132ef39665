// README: Server-side re-validation of a submitted breakdown.
package pricing

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	ErrVersionMismatch  = errors.New("pricing version mismatch")
	ErrEstimateMismatch = errors.New("estimate does not match recomputation")
	ErrBadBreakdown     = errors.New("malformed breakdown")
)

// RequestFromInputs rebuilds the Request a breakdown was priced from. The
// stored distance is the one-decimal value, so callers that want exact
// re-validation price with distances already rounded to one decimal (as
// location estimates are).
func RequestFromInputs(in Inputs) (Request, error) {
	pb := PriceBreakdown{Inputs: in}
	at, err := pb.ScheduledAt()
	if err != nil {
		return Request{}, fmt.Errorf("%w: %w", ErrBadBreakdown, err)
	}
	return Request{
		ServiceType:     in.ServiceType,
		DistanceKm:      in.DistanceKm,
		DurationHours:   in.DurationHours,
		NurseExperience: ResolvedTier(in.NurseExperienceLevel),
		IsEmergency:     in.IsEmergency,
		ScheduledTime:   &at,
	}, nil
}

// Validate recomputes submitted from its own inputs and requires every
// rounded line and the client estimate to match exactly. The recomputed
// breakdown is returned in both the success and mismatch cases.
func (e *Engine) Validate(submitted PriceBreakdown) (PriceBreakdown, error) {
	if submitted.PricingVersion != e.table.Version {
		return PriceBreakdown{}, fmt.Errorf("%w: submitted %q, active %q",
			ErrVersionMismatch, submitted.PricingVersion, e.table.Version)
	}
	req, err := RequestFromInputs(submitted.Inputs)
	if err != nil {
		return PriceBreakdown{}, err
	}
	want := e.Calculate(req)
	// Timestamps are compared as instants: the submitted string may carry a
	// different but equivalent encoding.
	submitted.Inputs.ScheduledTime = want.Inputs.ScheduledTime

	if field := firstDifference(want, submitted); field != "" {
		return want, fmt.Errorf("%w: %s", ErrEstimateMismatch, field)
	}
	return want, nil
}

func firstDifference(want, got PriceBreakdown) string {
	if want.ClientEstimate != got.ClientEstimate {
		return fmt.Sprintf("clientEstimate: want %v, got %v", want.ClientEstimate, got.ClientEstimate)
	}
	if f := diffStruct("inputs", reflect.ValueOf(want.Inputs), reflect.ValueOf(got.Inputs)); f != "" {
		return f
	}
	return diffStruct("breakdown", reflect.ValueOf(want.Breakdown), reflect.ValueOf(got.Breakdown))
}

func diffStruct(prefix string, want, got reflect.Value) string {
	t := want.Type()
	for i := 0; i < t.NumField(); i++ {
		w, g := want.Field(i).Interface(), got.Field(i).Interface()
		if wp, ok := w.(*string); ok {
			gp := g.(*string)
			if (wp == nil) != (gp == nil) || (wp != nil && *wp != *gp) {
				return fmt.Sprintf("%s.%s: want %v, got %v", prefix, t.Field(i).Name, deref(wp), deref(gp))
			}
			continue
		}
		if w != g {
			return fmt.Sprintf("%s.%s: want %v, got %v", prefix, t.Field(i).Name, w, g)
		}
	}
	return ""
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
