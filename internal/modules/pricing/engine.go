// README: Pricing engine: resolves rates from raw booking parameters and assembles the breakdown.
package pricing

import (
	"time"

	"nursecare/internal/types"
)

// scheduledTimeLayout matches the millisecond UTC timestamps already stored
// in booking documents.
const scheduledTimeLayout = "2006-01-02T15:04:05.000Z"

// Engine is stateless apart from its immutable table and is safe for
// concurrent use.
type Engine struct {
	table *RateTable
	loc   *time.Location
	now   func() time.Time
}

type EngineOption func(*Engine)

// WithLocation sets the zone whose wall clock the surge windows are read in.
func WithLocation(loc *time.Location) EngineOption {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// WithClock replaces time.Now for requests without a scheduled time.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func NewEngine(table *RateTable, opts ...EngineOption) *Engine {
	if table == nil {
		table = DefaultRateTable()
	}
	e := &Engine{table: table, loc: DefaultLocation(), now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Default prices with the compiled-in table in the default zone.
var Default = NewEngine(DefaultRateTable())

func (e *Engine) Table() *RateTable {
	return e.table
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// Calculate prices a booking. It never fails: unknown services, unknown
// experience and missing times all fall back to documented defaults.
func (e *Engine) Calculate(req Request) PriceBreakdown {
	rt := e.table

	baseFare := rt.BaseFare(req.ServiceType)

	billableDistanceKm := rt.BillableDistance(req.DistanceKm)
	distanceFare := billableDistanceKm * rt.Distance.RatePerKm

	billableDurationHours := rt.BillableDuration(req.DurationHours)
	durationFare := billableDurationHours * rt.Duration.RatePerHour

	tierKey := rt.ResolveExperienceTier(req.NurseExperience)
	tier := rt.Tier(tierKey)

	at := e.now()
	if req.ScheduledTime != nil {
		at = *req.ScheduledTime
	}
	surge := rt.ResolveSurge(at.In(e.loc))

	var emergencySurcharge float64
	if req.IsEmergency || rt.IsEmergencyService(req.ServiceType) {
		emergencySurcharge = rt.EmergencySurcharge
	}

	totals := Compose(FareInputs{
		BaseFare:             baseFare,
		DistanceFare:         distanceFare,
		DurationFare:         durationFare,
		ExperienceMultiplier: tier.Multiplier,
		SurgeMultiplier:      surge.Multiplier,
		EmergencySurcharge:   emergencySurcharge,
	}, rt.TaxRate, rt.PlatformFee)

	var surgeLabel *string
	if surge.Label != "" {
		label := surge.Label
		surgeLabel = &label
	}

	// Each line is rounded on its own; the rounded lines may not sum to the
	// rounded estimate by a cent or two. Validators round the same way.
	return PriceBreakdown{
		PricingVersion: rt.Version,
		Inputs: Inputs{
			ServiceType:               req.ServiceType,
			DistanceKm:                types.RoundTo(req.DistanceKm, 1),
			BillableDistanceKm:        types.RoundTo(billableDistanceKm, 1),
			DurationHours:             req.DurationHours,
			BillableDurationHours:     billableDurationHours,
			NurseExperienceLevel:      tierKey,
			NurseExperienceMultiplier: tier.Multiplier,
			IsEmergency:               req.IsEmergency,
			ScheduledTime:             at.UTC().Format(scheduledTimeLayout),
		},
		Breakdown: Breakdown{
			BaseFare:             baseFare,
			DistanceFare:         types.RoundTo(distanceFare, 2),
			DurationFare:         durationFare,
			CoreCost:             totals.CoreCost,
			ExperienceMultiplier: tier.Multiplier,
			ExperienceLabel:      tier.Label,
			AfterExperience:      types.RoundTo(totals.AfterExperience, 2),
			SurgeMultiplier:      surge.Multiplier,
			SurgeLabel:           surgeLabel,
			AfterSurge:           types.RoundTo(totals.AfterSurge, 2),
			EmergencySurcharge:   emergencySurcharge,
			Tax:                  types.RoundTo(totals.Tax, 2),
			PlatformFee:          totals.PlatformFee,
		},
		ClientEstimate: types.RoundTo(totals.Total, 2),
	}
}

// DefaultLocation is the booking market's zone (IST). The fixed offset is
// used when the tz database is unavailable.
func DefaultLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		return time.FixedZone("Asia/Kolkata", 5*60*60+30*60)
	}
	return loc
}
