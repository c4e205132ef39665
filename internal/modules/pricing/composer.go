// README: Five-stage fare composition over already-resolved amounts.
package pricing

// FareInputs are the resolved amounts and multipliers fed to Compose.
type FareInputs struct {
	BaseFare             float64
	DistanceFare         float64
	DurationFare         float64
	ExperienceMultiplier float64
	SurgeMultiplier      float64
	EmergencySurcharge   float64
}

// Totals keeps every stage of the composition. Nothing is rounded here.
type Totals struct {
	CoreCost        float64
	AfterExperience float64
	AfterSurge      float64
	Tax             float64
	PlatformFee     float64
	Total           float64
}

// Compose evaluates, in this order:
//
//	coreCost        = baseFare + distanceFare + durationFare
//	afterExperience = coreCost * experienceMultiplier
//	afterSurge      = afterExperience * surgeMultiplier
//	tax             = afterSurge * taxRate
//	total           = afterSurge + emergencySurcharge + tax + platformFee
//
// The emergency surcharge and platform fee stay outside the taxable base.
// Validators recompute this exact sequence; do not reorder the operations.
func Compose(in FareInputs, taxRate, platformFee float64) Totals {
	coreCost := in.BaseFare + in.DistanceFare + in.DurationFare
	afterExperience := coreCost * in.ExperienceMultiplier
	afterSurge := afterExperience * in.SurgeMultiplier
	tax := afterSurge * taxRate
	total := afterSurge + in.EmergencySurcharge + tax + platformFee

	return Totals{
		CoreCost:        coreCost,
		AfterExperience: afterExperience,
		AfterSurge:      afterSurge,
		Tax:             tax,
		PlatformFee:     platformFee,
		Total:           total,
	}
}
