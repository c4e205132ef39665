// README: Straight-line distance and arrival estimate between a patient and a nurse.
package location

import (
	"math"

	"nursecare/internal/geo"
	"nursecare/internal/modules/pricing"
	"nursecare/internal/types"
)

const (
	SourceStraightLine = "straight_line"
	SourceRoad         = "road"
)

// Estimate is what pricing and the booking screens consume. Distances are
// rounded to one decimal; ETAMinutes is rounded up.
type Estimate struct {
	DistanceKm         float64 `json:"distanceKm"`
	BillableDistanceKm float64 `json:"billableDistanceKm"`
	ETAMinutes         int     `json:"etaMinutes"`
	Source             string  `json:"source"`
}

// EstimateDistanceAndETA uses the great-circle distance and the service's
// travel speed from the rate table. Coordinates are not validated here.
func EstimateDistanceAndETA(table *pricing.RateTable, patient, nurse geo.Point, serviceType string) Estimate {
	rawKm := geo.GreatCircleDistanceKm(patient, nurse)
	return estimateFromKm(table, rawKm, etaMinutes(rawKm, table.SpeedFor(serviceType)), SourceStraightLine)
}

func estimateFromKm(table *pricing.RateTable, rawKm float64, eta int, source string) Estimate {
	return Estimate{
		DistanceKm:         types.RoundTo(rawKm, 1),
		BillableDistanceKm: types.RoundTo(table.BillableDistance(rawKm), 1),
		ETAMinutes:         eta,
		Source:             source,
	}
}

func etaMinutes(rawKm, speedKmh float64) int {
	if !(rawKm > 0) || !(speedKmh > 0) {
		return 0
	}
	return int(math.Ceil(rawKm / speedKmh * 60))
}
