// README: Nurse positions in the proximity index and nearby-search results.
package location

import (
	"time"

	"nursecare/internal/geo"
	"nursecare/internal/types"
)

// NursePosition is the last reported position of an available nurse.
type NursePosition struct {
	NurseID   types.ID  `json:"nurseId"`
	Point     geo.Point `json:"point"`
	Geohash   string    `json:"geohash"`
	Services  []string  `json:"services,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OffersService reports whether the nurse lists service. An empty list
// offers every service.
func (p NursePosition) OffersService(service string) bool {
	if service == "" || len(p.Services) == 0 {
		return true
	}
	for _, s := range p.Services {
		if s == service {
			return true
		}
	}
	return false
}

// NearbyNurse is one row of a nearby search, closest first.
type NearbyNurse struct {
	NursePosition
	Estimate
	DistanceText string `json:"distanceText"`
	ETAText      string `json:"etaText"`
}
