// README: Pricing request and the persisted price breakdown document.
package pricing

import (
	"encoding/json"
	"fmt"
	"time"

	"nursecare/internal/types"
)

const DefaultDurationHours = 1.0

// Request is the calculate input. Use NewRequest or JSON decoding to get the
// documented defaults (duration 1h, zero years, not emergency, now).
type Request struct {
	ServiceType     string          `json:"serviceType"`
	DistanceKm      float64         `json:"distanceKm"`
	DurationHours   float64         `json:"durationHours"`
	NurseExperience ExperienceInput `json:"nurseExperience"`
	IsEmergency     bool            `json:"isEmergency"`
	ScheduledTime   *time.Time      `json:"scheduledTime"`
}

func NewRequest(serviceType string) Request {
	return Request{ServiceType: serviceType, DurationHours: DefaultDurationHours}
}

// Rounded returns r with the distance at the one-decimal precision a
// breakdown persists, so the priced distance is the one a validator rebuilds.
func (r Request) Rounded() Request {
	r.DistanceKm = types.RoundTo(r.DistanceKm, 1)
	return r
}

func (r *Request) UnmarshalJSON(b []byte) error {
	type plain Request
	p := plain(NewRequest(""))
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*r = Request(p)
	return nil
}

// PriceBreakdown is the versioned, auditable result persisted with a
// booking. Field names are shared with the server-side validator and the
// booking documents; keep them stable.
type PriceBreakdown struct {
	PricingVersion string    `json:"pricingVersion" firestore:"pricingVersion"`
	Inputs         Inputs    `json:"inputs" firestore:"inputs"`
	Breakdown      Breakdown `json:"breakdown" firestore:"breakdown"`
	ClientEstimate float64   `json:"clientEstimate" firestore:"clientEstimate"`
}

type Inputs struct {
	ServiceType               string  `json:"serviceType" firestore:"serviceType"`
	DistanceKm                float64 `json:"distanceKm" firestore:"distanceKm"`
	BillableDistanceKm        float64 `json:"billableDistanceKm" firestore:"billableDistanceKm"`
	DurationHours             float64 `json:"durationHours" firestore:"durationHours"`
	BillableDurationHours     float64 `json:"billableDurationHours" firestore:"billableDurationHours"`
	NurseExperienceLevel      TierKey `json:"nurseExperienceLevel" firestore:"nurseExperienceLevel"`
	NurseExperienceMultiplier float64 `json:"nurseExperienceMultiplier" firestore:"nurseExperienceMultiplier"`
	IsEmergency               bool    `json:"isEmergency" firestore:"isEmergency"`
	ScheduledTime             string  `json:"scheduledTime" firestore:"scheduledTime"`
}

type Breakdown struct {
	BaseFare             float64 `json:"baseFare" firestore:"baseFare"`
	DistanceFare         float64 `json:"distanceFare" firestore:"distanceFare"`
	DurationFare         float64 `json:"durationFare" firestore:"durationFare"`
	CoreCost             float64 `json:"coreCost" firestore:"coreCost"`
	ExperienceMultiplier float64 `json:"experienceMultiplier" firestore:"experienceMultiplier"`
	ExperienceLabel      string  `json:"experienceLabel" firestore:"experienceLabel"`
	AfterExperience      float64 `json:"afterExperience" firestore:"afterExperience"`
	SurgeMultiplier      float64 `json:"surgeMultiplier" firestore:"surgeMultiplier"`
	SurgeLabel           *string `json:"surgeLabel" firestore:"surgeLabel"`
	AfterSurge           float64 `json:"afterSurge" firestore:"afterSurge"`
	EmergencySurcharge   float64 `json:"emergencySurcharge" firestore:"emergencySurcharge"`
	Tax                  float64 `json:"tax" firestore:"tax"`
	PlatformFee          float64 `json:"platformFee" firestore:"platformFee"`
}

// ScheduledAt parses Inputs.ScheduledTime.
func (pb PriceBreakdown) ScheduledAt() (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, pb.Inputs.ScheduledTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing scheduledTime %q: %w", pb.Inputs.ScheduledTime, err)
	}
	return t, nil
}

// LineItem is one display row of a breakdown.
type LineItem struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

// LineItems lists the rows a price estimate shows, in display order. Distance,
// duration, surge and emergency rows are omitted when they carry nothing.
func (pb PriceBreakdown) LineItems() []LineItem {
	b := pb.Breakdown
	items := []LineItem{{Label: fmt.Sprintf("Base Fare (%s)", pb.Inputs.ServiceType), Amount: b.BaseFare}}
	if b.DistanceFare > 0 {
		items = append(items, LineItem{
			Label:  fmt.Sprintf("Distance (%v km)", pb.Inputs.BillableDistanceKm),
			Amount: b.DistanceFare,
		})
	}
	if b.DurationFare > 0 {
		unit := "hr"
		if pb.Inputs.BillableDurationHours > 1 {
			unit = "hrs"
		}
		items = append(items, LineItem{
			Label:  fmt.Sprintf("Duration (%v %s extra)", pb.Inputs.BillableDurationHours, unit),
			Amount: b.DurationFare,
		})
	}
	items = append(items, LineItem{
		Label:  fmt.Sprintf("%s Nurse (%vx)", b.ExperienceLabel, b.ExperienceMultiplier),
		Amount: b.AfterExperience,
	})
	if b.SurgeMultiplier > 1.0 && b.SurgeLabel != nil {
		items = append(items, LineItem{
			Label:  fmt.Sprintf("%s (%vx)", *b.SurgeLabel, b.SurgeMultiplier),
			Amount: b.AfterSurge,
		})
	}
	if b.EmergencySurcharge > 0 {
		items = append(items, LineItem{Label: "Emergency Surcharge", Amount: b.EmergencySurcharge})
	}
	items = append(items,
		LineItem{Label: "Tax", Amount: b.Tax},
		LineItem{Label: "Platform Fee", Amount: b.PlatformFee},
		LineItem{Label: "Total", Amount: pb.ClientEstimate},
	)
	return items
}
