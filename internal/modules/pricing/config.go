// README: Versioned rate table: base fares, allowances, tiers, surge windows, fees.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"nursecare/internal/geo"
)

// PricingVersion tags the compiled-in rate table. Bump it whenever any rate,
// tier or window value changes so stored breakdowns stay auditable.
const PricingVersion = "v1"

const (
	ServiceGeneralCare = "General Care"
	ServiceEmergency   = "Emergency"
)

type DistanceRates struct {
	RatePerKm    float64 `json:"ratePerKm" yaml:"ratePerKm"`
	FreeRadiusKm float64 `json:"freeRadiusKm" yaml:"freeRadiusKm"`
}

type DurationRates struct {
	RatePerHour   float64 `json:"ratePerHour" yaml:"ratePerHour"`
	IncludedHours float64 `json:"includedHours" yaml:"includedHours"`
}

// TravelSpeeds are the km/h assumptions behind ETA estimates.
type TravelSpeeds struct {
	Default   float64            `json:"default" yaml:"default"`
	ByService map[string]float64 `json:"byService" yaml:"byService"`
}

// RateTable is immutable once built; share one value across goroutines.
type RateTable struct {
	Version            string             `json:"version" yaml:"version"`
	DefaultService     string             `json:"defaultService" yaml:"defaultService"`
	EmergencyService   string             `json:"emergencyService" yaml:"emergencyService"`
	BaseFares          map[string]float64 `json:"baseFares" yaml:"baseFares"`
	Distance           DistanceRates      `json:"distance" yaml:"distance"`
	Duration           DurationRates      `json:"duration" yaml:"duration"`
	Tiers              []ExperienceTier   `json:"tiers" yaml:"tiers"`
	SurgeWindows       []SurgeWindow      `json:"surgeWindows" yaml:"surgeWindows"`
	EmergencySurcharge float64            `json:"emergencySurcharge" yaml:"emergencySurcharge"`
	PlatformFee        float64            `json:"platformFee" yaml:"platformFee"`
	TaxRate            float64            `json:"taxRate" yaml:"taxRate"`
	TravelSpeeds       TravelSpeeds       `json:"travelSpeeds" yaml:"travelSpeeds"`
}

// DefaultRateTable returns the compiled-in v1 table. Each call returns a
// fresh copy, so callers may not mutate the shared one by accident.
func DefaultRateTable() *RateTable {
	return &RateTable{
		Version:          PricingVersion,
		DefaultService:   ServiceGeneralCare,
		EmergencyService: ServiceEmergency,
		BaseFares: map[string]float64{
			ServiceGeneralCare:      300,
			"Elderly Care":          400,
			"Post-Surgery":          500,
			"Post Surgery Care":     500, // alias of Post-Surgery
			"IV Therapy":            600,
			"Wound Care":            450,
			ServiceEmergency:        800,
			"Home Care":             300, // alias of General Care
			"Medication Management": 300, // alias of General Care
		},
		Distance: DistanceRates{RatePerKm: 15, FreeRadiusKm: 2},
		Duration: DurationRates{RatePerHour: 25, IncludedHours: 1},
		Tiers: []ExperienceTier{
			{Key: TierJunior, Label: "Junior", Multiplier: 1.0, MaxYears: years(2)},
			{Key: TierMid, Label: "Mid-Level", Multiplier: 1.2, MaxYears: years(5)},
			{Key: TierSenior, Label: "Senior", Multiplier: 1.5},
		},
		SurgeWindows: []SurgeWindow{
			{Label: "Late Night", Multiplier: 2.0, DayType: DayAny, StartHour: 22, EndHour: 6},
			{Label: "Morning Rush", Multiplier: 1.5, DayType: DayWeekday, StartHour: 7, EndHour: 9},
			{Label: "Evening Rush", Multiplier: 1.5, DayType: DayWeekday, StartHour: 17, EndHour: 20},
			{Label: "Weekend Rush", Multiplier: 1.8, DayType: DayWeekend, StartHour: 17, EndHour: 22},
		},
		EmergencySurcharge: 300,
		PlatformFee:        50,
		TaxRate:            0.10,
		TravelSpeeds: TravelSpeeds{
			Default:   20,
			ByService: map[string]float64{ServiceEmergency: 30},
		},
	}
}

// BaseFare never fails: unknown service types price as the default service.
func (rt *RateTable) BaseFare(serviceType string) float64 {
	if fare, ok := rt.BaseFares[serviceType]; ok && fare > 0 {
		return fare
	}
	return rt.BaseFares[rt.DefaultService]
}

func (rt *RateTable) BillableDistance(rawKm float64) float64 {
	return geo.Billable(rawKm, rt.Distance.FreeRadiusKm)
}

func (rt *RateTable) BillableDuration(rawHours float64) float64 {
	return geo.Billable(rawHours, rt.Duration.IncludedHours)
}

// SpeedFor returns the travel speed assumption for a service type.
func (rt *RateTable) SpeedFor(serviceType string) float64 {
	if v, ok := rt.TravelSpeeds.ByService[serviceType]; ok && v > 0 {
		return v
	}
	return rt.TravelSpeeds.Default
}

// IsEmergencyService reports whether serviceType always carries the
// emergency surcharge.
func (rt *RateTable) IsEmergencyService(serviceType string) bool {
	return rt.EmergencyService != "" && serviceType == rt.EmergencyService
}

var ErrInvalidRateTable = errors.New("invalid rate table")

// Validate checks the table invariants. The compiled-in table always passes;
// tables loaded from files go through here before use.
func (rt *RateTable) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if rt.Version == "" {
		fail("version is empty")
	}
	if _, ok := rt.BaseFares[rt.DefaultService]; !ok {
		fail("default service %q has no base fare", rt.DefaultService)
	}
	for name, fare := range rt.BaseFares {
		if fare < 0 || math.IsNaN(fare) {
			fail("base fare for %q is %v", name, fare)
		}
	}
	for _, st := range ServiceTypes() {
		if _, ok := rt.BaseFares[st.Name]; !ok {
			fail("catalogue service %q has no base fare", st.Name)
		}
	}
	if rt.Distance.RatePerKm < 0 || rt.Distance.FreeRadiusKm < 0 {
		fail("distance rates must be non-negative")
	}
	if rt.Duration.RatePerHour < 0 || rt.Duration.IncludedHours < 0 {
		fail("duration rates must be non-negative")
	}

	if len(rt.Tiers) == 0 {
		fail("no experience tiers")
	}
	prev := math.Inf(-1)
	for i, t := range rt.Tiers {
		if t.Key == "" {
			fail("tier %d has no key", i)
		}
		if t.Multiplier < 1.0 {
			fail("tier %q multiplier %v is below 1.0", t.Key, t.Multiplier)
		}
		if i == len(rt.Tiers)-1 {
			if t.MaxYears != nil {
				fail("final tier %q must be unbounded", t.Key)
			}
			continue
		}
		if t.MaxYears == nil {
			fail("tier %q is unbounded but not last", t.Key)
			continue
		}
		if *t.MaxYears < 0 || *t.MaxYears <= prev {
			fail("tier %q bound %v is not ascending", t.Key, *t.MaxYears)
		}
		prev = *t.MaxYears
	}

	for _, w := range rt.SurgeWindows {
		if w.Multiplier < 1.0 {
			fail("surge window %q multiplier %v is below 1.0", w.Label, w.Multiplier)
		}
		if w.StartHour < 0 || w.StartHour > 23 || w.EndHour < 0 || w.EndHour > 23 {
			fail("surge window %q hours %d-%d out of range", w.Label, w.StartHour, w.EndHour)
		}
		switch w.DayType {
		case DayAny, DayWeekday, DayWeekend:
		default:
			fail("surge window %q has unknown day type %q", w.Label, w.DayType)
		}
	}

	if rt.EmergencySurcharge < 0 || rt.PlatformFee < 0 {
		fail("flat fees must be non-negative")
	}
	if rt.TaxRate < 0 || rt.TaxRate >= 1 {
		fail("tax rate %v out of range", rt.TaxRate)
	}
	if rt.TravelSpeeds.Default <= 0 {
		fail("default travel speed must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidRateTable, errors.Join(errs...))
	}
	return nil
}

// ServiceType is one entry of the booking-form service catalogue.
type ServiceType struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func ServiceTypes() []ServiceType {
	return []ServiceType{
		{ID: 1, Name: ServiceGeneralCare, Description: "Basic nursing care"},
		{ID: 2, Name: "Elderly Care", Description: "Specialized elderly support"},
		{ID: 3, Name: "Post-Surgery", Description: "Post-operative care"},
		{ID: 4, Name: "IV Therapy", Description: "Intravenous treatments"},
		{ID: 5, Name: "Wound Care", Description: "Professional wound management"},
		{ID: 6, Name: ServiceEmergency, Description: "Urgent medical needs"},
	}
}
