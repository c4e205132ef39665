package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRateTable_Valid(t *testing.T) {
	require.NoError(t, DefaultRateTable().Validate())
}

func TestDefaultRateTable_FreshCopy(t *testing.T) {
	a := DefaultRateTable()
	a.BaseFares[ServiceGeneralCare] = 1
	a.Tiers[0].Multiplier = 9
	b := DefaultRateTable()
	assert.Equal(t, 300.0, b.BaseFares[ServiceGeneralCare])
	assert.Equal(t, 1.0, b.Tiers[0].Multiplier)
}

func TestRateTable_BaseFare(t *testing.T) {
	rt := DefaultRateTable()
	tests := map[string]float64{
		"General Care":          300,
		"Elderly Care":          400,
		"Post-Surgery":          500,
		"Post Surgery Care":     500,
		"IV Therapy":            600,
		"Wound Care":            450,
		"Emergency":             800,
		"Home Care":             300,
		"Medication Management": 300,
		"":                      300,
		"Massage":               300,
	}
	for service, want := range tests {
		assert.Equal(t, want, rt.BaseFare(service), service)
	}

	rt.BaseFares["Free Visit"] = 0
	assert.Equal(t, 300.0, rt.BaseFare("Free Visit"))
}

func TestRateTable_BillableAllowances(t *testing.T) {
	rt := DefaultRateTable()
	assert.Equal(t, 0.0, rt.BillableDistance(1.5))
	assert.Equal(t, 0.0, rt.BillableDistance(2))
	assert.Equal(t, 3.0, rt.BillableDistance(5))
	assert.Equal(t, 0.0, rt.BillableDistance(-4))
	assert.Equal(t, 0.0, rt.BillableDuration(0.5))
	assert.Equal(t, 2.0, rt.BillableDuration(3))
}

func TestRateTable_SpeedFor(t *testing.T) {
	rt := DefaultRateTable()
	assert.Equal(t, 30.0, rt.SpeedFor(ServiceEmergency))
	assert.Equal(t, 20.0, rt.SpeedFor("Wound Care"))
	assert.Equal(t, 20.0, rt.SpeedFor("unknown"))
}

func TestRateTable_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(rt *RateTable)
	}{
		{"empty version", func(rt *RateTable) { rt.Version = "" }},
		{"missing default fare", func(rt *RateTable) { delete(rt.BaseFares, ServiceGeneralCare) }},
		{"negative fare", func(rt *RateTable) { rt.BaseFares["Wound Care"] = -1 }},
		{"catalogue service missing", func(rt *RateTable) { delete(rt.BaseFares, "IV Therapy") }},
		{"negative km rate", func(rt *RateTable) { rt.Distance.RatePerKm = -15 }},
		{"discount tier", func(rt *RateTable) { rt.Tiers[1].Multiplier = 0.8 }},
		{"bounded final tier", func(rt *RateTable) { rt.Tiers[2].MaxYears = years(50) }},
		{"unbounded middle tier", func(rt *RateTable) { rt.Tiers[1].MaxYears = nil }},
		{"descending bounds", func(rt *RateTable) { rt.Tiers[1].MaxYears = years(1) }},
		{"no tiers", func(rt *RateTable) { rt.Tiers = nil }},
		{"surge discount", func(rt *RateTable) { rt.SurgeWindows[0].Multiplier = 0.5 }},
		{"surge hour out of range", func(rt *RateTable) { rt.SurgeWindows[1].EndHour = 24 }},
		{"surge day type", func(rt *RateTable) { rt.SurgeWindows[2].DayType = "holiday" }},
		{"tax out of range", func(rt *RateTable) { rt.TaxRate = -0.1 }},
		{"zero speed", func(rt *RateTable) { rt.TravelSpeeds.Default = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := DefaultRateTable()
			tt.mutate(rt)
			assert.ErrorIs(t, rt.Validate(), ErrInvalidRateTable)
		})
	}
}

func TestServiceTypes_Catalogue(t *testing.T) {
	st := ServiceTypes()
	require.Len(t, st, 6)
	assert.Equal(t, ServiceGeneralCare, st[0].Name)
	assert.Equal(t, ServiceEmergency, st[5].Name)
	for i, s := range st {
		assert.Equal(t, i+1, s.ID)
		assert.NotEmpty(t, s.Description)
	}
}
