package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompose_StageOrder(t *testing.T) {
	got := Compose(FareInputs{
		BaseFare:             400,
		DistanceFare:         45,
		DurationFare:         25,
		ExperienceMultiplier: 1.5,
		SurgeMultiplier:      2.0,
		EmergencySurcharge:   300,
	}, 0.10, 50)

	assert.Equal(t, 470.0, got.CoreCost)
	assert.Equal(t, 705.0, got.AfterExperience)
	assert.Equal(t, 1410.0, got.AfterSurge)
	assert.Equal(t, 141.0, got.Tax)
	assert.Equal(t, 50.0, got.PlatformFee)
	// Surcharge and platform fee are added after tax is taken.
	assert.Equal(t, 1410.0+300+141+50, got.Total)
}

func TestCompose_NeutralMultipliers(t *testing.T) {
	got := Compose(FareInputs{BaseFare: 300, ExperienceMultiplier: 1, SurgeMultiplier: 1}, 0, 0)
	assert.Equal(t, Totals{CoreCost: 300, AfterExperience: 300, AfterSurge: 300, Total: 300}, got)
}
