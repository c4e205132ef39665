package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDistance(t *testing.T) {
	tests := map[float64]string{
		0:      "0m",
		0.0004: "0m",
		0.6084: "608m",
		0.85:   "850m",
		1:      "1.0 km",
		3.44:   "3.4 km",
		28.0:   "28.0 km",
	}
	for km, want := range tests {
		assert.Equal(t, want, FormatDistance(km), "%v km", km)
	}
}

func TestFormatETA(t *testing.T) {
	tests := map[int]string{
		-3:  "< 1 min",
		0:   "< 1 min",
		1:   "1 min",
		12:  "12 min",
		59:  "59 min",
		60:  "1h",
		65:  "1h 5m",
		85:  "1h 25m",
		120: "2h",
	}
	for minutes, want := range tests {
		assert.Equal(t, want, FormatETA(minutes), "%d minutes", minutes)
	}
}
