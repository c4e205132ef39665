package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreatCircleDistanceKm_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Point
		wantKm    float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         Point{Lat: 12.9716, Lng: 77.5946},
			b:         Point{Lat: 12.9716, Lng: 77.5946},
			wantKm:    0,
			tolerance: 0.000001,
		},
		{
			name:      "MG Road to Koramangala (~5.2km)",
			a:         Point{Lat: 12.9716, Lng: 77.5946},
			b:         Point{Lat: 12.9352, Lng: 77.6245},
			wantKm:    5.18,
			tolerance: 0.01,
		},
		{
			name:      "Mumbai to Delhi (~1150km)",
			a:         Point{Lat: 19.0760, Lng: 72.8777},
			b:         Point{Lat: 28.6139, Lng: 77.2090},
			wantKm:    1150,
			tolerance: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GreatCircleDistanceKm(tt.a, tt.b)
			if math.Abs(got-tt.wantKm) > tt.tolerance {
				t.Errorf("GreatCircleDistanceKm() = %f, want %f (±%f)", got, tt.wantKm, tt.tolerance)
			}
		})
	}
}

func TestGreatCircleDistanceKm_Symmetry(t *testing.T) {
	a := Point{Lat: 25.0, Lng: 121.0}
	b := Point{Lat: 26.0, Lng: 122.0}
	assert.Equal(t, GreatCircleDistanceKm(a, b), GreatCircleDistanceKm(b, a))
}

func TestGreatCircleDistanceKm_TriangleInequality(t *testing.T) {
	points := []Point{
		{Lat: 12.9716, Lng: 77.5946},
		{Lat: 13.0827, Lng: 80.2707},
		{Lat: 17.3850, Lng: 78.4867},
		{Lat: -33.8688, Lng: 151.2093},
	}
	for _, a := range points {
		for _, b := range points {
			for _, c := range points {
				ab := GreatCircleDistanceKm(a, b)
				bc := GreatCircleDistanceKm(b, c)
				ac := GreatCircleDistanceKm(a, c)
				assert.LessOrEqual(t, ac, ab+bc+1e-9)
			}
		}
	}
}

func TestGreatCircleDistanceKm_ZeroOnlyForEqualPoints(t *testing.T) {
	a := Point{Lat: 28.6139, Lng: 77.2090}
	b := Point{Lat: 28.6139, Lng: 77.2091}
	assert.Zero(t, GreatCircleDistanceKm(a, a))
	assert.Greater(t, GreatCircleDistanceKm(a, b), 0.0)
}

func TestBillable(t *testing.T) {
	tests := []struct {
		name      string
		raw       float64
		allowance float64
		want      float64
	}{
		{"inside allowance", 1.5, 2, 0},
		{"exactly allowance", 2, 2, 0},
		{"beyond allowance", 5, 2, 3},
		{"negative raw clamps", -4, 2, 0},
		{"nan clamps", math.NaN(), 2, 0},
		{"no allowance", 2.5, 0, 2.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Billable(tt.raw, tt.allowance))
		})
	}
}

func TestBillable_Monotonic(t *testing.T) {
	prev := Billable(0, 1)
	for raw := 0.0; raw <= 10; raw += 0.25 {
		got := Billable(raw, 1)
		assert.GreaterOrEqual(t, got, prev)
		assert.GreaterOrEqual(t, got, 0.0)
		prev = got
	}
}

func TestPointValidate(t *testing.T) {
	assert.NoError(t, Point{Lat: 90, Lng: -180}.Validate())
	assert.ErrorIs(t, Point{Lat: 91, Lng: 0}.Validate(), ErrInvalidPoint)
	assert.ErrorIs(t, Point{Lat: 0, Lng: 180.5}.Validate(), ErrInvalidPoint)
	assert.ErrorIs(t, Point{Lat: math.NaN(), Lng: 0}.Validate(), ErrInvalidPoint)
}

func TestSortByDistance(t *testing.T) {
	type item struct {
		id   string
		dist float64
	}
	items := []item{{"c", 5}, {"a", 1}, {"b", 3}}
	SortByDistance(items, func(i item) float64 { return i.dist })
	assert.Equal(t, []item{{"a", 1}, {"b", 3}, {"c", 5}}, items)

	var empty []item
	SortByDistance(empty, func(i item) float64 { return i.dist })
	assert.Empty(t, empty)
}
