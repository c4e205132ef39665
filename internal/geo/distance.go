// README: Great-circle distance and allowance helpers.
package geo

import (
	"errors"
	"math"
)

const earthRadiusKm = 6371.0

var ErrInvalidPoint = errors.New("coordinates out of range")

// GreatCircleDistanceKm returns the haversine distance in kilometres.
func GreatCircleDistanceKm(a, b Point) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Billable subtracts a free allowance from a raw measurement, floored at zero.
// Negative and NaN inputs yield zero.
func Billable(raw, allowance float64) float64 {
	v := raw - allowance
	if !(v > 0) {
		return 0
	}
	return v
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// SortByDistance performs an insertion sort (fine for small N) on any slice
// where each element exposes a distance via the accessor function.
func SortByDistance[T any](items []T, dist func(T) float64) {
	for i := 1; i < len(items); i++ {
		key := items[i]
		j := i - 1
		for j >= 0 && dist(items[j]) > dist(key) {
			items[j+1] = items[j]
			j--
		}
		items[j+1] = key
	}
}
