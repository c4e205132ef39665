// README: Great-circle distance, allowance subtraction and geohash encoding.

// Package geo holds the pure coordinate math shared by pricing, booking and
// the proximity index: great-circle distance, allowance subtraction and
// geohash encoding. Nothing here validates coordinates unless asked to.
package geo

import "fmt"

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat" firestore:"lat"`
	Lng float64 `json:"lng" firestore:"lng"`
}

// Valid reports whether the point lies inside [-90,90] x [-180,180].
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Validate is the caller-side check used by the location-acquisition layer
// before coordinates reach the estimator or the encoder.
func (p Point) Validate() error {
	if p.Valid() {
		return nil
	}
	return fmt.Errorf("%w: lat=%.6f lng=%.6f", ErrInvalidPoint, p.Lat, p.Lng)
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lat, p.Lng)
}
