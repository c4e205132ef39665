// README: Presentation rounding shared by the pricing and location modules.
package types

import "math"

// RoundTo rounds v to the given number of decimal places, halves upward.
// floor(v*f + 0.5) is used instead of math.Round so that every consumer of a
// persisted breakdown (including non-Go validators) lands on the same value.
func RoundTo(v float64, places int) float64 {
	f := math.Pow(10, float64(places))
	return math.Floor(v*f+0.5) / f
}
