// README: Display formatting for distances and travel times.
package location

import (
	"fmt"
	"math"
	"strconv"
)

// FormatDistance renders short distances in metres and the rest in km with
// one decimal: "850m", "3.4 km".
func FormatDistance(km float64) string {
	if km < 1 {
		return fmt.Sprintf("%dm", int(math.Floor(km*1000+0.5)))
	}
	return strconv.FormatFloat(km, 'f', 1, 64) + " km"
}

// FormatETA renders "< 1 min", "12 min", "1h 5m" or "2h".
func FormatETA(minutes int) string {
	switch {
	case minutes < 1:
		return "< 1 min"
	case minutes >= 60:
		hrs, mins := minutes/60, minutes%60
		if mins > 0 {
			return fmt.Sprintf("%dh %dm", hrs, mins)
		}
		return fmt.Sprintf("%dh", hrs)
	default:
		return fmt.Sprintf("%d min", minutes)
	}
}
