// README: Time-of-day surge windows, evaluated in declared order.
package pricing

import "time"

type DayType string

const (
	DayWeekday DayType = "weekday"
	DayWeekend DayType = "weekend"
	DayAny     DayType = "any"
)

// SurgeWindow applies Multiplier during [StartHour, EndHour) local time on
// matching days. StartHour > EndHour wraps past midnight.
type SurgeWindow struct {
	Label      string  `json:"label" yaml:"label"`
	Multiplier float64 `json:"multiplier" yaml:"multiplier"`
	DayType    DayType `json:"dayType" yaml:"dayType"`
	StartHour  int     `json:"startHour" yaml:"startHour"`
	EndHour    int     `json:"endHour" yaml:"endHour"`
}

// Surge is the resolved window. Label is empty when no window matched.
type Surge struct {
	Multiplier float64
	Label      string
}

var noSurge = Surge{Multiplier: 1.0}

// Matches checks the day type of t and its hour in t's own location.
// An overnight window is judged by the calendar day of t, not the day the
// window opened.
func (w SurgeWindow) Matches(t time.Time) bool {
	if !dayTypeMatches(w.DayType, t.Weekday()) {
		return false
	}
	return InTimeWindow(t.Hour(), w.StartHour, w.EndHour)
}

// InTimeWindow reports whether hour lies in [start, end), wrapping past
// midnight when start > end. start == end covers the whole day.
func InTimeWindow(hour, start, end int) bool {
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func dayTypeMatches(dt DayType, day time.Weekday) bool {
	switch dt {
	case DayAny:
		return true
	case DayWeekend:
		return isWeekend(day)
	case DayWeekday:
		return !isWeekend(day)
	default:
		return false
	}
}

func isWeekend(day time.Weekday) bool {
	return day == time.Saturday || day == time.Sunday
}

// ResolveSurge returns the first window matching t, or a 1.0 multiplier
// with no label.
func (rt *RateTable) ResolveSurge(t time.Time) Surge {
	for _, w := range rt.SurgeWindows {
		if w.Matches(t) {
			return Surge{Multiplier: w.Multiplier, Label: w.Label}
		}
	}
	return noSurge
}
