package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInTimeWindow(t *testing.T) {
	tests := []struct {
		hour, start, end int
		want             bool
	}{
		{hour: 22, start: 22, end: 6, want: true},
		{hour: 23, start: 22, end: 6, want: true},
		{hour: 0, start: 22, end: 6, want: true},
		{hour: 5, start: 22, end: 6, want: true},
		{hour: 6, start: 22, end: 6, want: false},
		{hour: 21, start: 22, end: 6, want: false},
		{hour: 7, start: 7, end: 9, want: true},
		{hour: 8, start: 7, end: 9, want: true},
		{hour: 9, start: 7, end: 9, want: false},
		{hour: 6, start: 7, end: 9, want: false},
		{hour: 0, start: 4, end: 4, want: true},
		{hour: 13, start: 4, end: 4, want: true},
	}
	for _, tt := range tests {
		got := InTimeWindow(tt.hour, tt.start, tt.end)
		assert.Equal(t, tt.want, got, "hour %d in [%d,%d)", tt.hour, tt.start, tt.end)
	}
}

func TestResolveSurge_DefaultWindows(t *testing.T) {
	rt := DefaultRateTable()
	tests := []struct {
		name  string
		at    string
		label string
		mult  float64
	}{
		{"weekday noon", "2026-02-10T12:00:00Z", "", 1.0},
		{"weekday late night", "2026-02-10T23:00:00Z", "Late Night", 2.0},
		{"early morning wraps", "2026-02-11T03:00:00Z", "Late Night", 2.0},
		{"morning rush", "2026-02-10T07:30:00Z", "Morning Rush", 1.5},
		{"morning rush ends at nine", "2026-02-10T09:00:00Z", "", 1.0},
		{"evening rush", "2026-02-10T19:59:00Z", "Evening Rush", 1.5},
		{"weekday evening after rush", "2026-02-10T21:00:00Z", "", 1.0},
		{"saturday morning is not rush", "2026-02-14T08:00:00Z", "", 1.0},
		{"saturday weekend rush", "2026-02-14T18:00:00Z", "Weekend Rush", 1.8},
		{"sunday weekend rush edge", "2026-02-15T21:00:00Z", "Weekend Rush", 1.8},
		{"sunday late night wins", "2026-02-15T22:00:00Z", "Late Night", 2.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rt.ResolveSurge(*at(tt.at))
			assert.Equal(t, tt.label, got.Label)
			assert.Equal(t, tt.mult, got.Multiplier)
		})
	}
}

func TestResolveSurge_FirstMatchWins(t *testing.T) {
	rt := DefaultRateTable()
	rt.SurgeWindows = []SurgeWindow{
		{Label: "Lunch", Multiplier: 1.3, DayType: DayAny, StartHour: 11, EndHour: 14},
		{Label: "Midday", Multiplier: 1.9, DayType: DayAny, StartHour: 12, EndHour: 15},
	}

	got := rt.ResolveSurge(*at("2026-02-10T12:30:00Z"))
	assert.Equal(t, Surge{Multiplier: 1.3, Label: "Lunch"}, got)

	got = rt.ResolveSurge(*at("2026-02-10T14:30:00Z"))
	assert.Equal(t, Surge{Multiplier: 1.9, Label: "Midday"}, got)
}

func TestSurgeWindow_MatchesUsesCalendarDay(t *testing.T) {
	w := SurgeWindow{Label: "Weekday Night", Multiplier: 1.4, DayType: DayWeekday, StartHour: 22, EndHour: 6}

	// Friday 23:00 opens the window; Saturday 02:00 is judged as a weekend day.
	assert.True(t, w.Matches(time.Date(2026, 2, 13, 23, 0, 0, 0, time.UTC)))
	assert.False(t, w.Matches(time.Date(2026, 2, 14, 2, 0, 0, 0, time.UTC)))
	assert.True(t, w.Matches(time.Date(2026, 2, 16, 2, 0, 0, 0, time.UTC)))
}

func TestSurgeWindow_UnknownDayTypeNeverMatches(t *testing.T) {
	w := SurgeWindow{Label: "Holiday", Multiplier: 3, DayType: "holiday", StartHour: 0, EndHour: 0}
	assert.False(t, w.Matches(time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)))
}
