// Package time contains time related helpers
package time

import "time"

// Ptr returns a pointer to t or nil if t is zero
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// IsWeekend reports whether t falls on a Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Day period labels returned by DayPart
const (
	EarlyMorning = "early_morning"
	Morning      = "morning"
	Lunch        = "lunch"
	Afternoon    = "afternoon"
	Evening      = "evening"
	Night        = "night"
	LateNight    = "late_night"
)

// DayPart buckets the hour of t into a coarse period of day, early_morning
// (05-09) through late_night (23-05)
func DayPart(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 5 && h < 9:
		return EarlyMorning
	case h >= 9 && h < 12:
		return Morning
	case h >= 12 && h < 13:
		return Lunch
	case h >= 13 && h < 17:
		return Afternoon
	case h >= 17 && h < 20:
		return Evening
	case h >= 20 && h < 23:
		return Night
	default:
		return LateNight
	}
}
