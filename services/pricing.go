package services

import "time"

const day = 24 * time.Hour

// NormalizeDay truncates a timestamp to midnight UTC. Dates are compared at
// day granularity everywhere in the booking engine.
func NormalizeDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Nights returns the number of nights in [desde, hasta), ceiling of the
// elapsed time in days.
func Nights(desde, hasta time.Time) int {
	diff := hasta.Sub(desde)
	nights := int(diff / day)
	if diff%day != 0 {
		nights++
	}
	return nights
}

// Total is the booking price for the given nights at the nightly rate frozen
// at creation time.
func Total(noches int, precioNoche float64) float64 {
	return float64(noches) * precioNoche
}

// DaysUntil is the calendar-day difference from now to desde, rounded up.
// Used by the cancellation notice window.
func DaysUntil(now, desde time.Time) int {
	diff := desde.Sub(now)
	days := int(diff / day)
	if diff > 0 && diff%day != 0 {
		days++
	}
	return days
}
