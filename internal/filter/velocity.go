// Package filter holds the two privacy filters the streaming handler
// evaluates inline: a velocity band check and an id redactor with an
// inclusion/exclusion policy.
package filter

// Velocity is a closed [Min, Max] band in meters/second; both endpoints
// retain.
type Velocity struct {
	Min float64
	Max float64
}

// Suppress reports whether v falls outside the band.
func (f Velocity) Suppress(v float64) bool {
	return v < f.Min || v > f.Max
}
