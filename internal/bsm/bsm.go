// Package bsm holds the subset of Basic Safety Message fields the privacy
// filters read: vehicle id, position, and speed.
package bsm

import (
	"fmt"

	"github.com/mmcloughlin/geohash"
)

// Unassigned is the id a BSM carries before the streaming handler has
// filled it in from the current message.
const Unassigned = "UNASSIGNED"

// BSM is reused across messages by the streaming handler: Reset restores
// it to its sentinel state at each message boundary rather than allocating
// a fresh value.
type BSM struct {
	ID       string
	Lat      float64
	Lon      float64
	Velocity float64
}

// Reset restores the sentinel values a BSM carries before the handler has
// filled in any field from the current message.
func (b *BSM) Reset() {
	b.ID = Unassigned
	b.Lat = 90.0
	b.Lon = 180.0
	b.Velocity = -1.0
}

// LogString renders a one-line summary for the suppression/retention log,
// with the position encoded as a geohash.
func (b *BSM) LogString() string {
	hash := geohash.EncodeWithPrecision(b.Lat, b.Lon, 9)
	return fmt.Sprintf("id=%s geohash=%s velocity=%.3f", b.ID, hash, b.Velocity)
}
