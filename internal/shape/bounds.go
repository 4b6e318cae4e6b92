package shape

import (
	"errors"

	"github.com/jpo-ppm/ppm/internal/geo"
)

// ErrInvalidBounds is returned when sw/ne would cross the dateline or sw
// would sit north/east of ne.
var ErrInvalidBounds = errors.New("shape: sw must be south-west of ne")

// Bounds is an axis-aligned bounding box. The invariant sw.Lat <= ne.Lat &&
// sw.Lon <= ne.Lon is enforced by NewBounds; no dateline-crossing boxes are
// representable.
type Bounds struct {
	SW geo.Location
	NE geo.Location
}

// NewBounds validates and constructs a Bounds.
func NewBounds(sw, ne geo.Location) (Bounds, error) {
	if sw.Lat > ne.Lat || sw.Lon > ne.Lon {
		return Bounds{}, ErrInvalidBounds
	}
	return Bounds{SW: sw, NE: ne}, nil
}

// Width returns the east-west extent in degrees.
func (b Bounds) Width() float64 { return b.NE.Lon - b.SW.Lon }

// Height returns the north-south extent in degrees.
func (b Bounds) Height() float64 { return b.NE.Lat - b.SW.Lat }

// Touches reports whether b and o possibly overlap (axis-aligned rectangle
// intersection).
func (b Bounds) Touches(o Bounds) bool {
	return b.SW.Lat <= o.NE.Lat && b.NE.Lat >= o.SW.Lat &&
		b.SW.Lon <= o.NE.Lon && b.NE.Lon >= o.SW.Lon
}

// Contains reports whether p lies within b, inclusive of the edges.
func (b Bounds) Contains(p geo.Point) bool {
	return p.Lat >= b.SW.Lat && p.Lat <= b.NE.Lat &&
		p.Lon >= b.SW.Lon && p.Lon <= b.NE.Lon
}

// Fuzzy returns b expanded outward by pct (e.g. 0.01 for 1%) of its
// width/height on each axis. Used by the quadtree so shapes straddling a
// split boundary remain reachable from either side.
func (b Bounds) Fuzzy(pct float64) Bounds {
	dw := b.Width() * pct
	dh := b.Height() * pct
	return Bounds{
		SW: geo.Location{Point: geo.Point{Lat: b.SW.Lat - dh, Lon: b.SW.Lon - dw}},
		NE: geo.Location{Point: geo.Point{Lat: b.NE.Lat + dh, Lon: b.NE.Lon + dw}},
	}
}

// Center returns the midpoint of the box (in degrees, not great-circle).
func (b Bounds) Center() geo.Point {
	return geo.Point{
		Lat: (b.SW.Lat + b.NE.Lat) / 2,
		Lon: (b.SW.Lon + b.NE.Lon) / 2,
	}
}
