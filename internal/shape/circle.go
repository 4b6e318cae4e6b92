package shape

import "github.com/jpo-ppm/ppm/internal/geo"

// Circle is centered on a Location with a radius in meters. A negative
// radius means "contains nothing".
type Circle struct {
	Center geo.Location
	Radius float64
}

// Contains reports whether p lies within the circle.
func (c Circle) Contains(p geo.Point) bool {
	if c.Radius < 0 {
		return false
	}
	return geo.HaversineDistance(c.Center.Point, p) <= c.Radius
}

// ContainsCircle reports whether o is entirely contained within c.
func (c Circle) ContainsCircle(o Circle) bool {
	if c.Radius < 0 {
		return false
	}
	return geo.HaversineDistance(c.Center.Point, o.Center.Point)+o.Radius <= c.Radius
}

// Touches reports whether the circle possibly overlaps b: true if the
// circle's center is within b, or any of b's four sides comes within
// Radius of the center.
func (c Circle) Touches(b Bounds) bool {
	if c.Radius < 0 {
		return false
	}
	if b.Contains(c.Center.Point) {
		return true
	}
	nw := geo.Point{Lat: b.NE.Lat, Lon: b.SW.Lon}
	se := geo.Point{Lat: b.SW.Lat, Lon: b.NE.Lon}
	sw := b.SW.Point
	ne := b.NE.Point

	sides := [4][2]geo.Point{
		{sw, nw}, // west side
		{nw, ne}, // north side
		{ne, se}, // east side
		{se, sw}, // south side
	}
	for _, side := range sides {
		if geo.PointSegmentDistance(c.Center.Point, side[0], side[1]) <= c.Radius {
			return true
		}
	}
	return false
}

// Type returns the entity type tag for a Circle.
func (c Circle) Type() string { return "circle" }
