package shape

import "github.com/jpo-ppm/ppm/internal/geo"

// Entity is the sum of {Location, Edge, Area, Circle, Grid}: anything the
// quadtree can index. Implementations must be safe to compare by value or
// hold as a pointer as appropriate (Edge is a pointer receiver because it
// is shared infrastructure owned by a VertexArena; Area/Circle/Grid/
// PointEntity are small value types).
type Entity interface {
	// Type returns the entity's type tag: "location", "edge", "area",
	// "circle", or "grid".
	Type() string
	// Touches reports whether the entity possibly intersects b.
	Touches(b Bounds) bool
	// Contains reports whether the entity definitely contains p.
	Contains(p geo.Point) bool
}

// PointEntity adapts a bare geo.Location to the Entity interface, treating
// it as a degenerate point shape.
type PointEntity struct {
	geo.Location
}

// Type returns "location".
func (PointEntity) Type() string { return "location" }

// Touches reports whether b contains the location's point.
func (p PointEntity) Touches(b Bounds) bool { return b.Contains(p.Point) }

// Contains reports whether q is within tolerance of this location.
func (p PointEntity) Contains(q geo.Point) bool { return p.Point.Near(q) }

var (
	_ Entity = PointEntity{}
	_ Entity = (*Edge)(nil)
	_ Entity = Area{}
	_ Entity = Circle{}
	_ Entity = Grid{}
)
