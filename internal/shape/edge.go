package shape

import (
	"errors"

	"github.com/jpo-ppm/ppm/internal/geo"
)

// RoadClass tags an Edge with the kind of way it represents, which
// determines the lane width used when materializing an Area.
type RoadClass int

// Recognized road classes and their lane widths, in meters. Unknown/
// unspecified classes fall back to ClassLocal's width.
const (
	ClassMotorway RoadClass = iota
	ClassTrunk
	ClassPrimary
	ClassSecondary
	ClassResidential
	ClassLocal
)

var laneWidths = map[RoadClass]float64{
	ClassMotorway:    3.7,
	ClassTrunk:       3.5,
	ClassPrimary:     3.3,
	ClassSecondary:   3.0,
	ClassResidential: 2.75,
	ClassLocal:       2.75,
}

// LaneWidth returns the lane width in meters for a road class.
func LaneWidth(c RoadClass) float64 {
	if w, ok := laneWidths[c]; ok {
		return w
	}
	return laneWidths[ClassLocal]
}

// ErrDegenerateEdge is returned when constructing an Edge whose endpoints
// share a vertex uid.
var ErrDegenerateEdge = errors.New("shape: edge endpoints must be distinct vertices")

// Edge is a directed segment between two vertices held in a VertexArena,
// tagged with a road class, a uid, and whether it was read explicitly from
// the shape file (vs. synthesized, e.g. by splitting). Edges compare equal
// by uid.
type Edge struct {
	UID       uint64
	V1, V2    int // VertexArena indices
	Class     RoadClass
	Explicit  bool
	Extension float64 // end-extension in meters applied when building the Area

	arena *VertexArena
}

// NewEdge constructs an Edge. It is an error for v1 and v2 to reference the
// same vertex uid.
func NewEdge(arena *VertexArena, uid uint64, v1, v2 int, class RoadClass, explicit bool, extension float64) (*Edge, error) {
	if arena.UID(v1) == arena.UID(v2) {
		return nil, ErrDegenerateEdge
	}
	return &Edge{
		UID: uid, V1: v1, V2: v2, Class: class, Explicit: explicit,
		Extension: extension, arena: arena,
	}, nil
}

// Equal compares edges by uid.
func (e *Edge) Equal(o *Edge) bool { return e.UID == o.UID }

// Vertex1 returns the current location of the edge's first endpoint.
func (e *Edge) Vertex1() geo.Location { return e.arena.Location(e.V1) }

// Vertex2 returns the current location of the edge's second endpoint.
func (e *Edge) Vertex2() geo.Location { return e.arena.Location(e.V2) }

// Bearing returns the initial bearing, in degrees, from Vertex1 to Vertex2.
func (e *Edge) Bearing() float64 {
	return geo.InitialBearing(e.Vertex1().Point, e.Vertex2().Point)
}

// Length returns the equirectangular-approximation length of the edge, in
// meters.
func (e *Edge) Length() float64 {
	return geo.EquirectangularDistance(e.Vertex1().Point, e.Vertex2().Point)
}

// LengthHaversine returns the great-circle length of the edge, in meters.
func (e *Edge) LengthHaversine() float64 {
	return geo.HaversineDistance(e.Vertex1().Point, e.Vertex2().Point)
}

// Width returns the full road width (lane width, not half-width) in
// meters for this edge's class.
func (e *Edge) Width() float64 { return LaneWidth(e.Class) }

// ToArea materializes the Area this edge implies: the road corridor
// extended orthogonally by half the lane width on each side, with the ends
// walked back/forward by e.Extension meters when Extension > 0.
func (e *Edge) ToArea() (Area, error) {
	return NewArea(e.Vertex1().Point, e.Vertex2().Point, e.Width(), e.Extension)
}

// Touches reports whether this edge's materialized Area possibly overlaps
// b. An edge whose Area cannot be constructed (width <= 0) never touches
// anything.
func (e *Edge) Touches(b Bounds) bool {
	a, err := e.ToArea()
	if err != nil {
		return false
	}
	return a.Touches(b)
}

// Contains reports whether this edge's materialized Area contains p.
func (e *Edge) Contains(p geo.Point) bool {
	a, err := e.ToArea()
	if err != nil {
		return false
	}
	return a.Contains(p)
}

// Type returns the entity type tag for an Edge.
func (e *Edge) Type() string { return "edge" }
