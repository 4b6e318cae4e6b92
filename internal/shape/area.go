package shape

import (
	"errors"
	"math"

	"github.com/jpo-ppm/ppm/internal/geo"
)

// ErrNonPositiveWidth is returned when constructing an Area with a
// non-positive road width.
var ErrNonPositiveWidth = errors.New("shape: area width must be > 0")

// Area is the oriented rectangle produced by extending an Edge orthogonally
// by half its road width, and optionally extending the ends by some
// distance. Corners are stored in the fixed order spec.md §3 requires: the
// nw, se corners of the "left" side of the edge, then of the "right" side.
type Area struct {
	NWLeft, SELeft   geo.Point
	NWRight, SERight geo.Point
}

// NewArea builds the Area implied by walking orthogonally from the edge
// v1->v2 by half of width on each side, first extending the endpoints
// along the edge bearing by ext meters (if ext > 0). width must be > 0.
func NewArea(v1, v2 geo.Point, width, ext float64) (Area, error) {
	if width <= 0 {
		return Area{}, ErrNonPositiveWidth
	}
	bearing := geo.InitialBearing(v1, v2)

	if ext > 0 {
		v1 = geo.ProjectPosition(v1, normalizeBearing(bearing+180), ext)
		v2 = geo.ProjectPosition(v2, bearing, ext)
	}

	half := width / 2
	leftBearing := normalizeBearing(bearing - 90)
	rightBearing := normalizeBearing(bearing + 90)

	return Area{
		NWLeft:  geo.ProjectPosition(v1, leftBearing, half),
		SELeft:  geo.ProjectPosition(v2, leftBearing, half),
		NWRight: geo.ProjectPosition(v1, rightBearing, half),
		SERight: geo.ProjectPosition(v2, rightBearing, half),
	}, nil
}

func normalizeBearing(b float64) float64 {
	b = math.Mod(b, 360)
	if b < 0 {
		b += 360
	}
	return b
}

// corners returns the four corners in traversal order around the
// rectangle's perimeter: NWLeft -> SELeft -> SERight -> NWRight.
func (a Area) corners() [4]geo.Point {
	return [4]geo.Point{a.NWLeft, a.SELeft, a.SERight, a.NWRight}
}

func cross(o, p, q geo.Point) float64 {
	return (p.Lon-o.Lon)*(q.Lat-o.Lat) - (p.Lat-o.Lat)*(q.Lon-o.Lon)
}

// sideSigns returns, for each of the four oriented sides, the sign of the
// cross product of that side against p (+1, -1, or 0 if p lies within
// onLineDegrees of the side's line).
func (a Area) sideSigns(p geo.Point) [4]float64 {
	// The corners come from spherical projection, so an edge endpoint can
	// sit a few nanodegrees off the planar end side; within about a
	// millimetre counts as on the line.
	const onLineDegrees = 1e-8
	c := a.corners()
	var signs [4]float64
	for i := 0; i < 4; i++ {
		o, q := c[i], c[(i+1)%4]
		d := cross(o, q, p) / math.Hypot(q.Lon-o.Lon, q.Lat-o.Lat)
		switch {
		case d > onLineDegrees:
			signs[i] = 1
		case d < -onLineDegrees:
			signs[i] = -1
		default:
			signs[i] = 0
		}
	}
	return signs
}

// Contains reports whether p lies on the same side of all four oriented
// sides of the rectangle (inclusive of the boundary).
func (a Area) Contains(p geo.Point) bool {
	signs := a.sideSigns(p)
	var want float64
	for _, s := range signs {
		if s == 0 {
			continue
		}
		if want == 0 {
			want = s
		} else if s != want {
			return false
		}
	}
	return true
}

// OutsideEdge reports whether p is outside exactly the single side i
// (0..3) of the rectangle; used for diagnostics. It returns false if p is
// inside, or outside more than one side at once (e.g. beyond a corner).
func (a Area) OutsideEdge(i int, p geo.Point) bool {
	if i < 0 || i > 3 {
		return false
	}
	signs := a.sideSigns(p)
	// Determine the polygon's own orientation from the turn at its first
	// corner, independent of where p lies.
	c := a.corners()
	var orientation float64
	switch turn := cross(c[0], c[1], c[2]); {
	case turn > 0:
		orientation = 1
	case turn < 0:
		orientation = -1
	default:
		return false
	}
	outsideCount := 0
	outsideIdx := -1
	for idx, s := range signs {
		if s != 0 && s != orientation {
			outsideCount++
			outsideIdx = idx
		}
	}
	return outsideCount == 1 && outsideIdx == i
}

// Touches reports whether the Area's axis-aligned bounding box possibly
// overlaps b.
func (a Area) Touches(b Bounds) bool {
	c := a.corners()
	minLat, maxLat := c[0].Lat, c[0].Lat
	minLon, maxLon := c[0].Lon, c[0].Lon
	for _, p := range c[1:] {
		minLat = math.Min(minLat, p.Lat)
		maxLat = math.Max(maxLat, p.Lat)
		minLon = math.Min(minLon, p.Lon)
		maxLon = math.Max(maxLon, p.Lon)
	}
	return b.SW.Lat <= maxLat && b.NE.Lat >= minLat &&
		b.SW.Lon <= maxLon && b.NE.Lon >= minLon
}

// Type returns the entity type tag for an Area.
func (a Area) Type() string { return "area" }
