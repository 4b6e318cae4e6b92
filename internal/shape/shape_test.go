package shape

import (
	"testing"

	"github.com/jpo-ppm/ppm/internal/geo"
	"github.com/tidwall/assert"
)

func TestBoundsInvariant(t *testing.T) {
	sw := geo.Location{Point: geo.Point{Lat: 1, Lon: 1}}
	ne := geo.Location{Point: geo.Point{Lat: 0, Lon: 2}}
	_, err := NewBounds(sw, ne)
	assert.Assert(err != nil)

	_, err = NewBounds(geo.Location{Point: geo.Point{Lat: 0, Lon: 0}}, geo.Location{Point: geo.Point{Lat: 1, Lon: 1}})
	assert.Assert(err == nil)
}

func TestBoundsTouchesContains(t *testing.T) {
	b, _ := NewBounds(
		geo.Location{Point: geo.Point{Lat: 0, Lon: 0}},
		geo.Location{Point: geo.Point{Lat: 10, Lon: 10}},
	)
	assert.Assert(b.Contains(geo.Point{Lat: 5, Lon: 5}))
	assert.Assert(!b.Contains(geo.Point{Lat: 11, Lon: 5}))

	other, _ := NewBounds(
		geo.Location{Point: geo.Point{Lat: 9, Lon: 9}},
		geo.Location{Point: geo.Point{Lat: 20, Lon: 20}},
	)
	assert.Assert(b.Touches(other))

	far, _ := NewBounds(
		geo.Location{Point: geo.Point{Lat: 50, Lon: 50}},
		geo.Location{Point: geo.Point{Lat: 60, Lon: 60}},
	)
	assert.Assert(!b.Touches(far))
}

func TestFuzzyBoundsExpandsByPercent(t *testing.T) {
	b, _ := NewBounds(
		geo.Location{Point: geo.Point{Lat: 0, Lon: 0}},
		geo.Location{Point: geo.Point{Lat: 10, Lon: 10}},
	)
	f := b.Fuzzy(0.01)
	assert.Assert(f.SW.Lat < b.SW.Lat)
	assert.Assert(f.NE.Lat > b.NE.Lat)
}

func TestVertexArenaSharedMutation(t *testing.T) {
	arena := NewVertexArena()
	idx, reused := arena.GetOrCreate(1, geo.Point{Lat: 1, Lon: 1})
	assert.Assert(!reused)

	idx2, reused2 := arena.GetOrCreate(1, geo.Point{Lat: 99, Lon: 99})
	assert.Assert(reused2)
	assert.Assert(idx == idx2)
	// first-seen position is kept, not the second caller's position.
	assert.Assert(arena.Location(idx2).Lat == 1)

	arena.UpdateLocation(idx, geo.Point{Lat: 2, Lon: 2})
	assert.Assert(arena.Location(idx2).Lat == 2)
}

func TestEdgeDegenerateIsError(t *testing.T) {
	arena := NewVertexArena()
	i1, _ := arena.GetOrCreate(1, geo.Point{Lat: 0, Lon: 0})
	i1dup, _ := arena.GetOrCreate(1, geo.Point{Lat: 0, Lon: 0})
	_, err := NewEdge(arena, 100, i1, i1dup, ClassLocal, true, 0)
	assert.Assert(err != nil)
}

func TestEdgeToAreaContainsEndpoints(t *testing.T) {
	arena := NewVertexArena()
	i1, _ := arena.GetOrCreate(1, geo.Point{Lat: 35.94911, Lon: -83.928343})
	i2, _ := arena.GetOrCreate(2, geo.Point{Lat: 35.951084, Lon: -83.930725})
	e, err := NewEdge(arena, 1, i1, i2, ClassResidential, true, 0)
	assert.Assert(err == nil)

	a, err := e.ToArea()
	assert.Assert(err == nil)
	assert.Assert(a.Contains(e.Vertex1().Point))
	assert.Assert(a.Contains(e.Vertex2().Point))
}

func TestAreaRejectsNonPositiveWidth(t *testing.T) {
	_, err := NewArea(geo.Point{Lat: 0, Lon: 0}, geo.Point{Lat: 0, Lon: 1}, 0, 0)
	assert.Assert(err != nil)
	_, err = NewArea(geo.Point{Lat: 0, Lon: 0}, geo.Point{Lat: 0, Lon: 1}, -5, 0)
	assert.Assert(err != nil)
}

func TestAreaOutsideEdgeSingleSide(t *testing.T) {
	a, err := NewArea(geo.Point{Lat: 0, Lon: 0}, geo.Point{Lat: 0, Lon: 0.01}, 10, 0)
	assert.Assert(err == nil)

	// Far north of the (near east-west) corridor: outside exactly one side.
	far := geo.Point{Lat: 10, Lon: 0.005}
	assert.Assert(!a.Contains(far))
	outsideCount := 0
	for i := 0; i < 4; i++ {
		if a.OutsideEdge(i, far) {
			outsideCount++
		}
	}
	assert.Assert(outsideCount == 1)
}

func TestCircleContainsAndNegativeRadius(t *testing.T) {
	c := Circle{Center: geo.Location{Point: geo.Point{Lat: 0, Lon: 0}}, Radius: 1000}
	assert.Assert(c.Contains(geo.Point{Lat: 0, Lon: 0}))
	assert.Assert(!c.Contains(geo.Point{Lat: 10, Lon: 10}))

	neg := Circle{Center: geo.Location{Point: geo.Point{Lat: 0, Lon: 0}}, Radius: -1}
	assert.Assert(!neg.Contains(geo.Point{Lat: 0, Lon: 0}))
}

func TestCircleContainsCircle(t *testing.T) {
	outer := Circle{Center: geo.Location{Point: geo.Point{Lat: 0, Lon: 0}}, Radius: 10000}
	inner := Circle{Center: geo.Location{Point: geo.Point{Lat: 0, Lon: 0.01}}, Radius: 100}
	assert.Assert(outer.ContainsCircle(inner))
}

func TestCircleTouchesBoundsEdge(t *testing.T) {
	b, _ := NewBounds(
		geo.Location{Point: geo.Point{Lat: 0, Lon: 0}},
		geo.Location{Point: geo.Point{Lat: 1, Lon: 1}},
	)
	// center well outside the box, but radius large enough to reach the
	// nearest (west) side.
	c := Circle{Center: geo.Location{Point: geo.Point{Lat: 0.5, Lon: -1}}, Radius: 200000}
	assert.Assert(c.Touches(b))

	far := Circle{Center: geo.Location{Point: geo.Point{Lat: 50, Lon: 50}}, Radius: 10}
	assert.Assert(!far.Touches(b))
}

func TestBuildGridRowsAndCols(t *testing.T) {
	nw := geo.Point{Lat: 1, Lon: 0}
	cells := BuildGrid(nw, 20000, 0, 1) // roughly a 111km x 111km box, 20km cells
	assert.Assert(len(cells) > 0)
	for _, c := range cells {
		assert.Assert(c.Bounds.SW.Lat <= c.Bounds.NE.Lat)
		assert.Assert(c.Bounds.SW.Lon <= c.Bounds.NE.Lon)
	}
}

func TestGridContains(t *testing.T) {
	b, _ := NewBounds(
		geo.Location{Point: geo.Point{Lat: 0, Lon: 0}},
		geo.Location{Point: geo.Point{Lat: 1, Lon: 1}},
	)
	g := Grid{Bounds: b, Row: 0, Col: 0}
	assert.Assert(g.Contains(geo.Point{Lat: 0.5, Lon: 0.5}))
	assert.Assert(!g.Contains(geo.Point{Lat: 2, Lon: 2}))
}
