package shapefile

import (
	"strings"
	"testing"

	"github.com/jpo-ppm/ppm/internal/geo"
	"github.com/jpo-ppm/ppm/internal/quad"
	"github.com/tidwall/assert"
)

func newQuad(t *testing.T) *quad.Quad {
	t.Helper()
	q, err := quad.New(
		geo.Location{Point: geo.Point{Lat: 0, Lon: 0}},
		geo.Location{Point: geo.Point{Lat: 10, Lon: 10}},
	)
	assert.Assert(err == nil)
	return q
}

func TestLoadEdgeCircleGrid(t *testing.T) {
	data := strings.Join([]string{
		"edge,1,101;1;1:102;2;2,way_type=residential",
		"circle,2,5:5:500",
		"grid,0_0,0:0:1:1",
	}, "\n")

	l := NewLoader(nil, 0)
	q := newQuad(t)
	err := l.Load(strings.NewReader(data), q)
	assert.Assert(err == nil)
	assert.Assert(l.Edges == 1)
	assert.Assert(l.Circles == 1)
	assert.Assert(l.Grids == 1)
}

func TestLoadRejectsBlacklistedWayType(t *testing.T) {
	l := NewLoader(NewBlacklist("footway"), 0)
	q := newQuad(t)
	err := l.Load(strings.NewReader("edge,1,101;1;1:102;2;2,way_type=footway"), q)
	assert.Assert(err == nil)
	assert.Assert(l.Edges == 0)
	assert.Assert(l.Blacklist.Occurrences("footway") == 1)
}

func TestLoadDuplicateVertexKeepsFirstPosition(t *testing.T) {
	l := NewLoader(nil, 0)
	q := newQuad(t)
	data := strings.Join([]string{
		"edge,1,101;1;1:102;2;2",
		"edge,2,101;9;9:103;3;3",
	}, "\n")
	err := l.Load(strings.NewReader(data), q)
	assert.Assert(err == nil)
	idx, reused := l.Arena.GetOrCreate(101, geo.Point{Lat: 99, Lon: 99})
	assert.Assert(reused)
	assert.Assert(l.Arena.Location(idx).Lat == 1)
}

func TestLoadRejectsDuplicateEndpointEdge(t *testing.T) {
	l := NewLoader(nil, 0)
	q := newQuad(t)
	err := l.Load(strings.NewReader("edge,1,101;1;1:101;1;1"), q)
	assert.Assert(err != nil)
}

func TestLoadRejectsOutOfRangeLatitude(t *testing.T) {
	l := NewLoader(nil, 0)
	q := newQuad(t)
	err := l.Load(strings.NewReader("circle,1,85:5:500"), q)
	assert.Assert(err != nil)
}

func TestLoadRejectsMalformedFieldCount(t *testing.T) {
	l := NewLoader(nil, 0)
	q := newQuad(t)
	err := l.Load(strings.NewReader("circle,1,5:5"), q)
	assert.Assert(err != nil)
}

func TestLoadSkipsBlankAndCommentLines(t *testing.T) {
	l := NewLoader(nil, 0)
	q := newQuad(t)
	data := "\n# a comment\ncircle,1,5:5:500\n\n"
	err := l.Load(strings.NewReader(data), q)
	assert.Assert(err == nil)
	assert.Assert(l.Circles == 1)
}
