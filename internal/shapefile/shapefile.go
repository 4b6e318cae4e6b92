// Package shapefile parses the comma-separated geofence description file
// into shape entities and inserts them into a spatial index. It is a
// configuration-time loader, not part of the per-message hot path.
package shapefile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jpo-ppm/ppm/internal/geo"
	"github.com/jpo-ppm/ppm/internal/log"
	"github.com/jpo-ppm/ppm/internal/quad"
	"github.com/jpo-ppm/ppm/internal/shape"
)

// LoadError reports a malformed line: a wrong field count, an
// unparseable value, or an out-of-range coordinate. These are fatal —
// the caller should treat the whole map file as unusable.
type LoadError struct {
	Line    int
	Field   string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("shapefile: line %d, field %q: %s", e.Line, e.Field, e.Message)
}

// Blacklist rejects edges whose way_type attribute matches a known-bad
// value, counting rejections per way type.
type Blacklist struct {
	types       map[string]struct{}
	occurrences map[string]int
}

// NewBlacklist returns a Blacklist rejecting exactly the given way types.
func NewBlacklist(types ...string) *Blacklist {
	b := &Blacklist{types: make(map[string]struct{}), occurrences: make(map[string]int)}
	for _, t := range types {
		b.types[t] = struct{}{}
	}
	return b
}

// Rejects reports whether wayType is blacklisted, incrementing its
// occurrence counter as a side effect if so.
func (b *Blacklist) Rejects(wayType string) bool {
	if _, bad := b.types[wayType]; !bad {
		return false
	}
	b.occurrences[wayType]++
	return true
}

// Occurrences returns how many times wayType has been rejected so far.
func (b *Blacklist) Occurrences(wayType string) int {
	return b.occurrences[wayType]
}

var classByWayType = map[string]shape.RoadClass{
	"motorway":    shape.ClassMotorway,
	"trunk":       shape.ClassTrunk,
	"primary":     shape.ClassPrimary,
	"secondary":   shape.ClassSecondary,
	"residential": shape.ClassResidential,
	"service":     shape.ClassLocal,
	"local":       shape.ClassLocal,
}

func classForWayType(wayType string) shape.RoadClass {
	if c, ok := classByWayType[wayType]; ok {
		return c
	}
	return shape.ClassLocal
}

// Loader accumulates vertices and stats across one Load call.
type Loader struct {
	Blacklist *Blacklist
	Extension float64

	Arena *shape.VertexArena

	Edges   int
	Circles int
	Grids   int
}

// NewLoader returns a Loader that, when Load populates an index, applies
// extension meters of end-extension to every Edge-derived Area.
func NewLoader(blacklist *Blacklist, extension float64) *Loader {
	if blacklist == nil {
		blacklist = NewBlacklist()
	}
	return &Loader{Blacklist: blacklist, Extension: extension, Arena: shape.NewVertexArena()}
}

// Load reads lines from r, inserting the resulting entities into q. It
// returns the first fatal parse error, if any. Neither of these is fatal:
// an edge with a blacklisted way type is logged and skipped, and a reused
// vertex uid is logged and resolves to the first-seen vertex.
func (l *Loader) Load(r io.Reader, q *quad.Quad) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := l.loadLine(line, lineNo, q); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (l *Loader) loadLine(line string, lineNo int, q *quad.Quad) error {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	switch fields[0] {
	case "edge":
		return l.loadEdge(fields, lineNo, q)
	case "circle":
		return l.loadCircle(fields, lineNo, q)
	case "grid":
		return l.loadGrid(fields, lineNo, q)
	default:
		return &LoadError{Line: lineNo, Field: "type", Message: "unrecognized line type " + fields[0]}
	}
}

type vertexSpec struct {
	uid      uint64
	lat, lon float64
}

func parseVertexSpec(s string, lineNo int) (vertexSpec, error) {
	parts := strings.Split(s, ";")
	if len(parts) != 3 {
		return vertexSpec{}, &LoadError{Line: lineNo, Field: "vertex", Message: "expected uid;lat;lon"}
	}
	uid, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return vertexSpec{}, &LoadError{Line: lineNo, Field: "vertex.uid", Message: err.Error()}
	}
	lat, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return vertexSpec{}, &LoadError{Line: lineNo, Field: "vertex.lat", Message: err.Error()}
	}
	lon, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return vertexSpec{}, &LoadError{Line: lineNo, Field: "vertex.lon", Message: err.Error()}
	}
	if lat < -80 || lat > 80 {
		return vertexSpec{}, &LoadError{Line: lineNo, Field: "vertex.lat", Message: "latitude out of range [-80, 80]"}
	}
	if lon < -180 || lon > 180 {
		return vertexSpec{}, &LoadError{Line: lineNo, Field: "vertex.lon", Message: "longitude out of range [-180, 180]"}
	}
	return vertexSpec{uid: uid, lat: lat, lon: lon}, nil
}

func (l *Loader) loadEdge(fields []string, lineNo int, q *quad.Quad) error {
	if len(fields) < 3 {
		return &LoadError{Line: lineNo, Field: "edge", Message: "expected at least 3 comma fields"}
	}
	uid, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return &LoadError{Line: lineNo, Field: "edge.uid", Message: err.Error()}
	}

	vparts := strings.Split(fields[2], ":")
	if len(vparts) != 2 {
		return &LoadError{Line: lineNo, Field: "edge.vertices", Message: "expected v1:v2"}
	}
	v1, err := parseVertexSpec(vparts[0], lineNo)
	if err != nil {
		return err
	}
	v2, err := parseVertexSpec(vparts[1], lineNo)
	if err != nil {
		return err
	}
	if v1.uid == v2.uid {
		return &LoadError{Line: lineNo, Field: "edge.vertices", Message: "v1 and v2 must be distinct vertices"}
	}

	var wayType string
	hasWayType := false
	if len(fields) >= 4 && fields[3] != "" {
		for _, kv := range strings.Split(fields[3], ":") {
			kvParts := strings.SplitN(kv, "=", 2)
			if len(kvParts) != 2 {
				return &LoadError{Line: lineNo, Field: "edge.attrs", Message: "expected key=value"}
			}
			key := strings.TrimSpace(kvParts[0])
			val := strings.TrimSpace(kvParts[1])
			switch key {
			case "way_type":
				wayType, hasWayType = val, true
			case "way_id":
				if _, err := strconv.ParseInt(val, 10, 64); err != nil {
					return &LoadError{Line: lineNo, Field: "edge.way_id", Message: err.Error()}
				}
			}
		}
	}
	if hasWayType && l.Blacklist.Rejects(wayType) {
		log.Warnf("shapefile: line %d: rejecting edge %d, blacklisted way_type %q (occurrence %d)",
			lineNo, uid, wayType, l.Blacklist.Occurrences(wayType))
		return nil
	}

	i1, reused1 := l.Arena.GetOrCreate(v1.uid, geo.Point{Lat: v1.lat, Lon: v1.lon})
	if reused1 {
		log.Warnf("shapefile: line %d: vertex %d already exists, keeping first position", lineNo, v1.uid)
	}
	i2, reused2 := l.Arena.GetOrCreate(v2.uid, geo.Point{Lat: v2.lat, Lon: v2.lon})
	if reused2 {
		log.Warnf("shapefile: line %d: vertex %d already exists, keeping first position", lineNo, v2.uid)
	}

	edge, err := shape.NewEdge(l.Arena, uid, i1, i2, classForWayType(wayType), hasWayType, l.Extension)
	if err != nil {
		return &LoadError{Line: lineNo, Field: "edge", Message: err.Error()}
	}
	quad.Insert(q, edge)
	l.Edges++
	return nil
}

func (l *Loader) loadCircle(fields []string, lineNo int, q *quad.Quad) error {
	if len(fields) != 3 {
		return &LoadError{Line: lineNo, Field: "circle", Message: "expected 3 comma fields"}
	}
	uid, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return &LoadError{Line: lineNo, Field: "circle.uid", Message: err.Error()}
	}
	parts := strings.Split(fields[2], ":")
	if len(parts) != 3 {
		return &LoadError{Line: lineNo, Field: "circle", Message: "expected lat:lon:radius"}
	}
	lat, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return &LoadError{Line: lineNo, Field: "circle.lat", Message: err.Error()}
	}
	lon, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return &LoadError{Line: lineNo, Field: "circle.lon", Message: err.Error()}
	}
	radius, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return &LoadError{Line: lineNo, Field: "circle.radius", Message: err.Error()}
	}
	if lat < -80 || lat > 80 {
		return &LoadError{Line: lineNo, Field: "circle.lat", Message: "latitude out of range [-80, 80]"}
	}
	if lon < -180 || lon > 180 {
		return &LoadError{Line: lineNo, Field: "circle.lon", Message: "longitude out of range [-180, 180]"}
	}
	if radius < 0 {
		return &LoadError{Line: lineNo, Field: "circle.radius", Message: "radius must be >= 0"}
	}

	idx, reused := l.Arena.GetOrCreate(uid, geo.Point{Lat: lat, Lon: lon})
	if reused {
		log.Warnf("shapefile: line %d: vertex %d already exists, keeping first position", lineNo, uid)
	}
	c := shape.Circle{Center: l.Arena.Location(idx), Radius: radius}
	quad.Insert(q, c)
	l.Circles++
	return nil
}

func (l *Loader) loadGrid(fields []string, lineNo int, q *quad.Quad) error {
	if len(fields) != 3 {
		return &LoadError{Line: lineNo, Field: "grid", Message: "expected 3 comma fields"}
	}
	rc := strings.Split(fields[1], "_")
	if len(rc) != 2 {
		return &LoadError{Line: lineNo, Field: "grid.rowcol", Message: "expected row_col"}
	}
	row, err := strconv.Atoi(rc[0])
	if err != nil {
		return &LoadError{Line: lineNo, Field: "grid.row", Message: err.Error()}
	}
	col, err := strconv.Atoi(rc[1])
	if err != nil {
		return &LoadError{Line: lineNo, Field: "grid.col", Message: err.Error()}
	}

	parts := strings.Split(fields[2], ":")
	if len(parts) != 4 {
		return &LoadError{Line: lineNo, Field: "grid.bounds", Message: "expected swLat:swLon:neLat:neLon"}
	}
	vals := make([]float64, 4)
	names := [4]string{"grid.swLat", "grid.swLon", "grid.neLat", "grid.neLon"}
	for i, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return &LoadError{Line: lineNo, Field: names[i], Message: err.Error()}
		}
		vals[i] = v
	}
	swLat, swLon, neLat, neLon := vals[0], vals[1], vals[2], vals[3]
	for i, lat := range []float64{swLat, neLat} {
		if lat < -80 || lat > 80 {
			return &LoadError{Line: lineNo, Field: names[i*2], Message: "latitude out of range [-80, 80]"}
		}
	}
	for i, lon := range []float64{swLon, neLon} {
		if lon < -180 || lon > 180 {
			return &LoadError{Line: lineNo, Field: names[i*2+1], Message: "longitude out of range [-180, 180]"}
		}
	}

	b, err := shape.NewBounds(
		geo.Location{Point: geo.Point{Lat: swLat, Lon: swLon}},
		geo.Location{Point: geo.Point{Lat: neLat, Lon: neLon}},
	)
	if err != nil {
		return &LoadError{Line: lineNo, Field: "grid.bounds", Message: err.Error()}
	}
	g := shape.Grid{Bounds: b, Row: row, Col: col}
	quad.Insert(q, g)
	l.Grids++
	return nil
}
