package stream

import (
	"testing"

	"github.com/jpo-ppm/ppm/internal/filter"
	"github.com/jpo-ppm/ppm/internal/geo"
	"github.com/jpo-ppm/ppm/internal/quad"
	"github.com/jpo-ppm/ppm/internal/shape"
	"github.com/tidwall/assert"
)

// buildFence approximates the UT-campus corridor used by §8's concrete
// scenarios: a 40m-wide Area running between two points such that G0's and
// B1's in-fence coordinates fall inside it and the designated out-of-fence
// point falls outside.
func buildFence(t *testing.T) *quad.Quad {
	t.Helper()
	a := geo.Point{Lat: 35.94911, Lon: -83.928343}
	b := geo.Point{Lat: 35.951084, Lon: -83.930725}
	area, err := shape.NewArea(a, b, 40, 0)
	assert.Assert(err == nil)

	q, err := quad.New(
		geo.Location{Point: geo.Point{Lat: 35.94, Lon: -83.94}},
		geo.Location{Point: geo.Point{Lat: 35.96, Lon: -83.92}},
	)
	assert.Assert(err == nil)
	assert.Assert(quad.Insert(q, area))
	return q
}

func buildConfig(t *testing.T) Config {
	r := filter.NewIDRedactor("FFFFFFFF")
	r.AddIdInclusion("B1")
	r.AddIdInclusion("B2")
	return Config{
		Flags:    All,
		Velocity: filter.Velocity{Min: 2.235, Max: 35.763},
		Geofence: buildFence(t),
		Redactor: r,
	}
}

func TestScenario1RetainedUnredacted(t *testing.T) {
	h := NewHandler(buildConfig(t))
	in := `{"coreData":{"id":"G0","position":{"latitude":35.94911,"longitude":-83.928343},"speed":22.0}}`
	ok, out, res := h.Process([]byte(in))
	assert.Assert(ok)
	assert.Assert(res == Success)
	assert.Assert(out == in)
}

func TestScenario2RetainedRedacted(t *testing.T) {
	h := NewHandler(buildConfig(t))
	in := `{"coreData":{"id":"B1","position":{"latitude":35.951084,"longitude":-83.930725},"speed":10.0}}`
	ok, out, res := h.Process([]byte(in))
	assert.Assert(ok)
	assert.Assert(res == Success)
	assert.Assert(out == `{"coreData":{"id":"FFFFFFFF","position":{"latitude":35.951084,"longitude":-83.930725},"speed":10.0}}`)
}

func TestScenario3SpeedLatchesAfterGeofencePasses(t *testing.T) {
	h := NewHandler(buildConfig(t))
	in := `{"coreData":{"id":"B1","position":{"latitude":35.951084,"longitude":-83.930725},"speed":99.0}}`
	ok, _, res := h.Process([]byte(in))
	assert.Assert(!ok)
	assert.Assert(res == Speed)
}

func TestScenario4OutsideFenceLatchesGeoposition(t *testing.T) {
	h := NewHandler(buildConfig(t))
	in := `{"coreData":{"id":"G0","position":{"latitude":35.9493,"longitude":-83.927489},"speed":22.0}}`
	ok, _, res := h.Process([]byte(in))
	assert.Assert(!ok)
	assert.Assert(res == Geoposition)
}

func TestScenario5SpeedLatchesPositionPasses(t *testing.T) {
	h := NewHandler(buildConfig(t))
	in := `{"coreData":{"id":"G0","position":{"latitude":35.949811,"longitude":-83.92909},"speed":0.5}}`
	ok, _, res := h.Process([]byte(in))
	assert.Assert(!ok)
	assert.Assert(res == Speed)
}

func TestScenario6MalformedJSONLatchesParse(t *testing.T) {
	h := NewHandler(buildConfig(t))
	ok, out, res := h.Process([]byte(`{:{},{:}}`))
	assert.Assert(!ok)
	assert.Assert(res == Parse)
	assert.Assert(out == "{")
}

func TestVelocityBandInclusiveBoundaries(t *testing.T) {
	cfg := buildConfig(t)
	h := NewHandler(cfg)

	in := `{"coreData":{"id":"G0","position":{"latitude":35.94911,"longitude":-83.928343},"speed":2.235}}`
	ok, _, res := h.Process([]byte(in))
	assert.Assert(ok)
	assert.Assert(res == Success)

	in = `{"coreData":{"id":"G0","position":{"latitude":35.94911,"longitude":-83.928343},"speed":35.763}}`
	ok, _, res = h.Process([]byte(in))
	assert.Assert(ok)
	assert.Assert(res == Success)
}

func TestPassThroughFieldsPreserveOrderAndNesting(t *testing.T) {
	h := NewHandler(buildConfig(t))
	in := `{"coreData":{"id":"G0","position":{"latitude":35.94911,"longitude":-83.928343},"speed":22.0,"extra":[1,2,{"a":true,"b":null}]},"metadata":{"schemaVersion":"1.0"}}`
	ok, out, res := h.Process([]byte(in))
	assert.Assert(ok)
	assert.Assert(res == Success)
	assert.Assert(out == in)
}

func TestFiltersCanBeDeactivated(t *testing.T) {
	r := filter.NewIDRedactor("FFFFFFFF")
	cfg := Config{
		Flags:    0,
		Velocity: filter.Velocity{Min: 2.235, Max: 35.763},
		Geofence: buildFence(t),
		Redactor: r,
	}
	h := NewHandler(cfg)
	// Way too fast and well outside the fence, but every filter is off.
	in := `{"coreData":{"id":"B1","position":{"latitude":0,"longitude":0},"speed":999.0}}`
	ok, out, res := h.Process([]byte(in))
	assert.Assert(ok)
	assert.Assert(res == Success)
	assert.Assert(out == in)
}

func TestReusedHandlerResetsBetweenMessages(t *testing.T) {
	h := NewHandler(buildConfig(t))
	_, _, res := h.Process([]byte(`{:{},{:}}`))
	assert.Assert(res == Parse)

	in := `{"coreData":{"id":"G0","position":{"latitude":35.94911,"longitude":-83.928343},"speed":22.0}}`
	ok, _, res := h.Process([]byte(in))
	assert.Assert(ok)
	assert.Assert(res == Success)
}
