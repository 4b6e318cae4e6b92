package bsm

import (
	"strings"
	"testing"

	"github.com/tidwall/assert"
)

func TestResetLifecycle(t *testing.T) {
	b := &BSM{ID: "G0", Lat: 1, Lon: 2, Velocity: 10}
	b.Reset()
	assert.Assert(b.ID == Unassigned)
	assert.Assert(b.Lat == 90.0)
	assert.Assert(b.Lon == 180.0)
	assert.Assert(b.Velocity == -1.0)
}

func TestLogStringContainsFields(t *testing.T) {
	b := &BSM{ID: "B1", Lat: 35.951084, Lon: -83.930725, Velocity: 10}
	s := b.LogString()
	assert.Assert(strings.Contains(s, "id=B1"))
	assert.Assert(strings.Contains(s, "geohash="))
	assert.Assert(strings.Contains(s, "velocity=10.000"))
}
