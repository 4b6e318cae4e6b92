package filter

import (
	"testing"

	"github.com/tidwall/assert"
)

func TestVelocityBandInclusiveAtEdges(t *testing.T) {
	v := Velocity{Min: 2.235, Max: 35.763}
	assert.Assert(!v.Suppress(2.235))
	assert.Assert(!v.Suppress(35.763))
	assert.Assert(v.Suppress(2.234))
	assert.Assert(v.Suppress(35.764))
}

func TestIDRedactorRoundTrip(t *testing.T) {
	r := NewIDRedactor("FFFFFFFF")
	r.RedactAll()
	assert.Assert(r.NumInclusions() == -1)

	r.ClearInclusions()
	assert.Assert(r.NumInclusions() == 0)
	assert.Assert(!r.ShouldRedact("B1"))

	r.AddIdInclusion("B1")
	assert.Assert(r.NumInclusions() == 1)
	assert.Assert(r.ShouldRedact("B1"))
	assert.Assert(!r.ShouldRedact("G0"))

	out, changed := r.Redact("B1")
	assert.Assert(changed)
	assert.Assert(out == "FFFFFFFF")

	out, changed = r.Redact("G0")
	assert.Assert(!changed)
	assert.Assert(out == "G0")
}

func TestIDRedactorRemoveInclusion(t *testing.T) {
	r := NewIDRedactor("X")
	r.AddIdInclusion("B1")
	r.AddIdInclusion("B2")
	assert.Assert(r.NumInclusions() == 2)

	r.RemoveIdInclusion("B1")
	assert.Assert(r.NumInclusions() == 1)
	assert.Assert(!r.ShouldRedact("B1"))
	assert.Assert(r.ShouldRedact("B2"))
}

func TestIDRedactorZeroValueRedactsNothing(t *testing.T) {
	var r IDRedactor
	assert.Assert(!r.ShouldRedact("anything"))
}
