package config

import (
	"strings"
	"testing"

	"github.com/tidwall/assert"
)

func TestLoadParsesKeyValueLines(t *testing.T) {
	c := New()
	err := c.Load(strings.NewReader(`
# a comment
privacy.filter.velocity = ON
privacy.filter.velocity.min = 2.235
privacy.filter.velocity.max  =  35.763
privacy.redaction.id.included = B1, B2 ,B3
`))
	assert.Assert(err == nil)
	assert.Assert(c.Bool(KeyVelocityFilter))

	min, err := c.RequireFloat64(KeyVelocityMin)
	assert.Assert(err == nil)
	assert.Assert(min == 2.235)

	included := c.StringSlice(KeyRedactionIncluded)
	assert.Assert(len(included) == 3)
	assert.Assert(included[1] == "B2")
}

func TestSetOverridesFileValue(t *testing.T) {
	c := New()
	assert.Assert(c.Load(strings.NewReader("privacy.topic.consumer = bsm_in")) == nil)
	c.Set("privacy.topic.consumer", "bsm_in_override")
	assert.Assert(c.String(KeyTopicConsumer, "") == "bsm_in_override")
}

func TestRequireStringMissingIsError(t *testing.T) {
	c := New()
	_, err := c.RequireString(KeyGeofenceMapfile)
	assert.Assert(err != nil)
}

func TestLoadRejectsLineWithoutEquals(t *testing.T) {
	c := New()
	err := c.Load(strings.NewReader("not-a-valid-line"))
	assert.Assert(err != nil)
}

func TestBoolOnlyTrueForON(t *testing.T) {
	c := New()
	c.Set("x", "on")
	assert.Assert(c.Bool("x"))
	c.Set("x", "true")
	assert.Assert(!c.Bool("x"))
}
