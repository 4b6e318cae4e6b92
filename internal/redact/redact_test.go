package redact

import (
	"testing"

	"github.com/tidwall/assert"
)

func TestRedactAllInstancesByNameNested(t *testing.T) {
	doc := `{"coreData":{"id":"G0","secure":{"id":"nested"}},"id":"outer"}`
	out, changed := RedactAllInstancesByName(doc, "id")
	assert.Assert(changed)
	assert.Assert(!SearchForMemberByName(out, "id"))
}

func TestRedactAllInstancesByNameNoMatch(t *testing.T) {
	doc := `{"coreData":{"speed":1}}`
	out, changed := RedactAllInstancesByName(doc, "id")
	assert.Assert(!changed)
	assert.Assert(out == doc)
}

func TestRedactByPathRemovesExactMember(t *testing.T) {
	doc := `{"coreData":{"id":"G0","speed":1}}`
	out, ok := RedactByPath(doc, "coreData.id")
	assert.Assert(ok)
	assert.Assert(!SearchForMemberByPath(out, "coreData.id"))
	assert.Assert(SearchForMemberByPath(out, "coreData.speed"))
}

func TestRedactByPathMissingIntermediateReturnsFalse(t *testing.T) {
	doc := `{"coreData":{"id":"G0"}}`
	out, ok := RedactByPath(doc, "coreData.position.latitude")
	assert.Assert(!ok)
	assert.Assert(out == doc)
}

func TestSearchForMemberByNameFindsArrayNesting(t *testing.T) {
	doc := `{"list":[{"a":1},{"id":"x"}]}`
	assert.Assert(SearchForMemberByName(doc, "id"))
}

func TestPrettyReindents(t *testing.T) {
	out := Pretty(`{"a":1}`)
	assert.Assert(out != `{"a":1}`)
	assert.Assert(SearchForMemberByName(out, "a"))
}
