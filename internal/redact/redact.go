// Package redact provides structural JSON editing by member name or
// dotted path, operating on a fully materialized document. Unlike the
// streaming handler, this is a tool-time utility: ad hoc document surgery
// for cmd/ppm-redact, not the hot path.
package redact

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

// RedactAllInstancesByName performs a depth-first traversal of root,
// removing every object member whose key equals member, however deeply
// nested. It returns the edited document and whether any removal occurred.
func RedactAllInstancesByName(root, member string) (string, bool) {
	result := root
	changed := false
	for {
		path, ok := findMemberPath(gjson.Parse(result), member, "")
		if !ok {
			break
		}
		updated, err := sjson.Delete(result, path)
		if err != nil {
			break
		}
		result = updated
		changed = true
	}
	return result, changed
}

// RedactByPath removes the member at the dot-separated path, if the full
// path resolves to an existing member. A missing intermediate returns
// false without mutating root.
func RedactByPath(root, path string) (string, bool) {
	if !gjson.Get(root, path).Exists() {
		return root, false
	}
	updated, err := sjson.Delete(root, path)
	if err != nil {
		return root, false
	}
	return updated, true
}

// SearchForMemberByName reports whether member appears as an object key
// anywhere in root, without mutating it.
func SearchForMemberByName(root, member string) bool {
	_, ok := findMemberPath(gjson.Parse(root), member, "")
	return ok
}

// SearchForMemberByPath reports whether path resolves to an existing
// member of root.
func SearchForMemberByPath(root, path string) bool {
	return gjson.Get(root, path).Exists()
}

// Pretty re-indents a JSON document for human-readable CLI output.
func Pretty(jsonStr string) string {
	return string(pretty.Pretty([]byte(jsonStr)))
}

// findMemberPath depth-first searches v for a key equal to member, returning
// the dotted path (gjson/sjson path syntax: array elements addressed by
// index) of the first match found.
func findMemberPath(v gjson.Result, member, prefix string) (string, bool) {
	switch {
	case v.IsObject():
		var (
			found string
			ok    bool
		)
		v.ForEach(func(key, val gjson.Result) bool {
			k := key.String()
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			if k == member {
				found, ok = path, true
				return false
			}
			if sub, sok := findMemberPath(val, member, path); sok {
				found, ok = sub, true
				return false
			}
			return true
		})
		return found, ok
	case v.IsArray():
		var (
			found string
			ok    bool
			idx   int
		)
		v.ForEach(func(_, val gjson.Result) bool {
			path := fmt.Sprintf("%s.%d", prefix, idx)
			idx++
			if sub, sok := findMemberPath(val, member, path); sok {
				found, ok = sub, true
				return false
			}
			return true
		})
		return found, ok
	default:
		return "", false
	}
}
