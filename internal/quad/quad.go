// Package quad implements the PPM's spatial index: a recursive quadtree
// keyed by "fuzzy" (1%-inflated) bounds, holding heterogeneous shape
// entities and answering "what might contain point P" queries for the
// geofence filter.
package quad

import (
	"github.com/jpo-ppm/ppm/internal/geo"
	"github.com/jpo-ppm/ppm/internal/shape"
)

// MaxLevel bounds the recursion depth of the tree.
const MaxLevel = 6

// MaxElements is the per-leaf element count above which a split is
// attempted.
const MaxElements = 32

// MinDegrees is the smallest per-axis dimension, in degrees, a leaf may be
// split down to; a leaf whose would-be children would fall below this on
// every axis keeps growing instead of splitting.
const MinDegrees = 0.003

// fuzzyFactor is the fraction by which a node's bounds are inflated on
// each axis to produce its fuzzy_bounds.
const fuzzyFactor = 0.01

// node owns a bounds/fuzzy-bounds pair, its entities (if a leaf), and its
// children (if internal). A node is either a leaf (children nil, elements
// may be non-empty) or internal (elements empty, children non-nil).
type node struct {
	bounds   shape.Bounds
	fuzzy    shape.Bounds
	level    int
	elements []shape.Entity
	children []*node
}

func newLeaf(b shape.Bounds, level int) *node {
	return &node{bounds: b, fuzzy: b.Fuzzy(fuzzyFactor), level: level}
}

func (n *node) isLeaf() bool { return n.children == nil }

// Quad is the spatial index root.
type Quad struct {
	root *node
}

// New builds a single-leaf Quad spanning [sw, ne].
func New(sw, ne geo.Location) (*Quad, error) {
	b, err := shape.NewBounds(sw, ne)
	if err != nil {
		return nil, err
	}
	return &Quad{root: newLeaf(b, 0)}, nil
}

// Bounds returns the root node's bounds.
func (q *Quad) Bounds() shape.Bounds { return q.root.bounds }

// Insert recurses into every child whose fuzzy bounds are touched by e,
// appending e to each reached leaf and splitting any leaf that overflows.
// It returns true iff e touched at least one node's fuzzy bounds.
func Insert(q *Quad, e shape.Entity) bool {
	return insert(q.root, e)
}

func insert(n *node, e shape.Entity) bool {
	if !e.Touches(n.fuzzy) {
		return false
	}
	if !n.isLeaf() {
		touched := false
		for _, c := range n.children {
			if insert(c, e) {
				touched = true
			}
		}
		return touched
	}

	n.elements = append(n.elements, e)
	maybeSplit(n)
	return true
}

// maybeSplit splits a leaf that has overflowed MaxElements, provided the
// level budget and minimum-degree floor allow it; otherwise the leaf
// continues growing.
func maybeSplit(n *node) {
	if len(n.elements) <= MaxElements || n.level >= MaxLevel {
		return
	}

	w, h := n.bounds.Width(), n.bounds.Height()
	wSplit := w >= 2*MinDegrees
	hSplit := h >= 2*MinDegrees
	if !wSplit && !hSplit {
		return // remains a leaf, even over capacity
	}

	var childBounds []shape.Bounds
	switch {
	case wSplit && hSplit:
		childBounds = quadSplit(n.bounds) // NW, NE, SW, SE
	case wSplit:
		childBounds = horizontalSplit(n.bounds) // W, E
	default:
		childBounds = verticalSplit(n.bounds) // S, N
	}

	children := make([]*node, len(childBounds))
	for i, b := range childBounds {
		children[i] = newLeaf(b, n.level+1)
	}

	elems := n.elements
	n.elements = nil
	n.children = children

	for _, e := range elems {
		for _, c := range children {
			if e.Touches(c.fuzzy) {
				c.elements = append(c.elements, e)
			}
		}
	}
	// A straddling redistribution can, in principle, still overflow a
	// child; re-check each one.
	for _, c := range children {
		maybeSplit(c)
	}
}

func quadSplit(b shape.Bounds) []shape.Bounds {
	midLat := (b.SW.Lat + b.NE.Lat) / 2
	midLon := (b.SW.Lon + b.NE.Lon) / 2
	mk := func(swLat, swLon, neLat, neLon float64) shape.Bounds {
		sw := geo.Location{Point: geo.Point{Lat: swLat, Lon: swLon}}
		ne := geo.Location{Point: geo.Point{Lat: neLat, Lon: neLon}}
		nb, _ := shape.NewBounds(sw, ne)
		return nb
	}
	return []shape.Bounds{
		mk(midLat, b.SW.Lon, b.NE.Lat, midLon), // NW
		mk(midLat, midLon, b.NE.Lat, b.NE.Lon), // NE
		mk(b.SW.Lat, b.SW.Lon, midLat, midLon), // SW
		mk(b.SW.Lat, midLon, midLat, b.NE.Lon), // SE
	}
}

func horizontalSplit(b shape.Bounds) []shape.Bounds {
	midLon := (b.SW.Lon + b.NE.Lon) / 2
	mk := func(swLon, neLon float64) shape.Bounds {
		sw := geo.Location{Point: geo.Point{Lat: b.SW.Lat, Lon: swLon}}
		ne := geo.Location{Point: geo.Point{Lat: b.NE.Lat, Lon: neLon}}
		nb, _ := shape.NewBounds(sw, ne)
		return nb
	}
	return []shape.Bounds{
		mk(b.SW.Lon, midLon), // W
		mk(midLon, b.NE.Lon), // E
	}
}

func verticalSplit(b shape.Bounds) []shape.Bounds {
	midLat := (b.SW.Lat + b.NE.Lat) / 2
	mk := func(swLat, neLat float64) shape.Bounds {
		sw := geo.Location{Point: geo.Point{Lat: swLat, Lon: b.SW.Lon}}
		ne := geo.Location{Point: geo.Point{Lat: neLat, Lon: b.NE.Lon}}
		nb, _ := shape.NewBounds(sw, ne)
		return nb
	}
	return []shape.Bounds{
		mk(b.SW.Lat, midLat), // S
		mk(midLat, b.NE.Lat), // N
	}
}

// descend follows the single child whose fuzzy bounds contain p, returning
// the reached leaf, or nil if p is outside the root (or, degenerately,
// outside every child's fuzzy bounds at some internal node).
func descend(n *node, p geo.Point) *node {
	if !n.fuzzy.Contains(p) {
		return nil
	}
	if n.isLeaf() {
		return n
	}
	for _, c := range n.children {
		if c.fuzzy.Contains(p) {
			return descend(c, p)
		}
	}
	return nil
}

// RetrieveElements returns the full, unfiltered element list of the leaf
// reached by descending to p, or nil if p is outside the root's fuzzy
// bounds. The
// caller is responsible for testing which returned shapes actually contain
// p.
func RetrieveElements(q *Quad, p geo.Point) []shape.Entity {
	n := descend(q.root, p)
	if n == nil {
		return nil
	}
	return n.elements
}

// RetrieveBounds returns the bounds (or, if useFuzzy, the fuzzy bounds) of
// the leaf reached by descending to p.
func RetrieveBounds(q *Quad, p geo.Point, useFuzzy bool) (shape.Bounds, bool) {
	n := descend(q.root, p)
	if n == nil {
		return shape.Bounds{}, false
	}
	if useFuzzy {
		return n.fuzzy, true
	}
	return n.bounds, true
}

// RetrieveAllBounds enumerates the tree's node bounds (or fuzzy bounds),
// optionally restricted to leaves.
func RetrieveAllBounds(q *Quad, leavesOnly, fuzzy bool) []shape.Bounds {
	var out []shape.Bounds
	var walk func(n *node)
	walk = func(n *node) {
		pick := n.bounds
		if fuzzy {
			pick = n.fuzzy
		}
		if n.isLeaf() {
			out = append(out, pick)
			return
		}
		if !leavesOnly {
			out = append(out, pick)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(q.root)
	return out
}
