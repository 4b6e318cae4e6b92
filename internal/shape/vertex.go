package shape

import "github.com/jpo-ppm/ppm/internal/geo"

// VertexArena is the single owning store for Vertex locations. Edges hold a
// stable index into the arena rather than a shared, reference-counted
// pointer (spec.md §9's "arena + stable vertex index" redesign of the
// source's shared-mutable-vertex model): mutating a vertex's location
// through UpdateLocation is observable by every Edge that references its
// index.
type VertexArena struct {
	uids []uint64
	locs []geo.Point
	byID map[uint64]int
}

// NewVertexArena returns an empty arena.
func NewVertexArena() *VertexArena {
	return &VertexArena{byID: make(map[uint64]int)}
}

// GetOrCreate returns the arena index for uid, creating it with pos if
// unseen. If uid was already present, its first-seen position is kept and
// reused is true; pos is not compared with the stored position. The shape
// loader logs a warning whenever reused is true.
func (a *VertexArena) GetOrCreate(uid uint64, pos geo.Point) (idx int, reused bool) {
	if i, ok := a.byID[uid]; ok {
		return i, true
	}
	idx = len(a.uids)
	a.uids = append(a.uids, uid)
	a.locs = append(a.locs, pos)
	a.byID[uid] = idx
	return idx, false
}

// UpdateLocation mutates the position stored at idx. Every Edge holding
// this index observes the new position immediately.
func (a *VertexArena) UpdateLocation(idx int, pos geo.Point) {
	a.locs[idx] = pos
}

// Location returns the current location at idx.
func (a *VertexArena) Location(idx int) geo.Location {
	return geo.Location{Point: a.locs[idx], UID: a.uids[idx], HasUID: true}
}

// UID returns the stable uid stored at idx.
func (a *VertexArena) UID(idx int) uint64 {
	return a.uids[idx]
}
