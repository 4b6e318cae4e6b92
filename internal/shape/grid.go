package shape

import (
	"math"

	"github.com/jpo-ppm/ppm/internal/geo"
)

// Grid is an axis-aligned Bounds tagged with its (row, col) coordinates in
// a tiling produced by BuildGrid.
type Grid struct {
	Bounds Bounds
	Row    int
	Col    int
}

// Contains is an axis-aligned interval test on lat and lon.
func (g Grid) Contains(p geo.Point) bool { return g.Bounds.Contains(p) }

// Touches reports whether g's bounds possibly overlap b.
func (g Grid) Touches(b Bounds) bool { return g.Bounds.Touches(b) }

// Type returns the entity type tag for a Grid cell.
func (g Grid) Type() string { return "grid" }

// BuildGrid tiles the rectangle bounded by nw (the north-west corner) and
// (seLat, seLon) (the south-east corner) into cells that are each exactly
// sideMeters on a side, measured by great-circle projection rather than a
// uniform degree step: every row's east-west step is recomputed at that
// row's own latitude, since a degree of longitude shrinks away from the
// equator. Partial cells at the far (south/east) edge are still emitted at
// full sideMeters size.
func BuildGrid(nw geo.Point, sideMeters, seLat, seLon float64) []Grid {
	if sideMeters <= 0 {
		return nil
	}

	nsDist := geo.HaversineDistance(geo.Point{Lat: nw.Lat, Lon: nw.Lon}, geo.Point{Lat: seLat, Lon: nw.Lon})
	rows := int(math.Ceil(nsDist / sideMeters))
	if rows < 1 {
		rows = 1
	}

	var cells []Grid
	rowNorthLat := nw.Lat
	for r := 0; r < rows; r++ {
		rowSouth := geo.ProjectPosition(geo.Point{Lat: rowNorthLat, Lon: nw.Lon}, 180, sideMeters)
		rowSouthLat := rowSouth.Lat

		ewDist := geo.HaversineDistance(
			geo.Point{Lat: rowNorthLat, Lon: nw.Lon},
			geo.Point{Lat: rowNorthLat, Lon: seLon},
		)
		cols := int(math.Ceil(ewDist / sideMeters))
		if cols < 1 {
			cols = 1
		}

		curLon := nw.Lon
		for c := 0; c < cols; c++ {
			east := geo.ProjectPosition(geo.Point{Lat: rowNorthLat, Lon: curLon}, 90, sideMeters)
			cellEastLon := east.Lon

			sw := geo.Location{Point: geo.Point{Lat: rowSouthLat, Lon: curLon}}
			ne := geo.Location{Point: geo.Point{Lat: rowNorthLat, Lon: cellEastLon}}
			cells = append(cells, Grid{
				Bounds: Bounds{SW: sw, NE: ne},
				Row:    r,
				Col:    c,
			})
			curLon = cellEastLon
		}
		rowNorthLat = rowSouthLat
	}
	return cells
}
