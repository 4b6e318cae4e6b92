// Package geo implements the great-circle geometry primitives the PPM's
// shape layer is built on: points, locations, distance, bearing, midpoint
// and forward projection.
package geo

import "math"

// EarthRadius is the WGS-84 equatorial Earth radius in meters, used for all distance and
// projection math in this package.
const EarthRadius = 6378137.0

// Tolerance is the "approximately equal" window used by Near and by test
// assertions throughout the geo/shape packages.
const Tolerance = 1e-5

// Point is a bare lat/lon pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Equal reports exact float64 equality.
func (p Point) Equal(o Point) bool {
	return p.Lat == o.Lat && p.Lon == o.Lon
}

// Near reports whether p and o are within Tolerance of each other on both
// axes.
func (p Point) Near(o Point) bool {
	return math.Abs(p.Lat-o.Lat) <= Tolerance && math.Abs(p.Lon-o.Lon) <= Tolerance
}

// Location is a Point with an optional stable uid. Locations are equal
// only when all three fields match exactly.
type Location struct {
	Point
	UID    uint64
	HasUID bool
}

// Equal reports whether two locations match on position and uid.
func (l Location) Equal(o Location) bool {
	return l.Point.Equal(o.Point) && l.HasUID == o.HasUID && l.UID == o.UID
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// EquirectangularDistance is a fast planar approximation of distance in
// meters, valid for short ranges where curvature is negligible.
func EquirectangularDistance(a, b Point) float64 {
	φ1, φ2 := toRadians(a.Lat), toRadians(b.Lat)
	x := toRadians(b.Lon-a.Lon) * math.Cos((φ1+φ2)/2)
	y := φ2 - φ1
	return math.Sqrt(x*x+y*y) * EarthRadius
}

// HaversineDistance returns the great-circle distance in meters between a
// and b.
func HaversineDistance(a, b Point) float64 {
	φ1, φ2 := toRadians(a.Lat), toRadians(b.Lat)
	Δφ := toRadians(b.Lat - a.Lat)
	Δλ := toRadians(b.Lon - a.Lon)

	sinΔφ := math.Sin(Δφ / 2)
	sinΔλ := math.Sin(Δλ / 2)
	h := sinΔφ*sinΔφ + math.Cos(φ1)*math.Cos(φ2)*sinΔλ*sinΔλ
	return 2 * EarthRadius * math.Asin(math.Sqrt(h))
}

// InitialBearing returns the initial bearing in degrees, normalized to
// [0, 360), for the great-circle path from a to b.
func InitialBearing(a, b Point) float64 {
	φ1, φ2 := toRadians(a.Lat), toRadians(b.Lat)
	Δλ := toRadians(b.Lon - a.Lon)

	y := math.Sin(Δλ) * math.Cos(φ2)
	x := math.Cos(φ1)*math.Sin(φ2) - math.Sin(φ1)*math.Cos(φ2)*math.Cos(Δλ)
	θ := math.Atan2(y, x)
	brng := math.Mod(toDegrees(θ)+360, 360)
	return brng
}

// Midpoint returns the great-circle midpoint between a and b.
func Midpoint(a, b Point) Point {
	φ1, λ1 := toRadians(a.Lat), toRadians(a.Lon)
	φ2 := toRadians(b.Lat)
	Δλ := toRadians(b.Lon - a.Lon)

	bx := math.Cos(φ2) * math.Cos(Δλ)
	by := math.Cos(φ2) * math.Sin(Δλ)

	φ3 := math.Atan2(math.Sin(φ1)+math.Sin(φ2), math.Sqrt((math.Cos(φ1)+bx)*(math.Cos(φ1)+bx)+by*by))
	λ3 := λ1 + math.Atan2(by, math.Cos(φ1)+bx)

	return Point{Lat: toDegrees(φ3), Lon: normalizeLongitude(toDegrees(λ3))}
}

// ProjectPosition returns the point reached by travelling distMeters from
// origin along initial bearing bearingDeg (degrees), following the
// spherical forward-projection formula. It is stable across the poles: the
// spherical formula clamps latitude naturally and the result's longitude is
// normalized to (-180, 180].
func ProjectPosition(origin Point, bearingDeg, distMeters float64) Point {
	δ := distMeters / EarthRadius
	θ := toRadians(bearingDeg)
	φ1 := toRadians(origin.Lat)
	λ1 := toRadians(origin.Lon)

	φ2 := math.Asin(math.Sin(φ1)*math.Cos(δ) + math.Cos(φ1)*math.Sin(δ)*math.Cos(θ))
	λ2 := λ1 + math.Atan2(
		math.Sin(θ)*math.Sin(δ)*math.Cos(φ1),
		math.Cos(δ)-math.Sin(φ1)*math.Sin(φ2),
	)

	return Point{Lat: toDegrees(φ2), Lon: normalizeLongitude(toDegrees(λ2))}
}

// PointSegmentDistance returns the approximate planar distance in meters
// from p to the line segment [a,b]. Coordinates are projected into a local
// equirectangular plane centered on p's latitude before the standard
// point-to-segment formula is applied; accurate for the segment lengths
// shapes in this package deal in (bounds edges, road segments).
func PointSegmentDistance(p, a, b Point) float64 {
	toXY := func(q Point) (x, y float64) {
		φ0 := toRadians(p.Lat)
		x = toRadians(q.Lon-p.Lon) * math.Cos(φ0) * EarthRadius
		y = toRadians(q.Lat-p.Lat) * EarthRadius
		return
	}
	px, py := toXY(p)
	ax, ay := toXY(a)
	bx, by := toXY(b)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx := ax + t*dx
	cy := ay + t*dy
	return math.Hypot(px-cx, py-cy)
}

// normalizeLongitude folds lon into (-180, 180].
func normalizeLongitude(lon float64) float64 {
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	lon -= 180
	if lon == -180 {
		lon = 180
	}
	return lon
}
