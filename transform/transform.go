// Package transform contains the coordinate types shared by rasters, meshes
// and the interpolation engine, together with planar and geodesic distances.
package transform

import (
	"math"

	"github.com/golang/geo/s2"
)

// Point is an x/y pair. Points carry no reference system of their own; they
// are interpreted in the reference system of the raster or mesh they are
// compared against.
type Point struct {
	X float64
	Y float64
}

// Distance is the planar distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

const (
	equatorialRadius = 6378137.0
	polarRadius      = 6356752.3142
)

// earthRadius is the geocentric radius at the given latitude in degrees.
func earthRadius(lat float64) float64 {
	phi := lat * math.Pi / 180
	a2cos := equatorialRadius * equatorialRadius * math.Cos(phi)
	b2sin := polarRadius * polarRadius * math.Sin(phi)
	acos := equatorialRadius * math.Cos(phi)
	bsin := polarRadius * math.Sin(phi)
	return math.Sqrt((a2cos*a2cos + b2sin*b2sin) / (acos*acos + bsin*bsin))
}

// GeodesicDistance is the great circle distance in meters between a and b,
// where X is longitude and Y is latitude in degrees. The earth radius is
// taken at the mean latitude of the two points.
func GeodesicDistance(a, b Point) float64 {
	p := s2.LatLngFromDegrees(a.Y, a.X)
	q := s2.LatLngFromDegrees(b.Y, b.X)
	return p.Distance(q).Radians() * earthRadius((a.Y+b.Y)/2)
}
