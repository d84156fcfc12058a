package mesh

import (
	"math"
	"sort"

	"github.com/larschri/griddata/transform"
)

func cross(o, a, b transform.Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func onSegment(a, b, p transform.Point) bool {
	if cross(a, b, p) != 0 {
		return false
	}
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// contains reports whether p is inside poly or on its boundary.
func contains(poly []transform.Point, p transform.Point) bool {
	if len(poly) == 3 {
		d1 := cross(poly[0], poly[1], p)
		d2 := cross(poly[1], poly[2], p)
		d3 := cross(poly[2], poly[0], p)
		neg := d1 < 0 || d2 < 0 || d3 < 0
		pos := d1 > 0 || d2 > 0 || d3 > 0
		return !(neg && pos)
	}

	inside := false
	for i, j := 0, len(poly)-1; i < len(poly); j, i = i, i+1 {
		a, b := poly[j], poly[i]
		if onSegment(a, b, p) {
			return true
		}
		if (a.Y > p.Y) != (b.Y > p.Y) && p.X < (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y)+a.X {
			inside = !inside
		}
	}
	return inside
}

// barycentric returns the weights of p with respect to the triangle a, b, c.
func barycentric(a, b, c, p transform.Point) [3]float64 {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	w0 := ((b.Y-c.Y)*(p.X-c.X) + (c.X-b.X)*(p.Y-c.Y)) / denom
	w1 := ((c.Y-a.Y)*(p.X-c.X) + (a.X-c.X)*(p.Y-c.Y)) / denom
	return [3]float64{w0, w1, 1 - w0 - w1}
}

// weights returns the vertex weights of p inside poly. Polygons with more
// than three vertices are split into triangles around their centroid; the
// centroid weight is shared evenly between the vertices.
func weights(poly []transform.Point, p transform.Point) []float64 {
	if len(poly) == 3 {
		w := barycentric(poly[0], poly[1], poly[2], p)
		return w[:]
	}

	c := centroid(poly)
	order := make([]int, len(poly))
	for k := range order {
		order[k] = k
	}
	angle := func(k int) float64 { return math.Atan2(poly[k].Y-c.Y, poly[k].X-c.X) }
	sort.Slice(order, func(a, b int) bool { return angle(order[a]) < angle(order[b]) })

	result := make([]float64, len(poly))
	for k := range order {
		i, j := order[k], order[(k+1)%len(order)]
		tri := []transform.Point{poly[i], poly[j], c}
		if !contains(tri, p) {
			continue
		}
		w := barycentric(poly[i], poly[j], c, p)
		result[i] += w[0]
		result[j] += w[1]
		for n := range result {
			result[n] += w[2] / float64(len(poly))
		}
		return result
	}

	// Numerically outside every sub-triangle; fall back to the closest vertex.
	best := 0
	for k := range poly {
		if transform.Distance(poly[k], p) < transform.Distance(poly[best], p) {
			best = k
		}
	}
	result[best] = 1
	return result
}
