package spatial

import "gonum.org/v1/gonum/spatial/kdtree"

// point is a kdtree.Comparable remembering its position in the input.
type point struct {
	x, y float64
	i    int
}

func (p point) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(point)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		panic("illegal dimension")
	}
}

func (p point) Dims() int { return 2 }

// Distance is the squared planar distance.
func (p point) Distance(c kdtree.Comparable) float64 {
	q := c.(point)
	dx := p.x - q.x
	dy := p.y - q.y
	return dx*dx + dy*dy
}

type points []point

func (p points) Index(i int) kdtree.Comparable         { return p[i] }
func (p points) Len() int                              { return len(p) }
func (p points) Slice(start, end int) kdtree.Interface { return p[start:end] }

func (p points) Pivot(d kdtree.Dim) int {
	return kdtree.Partition(plane{points: p, Dim: d}, kdtree.MedianOfRandoms(plane{points: p, Dim: d}, 100))
}

// plane sorts points along one dimension.
type plane struct {
	points
	kdtree.Dim
}

func (p plane) Less(i, j int) bool {
	switch p.Dim {
	case 0:
		return p.points[i].x < p.points[j].x
	case 1:
		return p.points[i].y < p.points[j].y
	default:
		panic("illegal dimension")
	}
}

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	return plane{points: p.points[start:end], Dim: p.Dim}
}

func (p plane) Swap(i, j int) {
	p.points[i], p.points[j] = p.points[j], p.points[i]
}
