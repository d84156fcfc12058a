// Package spatial provides nearest neighbour queries over a fixed set of
// planar points.
package spatial

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// NotInitializedError is returned when an Index is queried before it has
// been built.
type NotInitializedError struct {
	Op string
}

func (e *NotInitializedError) Error() string {
	return fmt.Sprintf("%s: spatial index has not been built", e.Op)
}

// SizeMismatchError is returned when coordinate slices differ in length.
type SizeMismatchError struct {
	Xs, Ys int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("size mismatch: %d x values and %d y values", e.Xs, e.Ys)
}

// Index is an immutable kd-tree over a set of points. Results refer to the
// points by their position in the slices passed to New. The zero value is an
// index that has not been built.
type Index struct {
	tree *kdtree.Tree
	n    int
}

// New builds an index over the points (xs[i], ys[i]).
func New(xs, ys []float64) (*Index, error) {
	if len(xs) != len(ys) {
		return nil, &SizeMismatchError{Xs: len(xs), Ys: len(ys)}
	}

	pts := make(points, len(xs))
	for i := range xs {
		pts[i] = point{x: xs[i], y: ys[i], i: i}
	}
	if len(pts) == 0 {
		return &Index{tree: &kdtree.Tree{}}, nil
	}
	return &Index{tree: kdtree.New(pts, false), n: len(pts)}, nil
}

// Len is the number of indexed points.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return idx.n
}

func (idx *Index) check(op string) error {
	if idx == nil || idx.tree == nil {
		return &NotInitializedError{Op: op}
	}
	return nil
}

// Nearest returns the index of the point closest to (x, y), or -1 if the
// index is empty.
func (idx *Index) Nearest(x, y float64) (int, error) {
	if err := idx.check("Nearest"); err != nil {
		return -1, err
	}
	if idx.n == 0 {
		return -1, nil
	}

	c, _ := idx.tree.Nearest(point{x: x, y: y, i: -1})
	if c == nil {
		return -1, nil
	}
	return c.(point).i, nil
}

// KNearest returns the indices of the k points closest to (x, y), closest
// first. Fewer than k indices are returned if the index holds fewer points.
func (idx *Index) KNearest(x, y float64, k int) ([]int, error) {
	if err := idx.check("KNearest"); err != nil {
		return nil, err
	}
	if k <= 0 || idx.n == 0 {
		return nil, nil
	}
	return idx.collect(kdtree.NewNKeeper(k), x, y), nil
}

// WithinRadius returns the indices of all points at most r from (x, y),
// closest first.
func (idx *Index) WithinRadius(x, y, r float64) ([]int, error) {
	if err := idx.check("WithinRadius"); err != nil {
		return nil, err
	}
	if r < 0 || idx.n == 0 {
		return nil, nil
	}
	return idx.collect(kdtree.NewDistKeeper(r*r), x, y), nil
}

func (idx *Index) collect(k kdtree.Keeper, x, y float64) []int {
	idx.tree.NearestSet(k, point{x: x, y: y, i: -1})

	var found []kdtree.ComparableDist
	switch k := k.(type) {
	case *kdtree.NKeeper:
		found = k.Heap
	case *kdtree.DistKeeper:
		found = k.Heap
	}

	result := make([]kdtree.ComparableDist, 0, len(found))
	for _, cd := range found {
		if cd.Comparable != nil {
			result = append(result, cd)
		}
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].Dist != result[b].Dist {
			return result[a].Dist < result[b].Dist
		}
		return result[a].Comparable.(point).i < result[b].Comparable.(point).i
	})

	indices := make([]int, len(result))
	for n, cd := range result {
		indices[n] = cd.Comparable.(point).i
	}
	return indices
}
