// Package mesh holds unstructured triangle and quadrilateral meshes and
// locates points inside their elements.
package mesh

import (
	"fmt"
	"sync"

	"github.com/larschri/griddata/spatial"
	"github.com/larschri/griddata/transform"
)

// NotFound is the element index returned for points outside the mesh.
const NotFound = -1

// candidates is the number of elements, closest centroid first, tried by
// FindElement.
const candidates = 20

type Node struct {
	X, Y, Z float64
}

// Element refers to its vertices by node index, counterclockwise or
// clockwise. Elements have three or four vertices.
type Element struct {
	Nodes []int
}

// Mesh owns its nodes and elements. Geographic meshes have longitude in X
// and latitude in Y, and their sizes are measured along the earth surface.
type Mesh struct {
	Nodes      []Node
	Elements   []Element
	Geographic bool

	once      sync.Once
	centroids *spatial.Index
	indexErr  error
}

// New validates the elements against the nodes.
func New(nodes []Node, elements []Element, geographic bool) (*Mesh, error) {
	for e, el := range elements {
		if len(el.Nodes) < 3 || len(el.Nodes) > 4 {
			return nil, fmt.Errorf("element %d has %d vertices", e, len(el.Nodes))
		}
		for _, n := range el.Nodes {
			if n < 0 || n >= len(nodes) {
				return nil, fmt.Errorf("element %d refers to node %d of %d", e, n, len(nodes))
			}
		}
	}
	return &Mesh{Nodes: nodes, Elements: elements, Geographic: geographic}, nil
}

func (m *Mesh) point(n int) transform.Point {
	return transform.Point{X: m.Nodes[n].X, Y: m.Nodes[n].Y}
}

func (m *Mesh) polygon(e int) []transform.Point {
	el := m.Elements[e]
	poly := make([]transform.Point, len(el.Nodes))
	for k, n := range el.Nodes {
		poly[k] = m.point(n)
	}
	return poly
}

// Centroid is the vertex mean of element e.
func (m *Mesh) Centroid(e int) transform.Point {
	return centroid(m.polygon(e))
}

func centroid(poly []transform.Point) transform.Point {
	var c transform.Point
	for _, p := range poly {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(len(poly))
	c.Y /= float64(len(poly))
	return c
}

func (m *Mesh) distance(a, b transform.Point) float64 {
	if m.Geographic {
		return transform.GeodesicDistance(a, b)
	}
	return transform.Distance(a, b)
}

// ElementSize is the mean edge length of element e.
func (m *Mesh) ElementSize(e int) float64 {
	poly := m.polygon(e)
	var sum float64
	for k := range poly {
		sum += m.distance(poly[k], poly[(k+1)%len(poly)])
	}
	return sum / float64(len(poly))
}

// NodeElementTable lists, for each node, the elements it is a vertex of.
func (m *Mesh) NodeElementTable() [][]int {
	table := make([][]int, len(m.Nodes))
	for e, el := range m.Elements {
		for _, n := range el.Nodes {
			table[n] = append(table[n], e)
		}
	}
	return table
}

// MeshSize returns, for each node, the mean size of the elements around it.
// Nodes that belong to no element get zero.
func (m *Mesh) MeshSize() []float64 {
	sizes := make([]float64, len(m.Elements))
	for e := range m.Elements {
		sizes[e] = m.ElementSize(e)
	}

	result := make([]float64, len(m.Nodes))
	for n, elements := range m.NodeElementTable() {
		if len(elements) == 0 {
			continue
		}
		for _, e := range elements {
			result[n] += sizes[e]
		}
		result[n] /= float64(len(elements))
	}
	return result
}

// BuildElementIndex builds the centroid index used by FindElement. It is
// called by FindElement when needed.
func (m *Mesh) BuildElementIndex() error {
	m.once.Do(func() {
		xs := make([]float64, len(m.Elements))
		ys := make([]float64, len(m.Elements))
		for e := range m.Elements {
			c := m.Centroid(e)
			xs[e], ys[e] = c.X, c.Y
		}
		m.centroids, m.indexErr = spatial.New(xs, ys)
	})
	return m.indexErr
}

// FindElement returns the element containing (x, y) and the interpolation
// weights of its vertices. Only the elements with the closest centroids are
// examined. Points on a shared edge go to the candidate with the closest
// centroid. NotFound and zero weights are returned when no candidate
// contains the point.
func (m *Mesh) FindElement(x, y float64) (int, []float64, error) {
	if err := m.BuildElementIndex(); err != nil {
		return NotFound, nil, err
	}

	near, err := m.centroids.KNearest(x, y, candidates)
	if err != nil {
		return NotFound, nil, err
	}

	p := transform.Point{X: x, Y: y}
	for _, e := range near {
		poly := m.polygon(e)
		if !contains(poly, p) {
			continue
		}
		return e, weights(poly, p), nil
	}
	return NotFound, make([]float64, 3), nil
}

// Interpolate evaluates per node values at (x, y) using the weights of the
// enclosing element. ok is false for points outside the mesh.
func (m *Mesh) Interpolate(values []float64, x, y float64) (v float64, ok bool, err error) {
	e, w, err := m.FindElement(x, y)
	if err != nil || e == NotFound {
		return 0, false, err
	}
	for k, n := range m.Elements[e].Nodes {
		v += w[k] * values[n]
	}
	return v, true, nil
}
