package mesh

import (
	"github.com/dhconnelly/rtreego"

	"github.com/larschri/griddata/transform"
)

// minSide keeps degenerate element boxes non-empty.
const minSide = 1e-9

type elementBox struct {
	index int
	rect  rtreego.Rect
}

func (b elementBox) Bounds() rtreego.Rect {
	return b.rect
}

// BoundsIndex locates elements by their bounding boxes. Unlike FindElement
// it never misses an element that contains the point, at the cost of a
// larger index.
type BoundsIndex struct {
	mesh *Mesh
	tree *rtreego.Rtree
}

// NewBoundsIndex indexes the bounding boxes of all elements of m.
func NewBoundsIndex(m *Mesh) *BoundsIndex {
	tree := rtreego.NewTree(2, 25, 50)
	for e := range m.Elements {
		poly := m.polygon(e)
		lo, hi := poly[0], poly[0]
		for _, p := range poly[1:] {
			lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
			hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
		}
		rect, err := rtreego.NewRect(rtreego.Point{lo.X, lo.Y}, []float64{
			max(hi.X-lo.X, minSide),
			max(hi.Y-lo.Y, minSide),
		})
		if err != nil {
			continue
		}
		tree.Insert(elementBox{index: e, rect: rect})
	}
	return &BoundsIndex{mesh: m, tree: tree}
}

// FindElement returns the lowest numbered element containing (x, y) and its
// vertex weights, or NotFound.
func (b *BoundsIndex) FindElement(x, y float64) (int, []float64) {
	p := transform.Point{X: x, Y: y}
	found := NotFound
	for _, s := range b.tree.SearchIntersect(rtreego.Point{x, y}.ToRect(minSide)) {
		e := s.(elementBox).index
		if (found == NotFound || e < found) && contains(b.mesh.polygon(e), p) {
			found = e
		}
	}
	if found == NotFound {
		return NotFound, make([]float64, 3)
	}
	return found, weights(b.mesh.polygon(found), p)
}
