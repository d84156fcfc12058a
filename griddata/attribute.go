package griddata

import "github.com/larschri/griddata/transform"

// Attribute is the per point query description.
type Attribute struct {
	Point transform.Point

	// Resolution is the local length scale, usually the mesh size at the
	// point.
	Resolution float64

	// FilterSize scales the search window. For the N point methods it is
	// the number of points.
	FilterSize float64

	Method Method
	Backup Method
}

// NewAttribute returns an attribute with filter size 1, Average as method
// and no backup.
func NewAttribute(p transform.Point, resolution float64) Attribute {
	return Attribute{
		Point:      p,
		Resolution: resolution,
		FilterSize: 1,
		Method:     Average,
		Backup:     NoMethod,
	}
}

// QueryRadius is the radius of the search window.
func (a Attribute) QueryRadius() float64 {
	return a.Resolution * a.FilterSize * 0.5
}

// points is the number of pixels used by the N point methods.
func (a Attribute) points() int {
	n := int(a.FilterSize)
	if n < 1 {
		return 1
	}
	return n
}
