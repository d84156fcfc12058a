package transform

import (
	"fmt"

	"github.com/ctessum/geom/proj"
)

// Reprojector converts points between two reference systems given as proj4
// definitions.
type Reprojector struct {
	from, to string
	trans    proj.Transformer
}

// NewReprojector parses both definitions and prepares the transformation.
func NewReprojector(from, to string) (*Reprojector, error) {
	src, err := proj.Parse(from)
	if err != nil {
		return nil, fmt.Errorf("failed to parse source projection %q: %w", from, err)
	}

	dst, err := proj.Parse(to)
	if err != nil {
		return nil, fmt.Errorf("failed to parse target projection %q: %w", to, err)
	}

	trans, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to create transform: %w", err)
	}

	return &Reprojector{from: from, to: to, trans: trans}, nil
}

// Point reprojects a single point.
func (r *Reprojector) Point(p Point) (Point, error) {
	x, y, err := r.trans(p.X, p.Y)
	if err != nil {
		return Point{}, fmt.Errorf("failed to reproject (%g, %g): %w", p.X, p.Y, err)
	}
	return Point{X: x, Y: y}, nil
}

// Points reprojects pts in place.
func (r *Reprojector) Points(pts []Point) error {
	for i, p := range pts {
		q, err := r.Point(p)
		if err != nil {
			return err
		}
		pts[i] = q
	}
	return nil
}
