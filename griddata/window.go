package griddata

import (
	"math"

	"github.com/larschri/griddata/raster"
	"github.com/larschri/griddata/transform"
)

// calculation evaluates methods for single points against a shared raster
// and configuration.
type calculation struct {
	raster    *raster.Raster
	config    *Config
	useLookup bool
}

// sample is a usable pixel value near a query point.
type sample struct {
	loc   transform.Point
	dist  float64
	value float64
}

// samples returns the usable pixels within radius of p. A zero radius
// selects the pixel enclosing p. Raster values are thresholded when
// threshold is set; lookup values never are. onGrid is false when p is
// outside the raster.
func (c *calculation) samples(p transform.Point, radius float64, threshold bool) (s []sample, onGrid bool, err error) {
	ul, lr, n := c.raster.SearchBoxAroundPoint(p.X, p.Y, radius)
	if n == 0 {
		return nil, false, nil
	}

	inside := func(loc transform.Point) (float64, bool) {
		d := transform.Distance(p, loc)
		return d, radius <= 0 || d <= radius
	}

	if c.useLookup {
		window, err := c.raster.ClassWindow(ul.I, ul.J, lr.I, lr.J)
		if err != nil {
			return nil, true, err
		}
		for _, cv := range window {
			if !cv.Valid {
				continue
			}
			d, ok := inside(cv.Location)
			if !ok {
				continue
			}
			v, ok := c.config.lookup(cv.Class)
			if !ok {
				continue
			}
			s = append(s, sample{loc: cv.Location, dist: d, value: v})
		}
		return s, true, nil
	}

	window, err := c.raster.PixelWindow(ul.I, ul.J, lr.I, lr.J)
	if err != nil {
		return nil, true, err
	}
	for _, pv := range window {
		if !pv.Valid {
			continue
		}
		d, ok := inside(pv.Location)
		if !ok {
			continue
		}
		if threshold && !c.config.keep(pv.Value) {
			continue
		}
		s = append(s, sample{loc: pv.Location, dist: d, value: pv.Value})
	}
	return s, true, nil
}

// nearestSamples grows the search radius one cell at a time, starting with
// room for n points, until at least n samples are found or the window
// covers the raster.
func (c *calculation) nearestSamples(p transform.Point, n int) ([]sample, error) {
	step := c.raster.Dx()
	xmin, ymin, xmax, ymax := c.raster.Extent()
	limit := math.Hypot(xmax-xmin, ymax-ymin) + step

	for radius := step * float64(n/8+2); ; radius += step {
		s, onGrid, err := c.samples(p, radius, true)
		if err != nil || !onGrid {
			return nil, err
		}
		if len(s) >= n || radius >= limit {
			return s, nil
		}
	}
}

func values(s []sample) []float64 {
	v := make([]float64, len(s))
	for i := range s {
		v[i] = s[i].value
	}
	return v
}
