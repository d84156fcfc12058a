package griddata

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/larschri/griddata/transform"
)

// strategy reduces the pixels around one query point to a value, or returns
// errNoUsableData.
type strategy func(c *calculation, a Attribute) (float64, error)

var strategies = [...]strategy{
	Average:                        average,
	Nearest:                        nearest,
	Highest:                        highest,
	PlusTwoSigma:                   plusTwoSigma,
	BilskieEtAl:                    bilskie,
	InverseDistanceWeighted:        inverseDistance,
	InverseDistanceWeightedNPoints: inverseDistanceN,
	AverageNearestNPoints:          averageN,
}

// value evaluates method m for a. Raster values are returned unscaled.
func (c *calculation) value(a Attribute, m Method) (float64, error) {
	if m <= NoMethod || int(m) >= len(strategies) {
		return 0, fmt.Errorf("no strategy for method %v", m)
	}
	return strategies[m](c, a)
}

func average(c *calculation, a Attribute) (float64, error) {
	s, _, err := c.samples(a.Point, a.QueryRadius(), true)
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return 0, errNoUsableData
	}
	return stat.Mean(values(s), nil), nil
}

func highest(c *calculation, a Attribute) (float64, error) {
	s, _, err := c.samples(a.Point, a.QueryRadius(), true)
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return 0, errNoUsableData
	}
	return floats.Max(values(s)), nil
}

// sigmas is the number of standard deviations above the mean a pixel must
// reach to be included by PlusTwoSigma.
const sigmas = 2

func plusTwoSigma(c *calculation, a Attribute) (float64, error) {
	s, _, err := c.samples(a.Point, a.QueryRadius(), true)
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return 0, errNoUsableData
	}

	v := values(s)
	mean, std := stat.PopMeanStdDev(v, nil)
	if std <= 1e-12*math.Max(1, math.Abs(mean)) {
		// All values are equal up to rounding.
		return mean, nil
	}

	cutoff := mean + sigmas*std
	var sum float64
	var n int
	for _, x := range v {
		if x >= cutoff {
			sum += x
			n++
		}
	}
	if n == 0 {
		return 0, errNoUsableData
	}
	return sum / float64(n), nil
}

func inverseDistance(c *calculation, a Attribute) (float64, error) {
	s, _, err := c.samples(a.Point, a.QueryRadius(), true)
	if err != nil {
		return 0, err
	}
	return weightedByDistance(s)
}

func weightedByDistance(s []sample) (float64, error) {
	if len(s) == 0 {
		return 0, errNoUsableData
	}
	var num, den float64
	for _, x := range s {
		if x.dist == 0 {
			return x.value, nil
		}
		num += x.value / x.dist
		den += 1 / x.dist
	}
	return num / den, nil
}

func nearest(c *calculation, a Attribute) (float64, error) {
	px := c.raster.CoordinateToPixel(a.Point.X, a.Point.Y)
	if !px.Valid() {
		return 0, errNoUsableData
	}
	center := c.raster.PixelToCoordinate(px)
	if r := a.QueryRadius(); r > 0 && transform.Distance(a.Point, center) > r {
		return 0, errNoUsableData
	}

	if c.useLookup {
		cv, err := c.raster.PixelClass(px)
		if err != nil {
			return 0, err
		}
		if !cv.Valid {
			return 0, errNoUsableData
		}
		v, ok := c.config.lookup(cv.Class)
		if !ok {
			return 0, errNoUsableData
		}
		return v, nil
	}

	pv, err := c.raster.PixelValue(px)
	if err != nil {
		return 0, err
	}
	if !pv.Valid || !c.config.keep(pv.Value) {
		return 0, errNoUsableData
	}
	return pv.Value, nil
}

// bilskie averages over half the filter when the resolution spans at least
// two raster cells, and takes the nearest pixel otherwise.
func bilskie(c *calculation, a Attribute) (float64, error) {
	if 0.25*2*a.Resolution/c.raster.Dx() >= 1 {
		a.FilterSize = 0.5
		return average(c, a)
	}
	return nearest(c, a)
}

func closest(s []sample, n int) []sample {
	sort.Slice(s, func(i, j int) bool { return s[i].dist < s[j].dist })
	if len(s) > n {
		s = s[:n]
	}
	return s
}

func inverseDistanceN(c *calculation, a Attribute) (float64, error) {
	s, err := c.nearestSamples(a.Point, a.points())
	if err != nil {
		return 0, err
	}
	return weightedByDistance(closest(s, a.points()))
}

func averageN(c *calculation, a Attribute) (float64, error) {
	s, err := c.nearestSamples(a.Point, a.points())
	if err != nil {
		return 0, err
	}
	s = closest(s, a.points())
	if len(s) == 0 {
		return 0, errNoUsableData
	}
	return stat.Mean(values(s), nil), nil
}
