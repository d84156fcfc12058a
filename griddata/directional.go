package griddata

import "math"

// Sectors is the number of directions reported by the directional methods.
const Sectors = 12

const (
	windRadius     = 10000.0
	windSigma      = 6.0
	distanceFactor = 1.0 / 1000

	// machineEpsilon is the float64 machine epsilon. It bounds the slope test
	// and, squared, the near test.
	machineEpsilon = 2.220446049250313e-16
	nearEpsilon    = machineEpsilon * machineEpsilon

	// minWeight is the smallest sector denominator that yields a mean.
	minWeight = 1e-12
)

// sectorTable maps the sign of the x offset (row) and the signed slope class
// of the offset (column) to a sector. Sectors are 30 degrees wide, numbered
// counterclockwise with sector 0 centered on west. -1 marks combinations that
// cannot occur.
var sectorTable = [3][7]int{
	{3, 2, 1, 0, 11, 10, 9},
	{3, -1, -1, -1, -1, -1, 9},
	{3, 4, 5, 6, 7, 8, 9},
}

var (
	tan15 = 2 - math.Sqrt(3)
	tan75 = 2 + math.Sqrt(3)
)

func sgn(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// sector classifies the offset (dx, dy).
func sector(dx, dy float64) int {
	tanxy := 1e7
	if math.Abs(dx) > machineEpsilon {
		tanxy = math.Abs(dy / dx)
	}
	k := minInt(1, int(tanxy/tan15)) + minInt(1, int(tanxy)) + minInt(1, int(tanxy/tan75))
	return sectorTable[sgn(dx)+1][k*sgn(dy)+3]
}

// directional computes Gaussian weighted sector means of the pixels within
// windRadius of the query point. Pixels too close to the query point to be
// classified add their weight to every sector.
func (c *calculation) directional(a Attribute) ([Sectors]float64, error) {
	var result [Sectors]float64

	s, _, err := c.samples(a.Point, windRadius, false)
	if err != nil {
		return result, err
	}

	var weight [Sectors]float64
	var nearWeight float64
	norm := 1 / (windSigma * math.Sqrt(2*math.Pi))

	for _, x := range s {
		dx := (x.loc.X - a.Point.X) * distanceFactor
		dy := (x.loc.Y - a.Point.Y) * distanceFactor
		d := dx*dx + dy*dy
		w := norm * math.Exp(-d/(2*windSigma*windSigma))

		if d <= nearEpsilon {
			nearWeight += w
			continue
		}
		dir := sector(dx, dy)
		result[dir] += w * x.value
		weight[dir] += w
	}

	for i := range result {
		w := weight[i] + nearWeight
		if w > minWeight {
			result[i] /= w
		} else {
			result[i] = 0
		}
	}
	return result, nil
}

// uniform returns all sectors set to v.
func uniform(v float64) [Sectors]float64 {
	var r [Sectors]float64
	for i := range r {
		r[i] = v
	}
	return r
}
