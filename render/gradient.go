package render

import (
	"github.com/lucasb-eyer/go-colorful"
)

// gradient is a sequence of colors for values from low to high.
type gradient []rgb

func hcl(h, c, l float64) rgb {
	cl := colorful.Hcl(h, c, l).Clamped()
	return rgb{255 * cl.R, 255 * cl.G, 255 * cl.B, 1}
}

var valueGradient = gradient{
	hcl(260, 0.45, 0.35),
	hcl(230, 0.45, 0.5),
	hcl(200, 0.45, 0.65),
	hcl(170, 0.45, 0.75),
	hcl(140, 0.45, 0.85),
	hcl(100, 0.45, 0.95),
}

// intAndFraction splits value in [0, max] into the index of a gradient
// segment and the position inside it.
func intAndFraction(value float64, max float64, length int) (int, float64) {
	if value <= 0 {
		return 0, 0
	}

	if value >= max {
		return length - 2, 1
	}

	r := float64(length-1) * value / max
	i := int(r)
	return i, r - float64(i)
}

// getRGB returns the color of value on a scale from lo to hi.
func (g gradient) getRGB(value, lo, hi float64) rgb {
	if hi <= lo {
		return g[len(g)-1]
	}
	i, f := intAndFraction(value-lo, hi-lo, len(g))
	return g[i].mix(g[i+1], f)
}
