package render

// rgb accumulates weighted colors. The color of an image pixel is the
// weighted mean of all values that land on it.
type rgb struct {
	r, g, b float64
	w       float64
}

// mix returns a color between c (f=0) and c2 (f=1).
func (c rgb) mix(c2 rgb, f float64) rgb {
	return rgb{
		r: c.r*(1-f) + c2.r*f,
		g: c.g*(1-f) + c2.g*f,
		b: c.b*(1-f) + c2.b*f,
		w: 1,
	}
}

func (c rgb) add(c2 rgb) rgb {
	return rgb{c.r + c2.r*c2.w, c.g + c2.g*c2.w, c.b + c2.b*c2.w, c.w + c2.w}
}

// RGBA implements color.Color for the weighted mean. An empty accumulator is
// transparent.
func (c rgb) RGBA() (r, g, b, a uint32) {
	if c.w == 0 {
		return 0, 0, 0, 0
	}
	conv := func(v float64) uint32 {
		return uint32(v/c.w) * 0x101
	}
	return conv(c.r), conv(c.g), conv(c.b), 0xffff
}

var noData = rgb{r: 40, g: 40, b: 40, w: 1}
