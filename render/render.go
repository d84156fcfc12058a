// Package render draws interpolated values as a preview image.
package render

import (
	"image"
	"image/png"
	"io"
	"math"

	"github.com/larschri/griddata/transform"
)

// Args describes the preview image.
type Args struct {
	Width  int
	Height int

	// NoData marks values that are drawn in gray and left out of the color
	// scale.
	NoData float64
}

// CreateImage plots values at points, scaled to fit the image. Points that
// fall on the same image pixel are blended.
func CreateImage(args Args, points []transform.Point, values []float64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, args.Width, args.Height))
	if len(points) == 0 || args.Width <= 0 || args.Height <= 0 {
		return img
	}

	xmin, ymin := math.Inf(1), math.Inf(1)
	xmax, ymax := math.Inf(-1), math.Inf(-1)
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, p := range points {
		xmin, xmax = math.Min(xmin, p.X), math.Max(xmax, p.X)
		ymin, ymax = math.Min(ymin, p.Y), math.Max(ymax, p.Y)
		if values[i] != args.NoData {
			lo, hi = math.Min(lo, values[i]), math.Max(hi, values[i])
		}
	}

	scale := math.Min(float64(args.Width-1)/math.Max(xmax-xmin, 1e-12), float64(args.Height-1)/math.Max(ymax-ymin, 1e-12))
	pixels := make([]rgb, args.Width*args.Height)

	for i, p := range points {
		col := int(math.Round((p.X - xmin) * scale))
		row := args.Height - 1 - int(math.Round((p.Y-ymin)*scale))
		if col < 0 || col >= args.Width || row < 0 || row >= args.Height {
			continue
		}

		c := noData
		if values[i] != args.NoData {
			c = valueGradient.getRGB(values[i], lo, hi)
		}
		pixels[row*args.Width+col] = pixels[row*args.Width+col].add(c)
	}

	for row := 0; row < args.Height; row++ {
		for col := 0; col < args.Width; col++ {
			c := pixels[row*args.Width+col]
			if c.w == 0 {
				continue
			}
			img.Set(col, row, c)
		}
	}
	return img
}

// WritePNG encodes the preview image as PNG.
func WritePNG(w io.Writer, args Args, points []transform.Point, values []float64) error {
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(w, CreateImage(args, points, values))
}
