package render

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/larschri/griddata/transform"
)

func TestIntAndFraction(t *testing.T) {
	for _, tc := range []struct {
		value, max float64
		i          int
		f          float64
	}{
		{-1, 10, 0, 0},
		{0, 10, 0, 0},
		{5, 10, 2, 0.5},
		{10, 10, 4, 1},
		{12, 10, 4, 1},
	} {
		i, f := intAndFraction(tc.value, tc.max, 6)
		if i != tc.i || f != tc.f {
			t.Errorf("%v/%v: expected (%d, %v), got (%d, %v)", tc.value, tc.max, tc.i, tc.f, i, f)
		}
	}
}

func TestGradientEnds(t *testing.T) {
	if c := valueGradient.getRGB(0, 0, 1); c != valueGradient[0] {
		t.Errorf("expected the first color, got %v", c)
	}
	if c := valueGradient.getRGB(1, 0, 1); c != valueGradient[len(valueGradient)-1] {
		t.Errorf("expected the last color, got %v", c)
	}
}

func TestBlend(t *testing.T) {
	c := rgb{}.add(rgb{r: 100, g: 0, b: 50, w: 1}).add(rgb{r: 0, g: 100, b: 50, w: 3})
	r, g, b, a := c.RGBA()
	if r>>8 != 25 || g>>8 != 75 || b>>8 != 50 || a != 0xffff {
		t.Errorf("unexpected blend %d %d %d %d", r>>8, g>>8, b>>8, a)
	}
	if _, _, _, a := (rgb{}).RGBA(); a != 0 {
		t.Errorf("expected an empty accumulator to be transparent")
	}
}

func TestCreateImage(t *testing.T) {
	points := []transform.Point{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}}
	values := []float64{1, 2, -9999}
	img := CreateImage(Args{Width: 11, Height: 11, NoData: -9999}, points, values)

	lower := img.RGBAAt(0, 10)
	upper := img.RGBAAt(10, 0)
	gray := img.RGBAAt(10, 10)

	if lower.A != 255 || upper.A != 255 || gray.A != 255 {
		t.Fatalf("expected opaque pixels at the points, got %v %v %v", lower, upper, gray)
	}
	if lower == upper {
		t.Errorf("expected different colors for different values")
	}
	if gray.R != 40 || gray.G != 40 || gray.B != 40 {
		t.Errorf("expected gray for no-data, got %v", gray)
	}
	if img.RGBAAt(5, 5).A != 0 {
		t.Errorf("expected an empty pixel between the points")
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	err := WritePNG(&buf, Args{Width: 4, Height: 3}, []transform.Point{{X: 1, Y: 1}}, []float64{3})
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 3 {
		t.Errorf("unexpected size %v", b)
	}
}
