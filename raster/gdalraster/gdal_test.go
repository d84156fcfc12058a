package gdalraster

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/lukeroth/gdal"

	"github.com/larschri/griddata/raster"
)

func writeGeoTIFF(t *testing.T, dt gdal.DataType, gt *[6]float64, data interface{}) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "test.tif")

	drv, err := gdal.GetDriverByName("GTiff")
	if err != nil {
		t.Fatal(err)
	}
	ds := drv.Create(fname, 3, 2, 1, dt, nil)
	if gt != nil {
		if err := ds.SetGeoTransform(*gt); err != nil {
			t.Fatal(err)
		}
	}
	band := ds.RasterBand(1)
	if err := band.SetNoDataValue(-9999); err != nil {
		t.Fatal(err)
	}
	if err := band.IO(gdal.Write, 0, 0, 3, 2, data, 3, 2, 0, 0); err != nil {
		t.Fatal(err)
	}
	ds.Close()
	return fname
}

func TestFloatRaster(t *testing.T) {
	gt := [6]float64{500, 10, 0, 1000, 0, -10}
	fname := writeGeoTIFF(t, gdal.Float32, &gt, []float32{1.5, 2.5, 3.5, 4.5, -9999, 6.5})

	r := New(fname)
	if err := r.Open(); err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.DataType() != raster.Float {
		t.Errorf("expected float, got %v", r.DataType())
	}
	if r.NoData() != -9999 {
		t.Errorf("expected no-data -9999, got %v", r.NoData())
	}
	if r.Nx() != 3 || r.Ny() != 2 || r.Dx() != 10 || r.Dy() != 10 {
		t.Errorf("unexpected grid %dx%d (%v, %v)", r.Nx(), r.Ny(), r.Dx(), r.Dy())
	}

	w, err := r.PixelWindow(0, 0, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if w[2].Value != 3.5 || !w[2].Valid || w[4].Valid {
		t.Errorf("unexpected window %+v", w)
	}

	if err := r.ReadAllToMemory(); err != nil {
		t.Fatal(err)
	}
	mem, err := r.PixelWindow(0, 0, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	for k := range w {
		if w[k] != mem[k] {
			t.Errorf("pixel %d: %+v != %+v", k, w[k], mem[k])
		}
	}
}

func TestIntegerRaster(t *testing.T) {
	gt := [6]float64{0, 1, 0, 2, 0, -1}
	fname := writeGeoTIFF(t, gdal.Int16, &gt, []int16{1, 2, 3, 4, -9999, 6})

	r := New(fname)
	if err := r.Open(); err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if r.DataType() != raster.Integer {
		t.Errorf("expected integer, got %v", r.DataType())
	}
	c, err := r.PixelClass(r.CoordinateToPixel(2.5, 1.5))
	if err != nil {
		t.Fatal(err)
	}
	if !c.Valid || c.Class != 3 {
		t.Errorf("expected class 3, got %+v", c)
	}
	c, err = r.PixelClass(raster.Pixel{I: 1, J: 1})
	if err != nil {
		t.Fatal(err)
	}
	if c.Valid {
		t.Errorf("expected no-data, got %+v", c)
	}
}

func TestMissingGeoTransform(t *testing.T) {
	fname := writeGeoTIFF(t, gdal.Float32, nil, []float32{1, 2, 3, 4, 5, 6})

	var openErr *raster.OpenError
	if err := New(fname).Open(); !errors.As(err, &openErr) {
		t.Errorf("expected OpenError, got %v", err)
	}
}

func TestMissingFile(t *testing.T) {
	var openErr *raster.OpenError
	if err := New(filepath.Join(t.TempDir(), "none.tif")).Open(); !errors.As(err, &openErr) {
		t.Errorf("expected OpenError, got %v", err)
	}
}
