// Package gdalraster reads rasters through GDAL.
package gdalraster

import (
	"errors"
	"fmt"

	"github.com/lukeroth/gdal"

	"github.com/larschri/griddata/raster"
)

// defaultGeoTransform is what GDAL reports for files without georeferencing.
var defaultGeoTransform = [6]float64{0, 1, 0, 0, 0, 1}

type source struct {
	fname string
	ds    gdal.Dataset
	band  gdal.RasterBand
}

// New returns an unopened raster for the first band of the file fname.
func New(fname string) *raster.Raster {
	return raster.New(fname, func() (raster.Source, error) {
		return open(fname)
	})
}

func open(fname string) (*source, error) {
	ds, err := gdal.Open(fname, gdal.ReadOnly)
	if err != nil {
		return nil, err
	}
	if ds.RasterCount() < 1 {
		ds.Close()
		return nil, errors.New("dataset has no raster bands")
	}
	return &source{fname: fname, ds: ds, band: ds.RasterBand(1)}, nil
}

func dataType(t gdal.DataType) (raster.DataType, error) {
	switch t {
	case gdal.Byte, gdal.Int16, gdal.UInt16, gdal.Int32, gdal.UInt32:
		return raster.Integer, nil
	case gdal.Float32, gdal.Float64:
		return raster.Float, nil
	}
	return raster.Unknown, fmt.Errorf("unsupported band data type %s", t.Name())
}

func (s *source) Metadata() (raster.Metadata, error) {
	gt := s.ds.GeoTransform()
	if gt == defaultGeoTransform {
		return raster.Metadata{}, fmt.Errorf("%s has no geotransform", s.fname)
	}

	dt, err := dataType(s.band.RasterDataType())
	if err != nil {
		return raster.Metadata{}, err
	}

	nodata, ok := s.band.NoDataValue()
	if !ok {
		nodata = raster.DefaultNoData
	}

	return raster.Metadata{
		GeoTransform: gt,
		XSize:        s.ds.RasterXSize(),
		YSize:        s.ds.RasterYSize(),
		NoData:       nodata,
		HasNoData:    ok,
		DataType:     dt,
		Projection:   s.ds.Projection(),
	}, nil
}

func (s *source) ReadFloat(i0, j0, nx, ny int, buf []float64) error {
	return s.band.IO(gdal.Read, i0, j0, nx, ny, buf, nx, ny, 0, 0)
}

func (s *source) ReadInt(i0, j0, nx, ny int, buf []int32) error {
	return s.band.IO(gdal.Read, i0, j0, nx, ny, buf, nx, ny, 0, 0)
}

func (s *source) Close() error {
	s.ds.Close()
	return nil
}
