package raster

import (
	"math"

	"github.com/larschri/griddata/transform"
)

// Pixel is a column/row index into a raster.
type Pixel struct {
	I int
	J int
}

// InvalidPixel is returned for coordinates that fall outside a raster.
var InvalidPixel = Pixel{I: math.MaxInt, J: math.MaxInt}

// Valid reports whether p is not the InvalidPixel sentinel.
func (p Pixel) Valid() bool {
	return p != InvalidPixel
}

// PixelValue is a pixel read as a floating point value.
type PixelValue struct {
	Location transform.Point
	Valid    bool
	Value    float64
}

// ClassValue is a pixel read as an integer class.
type ClassValue struct {
	Location transform.Point
	Valid    bool
	Class    int32
}

// DataType is the kind of values stored in a raster band.
type DataType int

const (
	Unknown DataType = iota
	Integer
	Float
)

func (t DataType) String() string {
	switch t {
	case Integer:
		return "integer"
	case Float:
		return "float"
	}
	return "unknown"
}

// DefaultNoData is used for rasters that do not declare a no-data value.
const DefaultNoData = -math.MaxFloat64

// classNoData converts a float no-data value to the value used when the raster
// is read as integers.
func classNoData(nodata float64) int32 {
	r := math.Round(nodata)
	if math.IsNaN(r) || r < math.MinInt32 || r > math.MaxInt32 {
		return math.MinInt32
	}
	return int32(r)
}

// toClass converts a floating point value to an integer class. Halves round
// away from zero, so -2.5 is class -3. GDAL may round negative halves
// differently when it converts a float band into an integer buffer, so the
// lookup path is only exact for Integer rasters. NaN becomes the NaN no-data
// class.
func toClass(v float64) int32 {
	r := math.Round(v)
	switch {
	case math.IsNaN(r), r < math.MinInt32:
		return math.MinInt32
	case r > math.MaxInt32:
		return math.MaxInt32
	}
	return int32(r)
}
