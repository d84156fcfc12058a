package raster

// Metadata describes the single band of a raster source.
type Metadata struct {
	// GeoTransform is the affine transform from pixel to coordinates:
	// x = gt[0] + i*gt[1] + j*gt[2] and y = gt[3] + i*gt[4] + j*gt[5].
	GeoTransform [6]float64
	XSize        int
	YSize        int
	NoData       float64
	HasNoData    bool
	DataType     DataType
	Projection   string
}

// Source gives windowed access to the first band of a raster file.
// Implementations are not required to be safe for concurrent use.
type Source interface {
	Metadata() (Metadata, error)

	// ReadFloat fills buf (nx*ny values, row major) with the window starting
	// at column i0 and row j0.
	ReadFloat(i0, j0, nx, ny int, buf []float64) error

	// ReadInt is like ReadFloat but converts values to integers.
	ReadInt(i0, j0, nx, ny int, buf []int32) error

	Close() error
}

// Opener opens a source. It is called by Raster.Open.
type Opener func() (Source, error)
