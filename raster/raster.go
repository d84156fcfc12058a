// Package raster implements access to gridded data stored in files.
//
// A Raster is opened once and then queried by coordinate or pixel index. Pixel
// data is either read from the underlying source on demand, one window at a
// time, or loaded into memory in full by ReadAllToMemory.
package raster

import (
	"fmt"
	"math"
	"sync"

	"github.com/larschri/griddata/transform"
)

// Raster is a single band georeferenced grid. The zero value is not usable;
// create rasters with New.
type Raster struct {
	name string
	open Opener

	// mu guards the fields below. Queries take the read lock.
	mu     sync.RWMutex
	src    Source
	isOpen bool
	store  *store

	// ioMu serializes reads against src.
	ioMu sync.Mutex

	xmin, xmax float64
	ymin, ymax float64
	dx, dy     float64
	northUp    bool
	nx, ny     int

	nodata     float64
	nodataInt  int32
	dataType   DataType
	projection string
}

// New returns an unopened raster. open is called by Open.
func New(name string, open Opener) *Raster {
	return &Raster{name: name, open: open}
}

// FromSource returns an unopened raster that uses src when opened.
func FromSource(name string, src Source) *Raster {
	return New(name, func() (Source, error) { return src, nil })
}

// Open opens the source and reads its metadata. Opening an open raster does
// nothing.
func (r *Raster) Open() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isOpen {
		return nil
	}

	src, err := r.open()
	if err != nil {
		return &OpenError{Name: r.name, Reason: "cannot open source", Err: err}
	}

	md, err := src.Metadata()
	if err != nil {
		src.Close()
		return &OpenError{Name: r.name, Reason: "cannot read metadata", Err: err}
	}

	if err := r.setMetadata(md); err != nil {
		src.Close()
		return err
	}

	r.src = src
	r.isOpen = true
	return nil
}

func (r *Raster) setMetadata(md Metadata) error {
	gt := md.GeoTransform
	switch {
	case md.XSize <= 0 || md.YSize <= 0:
		return &OpenError{Name: r.name, Reason: fmt.Sprintf("invalid size %dx%d", md.XSize, md.YSize)}
	case gt[2] != 0 || gt[4] != 0:
		return &OpenError{Name: r.name, Reason: "rotated geotransforms are not supported"}
	case gt[1] <= 0 || gt[5] == 0:
		return &OpenError{Name: r.name, Reason: fmt.Sprintf("invalid pixel size (%g, %g)", gt[1], gt[5])}
	case md.DataType != Integer && md.DataType != Float:
		return &OpenError{Name: r.name, Reason: fmt.Sprintf("unsupported data type %v", md.DataType)}
	}

	r.nx, r.ny = md.XSize, md.YSize
	r.dx = gt[1]
	r.dy = math.Abs(gt[5])
	r.northUp = gt[5] < 0
	r.xmin = gt[0]
	r.xmax = r.xmin + float64(r.nx)*r.dx
	if r.northUp {
		r.ymax = gt[3]
		r.ymin = r.ymax - float64(r.ny)*r.dy
	} else {
		r.ymin = gt[3]
		r.ymax = r.ymin + float64(r.ny)*r.dy
	}

	r.nodata = DefaultNoData
	if md.HasNoData {
		r.nodata = md.NoData
	}
	r.nodataInt = classNoData(r.nodata)
	r.dataType = md.DataType
	r.projection = md.Projection
	return nil
}

// Close releases the source and any in-memory copy. Closing a closed raster
// does nothing.
func (r *Raster) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isOpen {
		return nil
	}
	r.isOpen = false
	r.store = nil
	err := r.src.Close()
	r.src = nil
	return err
}

// IsOpen reports whether Open has succeeded and Close has not been called.
func (r *Raster) IsOpen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.isOpen
}

// ReadAllToMemory loads the full band into memory. Subsequent reads do not
// touch the source. Calling it more than once does nothing.
func (r *Raster) ReadAllToMemory() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isOpen {
		return &NotOpenError{Name: r.name, Op: "ReadAllToMemory"}
	}
	if r.store != nil {
		return nil
	}

	md := Metadata{XSize: r.nx, YSize: r.ny, DataType: r.dataType}
	r.ioMu.Lock()
	s, err := loadStore(r.src, md)
	r.ioMu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to read %s into memory: %w", r.name, err)
	}
	r.store = s
	return nil
}

// InMemory reports whether the band has been loaded by ReadAllToMemory.
func (r *Raster) InMemory() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.store != nil
}

func (r *Raster) Name() string { return r.name }
func (r *Raster) Dx() float64 { return r.dx }
func (r *Raster) Dy() float64 { return r.dy }
func (r *Raster) Nx() int { return r.nx }
func (r *Raster) Ny() int { return r.ny }
func (r *Raster) NoData() float64 { return r.nodata }
func (r *Raster) NoDataClass() int32 { return r.nodataInt }
func (r *Raster) DataType() DataType { return r.dataType }
func (r *Raster) Projection() string { return r.projection }

// Extent returns the outer edges of the raster.
func (r *Raster) Extent() (xmin, ymin, xmax, ymax float64) {
	return r.xmin, r.ymin, r.xmax, r.ymax
}

// PixelToCoordinate returns the center of pixel p.
func (r *Raster) PixelToCoordinate(p Pixel) transform.Point {
	x := r.xmin + (float64(p.I)+0.5)*r.dx
	if r.northUp {
		return transform.Point{X: x, Y: r.ymax - (float64(p.J)+0.5)*r.dy}
	}
	return transform.Point{X: x, Y: r.ymin + (float64(p.J)+0.5)*r.dy}
}

// CoordinateToPixel returns the pixel enclosing (x, y), or InvalidPixel if
// the point is outside the raster. Points on the outer edges belong to the
// last row or column.
func (r *Raster) CoordinateToPixel(x, y float64) Pixel {
	if r.nx == 0 || x < r.xmin || x > r.xmax || y < r.ymin || y > r.ymax || math.IsNaN(x) || math.IsNaN(y) {
		return InvalidPixel
	}

	i := int(math.Floor((x - r.xmin) / r.dx))
	var j int
	if r.northUp {
		j = int(math.Floor((r.ymax - y) / r.dy))
	} else {
		j = int(math.Floor((y - r.ymin) / r.dy))
	}
	return Pixel{I: clamp(i, 0, r.nx-1), J: clamp(j, 0, r.ny-1)}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SearchBoxAroundPoint returns the corners of the pixel box of half side
// halfSide centered on the pixel enclosing (x, y), clamped to the raster, and
// the number of pixels in the box. A point outside the raster gives two
// InvalidPixel corners and zero pixels.
func (r *Raster) SearchBoxAroundPoint(x, y, halfSide float64) (ul, lr Pixel, n int) {
	p := r.CoordinateToPixel(x, y)
	if !p.Valid() {
		return InvalidPixel, InvalidPixel, 0
	}

	ni := int(math.Round(halfSide / r.dx))
	nj := int(math.Round(halfSide / r.dy))
	ul = Pixel{I: clamp(p.I-ni, 0, r.nx-1), J: clamp(p.J-nj, 0, r.ny-1)}
	lr = Pixel{I: clamp(p.I+ni, 0, r.nx-1), J: clamp(p.J+nj, 0, r.ny-1)}
	return ul, lr, (lr.I - ul.I + 1) * (lr.J - ul.J + 1)
}

func (r *Raster) checkWindow(op string, i0, j0, i1, j1 int) error {
	if !r.isOpen {
		return &NotOpenError{Name: r.name, Op: op}
	}
	if i0 < 0 || j0 < 0 || i1 >= r.nx || j1 >= r.ny || i0 > i1 || j0 > j1 {
		return fmt.Errorf("%s: window (%d, %d)-(%d, %d) is outside raster %s", op, i0, j0, i1, j1, r.name)
	}
	return nil
}

// isNoData reports whether v is the no-data value. A NaN no-data value
// matches every NaN.
func (r *Raster) isNoData(v float64) bool {
	return v == r.nodata || (math.IsNaN(v) && math.IsNaN(r.nodata))
}

// PixelWindow reads the inclusive window from (i0, j0) to (i1, j1) as
// floating point values. Values equal to the no-data value are not Valid.
func (r *Raster) PixelWindow(i0, j0, i1, j1 int) ([]PixelValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkWindow("PixelWindow", i0, j0, i1, j1); err != nil {
		return nil, err
	}

	nx, ny := i1-i0+1, j1-j0+1
	result := make([]PixelValue, 0, nx*ny)

	if r.store != nil {
		windowReads.WithLabelValues("memory").Inc()
		for j := j0; j <= j1; j++ {
			for i := i0; i <= i1; i++ {
				v := r.store.float(i, j)
				result = append(result, PixelValue{
					Location: r.PixelToCoordinate(Pixel{i, j}),
					Valid:    !r.isNoData(v),
					Value:    v,
				})
			}
		}
		return result, nil
	}

	windowReads.WithLabelValues("source").Inc()
	buf := make([]float64, nx*ny)
	r.ioMu.Lock()
	err := r.src.ReadFloat(i0, j0, nx, ny, buf)
	r.ioMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read window from %s: %w", r.name, err)
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := buf[j*nx+i]
			result = append(result, PixelValue{
				Location: r.PixelToCoordinate(Pixel{i0 + i, j0 + j}),
				Valid:    !r.isNoData(v),
				Value:    v,
			})
		}
	}
	return result, nil
}

// ClassWindow reads the inclusive window from (i0, j0) to (i1, j1) as
// integer classes.
func (r *Raster) ClassWindow(i0, j0, i1, j1 int) ([]ClassValue, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if err := r.checkWindow("ClassWindow", i0, j0, i1, j1); err != nil {
		return nil, err
	}

	nx, ny := i1-i0+1, j1-j0+1
	result := make([]ClassValue, 0, nx*ny)

	if r.store != nil {
		windowReads.WithLabelValues("memory").Inc()
		for j := j0; j <= j1; j++ {
			for i := i0; i <= i1; i++ {
				v := r.store.class(i, j)
				result = append(result, ClassValue{
					Location: r.PixelToCoordinate(Pixel{i, j}),
					Valid:    v != r.nodataInt,
					Class:    v,
				})
			}
		}
		return result, nil
	}

	windowReads.WithLabelValues("source").Inc()
	buf := make([]int32, nx*ny)
	r.ioMu.Lock()
	err := r.src.ReadInt(i0, j0, nx, ny, buf)
	r.ioMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to read window from %s: %w", r.name, err)
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := buf[j*nx+i]
			result = append(result, ClassValue{
				Location: r.PixelToCoordinate(Pixel{i0 + i, j0 + j}),
				Valid:    v != r.nodataInt,
				Class:    v,
			})
		}
	}
	return result, nil
}

// PixelValue reads a single pixel as a floating point value.
func (r *Raster) PixelValue(p Pixel) (PixelValue, error) {
	if !p.Valid() {
		return PixelValue{Value: r.nodata}, nil
	}
	w, err := r.PixelWindow(p.I, p.J, p.I, p.J)
	if err != nil {
		return PixelValue{}, err
	}
	return w[0], nil
}

// PixelClass reads a single pixel as an integer class.
func (r *Raster) PixelClass(p Pixel) (ClassValue, error) {
	if !p.Valid() {
		return ClassValue{Class: r.nodataInt}, nil
	}
	w, err := r.ClassWindow(p.I, p.J, p.I, p.J)
	if err != nil {
		return ClassValue{}, err
	}
	return w[0], nil
}
