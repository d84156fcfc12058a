package raster

import "fmt"

// store holds a full copy of a raster band. Only one of ints and floats is
// populated, depending on the band data type.
type store struct {
	nx     int
	ints   []int32
	floats []float64
}

func loadStore(src Source, md Metadata) (*store, error) {
	s := store{nx: md.XSize}
	n := md.XSize * md.YSize

	switch md.DataType {
	case Integer:
		s.ints = make([]int32, n)
		if err := src.ReadInt(0, 0, md.XSize, md.YSize, s.ints); err != nil {
			return nil, err
		}
	case Float:
		s.floats = make([]float64, n)
		if err := src.ReadFloat(0, 0, md.XSize, md.YSize, s.floats); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported data type %v", md.DataType)
	}
	return &s, nil
}

func (s *store) float(i, j int) float64 {
	if s.ints != nil {
		return float64(s.ints[j*s.nx+i])
	}
	return s.floats[j*s.nx+i]
}

func (s *store) class(i, j int) int32 {
	if s.ints != nil {
		return s.ints[j*s.nx+i]
	}
	return toClass(s.floats[j*s.nx+i])
}

// GridSource is a Source backed by a slice of values in row major order. The
// first row is the one at GeoTransform[3].
type GridSource struct {
	md     Metadata
	values []float64
}

// NewGridSource returns a source over values. The length of values must be
// md.XSize*md.YSize.
func NewGridSource(md Metadata, values []float64) (*GridSource, error) {
	if len(values) != md.XSize*md.YSize {
		return nil, fmt.Errorf("expected %d values, got %d", md.XSize*md.YSize, len(values))
	}
	return &GridSource{md: md, values: values}, nil
}

func (g *GridSource) Metadata() (Metadata, error) {
	return g.md, nil
}

func (g *GridSource) checkWindow(i0, j0, nx, ny, n int) error {
	if i0 < 0 || j0 < 0 || nx < 0 || ny < 0 || i0+nx > g.md.XSize || j0+ny > g.md.YSize {
		return fmt.Errorf("window (%d, %d, %d, %d) is outside the %dx%d grid", i0, j0, nx, ny, g.md.XSize, g.md.YSize)
	}
	if n < nx*ny {
		return fmt.Errorf("buffer holds %d values, need %d", n, nx*ny)
	}
	return nil
}

func (g *GridSource) ReadFloat(i0, j0, nx, ny int, buf []float64) error {
	if err := g.checkWindow(i0, j0, nx, ny, len(buf)); err != nil {
		return err
	}
	for j := 0; j < ny; j++ {
		copy(buf[j*nx:(j+1)*nx], g.values[(j0+j)*g.md.XSize+i0:])
	}
	return nil
}

func (g *GridSource) ReadInt(i0, j0, nx, ny int, buf []int32) error {
	if err := g.checkWindow(i0, j0, nx, ny, len(buf)); err != nil {
		return err
	}
	for j := 0; j < ny; j++ {
		row := g.values[(j0+j)*g.md.XSize+i0:]
		for i := 0; i < nx; i++ {
			buf[j*nx+i] = toClass(row[i])
		}
	}
	return nil
}

// Close does nothing.
func (g *GridSource) Close() error {
	return nil
}
