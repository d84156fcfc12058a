package raster

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OpenASCII returns an unopened raster backed by an ESRI ASCII grid file.
func OpenASCII(fname string) *Raster {
	return New(fname, func() (Source, error) {
		f, err := os.Open(fname)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadASCII(f)
	})
}

// ReadASCII parses an ESRI ASCII grid. The grid is Integer if every value is
// written without a decimal point or exponent, Float otherwise.
func ReadASCII(r io.Reader) (*GridSource, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	sc.Split(bufio.ScanWords)

	var (
		md                     Metadata
		x, y, cell             float64
		center                 bool
		haveX, haveY, haveCell bool
		first                  string
	)
	header := map[string]bool{}

	for sc.Scan() {
		key := strings.ToLower(sc.Text())
		if _, err := strconv.ParseFloat(key, 64); err == nil {
			first = sc.Text()
			break
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("missing value for header %s", key)
		}
		val := sc.Text()
		header[key] = true

		var err error
		switch key {
		case "ncols":
			md.XSize, err = strconv.Atoi(val)
		case "nrows":
			md.YSize, err = strconv.Atoi(val)
		case "xllcorner", "xllcenter":
			x, err = strconv.ParseFloat(val, 64)
			center = key == "xllcenter"
			haveX = true
		case "yllcorner", "yllcenter":
			y, err = strconv.ParseFloat(val, 64)
			haveY = true
		case "cellsize":
			cell, err = strconv.ParseFloat(val, 64)
			haveCell = true
		case "nodata_value":
			md.NoData, err = strconv.ParseFloat(val, 64)
			md.HasNoData = true
		default:
			return nil, fmt.Errorf("unknown header %s", key)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse header %s: %w", key, err)
		}
	}

	if !header["ncols"] || !header["nrows"] || !haveX || !haveY || !haveCell {
		return nil, fmt.Errorf("incomplete header")
	}
	if md.XSize <= 0 || md.YSize <= 0 || cell <= 0 {
		return nil, fmt.Errorf("invalid grid %dx%d with cell size %g", md.XSize, md.YSize, cell)
	}

	if center {
		x -= cell / 2
		y -= cell / 2
	}
	md.GeoTransform = [6]float64{x, cell, 0, y + float64(md.YSize)*cell, 0, -cell}
	if !md.HasNoData {
		md.NoData = DefaultNoData
	}

	n := md.XSize * md.YSize
	values := make([]float64, 0, n)
	integer := true
	parse := func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("failed to parse value %d: %w", len(values), err)
		}
		if strings.ContainsAny(s, ".eE") {
			integer = false
		}
		values = append(values, v)
		return nil
	}

	if first != "" {
		if err := parse(first); err != nil {
			return nil, err
		}
	}
	for len(values) < n && sc.Scan() {
		if err := parse(sc.Text()); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(values) != n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(values))
	}

	md.DataType = Float
	if integer {
		md.DataType = Integer
	}
	return NewGridSource(md, values)
}

// WriteASCII writes values as an ESRI ASCII grid with square cells.
func WriteASCII(w io.Writer, md Metadata, values []float64) error {
	bw := bufio.NewWriter(w)
	ymin := md.GeoTransform[3] + float64(md.YSize)*md.GeoTransform[5]
	fmt.Fprintf(bw, "ncols %d\nnrows %d\n", md.XSize, md.YSize)
	fmt.Fprintf(bw, "xllcorner %g\nyllcorner %g\ncellsize %g\n", md.GeoTransform[0], ymin, md.GeoTransform[1])
	if md.HasNoData {
		fmt.Fprintf(bw, "NODATA_value %g\n", md.NoData)
	}
	for j := 0; j < md.YSize; j++ {
		for i := 0; i < md.XSize; i++ {
			if i > 0 {
				bw.WriteByte(' ')
			}
			bw.WriteString(strconv.FormatFloat(values[j*md.XSize+i], 'g', -1, 64))
		}
		bw.WriteByte('\n')
	}
	return bw.Flush()
}
