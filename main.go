// Command griddata interpolates a raster onto scattered points or the nodes
// of an ADCIRC mesh.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/gcfg.v1"

	"github.com/larschri/griddata/griddata"
	"github.com/larschri/griddata/mesh"
	"github.com/larschri/griddata/raster"
	"github.com/larschri/griddata/raster/gdalraster"
	"github.com/larschri/griddata/render"
	"github.com/larschri/griddata/server"
	"github.com/larschri/griddata/transform"
)

// settings of one run. Every field can be given in the [griddata] section
// of a run file and overridden by a command line flag of the same name.
type settings struct {
	Config string

	Raster     string
	Points     string
	Mesh       string
	Geographic bool
	Out        string
	Lookup     string

	Method         string
	Backup         string
	Filter         float64
	Threshold      string
	ThresholdValue float64 `gcfg:"threshold-value"`
	DatumShift     float64 `gcfg:"datum-shift"`
	Multiplier     float64
	Default        float64
	InMemory       bool `gcfg:"in-memory"`
	Directional    bool
	Workers        int

	SrcProj string `gcfg:"src-proj"`
	DstProj string `gcfg:"dst-proj"`

	Preview       string
	PreviewWidth  int `gcfg:"preview-width"`
	PreviewHeight int `gcfg:"preview-height"`

	Listen string
}

type runFile struct {
	Griddata settings
}

func defaultSettings() settings {
	c := griddata.DefaultConfig()
	return settings{
		Method:        griddata.Average.String(),
		Backup:        griddata.NoMethod.String(),
		Filter:        1,
		Multiplier:    c.Multiplier,
		Default:       c.DefaultValue,
		PreviewWidth:  800,
		PreviewHeight: 800,
	}
}

func newFlagSet(s *settings) *flag.FlagSet {
	fs := flag.NewFlagSet("griddata", flag.ContinueOnError)
	fs.StringVar(&s.Config, "config", s.Config, "run file with a [griddata] section; flags override it")
	fs.StringVar(&s.Raster, "raster", s.Raster, "raster file; .asc is read as an ESRI ASCII grid, anything else through GDAL")
	fs.StringVar(&s.Points, "points", s.Points, "query points, one 'x y resolution' row per point")
	fs.StringVar(&s.Mesh, "mesh", s.Mesh, "ADCIRC mesh whose nodes are the query points")
	fs.BoolVar(&s.Geographic, "geographic", s.Geographic, "mesh coordinates are longitude and latitude")
	fs.StringVar(&s.Out, "out", s.Out, "output file; stdout if empty")
	fs.StringVar(&s.Lookup, "lookup", s.Lookup, "class lookup table; enables the lookup path")
	fs.StringVar(&s.Method, "method", s.Method, "primary method")
	fs.StringVar(&s.Backup, "backup", s.Backup, "backup method")
	fs.Float64Var(&s.Filter, "filter", s.Filter, "filter size, or the number of pixels for the n-point methods")
	fs.StringVar(&s.Threshold, "threshold", s.Threshold, "keep only values 'above' or 'below' threshold-value")
	fs.Float64Var(&s.ThresholdValue, "threshold-value", s.ThresholdValue, "threshold value")
	fs.Float64Var(&s.DatumShift, "datum-shift", s.DatumShift, "added to raster values")
	fs.Float64Var(&s.Multiplier, "multiplier", s.Multiplier, "raster values are multiplied by this")
	fs.Float64Var(&s.Default, "default", s.Default, "value of points without usable data")
	fs.BoolVar(&s.InMemory, "in-memory", s.InMemory, "read the whole raster before computing")
	fs.BoolVar(&s.Directional, "directional", s.Directional, "compute 12 directional values per point")
	fs.IntVar(&s.Workers, "workers", s.Workers, "number of workers; 0 uses all CPUs")
	fs.StringVar(&s.SrcProj, "src-proj", s.SrcProj, "proj4 definition of the query points")
	fs.StringVar(&s.DstProj, "dst-proj", s.DstProj, "proj4 definition of the raster")
	fs.StringVar(&s.Preview, "preview", s.Preview, "write a PNG preview of the results")
	fs.IntVar(&s.PreviewWidth, "preview-width", s.PreviewWidth, "preview width in pixels")
	fs.IntVar(&s.PreviewHeight, "preview-height", s.PreviewHeight, "preview height in pixels")
	fs.StringVar(&s.Listen, "listen", s.Listen, "serve /value, /metrics and /debug/pprof on this address")
	return fs
}

// loadSettings parses args, reading the run file first when -config is
// given so that flags on the command line take precedence.
func loadSettings(args []string) (settings, error) {
	s := defaultSettings()
	if err := newFlagSet(&s).Parse(args); err != nil {
		return s, err
	}
	if s.Config == "" {
		return s, nil
	}

	file := runFile{Griddata: defaultSettings()}
	if err := gcfg.ReadFileInto(&file, s.Config); err != nil {
		return s, fmt.Errorf("failed to read run file: %w", err)
	}

	s = file.Griddata
	if err := newFlagSet(&s).Parse(args); err != nil {
		return s, err
	}
	return s, nil
}

func openRaster(fname string) *raster.Raster {
	if strings.EqualFold(filepath.Ext(fname), ".asc") {
		return raster.OpenASCII(fname)
	}
	return gdalraster.New(fname)
}

// readPoints reads rows of "x y resolution". Blank lines and lines starting
// with # are skipped.
func readPoints(r io.Reader) (xs, ys, res []float64, err error) {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < 3 {
			return nil, nil, nil, fmt.Errorf("line %d: expected 'x y resolution'", line)
		}
		var v [3]float64
		for k := range v {
			if v[k], err = strconv.ParseFloat(fields[k], 64); err != nil {
				return nil, nil, nil, fmt.Errorf("line %d: %w", line, err)
			}
		}
		xs, ys, res = append(xs, v[0]), append(ys, v[1]), append(res, v[2])
	}
	return xs, ys, res, sc.Err()
}

func readPointsFile(fname string) (xs, ys, res []float64, err error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, nil, nil, err
	}
	defer f.Close()

	xs, ys, res, err = readPoints(f)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("%s: %w", fname, err)
	}
	return xs, ys, res, nil
}

// newEngine creates the engine and applies all settings except the lookup
// table.
func newEngine(s settings, r *raster.Raster) (*griddata.Engine, error) {
	var e *griddata.Engine
	switch {
	case s.Mesh != "":
		m, err := mesh.ReadADCIRCFile(s.Mesh, s.Geographic)
		if err != nil {
			return nil, err
		}
		if e, err = griddata.NewFromMesh(m, r); err != nil {
			return nil, err
		}
	case s.Points != "":
		xs, ys, res, err := readPointsFile(s.Points)
		if err != nil {
			return nil, err
		}
		if e, err = griddata.New(r, xs, ys, res); err != nil {
			return nil, err
		}
	default:
		return nil, errors.New("either -points or -mesh is required")
	}

	if s.SrcProj != "" || s.DstProj != "" {
		rp, err := transform.NewReprojector(s.SrcProj, s.DstProj)
		if err != nil {
			return nil, err
		}
		if err := e.Reproject(rp); err != nil {
			return nil, err
		}
	}

	method, err := griddata.ParseMethod(s.Method)
	if err != nil {
		return nil, err
	}
	backup, err := griddata.ParseMethod(s.Backup)
	if err != nil {
		return nil, err
	}
	threshold, err := griddata.ParseThreshold(s.Threshold)
	if err != nil {
		return nil, err
	}

	e.SetMethod(method)
	e.SetBackup(backup)
	e.SetFilterSize(s.Filter)
	e.SetThreshold(threshold, s.ThresholdValue)
	e.SetDatumShift(s.DatumShift)
	e.SetMultiplier(s.Multiplier)
	e.SetDefaultValue(s.Default)
	e.SetRasterInMemory(s.InMemory)
	return e, nil
}

func writeScalar(w io.Writer, e *griddata.Engine, values []float64) error {
	bw := bufio.NewWriter(w)
	for i, v := range values {
		p := e.Attribute(i).Point
		fmt.Fprintf(bw, "%.10g %.10g %.10g\n", p.X, p.Y, v)
	}
	return bw.Flush()
}

func writeDirectional(w io.Writer, e *griddata.Engine, values [][griddata.Sectors]float64) error {
	bw := bufio.NewWriter(w)
	for i, v := range values {
		p := e.Attribute(i).Point
		fmt.Fprintf(bw, "%.10g %.10g", p.X, p.Y)
		for _, d := range v {
			fmt.Fprintf(bw, " %.10g", d)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}

func writePreview(fname string, s settings, e *griddata.Engine, values []float64) error {
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	points := make([]transform.Point, e.Len())
	for i := range points {
		points[i] = e.Attribute(i).Point
	}
	args := render.Args{Width: s.PreviewWidth, Height: s.PreviewHeight, NoData: s.Default}
	if err := render.WritePNG(f, args, points, values); err != nil {
		return err
	}
	return f.Close()
}

func serve(ctx context.Context, s settings, r *raster.Raster, cfg griddata.Config) error {
	l, err := net.Listen("tcp", s.Listen)
	if err != nil {
		return err
	}
	log.Printf("listening on %s", l.Addr())

	srv := server.Server{
		Raster:    r,
		Config:    cfg,
		UseLookup: s.Lookup != "",
		Listener:  l,
	}
	return srv.Serve(ctx)
}

func run(ctx context.Context, s settings, stdout io.Writer) error {
	if s.Raster == "" {
		return errors.New("-raster is required")
	}
	r := openRaster(s.Raster)
	defer r.Close()

	useLookup := s.Lookup != ""
	cfg := griddata.DefaultConfig()
	cfg.DefaultValue = s.Default

	// Without query points the server is the whole run.
	if s.Points == "" && s.Mesh == "" && s.Listen != "" {
		if useLookup {
			table, err := griddata.ReadLookupTable(s.Lookup, s.Default)
			if err != nil {
				return err
			}
			cfg.Lookup = table
		}
		return serve(ctx, s, r, cfg)
	}

	e, err := newEngine(s, r)
	if err != nil {
		return err
	}
	if useLookup {
		if err := e.ReadLookupTable(s.Lookup); err != nil {
			return err
		}
	}

	if s.Listen != "" {
		sctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			if err := serve(sctx, s, r, e.Config()); err != nil {
				log.Printf("server failed: %v", err)
			}
		}()
	}

	out := stdout
	if s.Out != "" {
		f, err := os.Create(s.Out)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	opts := griddata.ExecOptions{
		Workers: s.Workers,
		Logger:  log.Default(),
		Progress: func(done, total int) {
			if done%10000 == 0 || done == total {
				log.Printf("%d of %d points", done, total)
			}
		},
	}

	if s.Directional {
		values, err := e.ComputeDirectional(ctx, useLookup, opts)
		if err != nil {
			return err
		}
		return writeDirectional(out, e, values)
	}

	values, err := e.Compute(ctx, useLookup, opts)
	if err != nil {
		return err
	}
	if err := writeScalar(out, e, values); err != nil {
		return err
	}
	if s.Preview != "" {
		return writePreview(s.Preview, s, e, values)
	}
	return nil
}

func main() {
	s, err := loadSettings(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, s, os.Stdout); err != nil {
		log.Fatal(err)
	}
}
