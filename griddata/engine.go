// Package griddata interpolates raster data onto scattered query points,
// typically the nodes of an unstructured mesh.
//
// Every query point carries an Attribute with a primary and a backup
// Method. A point is computed with its primary method; if that finds no
// usable pixels the backup method is tried, and if that fails too the
// configured default value is reported.
package griddata

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/larschri/griddata/mesh"
	"github.com/larschri/griddata/raster"
	"github.com/larschri/griddata/transform"
)

// Engine holds the query points and settings of one interpolation run.
type Engine struct {
	raster     *raster.Raster
	attributes []Attribute
	config     Config
	inMemory   bool
}

// New creates an engine for the points (xs[i], ys[i]) with the local length
// scales resolution[i].
func New(r *raster.Raster, xs, ys, resolution []float64) (*Engine, error) {
	if len(ys) != len(xs) {
		return nil, &SizeMismatchError{What: "y values", Got: len(ys), Want: len(xs)}
	}
	if len(resolution) != len(xs) {
		return nil, &SizeMismatchError{What: "resolutions", Got: len(resolution), Want: len(xs)}
	}

	attrs := make([]Attribute, len(xs))
	for i := range xs {
		attrs[i] = NewAttribute(transform.Point{X: xs[i], Y: ys[i]}, resolution[i])
	}
	return &Engine{raster: r, attributes: attrs, config: DefaultConfig()}, nil
}

// NewFromMesh creates an engine for the nodes of m, using the mean size of
// the elements around each node as its resolution.
func NewFromMesh(m *mesh.Mesh, r *raster.Raster) (*Engine, error) {
	xs := make([]float64, len(m.Nodes))
	ys := make([]float64, len(m.Nodes))
	for i, n := range m.Nodes {
		xs[i], ys[i] = n.X, n.Y
	}
	return New(r, xs, ys, m.MeshSize())
}

// Reproject converts all query points with rp.
func (e *Engine) Reproject(rp *transform.Reprojector) error {
	for i := range e.attributes {
		p, err := rp.Point(e.attributes[i].Point)
		if err != nil {
			return fmt.Errorf("point %d: %w", i, err)
		}
		e.attributes[i].Point = p
	}
	return nil
}

func (e *Engine) Raster() *raster.Raster { return e.raster }
func (e *Engine) Len() int { return len(e.attributes) }
func (e *Engine) Attribute(i int) Attribute { return e.attributes[i] }
func (e *Engine) Config() Config { return e.config }

// SetConfig replaces all shared settings.
func (e *Engine) SetConfig(c Config) { e.config = c }

func (e *Engine) SetThreshold(t Threshold, value float64) {
	e.config.Threshold = t
	e.config.ThresholdValue = value
}

func (e *Engine) SetDatumShift(v float64) { e.config.DatumShift = v }
func (e *Engine) SetMultiplier(v float64) { e.config.Multiplier = v }
func (e *Engine) SetDefaultValue(v float64) { e.config.DefaultValue = v }
func (e *Engine) SetLookupTable(t []float64) { e.config.Lookup = t }

// ReadLookupTable reads the lookup table in fname, filling missing classes
// with the current default value.
func (e *Engine) ReadLookupTable(fname string) error {
	t, err := ReadLookupTable(fname, e.config.DefaultValue)
	if err != nil {
		return err
	}
	e.config.Lookup = t
	return nil
}

// SetRasterInMemory makes Compute load the raster into memory before
// computing.
func (e *Engine) SetRasterInMemory(b bool) { e.inMemory = b }
func (e *Engine) RasterInMemory() bool { return e.inMemory }

func (e *Engine) setEach(what string, n int, set func(i int)) error {
	if n != len(e.attributes) {
		return &SizeMismatchError{What: what, Got: n, Want: len(e.attributes)}
	}
	for i := range e.attributes {
		set(i)
	}
	return nil
}

// SetMethod sets the primary method of every point.
func (e *Engine) SetMethod(m Method) {
	for i := range e.attributes {
		e.attributes[i].Method = m
	}
}

// SetMethods sets the primary method of each point.
func (e *Engine) SetMethods(m []Method) error {
	return e.setEach("methods", len(m), func(i int) { e.attributes[i].Method = m[i] })
}

// SetBackup sets the backup method of every point.
func (e *Engine) SetBackup(m Method) {
	for i := range e.attributes {
		e.attributes[i].Backup = m
	}
}

// SetBackups sets the backup method of each point.
func (e *Engine) SetBackups(m []Method) error {
	return e.setEach("backup methods", len(m), func(i int) { e.attributes[i].Backup = m[i] })
}

// SetFilterSize sets the filter size of every point.
func (e *Engine) SetFilterSize(f float64) {
	for i := range e.attributes {
		e.attributes[i].FilterSize = f
	}
}

// SetFilterSizes sets the filter size of each point.
func (e *Engine) SetFilterSizes(f []float64) error {
	return e.setEach("filter sizes", len(f), func(i int) { e.attributes[i].FilterSize = f[i] })
}

func (e *Engine) Methods() []Method {
	m := make([]Method, len(e.attributes))
	for i, a := range e.attributes {
		m[i] = a.Method
	}
	return m
}

func (e *Engine) Backups() []Method {
	m := make([]Method, len(e.attributes))
	for i, a := range e.attributes {
		m[i] = a.Backup
	}
	return m
}

func (e *Engine) FilterSizes() []float64 {
	f := make([]float64, len(e.attributes))
	for i, a := range e.attributes {
		f[i] = a.FilterSize
	}
	return f
}

// prepare opens the raster and validates the settings for a run.
func (e *Engine) prepare(useLookup, directional bool) (*calculation, error) {
	if useLookup {
		if !directional && e.config.Threshold != NoThreshold {
			return nil, &ConfigError{Reason: "thresholds cannot be combined with a lookup table"}
		}
		if len(e.config.Lookup) == 0 {
			return nil, &ConfigError{Reason: "no lookup table"}
		}
	}

	if err := e.raster.Open(); err != nil {
		return nil, err
	}
	if e.inMemory {
		if err := e.raster.ReadAllToMemory(); err != nil {
			return nil, err
		}
	}

	cfg := e.config
	return &calculation{raster: e.raster, config: &cfg, useLookup: useLookup}, nil
}

func (e *Engine) span(ctx context.Context, name string, useLookup bool) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.Int("points", len(e.attributes)),
		attribute.Bool("lookup", useLookup),
		attribute.Bool("in_memory", e.inMemory),
		attribute.String("raster", e.raster.Name()),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// scalar computes one point, falling back from the primary method to the
// backup method to the default value.
func (c *calculation) scalar(a Attribute) (float64, error) {
	for k, m := range [2]Method{a.Method, a.Backup} {
		if m == NoMethod {
			break
		}
		v, err := c.value(a, m)
		if errors.Is(err, errNoUsableData) {
			continue
		}
		if err != nil {
			return 0, err
		}

		if k == 0 {
			pointsComputed.WithLabelValues(outcomePrimary).Inc()
		} else {
			pointsComputed.WithLabelValues(outcomeBackup).Inc()
		}
		if !c.useLookup {
			v = c.config.scale(v)
		}
		return v, nil
	}

	pointsComputed.WithLabelValues(outcomeDefault).Inc()
	return c.config.DefaultValue, nil
}

// Compute returns one value per query point, in order. Raster values are
// scaled by the multiplier and shifted by the datum shift; lookup values and
// default values are reported as is. Errors are returned only for failures
// that affect the whole run, such as an unreadable raster.
func (e *Engine) Compute(ctx context.Context, useLookup bool, opts ExecOptions) (result []float64, err error) {
	ctx, span := e.span(ctx, "griddata.Compute", useLookup)
	defer func() { endSpan(span, err) }()

	start := time.Now()
	c, err := e.prepare(useLookup, false)
	if err != nil {
		return nil, err
	}

	result, err = parallel(ctx, len(e.attributes), opts, func(i int) (float64, error) {
		v, err := c.scalar(e.attributes[i])
		if err != nil {
			return 0, fmt.Errorf("point %d: %w", i, err)
		}
		return v, nil
	})
	if err != nil {
		return nil, err
	}

	computeDuration.WithLabelValues("scalar").Observe(time.Since(start).Seconds())
	if opts.Logger != nil {
		opts.Logger.Printf("computed %d points from %s in %v", len(result), e.raster.Name(), time.Since(start))
	}
	return result, nil
}

// ComputeDirectional returns Sectors directional values per query point.
// Points with NoMethod as primary method get the default value in every
// sector, or zeros when useLookup is set.
func (e *Engine) ComputeDirectional(ctx context.Context, useLookup bool, opts ExecOptions) (result [][Sectors]float64, err error) {
	ctx, span := e.span(ctx, "griddata.ComputeDirectional", useLookup)
	defer func() { endSpan(span, err) }()

	start := time.Now()
	c, err := e.prepare(useLookup, true)
	if err != nil {
		return nil, err
	}

	result, err = parallel(ctx, len(e.attributes), opts, func(i int) ([Sectors]float64, error) {
		a := e.attributes[i]
		if a.Method == NoMethod {
			pointsComputed.WithLabelValues(outcomeDefault).Inc()
			if useLookup {
				return [Sectors]float64{}, nil
			}
			return uniform(c.config.DefaultValue), nil
		}

		v, err := c.directional(a)
		if err != nil {
			return v, fmt.Errorf("point %d: %w", i, err)
		}
		pointsComputed.WithLabelValues(outcomePrimary).Inc()
		return v, nil
	})
	if err != nil {
		return nil, err
	}

	computeDuration.WithLabelValues("directional").Observe(time.Since(start).Seconds())
	if opts.Logger != nil {
		opts.Logger.Printf("computed %d directional points from %s in %v", len(result), e.raster.Name(), time.Since(start))
	}
	return result, nil
}
