package griddata

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/larschri/griddata/mesh"
	"github.com/larschri/griddata/raster"
	"github.com/larschri/griddata/transform"
)

const nodata = -9999

// gridRaster returns a north up raster with its lower left corner at the
// origin.
func gridRaster(t testing.TB, nx, ny int, cell float64, dt raster.DataType, values []float64) *raster.Raster {
	t.Helper()
	src, err := raster.NewGridSource(raster.Metadata{
		GeoTransform: [6]float64{0, cell, 0, float64(ny) * cell, 0, -cell},
		XSize:        nx,
		YSize:        ny,
		NoData:       nodata,
		HasNoData:    true,
		DataType:     dt,
	}, values)
	if err != nil {
		t.Fatal(err)
	}
	return raster.FromSource("test", src)
}

func filled(n int, v float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = v
	}
	return values
}

func compute(t *testing.T, e *Engine, useLookup bool) []float64 {
	t.Helper()
	v, err := e.Compute(context.Background(), useLookup, ExecOptions{Workers: 3})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

func TestAverageSkipsNoData(t *testing.T) {
	for _, hole := range []int{0, 4, 8} {
		values := filled(9, 1)
		values[hole] = nodata
		r := gridRaster(t, 3, 3, 1, raster.Integer, values)

		e, err := New(r, []float64{1.5}, []float64{1.5}, []float64{3})
		if err != nil {
			t.Fatal(err)
		}
		if got := compute(t, e, false)[0]; got != 1 {
			t.Errorf("hole at %d: expected 1, got %v", hole, got)
		}
	}
}

func TestNaNNoDataFallsBack(t *testing.T) {
	values := filled(9, 1)
	values[4] = math.NaN()
	src, err := raster.NewGridSource(raster.Metadata{
		GeoTransform: [6]float64{0, 1, 0, 3, 0, -1},
		XSize:        3,
		YSize:        3,
		NoData:       math.NaN(),
		HasNoData:    true,
		DataType:     raster.Float,
	}, values)
	if err != nil {
		t.Fatal(err)
	}
	r := raster.FromSource("nan", src)

	e, err := New(r, []float64{1.5}, []float64{1.5}, []float64{3})
	if err != nil {
		t.Fatal(err)
	}
	e.SetBackup(Nearest)
	if got := compute(t, e, false)[0]; got != 1 {
		t.Errorf("average: expected 1, got %v", got)
	}

	e, err = New(r, []float64{1.5}, []float64{1.5}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	e.SetMethod(Nearest)
	if got := compute(t, e, false)[0]; got != -9999 {
		t.Errorf("nearest: expected the default value, got %v", got)
	}
}

func TestFallback(t *testing.T) {
	values := filled(25, nodata)
	values[24] = 7 // pixel (4, 4), centered at (4.5, 0.5)
	r := gridRaster(t, 5, 5, 1, raster.Float, values)

	e, err := New(r,
		[]float64{0.5, 4.5, 3.5, 20},
		[]float64{4.5, 0.5, 0.5, 20},
		[]float64{1, 1, 2.5, 1})
	if err != nil {
		t.Fatal(err)
	}
	e.SetDefaultValue(-1)
	if err := e.SetMethods([]Method{Average, Average, Nearest, Average}); err != nil {
		t.Fatal(err)
	}
	e.SetBackup(Average)

	got := compute(t, e, false)
	want := []float64{-1, 7, 7, -1}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestEmptyWindowIsNoUsableData(t *testing.T) {
	r := gridRaster(t, 4, 4, 1, raster.Float, filled(16, nodata))
	if err := r.Open(); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	c := &calculation{raster: r, config: &cfg}
	a := NewAttribute(transform.Point{X: 2, Y: 2}, 4)

	for _, m := range []Method{Average, Nearest, Highest, PlusTwoSigma, InverseDistanceWeighted, BilskieEtAl, InverseDistanceWeightedNPoints, AverageNearestNPoints} {
		if _, err := c.value(a, m); !errors.Is(err, errNoUsableData) {
			t.Errorf("%v: expected no usable data, got %v", m, err)
		}
	}

	a.Point = transform.Point{X: -10, Y: 2}
	for _, m := range []Method{Average, Nearest, AverageNearestNPoints} {
		if _, err := c.value(a, m); !errors.Is(err, errNoUsableData) {
			t.Errorf("%v outside the raster: expected no usable data, got %v", m, err)
		}
	}
}

func ramp(nx, ny int) []float64 {
	values := make([]float64, nx*ny)
	for i := range values {
		values[i] = float64(i) + 0.25
	}
	return values
}

func TestZeroRadiusNearestMatchesAverage(t *testing.T) {
	r := gridRaster(t, 10, 8, 2, raster.Float, ramp(10, 8))
	rnd := rand.New(rand.NewSource(5))

	var xs, ys, res []float64
	for i := 0; i < 50; i++ {
		xs = append(xs, rnd.Float64()*20)
		ys = append(ys, rnd.Float64()*16)
		res = append(res, 0)
	}

	e, err := New(r, xs, ys, res)
	if err != nil {
		t.Fatal(err)
	}
	avg := compute(t, e, false)
	e.SetMethod(Nearest)
	near := compute(t, e, false)

	for i := range avg {
		if avg[i] != near[i] {
			t.Errorf("point %d: average %v != nearest %v", i, avg[i], near[i])
		}
		if avg[i] == e.Config().DefaultValue {
			t.Errorf("point %d: unexpected default", i)
		}
	}
}

func TestNearestRespectsRadius(t *testing.T) {
	r := gridRaster(t, 2, 2, 10, raster.Float, []float64{1, 2, 3, 4})
	e, err := New(r, []float64{1, 5}, []float64{19, 15}, []float64{4, 4})
	if err != nil {
		t.Fatal(err)
	}
	e.SetMethod(Nearest)
	got := compute(t, e, false)
	if got[0] != -9999 || got[1] != 1 {
		t.Errorf("expected [-9999 1], got %v", got)
	}
}

func TestHighestAndIDW(t *testing.T) {
	r := gridRaster(t, 3, 3, 1, raster.Float, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	e, err := New(r, []float64{1.5, 0.5}, []float64{1.5, 2.5}, []float64{3, 3})
	if err != nil {
		t.Fatal(err)
	}

	e.SetMethod(Highest)
	if got := compute(t, e, false); got[0] != 9 || got[1] != 5 {
		t.Errorf("highest: got %v", got)
	}

	// Exact hits return the pixel value.
	e.SetMethod(InverseDistanceWeighted)
	got := compute(t, e, false)
	if got[0] != 5 || got[1] != 1 {
		t.Errorf("idw: got %v", got)
	}
}

func TestIDWOffCenter(t *testing.T) {
	r := gridRaster(t, 2, 1, 1, raster.Float, []float64{2, 4})
	e, err := New(r, []float64{0.75}, []float64{0.5}, []float64{4})
	if err != nil {
		t.Fatal(err)
	}
	e.SetMethod(InverseDistanceWeighted)
	// Distances 0.25 and 0.75 give weights 4 and 4/3.
	want := (2*4 + 4*4.0/3) / (4 + 4.0/3)
	if got := compute(t, e, false)[0]; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPlusTwoSigma(t *testing.T) {
	values := filled(20, 1)
	values[13] = 100
	r := gridRaster(t, 5, 4, 1, raster.Float, values)
	e, err := New(r, []float64{2.5, 2.5}, []float64{2, 2}, []float64{20, 20})
	if err != nil {
		t.Fatal(err)
	}
	e.SetMethod(PlusTwoSigma)
	if got := compute(t, e, false)[0]; got != 100 {
		t.Errorf("expected 100, got %v", got)
	}

	r = gridRaster(t, 5, 4, 1, raster.Float, filled(20, 0.1))
	e, err = New(r, []float64{2.5}, []float64{2}, []float64{20})
	if err != nil {
		t.Fatal(err)
	}
	e.SetMethod(PlusTwoSigma)
	if got := compute(t, e, false)[0]; math.Abs(got-0.1) > 1e-12 {
		t.Errorf("expected 0.1 for a uniform raster, got %v", got)
	}
}

func TestBilskie(t *testing.T) {
	r := gridRaster(t, 3, 3, 1, raster.Float, []float64{1, 1, 1, 1, 10, 1, 1, 1, 1})
	// Resolution 1 is below two cells and takes the nearest pixel. Resolution
	// 6 averages over a radius of 1.5.
	e, err := New(r, []float64{1.5, 1.5}, []float64{1.5, 1.5}, []float64{1, 6})
	if err != nil {
		t.Fatal(err)
	}
	e.SetMethod(BilskieEtAl)
	got := compute(t, e, false)
	if got[0] != 10 || got[1] != 2 {
		t.Errorf("expected [10 2], got %v", got)
	}
}

func TestNearestNPoints(t *testing.T) {
	r := gridRaster(t, 10, 10, 1, raster.Float, ramp(10, 10))
	e, err := New(r, []float64{4.5, 4.5}, []float64{4.5, 4.5}, []float64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	center := ramp(10, 10)[5*10+4]

	if err := e.SetFilterSizes([]float64{1, 5}); err != nil {
		t.Fatal(err)
	}
	e.SetMethod(AverageNearestNPoints)
	got := compute(t, e, false)
	if got[0] != center || got[1] != center {
		t.Errorf("average-n: expected %v, got %v", center, got)
	}

	e.SetMethod(InverseDistanceWeightedNPoints)
	got = compute(t, e, false)
	if got[0] != center || got[1] != center {
		t.Errorf("idw-n: expected %v, got %v", center, got)
	}
}

func TestNearestNPointsSkipsNoData(t *testing.T) {
	values := filled(100, nodata)
	values[0] = 3
	values[99] = 5
	r := gridRaster(t, 10, 10, 1, raster.Float, values)

	e, err := New(r, []float64{1.5}, []float64{8.5}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	e.SetMethod(AverageNearestNPoints)
	e.SetFilterSize(2)
	if got := compute(t, e, false)[0]; got != 4 {
		t.Errorf("expected the mean of the two valid pixels, got %v", got)
	}
}

func TestScaleAndShift(t *testing.T) {
	r := gridRaster(t, 2, 2, 1, raster.Integer, []float64{2, 2, 2, nodata})
	e, err := New(r, []float64{0.5, 1.5}, []float64{1.5, 0.5}, []float64{0, 0})
	if err != nil {
		t.Fatal(err)
	}
	e.SetMultiplier(3)
	e.SetDatumShift(1)

	got := compute(t, e, false)
	if got[0] != 7 || got[1] != -9999 {
		t.Errorf("expected [7 -9999], got %v", got)
	}

	e.SetLookupTable([]float64{nodata, nodata, 0.5})
	got = compute(t, e, true)
	if got[0] != 0.5 || got[1] != -9999 {
		t.Errorf("lookup values must not be scaled, got %v", got)
	}
}

func TestThreshold(t *testing.T) {
	r := gridRaster(t, 2, 2, 1, raster.Float, []float64{1, 3, 10, 20})
	e, err := New(r, []float64{1}, []float64{1}, []float64{4})
	if err != nil {
		t.Fatal(err)
	}

	e.SetThreshold(KeepAbove, 5)
	if got := compute(t, e, false)[0]; got != 15 {
		t.Errorf("keep above: expected 15, got %v", got)
	}

	e.SetThreshold(KeepBelow, 5)
	if got := compute(t, e, false)[0]; got != 2 {
		t.Errorf("keep below: expected 2, got %v", got)
	}

	// The threshold applies to scaled values.
	e.SetMultiplier(10)
	e.SetThreshold(KeepAbove, 25)
	if got := compute(t, e, false)[0]; got != 110 {
		t.Errorf("scaled keep above: expected 110, got %v", got)
	}

	e.SetThreshold(KeepAbove, 1000)
	if got := compute(t, e, false)[0]; got != -9999 {
		t.Errorf("expected the default when nothing passes, got %v", got)
	}
}

func TestThresholdWithLookupFails(t *testing.T) {
	r := gridRaster(t, 1, 1, 1, raster.Integer, []float64{1})
	e, err := New(r, []float64{0.5}, []float64{0.5}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	e.SetLookupTable([]float64{0, 1})
	e.SetThreshold(KeepAbove, 0)

	var cfgErr *ConfigError
	if _, err := e.Compute(context.Background(), true, ExecOptions{}); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %v", err)
	}

	e.SetThreshold(NoThreshold, 0)
	e.SetLookupTable(nil)
	if _, err := e.Compute(context.Background(), true, ExecOptions{}); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError without a table, got %v", err)
	}
}

func TestSizeMismatch(t *testing.T) {
	r := gridRaster(t, 1, 1, 1, raster.Float, []float64{1})
	var sizeErr *SizeMismatchError
	if _, err := New(r, []float64{1, 2}, []float64{1}, []float64{1, 2}); !errors.As(err, &sizeErr) {
		t.Errorf("expected SizeMismatchError, got %v", err)
	}
	if _, err := New(r, []float64{1}, []float64{1}, nil); !errors.As(err, &sizeErr) {
		t.Errorf("expected SizeMismatchError, got %v", err)
	}

	e, err := New(r, []float64{1}, []float64{1}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.SetMethods([]Method{Average, Nearest}); !errors.As(err, &sizeErr) {
		t.Errorf("expected SizeMismatchError, got %v", err)
	}
}

func TestOpenErrorAborts(t *testing.T) {
	r := raster.OpenASCII("does-not-exist.asc")
	e, err := New(r, []float64{1}, []float64{1}, []float64{1})
	if err != nil {
		t.Fatal(err)
	}
	var openErr *raster.OpenError
	if _, err := e.Compute(context.Background(), false, ExecOptions{}); !errors.As(err, &openErr) {
		t.Errorf("expected OpenError, got %v", err)
	}
}

func TestMemoryMatchesStreaming(t *testing.T) {
	const nx, ny = 20, 15
	rnd := rand.New(rand.NewSource(6))
	values := make([]float64, nx*ny)
	classes := make([]float64, nx*ny)
	for i := range values {
		values[i] = rnd.NormFloat64() * 10
		classes[i] = float64(rnd.Intn(4))
		if rnd.Intn(10) == 0 {
			values[i] = nodata
			classes[i] = nodata
		}
	}

	var xs, ys, res []float64
	for i := 0; i < 40; i++ {
		xs = append(xs, rnd.Float64()*nx*50)
		ys = append(ys, rnd.Float64()*ny*50)
		res = append(res, 25+rnd.Float64()*200)
	}

	methods := []Method{Average, Nearest, Highest, PlusTwoSigma, BilskieEtAl, InverseDistanceWeighted, InverseDistanceWeightedNPoints, AverageNearestNPoints}
	for _, tc := range []struct {
		name      string
		dt        raster.DataType
		values    []float64
		useLookup bool
	}{
		{"raster", raster.Float, values, false},
		{"lookup", raster.Integer, classes, true},
	} {
		for _, m := range methods {
			var results [2][]float64
			for k, inMemory := range []bool{false, true} {
				e, err := New(gridRaster(t, nx, ny, 50, tc.dt, tc.values), xs, ys, res)
				if err != nil {
					t.Fatal(err)
				}
				e.SetMethod(m)
				e.SetFilterSize(3)
				e.SetLookupTable([]float64{0.1, nodata, 0.3, 0.4})
				e.SetRasterInMemory(inMemory)
				results[k] = compute(t, e, tc.useLookup)
			}
			for i := range xs {
				if math.Float64bits(results[0][i]) != math.Float64bits(results[1][i]) {
					t.Errorf("%s %v point %d: %v != %v", tc.name, m, i, results[0][i], results[1][i])
				}
			}
		}
	}
}

func TestNewFromMesh(t *testing.T) {
	m, err := mesh.New(
		[]mesh.Node{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 4}, {X: 40, Y: 40}},
		[]mesh.Element{{Nodes: []int{0, 1, 2}}},
		false)
	if err != nil {
		t.Fatal(err)
	}
	r := gridRaster(t, 5, 5, 1, raster.Float, filled(25, 3))
	e, err := NewFromMesh(m, r)
	if err != nil {
		t.Fatal(err)
	}

	want := (8 + 4*math.Sqrt2) / 3
	if got := e.Attribute(0).Resolution; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected resolution %v, got %v", want, got)
	}

	got := compute(t, e, false)
	if got[0] != 3 || got[1] != 3 || got[3] != -9999 {
		t.Errorf("unexpected values %v", got)
	}
}

func TestProgress(t *testing.T) {
	r := gridRaster(t, 4, 4, 1, raster.Float, ramp(4, 4))
	xs := []float64{0.5, 1.5, 2.5, 3.5, 0.5, 1.5}
	e, err := New(r, xs, xs, filled(len(xs), 1))
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	last := 0
	_, err = e.Compute(context.Background(), false, ExecOptions{
		Workers: 2,
		Progress: func(done, total int) {
			calls++
			last = done
			if total != len(xs) {
				t.Errorf("expected total %d, got %d", len(xs), total)
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != len(xs) || last != len(xs) {
		t.Errorf("expected %d progress calls ending at %d, got %d ending at %d", len(xs), len(xs), calls, last)
	}
}
