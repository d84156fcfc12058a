package griddata

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/larschri/griddata/raster"
)

const manning = `2 0.5 open water
5 0.06 evergreen forest

# duplicate rows overwrite
5 0.06
`

func TestParseLookupTable(t *testing.T) {
	table, err := ParseLookupTable("manning", strings.NewReader(manning), -9999)
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{-9999, -9999, 0.5, -9999, -9999, 0.06}
	if len(table) != len(want) {
		t.Fatalf("expected %v, got %v", want, table)
	}
	for i := range want {
		if table[i] != want[i] {
			t.Errorf("class %d: expected %v, got %v", i, want[i], table[i])
		}
	}
}

func TestParseLookupTableErrors(t *testing.T) {
	for _, tc := range []struct {
		table string
		line  int
	}{
		{"1 0.1\n2\n", 2},
		{"x 0.1\n", 1},
		{"1 0.1\n\n-3 0.2\n", 3},
		{"1 abc\n", 1},
	} {
		_, err := ParseLookupTable("bad", strings.NewReader(tc.table), 0)
		var lookupErr *LookupTableError
		if !errors.As(err, &lookupErr) {
			t.Errorf("%q: expected LookupTableError, got %v", tc.table, err)
			continue
		}
		if lookupErr.Line != tc.line {
			t.Errorf("%q: expected line %d, got %d", tc.table, tc.line, lookupErr.Line)
		}
	}
}

func TestAverageFromLookup(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "manning.tbl")
	if err := os.WriteFile(fname, []byte(manning), 0644); err != nil {
		t.Fatal(err)
	}

	classes := filled(9, 2)
	r := gridRaster(t, 3, 3, 1, raster.Integer, classes)
	e, err := New(r, []float64{1.5}, []float64{1.5}, []float64{3})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.ReadLookupTable(fname); err != nil {
		t.Fatal(err)
	}
	if got := compute(t, e, true)[0]; got != 0.5 {
		t.Errorf("expected 0.5, got %v", got)
	}

	// Class 3 has no row and is left out of the average.
	classes[0], classes[4] = 3, 5
	r = gridRaster(t, 3, 3, 1, raster.Integer, classes)
	e, err = New(r, []float64{1.5}, []float64{1.5}, []float64{3})
	if err != nil {
		t.Fatal(err)
	}
	if err := e.ReadLookupTable(fname); err != nil {
		t.Fatal(err)
	}
	want := (7*0.5 + 0.06) / 8
	if got := compute(t, e, true)[0]; math.Abs(got-want) > 1e-12 {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestReadLookupTableMissingFile(t *testing.T) {
	if _, err := ReadLookupTable(filepath.Join(t.TempDir(), "none"), 0); err == nil {
		t.Error("expected an error")
	}
}
