package griddata

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadLookupTable reads a lookup table file. See ParseLookupTable.
func ReadLookupTable(fname string, defaultValue float64) ([]float64, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup table: %w", err)
	}
	defer f.Close()
	return ParseLookupTable(fname, f, defaultValue)
}

// ParseLookupTable parses rows of "class value [description]". The result
// is indexed by class up to the largest class; classes without a row get
// defaultValue. Later rows overwrite earlier rows with the same class. Blank
// lines and lines starting with # are skipped.
func ParseLookupTable(name string, r io.Reader, defaultValue float64) ([]float64, error) {
	type row struct {
		class int
		value float64
	}

	var rows []row
	maxClass := -1

	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.Fields(text)
		if len(fields) < 2 {
			return nil, &LookupTableError{Name: name, Line: line, Reason: "expected class and value"}
		}

		class, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, &LookupTableError{Name: name, Line: line, Reason: "invalid class", Err: err}
		}
		if class < 0 {
			return nil, &LookupTableError{Name: name, Line: line, Reason: "negative class"}
		}

		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, &LookupTableError{Name: name, Line: line, Reason: "invalid value", Err: err}
		}

		rows = append(rows, row{class, value})
		maxClass = max(maxClass, class)
	}
	if err := sc.Err(); err != nil {
		return nil, &LookupTableError{Name: name, Reason: "read failed", Err: err}
	}

	table := make([]float64, maxClass+1)
	for i := range table {
		table[i] = defaultValue
	}
	for _, r := range rows {
		table[r.class] = r.value
	}
	return table, nil
}
