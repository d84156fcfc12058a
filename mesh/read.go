package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ReadADCIRCFile reads the nodes and elements of an ADCIRC ASCII mesh
// (fort.14). Boundary sections are ignored.
func ReadADCIRCFile(fname string, geographic bool) (*Mesh, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := ReadADCIRC(f, geographic)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fname, err)
	}
	return m, nil
}

// ReadADCIRC reads an ADCIRC ASCII mesh. The first line is a title, the
// second holds the number of elements and nodes. Node rows are
// "id x y z", element rows are "id n v1 v2 ... vn". Ids are 1-based but
// need not be contiguous.
func ReadADCIRC(r io.Reader, geographic bool) (*Mesh, error) {
	sc := bufio.NewScanner(r)
	line := 0
	next := func() ([]string, error) {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("line %d: unexpected end of file", line+1)
		}
		line++
		return strings.Fields(sc.Text()), nil
	}

	if _, err := next(); err != nil {
		return nil, err
	}

	fields, err := next()
	if err != nil {
		return nil, err
	}
	if len(fields) < 2 {
		return nil, fmt.Errorf("line %d: expected element and node counts", line)
	}
	ne, err1 := strconv.Atoi(fields[0])
	np, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || ne < 0 || np < 0 {
		return nil, fmt.Errorf("line %d: invalid element and node counts %q", line, sc.Text())
	}

	nodes := make([]Node, np)
	index := make(map[int]int, np)
	for i := range nodes {
		fields, err := next()
		if err != nil {
			return nil, err
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("line %d: expected 4 node fields, got %d", line, len(fields))
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("line %d: node id: %w", line, err)
		}
		var xyz [3]float64
		for k := range xyz {
			if xyz[k], err = strconv.ParseFloat(fields[k+1], 64); err != nil {
				return nil, fmt.Errorf("line %d: node %d: %w", line, id, err)
			}
		}
		if _, ok := index[id]; ok {
			return nil, fmt.Errorf("line %d: duplicate node id %d", line, id)
		}
		index[id] = i
		nodes[i] = Node{X: xyz[0], Y: xyz[1], Z: xyz[2]}
	}

	elements := make([]Element, ne)
	for e := range elements {
		fields, err := next()
		if err != nil {
			return nil, err
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected an element row", line)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 3 || n > 4 {
			return nil, fmt.Errorf("line %d: invalid vertex count %q", line, fields[1])
		}
		if len(fields) < 2+n {
			return nil, fmt.Errorf("line %d: expected %d vertices, got %d", line, n, len(fields)-2)
		}
		el := Element{Nodes: make([]int, n)}
		for k := range el.Nodes {
			id, err := strconv.Atoi(fields[2+k])
			if err != nil {
				return nil, fmt.Errorf("line %d: vertex %d: %w", line, k, err)
			}
			i, ok := index[id]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown node id %d", line, id)
			}
			el.Nodes[k] = i
		}
		elements[e] = el
	}

	return New(nodes, elements, geographic)
}
