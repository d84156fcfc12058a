package mesh

import (
	"strings"
	"testing"
)

const fort14 = `two triangles
2 4
10 0.0 0.0 -1.5
20 1.0 0.0 -2.0
30 1.0 1.0 -2.5
40 0.0 1.0 -3.0
1 3 10 20 30
2 3 10 30 40
0 = Number of open boundaries
`

func TestReadADCIRC(t *testing.T) {
	m, err := ReadADCIRC(strings.NewReader(fort14), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Nodes) != 4 || len(m.Elements) != 2 {
		t.Fatalf("expected 4 nodes and 2 elements, got %d and %d", len(m.Nodes), len(m.Elements))
	}
	if m.Nodes[2] != (Node{X: 1, Y: 1, Z: -2.5}) {
		t.Errorf("unexpected node %v", m.Nodes[2])
	}
	want := []int{0, 2, 3}
	for k, n := range m.Elements[1].Nodes {
		if n != want[k] {
			t.Errorf("expected element vertices %v, got %v", want, m.Elements[1].Nodes)
			break
		}
	}

	e, _, err := m.FindElement(0.75, 0.25)
	if err != nil {
		t.Fatal(err)
	}
	if e != 0 {
		t.Errorf("expected element 0, got %d", e)
	}
}

func TestReadADCIRCErrors(t *testing.T) {
	for _, s := range []string{
		"title\n",
		"title\n1 x\n",
		"title\n0 2\n1 0 0 0\n",
		"title\n0 2\n1 0 0 0\n1 1 1 1\n",
		"title\n1 3\n1 0 0 0\n2 1 0 0\n3 0 1 0\n1 3 1 2 4\n",
		"title\n1 3\n1 0 0 0\n2 1 0 0\n3 0 1 0\n1 4 1 2 3\n",
		"title\n1 3\n1 0 0 0\n2 1 0 0\n3 0 1 0\n1 -3 1 2 3\n",
		"title\n1 3\n1 0 0 0\n2 1 0 0\n3 0 1 0\n1 5 1 2 3 1 2\n",
	} {
		if _, err := ReadADCIRC(strings.NewReader(s), false); err == nil {
			t.Errorf("%q: expected an error", s)
		}
	}
}
