package riskgraph

import (
	"math"
	"testing"

	"github.com/matzehuels/riskflow/pkg/errors"
)

const tol = 1e-12

func approx(a, b float64) bool { return math.Abs(a-b) <= tol }

func TestOrCombine(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{0, 0, 0},
		{0, 0.3, 0.3},
		{1, 0.3, 1},
		{0.5, 0.5, 0.75},
		{0.25, 1.0 / 3, 0.5},
	}
	for _, tt := range tests {
		if got := OrCombine(tt.a, tt.b); !approx(got, tt.want) {
			t.Errorf("OrCombine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := OrCombine(tt.b, tt.a); !approx(got, tt.want) {
			t.Errorf("OrCombine(%v, %v) = %v, want %v", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestOrCombineAllOrderIndependent(t *testing.T) {
	p1, p2, p3 := 0.1, 0.35, 0.8
	want := OrCombine(OrCombine(p1, p2), p3)
	orders := [][]float64{
		{p1, p2, p3}, {p1, p3, p2}, {p2, p1, p3},
		{p2, p3, p1}, {p3, p1, p2}, {p3, p2, p1},
	}
	for _, ps := range orders {
		if got := OrCombineAll(ps...); !approx(got, want) {
			t.Errorf("OrCombineAll(%v) = %v, want %v", ps, got, want)
		}
	}
	if got := OrCombine(p1, OrCombine(p2, p3)); !approx(got, want) {
		t.Errorf("associativity: got %v, want %v", got, want)
	}
	if got := OrCombineAll(); got != 0 {
		t.Errorf("OrCombineAll() = %v, want 0", got)
	}
}

func TestInverseOr(t *testing.T) {
	combined := OrCombine(0.2, 0.5)
	got, err := InverseOr(combined, 0.5)
	if err != nil {
		t.Fatalf("InverseOr: %v", err)
	}
	if !approx(got, 0.2) {
		t.Errorf("InverseOr = %v, want 0.2", got)
	}

	_, err = InverseOr(1, 1)
	if !errors.Is(err, errors.ErrCodeDegenerateInverse) {
		t.Errorf("InverseOr(1, 1) error = %v, want %s", err, errors.ErrCodeDegenerateInverse)
	}
}

func TestPathContainsEdge(t *testing.T) {
	p := Path{0, 2, 1, 3}
	tests := []struct {
		a, b int
		want bool
	}{
		{0, 2, true},
		{2, 1, true},
		{1, 3, true},
		{0, 1, false}, // both present, not contiguous
		{2, 0, false}, // reversed
		{3, 4, false},
	}
	for _, tt := range tests {
		if got := p.ContainsEdge(tt.a, tt.b); got != tt.want {
			t.Errorf("%v.ContainsEdge(%d, %d) = %v, want %v", p, tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPathKeyDistinguishesMultiDigitIndices(t *testing.T) {
	a := Path{1, 23}
	b := Path{12, 3}
	if a.key() == b.key() {
		t.Errorf("keys of %v and %v collide", a, b)
	}
	c := Path{300, 1}
	d := Path{300, 1}
	if c.key() != d.key() {
		t.Errorf("equal paths produced different keys")
	}
}

func TestComposePaths(t *testing.T) {
	head := PathSet{}
	head.Add(Path{0, 1}, 0.5)
	head.Add(Path{0, 2, 1}, 0.25)

	tail := PathSet{}
	tail.Add(Path{1, 3}, 0.5)
	tail.Add(Path{1, 0}, 1) // would revisit 0

	got := ComposePaths(head, tail)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if wp, ok := got[Path{0, 1, 3}.key()]; !ok || !approx(wp.Prob, 0.25) {
		t.Errorf("0→1→3 = %+v, want prob 0.25", wp)
	}
	if wp, ok := got[Path{0, 2, 1, 3}.key()]; !ok || !approx(wp.Prob, 0.125) {
		t.Errorf("0→2→1→3 = %+v, want prob 0.125", wp)
	}
	if got.Has(Path{0, 1, 0}) {
		t.Error("composition kept a non-simple walk")
	}
}

func TestComposePathsCollapsesDuplicates(t *testing.T) {
	head := PathSet{}
	head.Add(Path{0, 1}, 0.5)
	tail := PathSet{}
	tail.Add(Path{1, 2}, 0.5)

	a := ComposePaths(head, tail)
	b := ComposePaths(head, tail)
	merged := a.Clone()
	for k, wp := range b {
		merged[k] = wp
	}
	if len(merged) != 1 {
		t.Errorf("len = %d, want 1", len(merged))
	}
}

func TestPathSetCombine(t *testing.T) {
	s := PathSet{}
	if got := s.Combine(); got != 0 {
		t.Errorf("empty Combine() = %v, want 0", got)
	}
	s.Add(Path{0, 1}, 0.5)
	s.Add(Path{0, 2, 1}, 0.5)
	if got := s.Combine(); !approx(got, 0.75) {
		t.Errorf("Combine() = %v, want 0.75", got)
	}
}

func TestPathSetCloneIsIndependent(t *testing.T) {
	s := PathSet{}
	s.Add(Path{0, 1}, 0.5)
	c := s.Clone()
	c.Add(Path{0, 2, 1}, 0.1)
	for _, wp := range c {
		wp.Path[0] = 9
	}
	if len(s) != 1 {
		t.Errorf("original len = %d, want 1", len(s))
	}
	if !s.Has(Path{0, 1}) {
		t.Error("original path mutated through clone")
	}
}

func TestPathSetSorted(t *testing.T) {
	s := PathSet{}
	s.Add(Path{0, 3}, 0.2)
	s.Add(Path{0, 1, 3}, 0.6)
	s.Add(Path{0, 2, 3}, 0.6)

	got := s.Sorted()
	want := []Path{{0, 1, 3}, {0, 2, 3}, {0, 3}}
	for i := range want {
		if len(got[i].Path) != len(want[i]) || got[i].Path.key() != want[i].key() {
			t.Errorf("Sorted()[%d] = %v, want %v", i, got[i].Path, want[i])
		}
	}
}
