package riskgraph

import (
	"fmt"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/matzehuels/riskflow/pkg/errors"
)

// registry flattens the path registry into cell → key → probability.
func registry[H comparable](g *Graph[H]) map[cell]map[string]float64 {
	out := make(map[cell]map[string]float64)
	for dst, row := range g.paths {
		for src, set := range row {
			if len(set) == 0 {
				continue
			}
			m := make(map[string]float64, len(set))
			for k, wp := range set {
				m[k] = wp.Prob
			}
			out[cell{dst, src}] = m
		}
	}
	return out
}

// collapsedMatrix returns the flushed n×n collapsed closure.
func collapsedMatrix[H comparable](g *Graph[H]) [][]float64 {
	g.flush()
	n := g.Len()
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		for j := range out[i] {
			out[i][j] = g.collapse.at(i, j)
		}
	}
	return out
}

// enumerate lists every simple path over the current direct edges by DFS.
// Self edges never start or extend a path.
func enumerate[H comparable](g *Graph[H]) map[cell]map[string]float64 {
	n := g.Len()
	out := make(map[cell]map[string]float64)
	var walk func(path Path, prob float64)
	walk = func(path Path, prob float64) {
		last := path[len(path)-1]
		for next := 0; next < n; next++ {
			w := g.adj.at(next, last)
			if w == 0 || path.Contains(next) {
				continue
			}
			p := append(Path{}, path...)
			p = append(p, next)
			c := cell{next, p[0]}
			if out[c] == nil {
				out[c] = make(map[string]float64)
			}
			out[c][p.key()] = prob * w
			walk(p, prob*w)
		}
	}
	for s := 0; s < n; s++ {
		walk(Path{s}, 1)
	}
	return out
}

func sameRegistry(t *testing.T, got, want map[cell]map[string]float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("registry has %d cells, want %d", len(got), len(want))
	}
	for c, wantSet := range want {
		gotSet := got[c]
		if len(gotSet) != len(wantSet) {
			t.Fatalf("cell %v has %d paths, want %d", c, len(gotSet), len(wantSet))
		}
		for k, p := range wantSet {
			if q, ok := gotSet[k]; !ok || !approx(p, q) {
				t.Fatalf("cell %v path %x = %v (present %v), want %v", c, k, q, ok, p)
			}
		}
	}
}

func sameMatrix(t *testing.T, got, want [][]float64) {
	t.Helper()
	for i := range want {
		for j := range want[i] {
			if !approx(got[i][j], want[i][j]) {
				t.Fatalf("collapse[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func diamond(t *testing.T) *Graph[string] {
	t.Helper()
	g := New[string](Options{})
	if _, err := g.RegisterBatch([]string{"a", "b", "c", "d"}, []float64{0.25, 0.25, 0.25, 0.25}); err != nil {
		t.Fatalf("RegisterBatch: %v", err)
	}
	for _, e := range [][2]string{{"b", "d"}, {"c", "d"}, {"a", "b"}, {"a", "c"}} {
		if err := g.SetEdge(e[0], e[1]); err != nil {
			t.Fatalf("SetEdge(%s, %s): %v", e[0], e[1], err)
		}
	}
	return g
}

func TestSetEdgeRegistersTransitivePaths(t *testing.T) {
	g := diamond(t)

	paths, err := g.Paths("a", "d")
	if err != nil {
		t.Fatalf("Paths: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("len(Paths(a,d)) = %d, want 2: %v", len(paths), paths)
	}
	want := map[string]bool{"[a b d]": true, "[a c d]": true}
	for _, p := range paths {
		if !want[fmt.Sprint(p.Handles)] {
			t.Errorf("unexpected path %v", p.Handles)
		}
		if p.Prob != 1 {
			t.Errorf("path %v prob = %v, want 1", p.Handles, p.Prob)
		}
	}

	if c, _ := g.Collapsed("a", "d"); c != 1 {
		t.Errorf("Collapsed(a,d) = %v, want 1", c)
	}
	if c, _ := g.Collapsed("d", "a"); c != 0 {
		t.Errorf("Collapsed(d,a) = %v, want 0", c)
	}
	sameRegistry(t, registry(g), enumerate(g))
}

func TestSetEdgeOrderIndependent(t *testing.T) {
	edges := [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "c"}, {"b", "d"}}
	orders := [][]int{{0, 1, 2, 3, 4}, {4, 3, 2, 1, 0}, {2, 0, 4, 1, 3}}

	var first map[cell]map[string]float64
	for _, order := range orders {
		g := New[string](Options{})
		_, _ = g.RegisterBatch([]string{"a", "b", "c", "d"}, nil)
		for _, i := range order {
			if err := g.SetEdge(edges[i][0], edges[i][1], 0.5); err != nil {
				t.Fatalf("SetEdge: %v", err)
			}
		}
		reg := registry(g)
		sameRegistry(t, reg, enumerate(g))
		if first == nil {
			first = reg
			continue
		}
		sameRegistry(t, reg, first)
	}
}

func TestCycleKeepsDiagonalZero(t *testing.T) {
	g := New[string](Options{})
	_, _ = g.RegisterBatch([]string{"a", "b", "c"}, nil)
	_ = g.SetEdge("a", "b", 0.5)
	_ = g.SetEdge("b", "c", 0.5)
	_ = g.SetEdge("c", "a", 0.5)

	m := collapsedMatrix(g)
	for i := range m {
		if m[i][i] != 0 {
			t.Errorf("collapse[%d][%d] = %v, want 0", i, i, m[i][i])
		}
	}
	for _, row := range g.paths {
		for src, set := range row {
			for _, wp := range set {
				if wp.Path[0] != src {
					t.Errorf("path %v stored under source %d", wp.Path, src)
				}
			}
		}
	}
	if _, ok := g.paths[0][0]; ok {
		t.Error("diagonal cell materialized")
	}
	sameRegistry(t, registry(g), enumerate(g))

	// Every vertex reaches the other two.
	if c, _ := g.Collapsed("a", "c"); !approx(c, 0.25) {
		t.Errorf("Collapsed(a,c) = %v, want 0.25", c)
	}
}

func TestSelfEdgeStoredButNotPropagated(t *testing.T) {
	g := New[string](Options{})
	_, _ = g.RegisterBatch([]string{"a", "b"}, []float64{0.5, 0.1})
	if err := g.SetEdge("a", "a", 0.9); err != nil {
		t.Fatalf("SetEdge: %v", err)
	}
	if w, _ := g.Weight("a", "a"); w != 0.9 {
		t.Errorf("Weight(a,a) = %v, want 0.9", w)
	}
	if g.PathCount() != 0 {
		t.Errorf("PathCount() = %d, want 0", g.PathCount())
	}
	risk := g.ComputeRisk()
	if risk[0] != 0.5 {
		t.Errorf("risk[a] = %v, want 0.5", risk[0])
	}
	if err := g.ClearEdge("a", "a"); err != nil {
		t.Fatalf("ClearEdge: %v", err)
	}
	if w, _ := g.Weight("a", "a"); w != 0 {
		t.Errorf("Weight(a,a) = %v after clear, want 0", w)
	}
}

func TestSetEdgeInvalidWeightLeavesGraphUnchanged(t *testing.T) {
	g := diamond(t)
	before := registry(g)

	err := g.SetEdges([]Edge[string]{
		{From: "d", To: "a", Weight: 0.5},
		{From: "b", To: "c", Weight: 1.5},
	})
	if !errors.Is(err, errors.ErrCodeInvalidWeight) {
		t.Fatalf("error = %v, want %s", err, errors.ErrCodeInvalidWeight)
	}
	if w, _ := g.Weight("d", "a"); w != 0 {
		t.Errorf("first edge of failed batch was written: %v", w)
	}
	sameRegistry(t, registry(g), before)

	if err := g.SetEdge("a", "d", -1); !errors.Is(err, errors.ErrCodeInvalidWeight) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidWeight)
	}
	if err := g.SetEdgeIndex(0, 3, 0); !errors.Is(err, errors.ErrCodeInvalidWeight) {
		t.Errorf("SetEdgeIndex error = %v, want %s", err, errors.ErrCodeInvalidWeight)
	}
}

func TestSetEdgeExplicitZeroWeight(t *testing.T) {
	g := diamond(t)
	before := registry(g)

	tests := []struct {
		name string
		set  func() error
	}{
		{"handle", func() error { return g.SetEdge("d", "a", 0) }},
		{"negative zero", func() error { return g.SetEdge("d", "a", math.Copysign(0, -1)) }},
		{"index", func() error { return g.SetEdgeIndex(3, 0, 0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.set(); !errors.Is(err, errors.ErrCodeInvalidWeight) {
				t.Errorf("error = %v, want %s", err, errors.ErrCodeInvalidWeight)
			}
			if w, _ := g.Weight("d", "a"); w != 0 {
				t.Errorf("Weight(d,a) = %v after rejected set, want 0", w)
			}
		})
	}
	sameRegistry(t, registry(g), before)
}

func TestSetEdgesZeroWeightUsesDefault(t *testing.T) {
	g := New[string](Options{DefaultWeight: 0.4})
	if _, err := g.RegisterBatch([]string{"a", "b"}, nil); err != nil {
		t.Fatal(err)
	}
	if err := g.SetEdges([]Edge[string]{{From: "a", To: "b"}}); err != nil {
		t.Fatalf("SetEdges: %v", err)
	}
	if w, _ := g.Weight("a", "b"); w != 0.4 {
		t.Errorf("Weight(a,b) = %v, want default 0.4", w)
	}
	if err := g.SetEdge("b", "a"); err != nil {
		t.Fatalf("SetEdge without weight: %v", err)
	}
	if w, _ := g.Weight("b", "a"); w != 0.4 {
		t.Errorf("Weight(b,a) = %v, want default 0.4", w)
	}
}

func TestPathSetIndex(t *testing.T) {
	g := diamond(t)
	a, _ := g.IndexOf("a")
	b, _ := g.IndexOf("b")
	c, _ := g.IndexOf("c")
	d, _ := g.IndexOf("d")

	set := g.PathSetIndex(a, d)
	if len(set) != 2 || !set.Has(Path{a, b, d}) || !set.Has(Path{a, c, d}) {
		t.Fatalf("PathSetIndex(a,d) = %v, want both diamond paths", set)
	}
	if got := set.Combine(); got != 1 {
		t.Errorf("Combine() = %v, want 1", got)
	}

	// The result is a copy.
	for k := range set {
		delete(set, k)
	}
	if n := len(g.PathSetIndex(a, d)); n != 2 {
		t.Errorf("registry changed through returned set: %d paths", n)
	}

	if n := len(g.PathSetIndex(d, a)); n != 0 {
		t.Errorf("PathSetIndex(d,a) has %d paths, want 0", n)
	}
}

func TestSetEdgeUnknownHandle(t *testing.T) {
	g := diamond(t)
	if err := g.SetEdge("a", "zzz"); !errors.Is(err, errors.ErrCodeUnknownHandle) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeUnknownHandle)
	}
	if err := g.ClearEdge("zzz", "a"); !errors.Is(err, errors.ErrCodeUnknownHandle) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeUnknownHandle)
	}
	if _, err := g.Collapsed("a", "zzz"); !errors.Is(err, errors.ErrCodeUnknownHandle) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeUnknownHandle)
	}
	if err := g.ClearEdgeIndex(0, 99); !errors.Is(err, errors.ErrCodeUnknownHandle) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeUnknownHandle)
	}
}

func TestOverwriteEdgeRescalesPaths(t *testing.T) {
	g := New[string](Options{})
	_, _ = g.RegisterBatch([]string{"a", "b", "c"}, nil)
	_ = g.SetEdge("a", "b", 0.5)
	_ = g.SetEdge("b", "c", 0.5)
	_ = g.SetEdge("a", "b", 0.2)

	paths, _ := g.Paths("a", "c")
	if len(paths) != 1 || !approx(paths[0].Prob, 0.1) {
		t.Errorf("Paths(a,c) = %v, want one path with prob 0.1", paths)
	}
	sameRegistry(t, registry(g), enumerate(g))
}

func TestInsertDeleteRestoresState(t *testing.T) {
	g := New[string](Options{})
	_, _ = g.RegisterBatch([]string{"a", "b", "c", "d", "e"}, nil)
	for _, e := range []Edge[string]{
		{From: "a", To: "b", Weight: 0.5},
		{From: "b", To: "c", Weight: 0.4},
		{From: "c", To: "a", Weight: 0.3},
		{From: "d", To: "b", Weight: 0.9},
		{From: "c", To: "e", Weight: 0.7},
	} {
		if err := g.SetEdge(e.From, e.To, e.Weight); err != nil {
			t.Fatalf("SetEdge: %v", err)
		}
	}

	candidates := [][2]string{{"a", "e"}, {"e", "d"}, {"b", "d"}, {"e", "a"}, {"d", "c"}}
	for _, c := range candidates {
		t.Run(c[0]+"->"+c[1], func(t *testing.T) {
			beforeReg := registry(g)
			beforeCol := collapsedMatrix(g)

			if err := g.SetEdge(c[0], c[1], 0.6); err != nil {
				t.Fatalf("SetEdge: %v", err)
			}
			if err := g.ClearEdge(c[0], c[1]); err != nil {
				t.Fatalf("ClearEdge: %v", err)
			}

			sameRegistry(t, registry(g), beforeReg)
			sameMatrix(t, collapsedMatrix(g), beforeCol)
		})
	}
}

func TestClearEdgePurgesContiguousOnly(t *testing.T) {
	// a→b→c and a→c; also c→b exists so the path a→c→b contains both a
	// and b without the step a→b.
	g := New[string](Options{})
	_, _ = g.RegisterBatch([]string{"a", "b", "c"}, nil)
	_ = g.SetEdge("a", "b", 0.5)
	_ = g.SetEdge("b", "c", 0.5)
	_ = g.SetEdge("a", "c", 0.5)
	_ = g.SetEdge("c", "b", 0.5)

	if err := g.ClearEdge("a", "b"); err != nil {
		t.Fatalf("ClearEdge: %v", err)
	}
	paths, _ := g.Paths("a", "b")
	if len(paths) != 1 || fmt.Sprint(paths[0].Handles) != "[a c b]" {
		t.Errorf("Paths(a,b) = %v, want [[a c b]]", paths)
	}
	sameRegistry(t, registry(g), enumerate(g))

	// Lazily recomputed collapse reflects the surviving path.
	if c, _ := g.Collapsed("a", "b"); !approx(c, 0.25) {
		t.Errorf("Collapsed(a,b) = %v, want 0.25", c)
	}
}

func TestClearMissingEdgeIsNoop(t *testing.T) {
	g := diamond(t)
	before := registry(g)
	if err := g.ClearEdge("d", "a"); err != nil {
		t.Fatalf("ClearEdge: %v", err)
	}
	sameRegistry(t, registry(g), before)
}

func TestUnregisterRelabelsPaths(t *testing.T) {
	g := New[string](Options{})
	_, _ = g.RegisterBatch([]string{"x", "a", "b", "c"}, nil)
	_ = g.SetEdge("a", "b", 0.5)
	_ = g.SetEdge("b", "c", 0.5)
	_ = g.SetEdge("x", "a", 0.5)

	if err := g.Unregister("x"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	for _, row := range g.paths {
		for _, set := range row {
			for _, wp := range set {
				for _, v := range wp.Path {
					if v >= g.Len() {
						t.Errorf("path %v references index %d >= n=%d", wp.Path, v, g.Len())
					}
				}
			}
		}
	}
	sameRegistry(t, registry(g), enumerate(g))

	paths, _ := g.Paths("a", "c")
	if len(paths) != 1 || fmt.Sprint(paths[0].Handles) != "[a b c]" {
		t.Errorf("Paths(a,c) = %v, want [[a b c]]", paths)
	}
}

func TestUnregisterPurgesPathsThrough(t *testing.T) {
	g := New[string](Options{})
	_, _ = g.RegisterBatch([]string{"a", "b", "c"}, nil)
	_ = g.SetEdge("a", "b")
	_ = g.SetEdge("b", "c")

	if err := g.Unregister("b"); err != nil {
		t.Fatalf("Unregister: %v", err)
	}
	if c, _ := g.Collapsed("a", "c"); c != 0 {
		t.Errorf("Collapsed(a,c) = %v, want 0", c)
	}
	if g.PathCount() != 0 {
		t.Errorf("PathCount() = %d, want 0", g.PathCount())
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

// TestRandomOperationsMatchEnumeration drives the graph through random edge
// insertions, overwrites, deletions and vertex removals, and after every step
// checks the registry against a from-scratch enumeration of simple paths.
func TestRandomOperationsMatchEnumeration(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for round := 0; round < 20; round++ {
		g := New[int](Options{Capacity: 16})
		next := 0
		for i := 0; i < 7; i++ {
			_, _ = g.Register(next, rng.Float64())
			next++
		}
		for step := 0; step < 40; step++ {
			n := g.Len()
			switch op := rng.IntN(10); {
			case op < 6 && n > 1:
				a, b := rng.IntN(n), rng.IntN(n)
				w := 0.05 + 0.95*rng.Float64()
				if err := g.SetEdgeIndex(a, b, w); err != nil {
					t.Fatalf("SetEdgeIndex: %v", err)
				}
			case op < 9 && n > 1:
				a, b := rng.IntN(n), rng.IntN(n)
				if err := g.ClearEdgeIndex(a, b); err != nil {
					t.Fatalf("ClearEdgeIndex: %v", err)
				}
			case n > 2:
				h, _ := g.HandleAt(rng.IntN(n))
				if err := g.Unregister(h); err != nil {
					t.Fatalf("Unregister: %v", err)
				}
				_, _ = g.Register(next, rng.Float64())
				next++
			}
			sameRegistry(t, registry(g), enumerate(g))
			for i, r := range g.ComputeRisk() {
				if r < 0 || r > 1 {
					t.Fatalf("risk[%d] = %v outside [0,1]", i, r)
				}
			}
		}
	}
}
