package riskgraph

import (
	"github.com/matzehuels/riskflow/pkg/errors"
)

// Edge names a directed edge between two handles. In SetEdges a zero Weight
// (including -0) means the graph default; every other value must be in (0,1].
type Edge[H comparable] struct {
	From   H
	To     H
	Weight float64
}

// =============================================================================
// Direct Graph Store
// =============================================================================

// SetEdge creates or overwrites the edge src→dst. An explicit weight must be
// in (0,1], zero included in the rejection; without one the graph default is
// used. The transitive closure is updated incrementally before SetEdge
// returns.
//
// Self edges are stored but never propagate risk.
func (g *Graph[H]) SetEdge(src, dst H, weight ...float64) error {
	w := g.defaultWeight
	if len(weight) > 0 {
		w = weight[0]
		if err := errors.ValidateWeight(w); err != nil {
			return err
		}
	}
	return g.SetEdges([]Edge[H]{{From: src, To: dst, Weight: w}})
}

// SetEdges applies edges in order. Every endpoint and weight is validated
// before the first edge is written.
func (g *Graph[H]) SetEdges(edges []Edge[H]) error {
	type resolved struct {
		a, b int
		w    float64
	}
	batch := make([]resolved, 0, len(edges))
	for _, e := range edges {
		a, err := g.IndexOf(e.From)
		if err != nil {
			return err
		}
		b, err := g.IndexOf(e.To)
		if err != nil {
			return err
		}
		w := e.Weight
		if w == 0 {
			w = g.defaultWeight
		}
		if err := errors.ValidateWeight(w); err != nil {
			return err
		}
		batch = append(batch, resolved{a, b, w})
	}
	for _, r := range batch {
		g.insertEdge(r.a, r.b, r.w)
	}
	return nil
}

// SetEdgeIndex is SetEdge addressed by dense indices.
func (g *Graph[H]) SetEdgeIndex(src, dst int, weight float64) error {
	if err := g.checkIndex(src); err != nil {
		return err
	}
	if err := g.checkIndex(dst); err != nil {
		return err
	}
	if err := errors.ValidateWeight(weight); err != nil {
		return err
	}
	g.insertEdge(src, dst, weight)
	return nil
}

// ClearEdge deletes the edge src→dst and every registered path that
// traverses it. Clearing an edge that does not exist is a no-op.
func (g *Graph[H]) ClearEdge(src, dst H) error {
	return g.ClearEdges([]Edge[H]{{From: src, To: dst}})
}

// ClearEdges deletes every listed edge. Weights are ignored. All endpoints
// are resolved before any edge is removed.
func (g *Graph[H]) ClearEdges(edges []Edge[H]) error {
	pairs := make([][2]int, 0, len(edges))
	for _, e := range edges {
		a, err := g.IndexOf(e.From)
		if err != nil {
			return err
		}
		b, err := g.IndexOf(e.To)
		if err != nil {
			return err
		}
		pairs = append(pairs, [2]int{a, b})
	}
	for _, p := range pairs {
		if g.adj.at(p[1], p[0]) != 0 {
			g.deleteEdge(p[0], p[1])
		}
	}
	return nil
}

// ClearEdgeIndex is ClearEdge addressed by dense indices.
func (g *Graph[H]) ClearEdgeIndex(src, dst int) error {
	if err := g.checkIndex(src); err != nil {
		return err
	}
	if err := g.checkIndex(dst); err != nil {
		return err
	}
	if g.adj.at(dst, src) != 0 {
		g.deleteEdge(src, dst)
	}
	return nil
}

// Weight returns the direct weight of src→dst, or 0 when there is no edge.
func (g *Graph[H]) Weight(src, dst H) (float64, error) {
	a, b, err := g.pair(src, dst)
	if err != nil {
		return 0, err
	}
	return g.adj.at(b, a), nil
}

// Edges returns every direct edge in (dst, src) index order.
func (g *Graph[H]) Edges() []Edge[H] {
	var out []Edge[H]
	n := len(g.handles)
	for b := 0; b < n; b++ {
		for a := 0; a < n; a++ {
			if w := g.adj.at(b, a); w != 0 {
				out = append(out, Edge[H]{From: g.handles[a], To: g.handles[b], Weight: w})
			}
		}
	}
	return out
}

// EdgeCount returns the number of direct edges, self edges included.
func (g *Graph[H]) EdgeCount() int {
	count := 0
	n := len(g.handles)
	for b := 0; b < n; b++ {
		for a := 0; a < n; a++ {
			if g.adj.at(b, a) != 0 {
				count++
			}
		}
	}
	return count
}

// =============================================================================
// Collapsed Closure
// =============================================================================

// Collapsed returns the probability that a failure of src reaches dst along
// at least one registered path. It is always 0 for src == dst.
func (g *Graph[H]) Collapsed(src, dst H) (float64, error) {
	a, b, err := g.pair(src, dst)
	if err != nil {
		return 0, err
	}
	g.refreshIfDirty(b, a)
	return g.collapse.at(b, a), nil
}

// HandlePath is a registered path translated back to handles.
type HandlePath[H comparable] struct {
	Handles []H
	Prob    float64
}

// Paths returns the registered paths from src to dst, most probable first.
func (g *Graph[H]) Paths(src, dst H) ([]HandlePath[H], error) {
	a, b, err := g.pair(src, dst)
	if err != nil {
		return nil, err
	}
	sorted := g.cell(b, a).Sorted()
	out := make([]HandlePath[H], len(sorted))
	for i, wp := range sorted {
		hs := make([]H, len(wp.Path))
		for k, v := range wp.Path {
			hs[k] = g.handles[v]
		}
		out[i] = HandlePath[H]{Handles: hs, Prob: wp.Prob}
	}
	return out, nil
}

// PathSetIndex returns a copy of the path set from src to dst by index.
func (g *Graph[H]) PathSetIndex(src, dst int) PathSet {
	return g.cell(dst, src).Clone()
}

// PathCount returns the total number of registered paths over all pairs.
func (g *Graph[H]) PathCount() int {
	count := 0
	for _, row := range g.paths {
		for _, set := range row {
			count += len(set)
		}
	}
	return count
}

// =============================================================================
// Incremental maintenance
// =============================================================================

// insertEdge writes A[b][a] = w and registers every new simple path that
// runs through a→b. Any path containing a→b is a (possibly empty) path into
// a, the step a→b, and a (possibly empty) path out of b; the two halves are
// already registered, so composing them is enough.
func (g *Graph[H]) insertEdge(a, b int, w float64) {
	if g.adj.at(b, a) != 0 {
		g.deleteEdge(a, b)
	}
	g.adj.set(b, a, w)
	if a == b {
		return
	}
	n := len(g.handles)

	// a→b itself.
	direct := PathSet{}
	direct.Add(Path{a, b}, w)
	g.merge(b, a, direct)

	// a→b→…→i
	for i := 0; i < n; i++ {
		if i == a || i == b {
			continue
		}
		if out := g.cell(i, b); len(out) > 0 {
			g.merge(i, a, ComposePaths(direct, out))
		}
	}
	g.collapse.set(a, a, 0)

	// j→…→a→b→…→i. Only the tails that start with the new edge can form
	// new paths; the rest are already registered for (i, j).
	tails := make(map[int]PathSet)
	for i := 0; i < n; i++ {
		if i == a {
			continue
		}
		for k, wp := range g.cell(i, a) {
			if len(wp.Path) > 1 && wp.Path[1] == b {
				if tails[i] == nil {
					tails[i] = PathSet{}
				}
				tails[i][k] = wp
			}
		}
	}
	for j, head := range g.paths[a] {
		if j == a || j == b || len(head) == 0 {
			continue
		}
		for i, tail := range tails {
			if i == j {
				continue
			}
			if composed := ComposePaths(head, tail); len(composed) > 0 {
				g.merge(i, j, composed)
			}
		}
	}
	g.collapse.clearDiagonal(n)
}

// deleteEdge zeroes A[b][a] and removes every registered path containing a→b
// as a contiguous step. Collapsed values of the affected cells are marked
// dirty and recomputed on the next query.
func (g *Graph[H]) deleteEdge(a, b int) {
	g.adj.set(b, a, 0)
	if a == b {
		return
	}
	for dst, row := range g.paths {
		for src, set := range row {
			changed := false
			for k, wp := range set {
				if wp.Path.ContainsEdge(a, b) {
					delete(set, k)
					changed = true
				}
			}
			if !changed {
				continue
			}
			g.dirty[cell{dst, src}] = struct{}{}
			if len(set) == 0 {
				delete(row, src)
			}
		}
		if len(row) == 0 {
			delete(g.paths, dst)
		}
	}
}

// merge adds every path of set to cell (dst, src) and recomputes the cell's
// collapsed value from its full path set.
func (g *Graph[H]) merge(dst, src int, set PathSet) {
	if dst == src || len(set) == 0 {
		return
	}
	row := g.paths[dst]
	if row == nil {
		row = make(map[int]PathSet)
		g.paths[dst] = row
	}
	target := row[src]
	if target == nil {
		target = make(PathSet, len(set))
		row[src] = target
	}
	for k, wp := range set {
		target[k] = wp
	}
	g.refresh(dst, src)
}

func (g *Graph[H]) cell(dst, src int) PathSet {
	return g.paths[dst][src]
}

func (g *Graph[H]) refresh(dst, src int) {
	delete(g.dirty, cell{dst, src})
	if dst == src {
		g.collapse.set(dst, src, 0)
		return
	}
	g.collapse.set(dst, src, g.cell(dst, src).Combine())
}

func (g *Graph[H]) refreshIfDirty(dst, src int) {
	if _, ok := g.dirty[cell{dst, src}]; ok {
		g.refresh(dst, src)
	}
}

// flush recomputes every dirty cell.
func (g *Graph[H]) flush() {
	for c := range g.dirty {
		g.refresh(c.dst, c.src)
	}
}

// relabelPaths rebuilds the path registry after vertex v was removed: cells
// in v's row and column are dropped and every index above v in cell
// coordinates and path keys shifts down by one.
func (g *Graph[H]) relabelPaths(v int) {
	shift := func(i int) int {
		if i > v {
			return i - 1
		}
		return i
	}
	relabeled := make(map[int]map[int]PathSet, len(g.paths))
	for dst, row := range g.paths {
		if dst == v {
			continue
		}
		newRow := make(map[int]PathSet, len(row))
		for src, set := range row {
			if src == v || len(set) == 0 {
				continue
			}
			newSet := make(PathSet, len(set))
			for _, wp := range set {
				if wp.Path.Contains(v) {
					continue
				}
				p := make(Path, len(wp.Path))
				for k, idx := range wp.Path {
					p[k] = shift(idx)
				}
				newSet[p.key()] = WeightedPath{Path: p, Prob: wp.Prob}
			}
			if len(newSet) > 0 {
				newRow[shift(src)] = newSet
			}
		}
		if len(newRow) > 0 {
			relabeled[shift(dst)] = newRow
		}
	}
	g.paths = relabeled
}

func (g *Graph[H]) pair(src, dst H) (int, int, error) {
	a, err := g.IndexOf(src)
	if err != nil {
		return 0, 0, err
	}
	b, err := g.IndexOf(dst)
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func (g *Graph[H]) checkIndex(idx int) error {
	if idx < 0 || idx >= len(g.handles) {
		return errors.New(errors.ErrCodeUnknownHandle, "index %d out of range [0,%d)", idx, len(g.handles))
	}
	return nil
}
