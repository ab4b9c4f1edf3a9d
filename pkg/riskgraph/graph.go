package riskgraph

import (
	"slices"

	"github.com/matzehuels/riskflow/pkg/errors"
)

const (
	// DefaultCapacity is the vertex capacity used when Options.Capacity is zero.
	DefaultCapacity = 512

	// DefaultRisk is the intrinsic risk assigned when a vertex is registered
	// without one.
	DefaultRisk = 0.05

	// DefaultWeight is the edge weight used when SetEdge is called without one.
	DefaultWeight = 1.0
)

// Options configures a Graph. The zero value selects every default.
type Options struct {
	// Capacity is the fixed upper bound on the vertex count. All dense
	// arrays are preallocated to this size; registering past it fails
	// with CAPACITY_EXCEEDED rather than growing.
	Capacity int

	// DefaultRisk overrides [DefaultRisk] when positive.
	DefaultRisk float64

	// DefaultWeight overrides [DefaultWeight] when positive.
	DefaultWeight float64
}

// Graph is a failure-propagation graph over caller-owned handles of type H.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph[H comparable] struct {
	capacity      int
	defaultRisk   float64
	defaultWeight float64

	index   map[H]int // handle -> dense index
	handles []H       // dense index -> handle, len == n

	r0       []float64 // intrinsic risk, len == capacity
	adj      matrix    // direct edge weights, adj[dst][src]
	collapse matrix    // OR-combined path probabilities, collapse[dst][src]

	// paths[dst][src] holds the simple paths from src to dst. Only
	// non-empty cells are materialized.
	paths map[int]map[int]PathSet

	// dirty marks cells whose path set shrank and whose collapsed value
	// has not been recomputed yet.
	dirty map[cell]struct{}
}

type cell struct{ dst, src int }

// New creates an empty graph with preallocated arrays for opts.Capacity
// vertices.
func New[H comparable](opts Options) *Graph[H] {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.DefaultRisk <= 0 || opts.DefaultRisk > 1 {
		opts.DefaultRisk = DefaultRisk
	}
	if opts.DefaultWeight <= 0 || opts.DefaultWeight > 1 {
		opts.DefaultWeight = DefaultWeight
	}
	return &Graph[H]{
		capacity:      opts.Capacity,
		defaultRisk:   opts.DefaultRisk,
		defaultWeight: opts.DefaultWeight,
		index:         make(map[H]int),
		handles:       make([]H, 0, opts.Capacity),
		r0:            make([]float64, opts.Capacity),
		adj:           newMatrix(opts.Capacity),
		collapse:      newMatrix(opts.Capacity),
		paths:         make(map[int]map[int]PathSet),
		dirty:         make(map[cell]struct{}),
	}
}

// Len returns the number of registered vertices.
func (g *Graph[H]) Len() int { return len(g.handles) }

// DefaultRisk returns the intrinsic risk given to vertices registered
// without one.
func (g *Graph[H]) DefaultRisk() float64 { return g.defaultRisk }

// Capacity returns the fixed vertex capacity.
func (g *Graph[H]) Capacity() int { return g.capacity }

// Handles returns the registered handles in index order.
func (g *Graph[H]) Handles() []H {
	out := make([]H, len(g.handles))
	copy(out, g.handles)
	return out
}

// =============================================================================
// Handle Registry
// =============================================================================

// Register assigns the next free index to handle. The optional risk sets the
// vertex's intrinsic risk; without it the graph default is used.
func (g *Graph[H]) Register(handle H, risk ...float64) (int, error) {
	var risks []float64
	if len(risk) > 0 {
		risks = risk[:1]
	}
	idx, err := g.RegisterBatch([]H{handle}, risks)
	if err != nil {
		return -1, err
	}
	return idx[0], nil
}

// RegisterBatch registers handles in order, equivalent to calling Register
// for each. risks may be nil to use the default for every vertex; otherwise
// it must have one entry per handle. Every precondition is checked before
// any state changes, so a failed batch leaves the graph untouched.
func (g *Graph[H]) RegisterBatch(handles []H, risks []float64) ([]int, error) {
	if risks != nil && len(risks) != len(handles) {
		return nil, errors.New(errors.ErrCodeInvalidInput, "got %d risks for %d handles", len(risks), len(handles))
	}
	if n := len(g.handles) + len(handles); n > g.capacity {
		return nil, errors.New(errors.ErrCodeCapacityExceeded, "registering %d vertices would exceed capacity %d", len(handles), g.capacity)
	}
	seen := make(map[H]struct{}, len(handles))
	for i, h := range handles {
		if _, ok := g.index[h]; ok {
			return nil, errors.New(errors.ErrCodeDuplicateHandle, "handle %v already registered", h)
		}
		if _, ok := seen[h]; ok {
			return nil, errors.New(errors.ErrCodeDuplicateHandle, "handle %v repeated in batch", h)
		}
		seen[h] = struct{}{}
		if risks != nil {
			if err := errors.ValidateRisk(risks[i]); err != nil {
				return nil, err
			}
		}
	}

	out := make([]int, len(handles))
	for i, h := range handles {
		n := len(g.handles)
		g.index[h] = n
		g.handles = append(g.handles, h)
		g.r0[n] = g.defaultRisk
		if risks != nil {
			g.r0[n] = risks[i]
		}
		g.adj.clear(n, n+1)
		g.collapse.clear(n, n+1)
		out[i] = n
	}
	return out, nil
}

// IndexOf returns the current index of handle. Indices shift when vertices
// below them are unregistered, so callers should resolve handles again after
// every mutation.
func (g *Graph[H]) IndexOf(handle H) (int, error) {
	idx, ok := g.index[handle]
	if !ok {
		return -1, errors.New(errors.ErrCodeUnknownHandle, "unknown handle %v", handle)
	}
	return idx, nil
}

// HandleAt returns the handle registered at index idx.
func (g *Graph[H]) HandleAt(idx int) (H, error) {
	if idx < 0 || idx >= len(g.handles) {
		var zero H
		return zero, errors.New(errors.ErrCodeUnknownHandle, "index %d out of range [0,%d)", idx, len(g.handles))
	}
	return g.handles[idx], nil
}

// Has reports whether handle is registered.
func (g *Graph[H]) Has(handle H) bool {
	_, ok := g.index[handle]
	return ok
}

// Unregister removes handle from the graph. Every direct edge touching the
// vertex is deleted first, which purges every path through it; then all
// per-vertex and per-pair structures above its index shift down by one.
func (g *Graph[H]) Unregister(handle H) error {
	v, err := g.IndexOf(handle)
	if err != nil {
		return err
	}
	g.removeVertex(v)
	return nil
}

// UnregisterBatch removes every handle. All handles are resolved before any
// vertex is removed; an unknown or repeated handle fails the whole batch.
func (g *Graph[H]) UnregisterBatch(handles []H) error {
	seen := make(map[H]struct{}, len(handles))
	for _, h := range handles {
		if _, err := g.IndexOf(h); err != nil {
			return err
		}
		if _, ok := seen[h]; ok {
			return errors.New(errors.ErrCodeInvalidInput, "handle %v repeated in batch", h)
		}
		seen[h] = struct{}{}
	}
	for _, h := range handles {
		g.removeVertex(g.index[h])
	}
	return nil
}

func (g *Graph[H]) removeVertex(v int) {
	n := len(g.handles)
	for k := 0; k < n; k++ {
		if g.adj.at(v, k) != 0 {
			g.deleteEdge(k, v)
		}
		if k != v && g.adj.at(k, v) != 0 {
			g.deleteEdge(v, k)
		}
	}
	g.flush()

	delete(g.index, g.handles[v])
	g.handles = slices.Delete(g.handles, v, v+1)
	for i := v; i < len(g.handles); i++ {
		g.index[g.handles[i]] = i
	}
	copy(g.r0[v:n-1], g.r0[v+1:n])
	g.r0[n-1] = 0

	g.adj.remove(v, n)
	g.collapse.remove(v, n)
	g.relabelPaths(v)
}

// =============================================================================
// Intrinsic Risk
// =============================================================================

// Risk returns the intrinsic risk of handle.
func (g *Graph[H]) Risk(handle H) (float64, error) {
	idx, err := g.IndexOf(handle)
	if err != nil {
		return 0, err
	}
	return g.r0[idx], nil
}

// SetRisk replaces the intrinsic risk of handle.
func (g *Graph[H]) SetRisk(handle H, risk float64) error {
	idx, err := g.IndexOf(handle)
	if err != nil {
		return err
	}
	if err := errors.ValidateRisk(risk); err != nil {
		return err
	}
	g.r0[idx] = risk
	return nil
}

// IntrinsicRisks returns the intrinsic risk vector in index order.
func (g *Graph[H]) IntrinsicRisks() []float64 {
	out := make([]float64, len(g.handles))
	copy(out, g.r0[:len(g.handles)])
	return out
}
