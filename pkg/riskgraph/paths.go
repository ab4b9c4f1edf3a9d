package riskgraph

import (
	"encoding/binary"
	"slices"

	"github.com/matzehuels/riskflow/pkg/errors"
)

// Path is an ordered sequence of vertex indices connected by direct edges,
// starting at the source and ending at the destination.
type Path []int

// key encodes the path as a comparable map key.
func (p Path) key() string {
	buf := make([]byte, 0, len(p)*2)
	for _, v := range p {
		buf = binary.AppendUvarint(buf, uint64(v))
	}
	return string(buf)
}

// ContainsEdge reports whether a→b appears as a contiguous step of the path.
func (p Path) ContainsEdge(a, b int) bool {
	for i := 0; i+1 < len(p); i++ {
		if p[i] == a && p[i+1] == b {
			return true
		}
	}
	return false
}

// Contains reports whether the path visits vertex v.
func (p Path) Contains(v int) bool {
	return slices.Contains(p, v)
}

// WeightedPath is a path tagged with the product of its edge weights.
type WeightedPath struct {
	Path Path
	Prob float64
}

// PathSet is the set of distinct paths between one ordered pair of vertices,
// keyed by the path itself. Two entries with the same vertex sequence are the
// same physical path, so adding a path that is already present overwrites it.
type PathSet map[string]WeightedPath

// Add inserts or overwrites a path.
func (s PathSet) Add(p Path, prob float64) {
	s[p.key()] = WeightedPath{Path: slices.Clone(p), Prob: prob}
}

// Has reports whether the vertex sequence p is in the set.
func (s PathSet) Has(p Path) bool {
	_, ok := s[p.key()]
	return ok
}

// Combine returns 1 − Π(1 − p) over the probabilities of every path in the
// set: the probability that at least one path carries the failure. An empty
// set combines to 0. Factors are multiplied in sorted order so the result is
// bit-for-bit independent of map iteration order.
func (s PathSet) Combine() float64 {
	probs := make([]float64, 0, len(s))
	for _, wp := range s {
		probs = append(probs, wp.Prob)
	}
	slices.Sort(probs)
	return OrCombineAll(probs...)
}

// Clone returns an independent copy of the set.
func (s PathSet) Clone() PathSet {
	out := make(PathSet, len(s))
	for k, wp := range s {
		out[k] = WeightedPath{Path: slices.Clone(wp.Path), Prob: wp.Prob}
	}
	return out
}

// Sorted returns the paths ordered by decreasing probability, ties broken by
// vertex sequence so the order is deterministic.
func (s PathSet) Sorted() []WeightedPath {
	out := make([]WeightedPath, 0, len(s))
	for _, wp := range s {
		out = append(out, wp)
	}
	slices.SortFunc(out, func(x, y WeightedPath) int {
		switch {
		case x.Prob > y.Prob:
			return -1
		case x.Prob < y.Prob:
			return 1
		}
		return slices.Compare(x.Path, y.Path)
	})
	return out
}

// ComposePaths joins every path of head (ending at some midpoint m) with every
// path of tail (starting at m). The shared midpoint appears once in the
// result and the probability is the product of both halves. Concatenations
// that would visit a vertex twice are dropped: only simple paths propagate
// risk.
func ComposePaths(head, tail PathSet) PathSet {
	out := make(PathSet)
	for _, h := range head {
		for _, t := range tail {
			if len(h.Path) == 0 || len(t.Path) == 0 || h.Path[len(h.Path)-1] != t.Path[0] {
				continue
			}
			if !disjointAfterJoint(h.Path, t.Path) {
				continue
			}
			joined := make(Path, 0, len(h.Path)+len(t.Path)-1)
			joined = append(joined, h.Path...)
			joined = append(joined, t.Path[1:]...)
			out[joined.key()] = WeightedPath{Path: joined, Prob: h.Prob * t.Prob}
		}
	}
	return out
}

func disjointAfterJoint(head, tail Path) bool {
	for _, v := range tail[1:] {
		if head.Contains(v) {
			return false
		}
	}
	return true
}

// OrCombine returns the probability that at least one of two independent
// events occurs: 1 − (1−a)(1−b).
func OrCombine(a, b float64) float64 {
	return 1 - (1-a)*(1-b)
}

// OrCombineAll folds OrCombine over ps. Up to rounding, the result does not
// depend on the order of ps.
func OrCombineAll(ps ...float64) float64 {
	q := 1.0
	for _, p := range ps {
		q *= 1 - p
	}
	return 1 - q
}

// InverseOr recovers x from combined = OrCombine(x, known). The inversion is
// undefined when known is exactly 1, since every x then yields combined = 1;
// that case returns a DEGENERATE_OR_INVERSION error.
//
// The graph never uses this to retract a path's contribution. Deletion
// recomputes from the surviving path set instead.
func InverseOr(combined, known float64) (float64, error) {
	if known == 1 {
		return 0, errors.New(errors.ErrCodeDegenerateInverse, "cannot remove an event of probability 1 from an OR-combination")
	}
	return (combined - known) / (1 - known), nil
}
