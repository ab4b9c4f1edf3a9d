package riskgraph

import (
	"slices"
)

// ComputeRisk returns the total failure probability of every vertex, in
// index order.
//
// For vertex i the result is
//
//	1 − Π_j (1 − (I + C)[i][j] · r0[j])
//
// where C is the collapsed closure: the OR-combination, over every vertex j
// with a (possibly empty) path into i, of j failing on its own and the
// failure reaching i. Collapsed values invalidated by edge deletions are
// recomputed from the surviving paths first.
//
// Every value lies in [0,1], and a vertex with no incoming path gets exactly
// its intrinsic risk.
func (g *Graph[H]) ComputeRisk() []float64 {
	g.flush()
	n := len(g.handles)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = g.riskAt(i)
	}
	return out
}

// RiskOf returns the total failure probability of a single vertex.
func (g *Graph[H]) RiskOf(handle H) (float64, error) {
	i, err := g.IndexOf(handle)
	if err != nil {
		return 0, err
	}
	g.flush()
	return g.riskAt(i), nil
}

// RiskMap returns ComputeRisk keyed by handle.
func (g *Graph[H]) RiskMap() map[H]float64 {
	risk := g.ComputeRisk()
	out := make(map[H]float64, len(risk))
	for i, r := range risk {
		out[g.handles[i]] = r
	}
	return out
}

func (g *Graph[H]) riskAt(i int) float64 {
	n := len(g.handles)
	q := 1.0
	incoming := false
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		if c := g.collapse.at(i, j) * g.r0[j]; c > 0 {
			q *= 1 - c
			incoming = true
		}
	}
	if !incoming {
		return g.r0[i]
	}
	return clamp01(1 - (1-g.r0[i])*q)
}

// Contribution is one source's share of a vertex's total risk: the
// probability that Source fails on its own and the failure reaches the
// vertex.
type Contribution[H comparable] struct {
	Source H
	Value  float64
}

// Contributions breaks the total risk of handle into its per-source terms,
// largest first. The vertex's own intrinsic risk is included with itself as
// the source; sources that cannot reach the vertex are omitted.
func (g *Graph[H]) Contributions(handle H) ([]Contribution[H], error) {
	i, err := g.IndexOf(handle)
	if err != nil {
		return nil, err
	}
	g.flush()
	n := len(g.handles)
	var out []Contribution[H]
	for j := 0; j < n; j++ {
		v := g.r0[j]
		if j != i {
			v *= g.collapse.at(i, j)
		}
		if v > 0 {
			out = append(out, Contribution[H]{Source: g.handles[j], Value: v})
		}
	}
	slices.SortStableFunc(out, func(x, y Contribution[H]) int {
		switch {
		case x.Value > y.Value:
			return -1
		case x.Value < y.Value:
			return 1
		}
		return 0
	})
	return out, nil
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
