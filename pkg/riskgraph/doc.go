// Package riskgraph maintains a directed graph of components whose edges carry
// failure-propagation probabilities, and computes for every vertex the total
// probability that it fails.
//
// # Overview
//
// Each vertex has an intrinsic risk r0 in [0,1]: the probability that it fails
// on its own. A direct edge a→b with weight w in (0,1] is the conditional
// probability that b fails given that a failed. The total risk of a vertex is
// the OR-combination of its own intrinsic risk and every predecessor's risk
// carried along every path into it.
//
// Naively propagating scalars over a transitive closure double-counts paths
// that share edges and cannot be undone when an edge disappears. The graph
// therefore keeps an explicit path registry: for every ordered pair it stores
// the distinct simple paths discovered so far, each tagged with the product of
// its edge weights. The collapsed closure for a pair is the OR-combination of
// its path set, and deleting an edge removes exactly the paths that traverse
// it.
//
// # Basic Usage
//
// Handles are opaque, caller-owned comparable values. The graph translates
// them into dense indices:
//
//	g := riskgraph.New[string](riskgraph.Options{})
//	_, _ = g.RegisterBatch([]string{"s", "c", "v", "p"}, []float64{0.25, 0.25, 0.25, 0.25})
//	_ = g.SetEdge("s", "v", 1.0/3)
//	_ = g.SetEdge("c", "v", 1.0/3)
//	_ = g.SetEdge("v", "p", 1.0/3)
//	risk := g.ComputeRisk() // indexed in registration order
//
// # Indices
//
// Indices are densely packed. Unregistering a vertex shifts every index above
// it down by one, so callers must re-resolve handles with [Graph.IndexOf]
// instead of caching indices across mutations.
//
// # Probability model
//
// Distinct paths between the same two vertices are treated as independent
// failure events when OR-combined, even when they share edges. This is a
// modelling approximation and is preserved deliberately; consumers may depend
// on the numeric behavior.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. All mutations must be serialized
// by the caller.
package riskgraph
