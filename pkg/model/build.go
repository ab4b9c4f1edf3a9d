package model

import (
	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/riskgraph"
)

// Build validates m and constructs a graph from it. Vertices are registered
// in model order, so vertex i of the model gets index i in the graph, and
// edges are applied in model order.
func Build(m *Model, opts riskgraph.Options) (*riskgraph.Graph[string], error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	g := riskgraph.New[string](opts)
	for _, v := range m.Vertices {
		var err error
		if v.Risk != nil {
			_, err = g.Register(v.ID, *v.Risk)
		} else {
			_, err = g.Register(v.ID)
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "vertex %q", v.ID)
		}
	}

	edges := make([]riskgraph.Edge[string], len(m.Edges))
	for i, e := range m.Edges {
		edges[i] = riskgraph.Edge[string]{From: e.From, To: e.To}
		if e.Weight != nil {
			edges[i].Weight = *e.Weight
		}
	}
	if err := g.SetEdges(edges); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidModel, err, "edges")
	}
	return g, nil
}

// FromGraph snapshots the registered handles, intrinsic risks and direct
// edges of g. Risks and weights are always written explicitly. meta supplies
// optional per-vertex metadata.
func FromGraph(g *riskgraph.Graph[string], name string, meta map[string]map[string]any) *Model {
	m := &Model{Name: name}
	risks := g.IntrinsicRisks()
	for i, h := range g.Handles() {
		m.Vertices = append(m.Vertices, Vertex{ID: h, Risk: Float(risks[i]), Meta: meta[h]})
	}
	for _, e := range g.Edges() {
		m.Edges = append(m.Edges, Edge{From: e.From, To: e.To, Weight: Float(e.Weight)})
	}
	return m
}
