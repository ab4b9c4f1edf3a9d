package pipeline

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/riskgraph"
)

// Report summarises the computed risk of every vertex of a model.
type Report struct {
	Name     string       `json:"name,omitempty"`
	Vertices []VertexRisk `json:"vertices"`
}

// VertexRisk is the risk of one vertex. Sources breaks Total down by
// originating vertex, largest first; the vertex itself appears when its
// intrinsic risk is non-zero.
type VertexRisk struct {
	ID        string   `json:"id"`
	Intrinsic float64  `json:"intrinsic"`
	Total     float64  `json:"total"`
	Sources   []Source `json:"sources,omitempty"`
}

// Source is one vertex's contribution to another vertex's total risk.
type Source struct {
	ID    string  `json:"id"`
	Value float64 `json:"value"`
}

// Analyze builds a graph from m and computes its report. Vertices appear in
// model order. The built graph is returned for callers that need paths.
func Analyze(m *model.Model, opts riskgraph.Options) (*Report, *riskgraph.Graph[string], error) {
	g, err := model.Build(m, opts)
	if err != nil {
		return nil, nil, err
	}
	return ReportFromGraph(g, m.Name), g, nil
}

// ReportFromGraph computes the report of a live graph.
func ReportFromGraph(g *riskgraph.Graph[string], name string) *Report {
	totals := g.ComputeRisk()
	intrinsic := g.IntrinsicRisks()
	r := &Report{Name: name, Vertices: make([]VertexRisk, 0, len(totals))}
	for i, h := range g.Handles() {
		v := VertexRisk{ID: h, Intrinsic: intrinsic[i], Total: totals[i]}
		contribs, _ := g.Contributions(h)
		for _, c := range contribs {
			v.Sources = append(v.Sources, Source{ID: c.Source, Value: c.Value})
		}
		r.Vertices = append(r.Vertices, v)
	}
	return r
}

// Risk returns the total risk keyed by vertex ID.
func (r *Report) Risk() map[string]float64 {
	out := make(map[string]float64, len(r.Vertices))
	for _, v := range r.Vertices {
		out[v.ID] = v.Total
	}
	return out
}

// Lookup returns the entry for id.
func (r *Report) Lookup(id string) (VertexRisk, bool) {
	for _, v := range r.Vertices {
		if v.ID == id {
			return v, true
		}
	}
	return VertexRisk{}, false
}

// Ranked returns the vertices ordered by decreasing total risk, ties broken
// by ID.
func (r *Report) Ranked() []VertexRisk {
	out := slices.Clone(r.Vertices)
	slices.SortFunc(out, func(a, b VertexRisk) int {
		if c := cmp.Compare(b.Total, a.Total); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Above returns the ranked vertices whose total risk is at least threshold.
func (r *Report) Above(threshold float64) []VertexRisk {
	ranked := r.Ranked()
	for i, v := range ranked {
		if v.Total < threshold {
			return ranked[:i]
		}
	}
	return ranked
}

// MarshalReport encodes a report as indented JSON.
func MarshalReport(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// UnmarshalReport decodes a report written by MarshalReport.
func UnmarshalReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &r, nil
}
