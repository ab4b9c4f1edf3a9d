package model

import (
	"fmt"

	"github.com/matzehuels/riskflow/pkg/errors"
)

// =============================================================================
// Model - Graph Persistence Format
// =============================================================================

// Model is the persisted form of a risk graph: vertex handles with their
// intrinsic risks, and the direct edges between them. Closure values and path
// registries are never stored; they are rebuilt by [Build].
//
// The same struct is used for model files, API payloads, cache entries and
// snapshot documents.
type Model struct {
	Name     string   `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Vertices []Vertex `json:"vertices" toml:"vertices" bson:"vertices"`
	Edges    []Edge   `json:"edges" toml:"edges" bson:"edges"`
}

// Vertex is one component of the model.
type Vertex struct {
	ID   string         `json:"id" toml:"id" bson:"id"`
	Risk *float64       `json:"risk,omitempty" toml:"risk,omitempty" bson:"risk,omitempty"` // nil means the graph default
	Meta map[string]any `json:"meta,omitempty" toml:"meta,omitempty" bson:"meta,omitempty"`
}

// Edge is a direct failure-propagation edge.
type Edge struct {
	From   string   `json:"from" toml:"from" bson:"from"`
	To     string   `json:"to" toml:"to" bson:"to"`
	Weight *float64 `json:"weight,omitempty" toml:"weight,omitempty" bson:"weight,omitempty"` // nil means the graph default
}

// Float returns a pointer to v, for building models in code.
func Float(v float64) *float64 { return &v }

// Validate checks the model for problems that would make [Build] fail:
// malformed or duplicate vertex IDs, risks outside [0,1], weights outside
// (0,1], and edges that reference unknown vertices.
func (m *Model) Validate() error {
	seen := make(map[string]struct{}, len(m.Vertices))
	for i, v := range m.Vertices {
		if err := errors.ValidateVertexID(v.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidModel, err, "vertex %d", i)
		}
		if _, ok := seen[v.ID]; ok {
			return errors.New(errors.ErrCodeInvalidModel, "duplicate vertex %q", v.ID)
		}
		seen[v.ID] = struct{}{}
		if v.Risk != nil {
			if err := errors.ValidateRisk(*v.Risk); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidModel, err, "vertex %q", v.ID)
			}
		}
	}
	for _, e := range m.Edges {
		for _, end := range []string{e.From, e.To} {
			if _, ok := seen[end]; !ok {
				return errors.New(errors.ErrCodeInvalidModel, "edge %s->%s references unknown vertex %q", e.From, e.To, end)
			}
		}
		if e.Weight != nil {
			if err := errors.ValidateWeight(*e.Weight); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidModel, err, "edge %s->%s", e.From, e.To)
			}
		}
	}
	return nil
}

// VertexIDs returns the vertex IDs in model order.
func (m *Model) VertexIDs() []string {
	ids := make([]string, len(m.Vertices))
	for i, v := range m.Vertices {
		ids[i] = v.ID
	}
	return ids
}

// Meta returns the metadata of the vertex with the given ID, or nil.
func (m *Model) Meta(id string) map[string]any {
	for _, v := range m.Vertices {
		if v.ID == id {
			return v.Meta
		}
	}
	return nil
}

// String summarizes the model for log output.
func (m *Model) String() string {
	name := m.Name
	if name == "" {
		name = "unnamed"
	}
	return fmt.Sprintf("%s (%d vertices, %d edges)", name, len(m.Vertices), len(m.Edges))
}
