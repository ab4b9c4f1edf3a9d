// Package storetest provides a conformance suite for store.Store backends.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/riskgraph"
	"github.com/matzehuels/riskflow/pkg/store"
)

// Sample returns a small valid model.
func Sample(name string) *model.Model {
	return &model.Model{
		Name: name,
		Vertices: []model.Vertex{
			{ID: "db", Risk: model.Float(0.1), Meta: map[string]any{"tier": "data"}},
			{ID: "api"},
		},
		Edges: []model.Edge{{From: "db", To: "api", Weight: model.Float(0.5)}},
	}
}

// Run exercises every Store operation against s. s must start empty.
func Run(t *testing.T, s store.Store) {
	ctx := context.Background()

	t.Run("SaveAndLoad", func(t *testing.T) {
		snap, err := s.Save(ctx, Sample("first"))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		if !store.ValidID(snap.ID) {
			t.Errorf("Save returned malformed id %q", snap.ID)
		}

		got, err := s.Load(ctx, snap.ID)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got.Name != "first" || len(got.Model.Vertices) != 2 || len(got.Model.Edges) != 1 {
			t.Errorf("Load = %+v", got.Model)
		}
		if got.Model.Vertices[1].Risk != nil {
			t.Errorf("omitted risk loaded as %v", *got.Model.Vertices[1].Risk)
		}
		if w := got.Model.Edges[0].Weight; w == nil || *w != 0.5 {
			t.Errorf("edge weight = %v, want 0.5", w)
		}
		if !got.CreatedAt.Equal(snap.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, snap.CreatedAt)
		}
		if _, err := model.Build(got.Model, riskgraph.Options{}); err != nil {
			t.Errorf("loaded model does not build: %v", err)
		}
	})

	t.Run("SaveInvalid", func(t *testing.T) {
		bad := Sample("bad")
		bad.Edges[0].To = "nowhere"
		if _, err := s.Save(ctx, bad); !errors.Is(err, errors.ErrCodeInvalidModel) {
			t.Errorf("Save(invalid) = %v, want %s", err, errors.ErrCodeInvalidModel)
		}
	})

	t.Run("LoadMissing", func(t *testing.T) {
		_, err := s.Load(ctx, "00000000-0000-0000-0000-000000000000")
		if !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
			t.Errorf("Load(missing) = %v, want %s", err, errors.ErrCodeSnapshotNotFound)
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		time.Sleep(2 * time.Millisecond)
		second, err := s.Save(ctx, Sample("second"))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		list, err := s.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(list) != 2 {
			t.Fatalf("List returned %d snapshots, want 2", len(list))
		}
		if list[0].ID != second.ID {
			t.Errorf("List()[0] = %s, want newest %s", list[0].Name, second.Name)
		}
		if list[0].Vertices != 2 || list[0].Edges != 1 {
			t.Errorf("summary counts = %d/%d, want 2/1", list[0].Vertices, list[0].Edges)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		list, _ := s.List(ctx)
		for _, sum := range list {
			if err := s.Delete(ctx, sum.ID); err != nil {
				t.Fatalf("Delete(%s): %v", sum.ID, err)
			}
		}
		if list, _ := s.List(ctx); len(list) != 0 {
			t.Errorf("List after delete = %d snapshots, want 0", len(list))
		}
		if len(list) > 0 {
			err := s.Delete(ctx, list[0].ID)
			if !errors.Is(err, errors.ErrCodeSnapshotNotFound) {
				t.Errorf("second Delete = %v, want %s", err, errors.ErrCodeSnapshotNotFound)
			}
		}
	})
}
