// Package store persists graph models as named snapshots.
//
// A snapshot holds only what [model.Model] holds: handles, intrinsic risks
// and direct edges. Loading a snapshot rebuilds the closure from scratch.
//
// Backends:
//   - [MemoryStore]: in-process, for tests and single-run tools
//   - [FileStore]: one JSON file per snapshot, for the CLI
//   - mongo.Store: MongoDB collection, for the API server
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
)

// Snapshot is a saved model plus bookkeeping.
type Snapshot struct {
	ID        string       `json:"id" bson:"_id"`
	Name      string       `json:"name,omitempty" bson:"name,omitempty"`
	Model     *model.Model `json:"model" bson:"model"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
}

// Summary describes a snapshot without its model.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Vertices  int       `json:"vertices" bson:"vertices"`
	Edges     int       `json:"edges" bson:"edges"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Summary returns the listing entry for s.
func (s *Snapshot) Summary() Summary {
	sum := Summary{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt}
	if s.Model != nil {
		sum.Vertices = len(s.Model.Vertices)
		sum.Edges = len(s.Model.Edges)
	}
	return sum
}

// Store is the interface for snapshot backends.
type Store interface {
	// Save validates m and stores it under a new ID.
	Save(ctx context.Context, m *model.Model) (*Snapshot, error)

	// Load returns the snapshot with the given ID, or a SNAPSHOT_NOT_FOUND
	// error.
	Load(ctx context.Context, id string) (*Snapshot, error)

	// List returns summaries of every snapshot, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Delete removes a snapshot. Deleting a missing snapshot returns
	// SNAPSHOT_NOT_FOUND.
	Delete(ctx context.Context, id string) error

	Close() error
}

// NewSnapshot validates m and wraps it with a fresh ID and timestamp.
// Backends call this from Save.
func NewSnapshot(m *model.Model) (*Snapshot, error) {
	if m == nil {
		return nil, errors.New(errors.ErrCodeInvalidModel, "nil model")
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Snapshot{
		ID:        uuid.NewString(),
		Name:      m.Name,
		Model:     m,
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}, nil
}

// ValidID reports whether id has the shape of a snapshot ID.
func ValidID(id string) bool {
	return uuid.Validate(id) == nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", id)
}
