// Package mongo implements store.Store on a MongoDB collection.
package mongo

import (
	"context"
	stderrors "errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/riskflow/pkg/errors"
	"github.com/matzehuels/riskflow/pkg/model"
	"github.com/matzehuels/riskflow/pkg/store"
)

// DefaultCollection is the collection used when Config.Collection is empty.
const DefaultCollection = "snapshots"

// Config holds connection settings.
type Config struct {
	URI        string
	Database   string
	Collection string

	// ConnectTimeout bounds the initial connect and ping.
	ConnectTimeout time.Duration
}

// Store persists snapshots as documents keyed by snapshot ID.
type Store struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New connects to MongoDB, pings the primary and ensures the listing index
// exists.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Database == "" {
		cfg.Database = "riskflow"
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "connect %s", cfg.URI)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "ping %s", cfg.URI)
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create index")
	}
	return &Store{client: client, coll: coll}, nil
}

func (s *Store) Save(ctx context.Context, m *model.Model) (*store.Snapshot, error) {
	snap, err := store.NewSnapshot(m)
	if err != nil {
		return nil, err
	}
	if _, err := s.coll.InsertOne(ctx, snap); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "insert snapshot")
	}
	return snap, nil
}

func (s *Store) Load(ctx context.Context, id string) (*store.Snapshot, error) {
	var snap store.Snapshot
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&snap)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "load snapshot %s", id)
	}
	return &snap, nil
}

// List projects vertex and edge counts server-side so models are never
// transferred.
func (s *Store) List(ctx context.Context) ([]store.Summary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}}},
		{{Key: "$project", Value: bson.M{
			"name":       1,
			"created_at": 1,
			"vertices":   bson.M{"$size": bson.M{"$ifNull": bson.A{"$model.vertices", bson.A{}}}},
			"edges":      bson.M{"$size": bson.M{"$ifNull": bson.A{"$model.edges", bson.A{}}}},
		}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list snapshots")
	}
	out := []store.Summary{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode snapshots")
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete snapshot %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeSnapshotNotFound, "snapshot %s not found", id)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
