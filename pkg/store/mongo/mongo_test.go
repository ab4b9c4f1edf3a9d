package mongo

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/matzehuels/riskflow/pkg/store/storetest"
)

// TestStore runs against a real server when RISKFLOW_TEST_MONGO_URI is set.
func TestStore(t *testing.T) {
	uri := os.Getenv("RISKFLOW_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("RISKFLOW_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	s, err := New(ctx, Config{
		URI:        uri,
		Database:   "riskflow_test",
		Collection: fmt.Sprintf("snapshots_%d", time.Now().UnixNano()),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		_ = s.coll.Drop(context.Background())
		s.Close()
	})
	storetest.Run(t, s)
}

func TestNewUnreachable(t *testing.T) {
	_, err := New(context.Background(), Config{
		URI:            "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200",
		ConnectTimeout: 500 * time.Millisecond,
	})
	if err == nil {
		t.Error("New should fail without a server")
	}
}
