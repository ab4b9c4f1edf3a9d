package store_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/riskflow/pkg/store"
	"github.com/matzehuels/riskflow/pkg/store/storetest"
)

func TestMemoryStore(t *testing.T) {
	storetest.Run(t, store.NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	s, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	storetest.Run(t, s)
}

func TestFileStoreIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	s, _ := store.NewFileStore(dir)
	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0600); err != nil {
		t.Fatal(err)
	}
	list, err := s.List(t.Context())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("List = %v, want empty", list)
	}
}

func TestFileStoreRejectsPathIDs(t *testing.T) {
	s, _ := store.NewFileStore(t.TempDir())
	if _, err := s.Load(t.Context(), "../etc/passwd"); err == nil {
		t.Error("Load accepted a path-shaped id")
	}
}

func TestNewSnapshotRejectsNil(t *testing.T) {
	if _, err := store.NewSnapshot(nil); err == nil {
		t.Error("NewSnapshot(nil) should fail")
	}
}
