package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/scenekit/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// testManifest returns a small manifest with a parameterised route.
func testManifest() *ir.Manifest {
	return &ir.Manifest{
		ID:      "site",
		Name:    "Site",
		Version: "1.0.0",
		Routes: []ir.Route{
			{ID: "home", Path: "/", SceneID: "home"},
			{ID: "post", Path: "/posts/:slug", SceneID: "post"},
		},
		Scenes: []ir.Scene{
			{ID: "home", Name: "Home", Root: &ir.Node{ID: "home-root"}},
			{ID: "post", Name: "Post", Root: &ir.Node{ID: "post-root", Kind: ir.KindHeading, Content: "Post"}},
		},
		Assets: []ir.Asset{},
	}
}
