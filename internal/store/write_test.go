package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/roach88/scenekit/internal/ir"
)

func TestWriteManifest_ContentAddressed(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	hash, inserted, err := s.WriteManifest(ctx, testManifest(), 1)
	if err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}
	if !inserted {
		t.Error("first write should insert")
	}
	if hash != ir.MustManifestHash(testManifest()) {
		t.Errorf("hash = %q, want manifest hash", hash)
	}

	again, inserted, err := s.WriteManifest(ctx, testManifest(), 2)
	if err != nil {
		t.Fatalf("second WriteManifest failed: %v", err)
	}
	if inserted {
		t.Error("identical manifest should not insert twice")
	}
	if again != hash {
		t.Errorf("hash changed between writes: %q vs %q", again, hash)
	}

	rec, err := s.ReadManifest(ctx, hash)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}
	if rec.Seq != 1 {
		t.Errorf("Seq = %d, want 1 (first write wins)", rec.Seq)
	}
}

func TestWriteManifest_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	hash, _, err := s.WriteManifest(ctx, testManifest(), 1)
	if err != nil {
		t.Fatalf("WriteManifest failed: %v", err)
	}
	rec, err := s.ReadManifest(ctx, hash)
	if err != nil {
		t.Fatalf("ReadManifest failed: %v", err)
	}

	if rec.ManifestID != "site" || rec.Name != "Site" || rec.Version != "1.0.0" {
		t.Errorf("unexpected columns: %+v", rec)
	}
	if got := ir.MustManifestHash(rec.Manifest); got != hash {
		t.Errorf("stored body hashes to %q, want %q", got, hash)
	}
	if rec.Manifest.Scenes[1].Root.Kind != ir.KindHeading {
		t.Errorf("node kind = %v, want heading", rec.Manifest.Scenes[1].Root.Kind)
	}
}

func TestLatestManifest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	v1 := testManifest()
	v2 := testManifest()
	v2.Version = "2.0.0"

	if _, _, err := s.WriteManifest(ctx, v1, 1); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.WriteManifest(ctx, v2, 2); err != nil {
		t.Fatal(err)
	}

	rec, err := s.LatestManifest(ctx, "site")
	if err != nil {
		t.Fatalf("LatestManifest failed: %v", err)
	}
	if rec.Version != "2.0.0" {
		t.Errorf("Version = %q, want 2.0.0", rec.Version)
	}

	all, err := s.ReadManifests(ctx)
	if err != nil {
		t.Fatalf("ReadManifests failed: %v", err)
	}
	if len(all) != 2 || all[0].Version != "1.0.0" {
		t.Errorf("ReadManifests order wrong: %+v", all)
	}

	if _, err := s.LatestManifest(ctx, "missing"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("LatestManifest(missing) err = %v, want sql.ErrNoRows", err)
	}
}

func TestWriteNavigation_UniqueSessionSeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	nav := Navigation{Session: "s1", Seq: 1, Path: "/"}
	if _, err := s.WriteNavigation(ctx, nav); err != nil {
		t.Fatalf("WriteNavigation failed: %v", err)
	}
	if _, err := s.WriteNavigation(ctx, nav); err == nil {
		t.Error("duplicate (session, seq) should fail")
	}

	// Same seq in another session is fine
	nav.Session = "s2"
	if _, err := s.WriteNavigation(ctx, nav); err != nil {
		t.Errorf("WriteNavigation in other session failed: %v", err)
	}
}

func TestWriteInstance_Upsert(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := InstanceRecord{
		ID:         "card-1",
		PrefabID:   "card",
		Parameters: map[string]any{"title": "Hello", "count": 3},
		Node:       &ir.Node{ID: "card-1", Content: "Hello"},
		Seq:        1,
	}
	if err := s.WriteInstance(ctx, rec); err != nil {
		t.Fatalf("WriteInstance failed: %v", err)
	}

	rec.Parameters = map[string]any{"title": "Bye"}
	rec.Node = &ir.Node{ID: "card-1", Content: "Bye"}
	rec.VariantID = "compact"
	rec.Seq = 5
	if err := s.WriteInstance(ctx, rec); err != nil {
		t.Fatalf("second WriteInstance failed: %v", err)
	}

	got, err := s.ReadInstance(ctx, "card-1")
	if err != nil {
		t.Fatalf("ReadInstance failed: %v", err)
	}
	if got.Seq != 5 || got.VariantID != "compact" {
		t.Errorf("upsert did not replace row: %+v", got)
	}
	if got.Node.Content != "Bye" {
		t.Errorf("Node.Content = %q, want Bye", got.Node.Content)
	}
	if _, ok := got.Parameters["count"]; ok {
		t.Error("parameters should be replaced, not merged")
	}
}

func TestWriteInstance_NilNode(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteInstance(context.Background(), InstanceRecord{ID: "x", PrefabID: "card"})
	if err == nil {
		t.Error("nil node should be rejected")
	}
}

func TestDeleteInstance(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec := InstanceFromPrefab(ir.PrefabInstance{ID: "i1", PrefabID: "card", Instance: &ir.Node{ID: "i1"}}, 1)
	if err := s.WriteInstance(ctx, rec); err != nil {
		t.Fatal(err)
	}

	removed, err := s.DeleteInstance(ctx, "i1")
	if err != nil || !removed {
		t.Fatalf("DeleteInstance = %v, %v; want true, nil", removed, err)
	}
	removed, err = s.DeleteInstance(ctx, "i1")
	if err != nil || removed {
		t.Errorf("second DeleteInstance = %v, %v; want false, nil", removed, err)
	}
	if _, err := s.ReadInstance(ctx, "i1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("ReadInstance after delete err = %v, want sql.ErrNoRows", err)
	}
}
