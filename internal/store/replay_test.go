package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/router"
)

// recordTour journals a short navigation session against m.
func recordTour(t *testing.T, s *Store, m *ir.Manifest, session string, paths ...string) {
	t.Helper()
	ctx := context.Background()

	r := router.New(m.Routes, m.Scenes, router.WithLogger(quietLogger()))
	defer r.Close()
	j, err := NewJournal(ctx, s, session, WithJournalLogger(quietLogger()))
	require.NoError(t, err)
	j.Record(r.State())
	defer r.Subscribe(j.Record)()

	for _, p := range paths {
		r.Navigate(p)
	}
	require.NoError(t, j.Err())
}

func TestReplaySession_Reproduces(t *testing.T) {
	s := createTestStore(t)
	m := testManifest()
	recordTour(t, s, m, "tour", "/", "/posts/a%20b?x=1&y=2", "/nowhere")

	result, err := s.ReplaySession(context.Background(), "tour", m, quietLogger())
	require.NoError(t, err)
	assert.True(t, result.OK(), "divergences: %+v", result.Divergences)
	assert.Equal(t, 4, result.Steps)
	assert.Equal(t, "tour", result.Session)
}

func TestReplaySession_DetectsChangedRoutes(t *testing.T) {
	s := createTestStore(t)
	m := testManifest()
	recordTour(t, s, m, "tour", "/", "/posts/hello")

	// The post route now points at the home scene
	changed := testManifest()
	changed.Routes[1].SceneID = "home"

	result, err := s.ReplaySession(context.Background(), "tour", changed, quietLogger())
	require.NoError(t, err)
	require.Len(t, result.Divergences, 1)

	d := result.Divergences[0]
	assert.Equal(t, "/posts/hello", d.Path)
	assert.Equal(t, "post", d.Recorded["sceneId"])
	assert.Equal(t, "home", d.Replayed["sceneId"])
}

func TestReplaySession_Empty(t *testing.T) {
	s := createTestStore(t)

	result, err := s.ReplaySession(context.Background(), "none", testManifest(), nil)
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 0, result.Steps)
	assert.NotNil(t, result.Divergences)
}

func TestReplaySession_Cancelled(t *testing.T) {
	s := createTestStore(t)
	m := testManifest()
	recordTour(t, s, m, "tour", "/")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ReplaySession(ctx, "tour", m, quietLogger())
	assert.Error(t, err)
}
