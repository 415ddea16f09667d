package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/store"
	"github.com/roach88/scenekit/internal/testutil"
)

func TestCompileToStdout(t *testing.T) {
	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), sampleManifestPath(t))
	require.NoError(t, err)

	want, err := ir.MarshalCanonical(testutil.SampleManifest())
	require.NoError(t, err)
	assert.Equal(t, string(want), strings.TrimSpace(out))
}

func TestCompileToFileRoundTrips(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "compiled.json")

	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), siteCUEDir(t), "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Compiled site")
	assert.Contains(t, out, "1 route(s), 1 scene(s), 0 asset(s), 0 prefab(s)")

	original, err := LoadManifest(siteCUEDir(t))
	require.NoError(t, err)
	compiled, err := LoadManifest(outPath)
	require.NoError(t, err)
	assert.Equal(t, original.Hash, compiled.Hash, "canonical output compiles to the same manifest")
}

func TestCompileJSON(t *testing.T) {
	out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), sampleManifestPath(t))
	require.NoError(t, err)

	var result CompilationResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "sample", result.ID)
	assert.Equal(t, 2, result.Routes)
	assert.Equal(t, 2, result.Assets)
	assert.Equal(t, 1, result.Prefabs)
	assert.Equal(t, ir.MustManifestHash(testutil.SampleManifest()), result.Hash)
}

func TestCompileStoresManifest(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state", "scenekit.db")
	path := sampleManifestPath(t)

	out, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), path, "--db", dbPath)
	require.NoError(t, err)
	var result CompilationResult
	decodeResponse(t, out, &result)
	assert.True(t, result.Inserted)

	// Same manifest again is content addressed.
	out, err = execute(NewCompileCommand(&RootOptions{Format: "json"}), path, "--db", dbPath)
	require.NoError(t, err)
	result = CompilationResult{}
	decodeResponse(t, out, &result)
	assert.False(t, result.Inserted)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	rec, err := st.LatestManifest(context.Background(), "sample")
	require.NoError(t, err)
	assert.Equal(t, result.Hash, rec.Hash)
	assert.Equal(t, int64(1), rec.Seq)
}

func TestCompileInvalidManifest(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "compiled.json")

	_, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), siteManifest, "-o", outPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	_, statErr := os.Stat(outPath)
	assert.True(t, os.IsNotExist(statErr), "nothing is written for an invalid manifest")
}

func TestCompileLoadError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.cue", "manifest: {id: ")

	out, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}

func siteCUEDir(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "site")
	require.NoError(t, os.Mkdir(dir, 0755))
	writeFile(t, dir, "site.cue", siteCUE)
	return dir
}
