package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTestCommandFixtures(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenariosDir)
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ blog_tour")
	assert.Contains(t, out, "✓ missing_prefab")
	assert.Contains(t, out, "2 passed, 0 failed, 2 total")
}

func TestTestCommandFilterJSON(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "json"}), scenariosDir, "--filter", "blog_*")
	require.NoError(t, err)

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, "blog_tour", result.Scenarios[0].Name)
}

func TestTestCommandNoMatches(t *testing.T) {
	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), scenariosDir, "--filter", "zzz*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

// copyFixtures lays out manifests/ and scenarios/ in a temp dir, the way
// the harness testdata is arranged, and returns the scenarios dir.
func copyFixtures(t *testing.T, scenarios ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, sub := range []string{"manifests", "scenarios"} {
		require.NoError(t, os.Mkdir(filepath.Join(root, sub), 0755))
	}
	site, err := os.ReadFile(siteManifest)
	require.NoError(t, err)
	writeFile(t, filepath.Join(root, "manifests"), "site.yaml", string(site))
	for _, name := range scenarios {
		data, err := os.ReadFile(filepath.Join(scenariosDir, name))
		require.NoError(t, err)
		writeFile(t, filepath.Join(root, "scenarios"), name, string(data))
	}
	return filepath.Join(root, "scenarios")
}

func TestTestCommandUpdateWritesGolden(t *testing.T) {
	dir := copyFixtures(t, "blog_tour.yaml")

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir, "--update")
	require.NoError(t, err, out)
	assert.Contains(t, out, "✓ blog_tour (golden updated)")

	got, err := os.ReadFile(filepath.Join(filepath.Dir(dir), "golden", "blog_tour.golden"))
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join(filepath.Dir(scenariosDir), "golden", "blog_tour.golden"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	// The fresh golden file now gates the next run.
	_, err = execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
}

func TestTestCommandGoldenMismatch(t *testing.T) {
	dir := copyFixtures(t, "blog_tour.yaml")
	goldenDir := filepath.Join(filepath.Dir(dir), "golden")
	require.NoError(t, os.Mkdir(goldenDir, 0755))
	writeFile(t, goldenDir, "blog_tour.golden", `{"scenario_name":"blog_tour","trace":[]}`)

	out, err := execute(NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ blog_tour")
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := copyFixtures(t)
	writeFile(t, dir, "wrong.yaml", `name: wrong
description: Expects the wrong scene
manifest: ../manifests/site.yaml
steps:
  - navigate: /posts/x
    expect:
      scene: home
`)

	out, err := execute(NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result TestResult
	resp := decodeResponse(t, out, &result)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestFailed, resp.Error.Code)
	assert.Equal(t, 1, result.Failed)
	assert.NotEmpty(t, result.Scenarios[0].Errors)
}

func TestTestCommandMissingDirectory(t *testing.T) {
	_, err := execute(NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
