package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/testutil"
)

func loadFixture(t *testing.T, name string) *Scenario {
	t.Helper()
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
	require.NoError(t, err)
	return scenario
}

func TestRun_BlogTour(t *testing.T) {
	result, err := Run(loadFixture(t, "blog_tour.yaml"))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 4)
	assert.False(t, result.Trace[0].Changed)
	assert.Equal(t, "post", result.Trace[1].SceneID)
	assert.Equal(t, []string{"missing"}, result.Trace[1].Placeholders)
	assert.Equal(t, "extra", result.Trace[3].Instance)
	assert.Equal(t, 8, result.Trace[3].Nodes)

	require.NotNil(t, result.Render)
	assert.Equal(t, "home", result.Render.ID)
}

func TestRun_MissingPrefab(t *testing.T) {
	result, err := Run(loadFixture(t, "missing_prefab.yaml"))
	require.NoError(t, err)
	require.True(t, result.Pass, "errors: %v", result.Errors)

	require.Len(t, result.Trace, 2)
	assert.Equal(t, "/posts/world", result.Trace[0].Path)
	assert.Equal(t, "", result.Trace[1].Instance)
}

func TestRunWithGolden_BlogTour(t *testing.T) {
	// Regenerate with: go test ./internal/harness -run TestRunWithGolden -update
	result, err := RunWithGolden(t, loadFixture(t, "blog_tour.yaml"))
	require.NoError(t, err)
	assert.True(t, result.Pass)
}

func TestRun_Deterministic(t *testing.T) {
	scenario := loadFixture(t, "blog_tour.yaml")

	first, err := Run(scenario)
	require.NoError(t, err)
	second, err := Run(scenario)
	require.NoError(t, err)

	a, err := MarshalTrace(scenario.Name, first.Trace)
	require.NoError(t, err)
	b, err := MarshalTrace(scenario.Name, second.Trace)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunManifest_ExpectFailuresAreReported(t *testing.T) {
	changed := true
	scenario := &Scenario{
		Name: "wrong_expectations",
		Steps: []Step{
			{Navigate: "/", Expect: &ExpectClause{Changed: &changed}},
			{Navigate: "/nowhere", Expect: &ExpectClause{Unresolved: true}},
			{Route: "missing-route", Expect: &ExpectClause{Error: "unknown route"}},
			{Instantiate: "card", Expect: &ExpectClause{Error: "not registered"}},
		},
	}

	result, err := RunManifest(scenario, testutil.SampleManifest())
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 2)
	assert.Contains(t, result.Errors[0], "steps[0] (navigate): changed = false, want true")
	assert.Contains(t, result.Errors[1], "steps[3] (instantiate): expected error containing")
}

func TestRunManifest_UnexpectedStepError(t *testing.T) {
	scenario := &Scenario{
		Name:  "bad_route",
		Steps: []Step{{Route: "missing-route"}},
	}

	result, err := RunManifest(scenario, testutil.SampleManifest())
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "unexpected error")
}

func TestMatchState(t *testing.T) {
	ev := TraceEvent{
		Path:      "/posts/a",
		RoutePath: "/posts/:slug",
		SceneID:   "post",
		Params:    map[string]string{"slug": "a"},
		Query:     map[string]string{"ref": "x"},
		Changed:   true,
	}
	changed := true

	assert.Empty(t, matchState(&ExpectClause{
		Path:    "/posts/a",
		Route:   "/posts/:slug",
		Scene:   "post",
		Params:  map[string]string{"slug": "a"},
		Query:   map[string]string{"ref": "x"},
		Changed: &changed,
	}, ev))

	msg := matchState(&ExpectClause{Scene: "home", Params: map[string]string{"slug": "b"}, Unresolved: true}, ev)
	assert.Contains(t, msg, `params.slug = "a", want "b"`)
	assert.Contains(t, msg, `scene = "post", want "home"`)
	assert.Contains(t, msg, "want unresolved")
}
