package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes a scenario next to a placeholder manifest and
// returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte("id: site"), 0644))
	path := filepath.Join(dir, "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: tour
description: "Visit a post"
manifest: site.yaml
start: /
steps:
  - navigate: /posts/hello
    expect:
      scene: post
      params: {slug: hello}
  - back: true
assertions:
  - type: scene_order
    scenes: [home, post]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "tour", scenario.Name)
	assert.Equal(t, filepath.Join(filepath.Dir(path), "site.yaml"), scenario.Manifest)
	require.Len(t, scenario.Steps, 2)
	assert.Equal(t, StepNavigate, scenario.Steps[0].Kind())
	assert.Equal(t, "hello", scenario.Steps[0].Expect.Params["slug"])
	assert.Equal(t, StepBack, scenario.Steps[1].Kind())
	assert.Equal(t, []string{"home", "post"}, scenario.Assertions[0].Scenes)
}

func TestLoadScenario_Fixtures(t *testing.T) {
	for _, name := range []string{"blog_tour.yaml", "missing_prefab.yaml"} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScenario(filepath.Join("testdata", "scenarios", name))
			require.NoError(t, err)
		})
	}
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	path := writeScenario(t, `
name: tour
description: "typo"
manifest: site.yaml
steps:
  - navigte: /
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Validation(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.yaml"), []byte("id: site"), 0644))

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing name",
			content: "description: d\nmanifest: site.yaml\nsteps: [{navigate: /}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			content: "name: n\nmanifest: site.yaml\nsteps: [{navigate: /}]\n",
			wantErr: "description is required",
		},
		{
			name:    "missing manifest file",
			content: "name: n\ndescription: d\nmanifest: absent.yaml\nsteps: [{navigate: /}]\n",
			wantErr: "manifest file not found",
		},
		{
			name:    "no steps",
			content: "name: n\ndescription: d\nmanifest: site.yaml\nsteps: []\n",
			wantErr: "steps list is required",
		},
		{
			name:    "two kinds in one step",
			content: "name: n\ndescription: d\nmanifest: site.yaml\nsteps: [{navigate: /, back: true}]\n",
			wantErr: "steps[0]: exactly one of",
		},
		{
			name:    "parent without instantiate",
			content: "name: n\ndescription: d\nmanifest: site.yaml\nsteps: [{navigate: /, parent: root}]\n",
			wantErr: "parent only applies to instantiate",
		},
		{
			name:    "unknown assertion",
			content: "name: n\ndescription: d\nmanifest: site.yaml\nsteps: [{navigate: /}]\nassertions: [{type: bogus}]\n",
			wantErr: `unknown assertion type "bogus"`,
		},
		{
			name:    "style without property",
			content: "name: n\ndescription: d\nmanifest: site.yaml\nsteps: [{navigate: /}]\nassertions: [{type: style, node: x}]\n",
			wantErr: "node and property are required",
		},
		{
			name:    "final_state without expect",
			content: "name: n\ndescription: d\nmanifest: site.yaml\nsteps: [{navigate: /}]\nassertions: [{type: final_state}]\n",
			wantErr: "expect is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content), dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStep_Kind(t *testing.T) {
	assert.Equal(t, StepRoute, Step{Route: "post"}.Kind())
	assert.Equal(t, StepForward, Step{Forward: true}.Kind())
	assert.Equal(t, StepInstantiate, Step{Instantiate: "card"}.Kind())
	assert.Equal(t, "", Step{}.Kind())
	assert.Equal(t, "", Step{Back: true, Forward: true}.Kind())
}
