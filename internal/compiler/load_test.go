package compiler

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loadYAML = `
id: site
name: Site
version: "1"
routes:
  - {id: home, path: /, sceneId: home}
scenes:
  - id: home
    name: Home
    root: {id: root}
assets: []
`

const loadJSON = `{"id":"site","name":"Site","version":"1","routes":[],"scenes":[],"assets":[]}`

const loadCUE = `
manifest: {
	id:      "site"
	name:    "Site"
	version: "1"
	routes: [{id: "home", path: "/", sceneId: "home"}]
	scenes: [{id: "home", name: "Home", root: {id: "root"}}]
	assets: []
}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"site.cue", FormatCUE},
		{"site.yaml", FormatYAML},
		{"site.YML", FormatYAML},
		{"dir/site.json", FormatJSON},
	}
	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err := FormatOf("site.toml")
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "file", ce.Field)
}

func TestLoadFile_AllFormats(t *testing.T) {
	for name, content := range map[string]string{
		"site.yaml": loadYAML,
		"site.json": loadJSON,
		"site.cue":  loadCUE,
	} {
		t.Run(name, func(t *testing.T) {
			m, err := LoadFile(writeFile(t, name, content))
			require.NoError(t, err)
			assert.Equal(t, "site", m.ID)
			assert.Equal(t, "Site", m.Name)
		})
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestCompile_CUESyntaxErrorHasPosition(t *testing.T) {
	_, err := Compile([]byte("manifest: {\n\tid: \n"), FormatCUE, "broken.cue")
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "cue", ce.Field)
	assert.True(t, ce.Pos.IsValid())
}
