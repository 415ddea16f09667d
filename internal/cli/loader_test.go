package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/compiler"
	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/testutil"
)

const siteCUE = `
package site

manifest: {
	id:           "site"
	name:         "Site"
	defaultRoute: "/"
	routes: [{id: "home", path: "/", sceneId: "home"}]
	scenes: [{
		id:   "home"
		name: "Home"
		root: {id: "root", children: [{id: "title", kind: "heading", content: "Hello"}]}
	}]
	assets: []
}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func requireLoadCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr), "want *LoadError, got %T", err)
	assert.Equal(t, code, loadErr.Code, loadErr.Message)
}

func TestLoadManifest_JSON(t *testing.T) {
	path := sampleManifestPath(t)

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "sample", loaded.Manifest.ID)
	assert.Equal(t, compiler.FormatJSON, loaded.Format)
	assert.Equal(t, path, loaded.Source)
	assert.Equal(t, ir.MustManifestHash(testutil.SampleManifest()), loaded.Hash)
}

func TestLoadManifest_YAML(t *testing.T) {
	loaded, err := LoadManifest(siteManifest)
	require.NoError(t, err)
	assert.Equal(t, compiler.FormatYAML, loaded.Format)
	assert.Len(t, loaded.Manifest.Routes, 2)
	assert.NotEmpty(t, loaded.Hash)
}

func TestLoadManifest_CUEDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "site.cue", siteCUE)

	loaded, err := LoadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, compiler.FormatCUE, loaded.Format)
	assert.Equal(t, "site", loaded.Manifest.ID)
	assert.Equal(t, ir.KindHeading, loaded.Manifest.Scenes[0].Root.Children[0].Kind)
}

func TestLoadManifest_CUEFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "site.cue", siteCUE)

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, "site", loaded.Manifest.ID)
}

func TestLoadManifest_Errors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := LoadManifest("/nonexistent/site.cue")
		requireLoadCode(t, err, ErrCodeNotFound)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := LoadManifest(t.TempDir())
		requireLoadCode(t, err, ErrCodeNoFiles)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "site.toml", "id = 1")
		_, err := LoadManifest(path)
		requireLoadCode(t, err, ErrCodeUnsupported)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "site.yaml", "id: [unclosed")
		_, err := LoadManifest(path)
		requireLoadCode(t, err, ErrCodeLoadFailed)
	})

	t.Run("unknown json field", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "site.json", `{"id": "x", "name": "X", "colour": "red"}`)
		_, err := LoadManifest(path)
		requireLoadCode(t, err, ErrCodeLoadFailed)
	})

	t.Run("cue syntax error", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "site.cue", "manifest: {id: ")
		_, err := LoadManifest(path)
		requireLoadCode(t, err, ErrCodeBuildFailed)
	})

	t.Run("cue missing name", func(t *testing.T) {
		path := writeFile(t, t.TempDir(), "site.cue", `manifest: {id: "x"}`)
		_, err := LoadManifest(path)
		requireLoadCode(t, err, compiler.ErrMissingID)
	})

	t.Run("cue package conflict", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "a.cue", "package a\nx: 1\n")
		writeFile(t, dir, "b.cue", "package b\ny: 2\n")
		_, err := LoadManifest(dir)
		requireLoadCode(t, err, ErrCodeLoadFailed)
	})
}

func TestLoadError_Format(t *testing.T) {
	err := &LoadError{Code: ErrCodeNotFound, Message: "manifest not found: x"}
	assert.Equal(t, "E005: manifest not found: x", err.Error())
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := map[string]string{
		"file":   ErrCodeUnsupported,
		"cue":    ErrCodeBuildFailed,
		"yaml":   ErrCodeLoadFailed,
		"json":   ErrCodeLoadFailed,
		"id":     compiler.ErrMissingID,
		"name":   compiler.ErrMissingID,
		"routes": ErrCodeGeneric,
	}
	for field, want := range tests {
		assert.Equal(t, want, MapFieldToErrorCode(field), field)
	}
}

func TestFindCUEFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.cue", "package a")
	writeFile(t, dir, "notes.txt", "ignored")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))
	writeFile(t, filepath.Join(dir, "sub"), "b.cue", "package a")

	files, err := FindCUEFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
