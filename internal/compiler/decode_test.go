package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/ir"
)

const siteYAML = `
id: site
name: Site
defaultRoute: /
routes:
  - id: home
    path: /
    sceneId: home
scenes:
  - id: home
    name: Home
    root:
      id: root
      components:
        - type: padding
          config:
            value: 8
      children:
        - id: logo
          kind: image
          props:
            src: /logo.svg
assets:
  - id: spin
    name: Spin
    type: animation
    duration: 2
    keyframes:
      - property: rotate
        from: 0
        to: 360
`

func TestDecodeYAML(t *testing.T) {
	m, err := DecodeYAML([]byte(siteYAML))
	require.NoError(t, err)

	assert.Equal(t, "site", m.ID)
	root := m.Scenes[0].Root
	assert.Equal(t, ir.Lit(8.0), root.Components[0].Config["value"], "numbers decode as float64")
	assert.Equal(t, ir.KindImage, root.Children[0].Kind)
	assert.Equal(t, "/logo.svg", root.Children[0].Props["src"])

	require.Len(t, m.Assets, 1)
	assert.Equal(t, ir.AssetAnimation, m.Assets[0].Type)
	assert.Equal(t, 360.0, m.Assets[0].Keyframes[0].To)
	assert.Empty(t, Validate(m))
}

func TestDecodeYAMLSyntaxError(t *testing.T) {
	_, err := DecodeYAML([]byte("id: [unclosed"))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "yaml", ce.Field)
}

func TestDecodeYAMLNonStringKey(t *testing.T) {
	_, err := DecodeYAML([]byte("id: x\nprops:\n  1: one\n"))
	require.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	m, err := DecodeJSON([]byte(`{
		"id": "site", "name": "Site",
		"routes": [{"id": "home", "path": "/", "sceneId": "home"}],
		"scenes": [{"id": "home", "name": "Home", "root": {"id": "root", "kind": "button"}}],
		"assets": []
	}`))
	require.NoError(t, err)
	assert.Equal(t, ir.KindButton, m.Scenes[0].Root.Kind)
}

func TestDecodeJSONReportsLine(t *testing.T) {
	_, err := DecodeJSON([]byte("{\n\"id\": \"x\",\n\"name\": 5\n}"))
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Contains(t, ce.Message, "line 3")
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	_, err := DecodeJSON([]byte(`{"id": "x", "name": "X", "sceens": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sceens")
}
