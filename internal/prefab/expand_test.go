package prefab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/ir"
)

func TestExpandCallSiteMerge(t *testing.T) {
	e := newEngine(t, cardPrefab())
	authored := &ir.Node{
		ID:               "promo",
		PrefabID:         "card",
		PrefabParameters: map[string]any{"text": "Sale"},
		Components: []ir.Component{
			{Type: "material", Config: ir.Config{"backgroundColor": ir.Lit("red")}},
		},
		Children: []*ir.Node{{ID: "authored-child"}},
	}

	out, err := e.Expand(authored)
	require.NoError(t, err)

	assert.Equal(t, "promo", out.ID)
	assert.Equal(t, "card", out.PrefabID)
	assert.Equal(t, map[string]any{"text": "Sale"}, out.PrefabParameters)

	require.Len(t, out.Components, 2)
	assert.Equal(t, ir.Lit("white"), out.Components[0].Config["backgroundColor"])
	assert.Equal(t, ir.Lit("red"), out.Components[1].Config["backgroundColor"])

	// Template children win over authored children.
	require.Len(t, out.Children, 2)
	assert.Equal(t, "promo/title", out.Children[0].ID)
	assert.Equal(t, "Sale", out.Children[0].Content)

	assert.Equal(t, 0, e.Len(), "expansion is not bookkept")
	assert.Equal(t, "authored-child", authored.Children[0].ID, "authored node untouched")
}

func TestExpandHonoursVariant(t *testing.T) {
	e := newEngine(t, variantPrefab())

	out, err := e.Expand(&ir.Node{ID: "cta", PrefabID: "button", PrefabVariantID: "a"})
	require.NoError(t, err)
	assert.Equal(t, "A", out.Content)
	assert.Equal(t, ir.KindButton, out.Kind)
	assert.Equal(t, "a", out.PrefabVariantID)
}

func TestExpandNonPrefabNodeClones(t *testing.T) {
	e := newEngine(t)
	n := &ir.Node{ID: "plain", Content: "x"}

	out, err := e.Expand(n)
	require.NoError(t, err)
	out.Content = "y"
	assert.Equal(t, "x", n.Content)
}

func TestExpandMissingPrefab(t *testing.T) {
	e := newEngine(t)
	out, err := e.Expand(&ir.Node{ID: "n", PrefabID: "ghost"})
	assert.Nil(t, out)
	assert.True(t, IsPrefabNotFound(err))
}
