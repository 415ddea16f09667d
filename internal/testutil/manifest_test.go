package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/ir"
)

func TestSampleManifest_FreshCopies(t *testing.T) {
	a := SampleManifest()
	b := SampleManifest()

	a.Scenes[0].Root.Children[0].Content = "changed"
	assert.Equal(t, "Welcome", b.Scenes[0].Root.Children[0].Content)
	assert.Equal(t, ir.MustManifestHash(SampleManifest()), ir.MustManifestHash(b))
}

func TestSampleManifest_Shape(t *testing.T) {
	m := SampleManifest()

	require.Len(t, m.Routes, 2)
	require.Len(t, m.Scenes, 2)
	require.Len(t, m.Prefabs, 1)
	assert.Equal(t, "/", m.DefaultRoute)
	assert.Equal(t, 3, ir.CountNodes(m.Scenes[0].Root))
	assert.Equal(t, "card", m.Scenes[0].Root.Children[1].PrefabID)
}

func TestSampleManifest_DefaultVariantKeepsBody(t *testing.T) {
	card := SampleManifest().Prefabs[0]

	v := card.SelectVariant("")
	require.NotNil(t, v)
	assert.Equal(t, "full", v.ID)
	template, _, _ := card.TemplateFor(v)
	assert.Len(t, template.Children, 2)

	compact, _, _ := card.TemplateFor(card.SelectVariant("compact"))
	assert.Len(t, compact.Children, 1)
}
