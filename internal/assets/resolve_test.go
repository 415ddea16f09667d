package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/ir"
)

func TestResolveBarePaletteName(t *testing.T) {
	s := newTestStore(t, palette("primary", map[string]any{"primary": "#3B82F6"}))

	out, err := s.ResolveValue(ir.Lit("primary"))
	require.NoError(t, err)
	assert.Equal(t, "#3B82F6", out)
}

func TestResolvePalettePrefersPropertyKey(t *testing.T) {
	s := newTestStore(t, palette("brand", map[string]any{
		"backgroundColor": "navy",
		"brand":           "gold",
		"a":               "first",
	}))

	out, err := s.ResolveProperty("backgroundColor", ir.Lit("brand"))
	require.NoError(t, err)
	assert.Equal(t, "navy", out)

	out, err = s.ResolveProperty("color", ir.Lit("brand"))
	require.NoError(t, err)
	assert.Equal(t, "gold", out)
}

func TestResolvePaletteFallsBackToFirstKey(t *testing.T) {
	s := newTestStore(t, palette("brand", map[string]any{"z": "last", "a": "first"}))

	out, err := s.ResolveValue(ir.Lit("brand"))
	require.NoError(t, err)
	assert.Equal(t, "first", out)
}

func TestResolveLiteralPassthrough(t *testing.T) {
	s := newTestStore(t)

	out, err := s.ResolveValue(ir.Lit("red"))
	require.NoError(t, err)
	assert.Equal(t, "red", out)

	out, err = s.ResolveValue(ir.Lit(12.0))
	require.NoError(t, err)
	assert.Equal(t, 12.0, out)

	out, err = s.ResolveValue(nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestResolveReferenceWithPath(t *testing.T) {
	s := newTestStore(t, palette("brand", map[string]any{"primary": "#111", "accent": "#222"}))

	ref := ir.Ref(ir.AssetStylePalette, "brand")
	ref.Path = "accent"
	out, err := s.ResolveReference(ref)
	require.NoError(t, err)
	assert.Equal(t, "#222", out)

	ref.Path = "missing"
	_, err = s.ResolveReference(ref)
	assert.True(t, IsNotFound(err))
}

func TestResolveReferenceWholePalette(t *testing.T) {
	s := newTestStore(t, palette("brand", map[string]any{"primary": "#111"}))

	out, err := s.ResolveReference(ir.Ref(ir.AssetStylePalette, "brand"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"primary": "#111"}, out)
}

func TestResolveTransitivePalette(t *testing.T) {
	s := newTestStore(t,
		palette("base", map[string]any{"primary": "#3B82F6", "secondary": "#999"}),
		palette("theme", map[string]any{
			"primary": "base",
			"link":    map[string]any{"assetId": "base", "assetType": "stylePalette", "path": "secondary"},
		}),
	)

	out, err := s.ResolveReference(ir.Ref(ir.AssetStylePalette, "theme"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"primary": "#3B82F6", "link": "#999"}, out)
}

func TestResolveCycleTerminates(t *testing.T) {
	s := newTestStore(t,
		palette("a", map[string]any{"x": "b"}),
		palette("b", map[string]any{"x": "a"}),
	)

	_, err := s.ResolveValue(ir.Lit("a"))
	require.Error(t, err)
	assert.True(t, IsCyclicReference(err))

	var re *ResolveError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, []string{"a", "b", "a"}, re.Chain)
	assert.Contains(t, err.Error(), "a -> b -> a")
}

func TestResolveDiamondIsNotACycle(t *testing.T) {
	s := newTestStore(t,
		palette("leaf", map[string]any{"c": "#000"}),
		palette("top", map[string]any{"one": "leaf", "two": "leaf"}),
	)

	out, err := s.ResolveReference(ir.Ref(ir.AssetStylePalette, "top"))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"one": "#000", "two": "#000"}, out)
}

func TestResolveTypeMismatch(t *testing.T) {
	s := newTestStore(t, ir.Asset{ID: "logo", Type: ir.AssetResource, URL: "/logo.svg"})

	_, err := s.ResolveReference(ir.Ref(ir.AssetStylePalette, "logo"))
	assert.True(t, IsTypeMismatch(err))
	assert.Equal(t, "logo", FailedID(err))
}

func TestResolveMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.ResolveReference(ir.Ref(ir.AssetResource, "nope"))
	assert.True(t, IsNotFound(err))
	assert.Nil(t, s.Value(ir.Ref(ir.AssetResource, "nope")))
}

func TestResolvePerTypeProjections(t *testing.T) {
	s := newTestStore(t,
		ir.Asset{ID: "logo", Type: ir.AssetResource, URL: "/logo.svg"},
		ir.Asset{ID: "copy", Type: ir.AssetResource, URL: "/ignored", Content: "inline"},
		ir.Asset{ID: "boot", Type: ir.AssetScript, Source: "init()", Language: "js"},
		ir.Asset{ID: "fade", Type: ir.AssetAnimation, Duration: 0.5,
			Keyframes: []ir.Keyframe{{Property: "opacity", From: 0, To: 1}}},
		ir.Asset{ID: "cardStyle", Type: ir.AssetComponentConfig, ComponentType: "material",
			Config: ir.ConfigFromMap(map[string]any{"radius": 4.0})},
	)

	v, err := s.Resolve("logo")
	require.NoError(t, err)
	assert.Equal(t, "/logo.svg", v)

	v, err = s.Resolve("copy")
	require.NoError(t, err)
	assert.Equal(t, "inline", v)

	v, err = s.Resolve("boot")
	require.NoError(t, err)
	assert.Equal(t, "init()", v)

	v, err = s.Resolve("fade")
	require.NoError(t, err)
	clip, ok := v.(ir.AnimationClip)
	require.True(t, ok)
	assert.Equal(t, 0.5, clip.Duration)
	assert.Equal(t, "opacity", clip.Keyframes[0].Property)

	v, err = s.Resolve("cardStyle")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"radius": 4.0}, v)
}

func TestResolvePrefabAssetAppliesParameters(t *testing.T) {
	s := newTestStore(t, ir.Asset{
		ID: "badge", Type: ir.AssetPrefab,
		Prefab: &ir.Prefab{
			ID:            "badge",
			Template:      &ir.Node{ID: "badge", Kind: ir.KindSpan, Content: "{{label}}"},
			DefaultValues: map[string]any{"label": "new", "tone": "info"},
		},
	})

	ref := ir.Ref(ir.AssetPrefab, "badge")
	ref.Parameters = map[string]any{"label": "hot"}
	out, err := s.ResolveReference(ref)
	require.NoError(t, err)

	node, ok := out.(*ir.Node)
	require.True(t, ok)
	assert.Equal(t, "hot", node.Content)
	assert.Equal(t, "info", node.PrefabParameters["tone"])

	// The registered template is untouched.
	a, _ := s.Get("badge")
	assert.Equal(t, "{{label}}", a.Prefab.Template.Content)
}

func TestResolvePrefabAssetUsesParameterSpecDefaults(t *testing.T) {
	s := newTestStore(t, ir.Asset{
		ID: "chip", Type: ir.AssetPrefab,
		Prefab: &ir.Prefab{
			ID:            "chip",
			Template:      &ir.Node{ID: "chip", Kind: ir.KindSpan, Content: "{{label}} {{size}}"},
			DefaultValues: map[string]any{"label": "from-values"},
			Parameters: []ir.ParameterSpec{
				{Name: "label", Type: ir.ParamString, Default: "from-spec"},
				{Name: "size", Type: ir.ParamNumber, Default: 2.0},
			},
		},
	})

	out, err := s.ResolveReference(ir.Ref(ir.AssetPrefab, "chip"))
	require.NoError(t, err)
	node, ok := out.(*ir.Node)
	require.True(t, ok)
	assert.Equal(t, "from-values 2", node.Content)
	assert.Equal(t, 2.0, node.PrefabParameters["size"])
}
