package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scenekit/internal/ir"
)

func validManifest() *ir.Manifest {
	return &ir.Manifest{
		ID:           "site",
		Name:         "Site",
		DefaultRoute: "/blog/1",
		Routes: []ir.Route{
			{ID: "home", Path: "/", SceneID: "home"},
			{ID: "blog", Path: "/blog", SceneID: "home", Children: []ir.Route{
				{ID: "post", Path: ":id", SceneID: "home"},
			}},
		},
		Scenes: []ir.Scene{{ID: "home", Name: "Home", Root: &ir.Node{
			ID: "root",
			Components: []ir.Component{{
				Type:   ir.ComponentMaterial,
				Config: ir.Config{"background": ir.Ref(ir.AssetStylePalette, "brand")},
			}},
			Children: []*ir.Node{{ID: "c", PrefabID: "card"}},
		}}},
		Assets: []ir.Asset{
			{ID: "brand", Name: "Brand", Type: ir.AssetStylePalette, Values: ir.Config{"primary": ir.Lit("#000")}},
		},
		Prefabs: []ir.Prefab{{
			ID:       "card",
			Name:     "Card",
			Template: &ir.Node{ID: "card"},
			Parameters: []ir.ParameterSpec{
				{Name: "size", Type: ir.ParamNumber, Validation: "value > 0 && value < 10"},
			},
			Variants:         []ir.PrefabVariant{{ID: "compact"}, {ID: "wide"}},
			DefaultVariantID: "wide",
		}},
	}
}

// codes returns the error codes in order.
func codes(errs []ValidationError) []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

// =============================================================================
// Valid manifests
// =============================================================================

func TestValidateValidManifest(t *testing.T) {
	errs := Validate(validManifest())
	assert.Empty(t, errs, "valid manifest should have no errors")
}

// =============================================================================
// Identity (E120, E121)
// =============================================================================

func TestValidateMissingManifestIdentity(t *testing.T) {
	m := validManifest()
	m.ID = ""
	m.Name = "  "

	errs := Validate(m)
	require.Len(t, errs, 2)
	assert.Equal(t, []string{ErrMissingID, ErrMissingID}, codes(errs))
	assert.Equal(t, "id", errs[0].Field)
	assert.Equal(t, "name", errs[1].Field)
}

func TestValidateDuplicateRouteID(t *testing.T) {
	m := validManifest()
	m.Routes[1].Children[0].ID = "home"

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateID, errs[0].Code)
	assert.Equal(t, "routes[1].children[0].id", errs[0].Field)
}

func TestValidateDuplicateAssetAndPrefab(t *testing.T) {
	m := validManifest()
	m.Assets = append(m.Assets, m.Assets[0])
	m.Prefabs = append(m.Prefabs, m.Prefabs[0])

	errs := Validate(m)
	assert.Contains(t, codes(errs), ErrDuplicateID)
	assert.Len(t, errs, 2)
}

// =============================================================================
// Routes (E122, E129, E130)
// =============================================================================

func TestValidateRouteUnknownScene(t *testing.T) {
	m := validManifest()
	m.Routes[0].SceneID = "ghost"

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownScene, errs[0].Code)
	assert.Contains(t, errs[0].Message, "ghost")
}

func TestValidateRoutePatterns(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"wildcard", "/files/*"},
		{"query", "/search?q"},
		{"bare colon", "/blog/:"},
		{"bad param name", "/blog/:1st"},
		{"repeated param", "/a/:id/b/:id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			m.DefaultRoute = ""
			m.Routes[0].Path = tt.path

			errs := Validate(m)
			require.NotEmpty(t, errs)
			assert.Contains(t, codes(errs), ErrInvalidRoutePath)
		})
	}
}

func TestValidateRelativeChildPathAllowed(t *testing.T) {
	m := validManifest()
	m.Routes[1].Children[0].Path = ""
	m.DefaultRoute = ""
	assert.Empty(t, Validate(m))
}

func TestValidateDefaultRouteUnmatched(t *testing.T) {
	m := validManifest()
	m.DefaultRoute = "/blog/1/comments"

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDefaultRouteUnknown, errs[0].Code)
}

func TestValidateDefaultRouteWithQuery(t *testing.T) {
	m := validManifest()
	m.DefaultRoute = "/blog?tab=recent"
	assert.Empty(t, Validate(m))
}

// =============================================================================
// Nodes (E123, E124, E125)
// =============================================================================

func TestValidateDuplicateNodeID(t *testing.T) {
	m := validManifest()
	m.Scenes[0].Root.Children = append(m.Scenes[0].Root.Children, &ir.Node{ID: "root"})

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateNodeID, errs[0].Code)
	assert.Equal(t, "scenes[0].root.children[1].id", errs[0].Field)
}

func TestValidateNodeIDsScopedPerTree(t *testing.T) {
	m := validManifest()
	m.Prefabs[0].Template = &ir.Node{ID: "root"}
	assert.Empty(t, Validate(m), "a template may reuse a scene node id")
}

func TestValidateComponentMissingType(t *testing.T) {
	m := validManifest()
	m.Scenes[0].Root.Components = append(m.Scenes[0].Root.Components, ir.Component{})

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrComponentNoType, errs[0].Code)
}

func TestValidateUnknownPrefab(t *testing.T) {
	m := validManifest()
	m.Scenes[0].Root.Children[0].PrefabID = "missing"

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownPrefab, errs[0].Code)
}

func TestValidatePrefabAssetSatisfiesReference(t *testing.T) {
	m := validManifest()
	m.Scenes[0].Root.Children[0].PrefabID = "badge"
	m.Assets = append(m.Assets, ir.Asset{
		ID: "badge", Name: "Badge", Type: ir.AssetPrefab,
		Prefab: &ir.Prefab{Name: "Badge", Template: &ir.Node{ID: "b"}},
	})
	assert.Empty(t, Validate(m))
}

// =============================================================================
// Assets (E126)
// =============================================================================

func TestValidateAssetReferences(t *testing.T) {
	tests := []struct {
		name  string
		value ir.Value
	}{
		{"unknown asset", ir.Ref(ir.AssetStylePalette, "ghost")},
		{"type mismatch", ir.Ref(ir.AssetResource, "brand")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validManifest()
			m.Scenes[0].Root.Components[0].Config["background"] = tt.value

			errs := Validate(m)
			require.Len(t, errs, 1)
			assert.Equal(t, ErrBadAssetReference, errs[0].Code)
			assert.Equal(t, "scenes[0].root.components[0].config.background", errs[0].Field)
		})
	}
}

func TestValidatePaletteReferences(t *testing.T) {
	m := validManifest()
	m.Assets[0].Values["accent"] = ir.Ref(ir.AssetStylePalette, "nowhere")

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, "assets[0].values.accent", errs[0].Field)
}

func TestValidateAssetShape(t *testing.T) {
	m := validManifest()
	m.Assets = append(m.Assets,
		ir.Asset{ID: "odd", Name: "Odd", Type: "sound"},
		ir.Asset{ID: "empty", Name: "Empty", Type: ir.AssetResource},
		ir.Asset{ID: "p", Name: "P", Type: ir.AssetPrefab},
		ir.Asset{ID: "nameless", Type: ir.AssetScript},
	)

	errs := Validate(m)
	assert.Equal(t, []string{ErrMissingID, ErrBadAssetReference, ErrBadAssetReference, ErrBadAssetReference}, codes(errs))
}

// =============================================================================
// Prefabs (E127, E128)
// =============================================================================

func TestValidateInvalidValidationExpression(t *testing.T) {
	m := validManifest()
	m.Prefabs[0].Parameters[0].Validation = "value >"

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidParameter, errs[0].Code)
	assert.Equal(t, "prefabs[0].parameters[0].validation", errs[0].Field)
}

func TestValidateNonBooleanValidationExpression(t *testing.T) {
	m := validManifest()
	m.Prefabs[0].Parameters[0].Validation = "1 + 2"

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrInvalidParameter, errs[0].Code)
}

func TestValidateParameterSpecs(t *testing.T) {
	m := validManifest()
	m.Prefabs[0].Parameters = []ir.ParameterSpec{
		{Name: "a", Type: "date"},
		{Name: "a"},
		{Name: "pick", Type: ir.ParamSelect},
		{Type: ir.ParamString},
	}

	errs := Validate(m)
	assert.Equal(t, []string{ErrInvalidParameter, ErrInvalidParameter, ErrInvalidParameter, ErrInvalidParameter}, codes(errs))
}

func TestValidateVariants(t *testing.T) {
	m := validManifest()
	m.Prefabs[0].Variants = []ir.PrefabVariant{{ID: "a"}, {ID: "a"}}
	m.Prefabs[0].DefaultVariantID = "b"

	errs := Validate(m)
	assert.Equal(t, []string{ErrInvalidVariant, ErrInvalidVariant}, codes(errs))
}

func TestValidatePrefabWithoutTemplate(t *testing.T) {
	m := validManifest()
	m.Prefabs[0].Template = nil
	m.Prefabs[0].Variants = nil
	m.Prefabs[0].DefaultVariantID = ""

	errs := Validate(m)
	require.Len(t, errs, 1)
	assert.Equal(t, "prefabs[0].template", errs[0].Field)
}

// =============================================================================
// General
// =============================================================================

func TestValidateCollectsAllErrors(t *testing.T) {
	m := validManifest()
	m.ID = ""
	m.Routes[0].SceneID = "ghost"
	m.Scenes[0].Root.Children[0].PrefabID = "missing"

	errs := Validate(m)
	assert.Len(t, errs, 3, "should collect every error")
}

func TestValidationErrorFormat(t *testing.T) {
	err := ValidationError{Field: "routes[0].sceneId", Message: "unknown scene", Code: ErrUnknownScene}
	assert.Equal(t, "[E122] routes[0].sceneId: unknown scene", err.Error())
}
