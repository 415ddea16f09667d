package testutil

import (
	"github.com/roach88/scenekit/internal/ir"
)

// SampleManifest returns a small valid manifest shared by package tests.
//
// Routes: home "/" and post "/posts/:slug", with "/" as the default route.
// The home scene holds a heading styled from the "brand" palette and one
// expanded "card" prefab (5 nodes after expansion). The post scene holds a
// heading and a paragraph. The card prefab takes a "title" parameter. Its
// default variant "full" keeps the base template with title and body;
// "compact" drops the body.
func SampleManifest() *ir.Manifest {
	card := ir.Prefab{
		ID:   "card",
		Name: "Card",
		Template: &ir.Node{
			ID: "card",
			Components: []ir.Component{{
				Type: ir.ComponentMaterial,
				Config: ir.Config{
					"background": ir.AssetReference{AssetID: "brand", AssetType: ir.AssetStylePalette, Path: "surface"},
				},
			}},
			Children: []*ir.Node{
				{ID: "title", Kind: ir.KindHeading, Content: "{{title}}"},
				{ID: "body", Kind: ir.KindParagraph, Content: "Body"},
			},
		},
		Parameters: []ir.ParameterSpec{
			{Name: "title", Type: ir.ParamString, Default: "Untitled", Validation: "len(value) <= 40"},
		},
		Variants: []ir.PrefabVariant{{
			ID:        "full",
			Name:      "Full",
			IsDefault: true,
		}, {
			ID:   "compact",
			Name: "Compact",
			Template: &ir.Node{
				ID:       "card",
				Children: []*ir.Node{{ID: "title", Kind: ir.KindHeading, Content: "{{title}}"}},
			},
		}},
	}

	return &ir.Manifest{
		ID:      "sample",
		Name:    "Sample",
		Version: "1.0.0",
		Routes: []ir.Route{
			{ID: "home", Path: "/", SceneID: "home"},
			{ID: "post", Path: "/posts/:slug", SceneID: "post"},
		},
		Scenes: []ir.Scene{
			{ID: "home", Name: "Home", Root: &ir.Node{
				ID: "home",
				Children: []*ir.Node{
					{ID: "headline", Kind: ir.KindHeading, Content: "Welcome", Components: []ir.Component{{
						Type:   ir.ComponentMaterial,
						Config: ir.Config{"textColor": ir.AssetReference{AssetID: "brand", AssetType: ir.AssetStylePalette, Path: "primary"}},
					}}},
					{ID: "featured", PrefabID: "card", PrefabParameters: map[string]any{"title": "Featured"}},
				},
			}},
			{ID: "post", Name: "Post", Root: &ir.Node{
				ID: "post",
				Children: []*ir.Node{
					{ID: "post-title", Kind: ir.KindHeading, Content: "Post"},
					{ID: "post-body", Kind: ir.KindParagraph, Content: "Lorem ipsum"},
				},
			}},
		},
		DefaultRoute: "/",
		Assets: []ir.Asset{
			{ID: "brand", Name: "Brand", Type: ir.AssetStylePalette, Tags: []string{"theme"}, Values: ir.Config{
				"primary": ir.Lit("#1a1a1a"),
				"surface": ir.Lit("#ffffff"),
			}},
			{ID: "logo", Name: "Logo", Type: ir.AssetResource, URL: "/static/logo.svg", MimeType: "image/svg+xml"},
		},
		Prefabs: []ir.Prefab{card},
	}
}
