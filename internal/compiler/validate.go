package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/prefab"
	"github.com/roach88/scenekit/internal/router"
)

// Validation error codes (E120-E139)
const (
	ErrMissingID           = "E120" // id or name is required
	ErrDuplicateID         = "E121" // duplicate route, scene, asset or prefab id
	ErrUnknownScene        = "E122" // route references unknown scene
	ErrDuplicateNodeID     = "E123" // node id repeated within one tree
	ErrComponentNoType     = "E124" // component type is required
	ErrUnknownPrefab       = "E125" // node references unknown prefab
	ErrBadAssetReference   = "E126" // unknown asset, mismatched type or invalid asset
	ErrInvalidParameter    = "E127" // invalid parameter spec or validation expression
	ErrInvalidVariant      = "E128" // duplicate variant id or unknown defaultVariantId
	ErrInvalidRoutePath    = "E129" // malformed route pattern
	ErrDefaultRouteUnknown = "E130" // defaultRoute matches no route
)

// ValidationError represents a manifest validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled manifest.
// Returns all errors found (does not fail-fast).
func Validate(m *ir.Manifest) []ValidationError {
	v := &validator{
		m:       m,
		scenes:  make(map[string]bool),
		assets:  make(map[string]ir.Asset),
		prefabs: make(map[string]bool),
	}
	v.collect()
	v.manifest()
	v.routes()
	for i, s := range m.Scenes {
		at := fmt.Sprintf("scenes[%d]", i)
		if s.Root == nil {
			v.add(at+".root", "scene root is required", ErrMissingID)
			continue
		}
		v.tree(s.Root, at+".root")
	}
	for i, p := range m.Prefabs {
		v.prefab(p, fmt.Sprintf("prefabs[%d]", i))
	}
	v.assetList()
	return v.errs
}

type validator struct {
	m       *ir.Manifest
	scenes  map[string]bool
	assets  map[string]ir.Asset
	prefabs map[string]bool
	errs    []ValidationError
}

func (v *validator) add(field, msg, code string) {
	v.errs = append(v.errs, ValidationError{Field: field, Message: msg, Code: code})
}

// collect indexes scene, asset and prefab ids, reporting E120/E121.
func (v *validator) collect() {
	for i, s := range v.m.Scenes {
		at := fmt.Sprintf("scenes[%d].id", i)
		switch {
		case s.ID == "":
			v.add(at, "scene id is required", ErrMissingID)
		case v.scenes[s.ID]:
			v.add(at, fmt.Sprintf("duplicate scene id %q", s.ID), ErrDuplicateID)
		}
		v.scenes[s.ID] = true
	}
	for i, a := range v.m.Assets {
		at := fmt.Sprintf("assets[%d]", i)
		if a.ID == "" {
			v.add(at+".id", "asset id is required", ErrMissingID)
			continue
		}
		if strings.TrimSpace(a.Name) == "" {
			v.add(at+".name", fmt.Sprintf("asset %q has no name", a.ID), ErrMissingID)
		}
		if _, dup := v.assets[a.ID]; dup {
			v.add(at+".id", fmt.Sprintf("duplicate asset id %q", a.ID), ErrDuplicateID)
		}
		v.assets[a.ID] = a
		if a.Type == ir.AssetPrefab && a.Prefab != nil {
			id := a.Prefab.ID
			if id == "" {
				id = a.ID
			}
			v.prefabs[id] = true
		}
	}
	for i, p := range v.m.Prefabs {
		at := fmt.Sprintf("prefabs[%d].id", i)
		switch {
		case p.ID == "":
			v.add(at, "prefab id is required", ErrMissingID)
		case v.prefabs[p.ID]:
			v.add(at, fmt.Sprintf("duplicate prefab id %q", p.ID), ErrDuplicateID)
		}
		v.prefabs[p.ID] = true
	}
}

func (v *validator) manifest() {
	if strings.TrimSpace(v.m.ID) == "" {
		v.add("id", "manifest id is required", ErrMissingID)
	}
	if strings.TrimSpace(v.m.Name) == "" {
		v.add("name", "manifest name is required", ErrMissingID)
	}
}

// paramPattern matches a route parameter segment.
var paramPattern = regexp.MustCompile(`^:[A-Za-z_][A-Za-z0-9_]*$`)

func (v *validator) routes() {
	ids := make(map[string]bool)
	var walk func(rs []ir.Route, path string)
	walk = func(rs []ir.Route, path string) {
		for i, r := range rs {
			at := fmt.Sprintf("%s[%d]", path, i)
			switch {
			case r.ID == "":
				v.add(at+".id", "route id is required", ErrMissingID)
			case ids[r.ID]:
				v.add(at+".id", fmt.Sprintf("duplicate route id %q", r.ID), ErrDuplicateID)
			}
			ids[r.ID] = true
			if !v.scenes[r.SceneID] {
				v.add(at+".sceneId", fmt.Sprintf("route %q references unknown scene %q", r.ID, r.SceneID), ErrUnknownScene)
			}
			if path == "routes" && strings.TrimSpace(r.Path) == "" {
				v.add(at+".path", fmt.Sprintf("route %q has an empty path", r.ID), ErrInvalidRoutePath)
			}
			if strings.ContainsAny(r.Path, "?#*") {
				v.add(at+".path", fmt.Sprintf("route path %q may not contain ?, # or *", r.Path), ErrInvalidRoutePath)
			}
			walk(r.Children, at+".children")
		}
	}
	walk(v.m.Routes, "routes")

	table := router.Flatten(v.m.Routes)
	for _, e := range table {
		seen := make(map[string]bool)
		for _, seg := range router.Segments(e.Path) {
			if !strings.HasPrefix(seg, ":") {
				continue
			}
			if !paramPattern.MatchString(seg) {
				v.add("routes."+e.ID, fmt.Sprintf("invalid parameter segment %q in %s", seg, e.Path), ErrInvalidRoutePath)
				continue
			}
			if seen[seg] {
				v.add("routes."+e.ID, fmt.Sprintf("parameter %s repeated in %s", seg, e.Path), ErrInvalidRoutePath)
			}
			seen[seg] = true
		}
	}

	if v.m.DefaultRoute == "" {
		return
	}
	target := router.Segments(strings.SplitN(v.m.DefaultRoute, "?", 2)[0])
	for _, e := range table {
		if _, ok := router.MatchSegments(router.Segments(e.Path), target); ok {
			return
		}
	}
	v.add("defaultRoute", fmt.Sprintf("default route %q matches no route", v.m.DefaultRoute), ErrDefaultRouteUnknown)
}

// tree checks node ids, components and prefab references of one tree.
func (v *validator) tree(root *ir.Node, path string) {
	seen := make(map[string]bool)
	var walk func(n *ir.Node, at string)
	walk = func(n *ir.Node, at string) {
		if n == nil {
			v.add(at, "nil node", ErrMissingID)
			return
		}
		switch {
		case n.ID == "":
			v.add(at+".id", "node id is required", ErrMissingID)
		case seen[n.ID]:
			v.add(at+".id", fmt.Sprintf("duplicate node id %q", n.ID), ErrDuplicateNodeID)
		}
		seen[n.ID] = true
		if n.PrefabID != "" && !v.prefabs[n.PrefabID] {
			v.add(at+".prefabId", fmt.Sprintf("unknown prefab %q", n.PrefabID), ErrUnknownPrefab)
		}
		for i, c := range n.Components {
			cat := fmt.Sprintf("%s.components[%d]", at, i)
			if strings.TrimSpace(c.Type) == "" {
				v.add(cat+".type", "component type is required", ErrComponentNoType)
			}
			v.config(c.Config, cat+".config")
		}
		for i, child := range n.Children {
			walk(child, fmt.Sprintf("%s.children[%d]", at, i))
		}
	}
	walk(root, path)
}

// config checks every asset reference of a config map.
func (v *validator) config(cfg ir.Config, path string) {
	for _, key := range cfg.SortedKeys() {
		ref, ok := ir.AsReference(cfg[key])
		if !ok {
			continue
		}
		at := path + "." + key
		a, found := v.assets[ref.AssetID]
		switch {
		case !found:
			v.add(at, fmt.Sprintf("unknown asset %q", ref.AssetID), ErrBadAssetReference)
		case ref.AssetType != "" && a.Type != ref.AssetType:
			v.add(at, fmt.Sprintf("asset %q is %s, referenced as %s", ref.AssetID, a.Type, ref.AssetType), ErrBadAssetReference)
		}
	}
}

func (v *validator) prefab(p ir.Prefab, path string) {
	if strings.TrimSpace(p.Name) == "" {
		v.add(path+".name", fmt.Sprintf("prefab %q has no name", p.ID), ErrMissingID)
	}
	if p.Template == nil && len(p.Variants) == 0 {
		v.add(path+".template", fmt.Sprintf("prefab %q has no template", p.ID), ErrMissingID)
	}
	if p.Template != nil {
		v.tree(p.Template, path+".template")
	}
	v.parameters(p.Parameters, path+".parameters")

	variants := make(map[string]bool)
	for i, variant := range p.Variants {
		at := fmt.Sprintf("%s.variants[%d]", path, i)
		switch {
		case variant.ID == "":
			v.add(at+".id", "variant id is required", ErrMissingID)
		case variants[variant.ID]:
			v.add(at+".id", fmt.Sprintf("duplicate variant id %q", variant.ID), ErrInvalidVariant)
		}
		variants[variant.ID] = true
		if variant.Template == nil && p.Template == nil {
			v.add(at+".template", fmt.Sprintf("variant %q has no template", variant.ID), ErrMissingID)
		}
		if variant.Template != nil {
			v.tree(variant.Template, at+".template")
		}
		v.parameters(variant.Parameters, at+".parameters")
	}
	if p.DefaultVariantID != "" && !variants[p.DefaultVariantID] {
		v.add(path+".defaultVariantId", fmt.Sprintf("unknown default variant %q", p.DefaultVariantID), ErrInvalidVariant)
	}
}

var paramTypes = map[ir.ParamType]bool{
	"":              true,
	ir.ParamString:  true,
	ir.ParamNumber:  true,
	ir.ParamBoolean: true,
	ir.ParamColor:   true,
	ir.ParamSelect:  true,
	ir.ParamAsset:   true,
}

func (v *validator) parameters(specs []ir.ParameterSpec, path string) {
	names := make(map[string]bool)
	for i, spec := range specs {
		at := fmt.Sprintf("%s[%d]", path, i)
		switch {
		case spec.Name == "":
			v.add(at+".name", "parameter name is required", ErrInvalidParameter)
		case names[spec.Name]:
			v.add(at+".name", fmt.Sprintf("duplicate parameter %q", spec.Name), ErrInvalidParameter)
		}
		names[spec.Name] = true
		if !paramTypes[spec.Type] {
			v.add(at+".type", fmt.Sprintf("unknown parameter type %q", spec.Type), ErrInvalidParameter)
		}
		if spec.Type == ir.ParamSelect && len(spec.Options) == 0 {
			v.add(at+".options", fmt.Sprintf("select parameter %q has no options", spec.Name), ErrInvalidParameter)
		}
		if spec.Validation != "" {
			if _, err := prefab.CompileValidation(spec.Validation); err != nil {
				v.add(at+".validation", err.Error(), ErrInvalidParameter)
			}
		}
	}
}

func (v *validator) assetList() {
	for i, a := range v.m.Assets {
		at := fmt.Sprintf("assets[%d]", i)
		if !ir.ValidAssetTypes[a.Type] {
			v.add(at+".type", fmt.Sprintf("unknown asset type %q", a.Type), ErrBadAssetReference)
			continue
		}
		switch a.Type {
		case ir.AssetStylePalette:
			v.config(a.Values, at+".values")
		case ir.AssetComponentConfig:
			v.config(a.Config, at+".config")
		case ir.AssetResource:
			if a.URL == "" && a.Content == "" {
				v.add(at, fmt.Sprintf("resource %q has neither url nor content", a.ID), ErrBadAssetReference)
			}
		case ir.AssetPrefab:
			if a.Prefab == nil {
				v.add(at+".prefab", fmt.Sprintf("prefab asset %q has no prefab", a.ID), ErrBadAssetReference)
				continue
			}
			v.prefab(*a.Prefab, at+".prefab")
		}
	}
}
