package assets

import (
	"github.com/roach88/scenekit/internal/ir"
)

// resolution tracks the assets in progress for one top-level resolve call.
type resolution struct {
	store *Store
	stack []string
}

func (s *Store) begin() *resolution {
	return &resolution{store: s}
}

func (r *resolution) enter(id string) error {
	for _, inProgress := range r.stack {
		if inProgress == id {
			chain := append(append([]string(nil), r.stack...), id)
			return &ResolveError{
				Code:    ErrCodeCyclicReference,
				Message: "asset references itself",
				AssetID: id,
				Chain:   chain,
			}
		}
	}
	r.stack = append(r.stack, id)
	return nil
}

func (r *resolution) leave() {
	r.stack = r.stack[:len(r.stack)-1]
}

// ResolveReference resolves ref to the projection of the referenced asset:
//
//   - stylePalette: map of entry name to resolved value
//   - resource: content when present, otherwise url
//   - componentConfig: map of config key to resolved value
//   - prefab: a fresh *ir.Node, template defaults then ref parameters applied
//   - script: source text
//   - animation: ir.AnimationClip
//
// When ref.Path is set, the named entry of a map projection is returned.
func (s *Store) ResolveReference(ref ir.AssetReference) (any, error) {
	return s.begin().reference(ref)
}

// ResolveValue resolves a component value.
//
// References delegate to ResolveReference. A literal string naming a
// registered asset resolves that asset; palettes are unwrapped to a single
// entry (see ResolveProperty). Every other literal passes through as a copy.
func (s *Store) ResolveValue(v ir.Value) (any, error) {
	return s.ResolveProperty("", v)
}

// ResolveProperty is ResolveValue for a value bound to a property key.
// When a bare string names a palette, the entry is chosen by: the property
// key, the palette id, then the first entry in key order.
func (s *Store) ResolveProperty(key string, v ir.Value) (any, error) {
	return s.begin().value(key, v)
}

// Value resolves v and returns nil on any failure. A single bad reference
// degrades to a missing property instead of failing the caller.
func (s *Store) Value(v ir.Value) any {
	out, err := s.ResolveValue(v)
	if err != nil {
		s.logger.Debug("asset value unresolved", "error", err)
		return nil
	}
	return out
}

// Resolve resolves the asset with the given id by its stored type.
func (s *Store) Resolve(id string) (any, error) {
	a, ok := s.assets[id]
	if !ok {
		return nil, &ResolveError{Code: ErrCodeNotFound, Message: "asset not found", AssetID: id}
	}
	return s.ResolveReference(ir.Ref(a.Type, id))
}

func (r *resolution) reference(ref ir.AssetReference) (any, error) {
	a, ok := r.store.assets[ref.AssetID]
	if !ok {
		return nil, &ResolveError{Code: ErrCodeNotFound, Message: "asset not found", AssetID: ref.AssetID}
	}
	if ref.AssetType != "" && a.Type != ref.AssetType {
		return nil, &ResolveError{
			Code:    ErrCodeTypeMismatch,
			Message: "asset is " + string(a.Type) + ", reference expects " + string(ref.AssetType),
			AssetID: ref.AssetID,
		}
	}
	if err := r.enter(a.ID); err != nil {
		return nil, err
	}
	defer r.leave()

	out, err := r.project(a, ref.Parameters)
	if err != nil {
		return nil, err
	}
	if ref.Path == "" {
		return out, nil
	}
	m, ok := out.(map[string]any)
	if !ok {
		return nil, &ResolveError{Code: ErrCodeUnsupported, Message: "path lookup on non-map asset", AssetID: a.ID}
	}
	entry, ok := m[ref.Path]
	if !ok {
		return nil, &ResolveError{Code: ErrCodeNotFound, Message: "no entry " + ref.Path, AssetID: a.ID}
	}
	return entry, nil
}

func (r *resolution) project(a ir.Asset, params map[string]any) (any, error) {
	switch a.Type {
	case ir.AssetStylePalette:
		return r.config(a.Values)
	case ir.AssetComponentConfig:
		return r.config(a.Config)
	case ir.AssetResource:
		if a.Content != "" {
			return a.Content, nil
		}
		return a.URL, nil
	case ir.AssetScript:
		return a.Source, nil
	case ir.AssetAnimation:
		return a.Clip(), nil
	case ir.AssetPrefab:
		return instantiateTemplate(a.Prefab, params), nil
	default:
		return nil, &ResolveError{Code: ErrCodeUnsupported, Message: "no resolver for " + string(a.Type), AssetID: a.ID}
	}
}

// config resolves every entry of a palette or component config. Entries
// are resolved against their own key, so a nested bare palette name picks
// the matching entry.
func (r *resolution) config(cfg ir.Config) (map[string]any, error) {
	out := make(map[string]any, len(cfg))
	for _, k := range cfg.SortedKeys() {
		v, err := r.value(k, cfg[k])
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func (r *resolution) value(key string, v ir.Value) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case ir.AssetReference:
		return r.reference(val)
	case ir.Literal:
		name, ok := val.V.(string)
		if !ok {
			return ir.CloneAny(val.V), nil
		}
		a, ok := r.store.assets[name]
		if !ok {
			return name, nil
		}
		out, err := r.reference(ir.Ref(a.Type, a.ID))
		if err != nil {
			return nil, err
		}
		if a.Type == ir.AssetStylePalette {
			return unwrapPalette(out.(map[string]any), key, a.ID), nil
		}
		return out, nil
	default:
		return nil, &ResolveError{Code: ErrCodeUnsupported, Message: "unknown value kind"}
	}
}

func unwrapPalette(values map[string]any, key, id string) any {
	if key != "" {
		if v, ok := values[key]; ok {
			return v
		}
	}
	if v, ok := values[id]; ok {
		return v
	}
	keys := ir.SortedKeys(values)
	if len(keys) == 0 {
		return nil
	}
	return values[keys[0]]
}

// instantiateTemplate clones the prefab's selected template and broadcasts
// defaults (defaultValues, then parameter spec defaults), then params, over
// the clone.
func instantiateTemplate(p *ir.Prefab, params map[string]any) *ir.Node {
	variantID, _ := params["variantId"].(string)
	template, defaults, specs := p.TemplateFor(p.SelectVariant(variantID))
	node := template.Clone()
	merged := ir.CloneMap(defaults)
	if merged == nil {
		merged = make(map[string]any, len(specs))
	}
	for _, spec := range specs {
		if _, ok := merged[spec.Name]; !ok && spec.Default != nil {
			merged[spec.Name] = spec.Default
		}
	}
	ir.ApplyParameters(node, merged)
	rest := make(map[string]any, len(params))
	for k, v := range params {
		if k != "variantId" {
			rest[k] = v
		}
	}
	ir.ApplyParameters(node, rest)
	ir.SubstituteContent(node)
	return node
}
