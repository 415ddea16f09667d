package ir

import "time"

// ParamType is the declared type of a prefab parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamNumber  ParamType = "number"
	ParamBoolean ParamType = "boolean"
	ParamColor   ParamType = "color"
	ParamSelect  ParamType = "select"
	ParamAsset   ParamType = "asset"
)

// ParameterSpec declares one instantiation parameter of a prefab.
// Validation is an optional boolean expression evaluated with `value`
// (the candidate) and `params` (all supplied parameters) in scope.
type ParameterSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Default     any       `json:"default,omitempty"`
	Options     []any     `json:"options,omitempty"`
	Validation  string    `json:"validation,omitempty"`
	Description string    `json:"description,omitempty"`
}

// PrefabVariant is an alternate template under the same prefab id.
type PrefabVariant struct {
	ID            string          `json:"id"`
	Name          string          `json:"name,omitempty"`
	Template      *Node           `json:"template,omitempty"`
	DefaultValues map[string]any  `json:"defaultValues,omitempty"`
	Parameters    []ParameterSpec `json:"parameters,omitempty"`
	IsDefault     bool            `json:"isDefault,omitempty"`
}

// Prefab is a named, reusable node-subtree template.
type Prefab struct {
	ID               string          `json:"id"`
	Name             string          `json:"name"`
	Description      string          `json:"description,omitempty"`
	Category         string          `json:"category,omitempty"`
	Tags             []string        `json:"tags,omitempty"`
	Template         *Node           `json:"template"`
	Parameters       []ParameterSpec `json:"parameters,omitempty"`
	DefaultValues    map[string]any  `json:"defaultValues,omitempty"`
	Variants         []PrefabVariant `json:"variants,omitempty"`
	DefaultVariantID string          `json:"defaultVariantId,omitempty"`
}

// Clone returns a deep copy of the prefab.
func (p Prefab) Clone() Prefab {
	out := p
	out.Template = p.Template.Clone()
	out.DefaultValues = CloneMap(p.DefaultValues)
	if p.Tags != nil {
		out.Tags = append([]string(nil), p.Tags...)
	}
	if p.Parameters != nil {
		out.Parameters = append([]ParameterSpec(nil), p.Parameters...)
	}
	if p.Variants != nil {
		out.Variants = make([]PrefabVariant, len(p.Variants))
		for i, v := range p.Variants {
			v.Template = v.Template.Clone()
			v.DefaultValues = CloneMap(v.DefaultValues)
			if v.Parameters != nil {
				v.Parameters = append([]ParameterSpec(nil), v.Parameters...)
			}
			out.Variants[i] = v
		}
	}
	return out
}

// SelectVariant picks the variant to instantiate.
//
// Precedence: the requested id, the variant flagged default, the variant
// matching DefaultVariantID, the first variant. A nil variant means the
// prefab's own template applies.
func (p *Prefab) SelectVariant(requested string) *PrefabVariant {
	if len(p.Variants) == 0 {
		return nil
	}
	if requested != "" {
		for i := range p.Variants {
			if p.Variants[i].ID == requested {
				return &p.Variants[i]
			}
		}
	}
	for i := range p.Variants {
		if p.Variants[i].IsDefault {
			return &p.Variants[i]
		}
	}
	if p.DefaultVariantID != "" {
		for i := range p.Variants {
			if p.Variants[i].ID == p.DefaultVariantID {
				return &p.Variants[i]
			}
		}
	}
	return &p.Variants[0]
}

// TemplateFor returns the template, default values and parameter specs for a
// selected variant, falling back to the prefab's own fields.
func (p *Prefab) TemplateFor(v *PrefabVariant) (*Node, map[string]any, []ParameterSpec) {
	if v == nil {
		return p.Template, p.DefaultValues, p.Parameters
	}
	template := v.Template
	if template == nil {
		template = p.Template
	}
	defaults := v.DefaultValues
	if defaults == nil {
		defaults = p.DefaultValues
	}
	params := v.Parameters
	if params == nil {
		params = p.Parameters
	}
	return template, defaults, params
}

// PrefabInstance is the bookkeeping record of one instantiation.
// It is not part of the rendered tree.
type PrefabInstance struct {
	ID         string         `json:"id"`
	PrefabID   string         `json:"prefabId"`
	VariantID  string         `json:"variantId,omitempty"`
	Instance   *Node          `json:"instance"`
	Parameters map[string]any `json:"parameters,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}
