package ir

// Component is a typed, ordered config block attached to a node.
// Components are applied in slice order; later entries override earlier ones
// for the same resolved property key.
type Component struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type"`
	Config Config `json:"config,omitempty"`
}

// Clone returns a deep copy of the component.
func (c Component) Clone() Component {
	return Component{ID: c.ID, Type: c.Type, Config: c.Config.Clone()}
}

// Well-known component types handled by the built-in style pipeline.
const (
	ComponentMesh       = "mesh"
	ComponentMaterial   = "material"
	ComponentPadding    = "padding"
	ComponentMargin     = "margin"
	ComponentTransform  = "transform"
	ComponentTypography = "typography"
	ComponentLayout     = "layout"
	ComponentBorder     = "border"
	ComponentAnimation  = "animation"
)
