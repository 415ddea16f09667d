package canvas

import (
	"github.com/roach88/scenekit/internal/animation"
	"github.com/roach88/scenekit/internal/style"
)

// PlaceholderReason says why a prefab reference was not expanded.
type PlaceholderReason string

const (
	ReasonPrefabNotFound      PlaceholderReason = "prefab-not-found"
	ReasonInstantiationFailed PlaceholderReason = "instantiation-failed"
	ReasonCyclicPrefab        PlaceholderReason = "cyclic-prefab"
	ReasonDepthExceeded       PlaceholderReason = "depth-exceeded"
)

// Placeholder stands in for a prefab reference that could not be expanded.
// ID is the referenced prefab.
type Placeholder struct {
	Reason  PlaceholderReason `json:"reason" yaml:"reason"`
	ID      string            `json:"id" yaml:"id"`
	Message string            `json:"message,omitempty" yaml:"message,omitempty"`
}

// Directive is a request to play an animation on a node.
type Directive struct {
	NodeID      string                `json:"nodeId" yaml:"nodeId"`
	AnimationID string                `json:"animationId" yaml:"animationId"`
	Options     animation.PlayOptions `json:"options" yaml:"options"`
	Autoplay    bool                  `json:"autoplay" yaml:"autoplay"`
}

// RenderNode is one element of the resolved tree handed to the presentation
// layer.
type RenderNode struct {
	ID          string         `json:"id" yaml:"id"`
	Kind        string         `json:"kind" yaml:"kind"`
	Content     string         `json:"content,omitempty" yaml:"content,omitempty"`
	Props       map[string]any `json:"props,omitempty" yaml:"props,omitempty"`
	Style       style.Style    `json:"style,omitempty" yaml:"style,omitempty"`
	Animations  []Directive    `json:"animations,omitempty" yaml:"animations,omitempty"`
	Placeholder *Placeholder   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Issues      []style.Issue  `json:"issues,omitempty" yaml:"issues,omitempty"`
	Children    []*RenderNode  `json:"children,omitempty" yaml:"children,omitempty"`
}

// Walk visits the render tree depth-first, parent before children.
func (n *RenderNode) Walk(fn func(*RenderNode)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the node with the given id, or nil.
func (n *RenderNode) Find(id string) *RenderNode {
	var found *RenderNode
	n.Walk(func(r *RenderNode) {
		if found == nil && r.ID == id {
			found = r
		}
	})
	return found
}
