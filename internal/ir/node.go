package ir

import (
	"fmt"
	"regexp"
	"strconv"
)

// NodeKind enumerates the closed set of node kinds.
type NodeKind int

const (
	KindDiv NodeKind = iota
	KindLink
	KindButton
	KindInput
	KindImage
	KindHeading
	KindParagraph
	KindSpan
)

var kindNames = [...]string{
	KindDiv:       "div",
	KindLink:      "link",
	KindButton:    "button",
	KindInput:     "input",
	KindImage:     "image",
	KindHeading:   "heading",
	KindParagraph: "paragraph",
	KindSpan:      "span",
}

func (k NodeKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// ParseNodeKind maps a manifest kind name onto a NodeKind.
// The empty string is a div.
func ParseNodeKind(s string) (NodeKind, error) {
	if s == "" {
		return KindDiv, nil
	}
	for i, name := range kindNames {
		if name == s {
			return NodeKind(i), nil
		}
	}
	return KindDiv, fmt.Errorf("unknown node kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k NodeKind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("invalid node kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *NodeKind) UnmarshalText(text []byte) error {
	kind, err := ParseNodeKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// Node is a single addressable element of the rendered tree.
// A node without children is a leaf.
type Node struct {
	ID         string      `json:"id"`
	Kind       NodeKind    `json:"kind"`
	Content    string      `json:"content,omitempty"`
	Components []Component `json:"components,omitempty"`
	Children   []*Node     `json:"children,omitempty"`

	// Props carries kind-specific attributes (href, src, placeholder, level...).
	Props map[string]any `json:"props,omitempty"`

	PrefabID         string         `json:"prefabId,omitempty"`
	PrefabVariantID  string         `json:"prefabVariantId,omitempty"`
	PrefabParameters map[string]any `json:"prefabParameters,omitempty"`
}

// IsPrefabRef reports whether the node stands in for a prefab instance.
func (n *Node) IsPrefabRef() bool {
	return n.PrefabID != ""
}

// Clone returns a fully independent deep copy of the subtree rooted at n.
// Templates are authored trees, so no cycle tracking is needed here.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:               n.ID,
		Kind:             n.Kind,
		Content:          n.Content,
		Props:            CloneMap(n.Props),
		PrefabID:         n.PrefabID,
		PrefabVariantID:  n.PrefabVariantID,
		PrefabParameters: CloneMap(n.PrefabParameters),
	}
	if n.Components != nil {
		out.Components = make([]Component, len(n.Components))
		for i, c := range n.Components {
			out.Components[i] = c.Clone()
		}
	}
	if n.Children != nil {
		out.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			out.Children[i] = child.Clone()
		}
	}
	return out
}

// Walk visits the subtree depth-first, parent before children.
// Returning false from fn skips the node's children.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range n.Children {
		Walk(child, fn)
	}
}

// ApplyParameter broadcasts one parameter over the whole subtree.
//
// "content" is written to every node's Content. "id" is written to the
// subtree root only, since node ids must stay unique within a graph.
// Every other key is deposited into each node's PrefabParameters.
func ApplyParameter(root *Node, key string, value any) {
	if root == nil {
		return
	}
	switch key {
	case "id":
		if s, ok := value.(string); ok && s != "" {
			root.ID = s
		}
		return
	case "content":
		text := Stringify(value)
		Walk(root, func(n *Node) bool {
			n.Content = text
			return true
		})
		return
	}
	Walk(root, func(n *Node) bool {
		if n.PrefabParameters == nil {
			n.PrefabParameters = make(map[string]any)
		}
		n.PrefabParameters[key] = CloneAny(value)
		return true
	})
}

// ApplyParameters applies every entry of params in canonical key order.
func ApplyParameters(root *Node, params map[string]any) {
	for _, k := range SortedKeys(params) {
		ApplyParameter(root, k, params[k])
	}
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_.-]*)\s*\}\}`)

// SubstituteContent replaces {{name}} placeholders in every node's Content
// with the node's own PrefabParameters entry of that name. Unknown names are
// left untouched.
func SubstituteContent(root *Node) {
	Walk(root, func(n *Node) bool {
		if n.Content == "" || len(n.PrefabParameters) == 0 {
			return true
		}
		n.Content = placeholderPattern.ReplaceAllStringFunc(n.Content, func(m string) string {
			name := placeholderPattern.FindStringSubmatch(m)[1]
			if v, ok := n.PrefabParameters[name]; ok {
				return Stringify(v)
			}
			return m
		})
		return true
	})
}

// Stringify renders a scalar parameter value as text.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// CountNodes returns the number of nodes in the subtree.
func CountNodes(n *Node) int {
	count := 0
	Walk(n, func(*Node) bool {
		count++
		return true
	})
	return count
}
