package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Node {
	return &Node{
		ID:   "card",
		Kind: KindDiv,
		Components: []Component{
			{Type: ComponentMaterial, Config: Config{"backgroundColor": Lit("white")}},
		},
		Children: []*Node{
			{ID: "title", Kind: KindHeading, Content: "{{ title }}"},
			{ID: "body", Kind: KindParagraph, Children: []*Node{
				{ID: "label", Kind: KindSpan},
			}},
		},
	}
}

// ============================================================================
// NodeKind
// ============================================================================

func TestNodeKindRoundTripText(t *testing.T) {
	for kind := KindDiv; kind <= KindSpan; kind++ {
		text, err := kind.MarshalText()
		require.NoError(t, err)

		var parsed NodeKind
		require.NoError(t, parsed.UnmarshalText(text))
		assert.Equal(t, kind, parsed)
	}
}

func TestParseNodeKindEmptyIsDiv(t *testing.T) {
	kind, err := ParseNodeKind("")
	require.NoError(t, err)
	assert.Equal(t, KindDiv, kind)
}

func TestParseNodeKindUnknown(t *testing.T) {
	_, err := ParseNodeKind("canvas")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "canvas")
}

func TestNodeKindStringOutOfRange(t *testing.T) {
	assert.Equal(t, "unknown", NodeKind(99).String())
}

func TestNodeJSONDecodesKindName(t *testing.T) {
	var n Node
	err := json.Unmarshal([]byte(`{"id":"a","kind":"button","content":"Go"}`), &n)
	require.NoError(t, err)
	assert.Equal(t, KindButton, n.Kind)
	assert.Equal(t, "Go", n.Content)
}

// ============================================================================
// Clone
// ============================================================================

func TestCloneIsIndependent(t *testing.T) {
	orig := sampleTree()
	clone := orig.Clone()

	clone.Children[0].Content = "changed"
	clone.Children[1].Children[0].ID = "renamed"
	clone.Components[0].Config["backgroundColor"] = Lit("black")

	assert.Equal(t, "{{ title }}", orig.Children[0].Content)
	assert.Equal(t, "label", orig.Children[1].Children[0].ID)
	assert.Equal(t, Lit("white"), orig.Components[0].Config["backgroundColor"])
}

func TestCloneNil(t *testing.T) {
	var n *Node
	assert.Nil(t, n.Clone())
}

func TestCloneCopiesNestedParameters(t *testing.T) {
	orig := &Node{ID: "a", PrefabParameters: map[string]any{"list": []any{"x"}}}
	clone := orig.Clone()

	clone.PrefabParameters["list"].([]any)[0] = "y"
	assert.Equal(t, "x", orig.PrefabParameters["list"].([]any)[0])
}

// ============================================================================
// Walk / parameter broadcast
// ============================================================================

func TestWalkPreOrder(t *testing.T) {
	var ids []string
	Walk(sampleTree(), func(n *Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	assert.Equal(t, []string{"card", "title", "body", "label"}, ids)
}

func TestWalkSkipsChildren(t *testing.T) {
	var ids []string
	Walk(sampleTree(), func(n *Node) bool {
		ids = append(ids, n.ID)
		return n.ID != "body"
	})
	assert.Equal(t, []string{"card", "title", "body"}, ids)
}

func TestApplyParameterBroadcastsToEveryNode(t *testing.T) {
	root := sampleTree()
	ApplyParameter(root, "color", "red")

	Walk(root, func(n *Node) bool {
		assert.Equal(t, "red", n.PrefabParameters["color"], "node %s", n.ID)
		return true
	})
}

func TestApplyParameterContentSetsEveryNode(t *testing.T) {
	root := sampleTree()
	ApplyParameter(root, "content", 42.0)

	assert.Equal(t, 4, CountNodes(root))
	Walk(root, func(n *Node) bool {
		assert.Equal(t, "42", n.Content)
		return true
	})
}

func TestApplyParameterIDSetsRootOnly(t *testing.T) {
	root := sampleTree()
	ApplyParameter(root, "id", "card-1")

	assert.Equal(t, "card-1", root.ID)
	assert.Equal(t, "title", root.Children[0].ID)
}

func TestApplyParametersLaterCallWins(t *testing.T) {
	root := sampleTree()
	ApplyParameters(root, map[string]any{"text": "D"})
	ApplyParameters(root, map[string]any{"text": "P"})

	assert.Equal(t, "P", root.Children[1].Children[0].PrefabParameters["text"])
}

func TestSubstituteContent(t *testing.T) {
	root := sampleTree()
	ApplyParameter(root, "title", "Hello")
	SubstituteContent(root)

	assert.Equal(t, "Hello", root.Children[0].Content)
}

func TestSubstituteContentLeavesUnknownPlaceholders(t *testing.T) {
	n := &Node{ID: "a", Content: "{{missing}} and {{known}}", PrefabParameters: map[string]any{"known": true}}
	SubstituteContent(n)

	assert.Equal(t, "{{missing}} and true", n.Content)
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "1.5", Stringify(1.5))
	assert.Equal(t, "7", Stringify(7))
	assert.Equal(t, "false", Stringify(false))
}
