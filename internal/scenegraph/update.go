package scenegraph

import (
	"github.com/roach88/scenekit/internal/ir"
)

// NodePatch lists the fields UpdateNode merges onto a node. Nil fields are
// left unchanged. The id is not patchable.
type NodePatch struct {
	Kind             *ir.NodeKind
	Content          *string
	Components       []ir.Component
	Props            map[string]any
	PrefabID         *string
	PrefabVariantID  *string
	PrefabParameters map[string]any

	// Children, when non-nil, replaces the child list. An empty non-nil
	// slice removes every child.
	Children []*ir.Node
}

// UpdateNode merges patch onto the node with the given id.
//
// When patch.Children is set the old child subtrees are torn down and the
// new children indexed, so no stale id stays reachable. New children may
// reuse ids from the subtrees they replace.
func (g *Graph) UpdateNode(id string, patch NodePatch) error {
	n, ok := g.nodes[id]
	if !ok {
		return notFound("update", id)
	}

	if patch.Children != nil {
		replaced := make(map[string]bool)
		for _, child := range g.children[id] {
			for d := range g.Subtree(child) {
				replaced[d.ID] = true
			}
		}
		probe := &ir.Node{ID: id, Children: patch.Children}
		replaced[id] = true
		if err := g.checkInsert("update", probe, replaced); err != nil {
			return err
		}
	}

	if patch.Kind != nil {
		n.Kind = *patch.Kind
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.Components != nil {
		n.Components = patch.Components
	}
	if patch.Props != nil {
		n.Props = patch.Props
	}
	if patch.PrefabID != nil {
		n.PrefabID = *patch.PrefabID
	}
	if patch.PrefabVariantID != nil {
		n.PrefabVariantID = *patch.PrefabVariantID
	}
	if patch.PrefabParameters != nil {
		n.PrefabParameters = patch.PrefabParameters
	}

	if patch.Children != nil {
		for _, child := range g.children[id] {
			g.unindex(child)
		}
		n.Children = nil
		g.children[id] = nil
		for _, child := range patch.Children {
			n.Children = append(n.Children, child)
			g.children[id] = append(g.children[id], child.ID)
			g.index(child, id)
		}
	}
	return nil
}

// ReplaceNode swaps the subtree at id for replacement, keeping its position
// among its siblings. The replacement may reuse ids from the old subtree.
// Replacing the root rebuilds the graph.
func (g *Graph) ReplaceNode(id string, replacement *ir.Node) error {
	if replacement == nil {
		return invalid("replace", "nil node")
	}
	if !g.Has(id) {
		return notFound("replace", id)
	}
	parentID, hasParent := g.parent[id]
	if !hasParent {
		return g.Build(replacement)
	}

	replaced := make(map[string]bool)
	for d := range g.Subtree(id) {
		replaced[d.ID] = true
	}
	if err := g.checkInsert("replace", replacement, replaced); err != nil {
		return err
	}

	p := g.nodes[parentID]
	pos := -1
	for i, c := range g.children[parentID] {
		if c == id {
			pos = i
			break
		}
	}
	g.unindex(id)
	p.Children[pos] = replacement
	g.children[parentID][pos] = replacement.ID
	g.index(replacement, parentID)
	return nil
}
