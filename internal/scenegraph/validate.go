package scenegraph

import "fmt"

// Validate checks the structural invariants and returns the first
// violation found. It is intended for tests and debugging.
func (g *Graph) Validate() error {
	if g.root == nil {
		if len(g.nodes) != 0 {
			return fmt.Errorf("empty root with %d indexed nodes", len(g.nodes))
		}
		return nil
	}
	if _, ok := g.parent[g.root.ID]; ok {
		return fmt.Errorf("root %s has a parent", g.root.ID)
	}

	for parentID, ids := range g.children {
		n, ok := g.nodes[parentID]
		if !ok {
			return fmt.Errorf("child list for unindexed node %s", parentID)
		}
		if len(n.Children) != len(ids) {
			return fmt.Errorf("node %s: %d children in tree, %d indexed", parentID, len(n.Children), len(ids))
		}
		for i, id := range ids {
			if _, ok := g.nodes[id]; !ok {
				return fmt.Errorf("node %s: child %s is not indexed", parentID, id)
			}
			if g.parent[id] != parentID {
				return fmt.Errorf("node %s: child %s has parent %q", parentID, id, g.parent[id])
			}
			if n.Children[i] != g.nodes[id] {
				return fmt.Errorf("node %s: child %d is not the indexed %s", parentID, i, id)
			}
		}
	}

	for id, parentID := range g.parent {
		found := false
		for _, c := range g.children[parentID] {
			if c == id {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("parent of %s is %s, which does not list it", id, parentID)
		}
	}

	reached := 0
	for cur := range g.All() {
		reached++
		if reached > len(g.nodes) {
			return fmt.Errorf("cycle reachable from %s", cur.ID)
		}
	}
	if reached != len(g.nodes) {
		return fmt.Errorf("%d nodes indexed, %d reachable from root", len(g.nodes), reached)
	}
	return nil
}
