package scenegraph

import (
	"iter"
	"log/slog"
	"slices"

	"github.com/roach88/scenekit/internal/ir"
)

// Graph owns a mutable node tree and its indices.
//
// Nodes returned by accessors are the live tree nodes. Callers read them but
// change structure only through Graph methods.
type Graph struct {
	root     *ir.Node
	nodes    map[string]*ir.Node
	parent   map[string]string
	children map[string][]string

	logger *slog.Logger
}

// Option configures a Graph.
type Option func(*Graph)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Graph) {
		g.logger = l
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	g.reset()
	return g
}

// FromRoot creates a graph and builds it from root.
func FromRoot(root *ir.Node, opts ...Option) (*Graph, error) {
	g := New(opts...)
	if err := g.Build(root); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) reset() {
	g.root = nil
	g.nodes = make(map[string]*ir.Node)
	g.parent = make(map[string]string)
	g.children = make(map[string][]string)
}

// Build replaces the graph contents with the tree rooted at root. The graph
// takes ownership of the tree; pass a clone to keep the original intact.
// A nil root empties the graph.
//
// Build fails with DUPLICATE_ID or INVALID_NODE without touching the
// current contents.
func (g *Graph) Build(root *ir.Node) error {
	if root == nil {
		g.reset()
		return nil
	}
	if err := g.checkInsert("build", root, nil); err != nil {
		return err
	}
	g.reset()
	g.root = root
	g.index(root, "")
	return nil
}

// checkInsert verifies every id in the subtree is non-empty and unique
// within the subtree. When against is non-nil, ids must also be absent from
// the graph, except those listed in against.
func (g *Graph) checkInsert(op string, n *ir.Node, against map[string]bool) error {
	seen := make(map[string]bool)
	var err error
	ir.Walk(n, func(node *ir.Node) bool {
		switch {
		case err != nil:
			return false
		case node.ID == "":
			err = invalid(op, "node id is required")
		case slices.Contains(node.Children, nil):
			err = invalid(op, "nil child under "+node.ID)
		case seen[node.ID]:
			err = duplicate(op, node.ID)
		case against != nil && g.Has(node.ID) && !against[node.ID]:
			err = duplicate(op, node.ID)
		}
		seen[node.ID] = true
		return err == nil
	})
	return err
}

// noExemptions checks insertions against every indexed id.
var noExemptions = map[string]bool{}

// index records n and its subtree under parentID ("" for the root).
func (g *Graph) index(n *ir.Node, parentID string) {
	g.nodes[n.ID] = n
	if parentID != "" {
		g.parent[n.ID] = parentID
	}
	ids := make([]string, 0, len(n.Children))
	for _, child := range n.Children {
		ids = append(ids, child.ID)
		g.index(child, n.ID)
	}
	g.children[n.ID] = ids
}

// unindex removes id and its subtree from every index.
func (g *Graph) unindex(id string) {
	for _, child := range g.children[id] {
		g.unindex(child)
	}
	delete(g.nodes, id)
	delete(g.parent, id)
	delete(g.children, id)
}

// AddNode appends node under parentID and indexes its subtree. Adding with
// an empty parentID to an empty graph makes node the root.
func (g *Graph) AddNode(parentID string, node *ir.Node) error {
	if node == nil {
		return invalid("add", "nil node")
	}
	if parentID == "" && g.root == nil {
		return g.Build(node)
	}
	p, ok := g.nodes[parentID]
	if !ok {
		return notFound("add", parentID)
	}
	if err := g.checkInsert("add", node, noExemptions); err != nil {
		return err
	}
	p.Children = append(p.Children, node)
	g.children[parentID] = append(g.children[parentID], node.ID)
	g.index(node, parentID)
	return nil
}

// RemoveNode detaches id from its parent and drops it and all descendants
// from the graph. Removing the root empties the graph.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return notFound("remove", id)
	}
	if parentID, ok := g.parent[id]; ok {
		g.detach(parentID, id)
	}
	g.unindex(id)
	if g.root != nil && g.root.ID == id {
		g.root = nil
	}
	return nil
}

// detach removes child from parent's Children and child index.
func (g *Graph) detach(parentID, childID string) {
	p := g.nodes[parentID]
	p.Children = slices.DeleteFunc(p.Children, func(c *ir.Node) bool {
		return c.ID == childID
	})
	if len(p.Children) == 0 {
		p.Children = nil
	}
	g.children[parentID] = slices.DeleteFunc(g.children[parentID], func(c string) bool {
		return c == childID
	})
}

// MoveNode reparents id under newParentID, appending it to the new parent's
// children. Moving a node under itself or one of its descendants fails with
// CYCLE_REJECTED and changes nothing.
func (g *Graph) MoveNode(id, newParentID string) error {
	n, ok := g.nodes[id]
	if !ok {
		return notFound("move", id)
	}
	np, ok := g.nodes[newParentID]
	if !ok {
		return notFound("move", newParentID)
	}
	if g.isAncestorOrSelf(id, newParentID) {
		return &GraphError{
			Code:    ErrCodeCycleRejected,
			Op:      "move",
			NodeID:  id,
			Message: "target parent " + newParentID + " is the node or one of its descendants",
		}
	}

	if oldParentID, ok := g.parent[id]; ok {
		g.detach(oldParentID, id)
	}
	np.Children = append(np.Children, n)
	g.children[newParentID] = append(g.children[newParentID], id)
	g.parent[id] = newParentID
	return nil
}

// isAncestorOrSelf reports whether candidate is id or an ancestor of id.
func (g *Graph) isAncestorOrSelf(candidate, id string) bool {
	for cur, ok := id, true; ok; cur, ok = g.parent[cur] {
		if cur == candidate {
			return true
		}
	}
	return false
}

// IsDescendant reports whether id lies strictly below ancestorID.
func (g *Graph) IsDescendant(id, ancestorID string) bool {
	return id != ancestorID && g.isAncestorOrSelf(ancestorID, id)
}

// Root returns the root node, or nil for an empty graph.
func (g *Graph) Root() *ir.Node {
	return g.root
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*ir.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Has reports whether id is indexed.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Parent returns the parent id of id. The root has no parent.
func (g *Graph) Parent(id string) (string, bool) {
	p, ok := g.parent[id]
	return p, ok
}

// Children returns a copy of the ordered child ids of id.
func (g *Graph) Children(id string) []string {
	return slices.Clone(g.children[id])
}

// Ancestors returns the ids from id's parent up to the root.
func (g *Graph) Ancestors(id string) []string {
	var out []string
	for cur, ok := g.parent[id]; ok; cur, ok = g.parent[cur] {
		out = append(out, cur)
	}
	return out
}

// Depth returns the number of ancestors of id, or -1 if absent.
func (g *Graph) Depth(id string) int {
	if !g.Has(id) {
		return -1
	}
	return len(g.Ancestors(id))
}

// Len returns the number of indexed nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// IDs returns every indexed id in traversal order.
func (g *Graph) IDs() []string {
	out := make([]string, 0, len(g.nodes))
	for n := range g.All() {
		out = append(out, n.ID)
	}
	return out
}

// Traverse walks depth-first, parent before children, siblings in order,
// starting at startID (the root when empty). Returning false from fn stops
// the walk. Each call re-walks the current state.
func (g *Graph) Traverse(startID string, fn func(n *ir.Node, depth int) bool) error {
	if startID == "" {
		if g.root == nil {
			return nil
		}
		startID = g.root.ID
	}
	if !g.Has(startID) {
		return notFound("traverse", startID)
	}
	g.walk(startID, 0, fn)
	return nil
}

func (g *Graph) walk(id string, depth int, fn func(*ir.Node, int) bool) bool {
	if !fn(g.nodes[id], depth) {
		return false
	}
	for _, child := range g.children[id] {
		if !g.walk(child, depth+1, fn) {
			return false
		}
	}
	return true
}

// All returns a restartable pre-order sequence over the whole graph.
func (g *Graph) All() iter.Seq[*ir.Node] {
	return g.Subtree("")
}

// Subtree returns a restartable pre-order sequence rooted at id (the root
// when empty). An unknown id yields nothing.
func (g *Graph) Subtree(id string) iter.Seq[*ir.Node] {
	return func(yield func(*ir.Node) bool) {
		_ = g.Traverse(id, func(n *ir.Node, _ int) bool {
			return yield(n)
		})
	}
}
