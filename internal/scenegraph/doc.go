// Package scenegraph maintains the live node tree of one rendered scene.
//
// A Graph indexes the tree three ways: nodes by id, the parent of each node,
// and the ordered child ids of each node. Every mutation keeps the indices
// and the nodes' own Children slices in agreement:
//
//  1. every id in a child list is an indexed node
//  2. parent[c] == p exactly when c appears in children[p]
//  3. no node is its own ancestor
//
// Mutations are all-or-nothing: an operation that fails returns an error and
// leaves the graph unchanged.
//
// Precondition: callers must not mutate a graph from inside a Traverse
// callback or while ranging over All. The graph is not safe for concurrent
// use.
package scenegraph
