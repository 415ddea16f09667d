// Package canvas wires the manifest-driven pipeline together.
//
// A Canvas owns one asset store, prefab engine, style pipeline and router
// built from a manifest. Every router state change rebuilds the scene graph
// from a fresh clone of the selected scene's root, expanding prefab
// references on the way:
//
//	location -> router -> scene -> prefab expansion -> graph -> render tree
//
// Render walks the graph and composes each node's style, producing a
// RenderNode tree for the presentation layer. Prefab references that cannot
// be expanded (unknown prefab, failed instantiation, a cycle or excessive
// nesting) render as placeholders so a single broken reference never blanks
// the scene.
//
// A Canvas is single-threaded. Callers that share one across goroutines
// serialise access themselves.
package canvas
