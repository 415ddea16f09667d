// Package assets implements the asset store: a typed registry of named,
// reusable values indexed by id, type, path and tag, and the resolution of
// component values that are either literals or references into it.
//
// Resolution is depth-first and tracks the assets currently being resolved,
// so a reference cycle (palette A naming palette B naming A) terminates with
// a CYCLIC_REFERENCE error instead of recursing forever.
//
// A Store is owned by a single writer and is not safe for concurrent use.
package assets
