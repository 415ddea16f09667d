// Package ir provides the canonical data model for scenekit manifests.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Node kinds form a closed set (NodeKind); component types are open strings
//     dispatched through a registry elsewhere.
//   - Component config values are either a Literal or an AssetReference (Value).
//   - Every instantiation path deep-clones; a *Node is owned by exactly one tree.
//   - All JSON tags use camelCase to match the manifest document format.
package ir
