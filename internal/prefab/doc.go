// Package prefab instantiates named node-subtree templates.
//
// Instantiation is a fixed pipeline; later stages override earlier ones:
//
//  1. lookup the prefab and select a variant
//  2. deep-clone the variant's template
//  3. assign the instance id to the clone root and scope descendant ids
//  4. broadcast default values over the whole subtree
//  5. broadcast caller parameters (validated; rejected ones are skipped)
//  6. for authored prefab-reference nodes only: merge with the call site
//  7. record a PrefabInstance
//
// A failure anywhere in stages 2-6, panics included, yields a single
// INSTANTIATION_FAILED error and no instance.
package prefab
