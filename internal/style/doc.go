// Package style assembles a node's flat style record from its ordered
// component list.
//
// Each component type is translated by a Handler from an open registry.
// Config values are resolved through the asset store before a handler sees
// them, and handlers write into a shared Style so that two components setting
// the same property conflict by array position: the later one wins.
package style
