// Package router maps a location path to a route and a route to a scene.
//
// The router is a small state machine: it starts Unresolved and moves between
// Resolved(route, scene) states only through Navigate or a location change
// reported by the host. A path that matches no route is a valid terminal
// state with a nil route and scene, not an error.
//
// Routes are matched depth-first in declaration order, parents before their
// children, and the first match wins. Segments starting with ':' bind a
// parameter; every other segment must match exactly, and segment counts
// must be equal.
package router
