// Package server exposes a Canvas over HTTP for previewing a manifest.
//
// Routes:
//
//	GET    /healthz                  manifest id and content hash
//	GET    /routes                   flattened routing table
//	GET    /state                    current router state
//	GET    /render/*                 navigate to the path, then render
//	GET    /assets/{id}              resolved asset value
//	POST   /prefabs/{id}/instances   create a prefab instance
//	GET    /instances/{id}           instance record
//	PATCH  /instances/{id}           merge parameters and rebuild
//	DELETE /instances/{id}           drop an instance
//
// Every response is a JSON envelope: {"status":"ok","data":...} or
// {"status":"error","error":{"code":...,"message":...}}.
//
// The canvas is single-writer, so requests are serialised by one mutex.
// With WithStore, navigations are journaled and instances persisted.
package server
