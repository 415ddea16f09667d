// Package store provides SQLite-backed persistence for compiled manifests,
// navigation journals and prefab instances.
//
// The store keeps three tables:
//   - manifests: compiled manifests keyed by their content hash
//   - navigations: one row per router state change, grouped by session
//   - prefab_instances: the latest form of each live prefab instance
//
// # Ordering
//
// Rows are stamped with a logical seq from a Clock, never a timestamp.
// Every multi-row read orders by seq ASC, then id ASC COLLATE BINARY, so a
// journal reads back identically on every run.
//
// # Bodies
//
// Manifests, parameters, params/query maps and node trees are stored as
// canonical JSON (see ir.MarshalCanonical). Equal values produce equal text,
// which keeps manifest hashes stable and makes the tables diffable.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
