package store

import "github.com/roach88/scenekit/internal/ir"

// ManifestRecord is a compiled manifest stored under its content hash.
type ManifestRecord struct {
	Hash       string
	ManifestID string
	Name       string
	Version    string
	Manifest   *ir.Manifest
	Seq        int64
}

// Navigation is one journaled router state within a session.
// RoutePath and SceneID are empty for unresolved states.
type Navigation struct {
	ID        int64
	Session   string
	Seq       int64
	Path      string
	RoutePath string
	SceneID   string
	Params    map[string]string
	Query     map[string]string
}

// NavigationFromState captures the comparable fields of a router state.
func NavigationFromState(session string, seq int64, st ir.RouterState) Navigation {
	return Navigation{
		Session:   session,
		Seq:       seq,
		Path:      st.CurrentPath,
		RoutePath: st.RoutePath(),
		SceneID:   st.SceneID(),
		Params:    st.Params,
		Query:     st.Query,
	}
}

// Comparable mirrors ir.RouterState.Comparable so a journal row can be
// checked against a live state.
func (n Navigation) Comparable() map[string]any {
	params := make(map[string]any, len(n.Params))
	for k, v := range n.Params {
		params[k] = v
	}
	query := make(map[string]any, len(n.Query))
	for k, v := range n.Query {
		query[k] = v
	}
	return map[string]any{
		"path":      n.Path,
		"routePath": n.RoutePath,
		"sceneId":   n.SceneID,
		"params":    params,
		"query":     query,
	}
}

// InstanceRecord is the stored form of a prefab instance.
type InstanceRecord struct {
	ID         string
	PrefabID   string
	VariantID  string
	Parameters map[string]any
	Node       *ir.Node
	Seq        int64
}

// InstanceFromPrefab converts an engine instance into a record.
func InstanceFromPrefab(inst ir.PrefabInstance, seq int64) InstanceRecord {
	return InstanceRecord{
		ID:         inst.ID,
		PrefabID:   inst.PrefabID,
		VariantID:  inst.VariantID,
		Parameters: inst.Parameters,
		Node:       inst.Instance,
		Seq:        seq,
	}
}
