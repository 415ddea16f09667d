package ir

import "maps"

// Route maps a path pattern to a scene. Routes may nest.
// Pattern segments starting with ':' bind a named parameter.
type Route struct {
	ID       string  `json:"id"`
	Path     string  `json:"path"`
	SceneID  string  `json:"sceneId"`
	Name     string  `json:"name,omitempty"`
	Children []Route `json:"children,omitempty"`
}

// Scene is a named root node associated with a route.
type Scene struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path,omitempty"`
	Root *Node  `json:"root"`
}

// RouterState is an immutable snapshot of the router.
// CurrentRoute and CurrentScene are nil while no route matches.
type RouterState struct {
	CurrentPath  string            `json:"currentPath"`
	CurrentRoute *Route            `json:"currentRoute,omitempty"`
	CurrentScene *Scene            `json:"currentScene,omitempty"`
	Params       map[string]string `json:"params"`
	Query        map[string]string `json:"query"`
}

// RoutePath returns the matched route pattern, or "" when unresolved.
func (s RouterState) RoutePath() string {
	if s.CurrentRoute == nil {
		return ""
	}
	return s.CurrentRoute.Path
}

// SceneID returns the matched scene id, or "" when unresolved.
func (s RouterState) SceneID() string {
	if s.CurrentScene == nil {
		return ""
	}
	return s.CurrentScene.ID
}

// Resolved reports whether a route and scene are selected.
func (s RouterState) Resolved() bool {
	return s.CurrentRoute != nil && s.CurrentScene != nil
}

// Comparable projects the fields that decide whether two states differ.
func (s RouterState) Comparable() map[string]any {
	params := make(map[string]any, len(s.Params))
	for k, v := range s.Params {
		params[k] = v
	}
	query := make(map[string]any, len(s.Query))
	for k, v := range s.Query {
		query[k] = v
	}
	return map[string]any{
		"path":      s.CurrentPath,
		"routePath": s.RoutePath(),
		"sceneId":   s.SceneID(),
		"params":    params,
		"query":     query,
	}
}

// Equal deep-compares path, route pattern, scene id, params and query.
func (s RouterState) Equal(o RouterState) bool {
	return s.CurrentPath == o.CurrentPath &&
		s.RoutePath() == o.RoutePath() &&
		s.SceneID() == o.SceneID() &&
		maps.Equal(s.Params, o.Params) &&
		maps.Equal(s.Query, o.Query)
}
