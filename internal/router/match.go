package router

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/roach88/scenekit/internal/ir"
)

// Entry is one route of the flattened routing table.
type Entry struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	SceneID string `json:"sceneId"`
	Name    string `json:"name,omitempty"`
	Depth   int    `json:"depth"`
	Parent  string `json:"parent,omitempty"`

	segments []string
}

// Match is the result of matching a path against the table.
type Match struct {
	Route  Entry
	Params map[string]string
}

// Flatten walks routes depth-first, parents before children, and returns
// the table in match order. Child paths without a leading '/' are joined
// under their parent's path.
func Flatten(routes []ir.Route) []Entry {
	var out []Entry
	var walk func(rs []ir.Route, parent *Entry)
	walk = func(rs []ir.Route, parent *Entry) {
		for _, r := range rs {
			e := Entry{ID: r.ID, SceneID: r.SceneID, Name: r.Name, Path: r.Path}
			if parent != nil {
				e.Depth = parent.Depth + 1
				e.Parent = parent.ID
				e.Path = JoinPath(parent.Path, r.Path)
			}
			e.Path = CleanPath(e.Path)
			e.segments = Segments(e.Path)
			out = append(out, e)
			walk(r.Children, &e)
		}
	}
	walk(routes, nil)
	return out
}

// JoinPath resolves child against parent. Absolute children stand alone.
func JoinPath(parent, child string) string {
	if strings.HasPrefix(child, "/") {
		return child
	}
	if child == "" {
		return parent
	}
	return strings.TrimSuffix(parent, "/") + "/" + child
}

// CleanPath returns path with a single leading '/' and no trailing '/'.
func CleanPath(path string) string {
	return "/" + strings.Join(Segments(path), "/")
}

// Segments splits a path on '/', dropping empty segments.
func Segments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MatchSegments compares a route pattern against path segments. Parameter
// values are path-unescaped.
func MatchSegments(pattern, path []string) (map[string]string, bool) {
	if len(pattern) != len(path) {
		return nil, false
	}
	params := make(map[string]string)
	for i, seg := range pattern {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			value, err := url.PathUnescape(path[i])
			if err != nil {
				value = path[i]
			}
			params[name] = value
			continue
		}
		if seg != path[i] {
			return nil, false
		}
	}
	return params, true
}

// find returns the first entry matching path.
func find(table []Entry, path string) (Match, bool) {
	segs := Segments(path)
	for _, e := range table {
		if params, ok := MatchSegments(e.segments, segs); ok {
			return Match{Route: e, Params: params}, true
		}
	}
	return Match{}, false
}

// ParseQuery decodes a raw query string, keeping the first value per key.
func ParseQuery(raw string) map[string]string {
	out := make(map[string]string)
	values, err := url.ParseQuery(raw)
	if err != nil {
		return out
	}
	for k, v := range values {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}

// BuildPath substitutes params into a route pattern.
func BuildPath(pattern string, params map[string]string) (string, error) {
	segs := Segments(pattern)
	for i, seg := range segs {
		name, ok := strings.CutPrefix(seg, ":")
		if !ok {
			continue
		}
		v, ok := params[name]
		if !ok || v == "" {
			return "", fmt.Errorf("missing route parameter %q for %s", name, pattern)
		}
		segs[i] = url.PathEscape(v)
	}
	return "/" + strings.Join(segs, "/"), nil
}
