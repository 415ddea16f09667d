package router

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/scenekit/internal/ir"
)

// Listener receives every state change.
type Listener func(state ir.RouterState)

// Router resolves the current location to a route and scene.
// Not safe for concurrent use.
type Router struct {
	table  []Entry
	scenes map[string]ir.Scene

	location    Location
	defaultPath string
	stopWatch   func()

	state     ir.RouterState
	listeners []subscription
	nextSub   int

	logger *slog.Logger
}

type subscription struct {
	id int
	fn Listener
}

// Option configures a Router.
type Option func(*Router)

// WithLocation sets the host location service. Defaults to an empty
// MemoryLocation.
func WithLocation(loc Location) Option {
	return func(r *Router) {
		r.location = loc
	}
}

// WithDefaultPath sets the path resolved when the host location is empty.
func WithDefaultPath(path string) Option {
	return func(r *Router) {
		r.defaultPath = path
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		r.logger = l
	}
}

// New creates a router over routes and scenes and resolves the host's
// current location. No listener is notified for the initial state.
func New(routes []ir.Route, scenes []ir.Scene, opts ...Option) *Router {
	r := &Router{
		table:  Flatten(routes),
		scenes: make(map[string]ir.Scene, len(scenes)),
		logger: slog.Default(),
	}
	for _, s := range scenes {
		r.scenes[s.ID] = s
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.location == nil {
		r.location = NewMemoryLocation("")
	}

	path, query := r.location.CurrentPath(), r.location.QueryString()
	if path == "" && r.defaultPath != "" {
		r.location.PushPath(r.defaultPath)
		path, query = r.location.CurrentPath(), r.location.QueryString()
	}
	if path != "" {
		r.state = r.resolve(CleanPath(path), query)
	} else {
		r.state = ir.RouterState{Params: map[string]string{}, Query: map[string]string{}}
	}
	r.stopWatch = r.location.OnLocationChange(r.sync)
	return r
}

// FromManifest creates a router for a manifest's routes and scenes, using
// its defaultRoute as the default path.
func FromManifest(m *ir.Manifest, opts ...Option) *Router {
	if m.DefaultRoute != "" {
		opts = append([]Option{WithDefaultPath(m.DefaultRoute)}, opts...)
	}
	return New(m.Routes, m.Scenes, opts...)
}

// Close stops following host location changes.
func (r *Router) Close() {
	if r.stopWatch != nil {
		r.stopWatch()
		r.stopWatch = nil
	}
}

// resolve computes the state for a path and raw query.
func (r *Router) resolve(path, query string) ir.RouterState {
	st := ir.RouterState{
		CurrentPath: path,
		Params:      map[string]string{},
		Query:       ParseQuery(query),
	}
	m, ok := find(r.table, path)
	if !ok {
		r.logger.Debug("route unresolved", "path", path)
		return st
	}
	st.CurrentRoute = &ir.Route{ID: m.Route.ID, Path: m.Route.Path, SceneID: m.Route.SceneID, Name: m.Route.Name}
	st.Params = m.Params
	if scene, ok := r.scenes[m.Route.SceneID]; ok {
		st.CurrentScene = &scene
	} else {
		r.logger.Debug("route scene missing", "route", m.Route.ID, "scene", m.Route.SceneID)
	}
	return st
}

// Navigate resolves path (which may carry a query string). When the result
// differs from the current state in path, route pattern, scene, params or
// query, the state is replaced, the path is pushed to the host location and
// listeners are notified. Otherwise nothing happens. It reports whether the
// state changed.
func (r *Router) Navigate(path string) bool {
	p, query := splitQuery(path)
	p = CleanPath(p)
	next := r.resolve(p, query)
	if next.Equal(r.state) {
		return false
	}
	r.state = next
	full := p
	if query != "" {
		full += "?" + query
	}
	r.location.PushPath(full)
	r.notify()
	return true
}

// NavigateTo navigates to the route with the given id.
func (r *Router) NavigateTo(routeID string, params map[string]string) (bool, error) {
	path, err := r.Href(routeID, params)
	if err != nil {
		return false, err
	}
	return r.Navigate(path), nil
}

// GoBack asks the host to move back. The state follows when the host
// reports the change.
func (r *Router) GoBack() {
	r.location.Back()
}

// GoForward asks the host to move forward.
func (r *Router) GoForward() {
	r.location.Forward()
}

// sync follows a host-reported location change.
func (r *Router) sync() {
	next := r.resolve(CleanPath(r.location.CurrentPath()), r.location.QueryString())
	if next.Equal(r.state) {
		return
	}
	r.state = next
	r.notify()
}

// Subscribe registers a listener and returns its unsubscribe func.
func (r *Router) Subscribe(fn Listener) (unsubscribe func()) {
	id := r.nextSub
	r.nextSub++
	r.listeners = append(r.listeners, subscription{id: id, fn: fn})
	return func() {
		r.listeners = slices.DeleteFunc(r.listeners, func(s subscription) bool {
			return s.id == id
		})
	}
}

// notify calls every listener with its own snapshot. A panicking listener
// is logged and does not stop the others.
func (r *Router) notify() {
	subs := slices.Clone(r.listeners)
	for _, s := range subs {
		r.call(s, r.State())
	}
}

func (r *Router) call(s subscription, st ir.RouterState) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("router listener panicked",
				"listener", s.id,
				"panic", fmt.Sprint(rec))
		}
	}()
	s.fn(st)
}

// State returns a snapshot of the current state. Params, query, route and
// scene, including the scene's Root tree, are copies the caller may mutate.
func (r *Router) State() ir.RouterState {
	st := r.state
	st.Params = maps.Clone(r.state.Params)
	st.Query = maps.Clone(r.state.Query)
	if r.state.CurrentRoute != nil {
		route := *r.state.CurrentRoute
		st.CurrentRoute = &route
	}
	if r.state.CurrentScene != nil {
		scene := *r.state.CurrentScene
		scene.Root = scene.Root.Clone()
		st.CurrentScene = &scene
	}
	return st
}

// Match matches path against the table without changing state.
func (r *Router) Match(path string) (Match, bool) {
	p, _ := splitQuery(path)
	return find(r.table, p)
}

// Routes returns the flattened routing table in match order.
func (r *Router) Routes() []Entry {
	return slices.Clone(r.table)
}

// Scene returns the scene with the given id.
func (r *Router) Scene(id string) (ir.Scene, bool) {
	s, ok := r.scenes[id]
	return s, ok
}

// Href builds the path of the route with the given id.
func (r *Router) Href(routeID string, params map[string]string) (string, error) {
	for _, e := range r.table {
		if e.ID == routeID {
			return BuildPath(e.Path, params)
		}
	}
	return "", fmt.Errorf("unknown route %q", routeID)
}

// Location returns the host location service.
func (r *Router) Location() Location {
	return r.location
}
