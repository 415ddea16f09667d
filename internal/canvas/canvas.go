package canvas

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"slices"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/roach88/scenekit/internal/animation"
	"github.com/roach88/scenekit/internal/assets"
	"github.com/roach88/scenekit/internal/idgen"
	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/prefab"
	"github.com/roach88/scenekit/internal/router"
	"github.com/roach88/scenekit/internal/scenegraph"
	"github.com/roach88/scenekit/internal/style"
)

// DefaultMaxDepth bounds nested prefab expansion.
const DefaultMaxDepth = 16

// Canvas renders the scene selected by its router.
type Canvas struct {
	manifest *ir.Manifest
	settings ir.Settings

	assets   *assets.Store
	prefabs  *prefab.Engine
	styles   *style.Pipeline
	router   *router.Router
	animator animation.Animator
	graph    *scenegraph.Graph

	placeholders map[string]Placeholder
	buildErr     error
	sanitizer    *bluemonday.Policy
	maxDepth     int
	unsubscribe  func()

	location router.Location
	newID    idgen.Generator
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Canvas.
type Option func(*Canvas)

// WithLogger sets the logger shared by every component.
func WithLogger(l *slog.Logger) Option {
	return func(c *Canvas) {
		c.logger = l
	}
}

// WithLocation sets the host location. Defaults to an empty MemoryLocation.
func WithLocation(loc router.Location) Option {
	return func(c *Canvas) {
		c.location = loc
	}
}

// WithAnimator sets the animation collaborator. Defaults to a Player over
// the manifest's animation assets.
func WithAnimator(a animation.Animator) Option {
	return func(c *Canvas) {
		c.animator = a
	}
}

// WithIDGenerator sets the generator for prefab instance ids.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(c *Canvas) {
		c.newID = gen
	}
}

// WithNow sets the time source for asset and instance timestamps.
func WithNow(now func() time.Time) Option {
	return func(c *Canvas) {
		c.now = now
	}
}

// WithMaxDepth bounds nested prefab expansion.
func WithMaxDepth(n int) Option {
	return func(c *Canvas) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

// New builds a canvas for m and renders the scene at the host's current
// location.
func New(m *ir.Manifest, opts ...Option) (*Canvas, error) {
	c := &Canvas{
		manifest:     m,
		settings:     m.EffectiveSettings(),
		placeholders: make(map[string]Placeholder),
		maxDepth:     DefaultMaxDepth,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	assetOpts := []assets.Option{assets.WithLogger(c.logger)}
	if c.now != nil {
		assetOpts = append(assetOpts, assets.WithNow(c.now))
	}
	c.assets = assets.New(assetOpts...)
	if err := c.assets.AddAll(m.Assets); err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}

	engineOpts := []prefab.Option{prefab.WithLogger(c.logger)}
	if c.newID != nil {
		engineOpts = append(engineOpts, prefab.WithIDGenerator(c.newID))
	}
	if c.now != nil {
		engineOpts = append(engineOpts, prefab.WithNow(c.now))
	}
	c.prefabs = prefab.New(engineOpts...)
	if err := c.prefabs.RegisterAll(m.Prefabs); err != nil {
		return nil, fmt.Errorf("canvas: %w", err)
	}
	for _, a := range c.assets.ByType(ir.AssetPrefab) {
		p := *a.Prefab
		if p.ID == "" {
			p.ID = a.ID
		}
		if c.prefabs.Has(p.ID) {
			continue
		}
		if err := c.prefabs.Register(p); err != nil {
			return nil, fmt.Errorf("canvas: prefab asset %s: %w", a.ID, err)
		}
	}

	c.styles = style.New(c.assets,
		style.WithDefaultUnit(c.settings.DefaultUnit),
		style.WithLogger(c.logger))

	if c.animator == nil {
		c.animator = animation.NewPlayer(animation.FromAssets(c.assets), animation.WithLogger(c.logger))
	}
	if c.settings.SanitizeContent {
		c.sanitizer = bluemonday.StrictPolicy()
	}

	c.graph = scenegraph.New(scenegraph.WithLogger(c.logger))
	routerOpts := []router.Option{router.WithLogger(c.logger)}
	if c.location != nil {
		routerOpts = append(routerOpts, router.WithLocation(c.location))
	}
	c.router = router.FromManifest(m, routerOpts...)
	c.rebuild(c.router.State())
	c.unsubscribe = c.router.Subscribe(c.rebuild)
	return c, nil
}

// Close detaches the canvas from its router and host location.
func (c *Canvas) Close() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.router.Close()
}

// rebuild replaces the graph with the expanded tree of st's scene.
func (c *Canvas) rebuild(st ir.RouterState) {
	clear(c.placeholders)
	c.buildErr = nil
	if st.CurrentScene == nil || st.CurrentScene.Root == nil {
		_ = c.graph.Build(nil)
		return
	}
	root := c.expand(st.CurrentScene.Root.Clone(), nil)
	if err := c.graph.Build(root); err != nil {
		c.buildErr = fmt.Errorf("scene %s: %w", st.CurrentScene.ID, err)
		c.logger.Error("scene graph build failed",
			"scene", st.CurrentScene.ID,
			"error", err)
		_ = c.graph.Build(nil)
		return
	}
	c.logger.Debug("scene built",
		"scene", st.CurrentScene.ID,
		"path", st.CurrentPath,
		"nodes", c.graph.Len(),
		"placeholders", len(c.placeholders))
}

// expand replaces prefab references in the subtree rooted at n. stack holds
// the prefab ids being expanded above n.
func (c *Canvas) expand(n *ir.Node, stack []string) *ir.Node {
	if n == nil {
		return nil
	}
	if n.IsPrefabRef() {
		switch {
		case slices.Contains(stack, n.PrefabID):
			return c.placeholder(n, ReasonCyclicPrefab, "prefab expands into itself")
		case len(stack) >= c.maxDepth:
			return c.placeholder(n, ReasonDepthExceeded, fmt.Sprintf("nesting deeper than %d", c.maxDepth))
		}
		out, err := c.prefabs.Expand(n)
		if err != nil {
			reason := ReasonInstantiationFailed
			if prefab.IsPrefabNotFound(err) {
				reason = ReasonPrefabNotFound
			}
			return c.placeholder(n, reason, err.Error())
		}
		n = out
		stack = append(slices.Clip(stack), n.PrefabID)
	}
	for i, child := range n.Children {
		n.Children[i] = c.expand(child, stack)
	}
	return n
}

func (c *Canvas) placeholder(n *ir.Node, reason PlaceholderReason, msg string) *ir.Node {
	c.logger.Warn("prefab reference not expanded",
		"node", n.ID,
		"prefab", n.PrefabID,
		"reason", string(reason))
	c.placeholders[n.ID] = Placeholder{Reason: reason, ID: n.PrefabID, Message: msg}
	return &ir.Node{ID: n.ID, Kind: ir.KindDiv, PrefabID: n.PrefabID}
}

// Navigate moves the router to path. It reports whether the state changed.
func (c *Canvas) Navigate(path string) bool {
	return c.router.Navigate(path)
}

// NavigateTo moves the router to the route with the given id.
func (c *Canvas) NavigateTo(routeID string, params map[string]string) (bool, error) {
	return c.router.NavigateTo(routeID, params)
}

// Back moves the host location back.
func (c *Canvas) Back() {
	c.router.GoBack()
}

// Forward moves the host location forward.
func (c *Canvas) Forward() {
	c.router.GoForward()
}

// State returns the router state.
func (c *Canvas) State() ir.RouterState {
	return c.router.State()
}

// Err returns the error of the last scene build, if any.
func (c *Canvas) Err() error {
	return c.buildErr
}

// Render produces the render tree of the current scene, or nil when no
// scene is selected.
func (c *Canvas) Render() *RenderNode {
	root := c.graph.Root()
	if root == nil {
		return nil
	}
	return c.renderNode(root)
}

func (c *Canvas) renderNode(n *ir.Node) *RenderNode {
	out := &RenderNode{
		ID:      n.ID,
		Kind:    n.Kind.String(),
		Content: c.sanitize(n.Content),
		Props:   ir.CloneMap(n.Props),
	}
	if ph, ok := c.placeholders[n.ID]; ok {
		p := ph
		out.Placeholder = &p
		return out
	}
	st, issues := c.styles.Compose(n)
	if len(st) > 0 {
		out.Style = st
	}
	out.Issues = issues
	out.Animations = c.directives(n)
	for _, id := range c.graph.Children(n.ID) {
		child, _ := c.graph.Node(id)
		out.Children = append(out.Children, c.renderNode(child))
	}
	return out
}

func (c *Canvas) sanitize(s string) string {
	if c.sanitizer == nil || s == "" {
		return s
	}
	return html.UnescapeString(c.sanitizer.Sanitize(s))
}

// Style composes the style of one node of the current graph.
func (c *Canvas) Style(nodeID string) (style.Style, []style.Issue, error) {
	n, ok := c.graph.Node(nodeID)
	if !ok {
		return nil, nil, fmt.Errorf("canvas: %w", scenegraph.ErrNotFound)
	}
	st, issues := c.styles.Compose(n)
	return st, issues, nil
}

// directives reads the animation components of n.
func (c *Canvas) directives(n *ir.Node) []Directive {
	var out []Directive
	for _, comp := range n.Components {
		if comp.Type != ir.ComponentAnimation {
			continue
		}
		d, err := c.directive(n.ID, comp)
		if err != nil {
			c.logger.Debug("animation component skipped",
				"node", n.ID,
				"error", err)
			continue
		}
		out = append(out, d)
	}
	return out
}

func (c *Canvas) directive(nodeID string, comp ir.Component) (Directive, error) {
	d := Directive{NodeID: nodeID, Autoplay: true}
	switch v := comp.Config["animationId"].(type) {
	case ir.AssetReference:
		d.AnimationID = v.AssetID
	case ir.Literal:
		d.AnimationID, _ = v.V.(string)
	}
	if d.AnimationID == "" {
		return d, errors.New("animation component has no animationId")
	}

	cfg := make(map[string]any, len(comp.Config))
	for _, key := range comp.Config.SortedKeys() {
		if key == "animationId" {
			continue
		}
		v, err := c.assets.ResolveProperty(key, comp.Config[key])
		if err != nil {
			return d, err
		}
		cfg[key] = v
	}
	if auto, ok := cfg["autoplay"].(bool); ok {
		d.Autoplay = auto
	}
	opts, err := animation.ParseOptions(cfg)
	if err != nil {
		return d, err
	}
	d.Options = opts
	return d, nil
}

// Directives returns every animation directive of the current graph in
// traversal order.
func (c *Canvas) Directives() []Directive {
	var out []Directive
	for n := range c.graph.All() {
		if _, ok := c.placeholders[n.ID]; ok {
			continue
		}
		out = append(out, c.directives(n)...)
	}
	return out
}

// PlayAnimations dispatches every autoplay directive of the current graph
// to the animator and returns the dispatched directives.
func (c *Canvas) PlayAnimations() []Directive {
	var played []Directive
	for _, d := range c.Directives() {
		if !d.Autoplay {
			continue
		}
		c.animator.Play(d.NodeID, d.AnimationID, d.Options)
		played = append(played, d)
	}
	return played
}

// Instantiate creates a prefab instance. When parentID is set, the instance
// tree is attached under that node of the current graph; it lives until the
// next scene rebuild.
func (c *Canvas) Instantiate(prefabID string, opts prefab.Options, parentID string) (*ir.PrefabInstance, error) {
	inst, err := c.prefabs.Instantiate(prefabID, opts)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		return inst, nil
	}
	node := c.expand(inst.Instance.Clone(), []string{prefabID})
	if err := c.graph.AddNode(parentID, node); err != nil {
		c.prefabs.RemoveInstance(inst.ID)
		return nil, err
	}
	return inst, nil
}

// UpdateInstance merges params into an instance and rebuilds it. An
// attached instance tree is replaced in place; the record changes only
// once the graph has accepted the new tree.
func (c *Canvas) UpdateInstance(id string, params map[string]any) (*ir.PrefabInstance, error) {
	inst, err := c.prefabs.RebuildInstance(id, params)
	if err != nil {
		return nil, err
	}
	if c.graph.Has(id) {
		node := c.expand(inst.Instance.Clone(), []string{inst.PrefabID})
		if err := c.graph.ReplaceNode(id, node); err != nil {
			return nil, err
		}
	}
	if err := c.prefabs.CommitInstance(*inst); err != nil {
		return nil, err
	}
	return inst, nil
}

// RemoveInstance drops an instance and detaches its tree from the graph.
// It reports whether the instance existed.
func (c *Canvas) RemoveInstance(id string) bool {
	if !c.prefabs.RemoveInstance(id) {
		return false
	}
	if c.graph.Has(id) {
		if err := c.graph.RemoveNode(id); err != nil {
			c.logger.Warn("instance tree not detached", "instance", id, "error", err)
		}
	}
	return true
}

// Manifest returns the manifest the canvas was built from.
func (c *Canvas) Manifest() *ir.Manifest { return c.manifest }

// Settings returns the effective manifest settings.
func (c *Canvas) Settings() ir.Settings { return c.settings }

// Assets returns the asset store.
func (c *Canvas) Assets() *assets.Store { return c.assets }

// Prefabs returns the prefab engine.
func (c *Canvas) Prefabs() *prefab.Engine { return c.prefabs }

// Styles returns the style pipeline.
func (c *Canvas) Styles() *style.Pipeline { return c.styles }

// Router returns the router.
func (c *Canvas) Router() *router.Router { return c.router }

// Graph returns the current scene graph.
func (c *Canvas) Graph() *scenegraph.Graph { return c.graph }

// Animator returns the animation collaborator.
func (c *Canvas) Animator() animation.Animator { return c.animator }
