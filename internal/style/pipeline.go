package style

import (
	"log/slog"
	"maps"

	"github.com/roach88/scenekit/internal/assets"
	"github.com/roach88/scenekit/internal/ir"
)

// Style is a flat property record handed to the presentation layer.
type Style map[string]any

// Resolver resolves a component config value bound to a property key.
// *assets.Store implements it.
type Resolver interface {
	ResolveProperty(key string, v ir.Value) (any, error)
}

// Handler translates one component's resolved config into style properties.
type Handler func(w *Writer, cfg map[string]any)

// Issue records a config value that could not be resolved. The property is
// left unset and composition continues.
type Issue struct {
	NodeID        string `json:"nodeId"`
	ComponentType string `json:"componentType"`
	Key           string `json:"key"`
	AssetID       string `json:"assetId,omitempty"`
	Message       string `json:"message"`
}

// Pipeline composes styles. Create with New; handlers may be added with
// Register before or between renders.
type Pipeline struct {
	resolver Resolver
	handlers map[string]Handler
	unit     string
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = l
	}
}

// WithDefaultUnit sets the unit applied to bare numbers on length-like
// properties. Defaults to "px".
func WithDefaultUnit(unit string) Option {
	return func(p *Pipeline) {
		if unit != "" {
			p.unit = unit
		}
	}
}

// WithoutBuiltins starts from an empty handler registry.
func WithoutBuiltins() Option {
	return func(p *Pipeline) {
		p.handlers = make(map[string]Handler)
	}
}

// New creates a Pipeline resolving values through r, with the built-in
// handlers registered.
func New(r Resolver, opts ...Option) *Pipeline {
	p := &Pipeline{
		resolver: r,
		handlers: Builtins(),
		unit:     "px",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register installs h for component type t, replacing any previous handler.
// It panics on an empty type or nil handler.
func (p *Pipeline) Register(t string, h Handler) {
	if t == "" {
		panic("style: Register with empty component type")
	}
	if h == nil {
		panic("style: Register with nil handler for " + t)
	}
	p.handlers[t] = h
}

// Registered reports whether a handler exists for t.
func (p *Pipeline) Registered(t string) bool {
	_, ok := p.handlers[t]
	return ok
}

// Unit returns the default length unit.
func (p *Pipeline) Unit() string {
	return p.unit
}

// ApplyComponents resolves node's components in order and writes their
// properties into target. Components without a registered handler are
// skipped.
func (p *Pipeline) ApplyComponents(target Style, node *ir.Node) []Issue {
	var issues []Issue
	for _, c := range node.Components {
		h, ok := p.handlers[c.Type]
		if !ok {
			p.logger.Debug("component type not registered, skipping",
				"node", node.ID,
				"type", c.Type)
			continue
		}

		cfg := make(map[string]any, len(c.Config))
		for _, key := range c.Config.SortedKeys() {
			v, err := p.resolver.ResolveProperty(key, c.Config[key])
			if err != nil {
				issue := Issue{
					NodeID:        node.ID,
					ComponentType: c.Type,
					Key:           key,
					AssetID:       assets.FailedID(err),
					Message:       err.Error(),
				}
				issues = append(issues, issue)
				p.logger.Debug("component value unresolved",
					"node", node.ID,
					"type", c.Type,
					"key", key,
					"error", err)
				continue
			}
			if v != nil {
				cfg[key] = v
			}
		}
		h(&Writer{style: target, unit: p.unit}, cfg)
	}
	return issues
}

// Compose returns a fresh Style for node.
func (p *Pipeline) Compose(node *ir.Node) (Style, []Issue) {
	s := make(Style)
	issues := p.ApplyComponents(s, node)
	return s, issues
}

// Clone returns a shallow copy of the style record.
func (s Style) Clone() Style {
	return maps.Clone(s)
}
