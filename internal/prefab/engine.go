package prefab

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/roach88/scenekit/internal/idgen"
	"github.com/roach88/scenekit/internal/ir"
)

// IDSeparator joins an instance id and a template node id to form the id of
// an instantiated descendant, e.g. "hero/title".
const IDSeparator = "/"

// Engine holds registered prefabs and the instances created from them.
// Not safe for concurrent use.
type Engine struct {
	prefabs   map[string]ir.Prefab
	instances map[string]ir.PrefabInstance
	order     []string

	newID     idgen.Generator
	now       func() time.Time
	logger    *slog.Logger
	validator *validator
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithIDGenerator sets the generator for instance ids.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(e *Engine) {
		e.newID = gen
	}
}

// WithNow sets the clock used for CreatedAt.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine with no prefabs.
func New(opts ...Option) *Engine {
	e := &Engine{
		prefabs:   make(map[string]ir.Prefab),
		instances: make(map[string]ir.PrefabInstance),
		newID:     idgen.Prefixed("inst_", idgen.Default),
		now:       time.Now,
		logger:    slog.Default(),
		validator: newValidator(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register stores a copy of p, replacing any prefab with the same id.
// Instantiation never mutates the stored template.
func (e *Engine) Register(p ir.Prefab) error {
	if p.ID == "" {
		return &Error{Code: ErrCodeInvalidPrefab, Message: "prefab id is required"}
	}
	if p.Template == nil && len(p.Variants) == 0 {
		return &Error{Code: ErrCodeInvalidPrefab, Message: "prefab has no template", PrefabID: p.ID}
	}
	e.prefabs[p.ID] = p.Clone()
	return nil
}

// RegisterAll registers prefabs in order, stopping at the first failure.
func (e *Engine) RegisterAll(list []ir.Prefab) error {
	for _, p := range list {
		if err := e.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// Unregister removes a prefab. Existing instances are kept.
func (e *Engine) Unregister(id string) bool {
	if _, ok := e.prefabs[id]; !ok {
		return false
	}
	delete(e.prefabs, id)
	return true
}

// Get returns a copy of the prefab with the given id.
func (e *Engine) Get(id string) (ir.Prefab, bool) {
	p, ok := e.prefabs[id]
	if !ok {
		return ir.Prefab{}, false
	}
	return p.Clone(), true
}

// Has reports whether a prefab is registered under id.
func (e *Engine) Has(id string) bool {
	_, ok := e.prefabs[id]
	return ok
}

// List returns copies of all prefabs ordered by id.
func (e *Engine) List() []ir.Prefab {
	out := make([]ir.Prefab, 0, len(e.prefabs))
	for _, id := range ir.SortedKeys(e.prefabs) {
		out = append(out, e.prefabs[id].Clone())
	}
	return out
}

// Search matches query case-insensitively against id, name, description,
// category and tags. An empty query matches everything.
func (e *Engine) Search(query string) []ir.Prefab {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []ir.Prefab
	for _, p := range e.List() {
		fields := append([]string{p.ID, p.Name, p.Description, p.Category}, p.Tags...)
		if q == "" || slices.ContainsFunc(fields, func(f string) bool {
			return strings.Contains(strings.ToLower(f), q)
		}) {
			out = append(out, p)
		}
	}
	return out
}

// Options are the call-site inputs to Instantiate.
type Options struct {
	VariantID  string
	CustomID   string
	Parameters map[string]any
}

// Instantiate runs the full pipeline and records the instance. The returned
// record owns a fresh node tree, independent of the template and of the
// engine's own bookkeeping copy.
func (e *Engine) Instantiate(prefabID string, opts Options) (*ir.PrefabInstance, error) {
	p, ok := e.prefabs[prefabID]
	if !ok {
		return nil, &Error{Code: ErrCodePrefabNotFound, Message: "prefab not registered", PrefabID: prefabID}
	}

	id := opts.CustomID
	if id == "" {
		id = requestedID(&p, p.SelectVariant(opts.VariantID), opts.Parameters)
	}
	if id == "" {
		var err error
		if id, err = e.generateID(prefabID); err != nil {
			return nil, err
		}
	}
	if _, exists := e.instances[id]; exists {
		return nil, &Error{
			Code:       ErrCodeInstantiationFailed,
			Message:    "instance id already in use",
			PrefabID:   prefabID,
			InstanceID: id,
		}
	}

	inst, err := e.build(&p, id, opts.VariantID, opts.Parameters)
	if err != nil {
		return nil, err
	}
	inst.CreatedAt = e.now().UTC()
	e.record(*inst)
	return inst, nil
}

// requestedID returns the instance id asked for through an "id" parameter:
// the caller's first, then the variant's defaults. Empty means none.
func requestedID(p *ir.Prefab, variant *ir.PrefabVariant, params map[string]any) string {
	if id, ok := params["id"].(string); ok && id != "" {
		return id
	}
	_, defaults, specs := p.TemplateFor(variant)
	if id, ok := defaults["id"].(string); ok && id != "" {
		return id
	}
	for _, spec := range specs {
		if id, ok := spec.Default.(string); ok && spec.Name == "id" && id != "" {
			return id
		}
	}
	return ""
}

func (e *Engine) generateID(prefabID string) (id string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{
				Code:     ErrCodeInstantiationFailed,
				Message:  "instance id generation panicked",
				PrefabID: prefabID,
				Err:      fmt.Errorf("%v", r),
			}
		}
	}()
	return e.newID(), nil
}

// build runs stages 2-5 and converts any panic into INSTANTIATION_FAILED.
func (e *Engine) build(p *ir.Prefab, id, variantID string, params map[string]any) (inst *ir.PrefabInstance, err error) {
	defer func() {
		if r := recover(); r != nil {
			inst = nil
			err = &Error{
				Code:       ErrCodeInstantiationFailed,
				Message:    "instantiation panicked",
				PrefabID:   p.ID,
				InstanceID: id,
				Err:        fmt.Errorf("%v", r),
			}
		}
		if err != nil {
			e.logger.Warn("prefab instantiation failed",
				"prefab", p.ID,
				"instance", id,
				"error", err)
		}
	}()

	variant := p.SelectVariant(variantID)
	template, defaults, specs := p.TemplateFor(variant)
	if template == nil {
		return nil, &Error{
			Code:       ErrCodeInstantiationFailed,
			Message:    "selected template is empty",
			PrefabID:   p.ID,
			InstanceID: id,
		}
	}

	// Stage 2: clone.
	root := template.Clone()

	// Stage 3: identity. An "id" parameter was already folded into id by
	// the caller, so stages 4 and 5 must not rename the root again.
	scopeIDs(root, id)

	// Stage 4: defaults, from defaultValues then parameter specs.
	merged := make(map[string]any, len(defaults))
	for k, v := range defaults {
		merged[k] = v
	}
	for _, spec := range specs {
		if _, ok := merged[spec.Name]; !ok && spec.Default != nil {
			merged[spec.Name] = spec.Default
		}
	}
	ir.ApplyParameters(root, withoutID(merged))

	// Stage 5: caller parameters.
	accepted := e.acceptParameters(p.ID, specs, params)
	ir.ApplyParameters(root, withoutID(accepted))
	for _, spec := range specs {
		_, given := accepted[spec.Name]
		_, defaulted := merged[spec.Name]
		if spec.Required && !given && !defaulted {
			e.logger.Warn("required prefab parameter missing",
				"prefab", p.ID,
				"param", spec.Name)
		}
	}
	ir.SubstituteContent(root)

	inst = &ir.PrefabInstance{
		ID:         id,
		PrefabID:   p.ID,
		Instance:   root,
		Parameters: ir.CloneMap(accepted),
	}
	if variant != nil {
		inst.VariantID = variant.ID
	}
	return inst, nil
}

// acceptParameters returns the parameters that pass validation. Rejected
// parameters are logged and dropped, leaving the default in place.
func (e *Engine) acceptParameters(prefabID string, specs []ir.ParameterSpec, params map[string]any) map[string]any {
	accepted := make(map[string]any, len(params))
	for _, key := range ir.SortedKeys(params) {
		value := params[key]
		idx := slices.IndexFunc(specs, func(s ir.ParameterSpec) bool { return s.Name == key })
		if idx >= 0 {
			if err := e.validator.check(specs[idx], value, params); err != nil {
				rejected := &Error{
					Code:      ErrCodeValidationFailed,
					Message:   "parameter rejected",
					PrefabID:  prefabID,
					Parameter: key,
					Err:       err,
				}
				e.logger.Warn("prefab parameter skipped",
					"code", string(ErrCodeValidationFailed),
					"prefab", prefabID,
					"param", key,
					"error", rejected)
				continue
			}
		}
		accepted[key] = ir.CloneAny(value)
	}
	return accepted
}

func withoutID(params map[string]any) map[string]any {
	if _, ok := params["id"]; !ok {
		return params
	}
	out := make(map[string]any, len(params)-1)
	for k, v := range params {
		if k != "id" {
			out[k] = v
		}
	}
	return out
}

// scopeIDs gives the root the instance id and prefixes every descendant id
// with it, so repeated instances of one prefab never collide in a graph.
func scopeIDs(root *ir.Node, instanceID string) {
	for _, child := range root.Children {
		ir.Walk(child, func(n *ir.Node) bool {
			n.ID = instanceID + IDSeparator + n.ID
			return true
		})
	}
	root.ID = instanceID
}
