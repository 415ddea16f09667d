package harness

import (
	"github.com/roach88/scenekit/internal/canvas"
)

// Step kinds recorded in the trace.
const (
	StepNavigate    = "navigate"
	StepRoute       = "route"
	StepBack        = "back"
	StepForward     = "forward"
	StepInstantiate = "instantiate"
)

// TraceEvent records the router state after one step.
type TraceEvent struct {
	Seq          int64             `json:"seq"`
	Step         string            `json:"step"`
	Input        string            `json:"input,omitempty"`
	Instance     string            `json:"instance,omitempty"`
	Changed      bool              `json:"changed"`
	Path         string            `json:"path"`
	RoutePath    string            `json:"routePath"`
	SceneID      string            `json:"sceneId"`
	Params       map[string]string `json:"params"`
	Query        map[string]string `json:"query"`
	Nodes        int               `json:"nodes"`
	Placeholders []string          `json:"placeholders"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds one event per executed step.
	Trace []TraceEvent `json:"trace"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Render is the render tree after the last step, nil if no scene matched.
	Render *canvas.RenderNode `json:"render,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
