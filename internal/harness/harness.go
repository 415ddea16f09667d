package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/scenekit/internal/canvas"
	"github.com/roach88/scenekit/internal/compiler"
	"github.com/roach88/scenekit/internal/idgen"
	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/prefab"
	"github.com/roach88/scenekit/internal/router"
	"github.com/roach88/scenekit/internal/store"
	"github.com/roach88/scenekit/internal/testutil"
)

// Harness is the scenario execution context.
// It drives one canvas with a deterministic clock and instance ids.
type Harness struct {
	canvas   *canvas.Canvas
	store    *store.Store
	manifest *ir.Manifest
	clock    *testutil.StepClock
	logger   *slog.Logger
	session  string
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Load the manifest
//  2. Build a canvas at the scenario's start location
//  3. Journal the initial state and every later router change
//  4. Execute steps, checking expect clauses
//  5. Evaluate assertions against trace, render and journal
func Run(scenario *Scenario) (*Result, error) {
	m, err := compiler.LoadFile(scenario.Manifest)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return RunManifest(scenario, m)
}

// RunManifest executes a scenario against an already loaded manifest.
func RunManifest(scenario *Scenario, m *ir.Manifest) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	ctx := context.Background()

	clock := testutil.NewStepClock()
	c, err := canvas.New(m,
		canvas.WithLogger(logger),
		canvas.WithLocation(router.NewMemoryLocation(scenario.Start)),
		canvas.WithIDGenerator(idgen.Sequence(scenario.Name+"-")),
		canvas.WithNow(clock.Now),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build canvas: %w", err)
	}
	defer c.Close()

	journal, err := store.NewJournal(ctx, st, scenario.Name,
		store.WithClock(store.NewClock()),
		store.WithJournalLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	journal.Record(c.State())
	unsubscribe := c.Router().Subscribe(journal.Record)
	defer unsubscribe()

	h := &Harness{
		canvas:   c,
		store:    st,
		manifest: m,
		clock:    clock,
		logger:   logger,
		session:  scenario.Name,
	}

	result := NewResult()
	for i, step := range scenario.Steps {
		h.executeStep(ctx, i, step, result)
	}
	if err := journal.Err(); err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	result.Render = c.Render()

	actx := &AssertionContext{
		Ctx:      ctx,
		Store:    st,
		Canvas:   c,
		Manifest: m,
		Session:  scenario.Name,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// executeStep runs one step, appends its trace event and checks its expect
// clause.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) {
	before := h.canvas.State()
	event := TraceEvent{Seq: h.clock.Next(), Step: step.Kind()}

	var stepErr error
	switch event.Step {
	case StepNavigate:
		event.Input = step.Navigate
		h.canvas.Navigate(step.Navigate)
	case StepRoute:
		event.Input = step.Route
		_, stepErr = h.canvas.NavigateTo(step.Route, step.Params)
	case StepBack:
		h.canvas.Back()
	case StepForward:
		h.canvas.Forward()
	case StepInstantiate:
		event.Input = step.Instantiate
		var inst *ir.PrefabInstance
		inst, stepErr = h.canvas.Instantiate(step.Instantiate, prefab.Options{
			VariantID:  step.Variant,
			CustomID:   step.ID,
			Parameters: step.Parameters,
		}, step.Parent)
		if stepErr == nil {
			event.Instance = inst.ID
			stepErr = h.store.WriteInstance(ctx, store.InstanceFromPrefab(*inst, event.Seq))
		}
	}

	after := h.canvas.State()
	event.Changed = !after.Equal(before)
	event.Path = after.CurrentPath
	event.RoutePath = after.RoutePath()
	event.SceneID = after.SceneID()
	event.Params = after.Params
	event.Query = after.Query
	event.Nodes = h.canvas.Graph().Len()
	event.Placeholders = placeholders(h.canvas.Render())
	result.Trace = append(result.Trace, event)

	h.logger.Info("step completed",
		"step", index,
		"kind", event.Step,
		"path", event.Path,
		"scene", event.SceneID)

	if msg := checkExpect(step.Expect, event, stepErr); msg != "" {
		result.AddError(fmt.Sprintf("steps[%d] (%s): %s", index, event.Step, msg))
	}
}

// placeholders lists the ids of placeholder nodes in render order.
func placeholders(root *canvas.RenderNode) []string {
	ids := []string{}
	root.Walk(func(n *canvas.RenderNode) {
		if n.Placeholder != nil {
			ids = append(ids, n.ID)
		}
	})
	return ids
}

// checkExpect returns a failure message, or "" if the clause holds.
// A step error without an expected error is always a failure.
func checkExpect(exp *ExpectClause, ev TraceEvent, stepErr error) string {
	if exp == nil || exp.Error == "" {
		if stepErr != nil {
			return fmt.Sprintf("unexpected error: %v", stepErr)
		}
	}
	if exp == nil {
		return ""
	}
	if exp.Error != "" {
		if stepErr == nil {
			return fmt.Sprintf("expected error containing %q, got none", exp.Error)
		}
		if !strings.Contains(stepErr.Error(), exp.Error) {
			return fmt.Sprintf("expected error containing %q, got %q", exp.Error, stepErr.Error())
		}
		return ""
	}
	return matchState(exp, ev)
}

// matchState compares the set fields of exp against a trace event.
func matchState(exp *ExpectClause, ev TraceEvent) string {
	var problems []string
	check := func(field, want, got string) {
		if want != "" && want != got {
			problems = append(problems, fmt.Sprintf("%s = %q, want %q", field, got, want))
		}
	}
	check("path", exp.Path, ev.Path)
	check("route", exp.Route, ev.RoutePath)
	check("scene", exp.Scene, ev.SceneID)
	for _, k := range ir.SortedKeys(exp.Params) {
		check("params."+k, exp.Params[k], ev.Params[k])
	}
	for _, k := range ir.SortedKeys(exp.Query) {
		check("query."+k, exp.Query[k], ev.Query[k])
	}
	if exp.Changed != nil && *exp.Changed != ev.Changed {
		problems = append(problems, fmt.Sprintf("changed = %v, want %v", ev.Changed, *exp.Changed))
	}
	if exp.Unresolved && ev.RoutePath != "" {
		problems = append(problems, fmt.Sprintf("route = %q, want unresolved", ev.RoutePath))
	}
	slices.Sort(problems)
	return strings.Join(problems, "; ")
}
