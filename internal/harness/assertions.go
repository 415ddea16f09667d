package harness

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/scenekit/internal/canvas"
	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %s -> %s (%s)\n", event.Seq, event.Step, event.Input, event.Path, event.SceneID)
		}
	}
	return buf.String()
}

// AssertionContext provides what assertions check beyond the trace.
type AssertionContext struct {
	Ctx      context.Context
	Store    *store.Store
	Canvas   *canvas.Canvas
	Manifest *ir.Manifest
	Session  string
}

// assertTraceContains checks that a step of the given kind ran, with the
// given input when one is set.
func assertTraceContains(trace []TraceEvent, a Assertion) error {
	for _, event := range trace {
		if event.Step == a.Step && (a.Input == "" || event.Input == a.Input) {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("step %s with input %q", a.Step, a.Input),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceCount checks that a step kind ran exactly Count times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Step == a.Step && (a.Input == "" || event.Input == a.Input) {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", a.Count, a.Step),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertSceneOrder checks that scenes were selected in the given order.
// Other scenes may appear in between.
func assertSceneOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Scenes) && event.SceneID == a.Scenes[next] {
			next++
		}
	}
	if next < len(a.Scenes) {
		return &AssertionError{
			Type:     AssertSceneOrder,
			Expected: fmt.Sprintf("scenes in order: %v", a.Scenes),
			Actual:   fmt.Sprintf("matched %d of %d, missing %s", next, len(a.Scenes), a.Scenes[next]),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks the state after the last step.
func assertFinalState(trace []TraceEvent, a Assertion) error {
	if len(trace) == 0 {
		return &AssertionError{Type: AssertFinalState, Expected: "at least one step", Actual: "empty trace"}
	}
	if msg := matchState(a.Expect, trace[len(trace)-1]); msg != "" {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: "final state to match",
			Actual:   msg,
			Trace:    trace,
		}
	}
	return nil
}

// assertNode checks a node of the final render tree.
func assertNode(render *canvas.RenderNode, a Assertion) error {
	n := render.Find(a.ID)
	if a.Absent {
		if n != nil {
			return &AssertionError{Type: AssertNode, Expected: fmt.Sprintf("no node %q", a.ID), Actual: "node rendered"}
		}
		return nil
	}
	if n == nil {
		return &AssertionError{Type: AssertNode, Expected: fmt.Sprintf("node %q", a.ID), Actual: "node not rendered"}
	}
	if a.Content != "" && n.Content != a.Content {
		return &AssertionError{
			Type:     AssertNode,
			Expected: fmt.Sprintf("node %q content %q", a.ID, a.Content),
			Actual:   fmt.Sprintf("content %q", n.Content),
		}
	}
	if a.Kind != "" && n.Kind != a.Kind {
		return &AssertionError{
			Type:     AssertNode,
			Expected: fmt.Sprintf("node %q kind %s", a.ID, a.Kind),
			Actual:   fmt.Sprintf("kind %s", n.Kind),
		}
	}
	return nil
}

// assertStyle checks one composed style property. A nil Value asserts the
// property is unset.
func assertStyle(render *canvas.RenderNode, a Assertion) error {
	n := render.Find(a.Node)
	if n == nil {
		return &AssertionError{Type: AssertStyle, Expected: fmt.Sprintf("node %q", a.Node), Actual: "node not rendered"}
	}
	got, ok := n.Style[a.Property]
	if a.Value == nil {
		if ok {
			return &AssertionError{
				Type:     AssertStyle,
				Expected: fmt.Sprintf("%s.%s unset", a.Node, a.Property),
				Actual:   fmt.Sprintf("%v", got),
			}
		}
		return nil
	}
	if !ok || !valuesEqual(got, a.Value) {
		return &AssertionError{
			Type:     AssertStyle,
			Expected: fmt.Sprintf("%s.%s = %v (type %T)", a.Node, a.Property, a.Value, a.Value),
			Actual:   fmt.Sprintf("%v (type %T)", got, got),
		}
	}
	return nil
}

// assertPlaceholder checks that a prefab reference rendered as a placeholder.
func assertPlaceholder(render *canvas.RenderNode, a Assertion) error {
	n := render.Find(a.ID)
	if n == nil || n.Placeholder == nil {
		return &AssertionError{Type: AssertPlaceholder, Expected: fmt.Sprintf("placeholder %q", a.ID), Actual: "no placeholder rendered"}
	}
	if a.Reason != "" && string(n.Placeholder.Reason) != a.Reason {
		return &AssertionError{
			Type:     AssertPlaceholder,
			Expected: fmt.Sprintf("reason %s", a.Reason),
			Actual:   fmt.Sprintf("reason %s", n.Placeholder.Reason),
		}
	}
	return nil
}

// assertJournalCount checks the number of journaled states.
func assertJournalCount(actx *AssertionContext, a Assertion) error {
	navs, err := actx.Store.ReadSession(actx.Ctx, actx.Session)
	if err != nil {
		return err
	}
	if len(navs) != a.Count {
		return &AssertionError{
			Type:     AssertJournalCount,
			Expected: fmt.Sprintf("%d journal rows", a.Count),
			Actual:   fmt.Sprintf("%d rows", len(navs)),
		}
	}
	return nil
}

// assertReplayClean replays the journal against the manifest.
func assertReplayClean(actx *AssertionContext) error {
	res, err := actx.Store.ReplaySession(actx.Ctx, actx.Session, actx.Manifest, nil)
	if err != nil {
		return err
	}
	if !res.OK() {
		first := res.Divergences[0]
		return &AssertionError{
			Type:     AssertReplayClean,
			Expected: "replay to reproduce every state",
			Actual:   fmt.Sprintf("%d divergences, first at seq %d (%s)", len(res.Divergences), first.Seq, first.Path),
		}
	}
	return nil
}

// valuesEqual compares a style value with a YAML-decoded expectation.
// YAML integers compare equal to float64 style values.
func valuesEqual(actual, expected any) bool {
	if a, ok := toFloat(actual); ok {
		if e, ok := toFloat(expected); ok {
			return a == e
		}
	}
	return reflect.DeepEqual(actual, expected)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, a := range assertions {
		var err error

		switch a.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, a)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertSceneOrder:
			err = assertSceneOrder(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result.Trace, a)
		case AssertNode:
			err = assertNode(result.Render, a)
		case AssertStyle:
			err = assertStyle(result.Render, a)
		case AssertPlaceholder:
			err = assertPlaceholder(result.Render, a)
		case AssertJournalCount, AssertReplayClean:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: %s requires a store", i, a.Type)
			} else if a.Type == AssertJournalCount {
				err = assertJournalCount(actx, a)
			} else {
				err = assertReplayClean(actx)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, a.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
