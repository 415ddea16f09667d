package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/scenekit/internal/ir"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// All fields use canonical JSON serialization for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any for canonical JSON serialization.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"seq":          event.Seq,
			"step":         event.Step,
			"changed":      event.Changed,
			"path":         event.Path,
			"routePath":    event.RoutePath,
			"sceneId":      event.SceneID,
			"params":       stringMap(event.Params),
			"query":        stringMap(event.Query),
			"nodes":        event.Nodes,
			"placeholders": stringList(event.Placeholders),
		}
		if event.Input != "" {
			eventMap["input"] = event.Input
		}
		if event.Instance != "" {
			eventMap["instance"] = event.Instance
		}
		traceList[i] = eventMap
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
	}
}

func stringMap(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func stringList(s []string) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

// MarshalTrace renders a trace as canonical JSON.
func MarshalTrace(scenarioName string, trace []TraceEvent) ([]byte, error) {
	snapshot := TraceSnapshot{ScenarioName: scenarioName, Trace: trace}
	return ir.MarshalCanonical(snapshot.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares the given result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := MarshalTrace(scenarioName, result.Trace)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
