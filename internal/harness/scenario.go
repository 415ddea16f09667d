package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario drives a canvas through a sequence of steps and checks the result.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the journal
	// session and the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Manifest is the path of the manifest to load (.cue, .yaml or .json).
	// Relative paths are resolved against the scenario file's directory.
	Manifest string `yaml:"manifest"`

	// Start is the initial host location. When empty the manifest's
	// defaultRoute applies.
	Start string `yaml:"start,omitempty"`

	// Steps are executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace, render and journal.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is exactly one of navigate, route, back, forward or instantiate.
type Step struct {
	Navigate string `yaml:"navigate,omitempty"`

	// Route navigates by route id, with Params filling the pattern.
	Route string `yaml:"route,omitempty"`

	Back    bool `yaml:"back,omitempty"`
	Forward bool `yaml:"forward,omitempty"`

	// Instantiate names a prefab. Variant, ID, Parameters and Parent
	// configure the instance.
	Instantiate string         `yaml:"instantiate,omitempty"`
	Variant     string         `yaml:"variant,omitempty"`
	ID          string         `yaml:"id,omitempty"`
	Parameters  map[string]any `yaml:"parameters,omitempty"`
	Parent      string         `yaml:"parent,omitempty"`

	Params map[string]string `yaml:"params,omitempty"`

	// Expect is checked against the state after the step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// Kind returns the step kind, or "" if the step names none or several.
func (s Step) Kind() string {
	var kinds []string
	if s.Navigate != "" {
		kinds = append(kinds, StepNavigate)
	}
	if s.Route != "" {
		kinds = append(kinds, StepRoute)
	}
	if s.Back {
		kinds = append(kinds, StepBack)
	}
	if s.Forward {
		kinds = append(kinds, StepForward)
	}
	if s.Instantiate != "" {
		kinds = append(kinds, StepInstantiate)
	}
	if len(kinds) != 1 {
		return ""
	}
	return kinds[0]
}

// ExpectClause is a subset match on the state after a step.
type ExpectClause struct {
	Path    string            `yaml:"path,omitempty"`
	Route   string            `yaml:"route,omitempty"`
	Scene   string            `yaml:"scene,omitempty"`
	Params  map[string]string `yaml:"params,omitempty"`
	Query   map[string]string `yaml:"query,omitempty"`
	Changed *bool             `yaml:"changed,omitempty"`

	// Unresolved expects no route to match.
	Unresolved bool `yaml:"unresolved,omitempty"`

	// Error expects the step to fail with a message containing this text.
	Error string `yaml:"error,omitempty"`
}

// Assertion validates the outcome of a run.
type Assertion struct {
	// Type selects the check; see the Assert* constants.
	Type string `yaml:"type"`

	// Step and Input are used by trace_contains and trace_count.
	Step  string `yaml:"step,omitempty"`
	Input string `yaml:"input,omitempty"`

	// Count is used by trace_count and journal_count.
	Count int `yaml:"count,omitempty"`

	// Scenes is used by scene_order.
	Scenes []string `yaml:"scenes,omitempty"`

	// Expect is used by final_state.
	Expect *ExpectClause `yaml:"expect,omitempty"`

	// ID, Content and Kind are used by node; ID and Reason by placeholder.
	ID      string `yaml:"id,omitempty"`
	Content string `yaml:"content,omitempty"`
	Kind    string `yaml:"kind,omitempty"`
	Reason  string `yaml:"reason,omitempty"`

	// Node, Property and Value are used by style.
	Node     string `yaml:"node,omitempty"`
	Property string `yaml:"property,omitempty"`
	Value    any    `yaml:"value,omitempty"`

	// Absent inverts node: the node must not be rendered.
	Absent bool `yaml:"absent,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceCount    = "trace_count"
	AssertSceneOrder    = "scene_order"
	AssertFinalState    = "final_state"
	AssertNode          = "node"
	AssertStyle         = "style"
	AssertPlaceholder   = "placeholder"
	AssertJournalCount  = "journal_count"
	AssertReplayClean   = "replay_clean"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// The manifest path is resolved against the scenario's directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the manifest path relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, basePath)
}

// ParseScenario parses scenario YAML. Unknown fields are rejected.
func ParseScenario(data []byte, basePath string) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Manifest != "" && !filepath.IsAbs(scenario.Manifest) && basePath != "" {
		scenario.Manifest = filepath.Join(basePath, scenario.Manifest)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Manifest == "" {
		return fmt.Errorf("manifest is required")
	}
	if _, err := os.Stat(s.Manifest); os.IsNotExist(err) {
		return fmt.Errorf("manifest file not found: %s", s.Manifest)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if step.Kind() == "" {
			return fmt.Errorf("steps[%d]: exactly one of navigate, route, back, forward or instantiate is required", i)
		}
		if step.Parent != "" && step.Instantiate == "" {
			return fmt.Errorf("steps[%d]: parent only applies to instantiate", i)
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for trace_contains", index)
		}
	case AssertTraceCount:
		if a.Step == "" {
			return fmt.Errorf("assertions[%d]: step is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertSceneOrder:
		if len(a.Scenes) == 0 {
			return fmt.Errorf("assertions[%d]: scenes list is required for scene_order", index)
		}
	case AssertFinalState:
		if a.Expect == nil {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	case AssertNode:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for node", index)
		}
	case AssertStyle:
		if a.Node == "" || a.Property == "" {
			return fmt.Errorf("assertions[%d]: node and property are required for style", index)
		}
	case AssertPlaceholder:
		if a.ID == "" {
			return fmt.Errorf("assertions[%d]: id is required for placeholder", index)
		}
	case AssertJournalCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for journal_count", index)
		}
	case AssertReplayClean:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
