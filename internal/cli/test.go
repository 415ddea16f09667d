package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scenekit/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run scenario harness",
		Long: `Run YAML scenarios against their manifests.

Each scenario drives a canvas through navigate, route, back, forward and
instantiate steps, checks expect clauses and evaluates assertions. When a
golden trace exists in the golden directory next to the scenarios
directory, the trace must match it.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  scenekit test ./testdata/scenarios
  scenekit test ./testdata/scenarios --filter "blog_*"
  scenekit test ./testdata/scenarios --update
  scenekit test ./testdata/scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	if _, err := os.Stat(scenariosDir); os.IsNotExist(err) {
		return NewExitError(ExitCommandError, fmt.Sprintf("scenarios directory not found: %s", scenariosDir))
	}

	scenarioFiles, err := findScenarioFiles(scenariosDir, opts.Filter)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find scenarios", err)
	}

	if len(scenarioFiles) == 0 {
		if opts.Format == "json" {
			return outputTestJSON(cmd, TestResult{
				Scenarios: []ScenarioResult{},
				Total:     0,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No scenarios found.")
		return nil
	}

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(scenarioFiles)),
		Total:     len(scenarioFiles),
	}

	goldenDir := filepath.Join(filepath.Dir(filepath.Clean(scenariosDir)), "golden")
	for _, scenarioFile := range scenarioFiles {
		scenResult := runScenario(scenarioFile, goldenDir, opts, cmd.OutOrStdout())
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		return outputTestJSON(cmd, result)
	}
	return outputTestText(cmd, result)
}

// findScenarioFiles finds all YAML scenario files in a directory whose base
// name matches filter.
func findScenarioFiles(dir string, filter string) ([]string, error) {
	all, err := harness.FindScenarios(dir)
	if err != nil {
		return nil, err
	}
	if filter == "" {
		return all, nil
	}

	var files []string
	for _, path := range all {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		matched, err := filepath.Match(filter, name)
		if err != nil {
			return nil, fmt.Errorf("invalid filter pattern: %w", err)
		}
		if matched {
			files = append(files, path)
		}
	}
	return files, nil
}

// runScenario executes a single scenario and returns the result.
func runScenario(scenarioFile, goldenDir string, opts *TestOptions, w io.Writer) ScenarioResult {
	text := opts.Format != "json"
	fail := func(name string, errs ...string) ScenarioResult {
		if text {
			fmt.Fprintf(w, "✗ %s\n", name)
			for _, e := range errs {
				fmt.Fprintf(w, "  %s\n", e)
			}
		}
		return ScenarioResult{Name: name, Pass: false, Errors: errs}
	}

	scenario, err := harness.LoadScenario(scenarioFile)
	if err != nil {
		return fail(filepath.Base(scenarioFile), fmt.Sprintf("failed to load scenario: %v", err))
	}

	result, err := harness.Run(scenario)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("execution failed: %v", err))
	}

	trace, err := harness.MarshalTrace(scenario.Name, result.Trace)
	if err != nil {
		return fail(scenario.Name, fmt.Sprintf("failed to marshal trace: %v", err))
	}
	base := filepath.Base(scenarioFile)
	goldenPath := filepath.Join(goldenDir, strings.TrimSuffix(base, filepath.Ext(base))+".golden")

	if opts.Update {
		if err := os.MkdirAll(goldenDir, 0o755); err != nil {
			return fail(scenario.Name, fmt.Sprintf("failed to create golden directory: %v", err))
		}
		if err := os.WriteFile(goldenPath, trace, 0o644); err != nil {
			return fail(scenario.Name, fmt.Sprintf("failed to update golden file: %v", err))
		}
		if !result.Pass {
			return fail(scenario.Name, result.Errors...)
		}
		if text {
			fmt.Fprintf(w, "✓ %s (golden updated)\n", scenario.Name)
		}
		return ScenarioResult{Name: scenario.Name, Pass: true}
	}

	errs := result.Errors
	// Without a golden file the assertions are the only check.
	if want, err := os.ReadFile(goldenPath); err == nil {
		if !bytes.Equal(bytes.TrimSpace(want), trace) {
			errs = append(errs, "trace does not match golden file (run with --update to regenerate)")
		}
	} else if !os.IsNotExist(err) {
		errs = append(errs, fmt.Sprintf("golden comparison failed: %v", err))
	}

	if len(errs) > 0 {
		return fail(scenario.Name, errs...)
	}
	if text {
		fmt.Fprintf(w, "✓ %s\n", scenario.Name)
	}
	return ScenarioResult{Name: scenario.Name, Pass: true}
}

// outputTestJSON outputs test results in JSON format.
func outputTestJSON(cmd *cobra.Command, result TestResult) error {
	response := CLIResponse{Status: "ok", Data: result}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeTestFailed,
			Message: fmt.Sprintf("%d of %d scenario(s) failed", result.Failed, result.Total),
		}
	}
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputTestText outputs the summary line after the per-scenario lines.
func outputTestText(cmd *cobra.Command, result TestResult) error {
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}
