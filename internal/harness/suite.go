package harness

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// SuiteResult summarises a batch of scenario runs.
type SuiteResult struct {
	Total    int            `json:"total"`
	Passed   int            `json:"passed"`
	Failed   int            `json:"failed"`
	Failures []SuiteFailure `json:"failures,omitempty"`
}

// SuiteFailure is one scenario that failed to load, run or pass.
type SuiteFailure struct {
	ScenarioPath string `json:"scenario_path"`
	Error        string `json:"error"`
}

// OK reports whether every scenario passed.
func (r *SuiteResult) OK() bool {
	return r.Failed == 0
}

func (r *SuiteResult) fail(path, msg string) {
	r.Failed++
	r.Failures = append(r.Failures, SuiteFailure{ScenarioPath: path, Error: msg})
}

// FindScenarios returns every .yaml/.yml file under dir, sorted.
func FindScenarios(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find scenarios in %s: %w", dir, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// RunSuite loads and runs each scenario file.
//
// A scenario that fails to load or execute counts as failed; the suite
// keeps going.
func RunSuite(paths []string) *SuiteResult {
	result := &SuiteResult{}

	for _, path := range paths {
		result.Total++

		scenario, err := LoadScenario(path)
		if err != nil {
			result.fail(path, fmt.Sprintf("failed to load scenario: %v", err))
			continue
		}

		runResult, err := Run(scenario)
		if err != nil {
			result.fail(path, fmt.Sprintf("scenario execution failed: %v", err))
			continue
		}

		if !runResult.Pass {
			result.fail(path, fmt.Sprintf("scenario assertions failed: %v", runResult.Errors))
			continue
		}

		result.Passed++
	}

	return result
}
