package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/scenekit/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Hash     string                     `json:"hash,omitempty"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.CycleWarning    `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <manifest>",
		Short: "Validate a manifest",
		Long: `Validate a scene manifest without rendering it.

Checks ids, route patterns, scene and prefab references, asset shapes and
parameter expressions. Prefab and asset reference cycles are reported as
warnings: the canvas renders placeholders for them instead of failing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadManifest(path)
	if err != nil {
		return formatter.LoadFailure(err)
	}
	formatter.VerboseLog("Loaded %s manifest %q from %s", loaded.Format, loaded.Manifest.ID, path)

	result := ValidationResult{
		Hash:   loaded.Hash,
		Errors: compiler.Validate(loaded.Manifest),
	}
	result.Warnings = append(result.Warnings, compiler.AnalyzePrefabCycles(loaded.Manifest)...)
	result.Warnings = append(result.Warnings, compiler.AnalyzeAssetCycles(loaded.Manifest)...)
	result.Valid = len(result.Errors) == 0

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, "✓ Manifest valid")
	printWarnings(formatter, result.Warnings)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	errs := result.Errors
	if formatter.JSON() {
		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n", err.Code, err.Field, err.Message)
	}
	printWarnings(formatter, result.Warnings)

	// Validation failures = exit code 1 (test/validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

func printWarnings(formatter *OutputFormatter, warnings []compiler.CycleWarning) {
	for _, w := range warnings {
		fmt.Fprintf(formatter.Writer, "  warning: %s\n", w.Message)
	}
}
