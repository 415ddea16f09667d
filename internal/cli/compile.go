package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/scenekit/internal/compiler"
	"github.com/roach88/scenekit/internal/ir"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
	DB     string // store the compiled manifest in this database
}

// CompilationResult summarises a compiled manifest.
type CompilationResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Version  string `json:"version,omitempty"`
	Hash     string `json:"hash"`
	Routes   int    `json:"routes"`
	Scenes   int    `json:"scenes"`
	Assets   int    `json:"assets"`
	Prefabs  int    `json:"prefabs"`
	Output   string `json:"output,omitempty"`
	Inserted bool   `json:"inserted,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <manifest>",
		Short: "Compile a manifest to canonical JSON",
		Long: `Compile a CUE, YAML or JSON manifest to canonical JSON.

The manifest is validated first. The canonical form is written to --output,
or to stdout when no output file is given. With --db the compiled manifest
is also stored under its content hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database to store the manifest in")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := LoadManifest(path)
	if err != nil {
		return formatter.LoadFailure(err)
	}
	m := loaded.Manifest

	if errs := compiler.Validate(m); len(errs) > 0 {
		return outputValidationErrors(formatter, ValidationResult{Errors: errs})
	}

	canonical, err := ir.MarshalCanonical(m)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("marshal manifest: %v", err))
	}

	result := CompilationResult{
		ID:      m.ID,
		Name:    m.Name,
		Version: m.Version,
		Hash:    loaded.Hash,
		Routes:  len(m.Routes),
		Scenes:  len(m.Scenes),
		Assets:  len(m.Assets),
		Prefabs: len(m.Prefabs),
		Output:  opts.Output,
	}

	if opts.DB != "" {
		st, clock, err := openStore(contextOf(cmd), opts.DB)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
		defer st.Close()

		_, inserted, err := st.WriteManifest(contextOf(cmd), m, clock.Next())
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
		result.Inserted = inserted
		formatter.VerboseLog("Stored manifest %s in %s (new: %v)", loaded.Hash, opts.DB, inserted)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, canonical, 0o644); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Sprintf("writing output: %v", err))
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}
	if opts.Output == "" {
		fmt.Fprintln(formatter.Writer, string(canonical))
		return nil
	}

	fmt.Fprintf(formatter.Writer, "✓ Compiled %s (%s)\n", m.ID, loaded.Hash[:12])
	fmt.Fprintf(formatter.Writer, "  %d route(s), %d scene(s), %d asset(s), %d prefab(s)\n",
		result.Routes, result.Scenes, result.Assets, result.Prefabs)
	fmt.Fprintf(formatter.Writer, "  written to %s\n", opts.Output)
	return nil
}
