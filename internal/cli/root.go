package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// LogLevelEnv is consulted when --log-level is not given.
const LogLevelEnv = "SCENEKIT_LOG_LEVEL"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string // "debug" | "info" | "warn" | "error"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the scenekit CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "scenekit",
		Short: "scenekit - manifest-driven scene engine",
		Long:  "Compile, validate, render and serve scene manifests: routes, scenes, prefabs and assets.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if !cmd.Flags().Changed("log-level") {
				if env := os.Getenv(LogLevelEnv); env != "" {
					opts.LogLevel = env
				}
			}
			return configureLogging(opts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewRoutesCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))
	cmd.AddCommand(NewNavigateCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewInstantiateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// configureLogging installs the default logger on stderr. JSON output gets
// JSON logs so both streams stay machine readable.
func configureLogging(opts *RootOptions, cmd *cobra.Command) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(opts.LogLevel))); err != nil {
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", opts.LogLevel)
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.Format == "json" {
		handler = slog.NewJSONHandler(cmd.ErrOrStderr(), handlerOpts)
	} else {
		handler = slog.NewTextHandler(cmd.ErrOrStderr(), handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
