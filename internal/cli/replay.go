package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/scenekit/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions   []store.ReplayResult `json:"sessions"`
	Total      int                  `json:"total"`
	Reproduced bool                 `json:"reproduced"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <manifest>",
		Short: "Replay journaled navigations against a manifest",
		Long: `Re-run journaled navigation sessions through a fresh router built from
the manifest and report every step whose state differs from the recorded one.

Exit codes:
  0 - Every session reproduced its recorded states
  1 - At least one step diverged
  2 - Command error (database not found, etc.)

Examples:
  scenekit replay site.cue --db ./scenekit.db
  scenekit replay site.cue --db ./scenekit.db --session cli
  scenekit replay site.cue --db ./scenekit.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, manifestPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := contextOf(cmd)

	loaded, err := LoadManifest(manifestPath)
	if err != nil {
		return formatter.LoadFailure(err)
	}

	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database))
	}
	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
	}
	defer st.Close()

	sessions := []string{opts.Session}
	if opts.Session == "" {
		sessions, err = st.ListSessions(ctx)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
	}

	result := ReplayResult{Reproduced: true}
	for _, session := range sessions {
		formatter.VerboseLog("Replaying session %s", session)
		r, err := st.ReplaySession(ctx, session, loaded.Manifest, slog.Default())
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
		if r.Steps == 0 && opts.Session != "" {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("session %q has no journaled navigations", session))
		}
		result.Sessions = append(result.Sessions, r)
		if !r.OK() {
			result.Reproduced = false
		}
	}
	result.Total = len(result.Sessions)

	if formatter.JSON() {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputReplayText(formatter, result)
	}

	if !result.Reproduced {
		return NewExitError(ExitFailure, fmt.Sprintf("%s: replay diverged from the journal", ErrCodeReplay))
	}
	return nil
}

func outputReplayText(formatter *OutputFormatter, result ReplayResult) {
	if result.Total == 0 {
		fmt.Fprintln(formatter.Writer, "No sessions journaled")
		return
	}
	for _, r := range result.Sessions {
		if r.OK() {
			fmt.Fprintf(formatter.Writer, "✓ %s: %d step(s) reproduced\n", r.Session, r.Steps)
			continue
		}
		fmt.Fprintf(formatter.Writer, "✗ %s: %d of %d step(s) diverged\n", r.Session, len(r.Divergences), r.Steps)
		for _, d := range r.Divergences {
			fmt.Fprintf(formatter.Writer, "  seq %d %s\n", d.Seq, d.Path)
			fmt.Fprintf(formatter.Writer, "    recorded: %v\n", d.Recorded)
			fmt.Fprintf(formatter.Writer, "    replayed: %v\n", d.Replayed)
		}
	}
}
