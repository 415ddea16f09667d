package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/scenekit/internal/canvas"
	"github.com/roach88/scenekit/internal/server"
	"github.com/roach88/scenekit/internal/store"
)

// DefaultSession names the journal session when --session is not given.
const DefaultSession = "cli"

// NavigateOptions holds flags for the navigate command.
type NavigateOptions struct {
	*RootOptions
	DB      string
	Session string
}

// NavigationStep is the state after one navigation.
type NavigationStep struct {
	Input   string           `json:"input"`
	Changed bool             `json:"changed"`
	State   server.StateView `json:"state"`
}

// NavigateResult lists the initial state and every navigation after it.
type NavigateResult struct {
	Session string           `json:"session,omitempty"`
	Initial server.StateView `json:"initial"`
	Steps   []NavigationStep `json:"steps"`
}

// Journaled counts the rows a journal holds for this run: the initial
// state plus one per changed navigation.
func (r NavigateResult) Journaled() int {
	n := 1
	for _, step := range r.Steps {
		if step.Changed {
			n++
		}
	}
	return n
}

// NewNavigateCommand creates the navigate command.
func NewNavigateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NavigateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "navigate <manifest> <path>...",
		Short: "Navigate through a sequence of paths",
		Long: `Start a router at the manifest's default route and navigate to each
path in turn, printing the resulting state.

A navigation that resolves to the current state is a no-op and is reported
as unchanged. With --db the initial state and every change are journaled
under --session for later replay.`,
		Args:          cobra.MinimumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runNavigate(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database to journal navigations in")
	cmd.Flags().StringVar(&opts.Session, "session", DefaultSession, "journal session name")

	return cmd
}

func runNavigate(opts *NavigateOptions, manifestPath string, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := LoadManifest(manifestPath)
	if err != nil {
		return formatter.LoadFailure(err)
	}

	c, err := canvas.New(loaded.Manifest, canvas.WithLogger(slog.Default()))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	defer c.Close()

	result := NavigateResult{
		Initial: server.ViewState(c.State()),
		Steps:   make([]NavigationStep, 0, len(paths)),
	}

	var journal *store.Journal
	if opts.DB != "" {
		ctx := contextOf(cmd)
		st, clock, err := openStore(ctx, opts.DB)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
		defer st.Close()

		journal, err = store.NewJournal(ctx, st, opts.Session,
			store.WithClock(clock),
			store.WithJournalLogger(slog.Default()))
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
		journal.Record(c.State())
		stop := c.Router().Subscribe(journal.Record)
		defer stop()
		result.Session = opts.Session
	}

	for _, p := range paths {
		changed := c.Navigate(p)
		result.Steps = append(result.Steps, NavigationStep{
			Input:   p,
			Changed: changed,
			State:   server.ViewState(c.State()),
		})
		formatter.VerboseLog("navigate %s: changed=%v", p, changed)
	}

	if journal != nil {
		if err := journal.Err(); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeStoreFailed, err.Error())
		}
	}

	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "  start %s\n", describeState(result.Initial))
	for _, step := range result.Steps {
		mark := "✓"
		if step.State.SceneID == "" {
			mark = "✗"
		}
		suffix := ""
		if !step.Changed {
			suffix = " (unchanged)"
		}
		fmt.Fprintf(formatter.Writer, "%s %s -> %s%s\n", mark, step.Input, describeState(step.State), suffix)
	}
	if result.Session != "" {
		fmt.Fprintf(formatter.Writer, "journaled %d state(s) under session %q\n", result.Journaled(), result.Session)
	}
	return nil
}

func describeState(v server.StateView) string {
	if v.RoutePath == "" {
		return fmt.Sprintf("%q unresolved", v.Path)
	}
	s := fmt.Sprintf("%s scene=%s", v.RoutePath, v.SceneID)
	if len(v.Params) > 0 {
		s += fmt.Sprintf(" params=%v", v.Params)
	}
	if len(v.Query) > 0 {
		s += fmt.Sprintf(" query=%v", v.Query)
	}
	return s
}
