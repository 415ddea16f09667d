package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scenekit/internal/canvas"
	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/router"
	"github.com/roach88/scenekit/internal/server"
)

// RenderResult is the render tree of the scene at one path.
type RenderResult struct {
	State  server.StateView   `json:"state"`
	Render *canvas.RenderNode `json:"render"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render <manifest> <path>",
		Short: "Render the scene at a path",
		Long: `Resolve a path against the route table and print the render tree.

Prefab references are expanded, styles composed and asset references
resolved. References that could not be expanded show as placeholders.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(rootOpts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runRender(opts *RootOptions, manifestPath, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadManifest(manifestPath)
	if err != nil {
		return formatter.LoadFailure(err)
	}

	c, err := canvas.New(loaded.Manifest,
		canvas.WithLogger(slog.Default()),
		canvas.WithLocation(router.NewMemoryLocation(path)))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	defer c.Close()

	st := c.State()
	if !st.Resolved() {
		return formatter.Fail(ExitFailure, ErrCodeRouteUnmatched, fmt.Sprintf("no route matches %q", path))
	}
	if err := c.Err(); err != nil {
		return formatter.Fail(ExitFailure, ErrCodeGeneric, err.Error())
	}

	result := RenderResult{State: server.ViewState(st), Render: c.Render()}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s -> %s (scene %s)\n", st.CurrentPath, st.RoutePath(), st.SceneID())
	writeTree(formatter.Writer, result.Render, 1)
	return nil
}

// writeTree prints one line per render node, indented by depth.
func writeTree(w io.Writer, n *canvas.RenderNode, depth int) {
	if n == nil {
		return
	}
	line := strings.Repeat("  ", depth) + n.Kind + " #" + n.ID
	if n.Content != "" {
		line += fmt.Sprintf(" %q", n.Content)
	}
	if n.Placeholder != nil {
		line += fmt.Sprintf(" [placeholder %s: %s]", n.Placeholder.Reason, n.Placeholder.ID)
	}
	for _, issue := range n.Issues {
		line += fmt.Sprintf(" [%s]", issue.Message)
	}
	fmt.Fprintln(w, line)
	for _, k := range ir.SortedKeys(map[string]any(n.Style)) {
		fmt.Fprintf(w, "%s  %s: %v\n", strings.Repeat("  ", depth), k, n.Style[k])
	}
	for _, child := range n.Children {
		writeTree(w, child, depth+1)
	}
}
