package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/scenekit/internal/router"
)

// RoutesResult lists a manifest's flattened route table.
type RoutesResult struct {
	DefaultRoute string         `json:"defaultRoute,omitempty"`
	Routes       []router.Entry `json:"routes"`
}

// NewRoutesCommand creates the routes command.
func NewRoutesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes <manifest>",
		Short: "List the route table",
		Long: `List every route of a manifest in match order.

Nested routes are shown with their full path. Matching checks a parent
before its children, in declaration order.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoutes(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runRoutes(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := LoadManifest(path)
	if err != nil {
		return formatter.LoadFailure(err)
	}

	result := RoutesResult{
		DefaultRoute: loaded.Manifest.DefaultRoute,
		Routes:       router.Flatten(loaded.Manifest.Routes),
	}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	for _, e := range result.Routes {
		indent := strings.Repeat("  ", e.Depth)
		marker := " "
		if e.Path == result.DefaultRoute {
			marker = "*"
		}
		fmt.Fprintf(formatter.Writer, "%s %s%-16s %-24s -> %s\n", marker, indent, e.ID, e.Path, e.SceneID)
	}
	return nil
}
