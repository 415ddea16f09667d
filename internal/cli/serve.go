package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/scenekit/internal/canvas"
	"github.com/roach88/scenekit/internal/server"
	"github.com/roach88/scenekit/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr    string
	DB      string
	Session string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve <manifest>",
		Short: "Serve a manifest over HTTP",
		Long: `Start the preview server for a manifest.

Routes:
  GET    /healthz                  manifest id and hash
  GET    /routes                   route table
  GET    /state                    current router state
  GET    /render/*                 navigate, then render the scene
  GET    /assets/{id}              resolved asset value
  POST   /prefabs/{id}/instances   instantiate a prefab
  GET    /instances/{id}           read an instance
  PATCH  /instances/{id}           update instance parameters
  DELETE /instances/{id}           remove an instance

With --db every navigation is journaled under --session and instances are
persisted. The server stops on SIGINT or SIGTERM.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "127.0.0.1:8080", "listen address")
	cmd.Flags().StringVar(&opts.DB, "db", "", "SQLite database for the journal and instances")
	cmd.Flags().StringVar(&opts.Session, "session", server.DefaultSession, "journal session name")

	return cmd
}

func runServe(opts *ServeOptions, manifestPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := LoadManifest(manifestPath)
	if err != nil {
		return formatter.LoadFailure(err)
	}

	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, closeAll, err := buildServer(ctx, opts, loaded)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error())
	}
	defer closeAll()

	if !formatter.JSON() {
		fmt.Fprintf(formatter.Writer, "✓ Serving %s on http://%s\n", loaded.Manifest.ID, opts.Addr)
	}
	if err := srv.ListenAndServe(ctx, opts.Addr); err != nil {
		return WrapExitError(ExitCommandError, "server failed", err)
	}
	if err := srv.Close(); err != nil {
		return WrapExitError(ExitCommandError, "journal failed", err)
	}
	return nil
}

// buildServer wires a canvas, and optionally a store, into a server. The
// returned func releases the canvas and store.
func buildServer(ctx context.Context, opts *ServeOptions, loaded *LoadResult) (*server.Server, func(), error) {
	logger := slog.Default()

	c, err := canvas.New(loaded.Manifest, canvas.WithLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	serverOpts := []server.Option{server.WithLogger(logger)}
	var st *store.Store
	if opts.DB != "" {
		var clock *store.Clock
		st, clock, err = openStore(ctx, opts.DB)
		if err != nil {
			c.Close()
			return nil, nil, err
		}
		if _, _, err := st.WriteManifest(ctx, loaded.Manifest, clock.Next()); err != nil {
			logger.Warn("manifest not stored", "hash", loaded.Hash, "error", err)
		}
		serverOpts = append(serverOpts, server.WithStore(st, opts.Session))
	}

	srv, err := server.New(ctx, c, serverOpts...)
	if err != nil {
		c.Close()
		if st != nil {
			st.Close()
		}
		return nil, nil, err
	}

	return srv, func() {
		c.Close()
		if st != nil {
			st.Close()
		}
	}, nil
}
