package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/scenekit/internal/store"
)

// openStore opens the database at path, creating missing directories, and
// returns a clock that continues after the highest stored sequence number.
func openStore(ctx context.Context, path string) (*store.Store, *store.Clock, error) {
	st, err := store.Open(path, store.WithMkdirAll())
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	last, err := st.LastSeq(ctx)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("read last seq: %w", err)
	}
	return st, store.NewClockAt(last), nil
}

// contextOf returns the command's context, or Background when it has none.
func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
