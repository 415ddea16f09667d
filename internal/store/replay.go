package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/router"
)

// Divergence is a journal row whose replayed state differs from the
// recorded one.
type Divergence struct {
	Seq      int64          `json:"seq"`
	Path     string         `json:"path"`
	Recorded map[string]any `json:"recorded"`
	Replayed map[string]any `json:"replayed"`
}

// ReplayResult summarises a session replay.
type ReplayResult struct {
	Session     string       `json:"session"`
	Steps       int          `json:"steps"`
	Divergences []Divergence `json:"divergences"`
}

// OK reports whether every step reproduced its recorded state.
func (r ReplayResult) OK() bool {
	return len(r.Divergences) == 0
}

// ReplaySession re-runs a session's journal through a fresh router built
// from m and reports every step whose state differs from the recorded one.
//
// Rows with an empty path stand for the unresolved state a router starts in
// and are compared against the fresh router's initial state.
func (s *Store) ReplaySession(ctx context.Context, session string, m *ir.Manifest, logger *slog.Logger) (ReplayResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	navs, err := s.ReadSession(ctx, session)
	if err != nil {
		return ReplayResult{}, fmt.Errorf("replay session %q: %w", session, err)
	}

	r := router.New(m.Routes, m.Scenes, router.WithLogger(logger))
	defer r.Close()
	initial := r.State()

	result := ReplayResult{Session: session, Divergences: []Divergence{}}
	for _, nav := range navs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		var st ir.RouterState
		if nav.Path == "" {
			st = initial
		} else {
			r.Navigate(fullPath(nav))
			st = r.State()
		}
		result.Steps++

		recorded, err := ir.ComparableHash(nav.Comparable())
		if err != nil {
			return result, fmt.Errorf("replay session %q: %w", session, err)
		}
		replayed, err := ir.StateHash(st)
		if err != nil {
			return result, fmt.Errorf("replay session %q: %w", session, err)
		}
		if recorded != replayed {
			logger.Debug("replay divergence", "session", session, "seq", nav.Seq, "path", nav.Path)
			result.Divergences = append(result.Divergences, Divergence{
				Seq:      nav.Seq,
				Path:     nav.Path,
				Recorded: nav.Comparable(),
				Replayed: st.Comparable(),
			})
		}
	}
	return result, nil
}

// fullPath rebuilds the navigated path with its query string.
func fullPath(nav Navigation) string {
	if len(nav.Query) == 0 {
		return nav.Path
	}
	values := url.Values{}
	for k, v := range nav.Query {
		values.Set(k, v)
	}
	return nav.Path + "?" + values.Encode()
}
