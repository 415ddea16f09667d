package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/scenekit/internal/ir"
)

// Journal appends every router state of one session to the store.
//
// Attach it to a router with Subscribe(j.Record) after calling Record once
// with the router's initial state, which routers do not announce.
type Journal struct {
	ctx     context.Context
	store   *Store
	session string
	clock   *Clock
	logger  *slog.Logger

	mu  sync.Mutex
	err error
}

// JournalOption configures a Journal.
type JournalOption func(*Journal)

// WithJournalLogger sets the logger used for write failures.
func WithJournalLogger(l *slog.Logger) JournalOption {
	return func(j *Journal) {
		j.logger = l
	}
}

// WithClock shares a clock with other writers. By default the journal
// resumes after the store's LastSeq.
func WithClock(c *Clock) JournalOption {
	return func(j *Journal) {
		j.clock = c
	}
}

// NewJournal opens a journal for session. ctx bounds every write made by
// Record.
func NewJournal(ctx context.Context, s *Store, session string, opts ...JournalOption) (*Journal, error) {
	j := &Journal{
		ctx:     ctx,
		store:   s,
		session: session,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.clock == nil {
		last, err := s.LastSeq(ctx)
		if err != nil {
			return nil, err
		}
		j.clock = NewClockAt(last)
	}
	return j, nil
}

// Session returns the journal's session name.
func (j *Journal) Session() string {
	return j.session
}

// Record writes one state. It has the router listener signature, so write
// failures are logged and kept for Err instead of returned.
func (j *Journal) Record(st ir.RouterState) {
	nav := NavigationFromState(j.session, j.clock.Next(), st)
	if _, err := j.store.WriteNavigation(j.ctx, nav); err != nil {
		j.logger.Error("journal write failed", "session", j.session, "path", nav.Path, "error", err)
		j.mu.Lock()
		if j.err == nil {
			j.err = err
		}
		j.mu.Unlock()
	}
}

// Err returns the first write failure, if any.
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}
