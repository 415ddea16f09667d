package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/scenekit/internal/canvas"
	"github.com/roach88/scenekit/internal/ir"
	"github.com/roach88/scenekit/internal/store"
)

// DefaultSession names the journal session when WithStore is given none.
const DefaultSession = "serve"

// Server serves one canvas.
type Server struct {
	mu      sync.Mutex
	canvas  *canvas.Canvas
	logger  *slog.Logger
	router  *chi.Mux
	hash    string
	store   *store.Store
	session string
	journal *store.Journal
	clock   *store.Clock

	stopJournal func()
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStore journals navigations under session and persists prefab
// instances in st.
func WithStore(st *store.Store, session string) Option {
	return func(s *Server) {
		s.store = st
		s.session = session
	}
}

// New builds a server for c. The canvas must not be used elsewhere while
// the server runs.
func New(ctx context.Context, c *canvas.Canvas, opts ...Option) (*Server, error) {
	s := &Server{
		canvas: c,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	hash, err := ir.ManifestHash(c.Manifest())
	if err != nil {
		return nil, fmt.Errorf("server: %w", err)
	}
	s.hash = hash

	if s.store != nil {
		if s.session == "" {
			s.session = DefaultSession
		}
		last, err := s.store.LastSeq(ctx)
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.clock = store.NewClockAt(last)
		s.journal, err = store.NewJournal(ctx, s.store, s.session,
			store.WithClock(s.clock),
			store.WithJournalLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.journal.Record(c.State())
		s.stopJournal = c.Router().Subscribe(s.journal.Record)
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.serialize)

	r.Get("/healthz", s.handleHealth)
	r.Get("/routes", s.handleRoutes)
	r.Get("/state", s.handleState)
	r.Get("/render/*", s.handleRender)
	r.Get("/assets/{id}", s.handleAsset)
	r.Post("/prefabs/{id}/instances", s.handleCreateInstance)
	r.Route("/instances/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetInstance)
		r.Patch("/", s.handleUpdateInstance)
		r.Delete("/", s.handleDeleteInstance)
	})
	s.router = r
}

// serialize holds the server mutex for the whole request and logs it.
func (s *Server) serialize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request served",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"request_id", middleware.GetReqID(r.Context()),
			"duration", time.Since(start))
	})
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close stops journaling. It does not close the store.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopJournal != nil {
		s.stopJournal()
		s.stopJournal = nil
	}
	if s.journal != nil {
		return s.journal.Err()
	}
	return nil
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server listening", "addr", addr, "manifest", s.canvas.Manifest().ID)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("preview server stopping")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: shutdown: %w", err)
		}
		return nil
	}
}
