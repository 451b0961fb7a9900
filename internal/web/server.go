// Package web exposes decks, statistics and the active study session over a
// JSON HTTP API.
package web

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/conorfennell/flashdeck/internal/deck"
	"github.com/conorfennell/flashdeck/internal/importer"
	"github.com/conorfennell/flashdeck/internal/stats"
	"github.com/conorfennell/flashdeck/internal/storage"
	"github.com/conorfennell/flashdeck/internal/study"
)

// Server holds the dependencies for the HTTP server.
type Server struct {
	router    chi.Router
	decks     *deck.Service
	store     *storage.Decks
	stats     *stats.Recorder
	importer  *importer.Importer
	studyOpts []study.Option
	logger    *slog.Logger

	mu      sync.Mutex
	session *study.Runner // nil when no session is active
}

// NewServer creates and configures a new server. imp may be nil, in which
// case the import endpoint is not registered.
func NewServer(store *storage.Decks, recorder *stats.Recorder, imp *importer.Importer, logger *slog.Logger, opts ...study.Option) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		decks:     deck.NewService(store),
		store:     store,
		stats:     recorder,
		importer:  imp,
		studyOpts: opts,
		logger:    logger.With("component", "web"),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", s.handleListCategories)
		r.Get("/stats", s.handleGetStats)

		r.Route("/decks", func(r chi.Router) {
			r.Get("/", s.handleListDecks)
			r.Post("/", s.handleCreateDeck)
			r.Route("/{deckID}", func(r chi.Router) {
				r.Get("/", s.handleGetDeck)
				r.Put("/", s.handleUpdateDeck)
				r.Delete("/", s.handleDeleteDeck)
				r.Post("/cards", s.handleAddCard)
				r.Put("/cards/{cardID}", s.handleUpdateCard)
				r.Delete("/cards/{cardID}", s.handleRemoveCard)
			})
		})

		r.Route("/study", func(r chi.Router) {
			r.Get("/", s.handleGetSession)
			r.Delete("/", s.handleAbandonSession)
			r.Post("/reveal", s.handleReveal)
			r.Post("/answer", s.handleAnswer)
			r.Post("/restart", s.handleRestart)
			r.Post("/{deckID}", s.handleStartSession)
		})

		if s.importer != nil {
			r.Post("/import", s.handleImport)
		}
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ListenAndServe runs the server on addr until ctx is cancelled, then shuts
// down gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "address", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
