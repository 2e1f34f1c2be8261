// Package server provides the HTTP API for tuvan.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/tuvan/internal/aggregate"
	"github.com/hyperjump/tuvan/internal/analyzer"
	"github.com/hyperjump/tuvan/internal/config"
	"github.com/hyperjump/tuvan/internal/keyword"
	"github.com/hyperjump/tuvan/internal/storage"
	"go.uber.org/zap"
)

// Server is the HTTP server for the tuvan API.
type Server struct {
	analyzer *analyzer.Analyzer
	storage  storage.Storage
	index    keyword.SuggestionIndex
	report   aggregate.Options
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a server with the given dependencies. index may be nil, in which
// case search answers 501.
func NewServer(
	a *analyzer.Analyzer,
	store storage.Storage,
	index keyword.SuggestionIndex,
	reportOpts aggregate.Options,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		analyzer: a,
		storage:  store,
		index:    index,
		report:   reportOpts,
		config:   cfg,
		logger:   logger,
	}
}

// Router builds the chi router with every route and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/analyze/text", s.handleAnalyzeText)
		r.Get("/threads/{id}", s.handleGetThread)
		r.Get("/reports", s.handleReport)
		r.Get("/reports/{table}", s.handleReportTable)
		r.Get("/search", s.handleSearch)
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
