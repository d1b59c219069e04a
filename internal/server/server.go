// Package server wires handlers, middleware, and routes, and owns the
// process-level resources (the store handle) for the lifetime of the server.
//
// Dependency flow, assembled in New:
//
//	sqlite.DB → AuthService / explainer.Service → handlers → chi routes
//
// Handlers never touch the database; services never touch HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gamnamu1/python-code-explainer/internal/auth"
	"github.com/gamnamu1/python-code-explainer/internal/explainer"
	"github.com/gamnamu1/python-code-explainer/internal/handler"
	"github.com/gamnamu1/python-code-explainer/internal/llm"
	"github.com/gamnamu1/python-code-explainer/internal/middleware"
	sqliteRepo "github.com/gamnamu1/python-code-explainer/internal/repository/sqlite"
	"github.com/gamnamu1/python-code-explainer/internal/service"
)

// Config holds everything the server needs, loaded from the environment in
// main.go.
type Config struct {
	Port        int
	TemplateDir string

	// Store. An empty DBPath starts the server with a degraded store:
	// reads come back empty, analysis writes fail with 503.
	DBPath      string
	OwnerOpenID string

	// Sessions.
	JWTSecret string

	// OAuth provider.
	Auth auth.ProviderConfig

	// Completion endpoint.
	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string
}

// Server is the HTTP server and its owned resources. The store handle is
// constructed here and closed on shutdown — no lazy globals.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New creates the store, builds the dependency graph, and registers routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(sqliteRepo.Config{
		Path:        cfg.DBPath,
		OwnerOpenID: cfg.OwnerOpenID,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes registers middleware and all route handlers.
//
// ROUTE MAP:
//
//	GET  /                   → explainer page (HTML)
//	GET  /auth/login         → redirect to OAuth provider
//	GET  /auth/callback      → complete login, set session cookie
//	GET  /api/auth/me        → current user or null        (public)
//	POST /api/auth/logout    → clear session cookie        (public)
//	GET  /api/analyses       → caller's history            (protected)
//	GET  /api/analyses/{id}  → one analysis                (protected)
//	POST /api/analyses       → analyze code                (protected)
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	provider := auth.NewProvider(s.config.Auth)

	authSvc := service.NewAuthService(s.db, tokens, s.logger)
	completer := llm.New(s.config.LLMBaseURL, s.config.LLMAPIKey, s.config.LLMModel)
	explainerSvc := explainer.NewService(s.db, completer, s.logger)

	authHandler := handler.NewAuthHandler(provider, authSvc, s.logger)
	analysisHandler := handler.NewAnalysisHandler(explainerSvc, authSvc, s.logger)

	pageHandler, err := handler.NewPageHandler(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating page handler: %w", err)
	}
	s.router.Get("/", pageHandler.HandleIndex)

	s.router.Get("/auth/login", authHandler.HandleLogin)
	s.router.Get("/auth/callback", authHandler.HandleCallback)

	s.router.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/auth/me", authHandler.HandleMe)
			r.Post("/auth/logout", authHandler.HandleLogout)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/analyses", analysisHandler.HandleHistory)
			r.Get("/analyses/{id}", analysisHandler.HandleGetByID)
			r.Post("/analyses", analysisHandler.HandleAnalyze)
		})
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests (30s), close the
// store so the WAL is flushed and the file lock released.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
		// No WriteTimeout: the analyze route blocks on the completion
		// endpoint, which has no timeout of its own.
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
			slog.Bool("storeAvailable", s.db.Available()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
