// Package server wires the router, handlers and middleware together and
// owns the HTTP server lifecycle.
//
// This is the composition root: main.go builds a Config, and New assembles
// the whole dependency chain from it — sqlite repository → actor store →
// handlers → routes. Nothing else in the codebase constructs its own
// collaborators.
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

	"github.com/selcukcihan/title-generator/internal/actor"
	"github.com/selcukcihan/title-generator/internal/auth"
	"github.com/selcukcihan/title-generator/internal/genai"
	"github.com/selcukcihan/title-generator/internal/github"
	"github.com/selcukcihan/title-generator/internal/handler"
	"github.com/selcukcihan/title-generator/internal/middleware"
	sqliteRepo "github.com/selcukcihan/title-generator/internal/repository/sqlite"
)

// Config holds everything the server needs. Every field is explicit — no
// component reads the environment or any other ambient state on its own.
type Config struct {
	Port               int
	DBPath             string
	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	OAuthRedirectURI   string
	GeminiAPIKey       string
}

// validate reports the first missing required setting. Absent secrets are a
// fatal configuration error at startup rather than a 500 on first use.
func (c Config) validate() error {
	switch {
	case c.JWTSecret == "":
		return fmt.Errorf("JWT_SECRET is required")
	case c.GitHubClientID == "":
		return fmt.Errorf("GITHUB_CLIENT_ID is required")
	case c.GitHubClientSecret == "":
		return fmt.Errorf("GITHUB_CLIENT_SECRET is required")
	case c.OAuthRedirectURI == "":
		return fmt.Errorf("OAUTH_REDIRECT_URI is required")
	case c.GeminiAPIKey == "":
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	return nil
}

// Server is the HTTP server and the resources it owns. The database handle
// is closed during graceful shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain and registers all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	db, err := sqliteRepo.New(cfg.DBPath)
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

// setupRoutes configures middleware and the route table.
//
// GET  /auth/login    → redirect to GitHub (or to / if already logged in)
// GET  /auth/callback → complete OAuth, initialize actor, set cookie
// GET  /auth/logout   → clear cookie
// GET  /api/user      → snapshot (auth required)
// POST /api/user      → generate title (auth required)
// *                   → 404
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	githubAuth := auth.NewGitHubProvider(
		s.config.GitHubClientID,
		s.config.GitHubClientSecret,
		s.config.OAuthRedirectURI,
	)

	store := actor.NewStore(
		s.db,
		github.NewClient(),
		genai.NewClient(s.config.GeminiAPIKey),
		s.logger,
	)

	authHandler := handler.NewAuthHandler(githubAuth, tokens, store, s.logger)
	userHandler := handler.NewUserHandler(store, s.logger)

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/login", authHandler.HandleLogin)
		r.Get("/callback", authHandler.HandleCallback)
		r.Get("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Get("/user", userHandler.HandleGet)
		r.Post("/user", userHandler.HandleGenerate)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests for up to 30 seconds and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
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
