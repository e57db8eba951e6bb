// Package server wires the application together: router, middleware, routes,
// and graceful shutdown.
//
// This is the composition root — the one place where the dependency chain
//
//	sqlite.DB → services → handlers → routes
//
// is assembled. Each layer receives interfaces or already-built values; no
// package below this one constructs its own dependencies.
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

	"github.com/YashchenkoBV/gogitracker/internal/auth"
	"github.com/YashchenkoBV/gogitracker/internal/config"
	"github.com/YashchenkoBV/gogitracker/internal/github"
	"github.com/YashchenkoBV/gogitracker/internal/handler"
	"github.com/YashchenkoBV/gogitracker/internal/middleware"
	sqliteRepo "github.com/YashchenkoBV/gogitracker/internal/repository/sqlite"
	"github.com/YashchenkoBV/gogitracker/internal/service"
)

// Server owns the router and the database connection. The connection is
// closed during shutdown so the WAL is flushed and the file lock released.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New builds the full application.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes assembles services, handlers, and the route table.
//
// ROUTE MAP:
//
//	GET  /                          calendar (optional session)
//	GET  /welcome                   landing page
//	GET/POST /signup, /login        account forms
//	GET  /logout                    clear session
//	GET/POST /tasks/{y}/{m}/{d}     day page: list / add / mark done
//	POST /mark_finished             mark done from the calendar
//	GET/POST /link-github           OAuth app credentials form
//	GET  /github-login              authorize redirect
//	GET  /github-callback           token exchange
//	GET  /github-assignments        classified repository lists
//	GET  /rep_date/{repoName}       import date picker
//	POST /add_repo_task/{repoName}  import repo as task
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	sessions, err := auth.NewSessionService(s.cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("creating session service: %w", err)
	}

	render, err := handler.NewRenderer(s.cfg.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	// Services. The sqlite DB satisfies both repository interfaces.
	passwords := auth.NewPasswordService()
	authSvc := service.NewAuthService(s.db, passwords, s.logger)
	taskSvc := service.NewTaskService(s.db, s.logger)
	githubSvc := service.NewGitHubService(s.db, taskSvc, github.NewClient(), s.cfg.GitHubCallbackURL, s.logger)

	// Handlers.
	authHandler := handler.NewAuthHandler(render, authSvc, sessions, s.logger)
	taskHandler := handler.NewTaskHandler(render, taskSvc, authSvc, s.logger)
	githubHandler := handler.NewGitHubHandler(render, githubSvc, s.logger)

	// Public routes. The index runs with OptionalSession: it decides
	// welcome-vs-calendar itself.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.OptionalSession(sessions))
		r.Get("/", taskHandler.HandleIndex)
		r.Get("/logout", authHandler.HandleLogout)
	})

	s.router.Get("/welcome", authHandler.HandleWelcome)
	s.router.Get("/signup", authHandler.HandleSignupForm)
	s.router.Post("/signup", authHandler.HandleSignup)
	s.router.Get("/login", authHandler.HandleLoginForm)
	s.router.Post("/login", authHandler.HandleLogin)

	// Protected routes: anonymous browsers are redirected to /login.
	s.router.Group(func(r chi.Router) {
		r.Use(auth.RequireSession(sessions))

		r.Get("/tasks/{year}/{month}/{day}", taskHandler.HandleTasksDay)
		r.Post("/tasks/{year}/{month}/{day}", taskHandler.HandleTasksDay)
		r.Post("/mark_finished", taskHandler.HandleMarkFinished)

		r.Get("/link-github", githubHandler.HandleLinkForm)
		r.Post("/link-github", githubHandler.HandleLink)
		r.Get("/github-login", githubHandler.HandleGitHubLogin)
		r.Get("/github-callback", githubHandler.HandleGitHubCallback)
		r.Get("/github-assignments", githubHandler.HandleAssignments)
		r.Get("/rep_date/{repoName}", githubHandler.HandleRepoDate)
		r.Post("/add_repo_task/{repoName}", githubHandler.HandleAddRepoTask)
	})

	return nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting, drain in-flight requests (30s cap), close the
// database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.cfg.Port),
			slog.String("database", s.cfg.DBPath),
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
