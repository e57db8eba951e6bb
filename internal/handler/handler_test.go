package handler_test

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/YashchenkoBV/gogitracker/internal/auth"
	"github.com/YashchenkoBV/gogitracker/internal/github"
	"github.com/YashchenkoBV/gogitracker/internal/handler"
	"github.com/YashchenkoBV/gogitracker/internal/repository/sqlite"
	"github.com/YashchenkoBV/gogitracker/internal/service"
)

// env is a fully wired application for handler tests: a real router, real
// services, and an in-memory SQLite database. Exercising handlers through
// the router (rather than calling methods directly) also covers the route
// patterns and the session middleware.
type env struct {
	db       *sqlite.DB
	sessions *auth.SessionService
	auths    *service.AuthService
	tasks    *service.TaskService
	router   *chi.Mux
}

// newEnv assembles the same wiring as the server package, with test-grade
// settings (in-memory DB, bcrypt cost 4) and an optional fake GitHub base
// URL.
func newEnv(t *testing.T, githubBaseURL string) *env {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	sessions, err := auth.NewSessionService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("creating session service: %v", err)
	}

	render, err := handler.NewRenderer("../../web/templates", logger)
	if err != nil {
		t.Fatalf("creating renderer: %v", err)
	}

	ghClient := github.NewClient()
	if githubBaseURL != "" {
		ghClient = github.NewClientWithBaseURL(githubBaseURL)
	}

	authSvc := service.NewAuthService(db, auth.NewPasswordServiceForTest(4), logger)
	taskSvc := service.NewTaskService(db, logger)
	githubSvc := service.NewGitHubService(db, taskSvc, ghClient, "http://localhost:8080/github-callback", logger)

	authHandler := handler.NewAuthHandler(render, authSvc, sessions, logger)
	taskHandler := handler.NewTaskHandler(render, taskSvc, authSvc, logger)
	githubHandler := handler.NewGitHubHandler(render, githubSvc, logger)

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.OptionalSession(sessions))
		r.Get("/", taskHandler.HandleIndex)
		r.Get("/logout", authHandler.HandleLogout)
	})
	router.Get("/welcome", authHandler.HandleWelcome)
	router.Get("/signup", authHandler.HandleSignupForm)
	router.Post("/signup", authHandler.HandleSignup)
	router.Get("/login", authHandler.HandleLoginForm)
	router.Post("/login", authHandler.HandleLogin)
	router.Group(func(r chi.Router) {
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

	return &env{
		db:       db,
		sessions: sessions,
		auths:    authSvc,
		tasks:    taskSvc,
		router:   router,
	}
}

// loggedInUser creates an account and returns its id plus a valid session
// cookie to attach to requests.
func (e *env) loggedInUser(t *testing.T, username string) (int64, *http.Cookie) {
	t.Helper()

	userID, err := e.auths.SignUp(context.Background(), username, "long-enough-password")
	if err != nil {
		t.Fatalf("signup for %q: %v", username, err)
	}

	token, err := e.sessions.Issue(userID)
	if err != nil {
		t.Fatalf("issuing session: %v", err)
	}

	return userID, &http.Cookie{Name: auth.SessionCookie, Value: token}
}
