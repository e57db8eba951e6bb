package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/xid"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/auth"
	"github.com/YashchenkoBV/gogitracker/internal/model"
	"github.com/YashchenkoBV/gogitracker/internal/service"
)

// stateCookie holds the OAuth CSRF nonce between the authorize redirect and
// the provider callback.
const stateCookie = "oauth_state"

// GitHubHandler serves the GitHub linking, OAuth, and assignment-import
// routes. All of them run under RequireSession.
type GitHubHandler struct {
	render *Renderer
	svc    *service.GitHubService
	logger *slog.Logger
}

// NewGitHubHandler creates a GitHubHandler.
func NewGitHubHandler(render *Renderer, svc *service.GitHubService, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{
		render: render,
		svc:    svc,
		logger: logger,
	}
}

// HandleLinkForm serves the credential-linking form.
//
// HTTP: GET /link-github
func (h *GitHubHandler) HandleLinkForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "link_github", nil)
}

// HandleLink stores the submitted OAuth app credentials.
//
// HTTP: POST /link-github → 302 /github-login on success, 400 re-render on
// missing fields
func (h *GitHubHandler) HandleLink(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, "link_github", map[string]any{
			"ErrorMessage": "Could not read the submitted form.",
		})
		return
	}

	clientID := r.PostFormValue("github_client_id")
	clientSecret := r.PostFormValue("github_client_secret")

	if err := h.svc.LinkCredentials(r.Context(), userID, clientID, clientSecret); err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			h.render.Render(w, http.StatusBadRequest, "link_github", map[string]any{
				"ErrorMessage": userMessage(err),
			})
			return
		}
		h.render.RenderError(w, err)
		return
	}

	http.Redirect(w, r, "/github-login", http.StatusFound)
}

// HandleGitHubLogin sends the browser to GitHub's authorization page.
//
// HTTP: GET /github-login
//
// CSRF PROTECTION VIA STATE:
// A random nonce goes both into a short-lived cookie and into the authorize
// URL. The callback only proceeds when the two match — a forged callback
// from elsewhere won't carry the cookie's value.
func (h *GitHubHandler) HandleGitHubLogin(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	state := xid.New().String()
	authURL, err := h.svc.AuthURL(r.Context(), userID, state)
	if err != nil {
		if errors.Is(err, apperror.ErrValidation) {
			// Credentials not linked yet — the linking form is the fix.
			h.render.Render(w, http.StatusBadRequest, "link_github", map[string]any{
				"ErrorMessage": "Link your GitHub credentials first.",
			})
			return
		}
		h.render.RenderError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes — enough to approve, short enough to limit replay
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, authURL, http.StatusFound)
}

// HandleGitHubCallback completes the OAuth flow.
//
// HTTP: GET /github-callback?code=&state= → 302 /github-assignments
func (h *GitHubHandler) HandleGitHubCallback(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.URL.Query().Get("state") != cookie.Value {
		h.logger.Warn("github callback: state mismatch", slog.Int64("userID", userID))
		h.render.RenderError(w, apperror.ValidationFailed("state", "the sign-in attempt could not be verified, start again"))
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("github callback: authorization denied",
			slog.Int64("userID", userID),
			slog.String("error", errParam),
		)
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.render.RenderError(w, apperror.ValidationFailed("code", "github did not send an authorization code"))
		return
	}

	if err := h.svc.CompleteOAuth(r.Context(), userID, code); err != nil {
		h.render.RenderError(w, err)
		return
	}

	http.Redirect(w, r, "/github-assignments", http.StatusFound)
}

// HandleAssignments fetches and renders the categorized repository lists.
//
// HTTP: GET /github-assignments
// No stored token → 302 /github-login (the state machine's way of saying
// "authorize first"). Upstream failure → error page, no retry.
func (h *GitHubHandler) HandleAssignments(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	classification, err := h.svc.Classify(r.Context(), userID)
	if err != nil {
		if errors.Is(err, apperror.ErrUnauthorized) {
			http.Redirect(w, r, "/github-login", http.StatusFound)
			return
		}
		h.render.RenderError(w, err)
		return
	}

	h.render.Render(w, http.StatusOK, "github_assignments", map[string]any{
		"Assignments": classification.Assignments,
		"Others":      classification.Others,
	})
}

// HandleRepoDate serves the date-picker form for importing a repository.
//
// HTTP: GET /rep_date/{repoName}
func (h *GitHubHandler) HandleRepoDate(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "rep_date", map[string]any{
		"RepoName": chi.URLParam(r, "repoName"),
	})
}

// HandleAddRepoTask imports a repository name as a task on the chosen date.
//
// HTTP: POST /add_repo_task/{repoName} (form: task_date as YYYY-MM-DD) → 302 /
func (h *GitHubHandler) HandleAddRepoTask(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	repoName := chi.URLParam(r, "repoName")

	if err := r.ParseForm(); err != nil {
		h.render.RenderError(w, apperror.ValidationFailed("task_date", "could not read the submitted form"))
		return
	}

	date, err := time.ParseInLocation(model.DateOnly, r.PostFormValue("task_date"), time.UTC)
	if err != nil {
		h.render.Render(w, http.StatusBadRequest, "rep_date", map[string]any{
			"RepoName":     repoName,
			"ErrorMessage": "Pick a valid date.",
		})
		return
	}

	if _, err := h.svc.ImportRepoAsTask(r.Context(), userID, repoName, date); err != nil {
		h.render.RenderError(w, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}
