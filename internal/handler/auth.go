package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/auth"
	"github.com/YashchenkoBV/gogitracker/internal/service"
)

// AuthHandler serves the welcome, signup, login, and logout routes.
//
// FORM ERROR CONVENTION:
// A failed signup or login re-renders the SAME form with a 400 status and an
// inline message. The username field could be replayed, but the password
// never is — password inputs always come back empty.
type AuthHandler struct {
	render   *Renderer
	svc      *service.AuthService
	sessions *auth.SessionService
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(render *Renderer, svc *service.AuthService, sessions *auth.SessionService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		render:   render,
		svc:      svc,
		sessions: sessions,
		logger:   logger,
	}
}

// HandleWelcome serves the anonymous landing page.
//
// HTTP: GET /welcome
func (h *AuthHandler) HandleWelcome(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "welcome", nil)
}

// HandleSignupForm serves the empty signup form.
//
// HTTP: GET /signup
func (h *AuthHandler) HandleSignupForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "signup", nil)
}

// HandleSignup processes a signup submission.
//
// HTTP: POST /signup → 302 /login on success, 400 re-render on bad input
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, "signup", map[string]any{
			"ErrorMessage": "Could not read the submitted form.",
		})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	_, err := h.svc.SignUp(r.Context(), username, password)
	if err != nil {
		// Validation and conflict both re-render the form; everything else
		// is a storage failure.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) &&
			(errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrConflict)) {
			h.render.Render(w, http.StatusBadRequest, "signup", map[string]any{
				"ErrorMessage": appErr.Message,
				"Username":     username,
			})
			return
		}
		h.render.RenderError(w, err)
		return
	}

	http.Redirect(w, r, "/login", http.StatusFound)
}

// HandleLoginForm serves the empty login form.
//
// HTTP: GET /login
func (h *AuthHandler) HandleLoginForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, http.StatusOK, "login", nil)
}

// HandleLogin processes a login submission and issues the session cookie.
//
// HTTP: POST /login → 302 / on success, 400 re-render on bad credentials
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.render.Render(w, http.StatusBadRequest, "login", map[string]any{
			"ErrorMessage": "Could not read the submitted form.",
		})
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	userID, err := h.svc.LogIn(r.Context(), username, password)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) &&
			(errors.Is(err, apperror.ErrValidation) || errors.Is(err, apperror.ErrUnauthorized)) {
			h.render.Render(w, http.StatusBadRequest, "login", map[string]any{
				"ErrorMessage": appErr.Message,
				"Username":     username,
			})
			return
		}
		h.render.RenderError(w, err)
		return
	}

	token, err := h.sessions.Issue(userID)
	if err != nil {
		h.render.RenderError(w, err)
		return
	}
	auth.SetSessionCookie(w, token)

	http.Redirect(w, r, "/", http.StatusFound)
}

// HandleLogout clears the session cookie and sends the browser home.
// Idempotent — logging out while logged out clears nothing and still
// redirects.
//
// HTTP: GET /logout → 302 /
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		h.logger.Info("user logged out", slog.Int64("userID", userID))
	}
	auth.ClearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusFound)
}
