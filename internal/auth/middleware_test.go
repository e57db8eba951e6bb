package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// okHandler records whether it ran and what user id it saw in the context.
type okHandler struct {
	called bool
	userID int64
	hasID  bool
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.userID, h.hasID = UserIDFromContext(r.Context())
	w.WriteHeader(http.StatusOK)
}

// =========================================================================
// RequireSession TESTS
// =========================================================================

func TestRequireSession_NoCookie_RedirectsToLogin(t *testing.T) {
	s := newTestSessionService(t)
	next := &okHandler{}
	mw := RequireSession(s)(next)

	req := httptest.NewRequest(http.MethodGet, "/tasks/2026/9/1", nil)
	rr := httptest.NewRecorder()

	mw.ServeHTTP(rr, req)

	if next.called {
		t.Error("next handler should not run for an anonymous request")
	}
	if rr.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusFound)
	}
	if loc := rr.Header().Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
}

func TestRequireSession_InvalidCookie_RedirectsToLogin(t *testing.T) {
	s := newTestSessionService(t)
	next := &okHandler{}
	mw := RequireSession(s)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "garbage"})
	rr := httptest.NewRecorder()

	mw.ServeHTTP(rr, req)

	if next.called {
		t.Error("next handler should not run for an invalid session")
	}
	if rr.Code != http.StatusFound {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusFound)
	}
}

func TestRequireSession_ValidCookie_PutsUserIDInContext(t *testing.T) {
	s := newTestSessionService(t)
	next := &okHandler{}
	mw := RequireSession(s)(next)

	token, err := s.Issue(42)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rr := httptest.NewRecorder()

	mw.ServeHTTP(rr, req)

	if !next.called {
		t.Fatal("next handler should run for a valid session")
	}
	if !next.hasID || next.userID != 42 {
		t.Errorf("context userID = (%d, %v), want (42, true)", next.userID, next.hasID)
	}
}

// =========================================================================
// OptionalSession TESTS
// =========================================================================

func TestOptionalSession_NoCookie_StillRuns(t *testing.T) {
	s := newTestSessionService(t)
	next := &okHandler{}
	mw := OptionalSession(s)(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()

	mw.ServeHTTP(rr, req)

	if !next.called {
		t.Fatal("next handler should always run under OptionalSession")
	}
	if next.hasID {
		t.Error("anonymous request should have no user id in context")
	}
}

func TestOptionalSession_ValidCookie_PutsUserIDInContext(t *testing.T) {
	s := newTestSessionService(t)
	next := &okHandler{}
	mw := OptionalSession(s)(next)

	token, err := s.Issue(9)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	rr := httptest.NewRecorder()

	mw.ServeHTTP(rr, req)

	if !next.called {
		t.Fatal("next handler should run")
	}
	if !next.hasID || next.userID != 9 {
		t.Errorf("context userID = (%d, %v), want (9, true)", next.userID, next.hasID)
	}
}

// =========================================================================
// UserIDFromContext TESTS
// =========================================================================

func TestUserIDFromContext_EmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if _, ok := UserIDFromContext(req.Context()); ok {
		t.Error("UserIDFromContext() should report false on a bare context")
	}
}
