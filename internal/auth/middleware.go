package auth

import (
	"context"
	"net/http"
)

// contextKey is an unexported type used for context keys in this package.
// A package-private key type means no other package can read or shadow the
// user id we stash in the request context.
type contextKey string

const userIDKey contextKey = "userID"

// RequireSession is middleware for pages that only make sense logged in.
//
// Unlike a JSON API (which would answer 401), this is a browser-facing app:
// an anonymous visitor hitting a protected page is REDIRECTED to /login
// rather than handed a bare status code. The request chain stops there.
func RequireSession(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := sessionUserID(r, sessions)
			if err != nil {
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalSession extracts the user id if a valid session cookie is present
// but never blocks the request. The index page uses this: anonymous visitors
// get the welcome redirect, logged-in users get their calendar.
func OptionalSession(sessions *SessionService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID, err := sessionUserID(r, sessions); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserIDFromContext retrieves the authenticated user's id from the request
// context. ok is false for anonymous requests.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// sessionUserID reads and verifies the session cookie.
func sessionUserID(r *http.Request, sessions *SessionService) (int64, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil {
		// http.ErrNoCookie — not an error condition, just anonymous
		return 0, err
	}
	return sessions.Verify(cookie.Value)
}
