// Package auth provides password hashing, session tokens, and the session
// middleware for the task tracker.
//
// SESSION DESIGN:
// A session is a signed JWT carried in an HttpOnly cookie named "session".
// The token's Subject claim holds the numeric user id — nothing else. The
// server keeps no session table: validity is entirely the signature plus the
// expiry, so logout is simply deleting the cookie (idempotent by nature).
//
// WHY A SIGNED COOKIE AND NOT A RANDOM SESSION ID?
// With a random id we'd need server-side session storage and a lookup on
// every request. A signed token needs neither — the HMAC proves the server
// issued it and nobody edited the user id inside. The trade-off is that a
// stolen token stays valid until expiry; the 24h lifetime bounds that window.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "session"

const (
	issuer          = "gogitracker"
	sessionLifetime = 24 * time.Hour
)

// SessionService signs and verifies session tokens.
type SessionService struct {
	secret []byte
}

// NewSessionService creates a SessionService with the given HMAC secret.
// The secret should be at least 32 bytes of randomness in production;
// 16 characters is the hard floor.
func NewSessionService(secret string) (*SessionService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 characters")
	}
	return &SessionService{secret: []byte(secret)}, nil
}

type sessionClaims struct {
	jwt.RegisteredClaims
}

// Issue creates a signed session token for the given user id.
func (s *SessionService) Issue(userID int64) (string, error) {
	now := time.Now()

	c := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionLifetime)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing session token: %w", err)
	}

	return signed, nil
}

// Verify parses a session token and returns the user id it binds.
//
// The jwt library checks the signature, the expiry, and (via the options
// below) the issuer and the algorithm. Pinning the algorithm with
// WithValidMethods closes the classic algorithm-confusion hole where a
// token claiming alg "none" slips past verification.
func (s *SessionService) Verify(tokenStr string) (int64, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&sessionClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, fmt.Errorf("auth: session expired")
		}
		return 0, fmt.Errorf("auth: invalid session token: %w", err)
	}

	c, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("auth: invalid session claims")
	}

	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return 0, fmt.Errorf("auth: session has no valid subject")
	}

	return userID, nil
}

// SetSessionCookie writes the session cookie on a response. HttpOnly keeps
// it out of reach of page scripts; SameSite=Lax keeps it off cross-site
// POSTs while still sending it on normal navigation.
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(sessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		// Secure: true, // enable when serving over HTTPS
	})
}

// ClearSessionCookie deletes the session cookie. Safe to call whether or not
// a session exists — clearing nothing is a no-op, which is exactly the
// idempotent logout the routes rely on.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
