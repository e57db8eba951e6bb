// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER SHAPE:
//
//	Handler (HTTP)     → parses requests, renders pages
//	Service (rules)    → validates, enforces ownership, orchestrates
//	Repository (data)  → reads/writes SQLite
//
// Services accept primitives and return domain errors (internal/apperror),
// never HTTP types or status codes — the handlers own that translation.
// Every service takes its repository as an interface so tests run against
// in-memory fakes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/auth"
	"github.com/YashchenkoBV/gogitracker/internal/model"
	"github.com/YashchenkoBV/gogitracker/internal/repository"
)

// MinPasswordLength is the signup floor. Nothing clever — just a length
// check.
const MinPasswordLength = 8

// dummyHash is a valid bcrypt hash compared against on the unknown-username
// login path, so that path costs roughly the same as a real password check.
// Without it, a fast rejection for unknown users would let response timing
// confirm which usernames exist.
const dummyHash = "$2a$12$R9h/cIPz0gi.URNNX3kh2OPST9/PgBkqquzi.Ss7KIUgO2t0jWMUW"

// invalidCredentials is the single message for every login failure mode.
// Unknown user and wrong password are deliberately indistinguishable.
const invalidCredentials = "invalid username or password"

// AuthService handles signup, login, and session-to-user resolution.
type AuthService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with its dependencies injected.
func NewAuthService(users repository.UserRepository, passwords *auth.PasswordService, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		passwords: passwords,
		logger:    logger,
	}
}

// SignUp validates and creates a new account, returning the new user id.
//
// Username matching is case-sensitive and exact — "Alice" and "alice" are
// distinct accounts. The pre-check below gives the friendly error message;
// the UNIQUE constraint in the repository is the race-proof authority and
// yields the same conflict error if two signups collide.
func (s *AuthService) SignUp(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, apperror.ValidationFailed("username", "both username and password are required")
	}
	if len(password) < MinPasswordLength {
		return 0, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > auth.MaxPasswordBytes {
		return 0, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at most %d characters long", auth.MaxPasswordBytes))
	}

	_, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		return 0, apperror.Conflict("this username is already taken")
	case !errors.Is(err, apperror.ErrNotFound):
		s.logger.Error("signup lookup failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("service/auth: checking username: %w", err)
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return 0, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return 0, err
		}
		s.logger.Error("signup insert failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.Info("user created",
		slog.Int64("userID", user.ID),
		slog.String("username", username),
	)

	return user.ID, nil
}

// LogIn verifies credentials and returns the user id on success.
//
// Every failure — missing user, wrong password — comes back as the same
// Unauthorized error with the same message, and the unknown-user path still
// burns a bcrypt comparison (see dummyHash). Storage failures are the one
// exception: those are real errors, not bad credentials.
func (s *AuthService) LogIn(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, apperror.ValidationFailed("username", "both username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			_ = s.passwords.Verify(dummyHash, password)
			return 0, apperror.Unauthorized(invalidCredentials)
		}
		s.logger.Error("login lookup failed", slog.String("error", err.Error()))
		return 0, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		s.logger.Warn("failed login attempt", slog.String("username", username))
		return 0, apperror.Unauthorized(invalidCredentials)
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("username", username),
	)

	return user.ID, nil
}

// GetUserByID resolves a session's user id to the full record. The session
// middleware validated the cookie; this is the "or none" half of
// current-user resolution — a deleted or bogus id comes back as NotFound.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %d: %w", id, err)
	}
	return user, nil
}
