package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/model"
	"github.com/YashchenkoBV/gogitracker/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user row and fills in the generated id.
//
// The service checks for a taken username before calling this, but two
// concurrent signups can still race past that check — the UNIQUE constraint
// on username is the authority, and its violation is translated to the same
// conflict error the pre-check produces.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (username, password_hash, github_client_id, github_client_secret, github_token)
		 VALUES (?, ?, ?, ?, ?)`,
		user.Username,
		user.PasswordHash,
		user.GitHubClientID,
		user.GitHubClientSecret,
		user.GitHubToken,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.username") {
			return apperror.Conflict("this username is already taken")
		}
		return fmt.Errorf("sqlite: creating user %q: %w", user.Username, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new user id: %w", err)
	}
	user.ID = id

	return nil
}

// GetUserByID retrieves a user by primary key.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*model.User, error) {
	return db.getUser(ctx, `WHERE id = ?`, id)
}

// GetUserByUsername retrieves a user by exact username.
//
// SQLite TEXT comparison with = is byte-wise, so the lookup is
// case-sensitive without any COLLATE clause — "Alice" and "alice" are
// different accounts, as the signup rules require.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `WHERE username = ?`, username)
}

func (db *DB) getUser(ctx context.Context, where string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, username, password_hash, github_client_id, github_client_secret, github_token
		 FROM users `+where, arg,
	).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.GitHubClientID,
		&u.GitHubClientSecret,
		&u.GitHubToken,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"}
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}

// UpdateGitHubCredentials overwrites the user's stored OAuth app credentials.
// Re-linking replaces whatever was there before.
func (db *DB) UpdateGitHubCredentials(ctx context.Context, userID int64, clientID, clientSecret string) error {
	return db.updateUser(ctx,
		`UPDATE users SET github_client_id = ?, github_client_secret = ? WHERE id = ?`,
		clientID, clientSecret, userID)
}

// UpdateGitHubToken overwrites the user's stored OAuth access token.
func (db *DB) UpdateGitHubToken(ctx context.Context, userID int64, token string) error {
	return db.updateUser(ctx,
		`UPDATE users SET github_token = ? WHERE id = ?`,
		token, userID)
}

func (db *DB) updateUser(ctx context.Context, query string, args ...any) error {
	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("sqlite: updating user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		// The id in args is always last; avoid threading it through just for
		// the message.
		return &apperror.AppError{Err: apperror.ErrNotFound, Message: "user not found"}
	}

	return nil
}
