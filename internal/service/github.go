package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/github"
	"github.com/YashchenkoBV/gogitracker/internal/model"
	"github.com/YashchenkoBV/gogitracker/internal/repository"
)

// GitHubService drives the per-user GitHub integration.
//
// Each user walks a small state machine recorded in their row:
//
//	no credentials → credentials linked → token obtained → repositories fetched
//
// LinkCredentials, AuthURL/CompleteOAuth, and Classify each advance (or
// require) one of those states. Nothing here is shared between users:
// every OAuth call builds a fresh oauth2.Config from the user's own stored
// client id and secret, so concurrent requests for different users can never
// bleed credentials into each other. A single mutable shared config would
// need locking and would still be one bug away from a credential mixup.
type GitHubService struct {
	users       repository.UserRepository
	tasks       *TaskService
	client      *github.Client
	callbackURL string
	endpoint    oauth2.Endpoint
	logger      *slog.Logger
}

// NewGitHubService creates a GitHubService. callbackURL is the fixed
// redirect address registered with each user's GitHub OAuth app.
func NewGitHubService(
	users repository.UserRepository,
	tasks *TaskService,
	client *github.Client,
	callbackURL string,
	logger *slog.Logger,
) *GitHubService {
	return &GitHubService{
		users:       users,
		tasks:       tasks,
		client:      client,
		callbackURL: callbackURL,
		endpoint:    oauthgithub.Endpoint,
		logger:      logger,
	}
}

// SetOAuthEndpointForTest points the token exchange at a different provider
// endpoint. Tests use it to stand in a local server for github.com.
func (s *GitHubService) SetOAuthEndpointForTest(endpoint oauth2.Endpoint) {
	s.endpoint = endpoint
}

// LinkCredentials stores (or replaces) the user's OAuth app client id and
// secret — the NoCredentials → CredentialsLinked transition.
func (s *GitHubService) LinkCredentials(ctx context.Context, userID int64, clientID, clientSecret string) error {
	if clientID == "" || clientSecret == "" {
		return apperror.ValidationFailed("github_client_id", "GitHub client ID and secret are required")
	}

	if err := s.users.UpdateGitHubCredentials(ctx, userID, clientID, clientSecret); err != nil {
		s.logger.Error("failed to store GitHub credentials",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/github: storing credentials: %w", err)
	}

	s.logger.Info("GitHub credentials linked", slog.Int64("userID", userID))
	return nil
}

// AuthURL builds the provider authorization redirect for the user.
//
// prompt=consent forces GitHub to re-show the approval screen even when the
// user already authorized the app — re-linking always goes through an
// explicit approval.
func (s *GitHubService) AuthURL(ctx context.Context, userID int64, state string) (string, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("service/github: fetching user %d: %w", userID, err)
	}
	if !user.HasGitHubCredentials() {
		return "", apperror.ValidationFailed("github_client_id", "GitHub credentials are not linked")
	}

	return s.oauthConfig(user).AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// CompleteOAuth exchanges the callback code for an access token and persists
// it — the CredentialsLinked → TokenObtained transition.
func (s *GitHubService) CompleteOAuth(ctx context.Context, userID int64, code string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("service/github: fetching user %d: %w", userID, err)
	}
	if !user.HasGitHubCredentials() {
		return apperror.ValidationFailed("github_client_id", "GitHub credentials are not linked")
	}

	token, err := s.oauthConfig(user).Exchange(ctx, code)
	if err != nil || token.AccessToken == "" {
		if err != nil {
			s.logger.Error("OAuth exchange failed",
				slog.Int64("userID", userID),
				slog.String("error", err.Error()),
			)
		}
		return apperror.Upstream("github did not return an access token")
	}

	if err := s.users.UpdateGitHubToken(ctx, userID, token.AccessToken); err != nil {
		s.logger.Error("failed to store GitHub token",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("service/github: storing token: %w", err)
	}

	s.logger.Info("GitHub token obtained", slog.Int64("userID", userID))
	return nil
}

// Classify fetches and buckets the user's repositories. Requires the
// TokenObtained state; without a token the caller must restart at
// /github-login, which is exactly what the Unauthorized error triggers.
func (s *GitHubService) Classify(ctx context.Context, userID int64) (*github.Classification, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service/github: fetching user %d: %w", userID, err)
	}
	if !user.HasGitHubToken() {
		return nil, apperror.Unauthorized("GitHub account is not connected")
	}

	result, err := s.client.Classify(ctx, user.GitHubToken, s.logger)
	if err != nil {
		if errors.Is(err, apperror.ErrUpstream) {
			return nil, err
		}
		return nil, fmt.Errorf("service/github: classifying repositories: %w", err)
	}

	return result, nil
}

// ImportRepoAsTask adds a repository name as a task on the chosen date.
// Plain delegation — the task service owns validation and insertion.
func (s *GitHubService) ImportRepoAsTask(ctx context.Context, userID int64, repoName string, date time.Time) (*model.Task, error) {
	return s.tasks.Add(ctx, userID, date, repoName)
}

// oauthConfig builds a fresh per-call OAuth config from the user's stored
// credentials. Scope "repo" covers private repositories — an assignment repo
// is almost always private.
func (s *GitHubService) oauthConfig(user *model.User) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     user.GitHubClientID,
		ClientSecret: user.GitHubClientSecret,
		RedirectURL:  s.callbackURL,
		Scopes:       []string{"repo"},
		Endpoint:     s.endpoint,
	}
}
