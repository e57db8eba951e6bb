// Package github is the outbound client for the GitHub REST API: listing the
// authenticated user's repositories and pulling README contents for the
// Classroom badge scan.
//
// The OAuth dance itself (authorize redirect, code-for-token exchange) lives
// in the service layer on top of golang.org/x/oauth2 — this package only
// speaks the plain REST API with an already-obtained token.
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
)

const (
	defaultBaseURL = "https://api.github.com"
	clientTimeout  = 15 * time.Second
)

// Repo is the slice of the repository list response we care about. GitHub
// returns a much larger object; resty unmarshals only these fields.
type Repo struct {
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
	Owner   struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// readmeResponse is the contents-API envelope for a file: the payload is
// base64 text (with embedded newlines, per the API).
type readmeResponse struct {
	Content string `json:"content"`
}

// Client wraps a resty client pointed at the GitHub API.
//
// The token is NOT part of the client: it is passed per call, because tokens
// belong to users and one Client instance serves every request the server
// handles. No shared mutable credential state.
type Client struct {
	http *resty.Client
}

// NewClient creates a Client against the public GitHub API.
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a Client against an arbitrary base URL.
// Tests point this at an httptest.Server.
func NewClientWithBaseURL(baseURL string) *Client {
	cli := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(clientTimeout).
		SetHeader("Accept", "application/vnd.github+json")

	return &Client{http: cli}
}

// ListRepos fetches the authenticated user's repositories.
// A non-success status is an upstream failure — the whole scan depends on
// this call, so it propagates (unlike per-repo README errors).
func (c *Client) ListRepos(ctx context.Context, token string) ([]Repo, error) {
	var repos []Repo

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&repos).
		Get("/user/repos")
	if err != nil {
		return nil, fmt.Errorf("github: listing repositories: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, apperror.Upstream(fmt.Sprintf("github repository list returned status %d", resp.StatusCode()))
	}

	return repos, nil
}

// ReadmeContent fetches and decodes README.md for one repository.
//
// Errors here are PER-REPO: the caller buckets the repository as "other" and
// moves on. A missing README (404) is the common case, not an anomaly.
func (c *Client) ReadmeContent(ctx context.Context, token, owner, repo string) (string, error) {
	var body readmeResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&body).
		Get(fmt.Sprintf("/repos/%s/%s/contents/README.md", owner, repo))
	if err != nil {
		return "", fmt.Errorf("github: fetching README for %s/%s: %w", owner, repo, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("github: README for %s/%s returned status %d", owner, repo, resp.StatusCode())
	}

	// The contents API wraps base64 across lines; strip the newlines before
	// decoding.
	raw := strings.ReplaceAll(body.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("github: decoding README for %s/%s: %w", owner, repo, err)
	}

	return string(decoded), nil
}
