package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"

	"github.com/YashchenkoBV/gogitracker/internal/apperror"
	"github.com/YashchenkoBV/gogitracker/internal/github"
)

const testCallbackURL = "http://localhost:8080/github-callback"

// newTestGitHubService wires a GitHubService against the fakes plus a real
// outbound client pointed wherever the test wants (the zero-value client is
// fine for tests that never reach the network).
func newTestGitHubService(t *testing.T, users *fakeUserRepo, client *github.Client) (*GitHubService, *AuthService) {
	t.Helper()
	authSvc := newTestAuthService(t, users)
	taskSvc := NewTaskService(newFakeTaskRepo(), testLogger())
	return NewGitHubService(users, taskSvc, client, testCallbackURL, testLogger()), authSvc
}

// =========================================================================
// LinkCredentials TESTS
// =========================================================================

func TestLinkCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "linker")

	err := svc.LinkCredentials(context.Background(), userID, "my-client-id", "my-client-secret")
	if err != nil {
		t.Fatalf("LinkCredentials() error = %v", err)
	}

	stored := users.users[userID]
	if stored.GitHubClientID != "my-client-id" || stored.GitHubClientSecret != "my-client-secret" {
		t.Errorf("stored credentials = (%q, %q)", stored.GitHubClientID, stored.GitHubClientSecret)
	}
}

func TestLinkCredentials_MissingFields(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "linker")

	cases := []struct {
		name                   string
		clientID, clientSecret string
	}{
		{"empty id", "", "secret"},
		{"empty secret", "id", ""},
		{"both empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.LinkCredentials(context.Background(), userID, tc.clientID, tc.clientSecret)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("LinkCredentials() error = %v, want ErrValidation", err)
			}
		})
	}
}

// =========================================================================
// AuthURL TESTS
// =========================================================================

func TestAuthURL(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "oauther")

	if err := svc.LinkCredentials(context.Background(), userID, "my-client-id", "my-secret"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	url, err := svc.AuthURL(context.Background(), userID, "state-nonce-123")
	if err != nil {
		t.Fatalf("AuthURL() error = %v", err)
	}

	for _, want := range []string{
		"https://github.com/login/oauth/authorize",
		"client_id=my-client-id",
		"state=state-nonce-123",
		"prompt=consent",
		"scope=repo",
	} {
		if !strings.Contains(url, want) {
			t.Errorf("AuthURL() = %q, missing %q", url, want)
		}
	}

	// The client secret never belongs in a browser redirect.
	if strings.Contains(url, "my-secret") {
		t.Error("AuthURL() leaked the client secret into the redirect URL")
	}
}

func TestAuthURL_WithoutLinkedCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "unlinked")

	_, err := svc.AuthURL(context.Background(), userID, "state")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("AuthURL() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// CompleteOAuth TESTS
// =========================================================================

// oauthTokenServer stands in for GitHub's OAuth endpoints, answering every
// code exchange with the given JSON body.
func oauthTokenServer(t *testing.T, body string) oauth2.Endpoint {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return oauth2.Endpoint{
		AuthURL:  srv.URL + "/authorize",
		TokenURL: srv.URL + "/token",
	}
}

func TestCompleteOAuth(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "exchanger")

	if err := svc.LinkCredentials(context.Background(), userID, "id", "secret"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	svc.SetOAuthEndpointForTest(oauthTokenServer(t, `{"access_token":"gho_exchanged","token_type":"bearer"}`))

	if err := svc.CompleteOAuth(context.Background(), userID, "good-code"); err != nil {
		t.Fatalf("CompleteOAuth() error = %v", err)
	}

	if got := users.users[userID].GitHubToken; got != "gho_exchanged" {
		t.Errorf("stored token = %q, want the exchanged one", got)
	}
}

func TestCompleteOAuth_NoAccessToken(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "exchanger")

	if err := svc.LinkCredentials(context.Background(), userID, "id", "secret"); err != nil {
		t.Fatalf("setup: %v", err)
	}
	// A provider response with no access_token field.
	svc.SetOAuthEndpointForTest(oauthTokenServer(t, `{"token_type":"bearer"}`))

	err := svc.CompleteOAuth(context.Background(), userID, "bad-code")
	if !errors.Is(err, apperror.ErrUpstream) {
		t.Errorf("CompleteOAuth() error = %v, want ErrUpstream", err)
	}
	if got := users.users[userID].GitHubToken; got != "" {
		t.Errorf("stored token = %q, want none", got)
	}
}

func TestCompleteOAuth_WithoutLinkedCredentials(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "unlinked")

	err := svc.CompleteOAuth(context.Background(), userID, "some-code")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("CompleteOAuth() error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// Classify TESTS
// =========================================================================

func TestClassify_WithoutToken(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "tokenless")

	// Credentials linked but the OAuth dance never completed.
	if err := svc.LinkCredentials(context.Background(), userID, "id", "secret"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	_, err := svc.Classify(context.Background(), userID)
	if !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("Classify() error = %v, want ErrUnauthorized", err)
	}
}

func TestClassify_WithToken(t *testing.T) {
	// A fake GitHub that answers an empty repository list.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user/repos" {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode([]github.Repo{})
	}))
	t.Cleanup(srv.Close)

	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClientWithBaseURL(srv.URL))
	userID := mustSignUp(t, authSvc, "connected")

	if err := users.UpdateGitHubToken(context.Background(), userID, "gho_token"); err != nil {
		t.Fatalf("setup: %v", err)
	}

	result, err := svc.Classify(context.Background(), userID)
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(result.Assignments) != 0 || len(result.Others) != 0 {
		t.Errorf("result = %+v, want empty buckets", result)
	}
}

// =========================================================================
// ImportRepoAsTask TESTS
// =========================================================================

func TestImportRepoAsTask(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "importer")

	task, err := svc.ImportRepoAsTask(context.Background(), userID, "hw-one", date(t, "2026-09-15"))
	if err != nil {
		t.Fatalf("ImportRepoAsTask() error = %v", err)
	}

	if task.Text != "hw-one" {
		t.Errorf("Text = %q, want the repo name", task.Text)
	}
	if task.Date.Format("2006-01-02") != "2026-09-15" {
		t.Errorf("Date = %v, want 2026-09-15", task.Date)
	}
}

func TestImportRepoAsTask_EmptyName(t *testing.T) {
	users := newFakeUserRepo()
	svc, authSvc := newTestGitHubService(t, users, github.NewClient())
	userID := mustSignUp(t, authSvc, "importer")

	_, err := svc.ImportRepoAsTask(context.Background(), userID, "  ", date(t, "2026-09-15"))
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("ImportRepoAsTask() error = %v, want ErrValidation", err)
	}
}
