package github

import (
	"context"
	"log/slog"
	"regexp"
)

// badgePattern matches the "Review Assignment Due Date" badge GitHub
// Classroom injects into assignment READMEs: a markdown image wrapped in a
// link to the assignment page. The single capture group is the assignment
// URL.
//
// Example of the construct being matched:
//
//	[![Review Assignment Due Date](https://classroom.github.com/assets/deadline-readme-button-....svg)](https://classroom.github.com/a/AbC123)
var badgePattern = regexp.MustCompile(
	`\[!\[Review Assignment Due Date\]\(https://classroom\.github\.com/assets/.*?\.svg\)\]\((https://classroom\.github\.com/a/[a-zA-Z0-9]+)\)`,
)

// Assignment is a repository whose README carries a Classroom deadline badge.
type Assignment struct {
	Name          string
	RepoURL       string
	AssignmentURL string
}

// Project is a repository without a recognized badge. Error is the per-repo
// failure (README fetch or decode), empty when the README was simply
// badge-free.
type Project struct {
	Name    string
	RepoURL string
	Error   string
}

// Classification partitions a user's repositories. Both slices preserve the
// order the upstream list call returned them in.
type Classification struct {
	Assignments []Assignment
	Others      []Project
}

// MatchAssignmentURL scans README text for the Classroom badge and returns
// the assignment URL it links to.
func MatchAssignmentURL(readme string) (string, bool) {
	m := badgePattern.FindStringSubmatch(readme)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Classify lists the user's repositories and buckets each one by whether its
// README carries a Classroom deadline badge.
//
// PARTIAL-FAILURE ISOLATION:
// The repository list call is the only one allowed to fail the scan. Every
// per-repository step — README fetch, base64 decode, pattern match — is
// contained: a failure parks that repo in the "other" bucket with the error
// string and the loop continues. One bad repository never hides the rest.
//
// The fetches run sequentially on the caller's request path; an account with
// N repositories costs N+1 upstream calls, each bounded by the client
// timeout. No retries.
func (c *Client) Classify(ctx context.Context, token string, logger *slog.Logger) (*Classification, error) {
	repos, err := c.ListRepos(ctx, token)
	if err != nil {
		return nil, err
	}

	result := &Classification{}
	for _, repo := range repos {
		readme, err := c.ReadmeContent(ctx, token, repo.Owner.Login, repo.Name)
		if err != nil {
			logger.Debug("repository skipped for classification",
				slog.String("repo", repo.Name),
				slog.String("error", err.Error()),
			)
			result.Others = append(result.Others, Project{
				Name:    repo.Name,
				RepoURL: repo.HTMLURL,
				Error:   err.Error(),
			})
			continue
		}

		if url, ok := MatchAssignmentURL(readme); ok {
			result.Assignments = append(result.Assignments, Assignment{
				Name:          repo.Name,
				RepoURL:       repo.HTMLURL,
				AssignmentURL: url,
			})
		} else {
			result.Others = append(result.Others, Project{
				Name:    repo.Name,
				RepoURL: repo.HTMLURL,
			})
		}
	}

	logger.Info("repositories classified",
		slog.Int("assignments", len(result.Assignments)),
		slog.Int("others", len(result.Others)),
	)

	return result, nil
}
