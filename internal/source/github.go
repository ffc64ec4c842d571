// Package source fetches commit records from GitHub, as an alternative to
// reading a local clone.
package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	vcsurl "github.com/gitsight/go-vcsurl"
	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/roivaz/changelog-agent/internal/gitrepo"
)

func NewClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(&http.Client{Timeout: 30 * time.Second})
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = 30 * time.Second
	return github.NewClient(tc)
}

// ParseRemote extracts owner and repo from a git remote URL (https or ssh).
func ParseRemote(remoteURL string) (owner, repo string, err error) {
	info, err := vcsurl.Parse(remoteURL)
	if err != nil {
		return "", "", fmt.Errorf("parse remote url %q: %w", remoteURL, err)
	}
	return info.Username, info.Name, nil
}

// ParseSlug splits an "owner/repo" argument.
func ParseSlug(slug string) (owner, repo string, err error) {
	parts := strings.Split(slug, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository slug %q, expected owner/repo", slug)
	}
	return parts[0], parts[1], nil
}

// GitHubSource reads commits for a ref range through the GitHub API.
type GitHubSource struct {
	client *github.Client
	owner  string
	repo   string
}

func NewGitHubSource(client *github.Client, owner, repo string) *GitHubSource {
	return &GitHubSource{client: client, owner: owner, repo: repo}
}

// CommitsBetween compares base...head and returns the commits in the range,
// newest first, with each commit's diff assembled from its file patches.
func (s *GitHubSource) CommitsBetween(ctx context.Context, base, head string) ([]gitrepo.Commit, error) {
	var listed []*github.RepositoryCommit
	opts := &github.ListOptions{PerPage: 100}
	for {
		comparison, resp, err := s.client.Repositories.CompareCommits(ctx, s.owner, s.repo, base, head, opts)
		if err != nil {
			return nil, fmt.Errorf("compare %s...%s: %w", base, head, err)
		}
		listed = append(listed, comparison.Commits...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	// The compare API lists oldest first; flip to match local rev-list order.
	commits := make([]gitrepo.Commit, 0, len(listed))
	for i := len(listed) - 1; i >= 0; i-- {
		commit, err := s.commit(ctx, listed[i].GetSHA())
		if err != nil {
			return nil, err
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

func (s *GitHubSource) commit(ctx context.Context, sha string) (gitrepo.Commit, error) {
	rc, _, err := s.client.Repositories.GetCommit(ctx, s.owner, s.repo, sha, nil)
	if err != nil {
		return gitrepo.Commit{}, fmt.Errorf("get commit %s: %w", sha, err)
	}

	var diff strings.Builder
	for _, file := range rc.Files {
		if patch := file.GetPatch(); patch != "" {
			fmt.Fprintf(&diff, "--- %s\n%s\n", file.GetFilename(), patch)
		}
	}

	return gitrepo.Commit{
		Hash:    rc.GetSHA(),
		Message: strings.TrimSpace(rc.GetCommit().GetMessage()),
		Diff:    diff.String(),
		Author:  rc.GetCommit().GetAuthor().GetName(),
		Date:    rc.GetCommit().GetAuthor().GetDate().Format(time.RFC3339),
	}, nil
}
