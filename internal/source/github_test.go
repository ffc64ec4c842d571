package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path"
	"strings"
	"testing"

	"github.com/google/go-github/v66/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSlug(t *testing.T) {
	owner, repo, err := ParseSlug("roivaz/changelog-agent")
	require.NoError(t, err)
	assert.Equal(t, "roivaz", owner)
	assert.Equal(t, "changelog-agent", repo)

	for _, bad := range []string{"", "noslash", "a/b/c", "/repo", "owner/"} {
		_, _, err := ParseSlug(bad)
		assert.Error(t, err, "slug %q should be rejected", bad)
	}
}

func TestParseRemote(t *testing.T) {
	cases := []string{
		"https://github.com/roivaz/changelog-agent.git",
		"git@github.com:roivaz/changelog-agent.git",
	}
	for _, url := range cases {
		owner, repo, err := ParseRemote(url)
		require.NoError(t, err, "url %s", url)
		assert.Equal(t, "roivaz", owner)
		assert.Equal(t, "changelog-agent", repo)
	}

	_, _, err := ParseRemote("not a url")
	assert.Error(t, err)
}

func TestCommitsBetweenFollowsPagination(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/repos/o/r/compare/"):
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprint(w, `{"commits":[{"sha":"c3"}]}`)
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<http://%s%s?page=2>; rel="next"`, r.Host, r.URL.Path))
			fmt.Fprint(w, `{"commits":[{"sha":"c1"},{"sha":"c2"}]}`)
		case strings.HasPrefix(r.URL.Path, "/repos/o/r/commits/"):
			sha := path.Base(r.URL.Path)
			fmt.Fprintf(w, `{"sha":%q,"commit":{"message":"change %s","author":{"name":"dev","date":"2026-01-02T03:04:05Z"}},"files":[{"filename":"main.go","patch":"@@ -1 +1 @@ %s"}]}`, sha, sha, sha)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := github.NewClient(nil)
	client.BaseURL, _ = url.Parse(srv.URL + "/")
	src := NewGitHubSource(client, "o", "r")

	commits, err := src.CommitsBetween(context.Background(), "v1.0.0", "v1.1.0")
	require.NoError(t, err)
	require.Len(t, commits, 3, "commits beyond the first compare page must be included")

	// Newest first, like local rev-list output.
	shas := make([]string, 0, len(commits))
	for _, c := range commits {
		shas = append(shas, c.Hash)
	}
	assert.Equal(t, []string{"c3", "c2", "c1"}, shas)

	assert.Equal(t, "change c3", commits[0].Message)
	assert.Contains(t, commits[0].Diff, "--- main.go")
	assert.Contains(t, commits[0].Diff, "@@ -1 +1 @@ c3")
}
