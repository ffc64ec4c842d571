// Package gitrepo reads commit records from a local git repository by
// shelling out to the git binary.
package gitrepo

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Commit is one commit record for a ref range, diff included.
type Commit struct {
	Hash    string `json:"hash"`
	Message string `json:"message"`
	Diff    string `json:"diff"`
	Author  string `json:"author"`
	Date    string `json:"date"`
}

type Repo struct {
	path   string
	runner Runner
}

func New(path string) *Repo {
	if path == "" {
		path = "."
	}
	return &Repo{path: path, runner: Runner{Timeout: 2 * time.Minute}}
}

// Path returns the repository path this Repo operates on.
func (r *Repo) Path() string { return r.path }

type Runner struct {
	Timeout time.Duration
}

func (r Runner) Git(ctx context.Context, dir string, args ...string) (string, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	c := exec.CommandContext(ctx, "git", args...)
	c.Dir = dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	if err := c.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return "", formatGitError(args, err, stderr.String())
	}
	return stdout.String(), nil
}

func formatGitError(args []string, cause error, stderr string) error {
	cmd := strings.Join(args, " ")
	stderr = strings.TrimSpace(stderr)
	if stderr != "" {
		return fmt.Errorf("git %s: %w: %s", cmd, cause, stderr)
	}
	return fmt.Errorf("git %s: %w", cmd, cause)
}

// Run executes an arbitrary git subcommand in the repo path.
func (r *Repo) Run(ctx context.Context, args ...string) (string, error) {
	return r.runner.Git(ctx, r.path, args...)
}

// IsRepo reports whether the path is inside a git work tree.
func (r *Repo) IsRepo(ctx context.Context) bool {
	_, err := r.Run(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// CurrentBranch returns the checked-out branch name.
func (r *Repo) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RemoteURL returns the URL of the origin remote, or an empty string when
// there is none.
func (r *Repo) RemoteURL(ctx context.Context) string {
	out, err := r.Run(ctx, "remote", "get-url", "origin")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// LatestTag returns the most recently created tag, or an empty string when
// the repository has no tags.
func (r *Repo) LatestTag(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "for-each-ref", "--sort=-creatordate", "--format=%(refname:short)", "--count=1", "refs/tags")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

var versionTagRegexp = regexp.MustCompile(`^v?\d+\.\d+\.\d+`)

// VersionTags returns tags that look like version numbers, newest first by
// semantic version.
func (r *Repo) VersionTags(ctx context.Context) ([]string, error) {
	out, err := r.Run(ctx, "tag", "--list")
	if err != nil {
		return nil, err
	}
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		tag := strings.TrimSpace(line)
		if tag != "" && versionTagRegexp.MatchString(tag) {
			tags = append(tags, tag)
		}
	}
	sortVersionTags(tags)
	return tags, nil
}

var numberRegexp = regexp.MustCompile(`\d+`)

func sortVersionTags(tags []string) {
	key := func(tag string) []int {
		parts := numberRegexp.FindAllString(tag, -1)
		nums := make([]int, len(parts))
		for i, p := range parts {
			nums[i], _ = strconv.Atoi(p)
		}
		return nums
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return compareIntSlices(key(tags[i]), key(tags[j])) > 0
	})
}

func compareIntSlices(a, b []int) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1
			}
			return -1
		}
	}
	return len(a) - len(b)
}

// CommitsBetween returns the commits in from..to, newest first, with their
// diffs.
func (r *Repo) CommitsBetween(ctx context.Context, from, to string) ([]Commit, error) {
	if to == "" {
		to = "HEAD"
	}
	out, err := r.Run(ctx, "rev-list", fmt.Sprintf("%s..%s", from, to))
	if err != nil {
		return nil, fmt.Errorf("list commits %s..%s: %w", from, to, err)
	}
	var shas []string
	for _, line := range strings.Split(out, "\n") {
		if sha := strings.TrimSpace(line); sha != "" {
			shas = append(shas, sha)
		}
	}
	return r.CommitsFromSHAs(ctx, shas)
}

// CommitsFromSHAs resolves each SHA into a full commit record.
func (r *Repo) CommitsFromSHAs(ctx context.Context, shas []string) ([]Commit, error) {
	commits := make([]Commit, 0, len(shas))
	for _, sha := range shas {
		commit, err := r.commit(ctx, sha)
		if err != nil {
			return nil, fmt.Errorf("read commit %s: %w", sha, err)
		}
		commits = append(commits, commit)
	}
	return commits, nil
}

// fieldSeparator keeps multi-line commit messages intact when splitting
// metadata fields.
const fieldSeparator = "\x1f"

func (r *Repo) commit(ctx context.Context, sha string) (Commit, error) {
	meta, err := r.Run(ctx, "show", "-s", "--format=%H%x1f%an%x1f%cI%x1f%B", sha)
	if err != nil {
		return Commit{}, err
	}
	fields := strings.SplitN(meta, fieldSeparator, 4)
	if len(fields) != 4 {
		return Commit{}, fmt.Errorf("unexpected metadata for %s", sha)
	}

	diff, err := r.Run(ctx, "show", "--no-color", "--no-ext-diff", "--format=", "--find-renames", sha)
	if err != nil {
		return Commit{}, err
	}

	return Commit{
		Hash:    strings.TrimSpace(fields[0]),
		Author:  fields[1],
		Date:    fields[2],
		Message: strings.TrimSpace(fields[3]),
		Diff:    diff,
	}, nil
}
