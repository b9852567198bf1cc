package release

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"
)

// GitHubSource builds release event data from GitHub releases, for runs
// that happen outside the release tool (e.g. a CI job after tagging).
type GitHubSource struct {
	client *github.Client
}

// NewGitHubSource returns a source authenticated with token when non-empty.
// baseURL overrides the API endpoint for GitHub Enterprise.
func NewGitHubSource(ctx context.Context, token, baseURL string) (*GitHubSource, error) {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	}
	client := github.NewClient(httpClient)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse GitHub API URL: %w", err)
		}
		client.BaseURL = u
	}
	return &GitHubSource{client: client}, nil
}

// ParseRepo splits "owner/repo".
func ParseRepo(fullName string) (string, string, error) {
	owner, repo, ok := strings.Cut(strings.TrimSpace(fullName), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q, expected owner/repo", fullName)
	}
	return owner, repo, nil
}

// Fetch loads the release tagged tag, or the latest release when tag is
// empty, and returns it shaped like the release tool's context data.
func (s *GitHubSource) Fetch(ctx context.Context, owner, repo, tag string) (map[string]any, error) {
	var (
		rel *github.RepositoryRelease
		err error
	)
	if tag == "" {
		rel, _, err = s.client.Repositories.GetLatestRelease(ctx, owner, repo)
	} else {
		rel, _, err = s.client.Repositories.GetReleaseByTag(ctx, owner, repo, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("fetch release %s/%s@%s: %w", owner, repo, tagOrLatest(tag), err)
	}
	return releaseData(rel), nil
}

func releaseData(rel *github.RepositoryRelease) map[string]any {
	tag := rel.GetTagName()
	next := map[string]any{
		"version": strings.TrimPrefix(tag, "v"),
		"gitTag":  tag,
		"name":    rel.GetName(),
		"notes":   rel.GetBody(),
	}
	if rel.GetPrerelease() {
		next["channel"] = "prerelease"
	}
	data := map[string]any{
		"nextRelease": next,
		"releases": []any{map[string]any{
			"name":    rel.GetName(),
			"url":     rel.GetHTMLURL(),
			"gitTag":  tag,
			"version": next["version"],
		}},
	}
	if branch := rel.GetTargetCommitish(); branch != "" {
		data["branch"] = map[string]any{"name": branch}
	}
	return data
}

func tagOrLatest(tag string) string {
	if tag == "" {
		return "latest"
	}
	return tag
}
