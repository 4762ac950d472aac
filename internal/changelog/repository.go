package changelog

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// RepositoryInfo identifies a repository on a known source hosting.
type RepositoryInfo struct {
	Host  string
	Owner string
	Repo  string
}

type hosting struct {
	file     string
	releases string
}

var knownHostings = map[string]hosting{
	"github.com": {file: "%s/blob/master/%s", releases: "%s/releases"},
	"gitlab.com": {file: "%s/-/blob/master/%s", releases: "%s/-/releases"},
}

var hostAliases = map[string]string{
	"github": "github.com",
	"gitlab": "gitlab.com",
}

var (
	scpLike   = regexp.MustCompile(`^(?:[\w.-]+@)?([\w.-]+):(.+)$`)
	shorthand = regexp.MustCompile(`^[\w.-]+/[\w.-]+$`)
)

// ParseRepositoryURL extracts the hosting, owner and repository from the
// repository field of a package document. Supports:
// - https://github.com/owner/repo(.git)
// - git+https://github.com/owner/repo.git
// - git://github.com/owner/repo.git
// - git+ssh://git@github.com/owner/repo.git
// - git@github.com:owner/repo.git
// - github:owner/repo, gitlab:owner/repo
// - owner/repo
// - https://github.com/owner/repo/tree/master/packages/name
//
// Repositories outside the known hostings are rejected.
func ParseRepositoryURL(uri string) (*RepositoryInfo, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("empty repository URL")
	}

	var host, repoPath string
	switch {
	case strings.Contains(uri, "://"):
		parsed, err := url.Parse(strings.TrimPrefix(uri, "git+"))
		if err != nil {
			return nil, fmt.Errorf("invalid repository URL %s: %w", uri, err)
		}
		host, repoPath = parsed.Hostname(), parsed.Path
	case shorthand.MatchString(uri):
		host, repoPath = "github.com", uri
	default:
		match := scpLike.FindStringSubmatch(uri)
		if match == nil {
			return nil, fmt.Errorf("invalid repository URL %s", uri)
		}
		host, repoPath = match[1], match[2]
		if alias, ok := hostAliases[host]; ok {
			host = alias
		}
	}

	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if _, ok := knownHostings[host]; !ok {
		return nil, fmt.Errorf("unknown repository hosting %q", host)
	}

	parts := strings.Split(strings.Trim(repoPath, "/"), "/")
	if len(parts) < 2 {
		return nil, fmt.Errorf("invalid repository URL %s (expected owner/repo)", uri)
	}
	owner, repo := parts[0], strings.TrimSuffix(parts[1], ".git")
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository URL %s (owner or repo is empty)", uri)
	}

	return &RepositoryInfo{Host: host, Owner: owner, Repo: repo}, nil
}

// RootURL is the web page of the repository.
func (r *RepositoryInfo) RootURL() string {
	return fmt.Sprintf("https://%s/%s/%s", r.Host, r.Owner, r.Repo)
}

// FileURL is the web page of a file on the default branch.
func (r *RepositoryInfo) FileURL(name string) string {
	return fmt.Sprintf(knownHostings[r.Host].file, r.RootURL(), name)
}

// ReleasesURL is the releases page of the repository.
func (r *RepositoryInfo) ReleasesURL() string {
	return fmt.Sprintf(knownHostings[r.Host].releases, r.RootURL())
}
