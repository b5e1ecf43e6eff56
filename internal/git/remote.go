package git

import (
	"net/url"
	"strings"

	"github.com/thoreinstein/relx/internal/errors"
)

// Remote identifies a hosted repository.
type Remote struct {
	Host  string
	Owner string
	Repo  string
}

// ParseRemote extracts the host, owner and repository name from a remote
// URL. It accepts https, ssh and git URLs as well as the scp-like
// "git@host:owner/repo.git" form. Credentials embedded in the URL are
// discarded.
func ParseRemote(raw string) (Remote, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Remote{}, errors.New("empty repository URL")
	}

	var host, p string
	if u, err := url.Parse(raw); err == nil && u.Scheme != "" && u.Host != "" {
		host = u.Hostname()
		p = u.Path
	} else if at := strings.Index(raw, "@"); at >= 0 && strings.Contains(raw[at:], ":") {
		host, p, _ = strings.Cut(raw[at+1:], ":")
	} else {
		return Remote{}, errors.Newf("unsupported repository URL %q", raw)
	}

	p = strings.TrimSuffix(strings.Trim(p, "/"), ".git")
	owner, repo, ok := strings.Cut(p, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return Remote{}, errors.Newf("repository URL %q does not name owner/repo", raw)
	}
	return Remote{Host: strings.ToLower(host), Owner: owner, Repo: repo}, nil
}

// WebURL returns the browsable https URL of the repository.
func (r Remote) WebURL() string {
	return "https://" + r.Host + "/" + r.Owner + "/" + r.Repo
}

// IsGitHub reports whether the remote is hosted on github.com.
func (r Remote) IsGitHub() bool {
	return r.Host == "github.com" || r.Host == "www.github.com"
}
