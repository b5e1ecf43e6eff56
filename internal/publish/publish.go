// Package publish implements the GitHub publisher stage.
//
// Publishing happens in two steps. Run creates a draft release for the
// next tag while the tag does not exist yet. Finalize, which the runner
// calls only after every stage has succeeded, publishes the draft so that
// it picks up the tag pushed by the commit-back stage.
package publish

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"

	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/git"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
)

// Name is the stage name used in logs and errors.
const Name = "github"

// artifactName labels the release in the context's artifact list.
const artifactName = "GitHub release"

// ErrMissingToken is returned when neither GITHUB_TOKEN nor GH_TOKEN is set.
var ErrMissingToken = errors.New("no GitHub token found")

// tokenEnv lists the environment variables searched for a token, in order.
var tokenEnv = []string{"GITHUB_TOKEN", "GH_TOKEN"}

// ReleaseService is the subset of the GitHub repositories API the
// publisher needs. *github.RepositoriesService satisfies it.
type ReleaseService interface {
	CreateRelease(ctx context.Context, owner, repo string, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error)
	EditRelease(ctx context.Context, owner, repo string, id int64, release *github.RepositoryRelease) (*github.RepositoryRelease, *github.Response, error)
}

// ClientFunc creates a ReleaseService authenticated with token. apiURL is
// empty for github.com.
type ClientFunc func(token, apiURL string) (ReleaseService, error)

// NewGitHubClient is the ClientFunc backed by go-github.
func NewGitHubClient(token, apiURL string) (ReleaseService, error) {
	client := github.NewClient(nil).WithAuthToken(token)
	if apiURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(apiURL, apiURL)
		if err != nil {
			return nil, errors.Wrapf(err, "configuring GitHub API URL %q", apiURL)
		}
	}
	return client.Repositories, nil
}

// Options configures the publisher.
type Options struct {
	// GithubURL is the web URL of a GitHub Enterprise instance.
	GithubURL string `mapstructure:"githubUrl"`

	// GithubAPIURL is the API endpoint of a GitHub Enterprise instance.
	GithubAPIURL string `mapstructure:"githubApiUrl"`

	// DraftRelease leaves the release as a draft after the run.
	DraftRelease bool `mapstructure:"draftRelease"`
}

// Publisher is the GitHub publisher stage.
type Publisher struct {
	opts      Options
	newClient ClientFunc

	client    ReleaseService
	remote    git.Remote
	releaseID int64
}

// New creates a Publisher. A nil newClient uses NewGitHubClient.
func New(opts Options, newClient ClientFunc) *Publisher {
	if newClient == nil {
		newClient = NewGitHubClient
	}
	return &Publisher{opts: opts, newClient: newClient}
}

// Factory decodes a plugin option map and builds the stage.
func Factory(newClient ClientFunc, options map[string]any) (*Publisher, error) {
	var opts Options
	if err := config.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	if opts.GithubURL != "" {
		if _, err := url.ParseRequestURI(opts.GithubURL); err != nil {
			return nil, errors.Wrapf(err, "invalid githubUrl %q", opts.GithubURL)
		}
	}
	return New(opts, newClient), nil
}

// Name implements pipeline.Stage.
func (p *Publisher) Name() string { return Name }

// Verify checks that a token is available and that the repository is
// hosted on the configured GitHub instance. In dry run both problems are
// only logged.
func (p *Publisher) Verify(ctx context.Context, rc *release.Context) error {
	logger := logging.FromContext(ctx).With("stage", Name)

	remote, err := git.ParseRemote(rc.RepositoryURL)
	if err == nil && !p.hostMatches(rc, remote) {
		err = errors.Newf("repository %s is not hosted on GitHub", logging.MaskURL(rc.RepositoryURL))
	}
	if err != nil {
		if rc.DryRun {
			logger.Warn("no GitHub repository; a real run would fail", "error", err)
			return nil
		}
		return errors.WithHint(err, "set repositoryUrl in the configuration or add an origin remote")
	}
	p.remote = remote

	token := p.token(rc)
	if token == "" {
		if rc.DryRun {
			logger.Warn("no GitHub token set; a real run would fail", "env", strings.Join(tokenEnv, " or "))
			return nil
		}
		return errors.WithHint(ErrMissingToken, "export GITHUB_TOKEN with a token that can create releases")
	}

	client, err := p.newClient(token, p.apiURL(rc))
	if err != nil {
		return err
	}
	p.client = client

	logger.Debug("verified GitHub access", "owner", remote.Owner, "repo", remote.Repo)
	return nil
}

// Run creates a draft release for the next version.
func (p *Publisher) Run(ctx context.Context, rc *release.Context) error {
	logger := logging.FromContext(ctx).With("stage", Name)
	tag := rc.NextRelease.GitTag

	if rc.DryRun {
		logger.Info("dry run: would create GitHub release", "tag", tag, "owner", p.remote.Owner, "repo", p.remote.Repo)
		return nil
	}
	if p.client == nil {
		return errors.New("GitHub client not initialised; Verify must run first")
	}

	created, _, err := p.client.CreateRelease(ctx, p.remote.Owner, p.remote.Repo, &github.RepositoryRelease{
		TagName: github.String(tag),
		Name:    github.String(tag),
		Body:    github.String(rc.NextRelease.Notes),
		Draft:   github.Bool(true),
	})
	if err != nil {
		return errors.Wrapf(err, "creating GitHub release %s", tag)
	}

	p.releaseID = created.GetID()
	rc.AddRelease(release.Artifact{Name: artifactName, URL: created.GetHTMLURL(), ID: p.releaseID})

	logger.Info("created draft GitHub release", "tag", tag, "id", p.releaseID)
	return nil
}

// Finalize publishes the draft created by Run unless draftRelease is set.
func (p *Publisher) Finalize(ctx context.Context, rc *release.Context) error {
	logger := logging.FromContext(ctx).With("stage", Name)

	if rc.DryRun || p.releaseID == 0 {
		return nil
	}
	if p.opts.DraftRelease {
		logger.Info("leaving GitHub release as draft", "tag", rc.NextRelease.GitTag)
		return nil
	}

	published, _, err := p.client.EditRelease(ctx, p.remote.Owner, p.remote.Repo, p.releaseID, &github.RepositoryRelease{
		Draft: github.Bool(false),
	})
	if err != nil {
		return errors.Wrapf(err, "publishing GitHub release %s", rc.NextRelease.GitTag)
	}

	for i := range rc.Releases {
		if rc.Releases[i].Name == artifactName && rc.Releases[i].ID == p.releaseID {
			rc.Releases[i].URL = published.GetHTMLURL()
		}
	}

	logger.Info("published GitHub release", "url", published.GetHTMLURL())
	return nil
}

func (p *Publisher) token(rc *release.Context) string {
	for _, key := range tokenEnv {
		if v := rc.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func (p *Publisher) webURL(rc *release.Context) string {
	if p.opts.GithubURL != "" {
		return p.opts.GithubURL
	}
	if v := rc.Getenv("GH_URL"); v != "" {
		return v
	}
	return rc.Getenv("GITHUB_URL")
}

func (p *Publisher) apiURL(rc *release.Context) string {
	if p.opts.GithubAPIURL != "" {
		return p.opts.GithubAPIURL
	}
	if v := rc.Getenv("GITHUB_API_URL"); v != "" && !strings.Contains(v, "api.github.com") {
		return v
	}
	web := p.webURL(rc)
	if u, err := url.Parse(web); err != nil || web == "" || strings.EqualFold(u.Hostname(), "github.com") {
		return ""
	}
	return strings.TrimRight(web, "/") + "/api/v3/"
}

func (p *Publisher) hostMatches(rc *release.Context, remote git.Remote) bool {
	web := p.webURL(rc)
	if web == "" {
		return remote.IsGitHub()
	}
	u, err := url.Parse(web)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), remote.Host)
}
