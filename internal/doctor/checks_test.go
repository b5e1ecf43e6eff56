package doctor

import (
	"context"
	"strings"
	"testing"

	"github.com/thoreinstein/relx/internal/analyzer"
	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/release"
	"github.com/thoreinstein/relx/internal/validator"
)

type fakeRepo struct {
	isRepoErr  error
	branch     string
	last       release.Release
	lastErr    error
	commits    []release.Commit
	commitsErr error
	sinceRef   string
}

func (r *fakeRepo) IsRepo(context.Context) error { return r.isRepoErr }

func (r *fakeRepo) CurrentBranch(context.Context) (string, error) { return r.branch, nil }

func (r *fakeRepo) LastRelease(context.Context, string) (release.Release, error) {
	return r.last, r.lastErr
}

func (r *fakeRepo) CommitsSince(_ context.Context, ref string) ([]release.Commit, error) {
	r.sinceRef = ref
	return r.commits, r.commitsErr
}

func TestToolCheck(t *testing.T) {
	missing := NewToolCheck("relx-definitely-not-installed")
	got := missing.Run(testContext(t))
	if got.Status != SeverityError {
		t.Errorf("Status = %v, want error", got.Status)
	}
	if got.Hint == "" {
		t.Error("missing tool should carry a hint")
	}
	if missing.Name() != "tool-relx-definitely-not-installed" || missing.Category() != "tools" {
		t.Errorf("Name/Category = %q/%q", missing.Name(), missing.Category())
	}
}

func TestBranchCheck(t *testing.T) {
	tests := []struct {
		name string
		repo *fakeRepo
		want Severity
	}{
		{"release branch", &fakeRepo{branch: "main"}, SeverityPass},
		{"feature branch", &fakeRepo{branch: "feature/x"}, SeverityWarning},
		{"detached head", &fakeRepo{branch: "HEAD"}, SeverityWarning},
		{"not a repository", &fakeRepo{isRepoErr: errors.ErrNotGitRepository}, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewBranchCheck(tt.repo, []string{"main", "master"}).Run(testContext(t))
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", got.Status, tt.want, got.Message)
			}
		})
	}
}

func defaultAnalyzer(t *testing.T) *analyzer.Analyzer {
	t.Helper()
	a, err := analyzer.Factory(config.DefaultPlugins()[0].Options)
	if err != nil {
		t.Fatalf("analyzer.Factory() error = %v", err)
	}
	return a
}

func TestPendingReleaseCheck(t *testing.T) {
	last := release.Release{Version: "2.2.0", GitTag: "v2.2.0"}

	tests := []struct {
		name        string
		repo        *fakeRepo
		want        Severity
		wantMessage string
	}{
		{
			name: "breaking change is a minor release",
			repo: &fakeRepo{last: last, commits: []release.Commit{
				{Hash: "b", Message: "feat: require java 11\n\nBREAKING CHANGE: java 8 is no longer supported"},
				{Hash: "a", Message: "fix: npe"},
			}},
			want:        SeverityPass,
			wantMessage: "minor release 2.3.0 pending (2 commit(s) since v2.2.0)",
		},
		{
			name:        "first release",
			repo:        &fakeRepo{commits: []release.Commit{{Hash: "a", Message: "fix: npe"}}},
			want:        SeverityPass,
			wantMessage: "patch release 1.0.0 pending (1 commit(s) since the first commit)",
		},
		{
			name:        "nothing to release",
			repo:        &fakeRepo{last: last, commits: []release.Commit{{Hash: "a", Message: "docs: readme"}}},
			want:        SeverityInfo,
			wantMessage: "no release pending (1 commit(s) since v2.2.0)",
		},
		{
			name: "tags unreadable",
			repo: &fakeRepo{lastErr: errors.New("bad object")},
			want: SeverityError,
		},
		{
			name: "log unreadable",
			repo: &fakeRepo{last: last, commitsErr: errors.New("bad revision")},
			want: SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPendingReleaseCheck(tt.repo, config.DefaultTagFormat, defaultAnalyzer(t)).Run(testContext(t))
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", got.Status, tt.want, got.Message)
			}
			if tt.wantMessage != "" && got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestPendingReleaseCheck_ReadsSinceLastTag(t *testing.T) {
	repo := &fakeRepo{last: release.Release{Version: "1.0.0", GitTag: "v1.0.0"}}
	NewPendingReleaseCheck(repo, config.DefaultTagFormat, defaultAnalyzer(t)).Run(testContext(t))
	if repo.sinceRef != "v1.0.0" {
		t.Errorf("CommitsSince ref = %q, want v1.0.0", repo.sinceRef)
	}
}

func TestConfigCheck(t *testing.T) {
	withToken := validator.Environment{
		Vars:      map[string]string{"GITHUB_TOKEN": "ghp_x"},
		RemoteURL: "git@github.com:acme/widget.git",
	}

	invalid := config.Default()
	invalid.TagFormat = "release"

	tests := []struct {
		name    string
		cfg     *config.Config
		loadErr error
		env     validator.Environment
		want    Severity
		wantIn  string
	}{
		{"valid", config.Default(), nil, withToken, SeverityPass, "5 plugin(s) configured"},
		{"missing token", config.Default(), nil, validator.Environment{RemoteURL: withToken.RemoteURL}, SeverityWarning, "GITHUB_TOKEN"},
		{"invalid tag format", invalid, nil, withToken, SeverityError, "${version}"},
		{"unreadable", nil, errors.New("yaml: line 2"), withToken, SeverityError, "cannot read configuration"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewConfigCheck(tt.cfg, tt.loadErr, tt.env).Run(testContext(t))
			if got.Status != tt.want {
				t.Errorf("Status = %v, want %v (%s)", got.Status, tt.want, got.Message)
			}
			if !strings.Contains(got.Message, tt.wantIn) {
				t.Errorf("Message = %q, want it to contain %q", got.Message, tt.wantIn)
			}
		})
	}
}

func TestCICheck(t *testing.T) {
	if got := NewCICheck(true).Run(testContext(t)); got.Status != SeverityPass {
		t.Errorf("CI: Status = %v, want pass", got.Status)
	}
	if got := NewCICheck(false).Run(testContext(t)); got.Status != SeverityInfo {
		t.Errorf("local: Status = %v, want info", got.Status)
	}
}
