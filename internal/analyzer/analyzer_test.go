package analyzer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
)

func commits(msgs ...string) []release.Commit {
	out := make([]release.Commit, len(msgs))
	for i, m := range msgs {
		out[i] = release.Commit{Hash: "abcdef0123456789" + string(rune('a'+i)), Message: m}
	}
	return out
}

// configured builds the analyzer the default plugin list declares.
func configured(t *testing.T) *Analyzer {
	t.Helper()
	a, err := Factory(config.DefaultPlugins()[0].Options)
	if err != nil {
		t.Fatalf("Factory() error = %v", err)
	}
	return a
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.NewContext(t.Context(), logging.ForTest(t))
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name string
		msgs []string
		want release.Type
	}{
		{
			name: "fixes only",
			msgs: []string{"fix: a", "fix(api): b"},
			want: release.Patch,
		},
		{
			name: "chores and docs only",
			msgs: []string{"chore: deps", "docs: readme", "style: fmt"},
			want: release.None,
		},
		{
			name: "feature wins over fix",
			msgs: []string{"fix: a", "feat: b"},
			want: release.Minor,
		},
		{
			name: "breaking note is capped at minor",
			msgs: []string{"feat: b\n\nBREAKING CHANGE: api removed"},
			want: release.Minor,
		},
		{
			name: "bang header is not conventional under angular",
			msgs: []string{"fix!: drop support"},
			want: release.None,
		},
		{
			name: "breaking chore is minor",
			msgs: []string{"chore: drop node 14\n\nBREAKING CHANGE: node 14 is unsupported"},
			want: release.Minor,
		},
		{
			name: "revert is patch",
			msgs: []string{`Revert "feat: b"`},
			want: release.Patch,
		},
		{
			name: "perf is patch",
			msgs: []string{"perf(db): faster"},
			want: release.Patch,
		},
		{
			name: "skipped commit is ignored",
			msgs: []string{"feat: hidden [skip release]", "docs: x"},
			want: release.None,
		},
		{
			name: "non conventional message",
			msgs: []string{"Update things"},
			want: release.None,
		},
	}

	a := configured(t)
	logger := logging.ForTest(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Analyze(logger, commits(tt.msgs...)); got != tt.want {
				t.Errorf("Analyze() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAnalyze_DefaultRulesWithoutOverride(t *testing.T) {
	a, err := New(Options{Preset: PresetAngular})
	if err != nil {
		t.Fatal(err)
	}
	got := a.Analyze(logging.ForTest(t), commits("feat: x\n\nBREAKING CHANGE: y"))
	if got != release.Major {
		t.Errorf("Analyze() = %v, want major", got)
	}
}

func TestAnalyze_ConventionalCommitsPreset(t *testing.T) {
	a, err := Factory(map[string]any{
		"preset": PresetConventionalCommits,
		"releaseRules": []any{
			map[string]any{"breaking": true, "release": "minor"},
		},
	})
	if err != nil {
		t.Fatalf("Factory() error = %v", err)
	}

	tests := []struct {
		msg  string
		want release.Type
	}{
		{"fix!: drop support", release.Minor},
		{"chore(deps)!: drop node 14", release.Minor},
		{"fix: tighten\n\nBREAKING-CHANGE: empty names rejected", release.Minor},
		{"docs: readme", release.None},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := a.Analyze(logging.ForTest(t), commits(tt.msg)); got != tt.want {
				t.Errorf("Analyze(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestClassify_CustomRules(t *testing.T) {
	a, err := Factory(map[string]any{
		"releaseRules": []any{
			map[string]any{"type": "docs", "scope": "README*", "release": "patch"},
			map[string]any{"type": "refactor", "release": false},
			map[string]any{"type": "feat", "scope": "internal", "release": "none"},
			map[string]any{"type": "build", "release": "patch"},
			map[string]any{"type": "build", "scope": "deps", "release": "minor"},
		},
	})
	if err != nil {
		t.Fatalf("Factory() error = %v", err)
	}

	tests := []struct {
		msg  string
		want release.Type
	}{
		{"docs(README.md): typo", release.Patch},
		{"docs(guide): typo", release.None},
		{"refactor: tidy", release.None},
		{"feat(internal): hidden", release.None},
		{"feat(public): shown", release.Minor},
		{"build(deps): bump", release.Minor},
		{"build: ci", release.Patch},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			if got := a.Analyze(logging.ForTest(t), commits(tt.msg)); got != tt.want {
				t.Errorf("Analyze(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name    string
		options map[string]any
	}{
		{"unknown preset", map[string]any{"preset": "eslint"}},
		{"unknown release level", map[string]any{"releaseRules": []any{map[string]any{"type": "x", "release": "huge"}}}},
		{"missing release level", map[string]any{"releaseRules": []any{map[string]any{"type": "x"}}}},
		{"bad glob", map[string]any{"releaseRules": []any{map[string]any{"type": "[", "release": "patch"}}}},
		{"unknown option", map[string]any{"parserOpts": map[string]any{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Factory(tt.options); err == nil {
				t.Error("Factory() expected error")
			}
		})
	}
}

func TestRun_SetsNextRelease(t *testing.T) {
	rc := &release.Context{
		TagFormat:   "v${version}",
		LastRelease: release.Release{Version: "2.2.5", GitTag: "v2.2.5"},
		Commits:     commits("feat(core): new api\n\nBREAKING CHANGE: v1 is gone", "fix: bug"),
	}

	if err := configured(t).Run(testContext(t), rc); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := release.Release{
		Version: "2.3.0",
		GitTag:  "v2.3.0",
		GitHead: rc.Commits[0].Hash,
		Type:    release.Minor,
	}
	if diff := cmp.Diff(want, rc.NextRelease); diff != "" {
		t.Errorf("NextRelease mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FirstRelease(t *testing.T) {
	rc := &release.Context{Commits: commits("fix: first")}

	if err := configured(t).Run(testContext(t), rc); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rc.NextRelease.Version != release.FirstVersion {
		t.Errorf("Version = %q, want %q", rc.NextRelease.Version, release.FirstVersion)
	}
	if rc.NextRelease.GitTag != "v1.0.0" {
		t.Errorf("GitTag = %q, want v1.0.0", rc.NextRelease.GitTag)
	}
}

func TestRun_NoRelease(t *testing.T) {
	tests := []struct {
		name    string
		commits []release.Commit
	}{
		{"no commits", nil},
		{"irrelevant commits", commits("chore: x", "docs: y")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := &release.Context{
				LastRelease: release.Release{Version: "1.0.0"},
				Commits:     tt.commits,
			}
			err := configured(t).Run(testContext(t), rc)
			if !errors.Is(err, release.ErrNoRelease) {
				t.Fatalf("Run() error = %v, want ErrNoRelease", err)
			}
			if rc.NextRelease != (release.Release{}) {
				t.Errorf("NextRelease = %+v, want zero value", rc.NextRelease)
			}
		})
	}
}

func TestRun_InvalidLastVersion(t *testing.T) {
	rc := &release.Context{
		LastRelease: release.Release{Version: "not-a-version"},
		Commits:     commits("feat: x"),
	}
	if err := configured(t).Run(testContext(t), rc); err == nil {
		t.Error("Run() expected error for invalid last version")
	}
}
