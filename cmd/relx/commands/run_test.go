package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"

	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/pipeline"
	"github.com/thoreinstein/relx/internal/plugins"
	"github.com/thoreinstein/relx/internal/release"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	full := append([]string{
		"-C", dir,
		"-c", "user.name=Release Bot",
		"-c", "user.email=release@example.com",
		"-c", "commit.gpgsign=false",
		"-c", "tag.gpgsign=false",
	}, args...)
	out, err := exec.Command("git", full...).CombinedOutput()
	if err != nil {
		t.Fatalf("git %v: %v\n%s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// newRepo creates a repository on branch main with one commit per message.
func newRepo(t *testing.T, messages ...string) string {
	t.Helper()
	requireGit(t)

	dir := t.TempDir()
	runGit(t, dir, "init", "-b", "main")
	for i, msg := range messages {
		name := filepath.Join(dir, "file.txt")
		content := strings.Repeat("x", i+1)
		if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		runGit(t, dir, "add", "file.txt")
		runGit(t, dir, "commit", "-m", msg)
	}
	return dir
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return logging.NewContext(t.Context(), logging.ForTest(t))
}

// localConfig runs only the stages that need neither GitHub nor a script.
func localConfig() *config.Config {
	cfg := config.Default()
	cfg.Branches = []string{"main"}
	cfg.Plugins = []config.Plugin{
		config.DefaultPlugins()[0],
		{Name: config.PluginReleaseNotes},
		{Name: config.PluginGit, Options: map[string]any{
			"assets":  []any{"file.txt"},
			"message": "release: ${nextRelease.version}",
		}},
	}
	return cfg
}

func testDeps() plugins.Deps {
	return plugins.Deps{
		Clock:  clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)),
		Stdout: &bytes.Buffer{},
		Stderr: &bytes.Buffer{},
	}
}

func disableColor(t *testing.T) {
	t.Helper()
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })
}

func TestShouldDryRun(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		opts runOptions
		want bool
	}{
		{"local run is forced dry", config.Config{}, runOptions{}, true},
		{"local run with --no-ci", config.Config{}, runOptions{NoCI: true}, false},
		{"CI", config.Config{CI: true}, runOptions{}, false},
		{"CI with --dry-run", config.Config{CI: true}, runOptions{DryRun: true}, true},
		{"CI with dryRun in config", config.Config{CI: true, DryRun: true}, runOptions{}, true},
		{"--no-ci and --dry-run", config.Config{}, runOptions{NoCI: true, DryRun: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldDryRun(&tt.cfg, tt.opts); got != tt.want {
				t.Errorf("shouldDryRun() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSummary(t *testing.T) {
	outcome := &pipeline.Outcome{
		Status:    pipeline.Failed,
		Stage:     "exec",
		Completed: []string{"commit-analyzer", "release-notes-generator", "github"},
		Context: &release.Context{
			Branch:      "main",
			LastRelease: release.Release{Version: "2.2.0", GitTag: "v2.2.0", GitHead: "aaa"},
			NextRelease: release.Release{Version: "2.3.0", GitTag: "v2.3.0", Type: release.Minor},
			Releases:    []release.Artifact{{Name: "GitHub release", URL: "https://github.com/o/r/releases/1", ID: 1}},
		},
	}

	want := summary{
		Status:      "failed",
		Stage:       "exec",
		Completed:   []string{"commit-analyzer", "release-notes-generator", "github"},
		Branch:      "main",
		LastRelease: releaseRef{Version: "2.2.0", GitTag: "v2.2.0", GitHead: "aaa"},
		NextRelease: releaseRef{Version: "2.3.0", GitTag: "v2.3.0", Type: "minor"},
		Releases:    []artifact{{Name: "GitHub release", URL: "https://github.com/o/r/releases/1"}},
	}
	if diff := cmp.Diff(want, newSummary(outcome)); diff != "" {
		t.Errorf("newSummary() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSummary_NoRelease(t *testing.T) {
	outcome := &pipeline.Outcome{
		Status:  pipeline.NoRelease,
		Stage:   "commit-analyzer",
		Context: &release.Context{Branch: "main"},
	}
	got := newSummary(outcome)
	if got.Status != "no-release" {
		t.Errorf("Status = %q", got.Status)
	}
	if got.NextRelease.Type != "" {
		t.Errorf("NextRelease.Type = %q, want empty", got.NextRelease.Type)
	}
	if got.Completed == nil {
		t.Error("Completed should encode as an empty list")
	}
}

func TestPrintOutcome(t *testing.T) {
	disableColor(t)

	tests := []struct {
		name    string
		outcome *pipeline.Outcome
		want    []string
	}{
		{
			name: "released",
			outcome: &pipeline.Outcome{Status: pipeline.Released, Context: &release.Context{
				Branch:      "main",
				LastRelease: release.Release{Version: "2.2.0"},
				NextRelease: release.Release{Version: "2.3.0", GitTag: "v2.3.0", Type: release.Minor},
				Releases:    []release.Artifact{{Name: "GitHub release", URL: "https://example.com/r/1"}},
			}},
			want: []string{"✓ Released 2.3.0 on main", "type: minor", "tag:  v2.3.0", "last: 2.2.0", "GitHub release: https://example.com/r/1"},
		},
		{
			name: "no release in dry run",
			outcome: &pipeline.Outcome{Status: pipeline.NoRelease, Stage: "commit-analyzer", Context: &release.Context{
				DryRun:  true,
				Commits: []release.Commit{{Hash: "a"}, {Hash: "b"}},
			}},
			want: []string{"No release necessary (2 commit(s) analyzed by commit-analyzer) (dry run)"},
		},
		{
			name: "failed with a draft left behind",
			outcome: &pipeline.Outcome{
				Status:    pipeline.Failed,
				Stage:     "exec",
				Completed: []string{"github"},
				Context: &release.Context{
					Releases: []release.Artifact{{Name: "GitHub release", URL: "https://example.com/r/1"}},
				},
			},
			want: []string{"✗ Release failed in stage exec", "completed: [github]", "left behind: GitHub release https://example.com/r/1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printOutcome(&buf, tt.outcome)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("output missing %q:\n%s", want, buf.String())
				}
			}
		})
	}
}

func TestExecuteRelease_FirstReleaseDryRun(t *testing.T) {
	disableColor(t)
	dir := newRepo(t, "chore: init", "feat(api): add endpoint")
	out := t.TempDir()

	opts := runOptions{
		Dir:         dir,
		NotesFile:   filepath.Join(out, "notes", "NOTES.md"),
		SummaryFile: filepath.Join(out, "summary.json"),
		Env:         map[string]string{},
	}

	var stdout bytes.Buffer
	if err := executeRelease(testContext(t), &stdout, localConfig(), opts, testDeps()); err != nil {
		t.Fatalf("executeRelease() error = %v", err)
	}

	if !strings.Contains(stdout.String(), "✓ Released 1.0.0 on main (dry run)") {
		t.Errorf("unexpected summary:\n%s", stdout.String())
	}

	notes, err := os.ReadFile(opts.NotesFile)
	if err != nil {
		t.Fatalf("reading notes: %v", err)
	}
	for _, want := range []string{"# 1.0.0 (2026-03-14)", "### Features", "**api:** add endpoint"} {
		if !strings.Contains(string(notes), want) {
			t.Errorf("notes missing %q:\n%s", want, notes)
		}
	}

	data, err := os.ReadFile(opts.SummaryFile)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	var got summary
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decoding summary: %v", err)
	}
	if got.Status != "released" || !got.DryRun || got.NextRelease.Version != "1.0.0" || got.NextRelease.Type != "minor" {
		t.Errorf("unexpected summary: %+v", got)
	}

	if tags := runGit(t, dir, "tag", "--list"); tags != "" {
		t.Errorf("dry run created tags: %q", tags)
	}
	if count := runGit(t, dir, "rev-list", "--count", "HEAD"); count != "2" {
		t.Errorf("dry run created commits: %s", count)
	}
}

func TestExecuteRelease_CommitsBackWithNoCI(t *testing.T) {
	disableColor(t)
	dir := newRepo(t, "feat: first")
	runGit(t, dir, "tag", "v1.0.0")

	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("fixed"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGit(t, dir, "add", "file.txt")
	runGit(t, dir, "commit", "-m", "fix: correct output")

	remote := t.TempDir()
	runGit(t, remote, "init", "--bare", "-b", "main")
	runGit(t, dir, "remote", "add", "origin", remote)

	if err := os.WriteFile(filepath.Join(dir, "file.txt"), []byte("bumped"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GIT_AUTHOR_NAME", "Release Bot")
	t.Setenv("GIT_AUTHOR_EMAIL", "release@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Release Bot")
	t.Setenv("GIT_COMMITTER_EMAIL", "release@example.com")
	t.Setenv("GIT_CONFIG_COUNT", "1")
	t.Setenv("GIT_CONFIG_KEY_0", "commit.gpgsign")
	t.Setenv("GIT_CONFIG_VALUE_0", "false")

	opts := runOptions{Dir: dir, NoCI: true, Env: map[string]string{}}
	var stdout bytes.Buffer
	if err := executeRelease(testContext(t), &stdout, localConfig(), opts, testDeps()); err != nil {
		t.Fatalf("executeRelease() error = %v", err)
	}

	if !strings.Contains(stdout.String(), "✓ Released 1.0.1 on main") {
		t.Errorf("unexpected summary:\n%s", stdout.String())
	}
	if msg := runGit(t, dir, "log", "-1", "--format=%s"); msg != "release: 1.0.1" {
		t.Errorf("commit message = %q, want %q", msg, "release: 1.0.1")
	}
	if tags := runGit(t, remote, "tag", "--list"); tags != "v1.0.1" {
		t.Errorf("remote tags = %q, want v1.0.1", tags)
	}
}

func TestExecuteRelease_NoCommitsSinceLastRelease(t *testing.T) {
	disableColor(t)
	dir := newRepo(t, "feat: first")
	runGit(t, dir, "tag", "v1.0.0")

	summaryFile := filepath.Join(t.TempDir(), "summary.yaml")
	opts := runOptions{Dir: dir, NoCI: true, SummaryFile: summaryFile, Env: map[string]string{}}

	var stdout bytes.Buffer
	if err := executeRelease(testContext(t), &stdout, localConfig(), opts, testDeps()); err != nil {
		t.Fatalf("executeRelease() error = %v", err)
	}
	if !strings.Contains(stdout.String(), "No release necessary") {
		t.Errorf("unexpected summary:\n%s", stdout.String())
	}

	data, err := os.ReadFile(summaryFile)
	if err != nil {
		t.Fatalf("reading summary: %v", err)
	}
	if !strings.Contains(string(data), "status: no-release") {
		t.Errorf("summary = %s", data)
	}
	if tags := runGit(t, dir, "tag", "--list"); tags != "v1.0.0" {
		t.Errorf("tags = %q, want only v1.0.0", tags)
	}
}

func TestExecuteRelease_NotAReleaseBranch(t *testing.T) {
	dir := newRepo(t, "feat: first")

	opts := runOptions{Dir: dir, Branch: "feature/x", Env: map[string]string{}}
	var stdout bytes.Buffer
	if err := executeRelease(testContext(t), &stdout, localConfig(), opts, testDeps()); err != nil {
		t.Fatalf("executeRelease() error = %v", err)
	}
	if !strings.Contains(stdout.String(), `Branch "feature/x" is not a release branch`) {
		t.Errorf("unexpected output:\n%s", stdout.String())
	}
}

func TestExecuteRelease_Errors(t *testing.T) {
	requireGit(t)

	unknown := localConfig()
	unknown.Plugins = append(unknown.Plugins, config.Plugin{Name: "@semantic-release/npm"})

	tests := []struct {
		name     string
		dir      func(t *testing.T) string
		cfg      *config.Config
		opts     runOptions
		wantCode int
	}{
		{
			name:     "not a repository",
			dir:      func(t *testing.T) string { return t.TempDir() },
			cfg:      localConfig(),
			wantCode: errors.ExitUser,
		},
		{
			name:     "unknown plugin",
			dir:      func(t *testing.T) string { return newRepo(t, "feat: first") },
			cfg:      unknown,
			wantCode: errors.ExitUser,
		},
		{
			name:     "summary file without a known extension",
			dir:      func(t *testing.T) string { return newRepo(t, "feat: first") },
			cfg:      localConfig(),
			opts:     runOptions{SummaryFile: "summary.txt"},
			wantCode: errors.ExitUser,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			opts.Dir = tt.dir(t)
			opts.Env = map[string]string{}

			err := executeRelease(testContext(t), &bytes.Buffer{}, tt.cfg, opts, testDeps())
			var exitErr *errors.ExitError
			if !errors.As(err, &exitErr) {
				t.Fatalf("executeRelease() error = %v, want ExitError", err)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", exitErr.Code, tt.wantCode)
			}
		})
	}
}
