package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/git"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/paths"
	"github.com/thoreinstein/relx/internal/pipeline"
	"github.com/thoreinstein/relx/internal/plugins"
	"github.com/thoreinstein/relx/internal/publish"
	"github.com/thoreinstein/relx/internal/release"
	"github.com/thoreinstein/relx/internal/shell"
	"github.com/thoreinstein/relx/pkg/fileutil"
)

var (
	runDryRun      bool
	runNoCI        bool
	runBranch      string
	runNotesFile   string
	runSummaryFile string
)

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false,
		"skip publishing, the shell hook and the commit-back")
	runCmd.Flags().BoolVar(&runNoCI, "no-ci", false,
		"allow a real release outside a CI environment")
	runCmd.Flags().StringVar(&runBranch, "branch", "",
		"branch to release (default: the checked-out branch)")
	runCmd.Flags().StringVar(&runNotesFile, "notes-file", "",
		"write the generated release notes to this file")
	runCmd.Flags().StringVar(&runSummaryFile, "summary-file", "",
		"write a run summary to this file (.yaml, .json or .toml)")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the release pipeline",
	Long: `Run the configured release plugins against the current repository.

The commits since the last release tag decide the next version. When no
commit warrants a release, relx stops without side effects and exits 0.

Outside CI the run is a dry run unless --no-ci is given. CI is detected
from the CI environment variable.`,
	Example: `  # Show what the next release would be
  relx run --dry-run

  # Release from a workstation
  relx run --no-ci

  # Keep the notes for a changelog step
  relx run --notes-file dist/NOTES.md --summary-file dist/release.json

See Also: relx config show, relx config validate`,
	Args: cobra.NoArgs,
	RunE: runRelease,
}

// runOptions are the inputs of a release run beyond the configuration.
type runOptions struct {
	Dir         string
	Branch      string
	DryRun      bool
	NoCI        bool
	NotesFile   string
	SummaryFile string
	Env         map[string]string
}

func runRelease(cmd *cobra.Command, _ []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return errors.NewSystemError(errors.Wrap(err, "getting working directory"), "")
	}

	opts := runOptions{
		Dir:         dir,
		Branch:      runBranch,
		DryRun:      runDryRun,
		NoCI:        runNoCI,
		NotesFile:   runNotesFile,
		SummaryFile: runSummaryFile,
		Env:         shell.EnvMap(os.Environ()),
	}

	deps := plugins.Deps{
		Clock:     clockwork.NewRealClock(),
		Stdout:    cmd.OutOrStdout(),
		Stderr:    cmd.ErrOrStderr(),
		NewGitHub: publish.NewGitHubClient,
	}

	return executeRelease(cmd.Context(), cmd.OutOrStdout(), cfg, opts, deps)
}

// executeRelease assembles the release context from git and cfg, runs the
// pipeline, and reports the outcome. deps.Repo defaults to the git client
// for opts.Dir.
func executeRelease(ctx context.Context, out io.Writer, cfg *config.Config, opts runOptions, deps plugins.Deps) error {
	logger := logging.FromContext(ctx)
	client := git.New(opts.Dir)

	if opts.SummaryFile != "" {
		if _, err := fileutil.FormatFromPath(opts.SummaryFile); err != nil {
			return errors.NewUserError(err, "Use a .yaml, .json or .toml summary file")
		}
	}

	if err := client.IsRepo(ctx); err != nil {
		return errors.NewUserError(err, "Run relx from inside a git repository")
	}

	branch := opts.Branch
	if branch == "" {
		b, err := client.CurrentBranch(ctx)
		if err != nil {
			return errors.NewSystemError(errors.Wrap(err, "detecting branch"), "")
		}
		branch = b
	}
	if !slices.Contains(cfg.Branches, branch) {
		if !quiet {
			fmt.Fprintf(out, "Branch %q is not a release branch (%v); nothing to do.\n", branch, cfg.Branches)
		}
		return nil
	}

	repoURL := cfg.RepositoryURL
	if repoURL == "" {
		u, err := client.RemoteURL(ctx, git.DefaultRemote)
		if err != nil {
			logger.Warn("no repository URL configured and no origin remote", "error", err)
		}
		repoURL = u
	}

	dryRun := shouldDryRun(cfg, opts)
	if dryRun && !opts.DryRun && !cfg.DryRun {
		logger.Warn("not running in CI; running in dry-run mode (use --no-ci to release)")
	}

	last, err := client.LastRelease(ctx, cfg.TagFormat)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	commits, err := client.CommitsSince(ctx, last.GitTag)
	if err != nil {
		return errors.NewSystemError(err, "")
	}
	logger.Info("found commits since last release",
		"count", len(commits), "lastRelease", last.GitTag, "repository", logging.MaskURL(repoURL))

	rc := &release.Context{
		Cwd:           opts.Dir,
		Env:           opts.Env,
		Branch:        branch,
		RepositoryURL: repoURL,
		TagFormat:     cfg.TagFormat,
		DryRun:        dryRun,
		LastRelease:   last,
		Commits:       commits,
	}

	if deps.Repo == nil {
		deps.Repo = client
	}
	stages, err := plugins.Builtin(deps).Build(cfg.Plugins)
	if err != nil {
		return errors.NewConfigError(err)
	}

	outcome, runErr := pipeline.NewRunner(stages...).Run(ctx, rc)
	if !quiet {
		printOutcome(out, outcome)
	}

	if err := writeOutputs(outcome, opts); err != nil {
		if runErr != nil {
			logger.Error("writing run outputs", "error", err)
			return runErr
		}
		return errors.NewSystemError(err, "")
	}
	return runErr
}

// shouldDryRun reports whether the run must not have side effects. A
// dry run is forced outside CI unless noCI is set.
func shouldDryRun(cfg *config.Config, opts runOptions) bool {
	if opts.DryRun || cfg.DryRun {
		return true
	}
	return !cfg.CI && !opts.NoCI
}

func printOutcome(w io.Writer, outcome *pipeline.Outcome) {
	if outcome == nil {
		return
	}
	rc := outcome.Context
	next := rc.NextRelease

	suffix := ""
	if rc.DryRun {
		suffix = color.YellowString(" (dry run)")
	}

	switch outcome.Status {
	case pipeline.Released:
		fmt.Fprintf(w, "%s %s on %s%s\n", color.GreenString("✓ Released"), next.Version, rc.Branch, suffix)
		fmt.Fprintf(w, "  type: %s\n", next.Type)
		fmt.Fprintf(w, "  tag:  %s\n", next.GitTag)
		if rc.LastRelease.Version != "" {
			fmt.Fprintf(w, "  last: %s\n", rc.LastRelease.Version)
		}
		for _, a := range rc.Releases {
			fmt.Fprintf(w, "  %s: %s\n", a.Name, a.URL)
		}
	case pipeline.NoRelease:
		fmt.Fprintf(w, "%s (%d commit(s) analyzed by %s)%s\n",
			color.CyanString("No release necessary"), len(rc.Commits), outcome.Stage, suffix)
	case pipeline.Failed:
		fmt.Fprintf(w, "%s in stage %s%s\n", color.RedString("✗ Release failed"), outcome.Stage, suffix)
		if len(outcome.Completed) > 0 {
			fmt.Fprintf(w, "  completed: %v\n", outcome.Completed)
		}
		for _, a := range rc.Releases {
			fmt.Fprintf(w, "  left behind: %s %s\n", a.Name, a.URL)
		}
	}
}

// writeOutputs writes the notes and summary files requested by opts.
func writeOutputs(outcome *pipeline.Outcome, opts runOptions) error {
	if outcome == nil {
		return nil
	}

	if opts.NotesFile != "" && outcome.Context.NextRelease.Notes != "" {
		if err := paths.EnsureParent(opts.NotesFile); err != nil {
			return errors.Wrap(err, "creating notes directory")
		}
		if err := fileutil.AtomicWriteFile(opts.NotesFile, []byte(outcome.Context.NextRelease.Notes), 0o644); err != nil {
			return errors.Wrap(err, "writing notes file")
		}
	}

	if opts.SummaryFile != "" {
		if err := paths.EnsureParent(opts.SummaryFile); err != nil {
			return errors.Wrap(err, "creating summary directory")
		}
		if err := fileutil.AtomicWriteEncoded(opts.SummaryFile, newSummary(outcome), ""); err != nil {
			return errors.Wrap(err, "writing summary file")
		}
	}
	return nil
}

// summary is the machine-readable record of a run.
type summary struct {
	Status      string     `json:"status" yaml:"status" toml:"status"`
	Stage       string     `json:"stage,omitempty" yaml:"stage,omitempty" toml:"stage,omitempty"`
	Completed   []string   `json:"completed" yaml:"completed" toml:"completed"`
	DryRun      bool       `json:"dryRun" yaml:"dryRun" toml:"dryRun"`
	Branch      string     `json:"branch" yaml:"branch" toml:"branch"`
	LastRelease releaseRef `json:"lastRelease" yaml:"lastRelease" toml:"lastRelease"`
	NextRelease releaseRef `json:"nextRelease" yaml:"nextRelease" toml:"nextRelease"`
	Releases    []artifact `json:"releases,omitempty" yaml:"releases,omitempty" toml:"releases,omitempty"`
}

type releaseRef struct {
	Version string `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	GitTag  string `json:"gitTag,omitempty" yaml:"gitTag,omitempty" toml:"gitTag,omitempty"`
	GitHead string `json:"gitHead,omitempty" yaml:"gitHead,omitempty" toml:"gitHead,omitempty"`
	Type    string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
}

type artifact struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	URL  string `json:"url" yaml:"url" toml:"url"`
}

func newSummary(outcome *pipeline.Outcome) summary {
	rc := outcome.Context
	s := summary{
		Status:    outcome.Status.String(),
		Stage:     outcome.Stage,
		Completed: outcome.Completed,
		DryRun:    rc.DryRun,
		Branch:    rc.Branch,
		LastRelease: releaseRef{
			Version: rc.LastRelease.Version,
			GitTag:  rc.LastRelease.GitTag,
			GitHead: rc.LastRelease.GitHead,
		},
		NextRelease: releaseRef{
			Version: rc.NextRelease.Version,
			GitTag:  rc.NextRelease.GitTag,
			GitHead: rc.NextRelease.GitHead,
		},
	}
	if s.Completed == nil {
		s.Completed = []string{}
	}
	if rc.NextRelease.Version != "" {
		s.NextRelease.Type = rc.NextRelease.Type.String()
	}
	for _, a := range rc.Releases {
		s.Releases = append(s.Releases, artifact{Name: a.Name, URL: a.URL})
	}
	return s
}
