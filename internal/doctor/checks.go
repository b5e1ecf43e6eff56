package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"

	"github.com/thoreinstein/relx/internal/analyzer"
	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
	"github.com/thoreinstein/relx/internal/validator"
)

// ToolCheck verifies that an executable is on PATH.
type ToolCheck struct {
	tool string
}

var _ Check = (*ToolCheck)(nil)

// NewToolCheck creates a check for the executable tool.
func NewToolCheck(tool string) *ToolCheck {
	return &ToolCheck{tool: tool}
}

// Name returns the unique identifier for this check.
func (c *ToolCheck) Name() string { return "tool-" + c.tool }

// Category returns the grouping for this check.
func (c *ToolCheck) Category() string { return "tools" }

// Run looks the tool up on PATH.
func (c *ToolCheck) Run(_ context.Context) *CheckResult {
	path, err := exec.LookPath(c.tool)
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: c.tool + " not found on PATH",
			Hint:    "Install " + c.tool + " or add it to PATH",
		}
	}
	return &CheckResult{
		Status:  SeverityPass,
		Message: c.tool + " found",
		Details: map[string]any{"path": path},
	}
}

// Repository is the git access the repository checks need.
// *git.Client satisfies it.
type Repository interface {
	IsRepo(ctx context.Context) error
	CurrentBranch(ctx context.Context) (string, error)
	LastRelease(ctx context.Context, format string) (release.Release, error)
	CommitsSince(ctx context.Context, ref string) ([]release.Commit, error)
}

// BranchCheck verifies the work tree is on a release branch.
type BranchCheck struct {
	repo     Repository
	branches []string
}

var _ Check = (*BranchCheck)(nil)

// NewBranchCheck creates a check that the current branch is one of branches.
func NewBranchCheck(repo Repository, branches []string) *BranchCheck {
	return &BranchCheck{repo: repo, branches: branches}
}

// Name returns the unique identifier for this check.
func (c *BranchCheck) Name() string { return "release-branch" }

// Category returns the grouping for this check.
func (c *BranchCheck) Category() string { return "git" }

// Run inspects the checked-out branch.
func (c *BranchCheck) Run(ctx context.Context) *CheckResult {
	if err := c.repo.IsRepo(ctx); err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: "not inside a git work tree",
			Hint:    "Run relx from the repository you want to release",
		}
	}

	branch, err := c.repo.CurrentBranch(ctx)
	if err != nil {
		return &CheckResult{Status: SeverityError, Message: fmt.Sprintf("cannot read current branch: %v", err)}
	}
	details := map[string]any{"branch": branch, "releaseBranches": c.branches}

	switch {
	case branch == "HEAD":
		return &CheckResult{
			Status:  SeverityWarning,
			Message: "HEAD is detached",
			Details: details,
			Hint:    "Check out a release branch or pass --branch to relx run",
		}
	case !slices.Contains(c.branches, branch):
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("%s is not a release branch; relx run will do nothing", branch),
			Details: details,
			Hint:    "Add it to branches in the configuration",
		}
	}
	return &CheckResult{Status: SeverityPass, Message: "on release branch " + branch, Details: details}
}

// PendingReleaseCheck reports what relx run would release.
type PendingReleaseCheck struct {
	repo      Repository
	tagFormat string
	analyzer  *analyzer.Analyzer
}

var _ Check = (*PendingReleaseCheck)(nil)

// NewPendingReleaseCheck creates a check that classifies the commits since
// the last release with a.
func NewPendingReleaseCheck(repo Repository, tagFormat string, a *analyzer.Analyzer) *PendingReleaseCheck {
	return &PendingReleaseCheck{repo: repo, tagFormat: tagFormat, analyzer: a}
}

// Name returns the unique identifier for this check.
func (c *PendingReleaseCheck) Name() string { return "pending-release" }

// Category returns the grouping for this check.
func (c *PendingReleaseCheck) Category() string { return "git" }

// Run reads the last release and the commits since it.
func (c *PendingReleaseCheck) Run(ctx context.Context) *CheckResult {
	last, err := c.repo.LastRelease(ctx, c.tagFormat)
	if err != nil {
		return &CheckResult{Status: SeverityError, Message: fmt.Sprintf("cannot read release tags: %v", err)}
	}
	commits, err := c.repo.CommitsSince(ctx, last.GitTag)
	if err != nil {
		return &CheckResult{Status: SeverityError, Message: fmt.Sprintf("cannot read commits: %v", err)}
	}

	details := map[string]any{"commits": len(commits)}
	if last.GitTag != "" {
		details["lastRelease"] = last.GitTag
	}

	typ := c.analyzer.Analyze(logging.FromContext(ctx), commits)
	if typ == release.None {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: fmt.Sprintf("no release pending (%d commit(s) since %s)", len(commits), describeLast(last)),
			Details: details,
		}
	}

	next, err := release.NextVersion(last.Version, typ)
	if err != nil {
		return &CheckResult{Status: SeverityError, Message: fmt.Sprintf("cannot compute next version: %v", err), Details: details}
	}
	details["nextRelease"] = next
	details["type"] = typ.String()
	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%s release %s pending (%d commit(s) since %s)", typ, next, len(commits), describeLast(last)),
		Details: details,
	}
}

func describeLast(last release.Release) string {
	if last.GitTag == "" {
		return "the first commit"
	}
	return last.GitTag
}

// ConfigCheck summarizes the configuration validation result.
type ConfigCheck struct {
	cfg     *config.Config
	loadErr error
	env     validator.Environment
}

var _ Check = (*ConfigCheck)(nil)

// NewConfigCheck creates a check over cfg. loadErr is the error reading
// the configuration, if any, and takes precedence over cfg.
func NewConfigCheck(cfg *config.Config, loadErr error, env validator.Environment) *ConfigCheck {
	return &ConfigCheck{cfg: cfg, loadErr: loadErr, env: env}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string { return "configuration" }

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string { return "config" }

// Run validates the configuration and the environment it needs.
func (c *ConfigCheck) Run(_ context.Context) *CheckResult {
	if c.loadErr != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot read configuration: %v", c.loadErr),
			Hint:    "Run: relx config validate",
		}
	}

	result := validator.CheckConfig(c.cfg, c.env)
	details := map[string]any{"plugins": pluginNames(c.cfg.Plugins)}
	if c.env.ConfigFile != "" {
		details["file"] = c.env.ConfigFile
	}

	if errs := result.Errors(); len(errs) > 0 {
		return &CheckResult{
			Status:  SeverityError,
			Message: issuesMessage(errs),
			Details: details,
			Hint:    "Run: relx config validate",
		}
	}
	if warnings := result.Warnings(); len(warnings) > 0 {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: issuesMessage(warnings),
			Details: details,
			Hint:    "Run: relx config validate",
		}
	}
	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d plugin(s) configured", len(c.cfg.Plugins)),
		Details: details,
	}
}

func issuesMessage(issues []validator.Issue) string {
	msgs := make([]string, len(issues))
	for i, issue := range issues {
		msgs[i] = issue.Message
		if issue.Field != "" {
			msgs[i] = issue.Field + ": " + issue.Message
		}
	}
	return strings.Join(msgs, "; ")
}

func pluginNames(plugins []config.Plugin) []string {
	names := make([]string, len(plugins))
	for i, p := range plugins {
		names[i] = config.ShortName(p.Name)
	}
	return names
}

// CICheck reports whether relx run will default to a dry run.
type CICheck struct {
	ci bool
}

var _ Check = (*CICheck)(nil)

// NewCICheck creates the check. ci is the effective ci configuration value.
func NewCICheck(ci bool) *CICheck {
	return &CICheck{ci: ci}
}

// Name returns the unique identifier for this check.
func (c *CICheck) Name() string { return "ci" }

// Category returns the grouping for this check.
func (c *CICheck) Category() string { return "environment" }

// Run reports the CI state.
func (c *CICheck) Run(_ context.Context) *CheckResult {
	if c.ci {
		return &CheckResult{Status: SeverityPass, Message: "running in CI"}
	}
	return &CheckResult{
		Status:  SeverityInfo,
		Message: "not running in CI; relx run is a dry run unless --no-ci is given",
	}
}
