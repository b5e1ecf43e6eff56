package analyzer

import (
	"context"
	"log/slog"

	"github.com/thoreinstein/relx/internal/commit"
	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
)

// Name is the stage name used in logs and errors.
const Name = "commit-analyzer"

// Presets understood by the analyzer. Both share the default rules; they
// differ in which breaking-change markers count (see commit.Dialect).
const (
	PresetAngular             = "angular"
	PresetConventionalCommits = "conventionalcommits"
)

// Options configures the analyzer.
type Options struct {
	Preset       string        `mapstructure:"preset"`
	ReleaseRules []RuleOptions `mapstructure:"releaseRules"`
}

// Analyzer is the commit-analyzer stage.
type Analyzer struct {
	rules   []Rule
	dialect commit.Dialect
}

// New builds an Analyzer from decoded options.
func New(opts Options) (*Analyzer, error) {
	switch opts.Preset {
	case "", PresetAngular, PresetConventionalCommits:
	default:
		return nil, errors.Newf("unsupported preset %q", opts.Preset)
	}

	rules := make([]Rule, 0, len(opts.ReleaseRules))
	for i, ro := range opts.ReleaseRules {
		r, err := ro.compile()
		if err != nil {
			return nil, errors.Wrapf(err, "releaseRules[%d]", i)
		}
		rules = append(rules, r)
	}
	return &Analyzer{rules: rules, dialect: commit.DialectFor(opts.Preset)}, nil
}

// Factory decodes a plugin option map and builds the stage.
func Factory(options map[string]any) (*Analyzer, error) {
	var opts Options
	if err := config.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	return New(opts)
}

// Name implements pipeline.Stage.
func (a *Analyzer) Name() string { return Name }

// Analyze returns the release type for a set of raw commits.
func (a *Analyzer) Analyze(logger *slog.Logger, raws []release.Commit) release.Type {
	level := release.None
	for _, c := range commit.ParseAll(raws, a.dialect) {
		t := Classify(c, a.rules, DefaultRules)
		logger.Debug("analyzed commit",
			"commit", c.Raw.ShortHash(),
			"type", c.Type,
			"breaking", c.Breaking,
			"release", t.String(),
		)
		level = release.MaxType(level, t)
	}
	return level
}

// Run classifies rc.Commits and fills in rc.NextRelease. It returns
// release.ErrNoRelease when the commits do not warrant a release.
func (a *Analyzer) Run(ctx context.Context, rc *release.Context) error {
	logger := logging.FromContext(ctx).With("stage", Name)

	if len(rc.Commits) == 0 {
		logger.Info("no commits since last release", "lastRelease", rc.LastRelease.GitTag)
		return release.ErrNoRelease
	}

	t := a.Analyze(logger, rc.Commits)
	if t == release.None {
		logger.Info("no relevant changes", "commits", len(rc.Commits))
		return release.ErrNoRelease
	}

	version, err := release.NextVersion(rc.LastRelease.Version, t)
	if err != nil {
		return errors.Wrap(err, "computing next version")
	}

	format := rc.TagFormat
	if format == "" {
		format = config.DefaultTagFormat
	}
	tag, err := release.TagName(format, version)
	if err != nil {
		return errors.Wrap(err, "deriving tag name")
	}

	rc.NextRelease.Type = t
	rc.NextRelease.Version = version
	rc.NextRelease.GitTag = tag
	if rc.NextRelease.GitHead == "" {
		rc.NextRelease.GitHead = rc.Commits[0].Hash
	}

	logger.Info("release type determined", "type", t.String(), "version", version, "tag", tag)
	return nil
}
