// Package commitback implements the git stage: it commits the files a
// release changed, tags the release and pushes both to the remote.
package commitback

import (
	"context"

	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/git"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
)

// Name is the stage name used in logs and errors.
const Name = "git"

// DefaultMessage is the commit message template used when none is configured.
const DefaultMessage = "chore(release): ${nextRelease.version} [skip ci]\n\n${nextRelease.notes}"

// DefaultAssets are committed when the assets option is absent.
var DefaultAssets = []string{"CHANGELOG.md"}

// Repository is the git access the stage needs. *git.Client satisfies it.
type Repository interface {
	Add(ctx context.Context, paths ...string) error
	HasStagedChanges(ctx context.Context) (bool, error)
	Commit(ctx context.Context, message string) error
	HeadSHA(ctx context.Context) (string, error)
	Tag(ctx context.Context, name, ref string) error
	Push(ctx context.Context, remote, refspec string) error
}

// Options configures the stage.
type Options struct {
	// Assets lists files or glob patterns to commit. Entries may be nested
	// one level deep; false disables committing.
	Assets any `mapstructure:"assets"`

	// Message is the commit message template.
	Message string `mapstructure:"message"`

	// Remote is the git remote to push to.
	Remote string `mapstructure:"remote"`
}

// CommitBack is the git commit-back stage.
type CommitBack struct {
	repo    Repository
	assets  []string
	message string
	remote  string
}

// New creates the stage.
func New(repo Repository, opts Options) (*CommitBack, error) {
	assets := DefaultAssets
	if opts.Assets != nil {
		var err error
		assets, err = flattenAssets(opts.Assets)
		if err != nil {
			return nil, err
		}
	}

	c := &CommitBack{
		repo:    repo,
		assets:  assets,
		message: opts.Message,
		remote:  opts.Remote,
	}
	if c.message == "" {
		c.message = DefaultMessage
	}
	if c.remote == "" {
		c.remote = git.DefaultRemote
	}
	return c, nil
}

// Factory decodes a plugin option map and builds the stage.
func Factory(repo Repository, options map[string]any) (*CommitBack, error) {
	var opts Options
	if err := config.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	return New(repo, opts)
}

// Name implements pipeline.Stage.
func (c *CommitBack) Name() string { return Name }

// Message renders the commit message for rc.
func (c *CommitBack) Message(rc *release.Context) (string, error) {
	msg, err := rc.Render(c.message)
	if err != nil {
		return "", errors.Wrap(err, "rendering commit message")
	}
	return msg, nil
}

// Run commits the assets, tags the release and pushes.
func (c *CommitBack) Run(ctx context.Context, rc *release.Context) error {
	logger := logging.FromContext(ctx).With("stage", Name)

	tag := rc.NextRelease.GitTag
	if tag == "" {
		return errors.New("next release tag is not set; the commit analyzer must run first")
	}
	if rc.Branch == "" {
		return errors.New("release branch is not set")
	}

	msg, err := c.Message(rc)
	if err != nil {
		return err
	}
	files, err := resolveAssets(rc.Cwd, c.assets)
	if err != nil {
		return err
	}

	if rc.DryRun {
		logger.Info("dry run: would commit and tag",
			"files", files,
			"message", msg,
			"tag", tag,
			"remote", c.remote,
			"branch", rc.Branch,
		)
		return nil
	}

	if err := c.repo.Add(ctx, files...); err != nil {
		return errors.Wrap(err, "staging release assets")
	}
	changed, err := c.repo.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if changed {
		if err := c.repo.Commit(ctx, msg); err != nil {
			return errors.Wrap(err, "committing release assets")
		}
		logger.Info("committed release assets", "files", files)
	} else {
		logger.Info("no release assets changed; tagging without a commit")
	}

	head, err := c.repo.HeadSHA(ctx)
	if err != nil {
		return err
	}
	rc.NextRelease.GitHead = head

	if err := c.repo.Tag(ctx, tag, head); err != nil {
		return errors.Wrapf(err, "creating tag %s", tag)
	}
	if err := c.repo.Push(ctx, c.remote, "HEAD:refs/heads/"+rc.Branch); err != nil {
		return errors.Wrapf(err, "pushing %s", rc.Branch)
	}
	if err := c.repo.Push(ctx, c.remote, "refs/tags/"+tag); err != nil {
		return errors.Wrapf(err, "pushing tag %s", tag)
	}

	logger.Info("pushed release", "tag", tag, "head", head)
	return nil
}
