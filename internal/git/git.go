// Package git wraps the git binary for the operations a release needs:
// reading tags and commit history, and committing, tagging and pushing the
// release commit.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
)

// Field and record separators used in --format strings. They cannot occur
// in commit messages typed by humans.
const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// DefaultRemote is the remote used for pushing and for discovering the repository URL.
const DefaultRemote = "origin"

// IsURL returns true if s looks like a git repository URL.
// It checks for:
//   - URLs containing "://" (e.g., https://, git://)
//   - URLs ending with ".git"
//   - SSH-style URLs starting with "git@"
func IsURL(s string) bool {
	if strings.Contains(s, "://") {
		return true
	}
	if strings.HasSuffix(s, ".git") {
		return true
	}
	if strings.HasPrefix(s, "git@") {
		return true
	}
	return false
}

// Client runs git commands in a working directory.
type Client struct {
	Dir string
}

// New returns a Client for the repository at dir.
func New(dir string) *Client {
	return &Client{Dir: dir}
}

// run executes git with args and returns trimmed stdout. On failure the
// error includes git's stderr.
func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	full := append([]string{"-C", c.Dir}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logging.FromContext(ctx).Log(ctx, logging.LevelTrace, "git", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", errors.Wrapf(err, "git %s", args[0])
		}
		return "", errors.Wrapf(err, "git %s: %s", args[0], msg)
	}
	return strings.TrimRight(stdout.String(), "\n"), nil
}

// IsRepo returns errors.ErrNotGitRepository if Dir is not inside a work tree.
func (c *Client) IsRepo(ctx context.Context) error {
	out, err := c.run(ctx, "rev-parse", "--is-inside-work-tree")
	if err != nil || out != "true" {
		return errors.Wrapf(errors.ErrNotGitRepository, "%s", c.Dir)
	}
	return nil
}

// HeadSHA returns the full hash of HEAD.
func (c *Client) HeadSHA(ctx context.Context) (string, error) {
	return c.run(ctx, "rev-parse", "HEAD")
}

// CurrentBranch returns the checked-out branch name. It returns "HEAD" when
// the work tree is detached.
func (c *Client) CurrentBranch(ctx context.Context) (string, error) {
	return c.run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
}

// RemoteURL returns the fetch URL of remote.
func (c *Client) RemoteURL(ctx context.Context, remote string) (string, error) {
	return c.run(ctx, "remote", "get-url", remote)
}

// Tags returns every tag reachable from HEAD.
func (c *Client) Tags(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "tag", "--merged", "HEAD")
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// TagHead returns the commit a tag points at.
func (c *Client) TagHead(ctx context.Context, tag string) (string, error) {
	return c.run(ctx, "rev-list", "-n", "1", tag)
}

// CommitsSince returns the commits reachable from HEAD but not from ref,
// newest first. An empty ref returns the whole history.
func (c *Client) CommitsSince(ctx context.Context, ref string) ([]release.Commit, error) {
	args := []string{"log", "--format=%H" + fieldSep + "%an" + fieldSep + "%aI" + fieldSep + "%B" + recordSep}
	if ref != "" {
		args = append(args, ref+"..HEAD")
	} else {
		args = append(args, "HEAD")
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "reading commits since %q", ref)
	}
	return parseLog(out)
}

func parseLog(out string) ([]release.Commit, error) {
	var commits []release.Commit
	for _, record := range strings.Split(out, recordSep) {
		record = strings.TrimLeft(record, "\n")
		if strings.TrimSpace(record) == "" {
			continue
		}
		parts := strings.SplitN(record, fieldSep, 4)
		if len(parts) != 4 {
			return nil, errors.Newf("malformed git log record %q", record)
		}
		date, err := time.Parse(time.RFC3339, parts[2])
		if err != nil {
			return nil, errors.Wrapf(err, "parsing commit date of %s", parts[0])
		}
		commits = append(commits, release.Commit{
			Hash:    parts[0],
			Author:  parts[1],
			Date:    date,
			Message: strings.TrimSpace(parts[3]),
		})
	}
	return commits, nil
}

// Add stages paths.
func (c *Client) Add(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := c.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// HasStagedChanges reports whether the index differs from HEAD.
func (c *Client) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := c.run(ctx, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return true, nil
	}
	return false, err
}

// Commit records the staged changes with message.
func (c *Client) Commit(ctx context.Context, message string) error {
	_, err := c.run(ctx, "commit", "-m", message)
	return err
}

// Tag creates a lightweight tag at ref.
func (c *Client) Tag(ctx context.Context, name, ref string) error {
	_, err := c.run(ctx, "tag", name, ref)
	return err
}

// Push pushes refspec to remote.
func (c *Client) Push(ctx context.Context, remote, refspec string) error {
	_, err := c.run(ctx, "push", remote, refspec)
	return err
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
