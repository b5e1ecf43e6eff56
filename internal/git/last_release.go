package git

import (
	"context"

	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/release"
)

// LatestRelease picks the highest release version among tags that follow
// format. The boolean is false when no tag matches.
func LatestRelease(tags []string, format string) (release.Release, bool) {
	var (
		best  release.Release
		found bool
	)
	for _, tag := range tags {
		v, ok := release.VersionFromTag(format, tag)
		if !ok {
			continue
		}
		if !found || release.CompareVersions(v, best.Version) > 0 {
			best = release.Release{Version: v, GitTag: tag}
			found = true
		}
	}
	return best, found
}

// LastRelease finds the last release reachable from HEAD and resolves the
// commit its tag points at. A repository with no matching tags returns a
// zero Release.
func (c *Client) LastRelease(ctx context.Context, format string) (release.Release, error) {
	tags, err := c.Tags(ctx)
	if err != nil {
		return release.Release{}, errors.Wrap(err, "listing tags")
	}
	last, ok := LatestRelease(tags, format)
	if !ok {
		return release.Release{}, nil
	}
	head, err := c.TagHead(ctx, last.GitTag)
	if err != nil {
		return release.Release{}, errors.Wrapf(err, "resolving tag %s", last.GitTag)
	}
	last.GitHead = head
	return last, nil
}
