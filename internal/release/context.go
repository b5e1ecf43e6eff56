package release

import "time"

// Commit is a raw commit as read from git, before any message parsing.
type Commit struct {
	Hash    string
	Author  string
	Date    time.Time
	Message string
}

// ShortHash returns the first seven characters of the commit hash.
func (c Commit) ShortHash() string {
	if len(c.Hash) <= 7 {
		return c.Hash
	}
	return c.Hash[:7]
}

// Release describes either the last published release or the proposed next one.
type Release struct {
	// Version is the semantic version without a "v" prefix. Empty when
	// there is no previous release.
	Version string

	// GitTag is the tag name derived from the tag format.
	GitTag string

	// GitHead is the commit the release points at.
	GitHead string

	// Type is the classification that produced this release. Only set on
	// the next release.
	Type Type

	// Notes holds the generated release notes.
	Notes string
}

// Artifact is a reference to something a publish stage produced.
type Artifact struct {
	// Name identifies the publisher, e.g. "GitHub release".
	Name string

	// URL locates the artifact.
	URL string

	// ID is a publisher-specific identifier, used by later lifecycle steps.
	ID int64
}

// Context is the mutable record shared by all stages in a run.
type Context struct {
	// Cwd is the repository working directory.
	Cwd string

	// Env holds the environment visible to stages.
	Env map[string]string

	// Branch is the name of the branch being released.
	Branch string

	// RepositoryURL is the remote URL of the repository.
	RepositoryURL string

	// TagFormat is the template used to derive tag names, e.g. "v${version}".
	TagFormat string

	// DryRun makes side-effecting stages log instead of act.
	DryRun bool

	LastRelease Release
	NextRelease Release

	// Commits are the commits made since LastRelease, newest first.
	Commits []Commit

	// Releases collects artifact references produced by publish stages.
	Releases []Artifact
}

// Getenv returns the value of key from Env.
func (c *Context) Getenv(key string) string {
	if c.Env == nil {
		return ""
	}
	return c.Env[key]
}

// AddRelease records a published artifact.
func (c *Context) AddRelease(a Artifact) {
	c.Releases = append(c.Releases, a)
}
