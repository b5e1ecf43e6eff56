package analyzer

import (
	"fmt"
	"path"

	"github.com/thoreinstein/relx/internal/commit"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/release"
)

// RuleOptions is the configuration form of a release rule.
type RuleOptions struct {
	Type     string `mapstructure:"type"`
	Scope    string `mapstructure:"scope"`
	Breaking *bool  `mapstructure:"breaking"`
	Revert   *bool  `mapstructure:"revert"`

	// Release is a level name, or false to suppress a release.
	Release any `mapstructure:"release"`
}

// Rule maps matching commits to a release type.
type Rule struct {
	Type     string
	Scope    string
	Breaking *bool
	Revert   *bool
	Release  release.Type
}

// DefaultRules are the Angular preset rules.
var DefaultRules = []Rule{
	{Breaking: boolPtr(true), Release: release.Major},
	{Revert: boolPtr(true), Release: release.Patch},
	{Type: "feat", Release: release.Minor},
	{Type: "fix", Release: release.Patch},
	{Type: "perf", Release: release.Patch},
}

func boolPtr(b bool) *bool { return &b }

// compile validates o and converts it into a Rule.
func (o RuleOptions) compile() (Rule, error) {
	if o.Release == nil {
		return Rule{}, errors.New("release rule is missing a release value")
	}
	t, err := release.ParseType(fmt.Sprint(o.Release))
	if err != nil {
		return Rule{}, err
	}
	for _, pattern := range []string{o.Type, o.Scope} {
		if _, err := path.Match(pattern, ""); err != nil {
			return Rule{}, errors.Wrapf(err, "invalid pattern %q", pattern)
		}
	}
	return Rule{
		Type:     o.Type,
		Scope:    o.Scope,
		Breaking: o.Breaking,
		Revert:   o.Revert,
		Release:  t,
	}, nil
}

// Matches reports whether every field set on r matches c.
func (r Rule) Matches(c commit.Commit) bool {
	if r.Type != "" && !glob(r.Type, c.Type) {
		return false
	}
	if r.Scope != "" && !glob(r.Scope, c.Scope) {
		return false
	}
	if r.Breaking != nil && *r.Breaking != c.Breaking {
		return false
	}
	if r.Revert != nil && *r.Revert != c.Revert {
		return false
	}
	return true
}

func glob(pattern, s string) bool {
	ok, err := path.Match(pattern, s)
	return err == nil && ok
}

// Classify returns the release type of a single commit. Custom rules take
// precedence over defaults; among matching rules of one set the highest
// level wins.
func Classify(c commit.Commit, custom, defaults []Rule) release.Type {
	if t, ok := highest(c, custom); ok {
		return t
	}
	t, _ := highest(c, defaults)
	return t
}

func highest(c commit.Commit, rules []Rule) (release.Type, bool) {
	var (
		level   = release.None
		matched bool
	)
	for _, r := range rules {
		if !r.Matches(c) {
			continue
		}
		matched = true
		level = release.MaxType(level, r.Release)
	}
	return level, matched
}
