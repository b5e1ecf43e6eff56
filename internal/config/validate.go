package config

import (
	"fmt"
	"strings"

	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/release"
)

// Validation errors for configuration fields.
var (
	// ErrNoBranches indicates the branches list is empty.
	ErrNoBranches = errors.New("at least one release branch is required")

	// ErrNoPlugins indicates the plugins list is empty.
	ErrNoPlugins = errors.New("at least one plugin is required")

	// ErrEmptyPluginName indicates a plugin entry without a name.
	ErrEmptyPluginName = errors.New("plugin name is empty")
)

// knownPlugins lists every plugin name with a built-in stage, by short name.
var knownPlugins = map[string]struct{}{
	ShortName(PluginCommitAnalyzer): {},
	ShortName(PluginReleaseNotes):   {},
	ShortName(PluginGitHub):         {},
	ShortName(PluginExec):           {},
	ShortName(PluginGit):            {},
}

// KnownPlugin reports whether name, in full or short form, has a built-in stage.
func KnownPlugin(name string) bool {
	_, ok := knownPlugins[ShortName(name)]
	return ok
}

// PluginError reports a problem with one entry of the plugins list.
type PluginError struct {
	Index int
	Name  string
	Err   error
}

func (e *PluginError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("plugins[%d]: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("plugins[%d] %s: %v", e.Index, e.Name, e.Err)
}

func (e *PluginError) Unwrap() error {
	return e.Err
}

// Validate checks a Config for validity.
// Returns nil if valid, or a slice of validation errors.
func Validate(cfg *Config) []error {
	if cfg == nil {
		return []error{errors.New("config is nil")}
	}

	var errs []error

	if len(cfg.Branches) == 0 {
		errs = append(errs, ErrNoBranches)
	}
	for _, b := range cfg.Branches {
		if strings.TrimSpace(b) == "" {
			errs = append(errs, errors.New("branch name is empty"))
		}
	}

	if err := release.ValidateTagFormat(cfg.TagFormat); err != nil {
		errs = append(errs, err)
	}

	if len(cfg.Plugins) == 0 {
		errs = append(errs, ErrNoPlugins)
	}
	seen := make(map[string]int, len(cfg.Plugins))
	for i, p := range cfg.Plugins {
		switch {
		case strings.TrimSpace(p.Name) == "":
			errs = append(errs, &PluginError{Index: i, Err: ErrEmptyPluginName})
		case !KnownPlugin(p.Name):
			errs = append(errs, &PluginError{Index: i, Name: p.Name, Err: errors.ErrUnknownPlugin})
		default:
			short := ShortName(p.Name)
			if first, dup := seen[short]; dup {
				errs = append(errs, &PluginError{
					Index: i,
					Name:  p.Name,
					Err:   errors.Newf("duplicate of plugins[%d]", first),
				})
				continue
			}
			seen[short] = i
		}
	}

	return errs
}
