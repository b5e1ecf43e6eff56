// Package plugins registers the built-in stages under their plugin names.
package plugins

import (
	"io"

	"github.com/jonboulle/clockwork"

	"github.com/thoreinstein/relx/internal/analyzer"
	"github.com/thoreinstein/relx/internal/commitback"
	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/notes"
	"github.com/thoreinstein/relx/internal/pipeline"
	"github.com/thoreinstein/relx/internal/publish"
	"github.com/thoreinstein/relx/internal/shell"
)

// Deps carries what the built-in stages need from the outside world.
type Deps struct {
	Repo      commitback.Repository
	Clock     clockwork.Clock
	Stdout    io.Writer
	Stderr    io.Writer
	NewGitHub publish.ClientFunc
}

// Builtin returns a registry holding every built-in plugin.
func Builtin(deps Deps) *pipeline.Registry {
	r := pipeline.NewRegistry()
	mustRegister(r, config.PluginCommitAnalyzer, func(opts map[string]any) (pipeline.Stage, error) {
		return analyzer.Factory(opts)
	})
	mustRegister(r, config.PluginReleaseNotes, func(opts map[string]any) (pipeline.Stage, error) {
		return notes.Factory(deps.Clock, opts)
	})
	mustRegister(r, config.PluginGitHub, func(opts map[string]any) (pipeline.Stage, error) {
		return publish.Factory(deps.NewGitHub, opts)
	})
	mustRegister(r, config.PluginExec, func(opts map[string]any) (pipeline.Stage, error) {
		return shell.Factory(deps.Stdout, deps.Stderr, opts)
	})
	mustRegister(r, config.PluginGit, func(opts map[string]any) (pipeline.Stage, error) {
		return commitback.Factory(deps.Repo, opts)
	})
	return r
}

func mustRegister(r *pipeline.Registry, name string, f pipeline.Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}
