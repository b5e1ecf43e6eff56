// Package shell implements the exec stage, which runs user-supplied shell
// commands at points of the release lifecycle.
//
// Commands are templates. Placeholders such as ${nextRelease.version} are
// replaced with values from the release context, quoted for the shell
// when they contain anything beyond a conservative set of characters. A
// command that exits non-zero fails the stage with a
// *release.ExternalToolError.
package shell

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
)

// Name is the stage name used in logs and errors.
const Name = "exec"

// DefaultShell runs commands when no shell option is set.
const DefaultShell = "sh"

// Options configures the exec stage. At least one command must be set.
// There is no pre-flight command: nothing runs before the analyzer has
// decided that a release is due.
type Options struct {
	// PrepareCmd runs when the stage's turn comes in the pipeline.
	PrepareCmd string `mapstructure:"prepareCmd"`

	// SuccessCmd runs after every stage has succeeded.
	SuccessCmd string `mapstructure:"successCmd"`

	// Shell is the interpreter invoked with -c.
	Shell string `mapstructure:"shell"`

	// ExecCwd is the working directory, relative to the repository root.
	ExecCwd string `mapstructure:"execCwd"`
}

// Executor is the exec stage.
type Executor struct {
	opts   Options
	stdout io.Writer
	stderr io.Writer
}

// New creates an Executor that streams command output to stdout and stderr.
func New(opts Options, stdout, stderr io.Writer) (*Executor, error) {
	if opts.PrepareCmd == "" && opts.SuccessCmd == "" {
		return nil, errors.New("no command configured; set prepareCmd")
	}
	if opts.Shell == "" {
		opts.Shell = DefaultShell
	}
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	return &Executor{opts: opts, stdout: stdout, stderr: stderr}, nil
}

// Factory decodes a plugin option map and builds the stage.
func Factory(stdout, stderr io.Writer, options map[string]any) (*Executor, error) {
	var opts Options
	if err := config.DecodeOptions(options, &opts); err != nil {
		return nil, err
	}
	return New(opts, stdout, stderr)
}

// Name implements pipeline.Stage.
func (e *Executor) Name() string { return Name }

// Run runs prepareCmd, if set. In dry run the rendered command is logged
// instead.
func (e *Executor) Run(ctx context.Context, rc *release.Context) error {
	if e.opts.PrepareCmd == "" {
		return nil
	}
	return e.exec(ctx, rc, "prepareCmd", e.opts.PrepareCmd, rc.DryRun)
}

// Finalize runs successCmd, if set.
func (e *Executor) Finalize(ctx context.Context, rc *release.Context) error {
	if e.opts.SuccessCmd == "" {
		return nil
	}
	return e.exec(ctx, rc, "successCmd", e.opts.SuccessCmd, rc.DryRun)
}

// Render substitutes release variables into tmpl, shell-quoting each value.
func Render(tmpl string, rc *release.Context) (string, error) {
	return release.Render(tmpl, rc.Variables(), Quote)
}

func (e *Executor) exec(ctx context.Context, rc *release.Context, step, tmpl string, dryRun bool) error {
	logger := logging.FromContext(ctx).With("stage", Name, "step", step)

	command, err := Render(tmpl, rc)
	if err != nil {
		return errors.Wrapf(err, "rendering %s", step)
	}

	if dryRun {
		logger.Info("dry run: would run command", "command", command)
		return nil
	}

	dir := rc.Cwd
	if e.opts.ExecCwd != "" {
		dir = filepath.Join(rc.Cwd, e.opts.ExecCwd)
	}

	cmd := exec.CommandContext(ctx, e.opts.Shell, "-c", command)
	cmd.Dir = dir
	cmd.Env = environ(rc.Env)
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr

	logger.Info("running command", "command", command, "dir", dir)
	if err := cmd.Run(); err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		return &release.ExternalToolError{Command: command, ExitCode: code, Err: err}
	}
	return nil
}

// environ turns an environment map into KEY=VALUE pairs. A nil map
// inherits the process environment.
func environ(env map[string]string) []string {
	if env == nil {
		return os.Environ()
	}
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

// EnvMap converts KEY=VALUE pairs, as returned by os.Environ, into a map.
func EnvMap(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
