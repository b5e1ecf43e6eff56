package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/logging"
	"github.com/thoreinstein/relx/internal/release"
)

// Status is the terminal state of a run.
type Status int

const (
	// Released means every stage completed.
	Released Status = iota
	// NoRelease means a stage decided no release was necessary.
	NoRelease
	// Failed means a stage returned a fatal error.
	Failed
)

func (s Status) String() string {
	switch s {
	case Released:
		return "released"
	case NoRelease:
		return "no-release"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Phase names the part of a run in which a stage failed.
type Phase string

// Phases of a run, in execution order.
const (
	PhaseVerify   Phase = "verify"
	PhaseRun      Phase = "run"
	PhaseFinalize Phase = "finalize"
)

// Outcome describes how a run ended.
type Outcome struct {
	Status Status

	// Stage is the name of the stage that failed or stopped the run.
	Stage string

	// Completed lists the stages whose Run returned nil, in order.
	Completed []string

	// Context is the release context as the last stage left it.
	Context *release.Context
}

// StageError wraps the fatal error of a named stage.
type StageError struct {
	Stage string
	Phase Phase
	Err   error
}

func (e *StageError) Error() string {
	if e.Phase == PhaseRun || e.Phase == "" {
		return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
	}
	return fmt.Sprintf("stage %s (%s): %v", e.Stage, e.Phase, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Runner executes stages in a fixed order.
type Runner struct {
	stages []Stage
}

// NewRunner creates a Runner for stages. The order is fixed for the
// lifetime of the Runner.
func NewRunner(stages ...Stage) *Runner {
	fixed := make([]Stage, len(stages))
	copy(fixed, stages)
	return &Runner{stages: fixed}
}

// Stages returns the names of the configured stages in run order.
func (r *Runner) Stages() []string {
	names := make([]string, len(r.stages))
	for i, s := range r.stages {
		names[i] = s.Name()
	}
	return names
}

// Run executes the pipeline against rc.
//
// On success the returned Outcome has status Released or NoRelease and the
// error is nil. On failure the Outcome has status Failed, names the stage,
// and carries rc with whatever the failing stage wrote; the error is a
// *StageError.
func (r *Runner) Run(ctx context.Context, rc *release.Context) (*Outcome, error) {
	logger := logging.FromContext(ctx)
	out := &Outcome{Context: rc}

	for _, s := range r.stages {
		v, ok := s.(Verifier)
		if !ok {
			continue
		}
		logger.Debug("verifying stage", "stage", s.Name())
		if err := r.call(ctx, func() error { return v.Verify(ctx, rc) }); err != nil {
			return r.fail(out, s, PhaseVerify, err)
		}
	}

	for _, s := range r.stages {
		logger.Info("running stage", "stage", s.Name())
		start := time.Now()

		err := r.call(ctx, func() error { return s.Run(ctx, rc) })
		switch {
		case err == nil:
			out.Completed = append(out.Completed, s.Name())
			logger.Debug("stage complete", "stage", s.Name(), "elapsed", time.Since(start).Round(time.Millisecond))
		case errors.Is(err, release.ErrNoRelease):
			logger.Info("no release necessary", "stage", s.Name())
			out.Status = NoRelease
			out.Stage = s.Name()
			return out, nil
		default:
			return r.fail(out, s, PhaseRun, err)
		}
	}

	for _, s := range r.stages {
		f, ok := s.(Finalizer)
		if !ok {
			continue
		}
		logger.Debug("finalizing stage", "stage", s.Name())
		if err := r.call(ctx, func() error { return f.Finalize(ctx, rc) }); err != nil {
			return r.fail(out, s, PhaseFinalize, err)
		}
	}

	out.Status = Released
	return out, nil
}

// call runs fn unless ctx has already been cancelled.
func (r *Runner) call(ctx context.Context, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "run cancelled")
	}
	return fn()
}

func (r *Runner) fail(out *Outcome, s Stage, phase Phase, err error) (*Outcome, error) {
	out.Status = Failed
	out.Stage = s.Name()
	return out, &StageError{Stage: s.Name(), Phase: phase, Err: err}
}
