package pipeline

import (
	"context"

	"github.com/thoreinstein/relx/internal/release"
)

// Stage is one step of a release.
type Stage interface {
	// Name identifies the stage in logs and errors.
	Name() string

	// Run reads and updates rc. It returns release.ErrNoRelease to end the
	// run successfully, or any other error to abort it.
	Run(ctx context.Context, rc *release.Context) error
}

// Verifier is implemented by stages that check preconditions, such as
// credentials, before any stage of the run has side effects.
type Verifier interface {
	Verify(ctx context.Context, rc *release.Context) error
}

// Finalizer is implemented by stages that need a last step once every
// stage has succeeded.
type Finalizer interface {
	Finalize(ctx context.Context, rc *release.Context) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc struct {
	StageName string
	Fn        func(ctx context.Context, rc *release.Context) error
}

// Name returns the stage name.
func (s StageFunc) Name() string { return s.StageName }

// Run calls the wrapped function.
func (s StageFunc) Run(ctx context.Context, rc *release.Context) error {
	return s.Fn(ctx, rc)
}
