package release

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// ErrNoRelease is returned by a stage to end the run early without failure.
// It is not an error condition: the changes since the last release do not
// warrant a new one.
var ErrNoRelease = errors.New("no release necessary")

// ExternalToolError reports a subprocess that exited with a non-zero status.
type ExternalToolError struct {
	// Command is the command line that was run.
	Command string

	// ExitCode is the status the process exited with, or -1 if it did not
	// exit normally.
	ExitCode int

	// Err is the underlying error from the process runner.
	Err error
}

func (e *ExternalToolError) Error() string {
	return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}
