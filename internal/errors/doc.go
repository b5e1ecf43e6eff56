// Package errors provides error handling conventions for the relx CLI.
//
// This package defines sentinel errors for common failure conditions,
// an ExitError type for CLI exit code handling, and exit code constants
// following standard Unix conventions. It also re-exports the
// github.com/cockroachdb/errors helpers so callers need a single import.
//
// # Exit Codes
//
//   - ExitSuccess (0): the run completed, or no release was necessary
//   - ExitUser (1): invalid input or configuration
//   - ExitSystem (2): a stage or an external tool failed
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional suggestion:
//
//	err := relxerrors.NewUserError(relxerrors.ErrInvalidConfig, "Run: relx config validate")
//	var exitErr *relxerrors.ExitError
//	if errors.As(err, &exitErr) {
//	    os.Exit(exitErr.Code)
//	}
package errors
