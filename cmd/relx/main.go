// Package main is the entry point for the relx CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/thoreinstein/relx/cmd/relx/commands"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/pipeline"
	"github.com/thoreinstein/relx/internal/release"
)

func main() {
	if err := commands.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error returned by the root command to a process exit code.
// A failing stage or external tool exits with ExitSystem; other errors use
// the code of the nearest ExitError, or ExitUser.
func exitCode(err error) int {
	if err == nil {
		return errors.ExitSuccess
	}

	var stageErr *pipeline.StageError
	var toolErr *release.ExternalToolError
	if errors.As(err, &stageErr) || errors.As(err, &toolErr) {
		return errors.ExitSystem
	}

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return errors.ExitUser
}

func printError(w io.Writer, err error) {
	red := color.New(color.FgRed, color.Bold)
	_, _ = red.Fprint(w, "Error: ")
	fmt.Fprintln(w, err)

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintf(w, "\n%s\n", exitErr.Suggestion)
	}
	if hints := errors.FlattenHints(err); hints != "" {
		fmt.Fprintf(w, "\nHint: %s\n", hints)
	}
}
