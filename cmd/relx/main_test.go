package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/pipeline"
	"github.com/thoreinstein/relx/internal/release"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, errors.ExitSuccess},
		{"plain error", errors.New("boom"), errors.ExitUser},
		{"user error", errors.NewUserError(errors.New("bad flag"), ""), errors.ExitUser},
		{"system error", errors.NewSystemError(errors.New("disk"), ""), errors.ExitSystem},
		{
			name: "stage failure",
			err:  &pipeline.StageError{Stage: "github", Phase: pipeline.PhaseRun, Err: errors.New("403")},
			want: errors.ExitSystem,
		},
		{
			name: "external tool wrapped by stage",
			err: errors.Wrap(&pipeline.StageError{
				Stage: "exec",
				Phase: pipeline.PhaseRun,
				Err:   &release.ExternalToolError{Command: "bash ./bumpVersion.sh 2.3.0", ExitCode: 4},
			}, "executing root command"),
			want: errors.ExitSystem,
		},
		{
			name: "external tool alone",
			err:  &release.ExternalToolError{Command: "false", ExitCode: 1},
			want: errors.ExitSystem,
		},
		{"config error", errors.NewConfigError(errors.New("unknown plugin")), errors.ExitUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrintError(t *testing.T) {
	origNoColor := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = origNoColor }()

	err := errors.NewConfigError(errors.WithHint(errors.New("unknown plugin \"foo\""), "check the plugins list"))

	var buf bytes.Buffer
	printError(&buf, err)
	out := buf.String()

	for _, want := range []string{
		"Error: unknown plugin \"foo\"",
		"Run: relx config validate",
		"Hint: check the plugins list",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
