package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/relx/internal/analyzer"
	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/doctor"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/git"
	"github.com/thoreinstein/relx/internal/shell"
	"github.com/thoreinstein/relx/internal/validator"
)

var (
	doctorJSON bool
	doctorAll  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVar(&doctorAll, "all", false,
		"show every check, including passed ones")
	doctorCmd.MarkFlagsMutuallyExclusive("json", "all")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that a release can run here",
	Long: `Run pre-flight checks for relx run: required tools, the git work tree
and branch, the configuration, and the pending release.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --json      Machine-readable JSON output

Exit codes:
  0 - No errors or warnings
  1 - Warnings present, no errors
  2 - Errors present`,
	Example: `  # Check the current repository
  relx doctor

  # Show every check
  relx doctor --all

See Also: relx config validate, relx run`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

// errDoctorWarnings is a sentinel error for exit code 1.
var errDoctorWarnings = errors.New("warnings found")

// errDoctorErrors is a sentinel error for exit code 2.
var errDoctorErrors = errors.New("errors found")

func runDoctor(cmd *cobra.Command, _ []string) error {
	dir, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getting working directory")
	}

	loaded, loadErr := config.Read(configFile)
	env := shell.EnvMap(os.Environ())

	report := buildDoctorRunner(cmd, dir, loaded, loadErr, env).Run(cmd.Context())

	if !quiet {
		if err := outputDoctorReport(cmd.OutOrStdout(), report, doctorJSON, doctorAll); err != nil {
			return err
		}
	}

	if report.HasErrors() {
		return errors.NewExitError(errDoctorErrors, errors.ExitSystem)
	}
	if report.HasWarnings() {
		return errors.NewExitError(errDoctorWarnings, errors.ExitUser)
	}
	return nil
}

// buildDoctorRunner assembles the checks for dir. Repository checks are
// skipped when the configuration could not be read.
func buildDoctorRunner(cmd *cobra.Command, dir string, cfg *config.Config, loadErr error, env map[string]string) *doctor.Runner {
	ctx := cmd.Context()
	client := git.New(dir)

	runner := doctor.NewRunner(clockwork.NewRealClock())
	runner.AddCheck(doctor.NewToolCheck("git"))

	inRepo := client.IsRepo(ctx) == nil

	vEnv := validator.Environment{Vars: env, Dir: dir, ConfigFile: config.FileUsed()}
	if inRepo {
		vEnv.RemoteURL, _ = client.RemoteURL(ctx, git.DefaultRemote)
	}
	runner.AddCheck(doctor.NewConfigCheck(cfg, loadErr, vEnv))
	if loadErr != nil {
		return runner
	}

	for _, p := range cfg.Plugins {
		if config.ShortName(p.Name) != config.ShortName(config.PluginExec) {
			continue
		}
		var opts shell.Options
		if config.DecodeOptions(p.Options, &opts) == nil {
			sh := opts.Shell
			if sh == "" {
				sh = shell.DefaultShell
			}
			runner.AddCheck(doctor.NewToolCheck(sh))
		}
	}

	runner.AddCheck(doctor.NewBranchCheck(client, cfg.Branches))
	if inRepo {
		if a := configuredAnalyzer(cfg); a != nil {
			runner.AddCheck(doctor.NewPendingReleaseCheck(client, cfg.TagFormat, a))
		}
	}
	runner.AddCheck(doctor.NewCICheck(cfg.CI))
	return runner
}

// configuredAnalyzer builds the commit analyzer from cfg, or nil when the
// pipeline has none or its options are invalid.
func configuredAnalyzer(cfg *config.Config) *analyzer.Analyzer {
	for _, p := range cfg.Plugins {
		if config.ShortName(p.Name) != analyzer.Name {
			continue
		}
		a, err := analyzer.Factory(p.Options)
		if err != nil {
			return nil
		}
		return a
	}
	return nil
}

func outputDoctorReport(w io.Writer, report *doctor.Report, asJSON, showAll bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "encoding JSON")
	}

	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		fmt.Fprintf(w, "%s [%s] %s: %s\n", statusIcon(result.Status), result.Category, result.Name, result.Message)

		if result.Hint != "" && (result.Status == doctor.SeverityError || result.Status == doctor.SeverityWarning) {
			fmt.Fprintf(w, "  hint: %s\n", result.Hint)
		}
	}

	if hasOutput {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)
	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return color.GreenString("✓")
	case doctor.SeverityInfo:
		return color.BlueString("ℹ")
	case doctor.SeverityWarning:
		return color.YellowString("⚠")
	case doctor.SeverityError:
		return color.RedString("✗")
	default:
		return "?"
	}
}
