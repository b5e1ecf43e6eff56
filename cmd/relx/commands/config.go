package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/git"
	"github.com/thoreinstein/relx/internal/shell"
	"github.com/thoreinstein/relx/internal/validator"
	"github.com/thoreinstein/relx/pkg/fileutil"
)

// errConfigInvalid is returned by config validate when errors were reported.
var errConfigInvalid = errors.New("configuration is invalid")

var (
	configShowFormat   string
	configValidateJSON bool
)

func init() {
	configShowCmd.Flags().StringVarP(&configShowFormat, "format", "f", "yaml",
		"output format: yaml, json, toml")
	configValidateCmd.Flags().BoolVar(&configValidateJSON, "json", false,
		"output the report as JSON")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect relx configuration",
	Long: `Inspect the release configuration.

Configuration is read from .releaserc.{yaml,yml,json,toml} in the working
directory, then $XDG_CONFIG_HOME/relx/. RELX_* environment variables
override file values. Without a subcommand, shows the effective
configuration.`,
	Example: `  # Show the effective configuration
  relx config

  # Show it as TOML
  relx config show --format toml

  # Check for problems
  relx config validate

See Also: relx run`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigShow(cmd.OutOrStdout(), cfg, configShowFormat)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Print the configuration relx would run with, after defaults and
environment overrides are applied.`,
	Example: `  # YAML (default)
  relx config show

  # JSON for scripts
  relx config show --format json

See Also: relx config validate`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigShow(cmd.OutOrStdout(), cfg, configShowFormat)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for problems",
	Long: `Check the configuration and report every problem found.

Errors are problems that stop a release from starting: an unknown plugin,
an invalid tagFormat, or no release branches. Warnings are conditions
that will make a release fail at run time, such as a missing GitHub token
or a missing script.

Exit Codes:
  0 - Configuration is valid (warnings OK)
  1 - Configuration has errors`,
	Example: `  # Validate the configuration in the working directory
  relx config validate

  # Validate a specific file
  relx config validate --config ci/.releaserc.yaml

  # Machine-readable output
  relx config validate --json

See Also: relx config show`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, err := os.Getwd()
		if err != nil {
			return errors.Wrap(err, "getting working directory")
		}
		format := validator.FormatText
		if configValidateJSON {
			format = validator.FormatJSON
		}
		return runConfigValidate(cmd, dir, format)
	},
}

func runConfigShow(w io.Writer, cfg *config.Config, format string) error {
	f, err := fileutil.ParseFormat(format)
	if err != nil {
		return errors.NewUserError(err, "Use --format yaml, json or toml")
	}
	if cfg == nil {
		cfg = config.Default()
	}
	data, err := fileutil.Marshal(cfg.AsMap(), f)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return errors.Wrap(err, "writing configuration")
}

func runConfigValidate(cmd *cobra.Command, dir string, format validator.Format) error {
	ctx := cmd.Context()
	reporter := validator.NewReporter(cmd.OutOrStdout(), format)

	loaded, err := config.Read(configFile)
	if err != nil {
		result := &validator.Result{}
		result.AddError("", err.Error(), configFile)
		if rerr := reporter.Report(result); rerr != nil {
			return rerr
		}
		return errors.NewExitError(errConfigInvalid, errors.ExitUser)
	}

	env := validator.Environment{
		Vars:       shell.EnvMap(os.Environ()),
		Dir:        dir,
		ConfigFile: config.FileUsed(),
	}
	client := git.New(dir)
	if client.IsRepo(ctx) == nil {
		env.RemoteURL, _ = client.RemoteURL(ctx, git.DefaultRemote)
	}

	result := validator.CheckConfig(loaded, env)
	if err := reporter.Report(result); err != nil {
		return err
	}
	if result.HasErrors() {
		return errors.NewExitError(errConfigInvalid, errors.ExitUser)
	}
	return nil
}
