// Package commands implements the CLI commands for relx.
package commands

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/thoreinstein/relx/cmd"
	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/logging"
)

// envFile is loaded from the working directory before configuration is read.
const envFile = ".env"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// cfg is the configuration loaded by initConfig.
var cfg *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"write logs to file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default: .releaserc.{yaml,json,toml} or $XDG_CONFIG_HOME/relx/)")

	rootCmd.Version = cmd.Version
	rootCmd.SetVersionTemplate("relx version {{.Version}}\n")

	// Silence errors and usage so main controls error output
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
}

func initConfig() {
	if err := loadEnvFile(envFile); err != nil {
		configLoadErr = err
		return
	}
	config.Init()
	cfg, configLoadErr = config.Load(configFile)
}

// loadEnvFile reads KEY=VALUE pairs from path into the process environment.
// Variables that are already set win. A missing file is not an error.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "checking %s", path)
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "loading %s", path)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "relx",
	Short: "Run a semantic release pipeline",
	Long: `relx analyzes the commits since the last release, decides the next
semantic version, and runs the configured release plugins in order:
release notes, a GitHub release, a shell hook, and a git commit-back.

Configuration is read from .releaserc.{yaml,yml,json,toml} in the working
directory, or from $XDG_CONFIG_HOME/relx/. Without a configuration file
the built-in plugin list is used.

Outside CI, runs are dry runs unless --no-ci is given.`,
	Example: `  # Preview the next release
  relx run --dry-run

  # Release from a local checkout
  relx run --no-ci

  # Check the configuration
  relx config validate

  See Also: relx config show, relx version`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfigLoaded(cmd, args)
	},
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

// setupLogging configures the default logger based on verbosity flags.
func setupLogging(cmd *cobra.Command) error {
	if quiet && verbosity > 0 {
		return errors.NewUserError(nil, "cannot use --quiet and --verbose together")
	}

	var level slog.Level
	if quiet {
		level = slog.LevelError
	} else {
		v := verbosity

		// CLI flags take precedence, but if not set, check env var
		if v == 0 {
			if val, ok := os.LookupEnv("RELX_DEBUG"); ok {
				switch val {
				case "1", "true":
					v = 2 // Debug
				case "2":
					v = 3 // Trace
				}
			}
		}
		level = logging.LevelFromVerbosity(v)
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var primaryHandler slog.Handler
	switch logging.Format(logFormat) {
	case logging.FormatJSON:
		primaryHandler = slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: logging.ReplaceSecrets,
		})
	default:
		primaryHandler = logging.NewHandler(cmd.ErrOrStderr(), opts)
	}

	handlers := []slog.Handler{primaryHandler}

	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return errors.NewUserError(err, "failed to open log file")
		}
		// File output uses JSON format
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: logging.ReplaceSecrets,
		}))
	}

	var handler slog.Handler
	if len(handlers) > 1 {
		handler = logging.NewMultiHandler(handlers...)
	} else {
		handler = handlers[0]
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfigLoaded reports a configuration load error for commands that
// need a valid configuration.
func checkConfigLoaded(cmd *cobra.Command, _ []string) error {
	if skipsConfigCheck(cmd) {
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// skipsConfigCheck reports whether cmd runs without a valid configuration.
// doctor and config validate read the file themselves so they can report
// every problem.
func skipsConfigCheck(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "version", "gen-doc", "doctor":
		return true
	case "validate":
		return cmd.Parent() != nil && cmd.Parent().Name() == "config"
	}
	return false
}

// Execute runs the root command.
func Execute() error {
	return errors.Wrap(rootCmd.Execute(), "executing root command")
}
