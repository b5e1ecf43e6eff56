package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/git"
	"github.com/thoreinstein/relx/internal/shell"
)

// Environment is what CheckConfig may look at beyond the configuration.
type Environment struct {
	// Vars is the process environment.
	Vars map[string]string

	// Dir is the repository root. Script paths are checked relative to it
	// when set.
	Dir string

	// ConfigFile is the file the configuration came from, empty for defaults.
	ConfigFile string

	// RemoteURL is the origin URL, used when repositoryUrl is not configured.
	RemoteURL string
}

// CheckConfig validates cfg and adds warnings for conditions that will
// make a release fail at run time.
func CheckConfig(cfg *config.Config, env Environment) *Result {
	result := &Result{}

	if env.ConfigFile == "" {
		result.AddInfo("", "no configuration file found; using built-in defaults", nil)
	} else {
		result.AddInfo("", "loaded configuration", env.ConfigFile)
	}

	for _, err := range config.Validate(cfg) {
		field := ""
		var perr *config.PluginError
		if errors.As(err, &perr) {
			field = fmt.Sprintf("plugins[%d]", perr.Index)
		}
		result.AddError(field, err.Error(), nil)
	}

	repoURL := cfg.RepositoryURL
	if repoURL == "" {
		repoURL = env.RemoteURL
	}

	for i, p := range cfg.Plugins {
		field := fmt.Sprintf("plugins[%d]", i)
		switch p.Name {
		case config.PluginGitHub, config.ShortName(config.PluginGitHub):
			checkGitHub(result, field, repoURL, env.Vars)
		case config.PluginExec, config.ShortName(config.PluginExec):
			checkScript(result, field, p.Options, env.Dir)
		}
	}

	for i := range result.Issues {
		if result.Issues[i].Severity == SeverityError && env.ConfigFile != "" {
			result.Issues[i].Context = map[string]string{"file": env.ConfigFile}
		}
	}
	return result
}

func checkGitHub(result *Result, field, repoURL string, vars map[string]string) {
	if vars["GITHUB_TOKEN"] == "" && vars["GH_TOKEN"] == "" {
		result.AddWarning(field, "GITHUB_TOKEN or GH_TOKEN is not set; publishing will fail", nil)
	}
	if repoURL == "" {
		result.AddWarning("repositoryUrl", "not set and no origin remote found", nil)
		return
	}
	remote, err := git.ParseRemote(repoURL)
	if err != nil {
		result.AddWarning("repositoryUrl", "cannot determine owner and repository", repoURL)
		return
	}
	if !remote.IsGitHub() {
		result.AddInfo("repositoryUrl", "not a github.com URL; githubUrl must point at the GitHub Enterprise host", remote.Host)
	}
}

// checkScript warns when prepareCmd runs a local script that is missing.
func checkScript(result *Result, field string, opts map[string]any, dir string) {
	var decoded shell.Options
	if dir == "" || config.DecodeOptions(opts, &decoded) != nil {
		return
	}
	for _, word := range strings.Fields(decoded.PrepareCmd) {
		if !strings.HasPrefix(word, "./") {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, word)); err != nil {
			result.AddWarning(field, "prepareCmd references a script that does not exist", word)
		}
	}
}
