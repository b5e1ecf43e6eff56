package config

import (
	"bytes"
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/relx/internal/errors"
	"github.com/thoreinstein/relx/internal/paths"
	"github.com/thoreinstein/relx/pkg/fileutil"
)

// ConfigName is the base name of a project configuration file.
// Viper appends .yaml, .yml, .json or .toml.
const ConfigName = ".releaserc"

// DefaultTagFormat is used when tagFormat is not configured.
const DefaultTagFormat = "v${version}"

// Config represents the top-level configuration structure.
type Config struct {
	Branches      []string `mapstructure:"branches" yaml:"branches" json:"branches" toml:"branches"`
	TagFormat     string   `mapstructure:"tagFormat" yaml:"tagFormat" json:"tagFormat" toml:"tagFormat"`
	RepositoryURL string   `mapstructure:"repositoryUrl" yaml:"repositoryUrl,omitempty" json:"repositoryUrl,omitempty" toml:"repositoryUrl,omitempty"`
	DryRun        bool     `mapstructure:"dryRun" yaml:"dryRun" json:"dryRun" toml:"dryRun"`
	CI            bool     `mapstructure:"ci" yaml:"ci" json:"ci" toml:"ci"`
	Plugins       []Plugin `mapstructure:"-" yaml:"-" json:"-" toml:"-"`
}

// Init resets Viper and registers search paths, environment bindings and defaults.
// Call this once at application startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName(ConfigName)
	viper.AddConfigPath(".")
	viper.AddConfigPath(paths.ConfigDir())

	viper.SetEnvPrefix("RELX")
	viper.AutomaticEnv()
	_ = viper.BindEnv("ci", "CI")

	viper.SetDefault("branches", []string{"main", "master"})
	viper.SetDefault("tagFormat", DefaultTagFormat)
	viper.SetDefault("dryRun", false)
	viper.SetDefault("ci", false)
}

// Load reads and validates the configuration. It returns the first
// validation problem; use [Read] and [Validate] to see all of them.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if errs := Validate(cfg); len(errs) > 0 {
		return nil, errors.Wrap(errs[0], "validating config")
	}
	return cfg, nil
}

// Read reads the configuration file without validating it.
// If path is provided, it reads from that specific file.
// If path is empty, it searches the default locations and falls back to
// [Default] plugins when no file exists.
func Read(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// implicit load, defaults apply
		case errors.As(err, &notFound):
			return nil, errors.Wrapf(err, "config file not found at %s", path)
		default:
			return nil, errors.Wrap(err, "reading config file")
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	raw, ok, err := rawPlugins(viper.ConfigFileUsed())
	if err != nil {
		return nil, err
	}
	if !ok && viper.IsSet("plugins") {
		raw, ok = viper.Get("plugins"), true
	}
	if !ok {
		cfg.Plugins = DefaultPlugins()
		return &cfg, nil
	}

	plugins, err := ParsePlugins(raw)
	if err != nil {
		return nil, errors.Wrap(err, "parsing plugins")
	}
	cfg.Plugins = plugins

	return &cfg, nil
}

// rawPlugins decodes the plugins value straight from the config file.
// Viper lowercases nested map keys, which would turn option names such as
// prepareCmd into preparecmd. ok is false when there is no file, the file
// has no plugins key, or its format is one only viper understands.
func rawPlugins(path string) (raw any, ok bool, err error) {
	if path == "" {
		return nil, false, nil
	}
	format, err := fileutil.FormatFromPath(path)
	if err != nil {
		return nil, false, nil
	}
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, false, errors.Wrap(err, "reading config file")
	}

	var doc map[string]any
	switch format {
	case fileutil.FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case fileutil.FormatJSON:
		err = json.Unmarshal(data, &doc)
	case fileutil.FormatTOML:
		err = toml.NewDecoder(bytes.NewReader(data)).Decode(&doc)
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "decoding plugins from %s", path)
	}

	raw, ok = doc["plugins"]
	return raw, ok, nil
}

// FileUsed returns the path of the config file that was read, if any.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Branches:  []string{"main", "master"},
		TagFormat: DefaultTagFormat,
		Plugins:   DefaultPlugins(),
	}
}

// AsMap renders cfg as plain data suitable for YAML, JSON or TOML encoding.
// Plugins without options are rendered as bare names, the rest as
// [name, options] pairs.
func (c *Config) AsMap() map[string]any {
	plugins := make([]any, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		if len(p.Options) == 0 {
			plugins = append(plugins, p.Name)
			continue
		}
		plugins = append(plugins, []any{p.Name, p.Options})
	}

	out := map[string]any{
		"branches":  c.Branches,
		"tagFormat": c.TagFormat,
		"dryRun":    c.DryRun,
		"ci":        c.CI,
		"plugins":   plugins,
	}
	if c.RepositoryURL != "" {
		out["repositoryUrl"] = c.RepositoryURL
	}
	return out
}
