package config

import (
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"

	"github.com/thoreinstein/relx/internal/errors"
)

// Plugin is one entry of the plugins list: a name plus optional options.
type Plugin struct {
	Name    string
	Options map[string]any
}

// Plugin names understood by the built-in registry.
const (
	PluginCommitAnalyzer = "@semantic-release/commit-analyzer"
	PluginReleaseNotes   = "@semantic-release/release-notes-generator"
	PluginGitHub         = "@semantic-release/github"
	PluginExec           = "@semantic-release/exec"
	PluginGit            = "@semantic-release/git"
)

// ShortName strips the "@scope/" prefix from a plugin name.
func ShortName(name string) string {
	if strings.HasPrefix(name, "@") {
		if _, rest, ok := strings.Cut(name, "/"); ok {
			return rest
		}
	}
	return name
}

// DefaultPlugins returns the plugin list relx runs when no configuration
// file is present.
func DefaultPlugins() []Plugin {
	return []Plugin{
		{
			Name: PluginCommitAnalyzer,
			Options: map[string]any{
				"preset": "angular",
				"releaseRules": []any{
					map[string]any{"breaking": true, "release": "minor"},
				},
			},
		},
		{Name: PluginReleaseNotes},
		{Name: PluginGitHub},
		{
			Name: PluginExec,
			Options: map[string]any{
				"prepareCmd": "bash ./bumpVersion.sh ${nextRelease.version}",
			},
		},
		{
			Name: PluginGit,
			Options: map[string]any{
				"assets":  []any{[]any{"pom.xml"}},
				"message": "release: ${nextRelease.version}",
			},
		},
	}
}

// ParsePlugins converts the raw plugins value into Plugin entries.
// Each entry is either a name string or a two-element [name, options] list.
func ParsePlugins(raw any) ([]Plugin, error) {
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.Newf("plugins must be a list, got %T", raw)
	}

	plugins := make([]Plugin, 0, len(list))
	for i, entry := range list {
		p, err := parsePlugin(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "plugins[%d]", i)
		}
		plugins = append(plugins, p)
	}
	return plugins, nil
}

func parsePlugin(entry any) (Plugin, error) {
	switch v := entry.(type) {
	case string:
		return Plugin{Name: v}, nil
	case []any:
		if len(v) == 0 || len(v) > 2 {
			return Plugin{}, errors.Newf("expected [name, options], got %d elements", len(v))
		}
		name, ok := v[0].(string)
		if !ok {
			return Plugin{}, errors.Newf("plugin name must be a string, got %T", v[0])
		}
		p := Plugin{Name: name}
		if len(v) == 2 && v[1] != nil {
			opts, err := toStringMap(v[1])
			if err != nil {
				return Plugin{}, errors.Wrapf(err, "options for %s", name)
			}
			p.Options = opts
		}
		return p, nil
	}
	return Plugin{}, errors.Newf("unsupported plugin entry of type %T", entry)
}

// toStringMap normalises option maps coming from YAML, JSON or TOML decoders.
func toStringMap(v any) (map[string]any, error) {
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, nil
	}
	return nil, errors.Newf("options must be a map, got %T", v)
}

// DecodeOptions decodes a plugin's options into out, which must be a
// pointer to a struct with mapstructure tags. Key matching is
// case-insensitive, string values are converted where sensible, and
// unknown keys are rejected so typos surface as errors.
func DecodeOptions(opts map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.TextUnmarshallerHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return errors.Wrap(err, "creating options decoder")
	}
	if err := dec.Decode(opts); err != nil {
		return errors.Wrap(err, "decoding options")
	}
	return nil
}
