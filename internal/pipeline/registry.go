package pipeline

import (
	"sort"
	"sync"

	"github.com/thoreinstein/relx/internal/config"
	"github.com/thoreinstein/relx/internal/errors"
)

// ErrAlreadyRegistered is returned when a plugin name is registered twice.
var ErrAlreadyRegistered = errors.New("plugin already registered")

// Factory builds a stage from a plugin's option map.
type Factory func(options map[string]any) (Stage, error)

// Registry maps plugin names to stage factories.
// It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register associates name with f. The plugin can then be referenced by its
// full name ("@semantic-release/git") or its short name ("git").
func (r *Registry) Register(name string, f Factory) error {
	short := config.ShortName(name)
	if short == "" || f == nil {
		return errors.Newf("invalid registration for %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[short]; exists {
		return errors.Wrapf(ErrAlreadyRegistered, "%s", name)
	}
	r.factories[short] = f
	return nil
}

// Lookup returns the factory for name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[config.ShortName(name)]
	return f, ok
}

// Names returns the registered short names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build instantiates one stage per configured plugin, preserving order.
func (r *Registry) Build(plugins []config.Plugin) ([]Stage, error) {
	stages := make([]Stage, 0, len(plugins))
	for i, p := range plugins {
		f, ok := r.Lookup(p.Name)
		if !ok {
			return nil, &config.PluginError{Index: i, Name: p.Name, Err: errors.ErrUnknownPlugin}
		}
		s, err := f(p.Options)
		if err != nil {
			return nil, &config.PluginError{Index: i, Name: p.Name, Err: err}
		}
		stages = append(stages, s)
	}
	return stages, nil
}
