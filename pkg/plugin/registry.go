package plugin

import (
	"fmt"

	"github.com/routeglass/routeglass/pkg/util"
)

// OutputPlugin transforms pipeline output. Process must return out
// unchanged when its Descriptor does not apply, and must not panic on
// malformed input; failures become Empty plus a diagnostic event.
type OutputPlugin interface {
	Descriptor() Descriptor
	Process(out Output, q Query) Output
}

// Registry is the ordered, immutable set of plugins a pipeline runs.
type Registry struct {
	plugins []OutputPlugin
	byName  map[string]OutputPlugin
}

// NewRegistry builds a registry in the given order. Names must be non-empty
// and unique.
func NewRegistry(plugins ...OutputPlugin) (*Registry, error) {
	r := &Registry{
		plugins: make([]OutputPlugin, 0, len(plugins)),
		byName:  make(map[string]OutputPlugin, len(plugins)),
	}
	for i, p := range plugins {
		if p == nil {
			return nil, fmt.Errorf("plugin %d: %w: nil plugin", i, util.ErrInvalidConfig)
		}
		name := p.Descriptor().Name
		if name == "" {
			return nil, fmt.Errorf("plugin %d: %w: empty name", i, util.ErrInvalidConfig)
		}
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("plugin %q: %w: registered twice", name, util.ErrInvalidConfig)
		}
		r.plugins = append(r.plugins, p)
		r.byName[name] = p
	}
	return r, nil
}

// Plugins returns the plugins in registration order.
func (r *Registry) Plugins() []OutputPlugin {
	out := make([]OutputPlugin, len(r.plugins))
	copy(out, r.plugins)
	return out
}

// Lookup returns the named plugin.
func (r *Registry) Lookup(name string) (OutputPlugin, bool) {
	p, ok := r.byName[name]
	return p, ok
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	return len(r.plugins)
}
