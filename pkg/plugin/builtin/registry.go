package builtin

import (
	"github.com/routeglass/routeglass/pkg/diag"
	"github.com/routeglass/routeglass/pkg/dialect"
	"github.com/routeglass/routeglass/pkg/plugin"
)

// Options configures the built-in plugins.
type Options struct {
	Dialect dialect.Options
	Sink    diag.Sink
}

// Plugins returns the built-ins in run order: text cleaners first, then the
// dialect parsers.
func Plugins(opts Options) []plugin.OutputPlugin {
	return []plugin.OutputPlugin{
		RemoveCommand{},
		MikrotikGarbageOutput{},
		NewHuaweiBGPRoute(opts.Dialect, opts.Sink),
		NewJuniperBGPRoute(opts.Dialect, opts.Sink),
		NewAristaBGPRoute(opts.Dialect, opts.Sink),
	}
}

// DefaultRegistry builds a registry of every built-in plugin. Extra plugins
// run after the built-ins.
func DefaultRegistry(opts Options, extra ...plugin.OutputPlugin) (*plugin.Registry, error) {
	return plugin.NewRegistry(append(Plugins(opts), extra...)...)
}
