package plugin

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/routeglass/routeglass/pkg/diag"
	"github.com/routeglass/routeglass/pkg/util"
)

// Pipeline runs a registry's plugins over one output. It holds no per-call
// state and is safe for concurrent use.
type Pipeline struct {
	registry *Registry
	sink     diag.Sink
	metrics  *metrics
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithSink sets where recovered plugin faults are reported.
func WithSink(sink diag.Sink) Option {
	return func(p *Pipeline) { p.sink = sink }
}

// WithRegisterer registers the pipeline metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(p *Pipeline) { p.metrics = newMetrics(reg) }
}

// NewPipeline creates a pipeline over registry.
func NewPipeline(registry *Registry, opts ...Option) *Pipeline {
	if registry == nil {
		registry = &Registry{byName: map[string]OutputPlugin{}}
	}
	p := &Pipeline{registry: registry}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = newMetrics(nil)
	}
	return p
}

// Registry returns the registry the pipeline was built with.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Run passes out through every applicable plugin in registration order,
// feeding each plugin the previous one's result. Output no plugin accepts
// comes back unchanged. Run never panics: a plugin fault is reported to the
// sink and turns the output into Empty.
func (p *Pipeline) Run(out Output, q Query) Output {
	platform := q.Platform()
	for _, plug := range p.registry.plugins {
		desc := plug.Descriptor()
		if !desc.Applies(out, q) {
			p.metrics.runs.WithLabelValues(desc.Name, platform, ResultPassthrough).Inc()
			continue
		}

		start := time.Now()
		out = p.process(plug, desc, out, q)
		p.metrics.duration.WithLabelValues(desc.Name).Observe(time.Since(start).Seconds())

		result := ResultOK
		if KindOf(out) == KindEmpty {
			result = ResultEmpty
		}
		p.metrics.runs.WithLabelValues(desc.Name, platform, result).Inc()
		util.WithPlugin(desc.Name).WithField("platform", platform).Debugf("plugin produced %s", KindOf(out))
	}
	return out
}

func (p *Pipeline) process(plug OutputPlugin, desc Descriptor, in Output, q Query) (out Output) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("plugin %s panicked: %v", desc.Name, r)
			util.WithPlugin(desc.Name).Error(err)
			event := diag.NewEvent(desc.Name, q.Platform()).
				WithDevice(q.DeviceName()).
				WithDirective(q.Directive).
				WithError(err).
				WithKind("internal")
			if raw, ok := in.(Raw); ok {
				event.WithResponse(raw.Stdout, raw.Stderr)
			}
			diag.Emit(p.sink, event)
			out = Empty{Platform: q.Platform(), Reason: err.Error()}
		}
	}()
	return plug.Process(in, q)
}
