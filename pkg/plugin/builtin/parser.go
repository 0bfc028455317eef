// Package builtin holds the output plugins shipped with routeglass: one
// BGP route parser per supported dialect plus text cleaners that run ahead
// of them.
package builtin

import (
	"fmt"

	"github.com/routeglass/routeglass/pkg/diag"
	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/plugin"
	"github.com/routeglass/routeglass/pkg/util"
)

// ParseFunc turns a raw device response into a route table.
type ParseFunc func(raw plugin.Raw) (*model.RouteTable, error)

// ParserPlugin adapts a dialect parser to the plugin contract. A parse
// failure is reported to the sink once and becomes plugin.Empty.
type ParserPlugin struct {
	desc  plugin.Descriptor
	parse ParseFunc
	sink  diag.Sink
}

// NewParserPlugin creates a parser plugin. desc.Accepts is forced to
// plugin.KindRaw.
func NewParserPlugin(desc plugin.Descriptor, parse ParseFunc, sink diag.Sink) *ParserPlugin {
	desc.Accepts = plugin.KindRaw
	return &ParserPlugin{desc: desc, parse: parse, sink: sink}
}

func (p *ParserPlugin) Descriptor() plugin.Descriptor {
	return p.desc
}

// Process parses out when the descriptor applies and returns it untouched
// otherwise.
func (p *ParserPlugin) Process(out plugin.Output, q plugin.Query) plugin.Output {
	if !p.desc.Applies(out, q) {
		return out
	}
	raw := out.(plugin.Raw)

	rt, err := p.safeParse(raw)
	if err != nil {
		event := diag.NewEvent(p.desc.Name, q.Platform()).
			WithDevice(q.DeviceName()).
			WithDirective(q.Directive).
			WithResponse(raw.Stdout, raw.Stderr).
			WithError(err)
		diag.Emit(p.sink, event)
		util.WithPlugin(p.desc.Name).WithField("platform", q.Platform()).Debugf("parse failed: %v", err)
		return plugin.Empty{Platform: q.Platform(), Reason: event.Kind}
	}
	return rt
}

func (p *ParserPlugin) safeParse(raw plugin.Raw) (rt *model.RouteTable, err error) {
	defer func() {
		if r := recover(); r != nil {
			rt, err = nil, fmt.Errorf("%s: parser panicked: %v", p.desc.Name, r)
		}
	}()
	rt, err = p.parse(raw)
	if err == nil && rt == nil {
		err = fmt.Errorf("%s: parser returned no table", p.desc.Name)
	}
	return rt, err
}
