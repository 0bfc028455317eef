package builtin

import (
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/routeglass/routeglass/pkg/diag"
	"github.com/routeglass/routeglass/pkg/dialect"
	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/plugin"
)

type recordingSink struct {
	mu     sync.Mutex
	events []*diag.Event
}

func (r *recordingSink) Emit(e *diag.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) Close() error { return nil }

func device(platform string) plugin.StaticDevice {
	return plugin.StaticDevice{DeviceName: "edge1", DevicePlatform: platform, Structured: true}
}

func newPipeline(t *testing.T, sink diag.Sink) *plugin.Pipeline {
	t.Helper()
	opts := Options{
		Dialect: dialect.Options{Now: func() time.Time { return time.Unix(1760100000, 0) }},
		Sink:    sink,
	}
	reg, err := DefaultRegistry(opts)
	require.NoError(t, err)
	return plugin.NewPipeline(reg, plugin.WithSink(sink))
}

func fixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const huaweiHeader = `
 BGP local router ID : 10.0.0.1
 Local AS number : 65000
 Paths:   5 available, 1 best, 1 select, 0 best-external, 0 add-path
`

func TestDefaultRegistry_Order(t *testing.T) {
	reg, err := DefaultRegistry(Options{})
	require.NoError(t, err)

	var names []string
	for _, p := range reg.Plugins() {
		names = append(names, p.Descriptor().Name)
	}
	assert.Equal(t, []string{
		"remove_command",
		"mikrotik_garbage_output",
		"huawei_bgp_route",
		"juniper_bgp_route",
		"arista_bgp_route",
	}, names)

	_, err = DefaultRegistry(Options{}, RemoveCommand{})
	assert.Error(t, err, "duplicate built-in name must be rejected")
}

func TestPipeline_HuaweiSingleBlock(t *testing.T) {
	stdout := huaweiHeader + ` BGP routing table entry information of 1.1.1.0/24:
 From: 192.0.2.1 (10.255.0.1)
 Route Duration: 0d00h01m00s
 Original nexthop: 192.0.2.1
 AS-path 13335, origin igp, pref-val 0, valid, external, best, select, pre 255
`
	sink := &recordingSink{}
	q := plugin.Query{Device: device("huawei"), Directive: HuaweiBGPRouteTable, Command: "display bgp routing-table 1.1.1.0"}

	out := newPipeline(t, sink).Run(plugin.Raw{Stdout: stdout}, q)

	rt, ok := out.(*model.RouteTable)
	require.True(t, ok, "expected route table, got %#v", out)
	assert.Equal(t, 1, rt.Count)
	assert.Equal(t, "1.1.1.0/24", rt.Routes[0].Prefix)
	assert.Equal(t, int64(60), rt.Routes[0].Age)
	assert.Empty(t, sink.events)
}

func TestPipeline_HuaweiFixture(t *testing.T) {
	stdout := fixture(t, "../../dialect/huawei/testdata/bgp_route_two_paths.txt")
	q := plugin.Query{Device: device("huawei"), Directive: HuaweiBGPCommunityTable}

	out := newPipeline(t, nil).Run(plugin.Raw{Stdout: stdout}, q)
	rt, ok := out.(*model.RouteTable)
	require.True(t, ok, "expected route table, got %#v", out)
	assert.Equal(t, 2, rt.Count)
	assert.True(t, rt.Routes[0].Active)
	assert.False(t, rt.Routes[1].Active)
}

func TestPipeline_HuaweiTooShort(t *testing.T) {
	sink := &recordingSink{}
	q := plugin.Query{Device: device("huawei"), Directive: HuaweiBGPRouteTable}
	raw := plugin.Raw{Stdout: "\n BGP local router ID : 10.0.0.1\n", Stderr: "warning"}

	var out plugin.Output
	require.NotPanics(t, func() {
		out = newPipeline(t, sink).Run(raw, q)
	})

	empty, ok := out.(plugin.Empty)
	require.True(t, ok, "expected Empty, got %#v", out)
	assert.Equal(t, "huawei", empty.Platform)
	assert.Equal(t, "structural", empty.Reason)

	require.Len(t, sink.events, 1)
	ev := sink.events[0]
	assert.Equal(t, "huawei_bgp_route", ev.Plugin)
	assert.Equal(t, "huawei", ev.Platform)
	assert.Equal(t, "edge1", ev.Device)
	assert.Equal(t, HuaweiBGPRouteTable, ev.Directive)
	assert.Equal(t, "structural", ev.Kind)
	assert.Equal(t, diag.SeverityError, ev.Severity)
	assert.Equal(t, raw.Stdout, ev.Stdout)
	assert.Equal(t, "warning", ev.Stderr)
}

func TestPipeline_HuaweiNeverRunsForOtherPlatforms(t *testing.T) {
	stdout := fixture(t, "../../dialect/huawei/testdata/bgp_route_two_paths.txt")
	sink := &recordingSink{}
	q := plugin.Query{Device: device("juniper"), Directive: HuaweiBGPRouteTable}

	out := newPipeline(t, sink).Run(plugin.Raw{Stdout: stdout}, q)
	assert.Equal(t, plugin.Raw{Stdout: stdout}, out)
	assert.Empty(t, sink.events)
}

func TestPipeline_GateConditions(t *testing.T) {
	stdout := fixture(t, "../../dialect/huawei/testdata/bgp_route_two_paths.txt")
	p := newPipeline(t, nil)

	unstructured := plugin.StaticDevice{DeviceName: "edge1", DevicePlatform: "huawei"}
	out := p.Run(plugin.Raw{Stdout: stdout}, plugin.Query{Device: unstructured, Directive: HuaweiBGPRouteTable})
	assert.Equal(t, plugin.KindRaw, plugin.KindOf(out), "structured output is required")

	out = p.Run(plugin.Raw{Stdout: stdout}, plugin.Query{Device: device("huawei"), Directive: "huawei_ping"})
	assert.Equal(t, plugin.KindRaw, plugin.KindOf(out), "unrelated directive passes through")
}

func TestPipeline_JuniperFixture(t *testing.T) {
	stdout := fixture(t, "../../dialect/juniper/testdata/bgp_route.xml")
	q := plugin.Query{Device: device("juniper"), Directive: JuniperBGPRouteTable}

	out := newPipeline(t, nil).Run(plugin.Raw{Stdout: stdout}, q)
	rt, ok := out.(*model.RouteTable)
	require.True(t, ok, "expected route table, got %#v", out)
	assert.Equal(t, model.WinningLow, rt.WinningWeight)
	assert.NoError(t, rt.Validate())
}

func TestPipeline_AristaFixture(t *testing.T) {
	stdout := fixture(t, "../../dialect/arista/testdata/bgp_route.json")
	q := plugin.Query{Device: device("arista_eos"), Directive: AristaBGPASPathTable}

	out := newPipeline(t, nil).Run(plugin.Raw{Stdout: stdout}, q)
	rt, ok := out.(*model.RouteTable)
	require.True(t, ok, "expected route table, got %#v", out)
	assert.Equal(t, 3, rt.Count)
	assert.Equal(t, int64(100000), rt.Routes[0].Age)
}

func TestPipeline_AristaGarbage(t *testing.T) {
	sink := &recordingSink{}
	q := plugin.Query{Device: device("arista_eos"), Directive: AristaBGPRouteTable}

	out := newPipeline(t, sink).Run(plugin.Raw{Stdout: "% Invalid input at line 1"}, q)
	assert.Equal(t, plugin.KindEmpty, plugin.KindOf(out))
	require.Len(t, sink.events, 1)
	assert.Equal(t, "structural", sink.events[0].Kind)
}

func TestPipeline_RemoveCommandBeforeParse(t *testing.T) {
	cmd := "display bgp routing-table 1.1.1.0"
	body := fixture(t, "../../dialect/huawei/testdata/bgp_route_two_paths.txt")
	stdout := "<edge1>" + cmd + "\n" + body
	q := plugin.Query{Device: device("huawei"), Directive: HuaweiBGPRouteTable, Command: cmd}

	out := newPipeline(t, nil).Run(plugin.Raw{Stdout: stdout}, q)
	rt, ok := out.(*model.RouteTable)
	require.True(t, ok, "expected route table, got %#v", out)
	assert.Equal(t, 2, rt.Count)
}

func TestParserPlugin_Idempotent(t *testing.T) {
	p := NewHuaweiBGPRoute(dialect.Options{}, nil)
	q := plugin.Query{Device: device("huawei"), Directive: HuaweiBGPRouteTable}

	rt := model.NewRouteTable("", model.WinningHigh, nil)
	assert.Same(t, rt, p.Process(rt, q))

	empty := plugin.Empty{Platform: "huawei"}
	assert.Equal(t, empty, p.Process(empty, q))
}

func TestParserPlugin_RecoversAndRejectsNil(t *testing.T) {
	desc := plugin.Descriptor{Name: "test_parser"}
	q := plugin.Query{Device: device("x")}

	tests := []struct {
		name  string
		parse ParseFunc
		kind  string
	}{
		{"panic", func(plugin.Raw) (*model.RouteTable, error) { panic("boom") }, "internal"},
		{"nil table", func(plugin.Raw) (*model.RouteTable, error) { return nil, nil }, "internal"},
		{"error", func(plugin.Raw) (*model.RouteTable, error) { return nil, errors.New("x") }, "internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &recordingSink{}
			p := NewParserPlugin(desc, tt.parse, sink)
			assert.Equal(t, plugin.KindRaw, p.Descriptor().Accepts)

			out := p.Process(plugin.Raw{Stdout: "x"}, q)
			assert.Equal(t, plugin.KindEmpty, plugin.KindOf(out))
			require.Len(t, sink.events, 1)
			assert.Equal(t, tt.kind, sink.events[0].Kind)
		})
	}
}

func TestRemoveCommand(t *testing.T) {
	cmd := "show route 1.1.1.0 detail"
	tests := []struct {
		name   string
		stdout string
		want   string
	}{
		{"bare echo", cmd + "\nline1\nline2", "line1\nline2"},
		{"junos prompt", "user@r1> " + cmd + "\nline1", "line1"},
		{"ios prompt", "r1#" + cmd + "\r\nline1", "line1"},
		{"huawei prompt", "<r1>" + cmd + "\nline1", "line1"},
		{"mention inside text kept", "last command was " + cmd + "\nline1", "last command was " + cmd + "\nline1"},
		{"no echo", "line1\nline2", "line1\nline2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := plugin.Query{Device: device("juniper"), Command: cmd}
			out := RemoveCommand{}.Process(plugin.Raw{Stdout: tt.stdout, Stderr: "e"}, q)
			assert.Equal(t, plugin.Raw{Stdout: tt.want, Stderr: "e"}, out)
		})
	}

	raw := plugin.Raw{Stdout: "x\n"}
	assert.Equal(t, raw, RemoveCommand{}.Process(raw, plugin.Query{Device: device("juniper")}), "empty command is a no-op")
}

func TestMikrotikGarbageOutput(t *testing.T) {
	stdout := "\x1b[9999B\x1b[m\r\n" +
		"  Flags: X - disabled, A - active\r\n" +
		"  Flags: X - disabled, A - active\r\n" +
		"\r\n\r\n\r\n" +
		"  0 A  dst-address=1.1.1.0/24\r\n" +
		"-- [Q quit|D dump|down]\r\n" +
		"progress 10%\rprogress 100%\r\n" +
		"\r\n"

	q := plugin.Query{Device: plugin.StaticDevice{DevicePlatform: "mikrotik_routeros"}}
	out := MikrotikGarbageOutput{}.Process(plugin.Raw{Stdout: stdout}, q)

	want := strings.Join([]string{
		"  Flags: X - disabled, A - active",
		"",
		"  0 A  dst-address=1.1.1.0/24",
		"progress 100%",
	}, "\n")
	assert.Equal(t, plugin.Raw{Stdout: want}, out)

	other := plugin.Query{Device: plugin.StaticDevice{DevicePlatform: "huawei"}}
	assert.Equal(t, plugin.Raw{Stdout: stdout}, MikrotikGarbageOutput{}.Process(plugin.Raw{Stdout: stdout}, other))
}

func TestDefaultDirective(t *testing.T) {
	assert.Equal(t, HuaweiBGPRouteTable, DefaultDirective("huawei"))
	assert.Equal(t, JuniperBGPRouteTable, DefaultDirective("juniper"))
	assert.Equal(t, AristaBGPRouteTable, DefaultDirective("arista_eos"))
	assert.Empty(t, DefaultDirective("mikrotik_routeros"))
}

func TestMikrotikGarbageOutput_Platforms(t *testing.T) {
	stdout := "\x1b[m  0 A dst-address=1.1.1.0/24\r\n"

	for _, platform := range []string{"mikrotik_routeros", "mikrotik_switchos"} {
		t.Run(platform, func(t *testing.T) {
			q := plugin.Query{Device: plugin.StaticDevice{DevicePlatform: platform, Structured: true}}
			out := MikrotikGarbageOutput{}.Process(plugin.Raw{Stdout: stdout}, q)
			assert.Equal(t, plugin.Raw{Stdout: "  0 A dst-address=1.1.1.0/24"}, out)
		})
	}

	// the pipeline runs the cleaner for a RouterOS device too
	q := plugin.Query{Device: plugin.StaticDevice{DevicePlatform: MikrotikRouterOS}}
	out := newPipeline(t, nil).Run(plugin.Raw{Stdout: stdout}, q)
	assert.Equal(t, plugin.Raw{Stdout: "  0 A dst-address=1.1.1.0/24"}, out)
}
