package builtin

import (
	"github.com/routeglass/routeglass/pkg/diag"
	"github.com/routeglass/routeglass/pkg/dialect"
	"github.com/routeglass/routeglass/pkg/dialect/arista"
	"github.com/routeglass/routeglass/pkg/dialect/huawei"
	"github.com/routeglass/routeglass/pkg/dialect/juniper"
	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/plugin"
)

// Directive ids handled by the built-in parsers.
const (
	HuaweiBGPRouteTable     = "huawei_bgp_route_table"
	HuaweiBGPASPathTable    = "huawei_bgp_aspath_table"
	HuaweiBGPCommunityTable = "huawei_bgp_community_table"

	JuniperBGPRouteTable     = "juniper_bgp_route_table"
	JuniperBGPASPathTable    = "juniper_bgp_aspath_table"
	JuniperBGPCommunityTable = "juniper_bgp_community_table"

	AristaBGPRouteTable     = "arista_bgp_route_table"
	AristaBGPASPathTable    = "arista_bgp_aspath_table"
	AristaBGPCommunityTable = "arista_bgp_community_table"
)

// NewHuaweiBGPRoute parses Huawei VRP `display bgp routing-table` text.
func NewHuaweiBGPRoute(opts dialect.Options, sink diag.Sink) *ParserPlugin {
	return NewParserPlugin(plugin.Descriptor{
		Name:              "huawei_bgp_route",
		Platforms:         []string{huawei.Platform},
		Directives:        []string{HuaweiBGPRouteTable, HuaweiBGPASPathTable, HuaweiBGPCommunityTable},
		RequireStructured: true,
	}, func(raw plugin.Raw) (*model.RouteTable, error) {
		return huawei.Parse(raw.Stdout, opts)
	}, sink)
}

// NewJuniperBGPRoute parses Junos `show route ... | display xml` output.
func NewJuniperBGPRoute(opts dialect.Options, sink diag.Sink) *ParserPlugin {
	return NewParserPlugin(plugin.Descriptor{
		Name:              "juniper_bgp_route",
		Platforms:         []string{juniper.Platform},
		Directives:        []string{JuniperBGPRouteTable, JuniperBGPASPathTable, JuniperBGPCommunityTable},
		RequireStructured: true,
	}, func(raw plugin.Raw) (*model.RouteTable, error) {
		return juniper.Parse(raw.Stdout, opts)
	}, sink)
}

// NewAristaBGPRoute parses EOS `show ip bgp ... | json` output.
func NewAristaBGPRoute(opts dialect.Options, sink diag.Sink) *ParserPlugin {
	return NewParserPlugin(plugin.Descriptor{
		Name:              "arista_bgp_route",
		Platforms:         []string{arista.Platform},
		Directives:        []string{AristaBGPRouteTable, AristaBGPASPathTable, AristaBGPCommunityTable},
		RequireStructured: true,
	}, func(raw plugin.Raw) (*model.RouteTable, error) {
		return arista.Parse(raw.Stdout, opts)
	}, sink)
}

// DefaultDirective returns the route-table directive for platform, or ""
// when no built-in parser handles it.
func DefaultDirective(platform string) string {
	switch platform {
	case huawei.Platform:
		return HuaweiBGPRouteTable
	case juniper.Platform:
		return JuniperBGPRouteTable
	case arista.Platform:
		return AristaBGPRouteTable
	}
	return ""
}
