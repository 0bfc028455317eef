package inventory

// DefaultDirectives returns the command templates for the built-in BGP
// directives. Each call returns fresh values.
func DefaultDirectives() map[string]*Directive {
	return map[string]*Directive{
		"huawei_bgp_route_table": {
			Command:   "display bgp routing-table {target}",
			Platforms: []string{"huawei"},
		},
		"huawei_bgp_aspath_table": {
			Command:   "display bgp routing-table regular-expression {target}",
			Platforms: []string{"huawei"},
		},
		"huawei_bgp_community_table": {
			Command:   "display bgp routing-table community {target}",
			Platforms: []string{"huawei"},
		},
		"juniper_bgp_route_table": {
			Command:   "show route protocol bgp table inet.0 {target} best detail | display xml",
			Platforms: []string{"juniper"},
		},
		"juniper_bgp_aspath_table": {
			Command:   `show route protocol bgp table inet.0 aspath-regex "{target}" detail | display xml`,
			Platforms: []string{"juniper"},
		},
		"juniper_bgp_community_table": {
			Command:   "show route protocol bgp table inet.0 community {target} detail | display xml",
			Platforms: []string{"juniper"},
		},
		"arista_bgp_route_table": {
			Command:   "show ip bgp {target} detail | json",
			Platforms: []string{"arista_eos"},
		},
		"arista_bgp_aspath_table": {
			Command:   "show ip bgp regexp {target} detail | json",
			Platforms: []string{"arista_eos"},
		},
		"arista_bgp_community_table": {
			Command:   "show ip bgp community {target} detail | json",
			Platforms: []string{"arista_eos"},
		},
	}
}
