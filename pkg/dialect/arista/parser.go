// Package arista parses Arista EOS `show ip bgp ... detail | json` output.
package arista

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/routeglass/routeglass/pkg/dialect"
	"github.com/routeglass/routeglass/pkg/fields"
	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/util"
)

// Platform is the device platform identifier for this dialect.
const Platform = "arista_eos"

// Parse converts raw command output to a canonical route table.
func Parse(output string, opts dialect.Options) (*model.RouteTable, error) {
	resp, err := Extract(output)
	if err != nil {
		return nil, err
	}
	rt, err := resp.RouteTable(opts)
	if err != nil {
		return nil, err
	}
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", Platform, err)
	}
	return rt, nil
}

// Extract decodes output into the vendor-shaped Response.
func Extract(output string) (*Response, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, util.NewStructuralError(Platform, "empty response")
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(output), &probe); err != nil {
		return nil, util.NewStructuralError(Platform, "invalid JSON: %v", err)
	}
	if _, ok := probe["vrfs"]; !ok {
		return nil, util.NewStructuralError(Platform, "missing vrfs object")
	}

	resp := &Response{}
	if err := json.Unmarshal([]byte(output), resp); err != nil {
		return nil, util.NewStructuralError(Platform, "invalid vrfs object: %v", err)
	}
	return resp, nil
}

// RouteTable translates every VRF, prefix and path, in device order, into
// one canonical table named after the first VRF. Entry failures follow
// opts.Policy.
func (r *Response) RouteTable(opts dialect.Options) (*model.RouteTable, error) {
	vrf := model.DefaultVRF
	if len(r.VRFs) > 0 && r.VRFs[0].Name != "" {
		vrf = r.VRFs[0].Name
	}

	now := opts.Clock().Unix()
	var routes []model.RouteEntry
	// index counts prefix entries across VRFs: a decode failure spoils the
	// whole prefix object, so that is the unit skipped.
	index := -1
	for _, v := range r.VRFs {
		for _, entry := range v.BGPRouteEntries {
			index++
			var err error
			switch {
			case entry.DecodeErr != nil:
				err = util.NewFieldFormatError("bgpRouteEntries", entry.Prefix, entry.DecodeErr.Error())
			case entry.Prefix == "":
				err = util.NewFieldFormatError("bgpRouteEntries", entry.Prefix, "empty prefix")
			}
			if err != nil {
				if err := opts.HandleEntryError(index, err); err != nil {
					return nil, fmt.Errorf("%s: %w", Platform, err)
				}
				continue
			}
			for _, path := range entry.BGPRoutePaths {
				routes = append(routes, path.canonical(entry.Prefix, uint32(v.ASN), now))
			}
		}
	}
	return model.NewRouteTable(vrf, model.WinningHigh, routes), nil
}

func (p RoutePath) canonical(prefix string, localAS uint32, now int64) model.RouteEntry {
	path := fields.ParseASPathLoose(p.ASPathEntry.ASPath)
	sourceAS := localAS
	if len(path) > 0 {
		sourceAS = path[len(path)-1]
	}

	age := now - p.Timestamp
	if p.Timestamp <= 0 || age < 0 {
		age = 0
	}

	d := p.RouteDetail
	return model.RouteEntry{
		Prefix:          prefix,
		Active:          p.RouteType.Active,
		Age:             age,
		Weight:          p.Weight,
		MED:             p.MED,
		LocalPreference: p.LocalPreference,
		ASPath:          path,
		Communities:     fields.JoinCommunities(d.CommunityList, d.ExtCommunityList, d.LargeCommunityList),
		NextHop:         p.NextHop,
		SourceAS:        sourceAS,
		SourceRID:       p.PeerEntry.PeerRouterID,
		PeerRID:         p.PeerEntry.PeerAddr,
		RPKIState:       model.RPKIStateFromString(d.RPKIValidation.State),
	}
}
