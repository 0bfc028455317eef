// Package model defines the vendor-neutral BGP route table that every vendor
// parser converges on.
package model

import (
	"fmt"

	"github.com/routeglass/routeglass/pkg/util"
)

// DefaultVRF is the VRF name used when a dialect does not report one.
const DefaultVRF = "default"

// WinningWeight is the tie-break direction used when ranking RouteEntry.Weight.
type WinningWeight string

const (
	WinningHigh WinningWeight = "high"
	WinningLow  WinningWeight = "low"
)

// Valid reports whether w is one of the defined directions.
func (w WinningWeight) Valid() bool {
	return w == WinningHigh || w == WinningLow
}

// RouteTable is the canonical route table.
type RouteTable struct {
	VRF           string        `json:"vrf"`
	Count         int           `json:"count"`
	Routes        []RouteEntry  `json:"routes"`
	WinningWeight WinningWeight `json:"winning_weight"`
}

// RouteEntry is one path to a prefix as reported by the device.
type RouteEntry struct {
	Prefix          string    `json:"prefix"`
	Active          bool      `json:"active"`
	Age             int64     `json:"age"`
	Weight          int64     `json:"weight"`
	MED             int64     `json:"med"`
	LocalPreference int64     `json:"local_preference"`
	ASPath          []uint32  `json:"as_path"`
	Communities     []string  `json:"communities"`
	NextHop         string    `json:"next_hop"`
	SourceAS        uint32    `json:"source_as"`
	SourceRID       string    `json:"source_rid"`
	PeerRID         string    `json:"peer_rid"`
	RPKIState       RPKIState `json:"rpki_state"`
}

// NewRouteTable assembles a table whose Count matches its routes. An empty
// vrf becomes DefaultVRF.
func NewRouteTable(vrf string, winning WinningWeight, routes []RouteEntry) *RouteTable {
	if vrf == "" {
		vrf = DefaultVRF
	}
	if routes == nil {
		routes = []RouteEntry{}
	}
	return &RouteTable{
		VRF:           vrf,
		Count:         len(routes),
		Routes:        routes,
		WinningWeight: winning,
	}
}

// Validate checks the table invariants and returns a *util.ValidationError
// listing every violation.
func (t *RouteTable) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(t.VRF != "", "vrf is empty")
	v.Add(t.Count == len(t.Routes), fmt.Sprintf("count %d does not match %d routes", t.Count, len(t.Routes)))
	v.Add(t.WinningWeight.Valid(), fmt.Sprintf("winning_weight %q is not high or low", t.WinningWeight))

	for i, r := range t.Routes {
		if r.Prefix == "" {
			v.AddErrorf("route %d: prefix is empty", i)
		}
		if r.Age < 0 {
			v.AddErrorf("route %d (%s): negative age %d", i, r.Prefix, r.Age)
		}
		if !r.RPKIState.Valid() {
			v.AddErrorf("route %d (%s): rpki_state %d out of range", i, r.Prefix, int(r.RPKIState))
		}
		for _, asn := range r.ASPath {
			if asn == 0 {
				v.AddErrorf("route %d (%s): as_path contains AS 0", i, r.Prefix)
				break
			}
		}
	}
	return v.Build()
}

// Active returns the routes currently selected by the device.
func (t *RouteTable) Active() []RouteEntry {
	var out []RouteEntry
	for _, r := range t.Routes {
		if r.Active {
			out = append(out, r)
		}
	}
	return out
}
