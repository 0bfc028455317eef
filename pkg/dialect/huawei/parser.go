// Package huawei parses Huawei VRP BGP routing-table text output.
package huawei

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/routeglass/routeglass/pkg/dialect"
	"github.com/routeglass/routeglass/pkg/fields"
	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/util"
)

// Platform is the device platform identifier for this dialect.
const Platform = "huawei"

// Header rows sit at fixed positions; route blocks start at firstRouteLine.
const (
	routerIDLine   = 1
	localASLine    = 2
	pathsLine      = 3
	firstRouteLine = 4
	minLines       = 5
)

const (
	routerIDLabel = "BGP local router ID"
	localASLabel  = "Local AS number"
)

// lineParser populates one RouteEntry field from the text after its label.
type lineParser func(e *RouteEntry, value string) error

type labelParser struct {
	label string
	parse lineParser
}

// routeLineParsers is the explicit label table for route block lines. Lines
// whose label is not listed are ignored.
var routeLineParsers = []labelParser{
	{"BGP routing table entry information of", func(e *RouteEntry, v string) error {
		e.Prefix = strings.TrimSuffix(v, ":")
		return nil
	}},
	{"From:", func(e *RouteEntry, v string) error {
		e.FromAddr, _, _ = strings.Cut(v, " (")
		return nil
	}},
	{"Route Duration:", func(e *RouteEntry, v string) (err error) {
		e.Duration, err = fields.ParseDuration(v)
		return err
	}},
	{"Direct Out-interface:", func(e *RouteEntry, v string) error {
		e.DirectOutInterface = v
		return nil
	}},
	{"Original nexthop:", func(e *RouteEntry, v string) error {
		e.OriginalNextHop = v
		return nil
	}},
	{"Relay IP Nexthop:", func(e *RouteEntry, v string) error {
		e.RelayIPNextHop = v
		return nil
	}},
	{"Relay IP Out-Interface:", func(e *RouteEntry, v string) error {
		e.RelayIPOutInterface = v
		return nil
	}},
	{"Qos information :", func(e *RouteEntry, v string) error {
		e.QoS = v
		return nil
	}},
	{"Community:", func(e *RouteEntry, v string) error {
		e.Communities = fields.ParseCommunities(v)
		return nil
	}},
	{"Ext-Community:", func(e *RouteEntry, v string) error {
		e.ExtCommunities = fields.ParseCommunities(v)
		return nil
	}},
	{"Large-Community:", func(e *RouteEntry, v string) error {
		e.LargeCommunities = fields.ParseCommunities(v)
		return nil
	}},
	{"AS-path", parseAttributeLine},
}

// attributeParsers handles the comma separated sub-fields of the AS-path
// line that carry a value, e.g. "AS-path 263444 13335, origin igp, MED 0".
var attributeParsers = []labelParser{
	{"AS-path", func(e *RouteEntry, v string) (err error) {
		e.ASPath, err = fields.ParseASPath(v)
		return err
	}},
	{"origin", func(e *RouteEntry, v string) error {
		e.Origin = v
		return nil
	}},
	{"MED", func(e *RouteEntry, v string) (err error) {
		e.Metric, err = parseInt("MED", v)
		return err
	}},
	{"localpref", func(e *RouteEntry, v string) (err error) {
		e.LocalPreference, err = parseInt("localpref", v)
		return err
	}},
	{"pref-val", func(e *RouteEntry, v string) (err error) {
		e.PreferenceValue, err = parseInt("pref-val", v)
		return err
	}},
	{"pre", func(e *RouteEntry, v string) (err error) {
		e.Preference, err = parseInt("pre", v)
		return err
	}},
}

// attributeFlags are the bare status words of the AS-path line.
var attributeFlags = map[string]func(e *RouteEntry){
	"valid":    func(e *RouteEntry) { e.IsValid = true },
	"external": func(e *RouteEntry) { e.IsExternal = true },
	"backup":   func(e *RouteEntry) { e.IsBackup = true },
	"best":     func(e *RouteEntry) { e.IsBest = true },
	"select":   func(e *RouteEntry) { e.IsSelected = true },
}

// Parse converts raw command output to a canonical route table.
func Parse(output string, opts dialect.Options) (*model.RouteTable, error) {
	table, err := Extract(output, opts)
	if err != nil {
		return nil, err
	}
	rt := table.RouteTable()
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", Platform, err)
	}
	return rt, nil
}

// Extract parses output into the vendor-shaped Table without translating it.
func Extract(output string, opts dialect.Options) (*Table, error) {
	lines := splitLines(output)
	if len(lines) < minLines {
		return nil, util.NewStructuralError(Platform, "expected at least %d lines, got %d", minLines, len(lines))
	}

	t := &Table{}

	routerID := strings.TrimSpace(lines[routerIDLine])
	if !strings.HasPrefix(routerID, routerIDLabel) {
		return nil, util.NewStructuralError(Platform, "line %d is not the router ID line: %q", routerIDLine+1, lines[routerIDLine])
	}
	t.LocalRouterID = util.AfterColon(routerID)

	localAS := strings.TrimSpace(lines[localASLine])
	if !strings.HasPrefix(localAS, localASLabel) {
		return nil, util.NewStructuralError(Platform, "line %d is not the local AS line: %q", localASLine+1, lines[localASLine])
	}
	asn, err := strconv.ParseUint(util.AfterColon(localAS), 10, 32)
	if err != nil {
		return nil, util.NewFieldFormatError("local AS number", util.AfterColon(localAS), "not a 32-bit AS number")
	}
	t.LocalASNumber = uint32(asn)

	paths, err := fields.ParsePaths(lines[pathsLine])
	if err != nil {
		return nil, err
	}
	if paths == nil {
		return nil, util.NewStructuralError(Platform, "line %d is not a path summary: %q", pathsLine+1, lines[pathsLine])
	}
	t.Paths = *paths

	for i, block := range splitBlocks(lines[firstRouteLine:]) {
		entry, err := parseBlock(block)
		if err != nil {
			if err := opts.HandleEntryError(i, err); err != nil {
				return nil, fmt.Errorf("%s: %w", Platform, err)
			}
			continue
		}
		t.Routes = append(t.Routes, entry)
	}
	return t, nil
}

// RouteTable translates the vendor record to the canonical model.
func (t *Table) RouteTable() *model.RouteTable {
	routes := make([]model.RouteEntry, 0, len(t.Routes))
	for _, r := range t.Routes {
		routes = append(routes, model.RouteEntry{
			Prefix:          r.Prefix,
			Active:          r.IsSelected,
			Age:             r.Duration,
			Weight:          r.Preference,
			MED:             r.Metric,
			LocalPreference: r.LocalPreference,
			ASPath:          r.ASPath,
			Communities:     fields.JoinCommunities(r.Communities, r.ExtCommunities, r.LargeCommunities),
			NextHop:         r.OriginalNextHop,
			SourceAS:        0,
			SourceRID:       "",
			PeerRID:         r.FromAddr,
			RPKIState:       fields.RPKIFromFlag(r.IsValid),
		})
	}
	return model.NewRouteTable(model.DefaultVRF, model.WinningHigh, routes)
}

func parseBlock(lines []string) (RouteEntry, error) {
	e := RouteEntry{ASPath: []uint32{}}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		for _, p := range routeLineParsers {
			v, ok := util.CutLabel(line, p.label)
			if !ok {
				continue
			}
			if err := p.parse(&e, v); err != nil {
				return RouteEntry{}, err
			}
			break
		}
	}
	return e, nil
}

// parseAttributeLine handles the composite line
// "AS-path 263444 13335, origin igp, pref-val 0, valid, external, pre 100, ...".
// The AS-path label is passed back in so the sub-field table sees it.
func parseAttributeLine(e *RouteEntry, rest string) error {
	for _, part := range util.SplitCommaSeparated("AS-path " + rest) {
		if set, ok := attributeFlags[part]; ok {
			set(e)
			continue
		}
		label, value, _ := strings.Cut(part, " ")
		for _, p := range attributeParsers {
			if p.label != label {
				continue
			}
			if err := p.parse(e, strings.TrimSpace(value)); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

func parseInt(field, v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, util.NewFieldFormatError(field, v, "not an integer")
	}
	return n, nil
}

// splitLines splits on newlines, dropping carriage returns and the empty
// element after a final newline.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// splitBlocks groups lines into route blocks separated by blank lines.
// Runs of blank lines, including trailing ones, never produce empty blocks.
func splitBlocks(lines []string) [][]string {
	var blocks [][]string
	var cur []string
	for _, l := range lines {
		if util.IsBlank(l) {
			if len(cur) > 0 {
				blocks = append(blocks, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}
