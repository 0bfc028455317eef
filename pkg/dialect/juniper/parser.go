// Package juniper parses Junos `show route protocol bgp ... detail | display xml`
// output.
package juniper

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/routeglass/routeglass/pkg/dialect"
	"github.com/routeglass/routeglass/pkg/fields"
	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/util"
)

// Platform is the device platform identifier for this dialect.
const Platform = "juniper"

// bannerPattern matches CLI banner lines such as "{master}" that Junos
// appends after the XML document. Only whole lines are removed so AS_SET
// braces inside <as-path> survive.
var bannerPattern = regexp.MustCompile(`(?m)^[ \t]*\{[^{}\n]+\}[ \t]*$`)

// validationStates is the explicit Junos validation-state table. An absent
// or unlisted state is RPKIUnknown.
var validationStates = map[string]model.RPKIState{
	"invalid":    model.RPKIInvalid,
	"valid":      model.RPKIValid,
	"unknown":    model.RPKINotFound,
	"unverified": model.RPKINotValidated,
}

// Parse converts raw command output to a canonical route table.
func Parse(output string, opts dialect.Options) (*model.RouteTable, error) {
	info, err := Extract(output)
	if err != nil {
		return nil, err
	}
	rt, err := info.RouteTable(opts)
	if err != nil {
		return nil, err
	}
	if err := rt.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", Platform, err)
	}
	return rt, nil
}

// Extract decodes the first <route-information> element in output.
func Extract(output string) (*RouteInformation, error) {
	cleaned := bannerPattern.ReplaceAllString(output, "")
	if strings.TrimSpace(cleaned) == "" {
		return nil, util.NewStructuralError(Platform, "empty response")
	}

	dec := xml.NewDecoder(strings.NewReader(cleaned))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, util.NewStructuralError(Platform, "no route-information element")
		}
		if err != nil {
			return nil, util.NewStructuralError(Platform, "invalid XML: %v", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "route-information" {
			continue
		}
		info := &RouteInformation{}
		if err := dec.DecodeElement(info, &start); err != nil {
			return nil, util.NewStructuralError(Platform, "invalid route-information: %v", err)
		}
		return info, nil
	}
}

// RouteTable translates every table, route and entry, in document order,
// into one canonical table. Entry failures follow opts.Policy.
func (ri *RouteInformation) RouteTable(opts dialect.Options) (*model.RouteTable, error) {
	vrf := model.DefaultVRF
	if len(ri.Tables) > 0 {
		vrf = vrfFromTable(ri.Tables[0].TableName)
	}

	var routes []model.RouteEntry
	index := 0
	for _, table := range ri.Tables {
		for _, rt := range table.Routes {
			prefix := rt.prefix()
			for _, entry := range rt.Entries {
				r, err := entry.canonical(prefix)
				if err != nil {
					if err := opts.HandleEntryError(index, err); err != nil {
						return nil, fmt.Errorf("%s: %w", Platform, err)
					}
				} else {
					routes = append(routes, r)
				}
				index++
			}
		}
	}
	return model.NewRouteTable(vrf, model.WinningLow, routes), nil
}

func (r Route) prefix() string {
	dest := strings.TrimSpace(r.Destination)
	length := strings.TrimSpace(r.PrefixLength)
	if length == "" || strings.Contains(dest, "/") {
		return dest
	}
	return dest + "/" + length
}

func (e RouteEntry) canonical(prefix string) (model.RouteEntry, error) {
	if prefix == "" {
		return model.RouteEntry{}, util.NewFieldFormatError("rt-destination", prefix, "empty destination")
	}

	age, err := optionalInt("age seconds", e.Age.Seconds)
	if err != nil {
		return model.RouteEntry{}, err
	}
	preference, err := optionalInt("preference", e.Preference)
	if err != nil {
		return model.RouteEntry{}, err
	}
	med, err := optionalInt("med", e.MED)
	if err != nil {
		return model.RouteEntry{}, err
	}
	localPref, err := optionalInt("local-preference", e.LocalPreference)
	if err != nil {
		return model.RouteEntry{}, err
	}
	localAS, err := optionalInt("local-as", e.LocalAS)
	if err != nil {
		return model.RouteEntry{}, err
	}

	path := fields.ParseASPathLoose(e.ASPath)
	sourceAS := uint32(localAS)
	if len(path) > 0 {
		sourceAS = path[len(path)-1]
	}

	return model.RouteEntry{
		Prefix:          prefix,
		Active:          strings.TrimSpace(e.ActiveTag) == "*",
		Age:             age,
		Weight:          preference,
		MED:             med,
		LocalPreference: localPref,
		ASPath:          path,
		Communities:     fields.JoinCommunities(e.Communities.Standard, e.Communities.Extended, e.Communities.Large),
		NextHop:         e.selectedNextHop(),
		SourceAS:        sourceAS,
		SourceRID:       strings.TrimSpace(e.PeerID),
		PeerRID:         strings.TrimSpace(e.LearnedFrom),
		RPKIState:       rpkiState(e.ValidationState),
	}, nil
}

// selectedNextHop returns the <to> of the selected next hop, falling back to
// the first one listed.
func (e RouteEntry) selectedNextHop() string {
	for _, nh := range e.NextHops {
		if nh.SelectedNextHop != nil {
			return strings.TrimSpace(nh.To)
		}
	}
	if len(e.NextHops) > 0 {
		return strings.TrimSpace(e.NextHops[0].To)
	}
	return ""
}

func rpkiState(s string) model.RPKIState {
	if st, ok := validationStates[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st
	}
	return model.RPKIUnknown
}

// vrfFromTable maps "inet.0" and "inet6.0" to the default VRF and
// "CUST.inet.0" to "CUST".
func vrfFromTable(name string) string {
	name = strings.TrimSpace(name)
	for _, suffix := range []string{"inet.0", "inet6.0"} {
		if name == suffix {
			return model.DefaultVRF
		}
		if vrf, ok := strings.CutSuffix(name, "."+suffix); ok {
			return vrf
		}
	}
	if name == "" {
		return model.DefaultVRF
	}
	return name
}

func optionalInt(field, s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, util.NewFieldFormatError(field, s, "not an integer")
	}
	return n, nil
}
