package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/routeglass/routeglass/pkg/model"
)

// FormatAge renders seconds in the device style, e.g. "9d22h50m28s".
func FormatAge(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	d := seconds / 86400
	h := seconds % 86400 / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	return fmt.Sprintf("%dd%02dh%02dm%02ds", d, h, m, s)
}

// FormatASPath joins a path with spaces; an empty path prints as "-".
func FormatASPath(path []uint32) string {
	if len(path) == 0 {
		return "-"
	}
	parts := make([]string, len(path))
	for i, asn := range path {
		parts[i] = strconv.FormatUint(uint64(asn), 10)
	}
	return strings.Join(parts, " ")
}

// RPKIColor colours an RPKI state name: valid green, invalid red, the
// rest yellow.
func RPKIColor(state model.RPKIState) string {
	switch state {
	case model.RPKIValid:
		return Green(state.String())
	case model.RPKIInvalid:
		return Red(state.String())
	default:
		return Yellow(state.String())
	}
}

// PrintRouteTable writes rt as an aligned table. Active routes are marked
// with "*".
func PrintRouteTable(out io.Writer, rt *model.RouteTable) {
	fmt.Fprintf(out, "%s  vrf %s, %d routes, winning weight %s\n",
		Bold("Route table"), rt.VRF, rt.Count, rt.WinningWeight)

	t := NewTableTo(out, "", "PREFIX", "NEXT-HOP", "AS-PATH", "LP", "MED", "WEIGHT", "AGE", "RPKI", "COMMUNITIES")
	for _, r := range rt.Routes {
		active := ""
		if r.Active {
			active = "*"
		}
		communities := "-"
		if len(r.Communities) > 0 {
			communities = strings.Join(r.Communities, " ")
		}
		t.Row(
			active,
			r.Prefix,
			r.NextHop,
			FormatASPath(r.ASPath),
			strconv.FormatInt(r.LocalPreference, 10),
			strconv.FormatInt(r.MED, 10),
			strconv.FormatInt(r.Weight, 10),
			FormatAge(r.Age),
			RPKIColor(r.RPKIState),
			communities,
		)
	}
	t.Flush()
}
