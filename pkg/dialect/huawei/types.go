package huawei

import "github.com/routeglass/routeglass/pkg/fields"

// Table mirrors `display bgp routing-table <prefix>` output using the
// device's own field names and units.
type Table struct {
	LocalRouterID string
	LocalASNumber uint32
	Paths         fields.Paths
	Routes        []RouteEntry
}

// RouteEntry is one "BGP routing table entry information of" block.
type RouteEntry struct {
	Prefix              string
	FromAddr            string
	Duration            int64 // seconds
	DirectOutInterface  string
	OriginalNextHop     string
	RelayIPNextHop      string
	RelayIPOutInterface string
	QoS                 string
	Communities         []string
	ExtCommunities      []string
	LargeCommunities    []string
	ASPath              []uint32
	Origin              string
	Metric              int64 // MED
	LocalPreference     int64
	PreferenceValue     int64
	IsValid             bool
	IsExternal          bool
	IsBackup            bool
	IsBest              bool
	IsSelected          bool
	Preference          int64
}
