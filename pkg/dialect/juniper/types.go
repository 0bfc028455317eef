package juniper

// RouteInformation mirrors the <route-information> element of
// `show route ... detail | display xml`. Numeric leaves are kept as text so a
// bad value fails only its own entry.
type RouteInformation struct {
	Tables []RouteTable `xml:"route-table"`
}

// RouteTable is one <route-table> (inet.0, CUST.inet.0, ...).
type RouteTable struct {
	TableName        string  `xml:"table-name"`
	DestinationCount string  `xml:"destination-count"`
	TotalRouteCount  string  `xml:"total-route-count"`
	ActiveRouteCount string  `xml:"active-route-count"`
	HiddenRouteCount string  `xml:"hidden-route-count"`
	Routes           []Route `xml:"rt"`
}

// Route is one destination and its paths.
type Route struct {
	Destination    string       `xml:"rt-destination"`
	PrefixLength   string       `xml:"rt-prefix-length"`
	EntryCount     string       `xml:"rt-entry-count"`
	AnnouncedCount string       `xml:"rt-announced-count"`
	Entries        []RouteEntry `xml:"rt-entry"`
}

// RouteEntry is one <rt-entry> path.
type RouteEntry struct {
	ActiveTag       string      `xml:"active-tag"`
	ProtocolName    string      `xml:"protocol-name"`
	Preference      string      `xml:"preference"`
	NextHops        []NextHop   `xml:"nh"`
	Age             Age         `xml:"age"`
	ValidationState string      `xml:"validation-state"`
	LocalAS         string      `xml:"local-as"`
	PeerAS          string      `xml:"peer-as"`
	LearnedFrom     string      `xml:"learned-from"`
	LocalPreference string      `xml:"local-preference"`
	ASPath          string      `xml:"as-path"`
	Communities     Communities `xml:"communities"`
	PeerID          string      `xml:"peer-id"`
	MED             string      `xml:"med"`
}

// NextHop is one <nh>; SelectedNextHop is set when <selected-next-hop/> is
// present.
type NextHop struct {
	SelectedNextHop *struct{} `xml:"selected-next-hop"`
	To              string    `xml:"to"`
	Via             string    `xml:"via"`
}

// Age carries both the human form ("2w0d 06:56:07") and junos:seconds.
type Age struct {
	Seconds string `xml:"seconds,attr"`
	Text    string `xml:",chardata"`
}

// Communities groups the community leaves of an entry.
type Communities struct {
	Standard []string `xml:"community"`
	Extended []string `xml:"extended-community"`
	Large    []string `xml:"large-community"`
}
