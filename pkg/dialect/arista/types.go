package arista

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Response mirrors `show ip bgp <prefix> detail | json`. Field names are the
// explicit EOS key table; nothing is derived from Go identifiers.
type Response struct {
	VRFs VRFs `json:"vrfs"`
}

// VRFs keeps the device's VRF order.
type VRFs []VRF

// VRF is one entry of the "vrfs" object.
type VRF struct {
	Name            string       `json:"-"`
	RouterID        string       `json:"routerId"`
	ASN             ASN          `json:"asn"`
	VRF             string       `json:"vrf"`
	BGPRouteEntries RouteEntries `json:"bgpRouteEntries"`
}

// RouteEntries keeps the device's prefix order.
type RouteEntries []RouteEntry

// RouteEntry is one prefix and its paths.
type RouteEntry struct {
	Prefix        string      `json:"-"`
	// DecodeErr records a value that did not fit the key table; the entry
	// is reported as malformed during translation.
	DecodeErr     error       `json:"-"`
	Address       string      `json:"address"`
	MaskLength    int         `json:"maskLength"`
	TotalPaths    int         `json:"totalPaths"`
	BGPRoutePaths []RoutePath `json:"bgpRoutePaths"`
}

// RoutePath is one element of "bgpRoutePaths".
type RoutePath struct {
	ASPathEntry       ASPathEntry `json:"asPathEntry"`
	MED               int64       `json:"med"`
	LocalPreference   int64       `json:"localPreference"`
	Weight            int64       `json:"weight"`
	NextHop           string      `json:"nextHop"`
	Timestamp         int64       `json:"timestamp"`
	PeerEntry         PeerEntry   `json:"peerEntry"`
	ReasonNotBestpath string      `json:"reasonNotBestpath"`
	RouteType         RouteType   `json:"routeType"`
	RouteDetail       RouteDetail `json:"routeDetail"`
}

// ASPathEntry holds the decorated path string, e.g. "13335 i".
type ASPathEntry struct {
	ASPathType string `json:"asPathType"`
	ASPath     string `json:"asPath"`
}

// PeerEntry identifies the advertising neighbor.
type PeerEntry struct {
	PeerRouterID string `json:"peerRouterId"`
	PeerAddr     string `json:"peerAddr"`
}

// RouteType carries the EOS path status flags.
type RouteType struct {
	Active          bool `json:"active"`
	Valid           bool `json:"valid"`
	Backup          bool `json:"backup"`
	ECMP            bool `json:"ecmp"`
	ECMPHead        bool `json:"ecmpHead"`
	ECMPContributor bool `json:"ecmpContributor"`
	Stale           bool `json:"stale"`
	Suppressed      bool `json:"suppressed"`
	Queued          bool `json:"queued"`
}

// RouteDetail carries origin, communities and origin validation.
type RouteDetail struct {
	Origin             string         `json:"origin"`
	CommunityList      []string       `json:"communityList"`
	ExtCommunityList   []string       `json:"extCommunityList"`
	LargeCommunityList []string       `json:"largeCommunityList"`
	RPKIValidation     RPKIValidation `json:"rpkiOriginValidation"`
}

// RPKIValidation is the origin validation block; State is one of "valid",
// "invalid", "notFound", "notValidated".
type RPKIValidation struct {
	State string `json:"state"`
}

// ASN accepts both the string form newer EOS emits and a bare number.
type ASN uint32

func (a *ASN) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	// asdot notation, e.g. "1.10"
	if hi, lo, ok := strings.Cut(s, "."); ok {
		h, err1 := strconv.ParseUint(hi, 10, 16)
		l, err2 := strconv.ParseUint(lo, 10, 16)
		if err1 != nil || err2 != nil {
			return fmt.Errorf("invalid asn %q", s)
		}
		*a = ASN(h<<16 | l)
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid asn %q", s)
	}
	*a = ASN(n)
	return nil
}

func (v *VRFs) UnmarshalJSON(b []byte) error {
	return decodeOrderedObject(b, func(key string, dec *json.Decoder) error {
		vrf := VRF{Name: key}
		if err := dec.Decode(&vrf); err != nil {
			return fmt.Errorf("vrf %s: %w", key, err)
		}
		*v = append(*v, vrf)
		return nil
	})
}

func (r *RouteEntries) UnmarshalJSON(b []byte) error {
	return decodeOrderedObject(b, func(key string, dec *json.Decoder) error {
		entry := RouteEntry{Prefix: key}
		// The enclosing document was already syntax-checked, so a failure
		// here is a type mismatch inside this entry only.
		if err := dec.Decode(&entry); err != nil {
			entry = RouteEntry{Prefix: key, DecodeErr: err}
		}
		*r = append(*r, entry)
		return nil
	})
}

// decodeOrderedObject walks a JSON object key by key so map order from the
// device is kept. each is called with the decoder positioned at the value.
func decodeOrderedObject(b []byte, each func(key string, dec *json.Decoder) error) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", tok)
		}
		if err := each(key, dec); err != nil {
			return err
		}
	}
	_, err = dec.Token()
	return err
}
