// Package fields turns vendor text fragments (durations, AS paths, community
// lists, path summaries) into typed values. Every function is pure and
// returns a *util.FieldFormatError instead of panicking on malformed input.
package fields

import (
	"strconv"
	"strings"

	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/util"
)

// Paths is the per-prefix path summary line.
type Paths struct {
	Available    int `json:"available"`
	Best         int `json:"best"`
	Select       int `json:"select"`
	BestExternal int `json:"best_external"`
	AddPath      int `json:"add_path"`
}

const pathsLabel = "Paths:"

// ParsePaths parses "Paths:   5 available, 1 best, 1 select, 0 best-external, 0 add-path".
// It returns nil, nil when the line is not a path summary. Unknown labels
// are ignored and absent labels stay zero.
func ParsePaths(line string) (*Paths, error) {
	rest, ok := util.CutLabel(strings.TrimLeft(line, " \t"), pathsLabel)
	if !ok {
		return nil, nil
	}

	p := &Paths{}
	for _, tok := range util.SplitCommaSeparated(rest) {
		num, label, ok := strings.Cut(tok, " ")
		if !ok {
			return nil, util.NewFieldFormatError("path summary", tok, `expected "<count> <label>"`)
		}
		n, err := strconv.Atoi(num)
		if err != nil || n < 0 {
			return nil, util.NewFieldFormatError("path summary", tok, "count is not a non-negative integer")
		}
		switch strings.TrimSpace(label) {
		case "available":
			p.Available = n
		case "best":
			p.Best = n
		case "select":
			p.Select = n
		case "best-external":
			p.BestExternal = n
		case "add-path":
			p.AddPath = n
		}
	}
	return p, nil
}

// ParseDuration converts "9d22h50m28s" to seconds. Days, hours, minutes and
// seconds must all be present, in that order.
func ParseDuration(s string) (int64, error) {
	raw := s
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, "s") {
		return 0, util.NewFieldFormatError("duration", raw, "missing seconds unit")
	}
	s = strings.TrimSuffix(s, "s")
	s = strings.NewReplacer("d", " ", "h", " ", "m", " ").Replace(s)

	parts := strings.Fields(s)
	if len(parts) != 4 {
		return 0, util.NewFieldFormatError("duration", raw, "expected days, hours, minutes and seconds")
	}
	if strings.Count(raw, "d") != 1 || strings.Count(raw, "h") != 1 || strings.Count(raw, "m") != 1 ||
		strings.Index(raw, "d") > strings.Index(raw, "h") || strings.Index(raw, "h") > strings.Index(raw, "m") {
		return 0, util.NewFieldFormatError("duration", raw, "units out of order")
	}

	var vals [4]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, util.NewFieldFormatError("duration", raw, "component "+strconv.Quote(p)+" is not a non-negative integer")
		}
		vals[i] = n
	}
	return vals[0]*86400 + vals[1]*3600 + vals[2]*60 + vals[3], nil
}

// EmptyASPath is the token some dialects print for a locally originated route.
const EmptyASPath = "Nil"

// ParseASPath parses a space separated list of AS numbers. "Nil" and the
// empty string yield an empty path. Any other token that is not a positive
// 32-bit integer is an error.
func ParseASPath(s string) ([]uint32, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == EmptyASPath {
		return []uint32{}, nil
	}

	tokens := strings.Fields(s)
	path := make([]uint32, 0, len(tokens))
	for _, tok := range tokens {
		asn, err := parseASN(tok)
		if err != nil {
			return nil, util.NewFieldFormatError("as-path", s, err.Error())
		}
		path = append(path, asn)
	}
	return path, nil
}

// ParseASPathLoose keeps the decimal AS numbers of s and drops everything
// else: origin codes ("I", "?", "i"), local-AS brackets, AS_SET and
// confederation markers. Used for dialects that decorate the path.
func ParseASPathLoose(s string) []uint32 {
	path := []uint32{}
	for _, tok := range strings.Fields(s) {
		if asn, err := parseASN(tok); err == nil {
			path = append(path, asn)
		}
	}
	return path
}

func parseASN(tok string) (uint32, error) {
	n, err := strconv.ParseUint(tok, 10, 32)
	if err != nil {
		return 0, util.NewFieldFormatError("asn", tok, "not a 32-bit AS number")
	}
	if n == 0 {
		return 0, util.NewFieldFormatError("asn", tok, "AS 0 is reserved")
	}
	return uint32(n), nil
}

// ParseCommunities splits a ", " separated community list and strips the
// angle brackets some dialects wrap each value in. Standard, extended and
// large community lists all use this form.
func ParseCommunities(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ", ")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinCommunities concatenates standard, extended and large communities in
// that order.
func JoinCommunities(standard, extended, large []string) []string {
	out := make([]string, 0, len(standard)+len(extended)+len(large))
	out = append(out, standard...)
	out = append(out, extended...)
	out = append(out, large...)
	return out
}

// RPKIFromFlag maps a device boolean validity flag: true is Valid, anything
// else is Unknown.
func RPKIFromFlag(valid bool) model.RPKIState {
	if valid {
		return model.RPKIValid
	}
	return model.RPKIUnknown
}
