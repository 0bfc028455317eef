package huawei

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/routeglass/routeglass/pkg/dialect"
	"github.com/routeglass/routeglass/pkg/model"
	"github.com/routeglass/routeglass/pkg/util"
)

const header = "\n" +
	" BGP local router ID : 10.0.0.1\n" +
	" Local AS number : 65000\n" +
	" Paths:   5 available, 1 best, 1 select, 0 best-external, 0 add-path\n"

const wellFormedBlock = " BGP routing table entry information of 1.1.1.0/24:\n" +
	" From: 192.0.2.1 (10.255.0.1)\n" +
	" Route Duration: 9d22h50m28s\n" +
	" Original nexthop: 192.0.2.1\n" +
	" Community: <13335:10097>, <13335:19010>\n" +
	" AS-path 263444 13335, origin igp, pref-val 0, valid, external, best, select, pre 255\n"

func loadFixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	if err != nil {
		t.Fatalf("reading fixture %s: %v", name, err)
	}
	return string(data)
}

func TestExtract_Header(t *testing.T) {
	table, err := Extract(header+wellFormedBlock, dialect.Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if table.LocalRouterID != "10.0.0.1" {
		t.Errorf("LocalRouterID = %q", table.LocalRouterID)
	}
	if table.LocalASNumber != 65000 {
		t.Errorf("LocalASNumber = %d", table.LocalASNumber)
	}
	if table.Paths.Available != 5 || table.Paths.Best != 1 || table.Paths.Select != 1 {
		t.Errorf("Paths = %+v", table.Paths)
	}
}

func TestParse_SingleBlock(t *testing.T) {
	rt, err := Parse(header+wellFormedBlock, dialect.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rt.Count != 1 || len(rt.Routes) != 1 {
		t.Fatalf("Count = %d, routes = %d", rt.Count, len(rt.Routes))
	}
	if rt.VRF != "default" || rt.WinningWeight != model.WinningHigh {
		t.Errorf("VRF = %q, WinningWeight = %q", rt.VRF, rt.WinningWeight)
	}

	r := rt.Routes[0]
	if r.Prefix != "1.1.1.0/24" {
		t.Errorf("Prefix = %q", r.Prefix)
	}
	if !r.Active {
		t.Error("Active should follow the select flag")
	}
	if r.Age != 9*86400+22*3600+50*60+28 {
		t.Errorf("Age = %d", r.Age)
	}
	if r.Weight != 255 {
		t.Errorf("Weight = %d", r.Weight)
	}
	if r.PeerRID != "192.0.2.1" || r.NextHop != "192.0.2.1" {
		t.Errorf("PeerRID = %q, NextHop = %q", r.PeerRID, r.NextHop)
	}
	if r.SourceAS != 0 || r.SourceRID != "" {
		t.Errorf("SourceAS = %d, SourceRID = %q", r.SourceAS, r.SourceRID)
	}
	if len(r.ASPath) != 2 || r.ASPath[0] != 263444 || r.ASPath[1] != 13335 {
		t.Errorf("ASPath = %v", r.ASPath)
	}
	if r.RPKIState != model.RPKIValid {
		t.Errorf("RPKIState = %s", r.RPKIState)
	}
}

func TestParse_NilASPathLine(t *testing.T) {
	block := " BGP routing table entry information of 10.10.0.0/16:\n" +
		" From: 0.0.0.0 (0.0.0.0)\n" +
		" AS-path Nil, origin igp, pref-val 0, valid, pre 100\n"

	table, err := Extract(header+block, dialect.Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	e := table.Routes[0]
	if len(e.ASPath) != 0 {
		t.Errorf("ASPath = %v, want empty", e.ASPath)
	}
	if e.Origin != "igp" {
		t.Errorf("Origin = %q", e.Origin)
	}
	if e.PreferenceValue != 0 {
		t.Errorf("PreferenceValue = %d", e.PreferenceValue)
	}

	r := table.RouteTable().Routes[0]
	if r.ASPath == nil || len(r.ASPath) != 0 {
		t.Errorf("canonical ASPath = %#v, want empty non-nil", r.ASPath)
	}
	if r.RPKIState != model.RPKIValid {
		t.Errorf("RPKIState = %s", r.RPKIState)
	}
	if r.Weight != 100 {
		t.Errorf("Weight = %d", r.Weight)
	}
	if r.Active {
		t.Error("route without select flag should not be active")
	}
}

func TestParse_Fixture(t *testing.T) {
	rt, err := Parse(loadFixture(t, "bgp_route_two_paths.txt"), dialect.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rt.Count != 2 || len(rt.Routes) != 2 {
		t.Fatalf("Count = %d, routes = %d", rt.Count, len(rt.Routes))
	}

	first, second := rt.Routes[0], rt.Routes[1]
	if first.PeerRID != "192.0.2.1" || second.PeerRID != "198.51.100.1" {
		t.Errorf("routes out of device order: %q, %q", first.PeerRID, second.PeerRID)
	}
	if first.MED != 10 || first.LocalPreference != 200 {
		t.Errorf("MED = %d, LocalPreference = %d", first.MED, first.LocalPreference)
	}
	wantComms := []string{"13335:10097", "13335:19010", "13335:20050", "65444:4000", "RT: 65000:100", "65000:1:2"}
	if strings.Join(first.Communities, "|") != strings.Join(wantComms, "|") {
		t.Errorf("Communities = %v", first.Communities)
	}
	if !first.Active || second.Active {
		t.Errorf("Active = %v, %v", first.Active, second.Active)
	}
	if second.Age != 3723 {
		t.Errorf("second Age = %d", second.Age)
	}
	if second.MED != 0 {
		t.Errorf("absent MED should default to 0, got %d", second.MED)
	}
}

func TestExtract_FixtureIntermediate(t *testing.T) {
	table, err := Extract(loadFixture(t, "bgp_route_two_paths.txt"), dialect.Options{})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	first := table.Routes[0]
	if first.DirectOutInterface != "100GE0/1/48.510" || first.QoS != "0x0" {
		t.Errorf("DirectOutInterface = %q, QoS = %q", first.DirectOutInterface, first.QoS)
	}
	if !first.IsBest || !first.IsExternal || first.IsBackup {
		t.Errorf("flags = best:%v external:%v backup:%v", first.IsBest, first.IsExternal, first.IsBackup)
	}
	second := table.Routes[1]
	if second.RelayIPNextHop != "198.51.100.1" || second.RelayIPOutInterface != "100GE0/1/49" {
		t.Errorf("relay = %q %q", second.RelayIPNextHop, second.RelayIPOutInterface)
	}
}

func TestParse_TwoBlocksPreserveOrder(t *testing.T) {
	b1 := strings.Replace(wellFormedBlock, "1.1.1.0/24", "1.0.0.0/24", 1)
	rt, err := Parse(header+b1+"\n"+wellFormedBlock, dialect.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rt.Count != 2 {
		t.Fatalf("Count = %d, want 2", rt.Count)
	}
	if rt.Routes[0].Prefix != "1.0.0.0/24" || rt.Routes[1].Prefix != "1.1.1.0/24" {
		t.Errorf("order = %s, %s", rt.Routes[0].Prefix, rt.Routes[1].Prefix)
	}
}

func TestParse_TrailingBlankLines(t *testing.T) {
	rt, err := Parse(header+wellFormedBlock+"\n\n   \n", dialect.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rt.Count != 1 {
		t.Errorf("trailing blank lines produced %d routes", rt.Count)
	}
}

func TestParse_CRLF(t *testing.T) {
	in := strings.ReplaceAll(header+wellFormedBlock, "\n", "\r\n")
	rt, err := Parse(in, dialect.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rt.Routes[0].Prefix != "1.1.1.0/24" {
		t.Errorf("Prefix = %q", rt.Routes[0].Prefix)
	}
}

func TestParse_StructuralErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too few lines", "\n BGP local router ID : 10.0.0.1\n Local AS number : 65000\n"},
		{"missing router id", "\n Router : 10.0.0.1\n Local AS number : 65000\n Paths:   1 available\n x\n"},
		{"missing local as", "\n BGP local router ID : 10.0.0.1\n AS : 65000\n Paths:   1 available\n x\n"},
		{"missing paths", "\n BGP local router ID : 10.0.0.1\n Local AS number : 65000\n Routes: 1\n x\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input, dialect.Options{})
			if !errors.Is(err, util.ErrStructural) {
				t.Errorf("err = %v, want ErrStructural", err)
			}
		})
	}
}

func TestParse_BadLocalAS(t *testing.T) {
	in := "\n BGP local router ID : 10.0.0.1\n Local AS number : sixty\n Paths:   1 available\n x\n"
	_, err := Parse(in, dialect.Options{})
	if !errors.Is(err, util.ErrFieldFormat) {
		t.Errorf("err = %v, want ErrFieldFormat", err)
	}
}

const badDurationBlock = " BGP routing table entry information of 9.9.9.0/24:\n" +
	" From: 192.0.2.7 (10.255.0.7)\n" +
	" Route Duration: 22h50m\n"

func TestParse_FailFastAbortsWholeTable(t *testing.T) {
	_, err := Parse(header+wellFormedBlock+"\n"+badDurationBlock, dialect.Options{})
	if err == nil {
		t.Fatal("expected a malformed block to abort the parse")
	}
	if !errors.Is(err, util.ErrFieldFormat) {
		t.Errorf("err = %v, want ErrFieldFormat", err)
	}
}

func TestParse_SkipInvalidKeepsGoodBlocks(t *testing.T) {
	var skipped []int
	opts := dialect.Options{
		Policy: dialect.SkipInvalid,
		OnSkip: func(index int, err error) { skipped = append(skipped, index) },
	}

	rt, err := Parse(header+badDurationBlock+"\n"+wellFormedBlock, opts)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if rt.Count != 1 || rt.Routes[0].Prefix != "1.1.1.0/24" {
		t.Errorf("routes = %+v", rt.Routes)
	}
	if len(skipped) != 1 || skipped[0] != 0 {
		t.Errorf("skipped = %v, want [0]", skipped)
	}
}

func TestParse_MissingOptionalFields(t *testing.T) {
	block := " BGP routing table entry information of 8.8.8.0/24:\n"
	rt, err := Parse(header+block, dialect.Options{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	r := rt.Routes[0]
	if r.Age != 0 || r.PeerRID != "" || r.Weight != 0 || len(r.Communities) != 0 {
		t.Errorf("defaults not applied: %+v", r)
	}
	if r.RPKIState != model.RPKIUnknown {
		t.Errorf("RPKIState = %s, want unknown", r.RPKIState)
	}
}

func TestParse_BadAttributeValues(t *testing.T) {
	for _, attr := range []string{
		"AS-path 65000 x, origin igp",
		"AS-path Nil, MED ten",
		"AS-path Nil, localpref high",
		"AS-path Nil, pre one",
	} {
		block := " BGP routing table entry information of 8.8.8.0/24:\n " + attr + "\n"
		if _, err := Parse(header+block, dialect.Options{}); !errors.Is(err, util.ErrFieldFormat) {
			t.Errorf("%q: err = %v, want ErrFieldFormat", attr, err)
		}
	}
}

func TestParse_CountInvariant(t *testing.T) {
	inputs := []string{
		header + wellFormedBlock,
		header + wellFormedBlock + "\n" + wellFormedBlock + "\n" + wellFormedBlock,
		loadFixture(t, "bgp_route_two_paths.txt"),
	}
	for _, in := range inputs {
		rt, err := Parse(in, dialect.Options{})
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if rt.Count != len(rt.Routes) {
			t.Errorf("Count = %d, len(Routes) = %d", rt.Count, len(rt.Routes))
		}
		for _, r := range rt.Routes {
			if !r.RPKIState.Valid() {
				t.Errorf("undefined rpki state %d", r.RPKIState)
			}
		}
	}
}
