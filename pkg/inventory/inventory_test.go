package inventory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/routeglass/routeglass/pkg/plugin"
	"github.com/routeglass/routeglass/pkg/util"
)

// Device must satisfy the pipeline contract.
var _ plugin.Device = (*Device)(nil)

func loadTestInventory(t *testing.T) *Inventory {
	t.Helper()
	inv, err := Load("testdata/inventory.yaml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return inv
}

func TestLoad(t *testing.T) {
	inv := loadTestInventory(t)

	if len(inv.Devices) != 3 {
		t.Fatalf("expected 3 devices, got %d", len(inv.Devices))
	}
	if got := inv.DeviceNames(); strings.Join(got, ",") != "core1,edge1,spine1" {
		t.Errorf("DeviceNames() = %v", got)
	}

	edge, err := inv.Device("edge1")
	if err != nil {
		t.Fatalf("Device(edge1): %v", err)
	}
	if edge.Name() != "edge1" || edge.Platform() != "huawei" || !edge.StructuredOutput() {
		t.Errorf("edge1 = %+v", edge)
	}
	if edge.Addr() != "192.0.2.10:22" {
		t.Errorf("Addr() = %q", edge.Addr())
	}

	core, _ := inv.Device("core1")
	if core.Addr() != "[2001:db8::1]:2222" {
		t.Errorf("IPv6 Addr() = %q", core.Addr())
	}
	if core.Credential.KeyFile != "/etc/routeglass/id_ed25519" {
		t.Errorf("KeyFile = %q", core.Credential.KeyFile)
	}

	spine, _ := inv.Device("spine1")
	if spine.StructuredOutput() {
		t.Error("spine1 should default to unstructured output")
	}
}

func TestDevice_NotFound(t *testing.T) {
	inv := loadTestInventory(t)
	if _, err := inv.Device("nope"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := inv.Directive("nope"); !errors.Is(err, util.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDirectives(t *testing.T) {
	inv := loadTestInventory(t)

	tests := []struct {
		id     string
		target string
		want   string
	}{
		// overridden by the file
		{"juniper_bgp_route_table", "1.1.1.0/24", "show route 1.1.1.0/24 detail | display xml"},
		// built-in default
		{"huawei_bgp_route_table", " 1.1.1.0 ", "display bgp routing-table 1.1.1.0"},
		{"arista_bgp_community_table", "65000:1", "show ip bgp community 65000:1 detail | json"},
		{"ping", "192.0.2.1", "ping 192.0.2.1 count 5"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := inv.Command(tt.id, tt.target)
			if err != nil {
				t.Fatalf("Command: %v", err)
			}
			if got != tt.want {
				t.Errorf("Command() = %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := inv.Command("ping", "  "); err == nil {
		t.Error("expected error for empty target")
	}
	if len(inv.DirectiveIDs()) != 10 {
		t.Errorf("expected 9 built-in + 1 custom directive, got %v", inv.DirectiveIDs())
	}
}

func TestCommandFor_PlatformRestriction(t *testing.T) {
	inv := loadTestInventory(t)
	edge, _ := inv.Device("edge1")

	if _, err := inv.CommandFor(edge, "juniper_bgp_route_table", "1.1.1.0"); !errors.Is(err, util.ErrInvalidConfig) {
		t.Errorf("expected platform mismatch error, got %v", err)
	}
	got, err := inv.CommandFor(edge, "ping", "1.1.1.1")
	if err != nil || got != "ping 1.1.1.1 count 5" {
		t.Errorf("CommandFor(ping) = %q, %v", got, err)
	}
}

func TestCredential_ResolvePassword(t *testing.T) {
	t.Setenv("ROUTEGLASS_TEST_EDGE1_PASSWORD", "from-env")
	inv := loadTestInventory(t)

	edge, _ := inv.Device("edge1")
	if got := edge.Credential.ResolvePassword(); got != "from-env" {
		t.Errorf("ResolvePassword() = %q", got)
	}
	spine, _ := inv.Device("spine1")
	if got := spine.Credential.ResolvePassword(); got != "secret" {
		t.Errorf("ResolvePassword() = %q", got)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no name", "devices:\n  - address: 1.2.3.4\n    platform: huawei\n", "has no name"},
		{"duplicate", "devices:\n  - {name: a, address: x, platform: huawei}\n  - {name: a, address: y, platform: huawei}\n", "defined twice"},
		{"no address", "devices:\n  - {name: a, platform: huawei}\n", "has no address"},
		{"no platform", "devices:\n  - {name: a, address: x}\n", "has no platform"},
		{"bad port", "devices:\n  - {name: a, address: x, platform: huawei, port: 70000}\n", "out of range"},
		{"empty command", "directives:\n  x:\n    command: ''\n", "has no command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, util.ErrValidationFailed) {
				t.Errorf("expected ErrValidationFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("devices: [\n"), 0644)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "parsing yaml") {
		t.Errorf("expected yaml error, got %v", err)
	}
}

func TestDefaultDirectives_Fresh(t *testing.T) {
	a := DefaultDirectives()
	a["huawei_bgp_route_table"].Command = "changed"
	if DefaultDirectives()["huawei_bgp_route_table"].Command == "changed" {
		t.Error("DefaultDirectives must not share state between calls")
	}
}
