// Package inventory loads the YAML file describing which devices can be
// queried, how to reach them and which command each directive sends.
package inventory

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/routeglass/routeglass/pkg/util"
)

// DefaultPort is the SSH port used when a device sets none.
const DefaultPort = 22

// TargetPlaceholder is replaced by the query target in directive commands.
const TargetPlaceholder = "{target}"

// Inventory is a parsed inventory file.
type Inventory struct {
	Devices    []*Device             `yaml:"devices"`
	Directives map[string]*Directive `yaml:"directives"`

	byName map[string]*Device
}

// Device is one queryable router. It satisfies plugin.Device.
type Device struct {
	DeviceName     string     `yaml:"name"`
	Address        string     `yaml:"address"`
	Port           int        `yaml:"port,omitempty"`
	DevicePlatform string     `yaml:"platform"`
	Structured     bool       `yaml:"structured_output"`
	Credential     Credential `yaml:"credential"`
	// KnownHosts is an OpenSSH known_hosts file; when empty the host key
	// is not checked.
	KnownHosts string `yaml:"known_hosts,omitempty"`
}

// Credential holds SSH login material. PasswordEnv names an environment
// variable to read the password from instead of storing it in the file.
type Credential struct {
	Username    string `yaml:"username"`
	Password    string `yaml:"password,omitempty"`
	PasswordEnv string `yaml:"password_env,omitempty"`
	KeyFile     string `yaml:"key_file,omitempty"`
}

// Directive is a named command template.
type Directive struct {
	Command string `yaml:"command"`
	// Platforms limits the directive to these device platforms; empty
	// means any.
	Platforms   []string `yaml:"platforms,omitempty"`
	Description string   `yaml:"description,omitempty"`
}

func (d *Device) Name() string           { return d.DeviceName }
func (d *Device) Platform() string       { return d.DevicePlatform }
func (d *Device) StructuredOutput() bool { return d.Structured }

// Addr returns host:port for dialing.
func (d *Device) Addr() string {
	port := d.Port
	if port == 0 {
		port = DefaultPort
	}
	if strings.Contains(d.Address, ":") && !strings.HasPrefix(d.Address, "[") {
		return fmt.Sprintf("[%s]:%d", d.Address, port)
	}
	return fmt.Sprintf("%s:%d", d.Address, port)
}

// ResolvePassword returns the inline password, or the value of PasswordEnv.
func (c Credential) ResolvePassword() string {
	if c.Password != "" {
		return c.Password
	}
	if c.PasswordEnv != "" {
		return os.Getenv(c.PasswordEnv)
	}
	return ""
}

// Load reads and validates an inventory file.
func Load(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading inventory %s: %w", path, err)
	}
	inv, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("inventory %s: %w", path, err)
	}
	return inv, nil
}

// Parse decodes and validates inventory YAML. Built-in directives are added
// for any id the file does not define.
func Parse(data []byte) (*Inventory, error) {
	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("parsing yaml: %w", err)
	}

	if inv.Directives == nil {
		inv.Directives = make(map[string]*Directive)
	}
	for id, d := range DefaultDirectives() {
		if _, ok := inv.Directives[id]; !ok {
			inv.Directives[id] = d
		}
	}

	if err := inv.validate(); err != nil {
		return nil, err
	}

	inv.byName = make(map[string]*Device, len(inv.Devices))
	for _, d := range inv.Devices {
		inv.byName[d.DeviceName] = d
	}
	return &inv, nil
}

func (inv *Inventory) validate() error {
	v := &util.ValidationBuilder{}

	seen := make(map[string]bool)
	for i, d := range inv.Devices {
		if d == nil {
			v.AddErrorf("device %d is empty", i)
			continue
		}
		if d.DeviceName == "" {
			v.AddErrorf("device %d has no name", i)
			continue
		}
		if seen[d.DeviceName] {
			v.AddErrorf("device '%s' is defined twice", d.DeviceName)
		}
		seen[d.DeviceName] = true
		v.Add(d.Address != "", fmt.Sprintf("device '%s' has no address", d.DeviceName))
		v.Add(d.DevicePlatform != "", fmt.Sprintf("device '%s' has no platform", d.DeviceName))
		v.Add(d.Port >= 0 && d.Port <= 65535, fmt.Sprintf("device '%s' port %d out of range", d.DeviceName, d.Port))
	}

	for id, d := range inv.Directives {
		if d == nil || strings.TrimSpace(d.Command) == "" {
			v.AddErrorf("directive '%s' has no command", id)
		}
	}

	return v.Build()
}

// Device returns the named device.
func (inv *Inventory) Device(name string) (*Device, error) {
	d, ok := inv.byName[name]
	if !ok {
		return nil, fmt.Errorf("device '%s': %w", name, util.ErrNotFound)
	}
	return d, nil
}

// Directive returns the directive with the given id.
func (inv *Inventory) Directive(id string) (*Directive, error) {
	d, ok := inv.Directives[id]
	if !ok {
		return nil, fmt.Errorf("directive '%s': %w", id, util.ErrNotFound)
	}
	return d, nil
}

// Command renders directive id for target.
func (inv *Inventory) Command(id, target string) (string, error) {
	d, err := inv.Directive(id)
	if err != nil {
		return "", err
	}
	return d.Render(target)
}

// CommandFor renders directive id for target on device, rejecting
// directives restricted to other platforms.
func (inv *Inventory) CommandFor(device *Device, id, target string) (string, error) {
	d, err := inv.Directive(id)
	if err != nil {
		return "", err
	}
	if !d.Supports(device.DevicePlatform) {
		return "", fmt.Errorf("directive '%s' is not available on platform '%s': %w",
			id, device.DevicePlatform, util.ErrInvalidConfig)
	}
	return d.Render(target)
}

// Supports reports whether the directive may run on platform.
func (d *Directive) Supports(platform string) bool {
	if len(d.Platforms) == 0 {
		return true
	}
	for _, p := range d.Platforms {
		if p == platform {
			return true
		}
	}
	return false
}

// Render substitutes target into the command template.
func (d *Directive) Render(target string) (string, error) {
	if !strings.Contains(d.Command, TargetPlaceholder) {
		return d.Command, nil
	}
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("command %q needs a target", d.Command)
	}
	return strings.ReplaceAll(d.Command, TargetPlaceholder, target), nil
}

// DeviceNames returns device names sorted.
func (inv *Inventory) DeviceNames() []string {
	names := make([]string, 0, len(inv.Devices))
	for _, d := range inv.Devices {
		names = append(names, d.DeviceName)
	}
	sort.Strings(names)
	return names
}

// DirectiveIDs returns directive ids sorted.
func (inv *Inventory) DirectiveIDs() []string {
	ids := make([]string, 0, len(inv.Directives))
	for id := range inv.Directives {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
