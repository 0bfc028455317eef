// Package settings manages persistent user settings for the routeglass CLI.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/routeglass/routeglass/pkg/util"
)

// DefaultInventoryPath is used when no inventory is configured
const DefaultInventoryPath = "/etc/routeglass/inventory.yaml"

// Settings holds persistent user preferences. Command-line flags override
// every field.
type Settings struct {
	// InventoryPath is the device inventory YAML file
	InventoryPath string `json:"inventory,omitempty"`

	// DiagFile receives diagnostic events as JSON lines
	DiagFile string `json:"diag_file,omitempty"`

	// LogLevel is a logrus level name
	LogLevel string `json:"log_level,omitempty"`

	// LogFile sends logs to a rotated file instead of stderr
	LogFile string `json:"log_file,omitempty"`

	// Policy is the entry error policy: fail-fast or skip-invalid
	Policy string `json:"policy,omitempty"`

	// RedisAddr enables the shared Redis diagnostic buffer
	RedisAddr string `json:"redis_addr,omitempty"`

	// RedisKey overrides the Redis list name
	RedisKey string `json:"redis_key,omitempty"`
}

// fields maps settings keys to their storage, for `settings set`.
func (s *Settings) fields() map[string]*string {
	return map[string]*string{
		"inventory":  &s.InventoryPath,
		"diag_file":  &s.DiagFile,
		"log_level":  &s.LogLevel,
		"log_file":   &s.LogFile,
		"policy":     &s.Policy,
		"redis_addr": &s.RedisAddr,
		"redis_key":  &s.RedisKey,
	}
}

// Keys returns the settable keys, sorted.
func Keys() []string {
	keys := make([]string, 0)
	for k := range (&Settings{}).fields() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DefaultSettingsPath returns the default path for the settings file
func DefaultSettingsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "routeglass_settings.json"
	}
	return filepath.Join(home, ".routeglass", "settings.json")
}

// Load reads settings from the default location
func Load() (*Settings, error) {
	return LoadFrom(DefaultSettingsPath())
}

// LoadFrom reads settings from a specific path. A missing file yields
// empty settings.
func LoadFrom(path string) (*Settings, error) {
	s := &Settings{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}

	return s, nil
}

// Save writes settings to the default location
func (s *Settings) Save() error {
	return s.SaveTo(DefaultSettingsPath())
}

// SaveTo writes settings to a specific path
func (s *Settings) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Set assigns a setting by key. An empty value clears it.
func (s *Settings) Set(key, value string) error {
	field, ok := s.fields()[key]
	if !ok {
		return fmt.Errorf("unknown setting %q: %w", key, util.ErrInvalidConfig)
	}
	*field = value
	return nil
}

// Get returns a setting by key.
func (s *Settings) Get(key string) (string, error) {
	field, ok := s.fields()[key]
	if !ok {
		return "", fmt.Errorf("unknown setting %q: %w", key, util.ErrInvalidConfig)
	}
	return *field, nil
}

// GetInventoryPath returns the inventory path (with fallback)
func (s *Settings) GetInventoryPath() string {
	if s.InventoryPath != "" {
		return s.InventoryPath
	}
	return DefaultInventoryPath
}

// GetLogLevel returns the log level (with fallback)
func (s *Settings) GetLogLevel() string {
	if s.LogLevel != "" {
		return s.LogLevel
	}
	return "info"
}

// Clear resets all settings to defaults
func (s *Settings) Clear() {
	*s = Settings{}
}
