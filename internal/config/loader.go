package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"hubd/internal/common/fsutil"
)

// Defaults applied by ApplyDefaults when the corresponding field is unset.
const (
	DefaultAddr     = ":8123"
	DefaultLogLevel = "info"
)

// Section is the free-form configuration block of one component.
type Section map[string]any

// CORS holds the opt-in CORS settings of the HTTP surface.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Config is the host configuration. Every key under Components names a
// component to activate at startup; its value is that component's Section.
type Config struct {
	Addr       string             `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel   string             `json:"log_level" yaml:"log_level" toml:"log_level"`
	CORS       CORS               `json:"cors" yaml:"cors" toml:"cors"`
	Components map[string]Section `json:"components" yaml:"components" toml:"components"`
}

// Empty reports whether c carries no configuration at all.
func (c *Config) Empty() bool {
	if c == nil {
		return true
	}
	return c.Addr == "" && c.LogLevel == "" && c.CORS.empty() && len(c.Components) == 0
}

func (c CORS) empty() bool {
	return !c.Enabled && len(c.AllowedOrigins) == 0 && len(c.AllowedMethods) == 0 && len(c.AllowedHeaders) == 0
}

// Section returns the block configured for component, or nil.
func (c *Config) Section(component string) Section {
	if c == nil {
		return nil
	}
	return c.Components[component]
}

// ComponentNames returns the configured component names in sorted order.
func (c *Config) ComponentNames() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Components))
	for name := range c.Components {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// ApplyDefaults fills unset fields, then applies HUBD_ADDR and HUBD_LOG_LEVEL.
func (c *Config) ApplyDefaults() {
	if v := os.Getenv("HUBD_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("HUBD_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Components == nil {
		c.Components = map[string]Section{}
	}
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	// A component listed with no body ("hub:") decodes as a nil Section;
	// keep the key so it is still activated.
	for name, sec := range cfg.Components {
		if sec == nil {
			cfg.Components[name] = Section{}
		}
	}
	return cfg, nil
}

// Decode copies the section into v, a pointer to a struct with yaml tags.
func (s Section) Decode(v any) error {
	b, err := yaml.Marshal(map[string]any(s))
	if err != nil {
		return fmt.Errorf("encode section: %w", err)
	}
	if err := yaml.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode section: %w", err)
	}
	return nil
}
