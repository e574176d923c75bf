package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DIGIGUIDE_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (DIGIGUIDE_*). A double underscore
// separates nested keys: DIGIGUIDE_IMAGES__TTL -> images.ttl.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// validLogFormats is the set of recognized log encoders.
var validLogFormats = map[LogFormat]bool{
	LogFormatJSON:    true,
	LogFormatConsole: true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	if len(c.Locale.Supported) == 0 {
		return fmt.Errorf("locale.supported must list at least one locale")
	}
	found := false
	for _, l := range c.Locale.Supported {
		if l == c.Locale.Default {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("locale.default %q is not in locale.supported", c.Locale.Default)
	}

	if c.Pagination.PerPage <= 0 {
		return fmt.Errorf("pagination.per_page must be positive")
	}
	if c.Pagination.MaxPerPage < c.Pagination.PerPage {
		return fmt.Errorf("pagination.max_per_page must be >= per_page")
	}

	w := c.Search.Weights
	if w.Name < 0 || w.AltName < 0 || w.Slug < 0 || w.Type < 0 || w.Summary < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}

	if c.Team.MaxSize < 1 {
		return fmt.Errorf("team.max_size must be at least 1")
	}

	if c.Images.TTL <= 0 {
		return fmt.Errorf("images.ttl must be positive")
	}
	if c.Images.UpstreamTimeout <= 0 {
		return fmt.Errorf("images.upstream_timeout must be positive")
	}
	if c.Images.RPS < 0 {
		return fmt.Errorf("images.rps must be non-negative")
	}

	if c.Log.Format != "" && !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be one of json, console", c.Log.Format)
	}

	return nil
}
