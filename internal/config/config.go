// Package config handles loading and validation of zonesync configuration
// from a YAML file with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Defaults applied when neither the file nor the environment sets a value.
const (
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "text"
	DefaultTTL           = 300
	DefaultMetricsListen = "" // metrics server disabled
)

// Config is the fully resolved runtime configuration.
type Config struct {
	LogLevel      string
	LogFormat     string
	DefaultTTL    int
	MetricsListen string

	Zones     []ZoneConfig
	Providers []ProviderConfig
}

// ZoneConfig binds a zone file to the provider instances it syncs to.
type ZoneConfig struct {
	Name      string
	File      string
	Providers []string
}

// ProviderConfig declares one provider instance.
type ProviderConfig struct {
	Name     string
	Type     string
	Settings map[string]string
}

// Load reads the configuration file at path, applies defaults and overlays
// ZONESYNC_* environment variables. Provider settings are resolved last so
// instance-scoped variables and Docker secrets win over file values.
func Load(path string) (*Config, error) {
	fileCfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := fileCfg.ToConfig()
	cfg.applyEnvOverrides()

	for i := range cfg.Providers {
		p := &cfg.Providers[i]
		p.Settings = ResolveSettings(p.Name, p.Settings)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides overlays global settings from the environment.
// ZONESYNC_LOG_LEVEL, ZONESYNC_LOG_FORMAT, ZONESYNC_DEFAULT_TTL and
// ZONESYNC_METRICS_LISTEN override their file counterparts.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ZONESYNC_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("ZONESYNC_LOG_FORMAT"); v != "" {
		c.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("ZONESYNC_DEFAULT_TTL"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl > 0 {
			c.DefaultTTL = ttl
		}
	}
	if v := os.Getenv("ZONESYNC_METRICS_LISTEN"); v != "" {
		c.MetricsListen = v
	}
}

// Validate checks cross references and required fields, failing fast on the
// first problem.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (want debug, info, warn or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", c.LogFormat)
	}
	if c.DefaultTTL <= 0 {
		return fmt.Errorf("default ttl must be positive, got %d", c.DefaultTTL)
	}

	if len(c.Providers) == 0 {
		return fmt.Errorf("at least one provider is required")
	}
	providerNames := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider is missing a name")
		}
		if p.Type == "" {
			return fmt.Errorf("provider %s is missing a type", p.Name)
		}
		if providerNames[p.Name] {
			return fmt.Errorf("duplicate provider name %q", p.Name)
		}
		providerNames[p.Name] = true
	}

	if len(c.Zones) == 0 {
		return fmt.Errorf("at least one zone is required")
	}
	zoneNames := make(map[string]bool, len(c.Zones))
	for _, z := range c.Zones {
		if z.Name == "" {
			return fmt.Errorf("zone is missing a name")
		}
		if zoneNames[z.Name] {
			return fmt.Errorf("duplicate zone %q", z.Name)
		}
		zoneNames[z.Name] = true
		if z.File == "" {
			return fmt.Errorf("zone %s is missing a file", z.Name)
		}
		if len(z.Providers) == 0 {
			return fmt.Errorf("zone %s has no providers", z.Name)
		}
		for _, name := range z.Providers {
			if !providerNames[name] {
				return fmt.Errorf("zone %s references unknown provider %q", z.Name, name)
			}
		}
	}

	return nil
}
