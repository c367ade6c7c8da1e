package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileConfig represents the YAML configuration file structure.
// This mirrors the runtime Config but uses YAML-friendly types.
type FileConfig struct {
	Logging *FileLoggingConfig `yaml:"logging,omitempty"`

	DefaultTTL    int    `yaml:"default_ttl,omitempty"`
	MetricsListen string `yaml:"metrics_listen,omitempty"` // host:port, empty disables metrics

	Zones     []FileZoneConfig     `yaml:"zones"`
	Providers []FileProviderConfig `yaml:"providers"`
}

// FileLoggingConfig holds logging settings.
type FileLoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // json, text
}

// FileZoneConfig binds a zone file to provider instances.
type FileZoneConfig struct {
	Name      string   `yaml:"name"`      // zone name, e.g. unit.tests.
	File      string   `yaml:"file"`      // path to the YAML or TOML zone file
	Providers []string `yaml:"providers"` // provider instance names
}

// FileProviderConfig holds configuration for a DNS provider instance.
type FileProviderConfig struct {
	Name     string            `yaml:"name"`               // unique instance name
	Type     string            `yaml:"type"`               // vultr
	Settings map[string]string `yaml:"settings,omitempty"` // provider-specific settings
}

// envVarPattern matches ${VAR} or ${VAR:-default} syntax.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// InterpolateEnvVars replaces ${VAR} patterns with environment variable values.
// Supports ${VAR:-default} syntax for default values.
func InterpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultValue := ""
		if len(groups) >= 3 {
			defaultValue = groups[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

func (c *FileConfig) interpolateEnvVars() {
	if c.Logging != nil {
		c.Logging.Level = InterpolateEnvVars(c.Logging.Level)
		c.Logging.Format = InterpolateEnvVars(c.Logging.Format)
	}
	c.MetricsListen = InterpolateEnvVars(c.MetricsListen)

	for i := range c.Zones {
		c.Zones[i].File = InterpolateEnvVars(c.Zones[i].File)
	}
	for i := range c.Providers {
		for k, v := range c.Providers[i].Settings {
			c.Providers[i].Settings[k] = InterpolateEnvVars(v)
		}
	}
}

// LoadFile reads and parses a YAML configuration file.
// Environment variables in ${VAR} format are interpolated.
func LoadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML config: %w", err)
	}

	cfg.interpolateEnvVars()

	return &cfg, nil
}

// ToConfig converts the file config to a runtime Config, applying defaults.
// Values from the file take precedence over defaults; env vars override later.
func (c *FileConfig) ToConfig() *Config {
	cfg := &Config{
		LogLevel:      DefaultLogLevel,
		LogFormat:     DefaultLogFormat,
		DefaultTTL:    DefaultTTL,
		MetricsListen: DefaultMetricsListen,
	}

	if c.Logging != nil {
		if c.Logging.Level != "" {
			cfg.LogLevel = strings.ToLower(c.Logging.Level)
		}
		if c.Logging.Format != "" {
			cfg.LogFormat = strings.ToLower(c.Logging.Format)
		}
	}
	if c.DefaultTTL > 0 {
		cfg.DefaultTTL = c.DefaultTTL
	}
	if c.MetricsListen != "" {
		cfg.MetricsListen = c.MetricsListen
	}

	for _, z := range c.Zones {
		cfg.Zones = append(cfg.Zones, ZoneConfig{
			Name:      z.Name,
			File:      z.File,
			Providers: z.Providers,
		})
	}
	for _, p := range c.Providers {
		settings := make(map[string]string, len(p.Settings))
		for k, v := range p.Settings {
			settings[strings.ToUpper(k)] = v
		}
		cfg.Providers = append(cfg.Providers, ProviderConfig{
			Name:     p.Name,
			Type:     p.Type,
			Settings: settings,
		})
	}

	return cfg
}
