package vultr

import (
	"os"
	"strconv"
	"strings"

	"gitlab.bluewillows.net/root/zonesync/pkg/provider"
)

// Config holds Vultr-specific configuration.
type Config struct {
	Token  string // API token (Bearer authentication)
	APIURL string // API base URL override (optional, defaults to the public API)
	TTL    int    // default TTL for records that do not carry one (optional)
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() error {
	if c.Token == "" {
		return provider.ErrConfigMissing("TOKEN")
	}
	if c.TTL < 0 {
		return provider.ErrConfigInvalid("TTL", strconv.Itoa(c.TTL), "must be non-negative")
	}
	return nil
}

// LoadConfig loads Vultr configuration from environment variables.
// Environment variable pattern: ZONESYNC_{INSTANCE_NAME}_{SETTING}
//
// Instance names are normalized: lowercase with hyphens becomes uppercase
// with underscores. Example: "vultr-prod" looks for ZONESYNC_VULTR_PROD_*
//
// Supported settings:
//   - TOKEN: API token (required, supports _FILE suffix for Docker secrets)
//   - API_URL: API base URL override (optional)
//   - TTL: default TTL for records without one (optional)
func LoadConfig(instanceName string) (*Config, error) {
	prefix := envPrefix(instanceName)

	config := &Config{
		Token:  getEnvOrFile(prefix+"TOKEN", prefix+"TOKEN_FILE"),
		APIURL: os.Getenv(prefix + "API_URL"),
	}

	if raw := os.Getenv(prefix + "TTL"); raw != "" {
		ttl, err := strconv.Atoi(raw)
		if err != nil {
			return nil, provider.ErrConfigInvalid("TTL", raw, "must be an integer")
		}
		config.TTL = ttl
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// envPrefix converts an instance name to an environment variable prefix.
// Example: "vultr-prod" → "ZONESYNC_VULTR_PROD_"
func envPrefix(instanceName string) string {
	normalized := strings.ToUpper(instanceName)
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return "ZONESYNC_" + normalized + "_"
}

// getEnvOrFile retrieves a value from either a direct environment variable
// or a file path specified by the file key (Docker secrets pattern).
//
// If both are set, the file takes precedence.
// The file contents are trimmed of leading/trailing whitespace.
func getEnvOrFile(directKey, fileKey string) string {
	if filePath := os.Getenv(fileKey); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
		// If file read fails, fall through to direct value
	}

	return os.Getenv(directKey)
}
