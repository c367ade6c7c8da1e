package config

import (
	"os"
	"strings"
)

// getEnvOrFile retrieves a value from either a direct environment variable
// or a file path specified by the file key (Docker secrets pattern).
//
// If both are set, the file takes precedence. This allows local development
// with direct values while production uses Docker secrets.
//
// The file contents are trimmed of leading/trailing whitespace.
func getEnvOrFile(directKey, fileKey string) string {
	// Check for file-based secret first (Docker secrets pattern)
	if filePath := os.Getenv(fileKey); filePath != "" {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
		// If file read fails, fall through to direct value
	}

	return os.Getenv(directKey)
}

// normalizeInstanceName converts an instance name to environment variable format.
// Example: "vultr-prod" → "VULTR_PROD"
func normalizeInstanceName(name string) string {
	normalized := strings.ToUpper(name)
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return normalized
}

// envPrefix creates the full environment variable prefix for a provider instance.
// Example: "vultr-prod" → "ZONESYNC_VULTR_PROD_"
func envPrefix(instanceName string) string {
	return "ZONESYNC_" + normalizeInstanceName(instanceName) + "_"
}

// ResolveSettings overlays instance-scoped environment variables onto the
// settings from the config file. For an instance "vultr-prod" with a key
// "TOKEN", ZONESYNC_VULTR_PROD_TOKEN (or ZONESYNC_VULTR_PROD_TOKEN_FILE for
// a Docker secret) overrides the file value. Keys are uppercased.
func ResolveSettings(instanceName string, settings map[string]string) map[string]string {
	prefix := envPrefix(instanceName)

	resolved := make(map[string]string, len(settings))
	for key, value := range settings {
		key = strings.ToUpper(key)
		if env := getEnvOrFile(prefix+key, prefix+key+"_FILE"); env != "" {
			value = env
		}
		resolved[key] = value
	}
	return resolved
}
