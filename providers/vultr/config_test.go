package vultr

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"gitlab.bluewillows.net/root/zonesync/pkg/provider"
)

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("ZONESYNC_VULTR_TOKEN", "env-token")
	t.Setenv("ZONESYNC_VULTR_API_URL", "https://api.example.test/v2")

	config, err := LoadConfig("vultr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Token != "env-token" {
		t.Errorf("expected token from env, got %q", config.Token)
	}
	if config.APIURL != "https://api.example.test/v2" {
		t.Errorf("unexpected api url %q", config.APIURL)
	}
}

func TestLoadConfig_InstanceNameNormalization(t *testing.T) {
	t.Setenv("ZONESYNC_VULTR_PROD_TOKEN", "prod-token")

	config, err := LoadConfig("vultr-prod")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Token != "prod-token" {
		t.Errorf("expected token from normalized prefix, got %q", config.Token)
	}
}

func TestLoadConfig_TokenFile(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(tokenFile, []byte("  file-token\n"), 0o600); err != nil {
		t.Fatalf("writing token file: %v", err)
	}
	t.Setenv("ZONESYNC_VULTR_TOKEN", "env-token")
	t.Setenv("ZONESYNC_VULTR_TOKEN_FILE", tokenFile)

	config, err := LoadConfig("vultr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// file wins over the direct variable, contents trimmed
	if config.Token != "file-token" {
		t.Errorf("expected token from file, got %q", config.Token)
	}
}

func TestLoadConfig_MissingToken(t *testing.T) {
	_, err := LoadConfig("vultr-unset")
	if err == nil {
		t.Fatal("expected error for missing token")
	}
	var cerr *provider.ConfigError
	if !errors.As(err, &cerr) {
		t.Errorf("expected a ConfigError, got %v", err)
	}
}

func TestLoadConfig_TTL(t *testing.T) {
	t.Setenv("ZONESYNC_VULTR_TOKEN", "tok")
	t.Setenv("ZONESYNC_VULTR_TTL", "3600")

	config, err := LoadConfig("vultr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.TTL != 3600 {
		t.Errorf("expected ttl 3600, got %d", config.TTL)
	}
}

func TestLoadConfig_TTLInvalid(t *testing.T) {
	t.Setenv("ZONESYNC_VULTR_TOKEN", "tok")
	t.Setenv("ZONESYNC_VULTR_TTL", "soon")

	_, err := LoadConfig("vultr")
	if err == nil {
		t.Fatal("expected error for non-numeric ttl")
	}
	var cerr *provider.ConfigError
	if !errors.As(err, &cerr) || cerr.Field != "TTL" {
		t.Errorf("expected a TTL ConfigError, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (&Config{Token: "tok"}).Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := (&Config{}).Validate(); err == nil {
		t.Error("expected error for empty token")
	}
	if err := (&Config{Token: "tok", TTL: -1}).Validate(); err == nil {
		t.Error("expected error for negative ttl")
	}
}
