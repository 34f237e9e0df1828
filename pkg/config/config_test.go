package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/perfectstack/taskhub/pkg/observability"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Server.HealthPort != "9090" {
		t.Errorf("HealthPort = %q, want 9090", cfg.Server.HealthPort)
	}
	if cfg.Storage.Type != "filesystem" {
		t.Errorf("Storage.Type = %q, want filesystem", cfg.Storage.Type)
	}
	if cfg.Auth.TokenTTL != 7*24*time.Hour {
		t.Errorf("TokenTTL = %v, want 168h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != bcrypt.DefaultCost {
		t.Errorf("BcryptCost = %d, want %d", cfg.Auth.BcryptCost, bcrypt.DefaultCost)
	}
	if cfg.Observability.LogLevel != observability.InfoLevel {
		t.Errorf("LogLevel = %v, want InfoLevel", cfg.Observability.LogLevel)
	}
	if cfg.Observability.OTelEnabled {
		t.Error("OTelEnabled should default to false")
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("TASKHUB_PORT", "3000")
	t.Setenv("TASKHUB_STORAGE_TYPE", "sqlite")
	t.Setenv("TASKHUB_SQLITE_PATH", "/tmp/test.db")
	t.Setenv("TASKHUB_SECRET_KEY", "env-secret")
	t.Setenv("TASKHUB_TOKEN_TTL", "30m")
	t.Setenv("TASKHUB_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Server.Port)
	}
	if cfg.Storage.Type != "sqlite" {
		t.Errorf("Storage.Type = %q, want sqlite", cfg.Storage.Type)
	}
	if cfg.Storage.SQLitePath != "/tmp/test.db" {
		t.Errorf("SQLitePath = %q, want /tmp/test.db", cfg.Storage.SQLitePath)
	}
	if cfg.Auth.SecretKey != "env-secret" {
		t.Errorf("SecretKey = %q, want env-secret", cfg.Auth.SecretKey)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want 30m", cfg.Auth.TokenTTL)
	}
	if cfg.Observability.LogLevel != observability.DebugLevel {
		t.Errorf("LogLevel = %v, want DebugLevel", cfg.Observability.LogLevel)
	}
}

func TestLoadConfig_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlBody := `
server:
  port: "4000"
  shutdown_timeout: 10s
storage:
  type: sqlite
  sqlite_path: /var/lib/taskhub/db.sqlite
auth:
  secret_key: yaml-secret
  token_ttl: 2h
observability:
  log_level: error
  metrics_enabled: false
`
	if err := os.WriteFile(path, []byte(yamlBody), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("TASKHUB_CONFIG", path)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "4000" {
		t.Errorf("Port = %q, want 4000", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Storage.SQLitePath != "/var/lib/taskhub/db.sqlite" {
		t.Errorf("SQLitePath = %q", cfg.Storage.SQLitePath)
	}
	if cfg.Auth.SecretKey != "yaml-secret" {
		t.Errorf("SecretKey = %q, want yaml-secret", cfg.Auth.SecretKey)
	}
	if cfg.Auth.TokenTTL != 2*time.Hour {
		t.Errorf("TokenTTL = %v, want 2h", cfg.Auth.TokenTTL)
	}
	if cfg.Observability.MetricsEnabled {
		t.Error("MetricsEnabled should be false from YAML")
	}
	// Host was not in the file; the default survives
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

func TestLoadConfig_EnvBeatsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: \"4000\"\n"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("TASKHUB_CONFIG", path)
	t.Setenv("TASKHUB_PORT", "5000")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Server.Port != "5000" {
		t.Errorf("Port = %q, env should beat YAML", cfg.Server.Port)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Setenv("TASKHUB_CONFIG", "/does/not/exist.yaml")

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	t.Setenv("TASKHUB_CONFIG", path)

	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.Server.Port = "" }, true},
		{"empty health port", func(c *Config) { c.Server.HealthPort = "" }, true},
		{"same ports", func(c *Config) { c.Server.HealthPort = c.Server.Port }, true},
		{"unknown storage type", func(c *Config) { c.Storage.Type = "postgres" }, true},
		{"filesystem without root", func(c *Config) { c.Storage.FilesystemRoot = "" }, true},
		{"sqlite without path", func(c *Config) {
			c.Storage.Type = "sqlite"
			c.Storage.SQLitePath = ""
		}, true},
		{"empty secret", func(c *Config) { c.Auth.SecretKey = "" }, true},
		{"zero TTL", func(c *Config) { c.Auth.TokenTTL = 0 }, true},
		{"bcrypt cost too low", func(c *Config) { c.Auth.BcryptCost = 1 }, true},
		{"bcrypt cost too high", func(c *Config) { c.Auth.BcryptCost = 99 }, true},
		{"otel enabled without endpoint", func(c *Config) {
			c.Observability.OTelEnabled = true
			c.Observability.OTelEndpoint = ""
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "90s")
	if got := getEnvDuration("TEST_DURATION", time.Second); got != 90*time.Second {
		t.Errorf("getEnvDuration() = %v, want 90s", got)
	}
	if got := getEnvDuration("TEST_DURATION_UNSET", time.Second); got != time.Second {
		t.Errorf("getEnvDuration() = %v, want default", got)
	}
	t.Setenv("TEST_DURATION_BAD", "junk")
	if got := getEnvDuration("TEST_DURATION_BAD", time.Second); got != time.Second {
		t.Errorf("getEnvDuration() = %v, want default on junk", got)
	}
}
