package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/perfectstack/taskhub/pkg/observability"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// DefaultSecretKey is the development fallback signing key. Deployments
// must override it via TASKHUB_SECRET_KEY.
const DefaultSecretKey = "dev-insecure-secret-change-me"

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage StorageConfig

	// Auth configuration
	Auth AuthConfig

	// Observability configuration
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Health/metrics server (separate port for k8s probes)
	HealthPort string
}

// StorageConfig selects and parameterizes the persistence backend.
type StorageConfig struct {
	// Type is "filesystem" or "sqlite"
	Type string

	// FilesystemRoot is the data directory for the filesystem backend
	FilesystemRoot string

	// SQLitePath is the database file for the sqlite backend
	SQLitePath string
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	SecretKey  string
	TokenTTL   time.Duration
	BcryptCost int
}

// ObservabilityConfig holds observability settings
type ObservabilityConfig struct {
	// Logging
	LogLevel observability.LogLevel

	// Metrics
	MetricsEnabled bool

	// OpenTelemetry
	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool // Use insecure gRPC connection
}

// LoadConfig loads configuration with defaults < YAML file < environment
// precedence. The YAML file path comes from TASKHUB_CONFIG and is
// optional.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("TASKHUB_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			HealthPort:      "9090",
		},
		Storage: StorageConfig{
			Type:           "filesystem",
			FilesystemRoot: "data",
			SQLitePath:     "data/taskhub.db",
		},
		Auth: AuthConfig{
			SecretKey:  DefaultSecretKey,
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: bcrypt.DefaultCost,
		},
		Observability: ObservabilityConfig{
			LogLevel:           observability.InfoLevel,
			MetricsEnabled:     true,
			OTelEnabled:        false,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "taskhub-api",
			OTelServiceVersion: "0.1.0",
			OTelInsecure:       true,
		},
	}
}

// fileConfig mirrors Config for YAML decoding. Pointer fields
// distinguish absent keys from zero values.
type fileConfig struct {
	Server struct {
		Host            *string `yaml:"host"`
		Port            *string `yaml:"port"`
		ReadTimeout     *string `yaml:"read_timeout"`
		WriteTimeout    *string `yaml:"write_timeout"`
		IdleTimeout     *string `yaml:"idle_timeout"`
		ShutdownTimeout *string `yaml:"shutdown_timeout"`
		HealthPort      *string `yaml:"health_port"`
	} `yaml:"server"`
	Storage struct {
		Type           *string `yaml:"type"`
		FilesystemRoot *string `yaml:"filesystem_root"`
		SQLitePath     *string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Auth struct {
		SecretKey  *string `yaml:"secret_key"`
		TokenTTL   *string `yaml:"token_ttl"`
		BcryptCost *int    `yaml:"bcrypt_cost"`
	} `yaml:"auth"`
	Observability struct {
		LogLevel           *string `yaml:"log_level"`
		MetricsEnabled     *bool   `yaml:"metrics_enabled"`
		OTelEnabled        *bool   `yaml:"otel_enabled"`
		OTelEndpoint       *string `yaml:"otel_endpoint"`
		OTelServiceName    *string `yaml:"otel_service_name"`
		OTelServiceVersion *string `yaml:"otel_service_version"`
		OTelInsecure       *bool   `yaml:"otel_insecure"`
	} `yaml:"observability"`
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing YAML: %w", err)
	}

	setString(&c.Server.Host, fc.Server.Host)
	setString(&c.Server.Port, fc.Server.Port)
	setString(&c.Server.HealthPort, fc.Server.HealthPort)
	if err := setDuration(&c.Server.ReadTimeout, fc.Server.ReadTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.Server.WriteTimeout, fc.Server.WriteTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.Server.IdleTimeout, fc.Server.IdleTimeout); err != nil {
		return err
	}
	if err := setDuration(&c.Server.ShutdownTimeout, fc.Server.ShutdownTimeout); err != nil {
		return err
	}

	setString(&c.Storage.Type, fc.Storage.Type)
	setString(&c.Storage.FilesystemRoot, fc.Storage.FilesystemRoot)
	setString(&c.Storage.SQLitePath, fc.Storage.SQLitePath)

	setString(&c.Auth.SecretKey, fc.Auth.SecretKey)
	if err := setDuration(&c.Auth.TokenTTL, fc.Auth.TokenTTL); err != nil {
		return err
	}
	if fc.Auth.BcryptCost != nil {
		c.Auth.BcryptCost = *fc.Auth.BcryptCost
	}

	if fc.Observability.LogLevel != nil {
		c.Observability.LogLevel = observability.ParseLogLevel(*fc.Observability.LogLevel)
	}
	setBool(&c.Observability.MetricsEnabled, fc.Observability.MetricsEnabled)
	setBool(&c.Observability.OTelEnabled, fc.Observability.OTelEnabled)
	setString(&c.Observability.OTelEndpoint, fc.Observability.OTelEndpoint)
	setString(&c.Observability.OTelServiceName, fc.Observability.OTelServiceName)
	setString(&c.Observability.OTelServiceVersion, fc.Observability.OTelServiceVersion)
	setBool(&c.Observability.OTelInsecure, fc.Observability.OTelInsecure)

	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("TASKHUB_HOST", c.Server.Host)
	c.Server.Port = getEnv("TASKHUB_PORT", c.Server.Port)
	c.Server.ReadTimeout = getEnvDuration("TASKHUB_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("TASKHUB_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("TASKHUB_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("TASKHUB_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)
	c.Server.HealthPort = getEnv("TASKHUB_HEALTH_PORT", c.Server.HealthPort)

	c.Storage.Type = getEnv("TASKHUB_STORAGE_TYPE", c.Storage.Type)
	c.Storage.FilesystemRoot = getEnv("TASKHUB_FILESYSTEM_ROOT", c.Storage.FilesystemRoot)
	c.Storage.SQLitePath = getEnv("TASKHUB_SQLITE_PATH", c.Storage.SQLitePath)

	c.Auth.SecretKey = getEnv("TASKHUB_SECRET_KEY", c.Auth.SecretKey)
	c.Auth.TokenTTL = getEnvDuration("TASKHUB_TOKEN_TTL", c.Auth.TokenTTL)
	c.Auth.BcryptCost = getEnvInt("TASKHUB_BCRYPT_COST", c.Auth.BcryptCost)

	if level, ok := os.LookupEnv("TASKHUB_LOG_LEVEL"); ok {
		c.Observability.LogLevel = observability.ParseLogLevel(strings.ToLower(level))
	}
	c.Observability.MetricsEnabled = getEnvBool("TASKHUB_METRICS_ENABLED", c.Observability.MetricsEnabled)
	c.Observability.OTelEnabled = getEnvBool("TASKHUB_OTEL_ENABLED", c.Observability.OTelEnabled)
	c.Observability.OTelEndpoint = getEnv("TASKHUB_OTEL_ENDPOINT", c.Observability.OTelEndpoint)
	c.Observability.OTelServiceName = getEnv("TASKHUB_OTEL_SERVICE_NAME", c.Observability.OTelServiceName)
	c.Observability.OTelServiceVersion = getEnv("TASKHUB_OTEL_SERVICE_VERSION", c.Observability.OTelServiceVersion)
	c.Observability.OTelInsecure = getEnvBool("TASKHUB_OTEL_INSECURE", c.Observability.OTelInsecure)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	// Validate storage config based on type
	switch c.Storage.Type {
	case "filesystem":
		if c.Storage.FilesystemRoot == "" {
			return fmt.Errorf("filesystem root is required for filesystem storage")
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required for sqlite storage")
		}
	default:
		return fmt.Errorf("invalid storage type: %s (must be filesystem or sqlite)", c.Storage.Type)
	}

	// Validate auth config
	if c.Auth.SecretKey == "" {
		return fmt.Errorf("auth secret key is required")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token TTL must be positive")
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}

	// Validate OpenTelemetry config
	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *string) error {
	if src == nil {
		return nil
	}
	parsed, err := time.ParseDuration(*src)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", *src, err)
	}
	*dst = parsed
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
