// Package config provides application configuration management from
// environment variables with an optional YAML overlay.
//
// # Overview
//
// Configuration resolves in three layers: built-in defaults, then an
// optional YAML file named by TASKHUB_CONFIG, then environment
// variables. The merged result is validated before use.
//
// # Configuration Structure
//
// Server settings:
//
//	TASKHUB_HOST="0.0.0.0"
//	TASKHUB_PORT="8080"
//	TASKHUB_HEALTH_PORT="9090"
//	TASKHUB_READ_TIMEOUT="15s"
//	TASKHUB_WRITE_TIMEOUT="15s"
//	TASKHUB_SHUTDOWN_TIMEOUT="30s"
//
// Storage settings:
//
//	TASKHUB_STORAGE_TYPE="filesystem"  # filesystem, sqlite
//	TASKHUB_FILESYSTEM_ROOT="data"
//	TASKHUB_SQLITE_PATH="data/taskhub.db"
//
// Auth settings:
//
//	TASKHUB_SECRET_KEY="..."       # token signing key, change in production
//	TASKHUB_TOKEN_TTL="168h"       # one week
//	TASKHUB_BCRYPT_COST="10"
//
// Observability settings:
//
//	TASKHUB_LOG_LEVEL="info"  # debug, info, warn, error
//	TASKHUB_METRICS_ENABLED="true"
//	TASKHUB_OTEL_ENABLED="false"
//	TASKHUB_OTEL_ENDPOINT="otel-collector:4317"
//
// # Usage Example
//
// Load configuration:
//
//	cfg, err := config.LoadConfig()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	fmt.Printf("Server: %s:%s\n", cfg.Server.Host, cfg.Server.Port)
//	fmt.Printf("Storage: %s\n", cfg.Storage.Type)
//
// # Related Packages
//
//   - pkg/storage: Uses storage configuration
//   - pkg/observability: Uses observability configuration
package config
