// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN. Required when StorageDriver is postgres.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// StorageDriver selects the vote and audit stores: "postgres" or "memory".
	StorageDriver string `mapstructure:"STORAGE_DRIVER"`
	// AutoMigrate applies the embedded migrations when the server starts.
	AutoMigrate bool `mapstructure:"AUTO_MIGRATE"`
	// TxTimeout bounds a unit of work when the request context has no deadline.
	TxTimeout time.Duration `mapstructure:"TX_TIMEOUT"`
	// RequestTimeout is applied to every HTTP request by the router.
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	// ShutdownTimeout bounds graceful shutdown of the HTTP server and telemetry.
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	// LogLevel is the zap level (debug, info, warn, error).
	LogLevel string `mapstructure:"LOG_LEVEL"`
	// LogEncoding is "json" or "console".
	LogEncoding string `mapstructure:"LOG_ENCODING"`
	// Env is the application environment (e.g. "development", "production").
	// The memory store is rejected when Env is production.
	Env string `mapstructure:"APP_ENV"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint. Empty disables export (no-op providers).
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces a plaintext connection to the collector.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OpenTelemetry service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// AuditKafkaBrokers is a comma-separated list of Kafka brokers for the audit stream. Empty disables it.
	AuditKafkaBrokers string `mapstructure:"AUDIT_KAFKA_BROKERS"`
	// AuditKafkaTopic is the topic committed audit records are written to.
	AuditKafkaTopic string `mapstructure:"AUDIT_KAFKA_TOPIC"`
	// AuditKafkaGroupID is the consumer group of the audit relay worker.
	AuditKafkaGroupID string `mapstructure:"AUDIT_KAFKA_GROUP_ID"`
	// AuditLokiURL is the Loki base URL committed audit records are pushed to. Empty disables it.
	AuditLokiURL string `mapstructure:"AUDIT_LOKI_URL"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("AUTO_MIGRATE", true)
	v.SetDefault("TX_TIMEOUT", "5s")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_ENCODING", "json")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "votetrail")
	v.SetDefault("AUDIT_KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_KAFKA_TOPIC", "votetrail-audit")
	v.SetDefault("AUDIT_KAFKA_GROUP_ID", "votetrail-audit-relay")
	v.SetDefault("AUDIT_LOKI_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))
	switch cfg.StorageDriver {
	case StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: DATABASE_URL must be set when STORAGE_DRIVER=postgres")
		}
	case StorageMemory:
		if cfg.Env == "production" {
			return nil, errors.New("config: STORAGE_DRIVER=memory must not be used when APP_ENV=production")
		}
	default:
		return nil, errors.New("config: STORAGE_DRIVER must be postgres or memory")
	}

	if cfg.LogEncoding != "json" && cfg.LogEncoding != "console" {
		return nil, errors.New("config: LOG_ENCODING must be json or console")
	}

	if cfg.TxTimeout <= 0 {
		cfg.TxTimeout = 5 * time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	return &cfg, nil
}

// AuditKafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if the Kafka audit stream is enabled (non-empty list) and to create the producer.
func (c *Config) AuditKafkaBrokersList() []string {
	if c == nil || c.AuditKafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.AuditKafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// UsesMemoryStore reports whether the in-memory vote and audit stores are selected.
func (c *Config) UsesMemoryStore() bool {
	return c != nil && c.StorageDriver == StorageMemory
}
