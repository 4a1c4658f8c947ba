// Package config provides environment-driven configuration for the searchcraft
// connector server.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Settings storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration values.
type Config struct {
	Port        string
	ListenHost  string
	MetricsPort string
	LogLevel    string
	CORSOrigins []string
	AdminToken  Secret

	SettingsDriver string
	SQLitePath     string
	DatabaseURL    Secret
	DBMaxConns     int

	EncryptionKey Secret
	SiteSecret    Secret
	NonceSecret   Secret
	NonceLifetime time.Duration

	RedisAddr     string
	RedisPassword Secret

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string

	SyncWorkers   int
	SyncQueueSize int

	SDKScriptURL string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           envOrDefault("PORT", "8080"),
		ListenHost:     envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort:    envOrDefault("METRICS_PORT", "9092"),
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		AdminToken:     Secret(envOrDefault("ADMIN_TOKEN", "")),
		SettingsDriver: envOrDefault("SETTINGS_DRIVER", DriverSQLite),
		SQLitePath:     envOrDefault("SQLITE_PATH", "searchcraft.db"),
		DatabaseURL:    Secret(envOrDefault("DATABASE_URL", "")),
		EncryptionKey:  Secret(envOrDefault("ENCRYPTION_KEY", "")),
		SiteSecret:     Secret(envOrDefault("SITE_SECRET", "")),
		NonceSecret:    Secret(envOrDefault("NONCE_SECRET", "")),
		RedisAddr:      envOrDefault("REDIS_ADDR", ""),
		RedisPassword:  Secret(envOrDefault("REDIS_PASSWORD", "")),
		KafkaTopic:     envOrDefault("KAFKA_TOPIC", "searchcraft-content"),
		KafkaGroup:     envOrDefault("KAFKA_GROUP", "searchcraft-connect"),
		SDKScriptURL:   envOrDefault("SDK_SCRIPT_URL", "https://cdn.searchcraft.io/sdk/searchcraft.js"),
	}

	var err error
	if cfg.DBMaxConns, err = intInRange("DB_MAX_CONNS", "10", 2, 200); err != nil {
		return nil, err
	}
	if cfg.SyncWorkers, err = intInRange("SYNC_WORKERS", "2", 1, 16); err != nil {
		return nil, err
	}
	if cfg.SyncQueueSize, err = intInRange("SYNC_QUEUE_SIZE", "1000", 1, 100000); err != nil {
		return nil, err
	}

	lifetime, err := time.ParseDuration(envOrDefault("NONCE_LIFETIME", "24h"))
	if err != nil {
		return nil, fmt.Errorf("NONCE_LIFETIME must be a duration (e.g. 24h): %w", err)
	}
	cfg.NonceLifetime = lifetime

	cfg.CORSOrigins = splitList(envOrDefault("CORS_ORIGINS", "http://localhost:8080"))
	cfg.KafkaBrokers = splitList(envOrDefault("KAFKA_BROKERS", ""))

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

// KafkaEnabled reports whether a content event topic is configured.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// NonceKey returns the secret used to sign nonces. It falls back to the site
// secret, then to the encryption key.
func (c *Config) NonceKey() []byte {
	for _, s := range []Secret{c.NonceSecret, c.SiteSecret, c.EncryptionKey} {
		if s.Value() != "" {
			return []byte(s.Value())
		}
	}
	return nil
}

func intInRange(key, fallback string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}
	return n, nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
