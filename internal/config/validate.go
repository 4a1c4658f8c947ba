package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

func (c *Config) validate() error {
	if err := c.validateNetwork(); err != nil {
		return err
	}

	if err := c.validateAdmin(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateCORS(); err != nil {
		return err
	}

	if err := c.validateEncryption(); err != nil {
		return err
	}

	if err := c.validateNonce(); err != nil {
		return err
	}

	if err := c.validateSDK(); err != nil {
		return err
	}

	return nil
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}

	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	// Loopback for local deployments, 0.0.0.0/:: for containers.
	validHosts := map[string]bool{
		"127.0.0.1": true,
		"::1":       true,
		"localhost": true,
		"0.0.0.0":   true,
		"::":        true,
	}
	if !validHosts[c.ListenHost] {
		return fmt.Errorf("LISTEN_HOST must be a loopback address or 0.0.0.0/:: for containers (got %q)", c.ListenHost)
	}

	metricsPort, err := strconv.Atoi(c.MetricsPort)
	if err != nil {
		return fmt.Errorf("METRICS_PORT must be a valid integer: %w", err)
	}

	if metricsPort < 1 || metricsPort > 65535 {
		return fmt.Errorf("METRICS_PORT must be between 1 and 65535")
	}

	if metricsPort == port {
		return fmt.Errorf("METRICS_PORT must differ from PORT")
	}

	return nil
}

func (c *Config) validateAdmin() error {
	if c.AdminToken.Value() == "" {
		return fmt.Errorf("ADMIN_TOKEN is required")
	}

	if len(c.AdminToken.Value()) < 16 {
		return fmt.Errorf("ADMIN_TOKEN must be at least 16 characters")
	}

	return nil
}

func (c *Config) validateStorage() error {
	switch c.SettingsDriver {
	case DriverMemory:
		return nil
	case DriverSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required when SETTINGS_DRIVER is sqlite")
		}
		return nil
	case DriverPostgres:
		return c.validateDatabase()
	default:
		return fmt.Errorf("SETTINGS_DRIVER must be 'sqlite', 'postgres' or 'memory', got %q", c.SettingsDriver)
	}
}

func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return fmt.Errorf("DATABASE_URL is required when SETTINGS_DRIVER is postgres")
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}

	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres:// or postgresql://")
	}

	if dbURL.Hostname() == "" {
		return fmt.Errorf("DATABASE_URL must include a host")
	}

	dbHost := dbURL.Hostname()
	if !isLoopback(dbHost) {
		sslmode := dbURL.Query().Get("sslmode")
		if sslmode == "disable" {
			return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", dbHost)
		}
	}

	return nil
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}

	return nil
}

func (c *Config) validateEncryption() error {
	if c.EncryptionKey.Value() == "" {
		if c.SiteSecret.Value() == "" {
			return fmt.Errorf("one of ENCRYPTION_KEY or SITE_SECRET is required")
		}

		if len(c.SiteSecret.Value()) < 32 {
			return fmt.Errorf("SITE_SECRET must be at least 32 characters")
		}

		return nil
	}

	keyBytes, err := hex.DecodeString(c.EncryptionKey.Value())
	if err != nil {
		return fmt.Errorf("ENCRYPTION_KEY must be valid hex: %w", err)
	}

	if len(keyBytes) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be 64 hex characters (32 bytes), got %d chars", len(c.EncryptionKey.Value()))
	}

	return nil
}

func (c *Config) validateNonce() error {
	if c.NonceLifetime < 2*time.Minute {
		return fmt.Errorf("NONCE_LIFETIME must be at least 2m")
	}

	if c.NonceLifetime > 7*24*time.Hour {
		return fmt.Errorf("NONCE_LIFETIME must not exceed 168h")
	}

	return nil
}

func (c *Config) validateSDK() error {
	u, err := url.ParseRequestURI(c.SDKScriptURL)
	if err != nil {
		return fmt.Errorf("SDK_SCRIPT_URL is not a valid URL: %w", err)
	}

	if u.Scheme != "https" && !(u.Scheme == "http" && isLoopback(u.Hostname())) {
		return fmt.Errorf("SDK_SCRIPT_URL must use HTTPS for non-localhost hosts")
	}

	return nil
}

// isLoopback returns true if host names a loopback address.
func isLoopback(host string) bool {
	return host == "localhost" || host == "127.0.0.1" || host == "::1"
}
