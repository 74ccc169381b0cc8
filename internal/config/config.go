// Package config loads and validates the dashboard configuration using Viper.
//
// Configuration is layered: built-in defaults < YAML config file < environment
// variables. Environment variables use the LDB_ prefix (e.g., LDB_DATABASE_HOST
// overrides database.host in the YAML). This layering allows the same binary to
// run with a config.yaml in local development and with pure environment
// variables in containerized deployments.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Search    SearchConfig    `mapstructure:"search"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Export    ExportConfig    `mapstructure:"export"`
	Security  SecurityConfig  `mapstructure:"security"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// GetAddress returns the host:port listen address for the HTTP server.
func (s *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	Name               string `mapstructure:"name"`
	User               string `mapstructure:"user"`
	Password           string `mapstructure:"password"`
	SSLMode            string `mapstructure:"ssl_mode"`
	MaxConnections     int    `mapstructure:"max_connections"`
	MinIdleConnections int    `mapstructure:"min_idle_connections"`
}

// GetDSN returns the PostgreSQL connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// SearchConfig holds the OpenSearch backend configuration
type SearchConfig struct {
	// Addresses lists the OpenSearch node URLs (e.g. https://opensearch:9200)
	Addresses []string `mapstructure:"addresses"`
	// IndexPattern is the index or index pattern queried for log records.
	// The ingestion pipeline writes daily app-logs-YYYY.MM.DD indices, so the
	// default pattern spans all of them.
	IndexPattern string `mapstructure:"index_pattern"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	// InsecureSkipVerify disables TLS certificate verification. Only intended
	// for local clusters running with self-signed demo certificates.
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify"`
}

// AuthConfig holds identity provider configuration
type AuthConfig struct {
	Keycloak KeycloakConfig `mapstructure:"keycloak"`
}

// KeycloakConfig holds the Keycloak realm used for login token exchange.
// Token signatures are not verified by this service; the realm is trusted as
// the network-level source of access tokens.
type KeycloakConfig struct {
	// URL is the base realm URL, e.g. http://keycloak:8080/realms/log-realm
	URL          string `mapstructure:"url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// TokenURL returns the realm's OAuth2 token endpoint.
func (k *KeycloakConfig) TokenURL() string {
	return strings.TrimRight(k.URL, "/") + "/protocol/openid-connect/token"
}

// ExportConfig bounds the bulk export path
type ExportConfig struct {
	// MaxRecords is the hard ceiling on records fetched for one export. It is
	// deliberately not exposed to callers; exports always request exactly one
	// page of this size.
	MaxRecords int `mapstructure:"max_records"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting"`
}

// RateLimitingConfig holds rate limiting configuration
type RateLimitingConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

// LoggingConfig holds the service's own log output configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds observability configuration
type TelemetryConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	PrometheusPort int  `mapstructure:"prometheus_port"`
}

// bindEnvVars explicitly binds environment variables to config keys.
// This is necessary because AutomaticEnv() doesn't work well with nested
// structs during Unmarshal. viper.BindEnv only errors when called with zero
// keys; since every key here is a non-empty hardcoded string, any error
// indicates a programming bug and is surfaced to the caller.
func bindEnvVars(v *viper.Viper) error {
	keys := []string{
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",

		// Database
		"database.host",
		"database.port",
		"database.name",
		"database.user",
		"database.password",
		"database.ssl_mode",
		"database.max_connections",
		"database.min_idle_connections",

		// Search backend
		"search.addresses",
		"search.index_pattern",
		"search.username",
		"search.password",
		"search.insecure_skip_verify",

		// Auth
		"auth.keycloak.url",
		"auth.keycloak.client_id",
		"auth.keycloak.client_secret",

		// Export
		"export.max_records",

		// Security
		"security.rate_limiting.enabled",
		"security.rate_limiting.requests_per_minute",
		"security.rate_limiting.burst",

		// Logging
		"logging.level",
		"logging.format",

		// Telemetry
		"telemetry.metrics.enabled",
		"telemetry.metrics.prometheus_port",
	}
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind env var %q: %w", key, err)
		}
	}
	return nil
}

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/log-dashboard")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment variables
	}

	v.SetEnvPrefix("LDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := bindEnvVars(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Expand environment variables in sensitive fields
	cfg.Database.Password = expandEnv(cfg.Database.Password)
	cfg.Search.Password = expandEnv(cfg.Search.Password)
	cfg.Auth.Keycloak.ClientSecret = expandEnv(cfg.Auth.Keycloak.ClientSecret)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "log_dashboard")
	v.SetDefault("database.user", "dashboard")
	v.SetDefault("database.ssl_mode", "require")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_idle_connections", 5)

	// Search backend defaults
	v.SetDefault("search.addresses", []string{"http://localhost:9200"})
	v.SetDefault("search.index_pattern", "app-logs-*")
	v.SetDefault("search.insecure_skip_verify", false)

	// Auth defaults
	v.SetDefault("auth.keycloak.url", "http://localhost:8080/realms/log-realm")
	v.SetDefault("auth.keycloak.client_id", "log-dashboard")

	// Export defaults
	v.SetDefault("export.max_records", 10000)

	// Security defaults
	v.SetDefault("security.rate_limiting.enabled", true)
	v.SetDefault("security.rate_limiting.requests_per_minute", 200)
	v.SetDefault("security.rate_limiting.burst", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Telemetry defaults
	v.SetDefault("telemetry.metrics.enabled", true)
	v.SetDefault("telemetry.metrics.prometheus_port", 9090)
}

// expandEnv expands ${VAR} references in configuration values so secrets can
// be injected indirectly (e.g. password: ${DB_PASSWORD}).
func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		envVar := strings.TrimSuffix(strings.TrimPrefix(value, "${"), "}")
		if resolved := os.Getenv(envVar); resolved != "" {
			return resolved
		}
	}
	return value
}

// Validate checks the configuration for inconsistencies that would only
// surface later as confusing runtime failures.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if len(c.Search.Addresses) == 0 {
		return fmt.Errorf("search.addresses must contain at least one node URL")
	}
	if c.Search.IndexPattern == "" {
		return fmt.Errorf("search.index_pattern must not be empty")
	}
	if c.Export.MaxRecords < 1 {
		return fmt.Errorf("export.max_records must be positive, got %d", c.Export.MaxRecords)
	}
	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database.max_connections must be positive, got %d", c.Database.MaxConnections)
	}
	return nil
}
