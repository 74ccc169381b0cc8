package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetAddress())
	assert.Equal(t, "app-logs-*", cfg.Search.IndexPattern)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Search.Addresses)
	assert.Equal(t, 10000, cfg.Export.MaxRecords)
	assert.True(t, cfg.Security.RateLimiting.Enabled)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  host: pg.internal
  name: dashboard
search:
  addresses:
    - https://search-1:9200
    - https://search-2:9200
  index_pattern: "app-logs-2025.*"
export:
  max_records: 500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Len(t, cfg.Search.Addresses, 2)
	assert.Equal(t, "app-logs-2025.*", cfg.Search.IndexPattern)
	assert.Equal(t, 500, cfg.Export.MaxRecords)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("LDB_DATABASE_HOST", "pg.prod.internal")
	t.Setenv("LDB_SEARCH_INDEX_PATTERN", "app-logs-2025.11.*")
	t.Setenv("LDB_AUTH_KEYCLOAK_CLIENT_SECRET", "s3cret")
	t.Setenv("LDB_EXPORT_MAX_RECORDS", "2500")

	cfg, err := Load(writeConfig(t, "{}"))
	require.NoError(t, err)

	assert.Equal(t, "pg.prod.internal", cfg.Database.Host)
	assert.Equal(t, "app-logs-2025.11.*", cfg.Search.IndexPattern)
	assert.Equal(t, "s3cret", cfg.Auth.Keycloak.ClientSecret)
	assert.Equal(t, 2500, cfg.Export.MaxRecords)
}

func TestLoad_SecretExpansion(t *testing.T) {
	t.Setenv("DB_PASSWORD", "from-vault")
	path := writeConfig(t, `
database:
  password: ${DB_PASSWORD}
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-vault", cfg.Database.Password)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"no search nodes", func(c *Config) { c.Search.Addresses = nil }, true},
		{"empty index pattern", func(c *Config) { c.Search.IndexPattern = "" }, true},
		{"zero export cap", func(c *Config) { c.Export.MaxRecords = 0 }, true},
		{"zero db connections", func(c *Config) { c.Database.MaxConnections = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, "{}"))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestKeycloakTokenURL(t *testing.T) {
	k := KeycloakConfig{URL: "http://keycloak:8080/realms/log-realm/"}
	assert.Equal(t,
		"http://keycloak:8080/realms/log-realm/protocol/openid-connect/token",
		k.TokenURL())
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "localhost", Port: 5432, Name: "log_dashboard",
		User: "dashboard", Password: "pw", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=dashboard password=pw dbname=log_dashboard sslmode=disable",
		d.GetDSN())
}

// writeConfig writes a YAML config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}
