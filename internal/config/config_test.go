package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 8086, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 12, cfg.Retrieval.TopK)
	assert.Equal(t, 55, cfg.Retrieval.FuzzyThreshold)
}

func TestLoadFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: 9001
database:
  driver: postgres
  postgres:
    dsn: postgres://u:p@localhost/pathio?sslmode=disable
retrieval:
  top_k: 5
  nearby_radius_km: 10
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9001, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, float64(10), cfg.Retrieval.NearbyRadiusKm)
	// Untouched fields keep their defaults.
	assert.Equal(t, 55, cfg.Retrieval.FuzzyThreshold)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("DATABASE_URL", "sqlite:/tmp/alt.db")
	t.Setenv("GEMINI_API_KEY", "test-key")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/alt.db", cfg.Database.SQLite.Path)
	assert.Equal(t, "test-key", cfg.Model.APIKey)
	assert.Equal(t, "warn", cfg.Observability.LogLevel)
}

func TestEnvPostgresURL(t *testing.T) {
	dsn := "postgres://u:p@db:5432/pathio"
	t.Setenv("DATABASE_URL", dsn)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, dsn, cfg.DatabaseDSN())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"bad db driver", func(c *Config) { c.Database.Driver = "oracle" }},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "disk" }},
		{"top_k too large", func(c *Config) { c.Retrieval.TopK = 51 }},
		{"threshold out of range", func(c *Config) { c.Retrieval.FuzzyThreshold = 101 }},
		{"zero radius", func(c *Config) { c.Retrieval.NearbyRadiusKm = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, cfg.Database.SQLite.Path, cfg.DatabaseDSN())

	cfg.Database.Driver = "postgres"
	cfg.Database.Postgres.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", cfg.DatabaseDSN())
}
