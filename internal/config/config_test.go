package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "bjj_club_db", cfg.Database.DBName)
	assert.Equal(t, "bjjuser", cfg.Database.User)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "UTC", cfg.Ledger.Timezone)
	assert.Equal(t, "0.0.0.0:8080", cfg.Addr())
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := []byte(`
server:
  port: 9000
database:
  host: db.internal
  name: club
ledger:
  timezone: Europe/Lisbon
`)
	require.NoError(t, os.WriteFile(path, yaml, 0o600))

	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("DB_HOST", "db.override")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("CORS_ORIGINS", "https://club.example, https://admin.example")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "db.override", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "club", cfg.Database.DBName)
	assert.Equal(t, []string{"https://club.example", "https://admin.example"}, cfg.Security.CORSOrigins)
	assert.Equal(t, 30*time.Second, cfg.Security.RateLimitWindow)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", loc.String())
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := defaultConfig()
	cfg.Server.Port = 0
	cfg.Database.Host = ""
	cfg.Ledger.Timezone = "Mars/Olympus"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "database.host")
	assert.Contains(t, err.Error(), "ledger.timezone")
}

func TestEnvTransformIgnoresUnknown(t *testing.T) {
	assert.Equal(t, "database.host", envTransformFunc("DB_HOST"))
	assert.Equal(t, "", envTransformFunc("HOME"))
}
