package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, DEFAULT_LISTEN_ADDR, cfg.ListenAddr)
	assert.Equal(t, "", cfg.TenantDBPrefix)
	assert.Equal(t, DEFAULT_DB_SUFFIX, cfg.TenantDBSuffix)
	assert.Equal(t, DEFAULT_PLATFORM_CONN, cfg.PlatformConnName)
	assert.Equal(t, DEFAULT_EMAIL_SCAN_PER_MINUTE, cfg.EmailScanPerMinute)
	assert.False(t, cfg.DebugErrors)
}

func TestLoginTimeout(t *testing.T) {
	cfg := &Config{LoginTimeoutSeconds: 12}
	assert.Equal(t, 12*time.Second, cfg.LoginTimeout())

	// Zero and negative values fall back to the default.
	cfg.LoginTimeoutSeconds = 0
	assert.Equal(t, time.Duration(DEFAULT_LOGIN_TIMEOUT_SECONDS)*time.Second, cfg.LoginTimeout())
	cfg.LoginTimeoutSeconds = -5
	assert.Equal(t, time.Duration(DEFAULT_LOGIN_TIMEOUT_SECONDS)*time.Second, cfg.LoginTimeout())
}

func TestLoadConfigAppliesEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.json")
	t.Setenv("DATABASE_URL", "postgres://app@db.test/central")
	t.Setenv("TENANT_DB_SUFFIX", "_override")
	t.Setenv("LOGIN_TIMEOUT_SECONDS", "30")
	t.Setenv("DEBUG_ERRORS", "true")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "postgres://app@db.test/central", cfg.DatabaseURL)
	assert.Equal(t, "_override", cfg.TenantDBSuffix)
	assert.Equal(t, 30, cfg.LoginTimeoutSeconds)
	assert.True(t, cfg.DebugErrors)
}

func TestLoadConfigEnvBeatsFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")
	content := `{"redis_addr": "file-redis:6379", "tenant_db_prefix": "file_"}`
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o644))

	t.Setenv("CONFIG_FILE", configPath)
	t.Setenv("REDIS_ADDR", "env-redis:6379")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	// Env wins over the file; the file wins over the default.
	assert.Equal(t, "env-redis:6379", cfg.RedisAddr)
	assert.Equal(t, "file_", cfg.TenantDBPrefix)
}

func TestLoadConfigIgnoresBadNumericEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.json")
	t.Setenv("JWT_EXPIRY_HOURS", "not-a-number")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_JWT_EXPIRY_HOURS, cfg.JWTExpiryHours)
}
