package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("MYSQL_DSN", "root:pw@tcp(127.0.0.1:3306)/streamhub?parseTime=True")
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")
	t.Setenv("S3_BUCKET", "streamhub-assets")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address)
	assert.Equal(t, 24*time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 100, cfg.RateLimitRequests)
	assert.Equal(t, "streamhub-assets", cfg.S3Bucket)
}

func TestLoadReadsEnvFile(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("ADDRESS=:9090\nLOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("ADDRESS")
		os.Unsetenv("LOG_LEVEL")
	})

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Address)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadRejectsSharedSecrets(t *testing.T) {
	setRequired(t)
	t.Setenv("REFRESH_TOKEN_SECRET", "access-secret")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
