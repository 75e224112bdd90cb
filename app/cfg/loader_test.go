package cfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestLoadArgsDefaults(t *testing.T) {
	cfg, err := LoadArgs([]string{})
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "./data/importer.db", cfg.DBPath)
	assert.Equal(t, "./uploads/files", cfg.UploadsDir)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "en", cfg.Language)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, time.Hour, cfg.ImportIntervalDuration())
	assert.Equal(t, time.Hour, cfg.LockTTLDuration())
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.ExtractContent)

	assert.Same(t, cfg, Get())
}

func TestLoadArgsFlags(t *testing.T) {
	cfg, err := LoadArgs([]string{
		"--db-path", "/tmp/test.db",
		"--port", "9090",
		"--import-interval", "600",
		"--lock-ttl", "1800",
		"--language", "de",
		"--user-agent", "Test Agent",
		"--extract-content",
		"--debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.ImportIntervalDuration())
	assert.Equal(t, 30*time.Minute, cfg.LockTTLDuration())
	assert.Equal(t, "de", cfg.Language)
	assert.Equal(t, "Test Agent", cfg.UserAgent)
	assert.True(t, cfg.ExtractContent)
	assert.True(t, cfg.Debug)
}

func TestLoadArgsEnvironment(t *testing.T) {
	t.Setenv("API_ACCESS_KEY", "env-key")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("AUTHOR_EMAIL", "editor@example.com")

	cfg, err := LoadArgs([]string{})
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.APIAccessKey)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "editor@example.com", cfg.AuthorEmail)
}

func TestLoadArgsRejectsInvalidValues(t *testing.T) {
	_, err := LoadArgs([]string{"--import-interval", "0"})
	assert.Error(t, err)

	_, err = LoadArgs([]string{"--lock-ttl", "-5"})
	assert.Error(t, err)

	_, err = LoadArgs([]string{"--port"})
	assert.Error(t, err)
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Cfg{}
	assert.Equal(t, time.Hour, cfg.ImportIntervalDuration())
	assert.Equal(t, time.Hour, cfg.LockTTLDuration())
}
