package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, ":8080", cfg.GetHTTPAddr())
	assert.Equal(t, 9090, cfg.GRPCPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, BackendMemory, cfg.StorageBackend)
	assert.True(t, cfg.SeedSampleData)
	assert.Equal(t, "public", cfg.Public.Dir)
	assert.Equal(t, int64(64<<20), cfg.Public.MaxUploadBytes)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Equal(t, "admin123", cfg.Admin.Password)
	assert.Equal(t, "https://api.gamebanana.com", cfg.GameBanana.BaseURL)
	assert.Equal(t, 3827, cfg.GameBanana.GameID)
	assert.Equal(t, 15*time.Second, cfg.GameBanana.Timeout)
	assert.Equal(t, 30*time.Second, cfg.Timeouts.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.Timeouts.HealthCheckInterval)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SEED_SAMPLE_DATA", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, BackendRedis, cfg.StorageBackend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.SeedSampleData)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"port out of range", "PORT", "70000"},
		{"port not a number", "PORT", "http"},
		{"unknown backend", "STORAGE_BACKEND", "postgres"},
		{"unknown log level", "LOG_LEVEL", "trace"},
		{"negative upload size", "MAX_UPLOAD_BYTES", "-1"},
		{"zero rate", "GAMEBANANA_REQUESTS_PER_SECOND", "0"},
		{"grpc port clashes with http", "GRPC_PORT", "8080"},
		{"admin username the gate cannot verify", "ADMIN_USERNAME", "root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadAcceptsAdminUsernameWithMarker(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "siteadmin")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "siteadmin", cfg.Admin.Username)
}
