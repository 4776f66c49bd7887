package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV", "DSP_API_URL", "STORAGE_DRIVER", "SESSION_NAMESPACE",
		"REQUEST_TIMEOUT", "SESSION_PROACTIVE_EXPIRY", "WATCH_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultsToDevelopmentBackend(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DevelopmentAPIURL, cfg.API.BaseURL)
	assert.Equal(t, StorageBolt, cfg.Storage.Driver)
	assert.Equal(t, "auth-storage", cfg.Storage.Namespace)
	assert.Equal(t, 30*time.Second, cfg.API.RequestTimeout)
	assert.False(t, cfg.Session.ProactiveExpiry)
}

func TestLoadRequiresBackendOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadNormalizesBackendAddress(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DSP_API_URL", "https://dsp.example.com/api/v1")
	t.Setenv("REQUEST_TIMEOUT", "7")
	t.Setenv("SESSION_PROACTIVE_EXPIRY", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://dsp.example.com/api/v1/", cfg.API.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.API.RequestTimeout)
	assert.True(t, cfg.Session.ProactiveExpiry)
}

func TestLoadRejectsUnknownStorageDriver(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORAGE_DRIVER", "sqlite")

	_, err := Load()
	assert.Error(t, err)
}
