package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "commerce-sync", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Worker.Timeout)
	assert.Equal(t, 15*time.Second, cfg.Woocommerce.Timeout)
	assert.Equal(t, 3, cfg.Woocommerce.MaxAttempts)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins, "no cross-origin access until configured")
}

func TestLoad_HealthDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Health.WorkerErrorCritical)
	assert.Equal(t, 10, cfg.Health.WorkerQueuedWarning)
	assert.Equal(t, 60*time.Minute, cfg.Health.WebhookStaleWarning)
	assert.Equal(t, 180*time.Minute, cfg.Health.WebhookStaleCritical)
	assert.Equal(t, 0.2, cfg.Health.ErrorRateWarnRatio)
	assert.Equal(t, 0.5, cfg.Health.ErrorRateCritRatio)
	assert.Equal(t, 360*time.Minute, cfg.Health.OrderImportCritical)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SYNC_WORKER_ENDPOINT", "https://worker.internal/dispatch")
	t.Setenv("SYNC_LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://worker.internal/dispatch", cfg.Worker.Endpoint)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ProductionValidation(t *testing.T) {
	t.Run("missing worker endpoint rejected", func(t *testing.T) {
		t.Setenv("SYNC_APP_ENV", "production")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "worker.endpoint")
	})

	t.Run("missing worker key rejected", func(t *testing.T) {
		t.Setenv("SYNC_APP_ENV", "production")
		t.Setenv("SYNC_WORKER_ENDPOINT", "https://worker.internal/dispatch")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "worker.key")
	})

	t.Run("complete production config accepted", func(t *testing.T) {
		t.Setenv("SYNC_APP_ENV", "production")
		t.Setenv("SYNC_WORKER_ENDPOINT", "https://worker.internal/dispatch")
		t.Setenv("SYNC_WORKER_KEY", "shared-secret")
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}
