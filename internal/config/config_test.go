package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ModeDirect, cfg.UpstreamMode)
	assert.False(t, cfg.IsLocal())
	assert.Equal(t, 12*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 15*time.Second, cfg.SupplierTimeout)
	assert.Equal(t, 2, cfg.NotifyMaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.NotifyTimeout)
	assert.Equal(t, 0, cfg.FanoutLimit)
	assert.Equal(t, 180, cfg.WatchWindowDays)
	assert.False(t, cfg.Development)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("UPSTREAM_MODE", "LOCAL")
	t.Setenv("UPSTREAM_PROXY_ORIGIN", "http://127.0.0.1:9999")
	t.Setenv("FANOUT_LIMIT", "8")
	t.Setenv("WATCH_ITEM_CODES", " 1234, ,56789 ")
	t.Setenv("FETCH_TIMEOUT", "3s")
	t.Setenv("NOTIFY_ALLOWED_URLS", "https://n8n.example.com/webhook/a, https://n8n.example.com/webhook/b")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.IsLocal())
	assert.Equal(t, "http://127.0.0.1:9999", cfg.ProxyOrigin)
	assert.Equal(t, 8, cfg.FanoutLimit)
	assert.Equal(t, []string{"1234", "56789"}, cfg.WatchItemCodes)
	assert.Equal(t, 3*time.Second, cfg.FetchTimeout)
	assert.Equal(t, []string{"https://n8n.example.com/webhook/a", "https://n8n.example.com/webhook/b"}, cfg.NotifyAllowedURLs)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	t.Run("unknown mode", func(t *testing.T) {
		t.Setenv("UPSTREAM_MODE", "browser")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("negative fanout", func(t *testing.T) {
		t.Setenv("FANOUT_LIMIT", "-1")
		_, err := Load("")
		assert.Error(t, err)
	})
}
