package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir is t.Chdir from Go 1.24+, inlined because this builds with go1.21.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.toml present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sellerdesk", cfg.App.Name)
	assert.Equal(t, 50, cfg.Remote.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Remote.Timeout)
	assert.Equal(t, "EUR", cfg.Currency.Target)
	assert.Equal(t, "sellerdesk.db", cfg.Store.Path)
	assert.Empty(t, cfg.Remote.APIKey, "missing API key is not a load error")
}

func TestLoad_EnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SELLERDESK_REMOTE_API_KEY", "secret-token")
	t.Setenv("SELLERDESK_CURRENCY_TARGET", "USD")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret-token", cfg.Remote.APIKey)
	assert.Equal(t, "USD", cfg.Currency.Target)
}

func TestValidate_PageSize(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Remote.PageSize = 0

	assert.Error(t, cfg.validate())
}

func TestValidate_BaseURL(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Remote.BaseURL = "ftp://nope"

	assert.Error(t, cfg.validate())
}
