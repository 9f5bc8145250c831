package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, EnvProduction, cfg.Environment)
	assert.Equal(t, "https://api.bincshop.com/api", cfg.API.BaseURL)
	assert.Equal(t, 30, cfg.API.TimeoutSeconds)
	assert.Equal(t, 300, cfg.Cache.TTLSeconds)
	assert.Equal(t, 10000, cfg.Cache.MaxEntries)
}

func TestLoad_DevelopmentBaseURL(t *testing.T) {
	t.Setenv("STOREFRONT_ENV", "development")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8000/api", cfg.API.BaseURL)
}

func TestLoad_ExplicitBaseURLWins(t *testing.T) {
	t.Setenv("STOREFRONT_ENV", "staging")
	t.Setenv("STOREFRONT_API_BASE_URL", "https://api.example.com/api")

	cfg, err := Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/api", cfg.API.BaseURL)
}

func TestLoad_UnknownEnvironment(t *testing.T) {
	t.Setenv("STOREFRONT_ENV", "qa")

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "unknown environment")
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	t.Setenv("STOREFRONT_API_BASE_URL", "not-a-url")

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "not an absolute URL")
}

func TestLoad_FileOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storefront.yaml")
	contents := `
api:
  base_url: https://api.test.bincshop.com/api
  timeout_seconds: 5
cache:
  ttl_seconds: 60
  max_entries: 100
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	t.Setenv("STOREFRONT_CONFIG", path)

	cfg, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "https://api.test.bincshop.com/api", cfg.API.BaseURL)
	assert.Equal(t, 5, cfg.API.TimeoutSeconds)
	assert.Equal(t, 60, cfg.Cache.TTLSeconds)
	assert.Equal(t, 100, cfg.Cache.MaxEntries)
}

func TestLoad_FileMissing(t *testing.T) {
	t.Setenv("STOREFRONT_CONFIG", "/nonexistent/storefront.yaml")

	_, err := Load(context.Background())
	assert.Error(t, err)
}

func TestValidate_Timeout(t *testing.T) {
	t.Setenv("STOREFRONT_API_TIMEOUT_SECS", "0")

	_, err := Load(context.Background())
	assert.ErrorContains(t, err, "timeout must be positive")
}
