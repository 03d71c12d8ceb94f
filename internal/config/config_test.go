package config_test

import (
	"favicon/internal/config"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	require.Equal(t, 10*time.Second, cfg.Resolver.FetchTimeout)
	require.Equal(t, int64(5<<20), cfg.Resolver.MaxBodySize)
	require.Equal(t, 5, cfg.Resolver.MaxRedirects)
	require.False(t, cfg.Resolver.AllowPrivateNetworks)
	require.Empty(t, cfg.Log.File)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
environment: production
log:
  file: /tmp/favicon.log
  maxSizeMB: 10
http:
  addr: ":9090"
  requestTimeout: 30s
resolver:
  fetchTimeout: 3s
  maxRedirects: 2
  userAgent: test-agent
  allowPrivateNetworks: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, "/tmp/favicon.log", cfg.Log.File)
	require.Equal(t, 10, cfg.Log.MaxSizeMB)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, 30*time.Second, cfg.HTTP.RequestTimeout)
	require.Equal(t, 3*time.Second, cfg.Resolver.FetchTimeout)
	require.Equal(t, 2, cfg.Resolver.MaxRedirects)
	require.Equal(t, "test-agent", cfg.Resolver.UserAgent)
	require.True(t, cfg.Resolver.AllowPrivateNetworks)
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
		field   string
	}{
		{
			name:    "unknown environment",
			content: "environment: staging\n",
			field:   "Config.Environment",
		},
		{
			name:    "negative fetch timeout",
			content: "resolver:\n  fetchTimeout: -1s\n",
			field:   "Config.Resolver.FetchTimeout",
		},
		{
			name:    "relative metrics path",
			content: "http:\n  metricsPath: metrics\n",
			field:   "Config.HTTP.MetricsPath",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tc.content))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.field)
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("RESOLVER_ALLOW_PRIVATE_NETWORKS", "true")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	require.Equal(t, ":7070", cfg.HTTP.Addr)
	require.True(t, cfg.Resolver.AllowPrivateNetworks)
}
