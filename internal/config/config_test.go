// ABOUTME: Tests for client configuration loading.
// ABOUTME: Covers defaults, env expansion, and URL scheme validation.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))

	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.Gateway.URL)
	assert.Equal(t, "ws://localhost:8000/ws/v1", cfg.Realtime.URL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
[gateway]
url = "https://api.example.com"

[realtime]
url = "wss://api.example.com/ws/v1"

[storage]
path = "/tmp/spira.db"

[logging]
level = "debug"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com", cfg.Gateway.URL)
	assert.Equal(t, "wss://api.example.com/ws/v1", cfg.Realtime.URL)
	assert.Equal(t, "/tmp/spira.db", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("SPIRA_TEST_GATEWAY", "https://env.example.com")
	path := writeConfig(t, `
[gateway]
url = "${SPIRA_TEST_GATEWAY}"
`)

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.Gateway.URL)
}

func TestLoad_RejectsBadGatewayScheme(t *testing.T) {
	path := writeConfig(t, `
[gateway]
url = "ftp://example.com"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway.url")
}

func TestLoad_RejectsBadRealtimeScheme(t *testing.T) {
	path := writeConfig(t, `
[realtime]
url = "http://example.com/ws"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "realtime.url")
}

func TestLoad_RejectsUnknownLogLevel(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "loud"
`)

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}
