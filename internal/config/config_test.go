package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadBytes(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
}

func TestLoadYAMLAndEnv(t *testing.T) {
	content := []byte(`
server:
  host: 0.0.0.0
  port: 9000
  shutdown_timeout: 3s
storage:
  driver: memory
logging:
  level: debug
  format: console
`)
	path := filepath.Join(t.TempDir(), "rankd.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("RANKING_SERVER_PORT", "9100")
	t.Setenv("RANKING_STORAGE_DSN", ":memory:")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, ":memory:", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port", "server:\n  port: 70000\n"},
		{"driver", "storage:\n  driver: postgres\n"},
		{"format", "logging:\n  format: xml\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tt.content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "server.port", envKey("RANKING_SERVER_PORT"))
	assert.Equal(t, "server.shutdown_timeout", envKey("RANKING_SERVER_SHUTDOWN_TIMEOUT"))
	assert.Equal(t, "debug", envKey("RANKING_DEBUG"))
}
