package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, uint64(defaultOpenRetries), cfg.Database.OpenRetries)
	assert.Equal(t, defaultBusyTimeout, cfg.Database.BusyTimeout)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /var/lib/vacation/employees.db
  open_retries: 5
  busy_timeout: 2s
log:
  development: true
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/vacation/employees.db", cfg.Database.Path)
	assert.Equal(t, uint64(5), cfg.Database.OpenRetries)
	assert.Equal(t, 2*time.Second, cfg.Database.BusyTimeout)
	assert.True(t, cfg.Log.Development)

	level, err := cfg.Log.ZapLevel()
	require.NoError(t, err)
	assert.Equal(t, zapcore.DebugLevel, level)

	logger, err := cfg.Log.NewLogger()
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "log:\n  level: warn\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDatabasePath, cfg.Database.Path)
	assert.Equal(t, defaultBusyTimeout, cfg.Database.BusyTimeout)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "database: ["},
		{"empty path", "database:\n  path: \"\"\n"},
		{"bad timeout", "database:\n  busy_timeout: soon\n"},
		{"negative timeout", "database:\n  busy_timeout: -1s\n"},
		{"bad level", "log:\n  level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
