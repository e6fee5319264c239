package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "ratedemo.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 500*time.Millisecond, cfg.Debounce)
	assert.Equal(t, time.Second, cfg.Throttle)
	assert.Equal(t, ":3000", cfg.Bind)
	assert.Equal(t, []string{"."}, cfg.Watch)
	assert.False(t, cfg.Debug)
}

func TestLoad_file(t *testing.T) {
	path := writeConfig(t, `
debounce: 250ms
throttle: 2s
bind: 127.0.0.1:8080
watch:
  - src
  - docs
log_file: /tmp/ratedemo.log
debug: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, 2*time.Second, cfg.Throttle)
	assert.Equal(t, "127.0.0.1:8080", cfg.Bind)
	assert.Equal(t, []string{"src", "docs"}, cfg.Watch)
	assert.Equal(t, "/tmp/ratedemo.log", cfg.LogFile)
	assert.True(t, cfg.Debug)
}

func TestLoad_partialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "debounce: 100ms\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Debounce)
	assert.Equal(t, DefaultThrottle, cfg.Throttle)
	assert.Equal(t, DefaultBind, cfg.Bind)
}

func TestLoad_missingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_invalidYAML(t *testing.T) {
	path := writeConfig(t, "debounce: [not, a, duration\n")

	_, err := Load(path)

	require.Error(t, err)
}

func TestLoad_shorterListReplacesDefault(t *testing.T) {
	path := writeConfig(t, "ignore:\n  - vendor\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"vendor"}, cfg.Ignore)
	assert.Equal(t, []string{"."}, cfg.Watch)
}

func TestLoad_bareNumberDuration(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantKey string
	}{
		{name: "debounce", content: "debounce: 500\n", wantKey: "debounce"},
		{name: "throttle", content: "throttle: 1000\n", wantKey: "throttle"},
		{name: "float", content: "debounce: 0.5\n", wantKey: "debounce"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantKey+" must be a duration")
			assert.Equal(t, Default(), cfg)
		})
	}
}
