package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-cone/engine/swap"
	"github.com/Carmen-Shannon/oxy-cone/engine/triangulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "oxy-cone.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, triangulation.DefaultParams(), cfg.Params())
	assert.Equal(t, "http://localhost:3001", cfg.Service.URL)

	hex, err := cfg.ColorHex()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x00ff00), hex)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
service:
  url: http://cones.internal:8080
  timeout: 5s
  rate_limit: 2
cone:
  segments: 64
render:
  backend: software
  color: "0xff8800"
sequencing: last-submitted-wins
log_level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://cones.internal:8080", cfg.Service.URL)
	assert.Equal(t, 5*time.Second, cfg.Service.Timeout)
	assert.Equal(t, 2.0, cfg.Service.RateLimit)
	assert.Equal(t, 64, cfg.Cone.Segments)
	assert.Equal(t, 10.0, cfg.Cone.Height)

	hex, err := cfg.ColorHex()
	require.NoError(t, err)
	assert.Equal(t, uint32(0xff8800), hex)

	mode, err := cfg.SequencingMode()
	require.NoError(t, err)
	assert.Equal(t, swap.LastSubmittedWins, mode)

	level, err := LevelFromString(cfg.LogLevel)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
render:
  backend: vulkan
  color: green
workers: 0
log_level: loud
`)
	_, err := Load(path)
	require.Error(t, err)
	for _, want := range []string{"vulkan", "green", "workers", "loud"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "service: [unterminated"))
	assert.Error(t, err)
}

func TestConeValuesAreNotValidated(t *testing.T) {
	cfg := Default()
	cfg.Cone = Cone{Height: -1, Radius: 0, Segments: -3}
	assert.NoError(t, cfg.Validate())
}
