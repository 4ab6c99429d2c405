package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-cone/engine/triangulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseForm(t *testing.T) {
	p, err := parseForm(" 10  -2.5 0 ")
	require.NoError(t, err)
	assert.Equal(t, triangulation.Params{Height: 10, Radius: -2.5, Segments: 0}, p)

	for _, bad := range []string{"1 2", "a 2 3", "1 b 3", "1 2 3.5", "1 2 3 4"} {
		_, err := parseForm(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseFlagsOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cone:\n  height: 3\n  radius: 4\n"), 0o644))

	cfg, opts, err := parseFlags([]string{"-config", path, "-radius", "9", "-headless", "-frames", "5"})
	require.NoError(t, err)

	assert.Equal(t, 3.0, cfg.Cone.Height)
	assert.Equal(t, 9.0, cfg.Cone.Radius)
	assert.Equal(t, 12, cfg.Cone.Segments)
	assert.True(t, cfg.Window.Headless)
	assert.Equal(t, "software", cfg.Render.Backend)
	assert.Equal(t, uint64(5), opts.frames)
}

func TestParseFlagsRejectsUnknownBackend(t *testing.T) {
	_, _, err := parseFlags([]string{"-backend", "vulkan"})
	assert.Error(t, err)
}

func TestReadFormStopsAtEOF(t *testing.T) {
	err := readForm(context.Background(), strings.NewReader(""), nil, nil)
	assert.NoError(t, err)
}
