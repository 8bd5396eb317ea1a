package animplay

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/animplay/clock"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "animplay.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

// TestLoadConfig verifies a full YAML config round-trips into options.
func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
repeatCount: 3
window: 8
maxTimeStepMillis: 250
canvas:
  width: 320
  height: 240
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.RepeatCount)
	assert.Equal(t, 8, cfg.Window)
	assert.Equal(t, 250, cfg.MaxTimeStepMillis)
	assert.Equal(t, 320, cfg.Canvas.Width)
	assert.Equal(t, 240, cfg.Canvas.Height)

	opts := cfg.Options()
	assert.Equal(t, clock.RepeatCount(3), opts.Repeat)
	assert.Equal(t, 8, opts.Window)
	assert.Equal(t, 250*time.Millisecond, opts.MaxTimeStep)
	assert.Equal(t, 320, opts.CanvasWidth)
	assert.Equal(t, 240, opts.CanvasHeight)
}

// TestLoadConfigDefaults verifies zero values select defaults.
func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfigFile(t, "window: 0\n"))
	require.NoError(t, err)

	opts := cfg.Options()
	assert.Equal(t, clock.RepeatInfinite, opts.Repeat)
	assert.Equal(t, DefaultMaxTimeStep, opts.MaxTimeStep)
	assert.Zero(t, opts.CanvasWidth)
	assert.Zero(t, opts.CanvasHeight)
}

// TestLoadConfigErrors verifies missing files, bad YAML, and invalid
// values are all rejected.
func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, "window: [not a number"))
	assert.Error(t, err)

	_, err = LoadConfig(writeConfigFile(t, "repeatCount: -1\n"))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = LoadConfig(writeConfigFile(t, "window: -2\n"))
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = LoadConfig(writeConfigFile(t, "canvas:\n  width: -10\n"))
	assert.ErrorIs(t, err, ErrInvalidOptions)
}
