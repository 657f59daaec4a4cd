package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/normanking/hologram/internal/retarget"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := writeFile(t, t.TempDir(), "hologram.yaml", `
model:
  path: avatars/robot.glb
  options_path: avatars/robot.json
detector:
  url: ws://10.0.0.5:9000/landmarks
  body: true
tracking:
  frame_rate: 30
  interval: 20ms
expression:
  eye_open: 0.35
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "avatars/robot.glb", cfg.Model.Path)
	assert.Equal(t, "avatars/robot.json", cfg.Model.OptionsPath)
	assert.Equal(t, "ws://10.0.0.5:9000/landmarks", cfg.Detector.URL)
	assert.True(t, cfg.Detector.Body)
	assert.Equal(t, 30, cfg.Tracking.FrameRate)
	assert.Equal(t, 20*time.Millisecond, cfg.Tracking.Interval)
	assert.InDelta(t, 0.35, cfg.Expression.EyeOpen, 1e-9)
	assert.Equal(t, time.Second/30, cfg.FrameInterval())

	// Untouched keys keep their defaults.
	assert.InDelta(t, 0.12, cfg.Expression.EyeClosed, 1e-9)
	assert.Equal(t, 3*time.Second, cfg.Detector.ReconnectDelay)
	assert.Equal(t, ":9464", cfg.Metrics.Addr)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Setenv("HOLOGRAM_DETECTOR_URL", "ws://env:1/landmarks")

	path := writeFile(t, t.TempDir(), "hologram.yaml", "logging:\n  level: debug\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ws://env:1/landmarks", cfg.Detector.URL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoad_Invalid(t *testing.T) {
	t.Cleanup(viper.Reset)

	path := writeFile(t, t.TempDir(), "hologram.yaml", "tracking:\n  frame_rate: 0\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "frame_rate")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	t.Cleanup(viper.Reset)

	cfg := DefaultConfig()
	cfg.Model.Path = "robot.vrm"
	cfg.Tracking.FullBody = true
	cfg.Tracking.LostAfter = time.Second
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadModelOptions(t *testing.T) {
	path := writeFile(t, t.TempDir(), "robot.json", `{
		"camera": {"posY": 1.5, "lookY": 1.45},
		"rotation": {"body": {"y": 3.14}, "neck": {"x": 0.2}},
		"blendshapes": {"neck": {"order": ["Y", "-X", "Z"]}}
	}`)

	opts, err := LoadModelOptions(path)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, opts.Camera.PosY, 1e-9)
	assert.InDelta(t, 1.45, opts.Camera.LookY, 1e-9)
	assert.InDelta(t, 1.0, opts.Camera.PosZ, 1e-9)
	assert.InDelta(t, 3.14, opts.Rotation.Body.Y, 1e-9)
	assert.InDelta(t, 0.2, opts.Rotation.Neck.X, 1e-9)
	assert.Equal(t, []string{"Y", "-X", "Z"}, opts.Blendshapes.Neck.Order)
	assert.InDelta(t, 1.0, opts.JawOpenMultiplier, 1e-9)
}

func TestLoadModelOptions_Defaults(t *testing.T) {
	opts, err := LoadModelOptions("")
	require.NoError(t, err)
	assert.Equal(t, retarget.DefaultOptions(), opts)

	path := writeFile(t, t.TempDir(), "empty.json", `{}`)
	opts, err = LoadModelOptions(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, opts.Blendshapes.Neck.Order)

	_, err = LoadModelOptions(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestOptionsWatcher_Reloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := writeFile(t, dir, "robot.yaml", "rotation:\n  neck:\n    x: 0.1\n")

	w, err := NewOptionsWatcher(ctx, path, zerolog.Nop())
	require.NoError(t, err)
	defer w.Close()

	writeFile(t, dir, "other.yaml", "ignored: true\n")
	writeFile(t, dir, "robot.yaml", "rotation:\n  neck:\n    x: 0.4\n")

	var got retarget.Options
	require.Eventually(t, func() bool {
		select {
		case got = <-w.Changes():
			return got.Rotation.Neck.X > 0.3
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
	assert.InDelta(t, 0.4, got.Rotation.Neck.X, 1e-9)
}
