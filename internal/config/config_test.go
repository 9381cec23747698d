package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dooshek/heartbeat/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "heartbeat", "heartbeat.yaml"))
	require.NoError(t, err)
	return s
}

func TestLoadConfigMissing(t *testing.T) {
	s := newTestStore(t)

	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)

	cfg, err = s.LoadOrDefault()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig(), cfg)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	cfg := types.DefaultConfig()
	cfg.Loudness.Sensitivity = 2.5
	cfg.Loudness.SpikeCooldown = 750 * time.Millisecond
	cfg.Bands.Hysteresis = 0.05
	cfg.Capture.Device = "USB"
	require.NoError(t, s.SaveConfig(cfg))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "spike_cooldown: 750ms")

	loaded, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2.5, loaded.Loudness.Sensitivity)
	assert.Equal(t, 750*time.Millisecond, loaded.Loudness.SpikeCooldown)
	assert.Equal(t, 0.05, loaded.Bands.Hysteresis)
	assert.Equal(t, "USB", loaded.Capture.Device)
	assert.Equal(t, cfg.Bands.CalmColor.Hex(), loaded.Bands.CalmColor.Hex())
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`
loudness:
  sensitivity: 3
bands:
  stressed_color: "#00ff00"
`), 0o644))

	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 3.0, cfg.Loudness.Sensitivity)
	assert.Equal(t, 0.4, cfg.Loudness.MaxThreshold)
	assert.Equal(t, "#00ff00", cfg.Bands.StressedColor.Hex())
	assert.Equal(t, "Calm", cfg.Bands.CalmLabel)
	assert.Equal(t, 44100, cfg.Capture.SampleRate)
}

func TestLoadConfigInvalidLoudnessFallsBack(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte(`
loudness:
  min_threshold: 0.5
  max_threshold: 0.2
`), 0o644))

	cfg, err := s.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, types.DefaultConfig().Loudness, cfg.Loudness)
}

func TestLoadConfigBadYAML(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(s.Path()), 0o755))
	require.NoError(t, os.WriteFile(s.Path(), []byte("bands:\n  calm_color: [1, 2]\n"), 0o644))

	_, err := s.LoadConfig()
	assert.Error(t, err)
}

func TestSaveConfigRejectsInvalid(t *testing.T) {
	s := newTestStore(t)
	cfg := types.DefaultConfig()
	cfg.Loudness.SpikeMultiplier = 0.5
	assert.Error(t, s.SaveConfig(cfg))
}
