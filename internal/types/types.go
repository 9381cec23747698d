package types

import (
	"github.com/dooshek/heartbeat/internal/audio"
	"github.com/dooshek/heartbeat/internal/driver"
	"github.com/dooshek/heartbeat/internal/loudness"
	"github.com/dooshek/heartbeat/internal/presentation"
)

// DBusConfig controls the session bus service used by the 3D client.
type DBusConfig struct {
	Enabled         bool `yaml:"enabled"`
	LevelThrottleMs int  `yaml:"level_throttle_ms"` // minimum gap between LevelChanged signals
}

type Config struct {
	Loudness loudness.Config             `yaml:"loudness"`
	Capture  audio.CaptureConfig         `yaml:"capture"`
	Driver   driver.Config               `yaml:"driver"`
	Bands    presentation.BandConfig     `yaml:"bands"`
	Heart    presentation.HeartConfig    `yaml:"heart"`
	Waveform presentation.WaveformConfig `yaml:"waveform"`
	DBus     DBusConfig                  `yaml:"dbus"`
}

// DefaultConfig is the configuration used when no file exists. Values read
// from a file are decoded on top of it.
func DefaultConfig() *Config {
	return &Config{
		Loudness: loudness.DefaultConfig(),
		Capture:  audio.DefaultCaptureConfig(),
		Driver:   driver.DefaultConfig(),
		Bands:    presentation.DefaultBandConfig(),
		Heart:    presentation.DefaultHeartConfig(),
		Waveform: presentation.DefaultWaveformConfig(),
		DBus: DBusConfig{
			Enabled:         true,
			LevelThrottleMs: 25,
		},
	}
}

// GetDBusConfig returns D-Bus configuration with defaults
func (c *Config) GetDBusConfig() DBusConfig {
	config := c.DBus
	if config.LevelThrottleMs <= 0 {
		config.LevelThrottleMs = 25
	}
	return config
}
