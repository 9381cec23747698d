// Package audio provides the sample sources the meter reads from: live
// microphone capture and real-time WAV replay.
package audio

import "errors"

// ErrNoDevice is returned when no capture device is available.
var ErrNoDevice = errors.New("no microphone devices found")

// Source supplies the most recent window of mono samples in [-1, 1].
type Source interface {
	Start() error
	Stop() error
	// Window copies the latest samples into dst and returns how many it wrote.
	Window(dst []float32) int
	SampleRate() int
}

// CaptureConfig selects and sizes the input.
type CaptureConfig struct {
	Device        string  `yaml:"device"`         // empty for the default microphone
	SampleRate    int     `yaml:"sample_rate"`    // Hz
	BufferSeconds float64 `yaml:"buffer_seconds"` // ring buffer length
	File          string  `yaml:"file"`           // replay a WAV file instead of the mic
	Loop          bool    `yaml:"loop"`           // loop file replay
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		SampleRate:    44100,
		BufferSeconds: 1,
	}
}

// NewSource builds the file source when File is set, the microphone otherwise.
func NewSource(cfg CaptureConfig) (Source, error) {
	if cfg.File != "" {
		return NewWAVSource(cfg.File, cfg.Loop)
	}
	return NewCapture(cfg), nil
}
