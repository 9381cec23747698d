package loudness

import (
	"math"
	"time"
)

const (
	// ReferenceRate is the nominal tick rate the Smoothing factor is tuned against.
	ReferenceRate = 60.0

	// AbsoluteFloor keeps a near-silent baseline from turning every small sound
	// into a spike.
	AbsoluteFloor = 0.35
)

// Config holds the tunables for the estimator and spike detector.
// Defaults are carried over from the first prototype and were never calibrated
// against real devices.
type Config struct {
	Sensitivity     float64       `yaml:"sensitivity"`
	MinThreshold    float64       `yaml:"min_threshold"`
	MaxThreshold    float64       `yaml:"max_threshold"`
	Smoothing       float64       `yaml:"smoothing"`
	SpikeMultiplier float64       `yaml:"spike_multiplier"`
	SpikeCooldown   time.Duration `yaml:"spike_cooldown"`
}

func DefaultConfig() Config {
	return Config{
		Sensitivity:     1.0,
		MinThreshold:    0.01,
		MaxThreshold:    0.4,
		Smoothing:       0.2,
		SpikeMultiplier: 3.5,
		SpikeCooldown:   400 * time.Millisecond,
	}
}

// Validate reports the first field that is out of range.
// A negative cooldown is not an error; it is clamped by Normalized.
func (c Config) Validate() error {
	switch {
	case !(c.Sensitivity > 0) || math.IsInf(c.Sensitivity, 0):
		return &ConfigurationError{Field: "sensitivity", Value: c.Sensitivity, Reason: "must be > 0"}
	case !(c.MinThreshold >= 0):
		return &ConfigurationError{Field: "min_threshold", Value: c.MinThreshold, Reason: "must be >= 0"}
	case !(c.MaxThreshold <= 1):
		return &ConfigurationError{Field: "max_threshold", Value: c.MaxThreshold, Reason: "must be <= 1"}
	case !(c.MinThreshold < c.MaxThreshold):
		return &ConfigurationError{Field: "min_threshold", Value: c.MinThreshold, Reason: "must be below max_threshold"}
	case !(c.Smoothing >= 0 && c.Smoothing <= 1):
		return &ConfigurationError{Field: "smoothing", Value: c.Smoothing, Reason: "must be within [0, 1]"}
	case !(c.SpikeMultiplier > 1) || math.IsInf(c.SpikeMultiplier, 0):
		return &ConfigurationError{Field: "spike_multiplier", Value: c.SpikeMultiplier, Reason: "must be > 1"}
	}
	return nil
}

// Normalized returns a copy with a negative cooldown clamped to zero.
func (c Config) Normalized() Config {
	if c.SpikeCooldown < 0 {
		c.SpikeCooldown = 0
	}
	return c
}

// thresholdsUsable reports whether the min/max mapping can be evaluated
// without dividing by zero or inverting the range.
func (c Config) thresholdsUsable() bool {
	return c.Sensitivity > 0 && c.MinThreshold < c.MaxThreshold &&
		!math.IsNaN(c.MinThreshold) && !math.IsNaN(c.MaxThreshold)
}
