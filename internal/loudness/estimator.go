// Package loudness turns short windows of microphone samples into a
// normalized, smoothed loudness level and detects transient spikes.
package loudness

import (
	"math"
	"time"
)

// State is the estimator output carried from tick to tick.
type State struct {
	RawRMS          float64
	NormalizedLevel float64
	SmoothedLevel   float64
}

// Estimator computes windowed RMS loudness with frame-rate independent
// exponential smoothing. It is not safe for concurrent use.
type Estimator struct {
	cfg   Config
	state State
}

func NewEstimator(cfg Config) *Estimator {
	return &Estimator{cfg: cfg.Normalized()}
}

// SetConfig replaces the configuration without validating it.
// An unusable threshold range makes Update report silence.
func (e *Estimator) SetConfig(cfg Config) {
	e.cfg = cfg.Normalized()
}

func (e *Estimator) State() State {
	return e.state
}

func (e *Estimator) Reset() {
	e.state = State{}
}

// Update consumes one window and advances the smoothed level by dt.
// The window is read only for the duration of the call.
func (e *Estimator) Update(window []float32, dt time.Duration) State {
	raw, err := RMS(window)
	if err != nil {
		raw = 0
	}

	normalized := e.normalize(raw)
	alpha := SmoothingAlpha(e.cfg.Smoothing, dt)
	smoothed := clamp01(lerp(e.state.SmoothedLevel, normalized, alpha))

	e.state = State{
		RawRMS:          raw,
		NormalizedLevel: normalized,
		SmoothedLevel:   smoothed,
	}
	return e.state
}

func (e *Estimator) normalize(raw float64) float64 {
	if !e.cfg.thresholdsUsable() {
		return 0
	}
	scaled := raw * e.cfg.Sensitivity
	return clamp01(inverseLerp(e.cfg.MinThreshold, e.cfg.MaxThreshold, scaled))
}

// RMS returns the root-mean-square of window. Non-finite input yields 0.
func RMS(window []float32) (float64, error) {
	if len(window) == 0 {
		return 0, ErrNoInput
	}
	var sum float64
	for _, s := range window {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(window)))
	if math.IsNaN(rms) || math.IsInf(rms, 0) {
		return 0, nil
	}
	return rms, nil
}

// SmoothingAlpha is the blend factor for one tick of length dt:
// 1 - exp(-smoothing * dt * ReferenceRate). Non-positive dt gives 0.
func SmoothingAlpha(smoothing float64, dt time.Duration) float64 {
	if dt <= 0 || !(smoothing > 0) {
		return 0
	}
	return clamp01(1 - math.Exp(-smoothing*dt.Seconds()*ReferenceRate))
}

func inverseLerp(a, b, v float64) float64 {
	return (v - a) / (b - a)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
