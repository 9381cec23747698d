package presentation

import (
	"sync"
	"time"
)

// WaveformConfig sizes the bar graph. Smoothing is a per-second rate applied
// on top of the meter's own smoothing.
type WaveformConfig struct {
	Bars             int     `yaml:"bars"`
	HeightMultiplier float64 `yaml:"height_multiplier"`
	Smoothing        float64 `yaml:"smoothing"`
}

func DefaultWaveformConfig() WaveformConfig {
	return WaveformConfig{
		Bars:             16,
		HeightMultiplier: 200,
		Smoothing:        10,
	}
}

// Waveform is a bar graph whose bars ease toward level * HeightMultiplier.
type Waveform struct {
	mu      sync.Mutex
	cfg     WaveformConfig
	target  float64
	heights []float64
}

func NewWaveform(cfg WaveformConfig) *Waveform {
	if cfg.Bars < 1 {
		cfg.Bars = 1
	}
	return &Waveform{
		cfg:     cfg,
		heights: make([]float64, cfg.Bars),
	}
}

func (w *Waveform) ApplyLoudness(level float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.target = clamp01(level) * w.cfg.HeightMultiplier
}

// Advance moves every bar a dt-sized step toward the target height.
func (w *Waveform) Advance(dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	t := clamp01(dt.Seconds() * w.cfg.Smoothing)
	for i, h := range w.heights {
		w.heights[i] = lerp(h, w.target, t)
	}
}

// Heights returns a copy of the current bar heights.
func (w *Waveform) Heights() []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]float64, len(w.heights))
	copy(out, w.heights)
	return out
}

// MaxHeight is the height of a bar at full loudness.
func (w *Waveform) MaxHeight() float64 {
	return w.cfg.HeightMultiplier
}

func (w *Waveform) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.target = 0
	for i := range w.heights {
		w.heights[i] = 0
	}
}
