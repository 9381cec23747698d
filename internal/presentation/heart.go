package presentation

import (
	"math"
	"sync"
)

// HeartConfig controls particle density for the blood flow effect.
// BaseParticleRate is what the particle systems ran at before the meter took
// over, and is restored on Reset.
type HeartConfig struct {
	MinParticles     float64 `yaml:"min_particles"`
	MaxParticles     float64 `yaml:"max_particles"`
	BaseParticleRate float64 `yaml:"base_particle_rate"`
}

func DefaultHeartConfig() HeartConfig {
	return HeartConfig{
		MinParticles:     5,
		MaxParticles:     70,
		BaseParticleRate: 10,
	}
}

// HeartState is the full visual state of the heart for one tick.
type HeartState struct {
	Intensity    float64
	Band         Band
	ParticleRate float64
}

// Status is the text shown under the heart.
func (s HeartState) Status() string {
	return s.Band.Label
}

// HeartController turns loudness into heartbeat intensity, color, particle
// rate and status text. It is safe for concurrent use.
type HeartController struct {
	mu      sync.Mutex
	cfg     HeartConfig
	banding *Banding
	state   HeartState

	onBand []func(prev, next Band)
}

func NewHeartController(cfg HeartConfig, bands BandConfig) *HeartController {
	h := &HeartController{
		cfg:     cfg,
		banding: NewBanding(bands),
	}
	h.state = h.resting()
	return h
}

// OnBandChange registers fn to run whenever the band changes. It is called
// without the controller lock held.
func (h *HeartController) OnBandChange(fn func(prev, next Band)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onBand = append(h.onBand, fn)
}

func (h *HeartController) ApplyLoudness(level float64) {
	intensity := clamp01(level)

	h.mu.Lock()
	prev := h.state.Band
	band := h.banding.Classify(intensity)
	h.state = HeartState{
		Intensity:    intensity,
		Band:         band,
		ParticleRate: lerp(h.cfg.MinParticles, h.cfg.MaxParticles, intensity),
	}
	var listeners []func(prev, next Band)
	if band.Name != prev.Name {
		listeners = append(listeners, h.onBand...)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, band)
	}
}

// Reset puts the heart back to rest: no beat, calm, original particle rate.
func (h *HeartController) Reset() {
	h.mu.Lock()
	prev := h.state.Band
	h.banding.Reset()
	h.state = h.resting()
	next := h.state.Band
	var listeners []func(prev, next Band)
	if prev.Name != next.Name {
		listeners = append(listeners, h.onBand...)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
}

func (h *HeartController) Snapshot() HeartState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *HeartController) resting() HeartState {
	return HeartState{
		Intensity:    0,
		Band:         h.banding.Current(),
		ParticleRate: h.cfg.BaseParticleRate,
	}
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
