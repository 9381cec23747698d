package presentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeartControllerApplyLoudness(t *testing.T) {
	h := NewHeartController(DefaultHeartConfig(), DefaultBandConfig())

	tests := []struct {
		level    float64
		rate     float64
		band     BandName
		status   string
		wantBeat float64
	}{
		{level: 0, rate: 5, band: BandCalm, status: "Calm", wantBeat: 0},
		{level: 0.5, rate: 37.5, band: BandNormal, status: "Normal", wantBeat: 0.5},
		{level: 1, rate: 70, band: BandStressed, status: "Stressed", wantBeat: 1},
		{level: 3, rate: 70, band: BandStressed, status: "Stressed", wantBeat: 1},
		{level: -1, rate: 5, band: BandCalm, status: "Calm", wantBeat: 0},
	}

	for _, tt := range tests {
		h.ApplyLoudness(tt.level)
		s := h.Snapshot()
		assert.InDelta(t, tt.wantBeat, s.Intensity, 1e-9, "level %v", tt.level)
		assert.InDelta(t, tt.rate, s.ParticleRate, 1e-9, "level %v", tt.level)
		assert.Equal(t, tt.band, s.Band.Name, "level %v", tt.level)
		assert.Equal(t, tt.status, s.Status(), "level %v", tt.level)
	}
}

func TestHeartControllerReset(t *testing.T) {
	cfg := DefaultHeartConfig()
	h := NewHeartController(cfg, DefaultBandConfig())

	initial := h.Snapshot()
	assert.Equal(t, cfg.BaseParticleRate, initial.ParticleRate)
	assert.Equal(t, "Calm", initial.Status())

	h.ApplyLoudness(0.95)
	h.Reset()

	s := h.Snapshot()
	assert.Equal(t, 0.0, s.Intensity)
	assert.Equal(t, cfg.BaseParticleRate, s.ParticleRate)
	assert.Equal(t, BandCalm, s.Band.Name)
	assert.Equal(t, DefaultBandConfig().CalmColor, s.Band.Color)
}

func TestHeartControllerBandChange(t *testing.T) {
	h := NewHeartController(DefaultHeartConfig(), DefaultBandConfig())

	var changes []BandName
	h.OnBandChange(func(prev, next Band) {
		changes = append(changes, next.Name)
	})

	for _, level := range []float64{0, 0.05, 0.5, 0.6, 0.95, 0.95} {
		h.ApplyLoudness(level)
	}
	h.Reset()

	assert.Equal(t, []BandName{BandNormal, BandStressed, BandCalm}, changes)
}
