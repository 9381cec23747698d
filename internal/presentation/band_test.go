package presentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBandConfigClassify(t *testing.T) {
	cfg := DefaultBandConfig()

	tests := []struct {
		level float64
		want  BandName
		label string
	}{
		{level: 0, want: BandCalm, label: "Calm"},
		{level: 0.0999, want: BandCalm, label: "Calm"},
		{level: 0.1, want: BandNormal, label: "Normal"},
		{level: 0.5, want: BandNormal, label: "Normal"},
		{level: 0.8999, want: BandNormal, label: "Normal"},
		{level: 0.9, want: BandStressed, label: "Stressed"},
		{level: 1, want: BandStressed, label: "Stressed"},
	}

	for _, tt := range tests {
		got := cfg.Classify(tt.level)
		assert.Equal(t, tt.want, got.Name, "level %v", tt.level)
		assert.Equal(t, tt.label, got.Label, "level %v", tt.level)
	}
}

func TestBandColors(t *testing.T) {
	cfg := DefaultBandConfig()
	assert.Equal(t, "#4d99ff", cfg.Classify(0).Color.Hex())
	assert.Equal(t, "#ff8080", cfg.Classify(0.5).Color.Hex())
	assert.Equal(t, "#ff1a1a", cfg.Classify(1).Color.Hex())
}

func TestBandingWithoutHysteresisIsExact(t *testing.T) {
	b := NewBanding(DefaultBandConfig())
	assert.Equal(t, BandCalm, b.Current().Name)

	for _, level := range []float64{0.09, 0.1, 0.09, 0.9, 0.89} {
		assert.Equal(t, DefaultBandConfig().Classify(level).Name, b.Classify(level).Name, "level %v", level)
	}
}

func TestBandingHysteresis(t *testing.T) {
	cfg := DefaultBandConfig()
	cfg.Hysteresis = 0.05
	b := NewBanding(cfg)

	steps := []struct {
		level float64
		want  BandName
	}{
		{level: 0.05, want: BandCalm},
		{level: 0.12, want: BandCalm},     // not clear of 0.1 + 0.05
		{level: 0.16, want: BandNormal},   // cleared
		{level: 0.08, want: BandNormal},   // not clear of 0.1 - 0.05
		{level: 0.04, want: BandCalm},     // cleared downward
		{level: 0.97, want: BandStressed}, // jumps two bands
		{level: 0.87, want: BandStressed},
		{level: 0.5, want: BandNormal},
		{level: 0.92, want: BandNormal},
	}

	for i, s := range steps {
		assert.Equal(t, s.want, b.Classify(s.level).Name, "step %d level %v", i, s.level)
	}
}

func TestBandingHysteresisPartialJump(t *testing.T) {
	cfg := DefaultBandConfig()
	cfg.Hysteresis = 0.05
	b := NewBanding(cfg)

	b.Classify(0)
	// Raw band is stressed but only normal is cleared by the margin.
	assert.Equal(t, BandNormal, b.Classify(0.92).Name)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ff8000")
	assert.NoError(t, err)
	assert.Equal(t, "#ff8000", c.Hex())

	c, err = ParseColor("0f0")
	assert.NoError(t, err)
	assert.Equal(t, "#00ff00", c.Hex())

	_, err = ParseColor("#12345")
	assert.Error(t, err)
	_, err = ParseColor("zzzzzz")
	assert.Error(t, err)
}
