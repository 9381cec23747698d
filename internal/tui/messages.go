package tui

import (
	"github.com/dooshek/heartbeat/internal/loudness"
	"github.com/dooshek/heartbeat/internal/presentation"
)

// LevelMsg carries one tick's meter result and the presentation state it produced
type LevelMsg struct {
	Result    loudness.Result
	Heart     presentation.HeartState
	Bars      []float64 // current bar heights
	MaxHeight float64   // height of a bar at full loudness
}

// SpikeMsg indicates the meter detected a spike
type SpikeMsg struct{}

// ModeMsg indicates biofeedback mode was switched on or off
type ModeMsg struct {
	Active bool
}
