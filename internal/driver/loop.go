// Package driver runs the fixed-rate tick that pulls a sample window, feeds
// the meter and hands the level to the presentation sinks.
package driver

import (
	"context"
	"sync"
	"time"

	"github.com/dooshek/heartbeat/internal/logger"
	"github.com/dooshek/heartbeat/internal/loudness"
	"github.com/dooshek/heartbeat/internal/presentation"
)

// WindowSource is the part of audio.Source the loop reads from.
type WindowSource interface {
	Window(dst []float32) int
}

// Config sets the tick rate and window size.
type Config struct {
	TickRate   float64 `yaml:"tick_rate"`   // ticks per second
	WindowSize int     `yaml:"window_size"` // samples per tick
}

func DefaultConfig() Config {
	return Config{TickRate: 60, WindowSize: 128}
}

// Interval is the wall time between ticks.
func (c Config) Interval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / c.TickRate)
}

// Loop owns the meter's tick. Everything it calls runs on the goroutine that
// calls Step or Run.
type Loop struct {
	source WindowSource
	meter  *loudness.Meter
	sinks  presentation.Sinks
	cfg    Config
	window []float32

	started bool
	start   time.Time
	last    time.Time

	mu        sync.Mutex
	observers []func(loudness.Result)
}

func New(source WindowSource, meter *loudness.Meter, sinks presentation.Sinks, cfg Config) *Loop {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultConfig().WindowSize
	}
	return &Loop{
		source: source,
		meter:  meter,
		sinks:  sinks,
		cfg:    cfg,
		window: make([]float32, cfg.WindowSize),
	}
}

// Observe registers fn to receive every tick's result after the sinks ran.
func (l *Loop) Observe(fn func(loudness.Result)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observers = append(l.observers, fn)
}

// Step runs a single tick at wall time now.
func (l *Loop) Step(now time.Time) loudness.Result {
	var dt time.Duration
	if !l.started {
		l.started = true
		l.start = now
		dt = l.cfg.Interval()
	} else {
		dt = now.Sub(l.last)
	}
	l.last = now

	n := 0
	if l.source != nil {
		n = l.source.Window(l.window)
	}
	res := l.meter.Tick(l.window[:n], dt, now.Sub(l.start))

	if res.SpikeFired {
		logger.Debugf("Spike detected at %.2f (smoothed %.2f)", res.NormalizedLevel, res.SmoothedLevel)
	}

	l.sinks.ApplyLoudness(res.SmoothedLevel)
	l.sinks.Advance(dt)

	l.mu.Lock()
	observers := append([]func(loudness.Result){}, l.observers...)
	l.mu.Unlock()
	for _, fn := range observers {
		fn(res)
	}
	return res
}

// Run ticks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.Interval())
	defer ticker.Stop()

	logger.Debugf("Driver loop running at %.0f Hz, window %d", l.cfg.TickRate, l.cfg.WindowSize)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Driver loop stopped")
			return ctx.Err()
		case now := <-ticker.C:
			l.Step(now)
		}
	}
}
