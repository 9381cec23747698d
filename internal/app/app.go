// Package app assembles the capture source, meter, presentation sinks, mode
// manager and D-Bus service into one running daemon.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/dooshek/heartbeat/internal/audio"
	"github.com/dooshek/heartbeat/internal/dbus"
	"github.com/dooshek/heartbeat/internal/driver"
	"github.com/dooshek/heartbeat/internal/logger"
	"github.com/dooshek/heartbeat/internal/loudness"
	"github.com/dooshek/heartbeat/internal/mode"
	"github.com/dooshek/heartbeat/internal/notification"
	"github.com/dooshek/heartbeat/internal/presentation"
	"github.com/dooshek/heartbeat/internal/types"
)

// App owns every component of a running meter.
type App struct {
	Config   *types.Config
	Source   audio.Source
	Meter    *loudness.Meter
	Heart    *presentation.HeartController
	Waveform *presentation.Waveform
	Modes    *mode.Manager
	Layout   mode.Layout
	Loop     *driver.Loop
	DBus     *dbus.Server // nil when disabled

	notifier notification.Notifier
}

// New builds the component graph without starting anything.
func New(cfg *types.Config, source audio.Source, notifier notification.Notifier) (*App, error) {
	if notifier == nil {
		notifier = notification.NewSilent()
	}

	meter, err := loudness.NewMeter(cfg.Loudness)
	if err != nil {
		return nil, err
	}

	a := &App{
		Config:   cfg,
		Source:   source,
		Meter:    meter,
		Heart:    presentation.NewHeartController(cfg.Heart, cfg.Bands),
		Waveform: presentation.NewWaveform(cfg.Waveform),
		notifier: notifier,
	}

	a.Layout = mode.Layout{
		ActivateButton: mode.NewElement("activate-button", true),
		ExitButton:     mode.NewElement("exit-button", false),
		Overlay:        mode.NewElement("biofeedback-overlay", false),
		Modules: []mode.Toggleable{
			mode.NewElement("waveform", true),
			mode.NewElement("controls", true),
		},
	}
	a.Modes = mode.NewManager(a.Layout, notifier)

	sinks := presentation.Sinks{a.Heart, a.Waveform}
	if cfg.DBus.Enabled {
		a.DBus = dbus.NewServer(cfg.GetDBusConfig(), a.Meter, a.Heart, a.Modes)
		sinks = append(sinks, a.DBus)
	}

	a.Loop = driver.New(source, meter, sinks, cfg.Driver)
	// per-tick readings only when someone asked for them
	if logger.GetCurrentLevel() == logger.LevelDebug {
		a.Loop.Observe(func(res loudness.Result) {
			logger.Loudness(res.RawRMS, res.NormalizedLevel, res.SmoothedLevel)
		})
	}
	a.Heart.OnBandChange(func(prev, next presentation.Band) {
		logger.Debugf("Band changed: %s -> %s", prev.Name, next.Name)
	})
	return a, nil
}

// Start opens the input and the bus. A missing microphone or bus is logged
// and the app keeps running: silence is still a valid signal.
func (a *App) Start() error {
	if a.Source != nil {
		if err := a.Source.Start(); err != nil {
			if !errors.Is(err, audio.ErrNoDevice) {
				return fmt.Errorf("failed to start audio input: %w", err)
			}
			logger.Warn("No microphone found, the meter will show silence")
			if nerr := a.notifier.NotifyNoMicrophone(); nerr != nil {
				logger.Warnf("Could not send notification: %v", nerr)
			}
		}
	}

	if a.DBus != nil {
		if err := a.DBus.Start(); err != nil {
			logger.Warnf("D-Bus service unavailable: %v", err)
		}
	}
	return nil
}

// Run starts the app and ticks until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(); err != nil {
		return err
	}
	defer a.Stop()

	logger.Infof("💓 Listening at %d Hz", a.sampleRate())
	if err := a.Loop.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// Stop closes the input and the bus.
func (a *App) Stop() {
	if a.Source != nil {
		if err := a.Source.Stop(); err != nil {
			logger.Warnf("Failed to stop audio input: %v", err)
		}
	}
	if a.DBus != nil {
		a.DBus.Stop()
	}
}

func (a *App) sampleRate() int {
	if a.Source == nil {
		return 0
	}
	return a.Source.SampleRate()
}
