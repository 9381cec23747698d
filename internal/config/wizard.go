package config

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/dooshek/heartbeat/internal/audio"
	"github.com/dooshek/heartbeat/internal/logger"
	"github.com/dooshek/heartbeat/internal/loudness"
	"github.com/fatih/color"
)

const (
	// Ambient noise is allowed this much headroom before it counts as sound.
	calibrationNoiseHeadroom = 1.5
	// The loud phase's level is scaled down so that ordinary loud input
	// reaches full scale rather than only the single loudest peak.
	calibrationPeakFraction = 0.8
	calibrationMinSpan      = 0.02
)

// ErrCalibrationTooQuiet means the loud phase was not louder than the room.
var ErrCalibrationTooQuiet = errors.New("loud sample was not louder than ambient noise")

// Calibration is the result of measuring a microphone.
type Calibration struct {
	AmbientRMS   float64
	LoudRMS      float64
	MinThreshold float64
	MaxThreshold float64
}

// Apply copies the suggested thresholds into cfg.
func (c Calibration) Apply(cfg loudness.Config) loudness.Config {
	cfg.MinThreshold = c.MinThreshold
	cfg.MaxThreshold = c.MaxThreshold
	return cfg
}

// SuggestThresholds turns RMS readings taken in silence and during loud
// input into a min/max threshold pair. Readings are raw RMS; sensitivity is
// folded in so the thresholds work with the current multiplier.
func SuggestThresholds(ambient, loud []float64, sensitivity float64) (Calibration, error) {
	if len(ambient) == 0 || len(loud) == 0 {
		return Calibration{}, loudness.ErrNoInput
	}
	if !(sensitivity > 0) {
		sensitivity = 1
	}

	ambientLevel := percentile(ambient, 0.95)
	loudLevel := percentile(loud, 0.95)

	c := Calibration{AmbientRMS: ambientLevel, LoudRMS: loudLevel}
	minT := ambientLevel * sensitivity * calibrationNoiseHeadroom
	maxT := loudLevel * sensitivity * calibrationPeakFraction

	if maxT > 1 {
		maxT = 1
	}
	if maxT-minT < calibrationMinSpan {
		return c, ErrCalibrationTooQuiet
	}

	c.MinThreshold = round4(minT)
	c.MaxThreshold = round4(maxT)
	return c, nil
}

func percentile(values []float64, p float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	idx := int(math.Ceil(p*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// MeasureRMS samples src once per interval for d and returns each window's RMS.
// Ticks with no input are skipped.
func MeasureRMS(ctx context.Context, src audio.Source, windowSize int, interval, d time.Duration) ([]float64, error) {
	window := make([]float32, windowSize)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	var readings []float64
	for {
		select {
		case <-ctx.Done():
			return readings, ctx.Err()
		case <-deadline.C:
			return readings, nil
		case <-ticker.C:
			n := src.Window(window)
			rms, err := loudness.RMS(window[:n])
			if err != nil {
				continue
			}
			readings = append(readings, rms)
		}
	}
}

// Wizard walks the user through measuring silence and loud input and saves
// the resulting thresholds.
type Wizard struct {
	Store    *Store
	Source   audio.Source
	In       io.Reader
	Out      io.Writer
	Duration time.Duration
}

func (w *Wizard) Run(ctx context.Context) error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	cfg, err := w.Store.LoadOrDefault()
	if err != nil {
		return err
	}

	bold.Fprintln(w.Out, "\n💓 Heartbeat microphone calibration")
	fmt.Fprintln(w.Out, "\nThis measures your room and your microphone so quiet maps to Calm")
	fmt.Fprintln(w.Out, "and a loud voice or clap reaches the top of the scale.")

	if err := w.Source.Start(); err != nil {
		logger.Error("Failed to start capture", err)
		return fmt.Errorf("failed to start capture: %w", err)
	}
	defer w.Source.Stop()

	reader := bufio.NewReader(w.In)
	interval := cfg.Driver.Interval()

	cyan.Fprintf(w.Out, "\nStep 1: stay quiet. Press Enter to start (%s)...", w.Duration)
	if _, err := reader.ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("failed to read input: %w", err)
	}
	ambient, err := MeasureRMS(ctx, w.Source, cfg.Driver.WindowSize, interval, w.Duration)
	if err != nil {
		return err
	}

	cyan.Fprintf(w.Out, "\nStep 2: speak loudly or clap. Press Enter to start (%s)...", w.Duration)
	if _, err := reader.ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("failed to read input: %w", err)
	}
	loud, err := MeasureRMS(ctx, w.Source, cfg.Driver.WindowSize, interval, w.Duration)
	if err != nil {
		return err
	}

	cal, err := SuggestThresholds(ambient, loud, cfg.Loudness.Sensitivity)
	if err != nil {
		red.Fprintf(w.Out, "\nCalibration failed: %v\n", err)
		return err
	}

	yellow.Fprintf(w.Out, "\nAmbient RMS: %.4f   Loud RMS: %.4f\n", cal.AmbientRMS, cal.LoudRMS)
	fmt.Fprintf(w.Out, "Suggested min_threshold: %.4f (was %.4f)\n", cal.MinThreshold, cfg.Loudness.MinThreshold)
	fmt.Fprintf(w.Out, "Suggested max_threshold: %.4f (was %.4f)\n", cal.MaxThreshold, cfg.Loudness.MaxThreshold)

	fmt.Fprint(w.Out, "\nSave these thresholds? [Y/n]: ")
	response, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read input: %w", err)
	}
	response = strings.ToLower(strings.TrimSpace(response))
	if response != "" && response != "y" && response != "yes" {
		fmt.Fprintln(w.Out, "Nothing saved.")
		return nil
	}

	updated := cal.Apply(cfg.Loudness)
	if err := updated.Validate(); err != nil {
		red.Fprintf(w.Out, "Suggested thresholds are invalid: %v\n", err)
		return err
	}
	cfg.Loudness = updated
	if err := w.Store.SaveConfig(cfg); err != nil {
		return err
	}

	green.Fprintf(w.Out, "\n✅ Saved to %s\n", w.Store.Path())
	return nil
}
