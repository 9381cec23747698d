package config

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestThresholds(t *testing.T) {
	ambient := []float64{0.004, 0.005, 0.006, 0.005, 0.01}
	loud := []float64{0.2, 0.3, 0.35, 0.4, 0.25}

	cal, err := SuggestThresholds(ambient, loud, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.01, cal.AmbientRMS)
	assert.Equal(t, 0.4, cal.LoudRMS)
	assert.InDelta(t, 0.015, cal.MinThreshold, 1e-9)
	assert.InDelta(t, 0.32, cal.MaxThreshold, 1e-9)
}

func TestSuggestThresholdsSensitivityAndCap(t *testing.T) {
	cal, err := SuggestThresholds([]float64{0.01}, []float64{0.9}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 0.03, cal.MinThreshold, 1e-9)
	assert.Equal(t, 1.0, cal.MaxThreshold)
}

func TestSuggestThresholdsFailures(t *testing.T) {
	_, err := SuggestThresholds(nil, []float64{0.5}, 1)
	assert.Error(t, err)

	_, err = SuggestThresholds([]float64{0.1}, []float64{0.1}, 1)
	assert.ErrorIs(t, err, ErrCalibrationTooQuiet)
}

type levelSource struct {
	mu        sync.Mutex
	amplitude float32
}

func (s *levelSource) set(a float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.amplitude = a
}

func (s *levelSource) Start() error    { return nil }
func (s *levelSource) Stop() error     { return nil }
func (s *levelSource) SampleRate() int { return 44100 }
func (s *levelSource) Window(dst []float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range dst {
		dst[i] = s.amplitude
	}
	return len(dst)
}

// steppedReader hands out one line per Read and runs the matching hook first.
type steppedReader struct {
	lines []string
	hooks []func()
	i     int
}

func (r *steppedReader) Read(p []byte) (int, error) {
	if r.i >= len(r.lines) {
		return 0, io.EOF
	}
	if r.i < len(r.hooks) && r.hooks[r.i] != nil {
		r.hooks[r.i]()
	}
	n := copy(p, r.lines[r.i])
	r.i++
	return n, nil
}

func TestWizardRunSavesThresholds(t *testing.T) {
	store := newTestStore(t)
	src := &levelSource{}
	in := &steppedReader{
		lines: []string{"\n", "\n", "y\n"},
		hooks: []func(){
			func() { src.set(0.01) },
			func() { src.set(0.4) },
		},
	}
	var out bytes.Buffer

	w := &Wizard{Store: store, Source: src, In: in, Out: &out, Duration: 100 * time.Millisecond}
	require.NoError(t, w.Run(context.Background()))

	cfg, err := store.LoadConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.InDelta(t, 0.015, cfg.Loudness.MinThreshold, 1e-4)
	assert.InDelta(t, 0.32, cfg.Loudness.MaxThreshold, 1e-4)
	assert.Contains(t, out.String(), "Saved to")
}

func TestWizardRunDeclined(t *testing.T) {
	store := newTestStore(t)
	src := &levelSource{}
	in := &steppedReader{
		lines: []string{"\n", "\n", "n\n"},
		hooks: []func(){
			func() { src.set(0.01) },
			func() { src.set(0.4) },
		},
	}
	var out bytes.Buffer

	w := &Wizard{Store: store, Source: src, In: in, Out: &out, Duration: 100 * time.Millisecond}
	require.NoError(t, w.Run(context.Background()))

	cfg, err := store.LoadConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Nothing saved.")
}
