package loudness

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMeter(t *testing.T) *Meter {
	t.Helper()
	m, err := NewMeter(DefaultConfig())
	require.NoError(t, err)
	return m
}

func TestNewMeterRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxThreshold = cfg.MinThreshold

	m, err := NewMeter(cfg)
	assert.Nil(t, m)
	var cfgErr *ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestMeterTickScenario(t *testing.T) {
	m := newTestMeter(t)

	res := m.Tick(constantWindow(128, 0.5), frame, frame)
	assert.InDelta(t, 0.5, res.RawRMS, 1e-6)
	assert.Equal(t, 1.0, res.NormalizedLevel)
	assert.Greater(t, res.SmoothedLevel, 0.0)
	assert.Less(t, res.SmoothedLevel, 1.0)
}

func TestMeterSilenceThenClap(t *testing.T) {
	m := newTestMeter(t)
	spikes := 0
	m.Subscribe(func() { spikes++ })

	now := time.Duration(0)
	silence := make([]float32, 128)
	for i := 0; i < 30; i++ {
		now += frame
		res := m.Tick(silence, frame, now)
		assert.False(t, res.SpikeFired)
	}

	now += frame
	res := m.Tick(constantWindow(128, 0.4), frame, now)
	assert.True(t, res.SpikeFired)
	assert.Equal(t, 1, spikes)
}

func TestMeterSpikeSuppressedWithinCooldown(t *testing.T) {
	m := newTestMeter(t)
	spikes := 0
	m.Subscribe(func() { spikes++ })

	loud := constantWindow(128, 0.5)
	first := m.Tick(loud, frame, time.Second)
	// dt of zero keeps the baseline low so the second window still qualifies
	// on level alone.
	second := m.Tick(loud, 0, time.Second+200*time.Millisecond)

	assert.True(t, first.SpikeFired)
	assert.False(t, second.SpikeFired)
	assert.Equal(t, 1, spikes)

	third := m.Tick(loud, 0, time.Second+500*time.Millisecond)
	assert.True(t, third.SpikeFired)
	assert.Equal(t, 2, spikes)
}

func TestMeterReset(t *testing.T) {
	m := newTestMeter(t)
	loud := constantWindow(128, 0.5)
	m.Tick(loud, frame, time.Second)
	require.Greater(t, m.State().SmoothedLevel, 0.0)

	m.Reset()
	assert.Equal(t, State{}, m.State())
	assert.True(t, m.Tick(loud, 0, time.Second+time.Millisecond).SpikeFired)
}

func TestMeterEmptyWindowIsSilence(t *testing.T) {
	m := newTestMeter(t)
	res := m.Tick(nil, frame, frame)
	assert.Equal(t, Result{}, res)
}

func TestMeterConfigureKeepsPreviousOnError(t *testing.T) {
	m := newTestMeter(t)

	bad := DefaultConfig()
	bad.Sensitivity = -1
	err := m.Configure(bad)
	var cfgErr *ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, DefaultConfig(), m.Config())

	good := DefaultConfig()
	good.Sensitivity = 4
	good.SpikeCooldown = -time.Second
	require.NoError(t, m.Configure(good))
	assert.Equal(t, 4.0, m.Config().Sensitivity)
	assert.Equal(t, time.Duration(0), m.Config().SpikeCooldown)
}

func TestMeterSubscriberCanReadState(t *testing.T) {
	m := newTestMeter(t)
	var seen State
	m.Subscribe(func() { seen = m.State() })

	m.Tick(constantWindow(128, 0.5), frame, time.Second)
	assert.Equal(t, 1.0, seen.NormalizedLevel)
}

func TestMeterUnsubscribe(t *testing.T) {
	m := newTestMeter(t)
	spikes := 0
	unsubscribe := m.Subscribe(func() { spikes++ })
	unsubscribe()

	m.Tick(constantWindow(128, 0.5), frame, time.Second)
	assert.Equal(t, 0, spikes)
}

func TestMeterLastSpike(t *testing.T) {
	m := newTestMeter(t)
	_, ok := m.LastSpike()
	assert.False(t, ok)

	var at time.Duration
	m.Subscribe(func() { at, _ = m.LastSpike() })
	m.Tick(constantWindow(128, 0.5), frame, 2*time.Second)

	last, ok := m.LastSpike()
	assert.True(t, ok)
	assert.Equal(t, 2*time.Second, last)
	assert.Equal(t, 2*time.Second, at)
}
