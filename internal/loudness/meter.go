package loudness

import (
	"fmt"
	"sync"
	"time"
)

// Result is what one tick produces.
type Result struct {
	RawRMS          float64
	NormalizedLevel float64
	SmoothedLevel   float64
	SpikeFired      bool
}

// Meter couples the estimator and the spike detector behind a single tick
// call. Tick must be driven from one goroutine; Configure, Config and State
// may be called from others.
type Meter struct {
	mu        sync.Mutex
	cfg       Config
	estimator *Estimator
	detector  *SpikeDetector
}

func NewMeter(cfg Config) (*Meter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create meter: %w", err)
	}
	cfg = cfg.Normalized()
	return &Meter{
		cfg:       cfg,
		estimator: NewEstimator(cfg),
		detector:  NewSpikeDetector(cfg),
	}, nil
}

// Tick runs one estimator step followed by spike detection. Spike
// subscribers run before Tick returns.
func (m *Meter) Tick(window []float32, dt, now time.Duration) Result {
	var listeners []func()
	m.mu.Lock()
	st := m.estimator.Update(window, dt)
	fired := m.detector.detect(st.NormalizedLevel, st.SmoothedLevel, now)
	if fired {
		listeners = m.detector.listeners()
	}
	m.mu.Unlock()

	notify(listeners)

	return Result{
		RawRMS:          st.RawRMS,
		NormalizedLevel: st.NormalizedLevel,
		SmoothedLevel:   st.SmoothedLevel,
		SpikeFired:      fired,
	}
}

// Configure swaps in cfg if it validates. On error the previous
// configuration is kept.
func (m *Meter) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cfg = cfg.Normalized()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
	m.estimator.SetConfig(cfg)
	m.detector.SetConfig(cfg)
	return nil
}

func (m *Meter) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg
}

func (m *Meter) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.estimator.State()
}

// Subscribe registers a spike callback. Callbacks run on the ticking
// goroutine, in subscription order, before Tick returns.
func (m *Meter) Subscribe(fn func()) func() {
	m.mu.Lock()
	unsubscribe := m.detector.Subscribe(fn)
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		unsubscribe()
	}
}

// Reset clears the smoothed level and the spike cooldown.
func (m *Meter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.estimator.Reset()
	m.detector.Reset()
}

// LastSpike is the tick time of the most recent spike.
func (m *Meter) LastSpike() (time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.detector.LastSpike()
}
