package loudness

import (
	"math"
	"time"
)

// SpikeDetector fires when the instantaneous level jumps well above the
// smoothed baseline, at most once per cooldown.
type SpikeDetector struct {
	multiplier float64
	cooldown   time.Duration
	floor      float64

	fired     bool
	lastSpike time.Duration

	subscribers []subscriber
	nextID      int
}

type subscriber struct {
	id int
	fn func()
}

func NewSpikeDetector(cfg Config) *SpikeDetector {
	d := &SpikeDetector{floor: AbsoluteFloor}
	d.SetConfig(cfg)
	return d
}

func (d *SpikeDetector) SetConfig(cfg Config) {
	cfg = cfg.Normalized()
	d.multiplier = cfg.SpikeMultiplier
	d.cooldown = cfg.SpikeCooldown
}

// Subscribe registers fn to be called synchronously on every spike, in
// subscription order. The returned func removes it.
func (d *SpikeDetector) Subscribe(fn func()) func() {
	d.nextID++
	id := d.nextID
	d.subscribers = append(d.subscribers, subscriber{id: id, fn: fn})
	return func() {
		for i, s := range d.subscribers {
			if s.id == id {
				d.subscribers = append(d.subscribers[:i:i], d.subscribers[i+1:]...)
				return
			}
		}
	}
}

// LastSpike returns the time of the last spike and whether one has fired.
func (d *SpikeDetector) LastSpike() (time.Duration, bool) {
	return d.lastSpike, d.fired
}

// Reset forgets the last spike so the next qualifying tick fires.
func (d *SpikeDetector) Reset() {
	d.fired = false
	d.lastSpike = 0
}

// Check decides whether the current tick is a spike and notifies subscribers
// if it is.
func (d *SpikeDetector) Check(normalized, smoothed float64, now time.Duration) bool {
	if !d.detect(normalized, smoothed, now) {
		return false
	}
	notify(d.listeners())
	return true
}

func (d *SpikeDetector) detect(normalized, smoothed float64, now time.Duration) bool {
	if d.fired && now-d.lastSpike <= d.cooldown {
		return false
	}
	threshold := math.Max(smoothed*d.multiplier, d.floor)
	if !(normalized > threshold) {
		return false
	}
	d.fired = true
	d.lastSpike = now
	return true
}

func (d *SpikeDetector) listeners() []func() {
	fns := make([]func(), len(d.subscribers))
	for i, s := range d.subscribers {
		fns[i] = s.fn
	}
	return fns
}

func notify(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
