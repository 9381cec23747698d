package presentation

import "time"

// Sink consumes the smoothed loudness level once per tick.
type Sink interface {
	ApplyLoudness(level float64)
}

// Animator is implemented by sinks that run their own per-tick transition.
type Animator interface {
	Advance(dt time.Duration)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(level float64)

func (f SinkFunc) ApplyLoudness(level float64) { f(level) }

// Sinks fans a level out to several sinks in order.
type Sinks []Sink

func (s Sinks) ApplyLoudness(level float64) {
	for _, sink := range s {
		sink.ApplyLoudness(level)
	}
}

// Advance forwards dt to every sink that animates.
func (s Sinks) Advance(dt time.Duration) {
	for _, sink := range s {
		if a, ok := sink.(Animator); ok {
			a.Advance(dt)
		}
	}
}
