package audio

import (
	"fmt"
	"os"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// WAVSource replays a decoded WAV file in real time. The window it returns
// is whatever a microphone would have heard at the current playback position.
type WAVSource struct {
	samples    []float32
	sampleRate int
	loop       bool
	now        func() time.Time

	mu      sync.Mutex
	started time.Time
	running bool
}

// NewWAVSource decodes path and mixes it down to mono.
func NewWAVSource(path string, loop bool) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav file: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid wav buffer: %s", path)
	}

	bitDepth := int(dec.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	return &WAVSource{
		samples:    mixDown(buf, bitDepth),
		sampleRate: buf.Format.SampleRate,
		loop:       loop,
		now:        time.Now,
	}, nil
}

func mixDown(buf *goaudio.IntBuffer, bitDepth int) []float32 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << uint(bitDepth-1))
	ch := buf.Format.NumChannels
	frames := len(buf.Data) / ch
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < ch; c++ {
			sum += float64(buf.Data[i*ch+c])
		}
		out[i] = float32(sum / float64(ch) / scale)
	}
	return out
}

func (w *WAVSource) SampleRate() int {
	return w.sampleRate
}

// Duration is the length of the file.
func (w *WAVSource) Duration() time.Duration {
	if w.sampleRate == 0 {
		return 0
	}
	return time.Duration(len(w.samples)) * time.Second / time.Duration(w.sampleRate)
}

func (w *WAVSource) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = w.now()
	w.running = true
	return nil
}

func (w *WAVSource) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.running = false
	return nil
}

// Window copies the samples leading up to the playback position. It returns
// 0 before Start and after the end of a non-looping file.
func (w *WAVSource) Window(dst []float32) int {
	w.mu.Lock()
	running, started := w.running, w.started
	w.mu.Unlock()

	if !running || len(w.samples) == 0 {
		return 0
	}

	pos := samplesIn(w.now().Sub(started), w.sampleRate)
	if pos > len(w.samples) {
		if !w.loop {
			return 0
		}
		pos %= len(w.samples)
	}

	n := len(dst)
	if n > pos && !w.loop {
		n = pos
	}
	size := len(w.samples)
	for i := 0; i < n; i++ {
		// a looping file shorter than dst repeats inside the window
		idx := ((pos-n+i)%size + size) % size
		dst[i] = w.samples[idx]
	}
	return n
}

// samplesIn converts elapsed time to a sample count without float rounding.
func samplesIn(d time.Duration, rate int) int {
	if d <= 0 {
		return 0
	}
	r := time.Duration(rate)
	return int((d/time.Second)*r + (d%time.Second)*r/time.Second)
}
