package audio

import "sync"

// Ring holds the most recent samples written by a single producer. Readers
// copy out a snapshot under the lock, so a window is never torn by a
// concurrent write.
type Ring struct {
	mu      sync.Mutex
	buf     []float32
	pos     int
	written int
}

func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	return &Ring{buf: make([]float32, capacity)}
}

func (r *Ring) Capacity() int {
	return len(r.buf)
}

// Write appends samples, overwriting the oldest ones once full.
func (r *Ring) Write(samples []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(samples) >= len(r.buf) {
		copy(r.buf, samples[len(samples)-len(r.buf):])
		r.pos = 0
		r.written += len(samples)
		return
	}
	n := copy(r.buf[r.pos:], samples)
	if n < len(samples) {
		copy(r.buf, samples[n:])
	}
	r.pos = (r.pos + len(samples)) % len(r.buf)
	r.written += len(samples)
}

// Window copies the most recent samples into dst, oldest first, and returns
// how many were copied. Fewer than len(dst) are returned until enough audio
// has been written.
func (r *Ring) Window(dst []float32) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(dst)
	if n > len(r.buf) {
		n = len(r.buf)
	}
	if n > r.written {
		n = r.written
	}
	start := r.pos - n
	if start < 0 {
		start += len(r.buf)
	}
	copied := copy(dst[:n], r.buf[start:])
	if copied < n {
		copy(dst[copied:n], r.buf)
	}
	return n
}

// Reset drops all buffered audio.
func (r *Ring) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pos = 0
	r.written = 0
	for i := range r.buf {
		r.buf[i] = 0
	}
}
