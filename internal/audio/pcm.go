package audio

import "encoding/binary"

// DecodeS16LE converts little-endian signed 16-bit mono PCM to floats in
// [-1, 1), reusing dst when it is large enough. A trailing odd byte is ignored.
func DecodeS16LE(dst []float32, pcm []byte) []float32 {
	n := len(pcm) / 2
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for i := 0; i < n; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		dst[i] = float32(s) / 32768.0
	}
	return dst
}
