// Package speaker pulls samples from a software synth and sends them to
// the sound card. Build with -tags headless to pace the synth with a
// ticker instead, e.g. on machines without audio hardware.
package speaker

import (
	"encoding/binary"
	"math"
)

// Source is a mono float32 sample stream, such as *softsynth.Synth.
type Source interface {
	Read(dst []float32) (int, error)
	SampleRate() int
}

// encode writes samples as little-endian float32 into p.
func encode(p []byte, samples []float32) {
	for i, v := range samples {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}
}
