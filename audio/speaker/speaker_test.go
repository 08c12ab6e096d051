package speaker

import (
	"encoding/binary"
	"math"
	"testing"
)

// TestEncode tests the float32 little-endian layout oto expects
func TestEncode(t *testing.T) {
	samples := []float32{0, 0.5, -1}
	p := make([]byte, 12)
	encode(p, samples)
	for i, want := range samples {
		got := math.Float32frombits(binary.LittleEndian.Uint32(p[4*i:]))
		if got != want {
			t.Errorf("Sample %d = %f, want %f", i, got, want)
		}
	}
}
