package wavfile

import (
	"encoding/binary"
	"math"
	"testing"
)

func floatNear(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func sineSamples(n, rate int, freq float64) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return s
}

// TestEncode_Header tests the RIFF header of an encoded file
func TestEncode_Header(t *testing.T) {
	data, err := Encode(sineSamples(100, 8000, 440), 8000)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if len(data) != 44+200 {
		t.Fatalf("Expected 244 bytes, got %d", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		t.Error("Expected RIFF/WAVE header")
	}
	if got := binary.LittleEndian.Uint32(data[24:28]); got != 8000 {
		t.Errorf("Expected sample rate 8000, got %d", got)
	}
	if got := binary.LittleEndian.Uint16(data[34:36]); got != 16 {
		t.Errorf("Expected 16 bit, got %d", got)
	}
}

// TestDecode_RoundTrip tests that encoded samples decode within 16-bit precision
func TestDecode_RoundTrip(t *testing.T) {
	in := sineSamples(2205, 22050, 330)
	in = append(in, 1.5, -1.5) // clipped
	data, err := Encode(in, 22050)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	clip, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode returned error: %v", err)
	}
	if clip.SampleRate != 22050 || clip.Channels != 1 || len(clip.Samples) != len(in) {
		t.Fatalf("Unexpected clip %d Hz, %d channels, %d samples", clip.SampleRate, clip.Channels, len(clip.Samples))
	}
	if !floatNear(clip.Duration(), float64(len(in))/22050, 1e-9) {
		t.Errorf("Unexpected duration %f", clip.Duration())
	}
	for i := 0; i < 2205; i++ {
		if !floatNear(float64(clip.Samples[i]), float64(in[i]), 1.0/16384) {
			t.Fatalf("Sample %d = %f, want %f", i, clip.Samples[i], in[i])
		}
	}
	if !floatNear(float64(clip.Samples[2205]), 1, 1e-3) || !floatNear(float64(clip.Samples[2206]), -1, 1e-3) {
		t.Error("Expected out of range samples to be clipped")
	}
}

// TestDecode_Invalid tests garbage input
func TestDecode_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello"), make([]byte, 64)} {
		if _, err := Decode(data); err == nil {
			t.Errorf("Expected error for %q", data)
		}
	}
}

// TestResample tests length and preserved DC level
func TestResample(t *testing.T) {
	src := make([]float32, 1000)
	for i := range src {
		src[i] = 0.25
	}
	out := Resample(src, 48000, 44100)
	if len(out) != 919 {
		t.Fatalf("Expected 919 samples, got %d", len(out))
	}
	for i := 10; i < len(out)-10; i++ {
		if !floatNear(float64(out[i]), 0.25, 1e-3) {
			t.Fatalf("Sample %d = %f, want 0.25", i, out[i])
		}
	}
	same := Resample(src, 44100, 44100)
	if len(same) != len(src) || &same[0] == &src[0] {
		t.Error("Expected a copy at equal rates")
	}
}
