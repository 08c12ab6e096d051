// Package wavfile reads and writes the mono PCM WAV data exchanged with
// the playback bridge.
package wavfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// BitDepth of encoded files.
const BitDepth = 16

var ErrInvalidFile = errors.New("not a valid WAV file")

// Clip is decoded audio mixed down to one channel.
type Clip struct {
	Samples    []float32
	SampleRate int
	// Channels is the channel count of the source file.
	Channels int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Decode parses a PCM WAV file. Multi-channel files are averaged to mono.
func Decode(data []byte) (*Clip, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrInvalidFile
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm: %w", err)
	}
	bitDepth := int(dec.BitDepth)
	channels := buf.Format.NumChannels
	if bitDepth == 0 || channels == 0 || buf.Format.SampleRate == 0 {
		return nil, fmt.Errorf("%w: %d bit, %d channels, %d Hz", ErrInvalidFile, bitDepth, channels, buf.Format.SampleRate)
	}
	frames := len(buf.Data) / channels
	if frames == 0 {
		return nil, fmt.Errorf("%w: no audio frames", ErrInvalidFile)
	}

	// 8 bit WAV is unsigned; wider depths are signed.
	scale := math.Pow(2, float64(bitDepth-1))
	offset := 0.0
	if bitDepth == 8 {
		offset = 128
	}
	clip := &Clip{
		Samples:    make([]float32, frames),
		SampleRate: buf.Format.SampleRate,
		Channels:   channels,
	}
	for i := 0; i < frames; i++ {
		sum := 0.0
		for c := 0; c < channels; c++ {
			sum += (float64(buf.Data[i*channels+c]) - offset) / scale
		}
		clip.Samples[i] = float32(sum / float64(channels))
	}
	return clip, nil
}

// Encode writes mono float samples as a 16-bit PCM WAV file. Samples are
// clipped to [-1, 1].
func Encode(samples []float32, sampleRate int) ([]byte, error) {
	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, BitDepth, 1, 1)
	intBuf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: BitDepth,
	}
	for i, s := range samples {
		v := math.Max(-1, math.Min(1, float64(s)))
		intBuf.Data[i] = int(math.Round(v * 32767))
	}
	if err := enc.Write(intBuf); err != nil {
		return nil, fmt.Errorf("write pcm: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finish wav: %w", err)
	}
	return ws.buf, nil
}

// writeSeeker is an in-memory io.WriteSeeker; the encoder seeks back to
// patch the header sizes on Close.
type writeSeeker struct {
	buf []byte
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	if end := w.pos + len(p); end > len(w.buf) {
		w.buf = append(w.buf, make([]byte, end-len(w.buf))...)
	}
	n := copy(w.buf[w.pos:], p)
	w.pos += n
	return n, nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = int64(w.pos) + offset
	case io.SeekEnd:
		pos = int64(len(w.buf)) + offset
	default:
		return 0, errors.New("invalid whence")
	}
	if pos < 0 {
		return 0, errors.New("negative position")
	}
	w.pos = int(pos)
	return pos, nil
}
