package audio

import (
	"fmt"
	"strings"
)

// WaveShape names an oscillator waveform. The values match the Web Audio
// OscillatorNode types.
type WaveShape string

const (
	Sine     WaveShape = "sine"
	Square   WaveShape = "square"
	Sawtooth WaveShape = "sawtooth"
	Triangle WaveShape = "triangle"
)

// WaveShapes lists the supported shapes in menu order.
func WaveShapes() []WaveShape {
	return []WaveShape{Sine, Square, Sawtooth, Triangle}
}

// ParseWaveShape validates a shape name, ignoring case.
func ParseWaveShape(s string) (WaveShape, error) {
	ws := WaveShape(strings.ToLower(strings.TrimSpace(s)))
	switch ws {
	case Sine, Square, Sawtooth, Triangle:
		return ws, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownWaveShape, s)
}

func (w WaveShape) String() string {
	return string(w)
}

// Next returns the shape after w in menu order, wrapping around.
func (w WaveShape) Next() WaveShape {
	shapes := WaveShapes()
	for i, s := range shapes {
		if s == w {
			return shapes[(i+1)%len(shapes)]
		}
	}
	return Sine
}
