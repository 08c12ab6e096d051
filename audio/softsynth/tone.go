package softsynth

import (
	"math"

	"github.com/simukka/sprechstimme-playground/audio"
)

type oscillator func(phase float64) float64

func oscillatorFor(shape audio.WaveShape) oscillator {
	switch shape {
	case audio.Square:
		return func(p float64) float64 {
			if p < 0.5 {
				return 1
			}
			return -1
		}
	case audio.Sawtooth:
		return func(p float64) float64 { return 2*p - 1 }
	case audio.Triangle:
		return func(p float64) float64 { return 1 - 4*math.Abs(p-0.5) }
	default:
		return func(p float64) float64 { return math.Sin(2 * math.Pi * p) }
	}
}

// tone is an oscillator with its envelope gain. start and stop are
// frames; start is -1 until Start is called.
type tone struct {
	s       *Synth
	osc     oscillator
	phase   float64
	inc     float64
	env     *param
	start   int64
	stop    int64
	onEnded func()
	gone    bool
}

func (t *tone) next() float64 {
	v := t.osc(t.phase)
	t.phase += t.inc
	t.phase -= math.Floor(t.phase)
	return v
}

func (t *tone) Envelope() audio.Param { return t.env }

func (t *tone) Start(at float64) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.start >= 0 {
		return
	}
	t.start = t.s.frameAt(at)
	if t.start < t.s.frame {
		t.start = t.s.frame
	}
}

// Stop moves the stop frame. A later call replaces an earlier one.
func (t *tone) Stop(at float64) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.stop = t.s.frameAt(at)
}

func (t *tone) OnEnded(f func()) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.onEnded = f
}

func (t *tone) Disconnect() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	t.gone = true
}

type source struct {
	s       *Synth
	buf     *buffer
	start   int64
	stop    int64
	onEnded func()
	gone    bool
}

func (src *source) end() int64 {
	end := src.start + int64(len(src.buf.samples))
	if src.stop < end {
		return src.stop
	}
	return end
}

func (src *source) Start(at float64) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()
	if src.start >= 0 {
		return
	}
	src.start = src.s.frameAt(at)
	if src.start < src.s.frame {
		src.start = src.s.frame
	}
}

func (src *source) Stop(at float64) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()
	src.stop = src.s.frameAt(at)
}

func (src *source) OnEnded(f func()) {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()
	src.onEnded = f
}

func (src *source) Disconnect() {
	src.s.mu.Lock()
	defer src.s.mu.Unlock()
	src.gone = true
}
