package audio

import (
	"errors"
	"math"
	"sort"
)

// fakeBackend is a Backend on a manual clock. Callbacks only run from
// advance, never from inside a Backend method.
type fakeBackend struct {
	now     float64
	opens   int
	openErr error
	out     *fakeOutput

	tones   []*fakeTone
	sources []*fakeSource
	timers  []*fakeTimer
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{}
}

type fakeParamEvent struct {
	ramp bool
	v, t float64
}

type fakeParam struct {
	b      *fakeBackend
	value  float64
	events []fakeParamEvent
	sets   int
}

func (p *fakeParam) at(t float64) float64 {
	v, from := p.value, 0.0
	for _, ev := range p.events {
		if ev.t > t {
			if ev.ramp && ev.t > from {
				return v + (ev.v-v)*(t-from)/(ev.t-from)
			}
			return v
		}
		v, from = ev.v, ev.t
	}
	return v
}

func (p *fakeParam) insert(ev fakeParamEvent) {
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].t > ev.t })
	p.events = append(p.events, fakeParamEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = ev
}

func (p *fakeParam) Value() float64 { return p.at(p.b.now) }
func (p *fakeParam) SetValue(v float64) {
	p.value = v
	p.events = nil
	p.sets++
}
func (p *fakeParam) SetValueAtTime(v, t float64) { p.insert(fakeParamEvent{v: v, t: t}) }
func (p *fakeParam) LinearRampToValueAtTime(v, t float64) {
	p.insert(fakeParamEvent{ramp: true, v: v, t: t})
}
func (p *fakeParam) CancelScheduledValues(t float64) {
	kept := p.events[:0]
	for _, ev := range p.events {
		if ev.t < t {
			kept = append(kept, ev)
		}
	}
	p.events = kept
}

type fakeOutput struct {
	gain *fakeParam
}

func (o *fakeOutput) Gain() Param { return o.gain }
func (o *fakeOutput) Waveform(dst []float32) int {
	for i := range dst {
		dst[i] = 0
	}
	return len(dst)
}

type fakeTone struct {
	shape   WaveShape
	freq    float64
	env     *fakeParam
	start   float64
	stopAt  float64
	stops   int
	started bool
	ended   bool
	onEnded func()
	discon  bool
}

func (t *fakeTone) Envelope() Param { return t.env }
func (t *fakeTone) Start(at float64) {
	t.start = at
	t.started = true
}
func (t *fakeTone) Stop(at float64) {
	t.stopAt = at
	t.stops++
}
func (t *fakeTone) OnEnded(f func()) { t.onEnded = f }
func (t *fakeTone) Disconnect()      { t.discon = true }

type fakeBuffer struct {
	duration float64
}

func (b *fakeBuffer) Duration() float64 { return b.duration }

type fakeSource struct {
	buf     *fakeBuffer
	start   float64
	stopAt  float64
	started bool
	ended   bool
	onEnded func()
}

func (s *fakeSource) end() float64 { return math.Min(s.start+s.buf.duration, s.stopAt) }

func (s *fakeSource) Start(at float64) {
	s.start = at
	s.started = true
}
func (s *fakeSource) Stop(at float64)  { s.stopAt = at }
func (s *fakeSource) OnEnded(f func()) { s.onEnded = f }
func (s *fakeSource) Disconnect()      {}

type fakeTimer struct {
	at      float64
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (b *fakeBackend) Open(volume float64) (Output, error) {
	b.opens++
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.out = &fakeOutput{gain: &fakeParam{b: b, value: volume}}
	return b.out, nil
}

func (b *fakeBackend) Now() float64 { return b.now }

func (b *fakeBackend) AfterFunc(delay float64, f func()) Timer {
	t := &fakeTimer{at: b.now + delay, f: f}
	b.timers = append(b.timers, t)
	return t
}

func (b *fakeBackend) NewTone(out Output, shape WaveShape, freq float64) Tone {
	t := &fakeTone{shape: shape, freq: freq, env: &fakeParam{b: b, value: 1}, stopAt: math.Inf(1)}
	b.tones = append(b.tones, t)
	return t
}

// Decode treats data as a duration encoding: every byte is 0.1s of audio.
// Data starting with "bad" fails.
func (b *fakeBackend) Decode(data []byte, done func(Buffer, error)) {
	var (
		buf Buffer
		err error
	)
	if len(data) >= 3 && string(data[:3]) == "bad" {
		err = errors.New("unrecognised format")
	} else {
		buf = &fakeBuffer{duration: float64(len(data)) * 0.1}
	}
	b.AfterFunc(0, func() { done(buf, err) })
}

func (b *fakeBackend) NewSource(out Output, buf Buffer) Source {
	s := &fakeSource{buf: buf.(*fakeBuffer), stopAt: math.Inf(1)}
	b.sources = append(b.sources, s)
	return s
}

// advance moves the clock by d seconds, running every callback that
// becomes due in time order. Ended events run before timers due at the
// same instant.
func (b *fakeBackend) advance(d float64) {
	target := b.now + d
	for {
		at, f := b.next(target)
		if f == nil {
			break
		}
		b.now = at
		f()
	}
	b.now = target
}

const eps = 1e-9

func (b *fakeBackend) next(target float64) (float64, func()) {
	best := math.Inf(1)
	var run func()
	for _, t := range b.tones {
		if t.started && !t.ended && t.stopAt <= target+eps && t.stopAt < best {
			t := t
			best = t.stopAt
			run = func() {
				t.ended = true
				if t.onEnded != nil {
					t.onEnded()
				}
			}
		}
	}
	for _, s := range b.sources {
		if s.started && !s.ended && s.end() <= target+eps && s.end() < best {
			s := s
			best = s.end()
			run = func() {
				s.ended = true
				if s.onEnded != nil {
					s.onEnded()
				}
			}
		}
	}
	for _, t := range b.timers {
		if !t.stopped && !t.fired && t.at <= target+eps && t.at < best-eps {
			t := t
			best = t.at
			run = func() {
				t.fired = true
				t.f()
			}
		}
	}
	return best, run
}

func (b *fakeBackend) pendingTimers() int {
	n := 0
	for _, t := range b.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

func floatNear(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}
