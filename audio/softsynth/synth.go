// Package softsynth is an audio.Backend that renders the voice graph in
// software. Its clock is the number of rendered samples, so it advances
// only when samples are pulled: in real time by a speaker, or offline by
// Advance and Render.
package softsynth

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/decred/slog"

	"github.com/simukka/sprechstimme-playground/audio"
	"github.com/simukka/sprechstimme-playground/audio/wavfile"
)

// Option configures a Synth.
type Option func(*Synth)

func WithLogger(log slog.Logger) Option {
	return func(s *Synth) { s.log = log }
}

// WithAnalyserSize sets how many mixed samples Waveform keeps.
func WithAnalyserSize(n int) Option {
	return func(s *Synth) {
		if n > 0 {
			s.ringSize = n
		}
	}
}

// Synth mixes tones and buffer sources into a mono float stream.
type Synth struct {
	rate     int
	ringSize int
	log      slog.Logger

	mu      sync.Mutex
	frame   int64
	out     *output
	tones   []*tone
	sources []*source
	timers  []*timer
	seq     uint64
}

var _ audio.Backend = (*Synth)(nil)

func New(sampleRate int, opts ...Option) *Synth {
	s := &Synth{
		rate:     sampleRate,
		ringSize: audio.DefaultConfig.AnalyserSize,
		log:      slog.Disabled,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Synth) SampleRate() int { return s.rate }

func (s *Synth) nowLocked() float64 {
	return float64(s.frame) / float64(s.rate)
}

// frameAt is the first frame at or after t.
func (s *Synth) frameAt(t float64) int64 {
	return int64(math.Ceil(t*float64(s.rate) - 1e-6))
}

func (s *Synth) Now() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowLocked()
}

func (s *Synth) Open(volume float64) (audio.Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.out == nil {
		s.out = &output{
			gain: &param{s: s, value: volume},
			ring: make([]float32, s.ringSize),
		}
	}
	return s.out, nil
}

type timer struct {
	s     *Synth
	at    int64
	seq   uint64
	f     func()
	fired bool
	dead  bool
}

func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.fired || t.dead {
		return false
	}
	t.dead = true
	return true
}

func (s *Synth) AfterFunc(delay float64, f func()) audio.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.afterLocked(delay, f)
}

func (s *Synth) afterLocked(delay float64, f func()) *timer {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	t := &timer{s: s, at: s.frameAt(s.nowLocked() + delay), seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *Synth) NewTone(out audio.Output, shape audio.WaveShape, freq float64) audio.Tone {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &tone{
		s:     s,
		osc:   oscillatorFor(shape),
		inc:   freq / float64(s.rate),
		env:   &param{s: s, value: 1},
		start: -1,
		stop:  math.MaxInt64,
	}
	s.tones = append(s.tones, t)
	return t
}

type buffer struct {
	samples []float32
	rate    int
}

func (b *buffer) Duration() float64 {
	return float64(len(b.samples)) / float64(b.rate)
}

// Decode parses WAV data and resamples it to the synth rate. The result
// is delivered on the next processing pass.
func (s *Synth) Decode(data []byte, done func(audio.Buffer, error)) {
	clip, err := wavfile.Decode(data)
	var buf audio.Buffer
	if err == nil {
		samples := clip.Samples
		if clip.SampleRate != s.rate {
			s.log.Debugf("Resampling %d Hz clip to %d Hz", clip.SampleRate, s.rate)
			samples = wavfile.Resample(samples, clip.SampleRate, s.rate)
		}
		if len(samples) == 0 {
			err = errors.New("empty clip")
		} else {
			buf = &buffer{samples: samples, rate: s.rate}
		}
	}
	s.AfterFunc(0, func() { done(buf, err) })
}

func (s *Synth) NewSource(out audio.Output, buf audio.Buffer) audio.Source {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := buf.(*buffer)
	if !ok {
		b = &buffer{rate: s.rate}
	}
	src := &source{s: s, buf: b, start: -1, stop: math.MaxInt64}
	s.sources = append(s.sources, src)
	return src
}

// Read renders len(dst) samples in real time order, running callbacks as
// they fall due. It never fails.
func (s *Synth) Read(dst []float32) (int, error) {
	s.process(dst)
	return len(dst), nil
}

// Advance renders and discards d seconds.
func (s *Synth) Advance(d float64) {
	s.Render(d)
}

// Render renders d seconds and returns the samples.
func (s *Synth) Render(d float64) []float32 {
	n := int(math.Round(d * float64(s.rate)))
	if n < 0 {
		n = 0
	}
	dst := make([]float32, n)
	s.process(dst)
	return dst
}

// process fills dst, splitting it at every frame where a timer or end
// event falls due. Due callbacks run without the synth lock held.
func (s *Synth) process(dst []float32) {
	for {
		s.mu.Lock()
		due := s.collectDueLocked()
		if len(due) == 0 && len(dst) == 0 {
			s.mu.Unlock()
			return
		}
		n := 0
		if len(due) == 0 {
			n = len(dst)
			if next, ok := s.nextEventLocked(); ok && next-s.frame < int64(n) {
				n = int(next - s.frame)
			}
			s.renderLocked(dst[:n])
		}
		s.mu.Unlock()

		for _, f := range due {
			f()
		}
		dst = dst[n:]
	}
}

// collectDueLocked removes everything due at the current frame and
// returns the callbacks to run: end events first, then timers in the
// order they fall due.
func (s *Synth) collectDueLocked() []func() {
	var due []func()

	tones := s.tones[:0]
	for _, t := range s.tones {
		switch {
		case t.gone:
		case t.start >= 0 && t.stop <= s.frame:
			if t.onEnded != nil {
				due = append(due, t.onEnded)
			}
		default:
			tones = append(tones, t)
			continue
		}
		t.gone = true
	}
	s.tones = tones

	sources := s.sources[:0]
	for _, src := range s.sources {
		switch {
		case src.gone:
		case src.start >= 0 && src.end() <= s.frame:
			if src.onEnded != nil {
				due = append(due, src.onEnded)
			}
		default:
			sources = append(sources, src)
			continue
		}
		src.gone = true
	}
	s.sources = sources

	var fired []*timer
	timers := s.timers[:0]
	for _, t := range s.timers {
		switch {
		case t.dead:
		case t.at <= s.frame:
			t.fired = true
			fired = append(fired, t)
		default:
			timers = append(timers, t)
		}
	}
	s.timers = timers
	sort.Slice(fired, func(i, j int) bool {
		if fired[i].at != fired[j].at {
			return fired[i].at < fired[j].at
		}
		return fired[i].seq < fired[j].seq
	})
	for _, t := range fired {
		due = append(due, t.f)
	}
	return due
}

// nextEventLocked returns the earliest frame at which something falls due.
func (s *Synth) nextEventLocked() (int64, bool) {
	next := int64(math.MaxInt64)
	for _, t := range s.tones {
		if t.start >= 0 && t.stop < next {
			next = t.stop
		}
	}
	for _, src := range s.sources {
		if src.start >= 0 {
			if end := src.end(); end < next {
				next = end
			}
		}
	}
	for _, t := range s.timers {
		if !t.dead && t.at < next {
			next = t.at
		}
	}
	return next, next != math.MaxInt64
}

func (s *Synth) renderLocked(dst []float32) {
	if len(dst) == 0 {
		return
	}
	rate := float64(s.rate)
	for i := range dst {
		frame := s.frame + int64(i)
		t := float64(frame) / rate
		var sum float64
		for _, tn := range s.tones {
			if tn.gone || tn.start < 0 || frame < tn.start {
				continue
			}
			sum += tn.next() * tn.env.valueAt(t)
		}
		for _, src := range s.sources {
			if src.gone || src.start < 0 || frame < src.start {
				continue
			}
			if idx := frame - src.start; idx < int64(len(src.buf.samples)) {
				sum += float64(src.buf.samples[idx])
			}
		}
		if s.out != nil {
			sum *= s.out.gain.valueAt(t)
		}
		v := float32(math.Max(-1, math.Min(1, sum)))
		dst[i] = v
		if s.out != nil {
			s.out.push(v)
		}
	}
	s.frame += int64(len(dst))

	now := s.nowLocked()
	for _, tn := range s.tones {
		tn.env.prune(now)
	}
	if s.out != nil {
		s.out.gain.prune(now)
	}
}

// output is the master gain plus the analysis ring buffer.
type output struct {
	gain *param
	ring []float32
	pos  int
}

func (o *output) Gain() audio.Param { return o.gain }

func (o *output) push(v float32) {
	if len(o.ring) == 0 {
		return
	}
	o.ring[o.pos] = v
	o.pos = (o.pos + 1) % len(o.ring)
}

// Waveform copies the newest samples, oldest first.
func (o *output) Waveform(dst []float32) int {
	o.gain.s.mu.Lock()
	defer o.gain.s.mu.Unlock()
	n := len(dst)
	if n > len(o.ring) {
		n = len(o.ring)
	}
	start := o.pos - n
	for i := 0; i < n; i++ {
		dst[i] = o.ring[(start+i+len(o.ring))%len(o.ring)]
	}
	return n
}
