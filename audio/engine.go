package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/decred/slog"
)

// Status is the coarse playback state shown to the user.
type Status int

const (
	StatusIdle Status = iota
	StatusPlaying
)

func (s Status) String() string {
	if s == StatusPlaying {
		return "playing"
	}
	return "ready"
}

// Hooks are optional observers. They run after the engine has released
// its lock, so they may call back into the engine.
type Hooks struct {
	OnStatus func(Status)
	// OnVoice is called with the label of every voice that starts.
	OnVoice func(label string)
	OnError func(error)
}

// Option configures an Engine.
type Option func(*Engine)

func WithConfig(cfg Config) Option {
	return func(e *Engine) { e.cfg = cfg }
}

func WithLogger(log slog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func WithHooks(h Hooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// Engine turns note, chord, melody and pattern requests into enveloped
// voices on a Backend, plays encoded audio buffers, and owns the master
// volume and wave shape. All state is guarded by one mutex; backend
// callbacks re-enter through locked methods.
type Engine struct {
	backend Backend
	cfg     Config
	log     slog.Logger
	hooks   Hooks

	mu        sync.Mutex
	out       Output
	volume    float64
	shape     WaveShape
	status    Status
	voices    map[*Voice]struct{}
	sequences map[*Sequence]struct{}
	playbacks map[*Playback]struct{}
	waiters   []chan struct{}

	// pending observer calls, flushed by unlock
	pending []func()
}

// NewEngine returns an engine on b. The backend output is not opened
// until the first request that needs it.
func NewEngine(b Backend, opts ...Option) *Engine {
	e := &Engine{
		backend:   b,
		cfg:       DefaultConfig,
		log:       slog.Disabled,
		voices:    make(map[*Voice]struct{}),
		sequences: make(map[*Sequence]struct{}),
		playbacks: make(map[*Playback]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.volume = clampVolume(e.cfg.Volume)
	e.shape = e.cfg.WaveShape
	if _, err := ParseWaveShape(string(e.shape)); err != nil {
		e.shape = Sine
	}
	return e
}

func (e *Engine) unlock() {
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

// ensureOpenLocked lazily creates the master output.
func (e *Engine) ensureOpenLocked() error {
	if e.out != nil {
		return nil
	}
	out, err := e.backend.Open(e.volume)
	if err != nil {
		return fmt.Errorf("open audio output: %w", err)
	}
	e.out = out
	e.log.Debugf("Audio output opened (volume %.2f, wave %s)", e.volume, e.shape)
	return nil
}

// reportLocked logs a user-facing error and queues the OnError hook.
func (e *Engine) reportLocked(err error) {
	var derr *DecodeError
	if errors.As(err, &derr) {
		e.log.Errorf("%v", err)
	} else {
		e.log.Warnf("%v", err)
	}
	if h := e.hooks.OnError; h != nil {
		e.pending = append(e.pending, func() { h(err) })
	}
}

func (e *Engine) emitStatusLocked(s Status) {
	if h := e.hooks.OnStatus; h != nil {
		e.pending = append(e.pending, func() { h(s) })
	}
}

// updateLocked recomputes the status after the voice or playback sets
// changed and releases idle waiters.
func (e *Engine) updateLocked() {
	status := StatusIdle
	if len(e.voices) > 0 || e.soundingPlaybacksLocked() > 0 {
		status = StatusPlaying
	}
	if status != e.status {
		e.status = status
		e.emitStatusLocked(status)
	}
	if e.idleLocked() {
		for _, w := range e.waiters {
			close(w)
		}
		e.waiters = nil
	}
}

func (e *Engine) soundingPlaybacksLocked() int {
	n := 0
	for pb := range e.playbacks {
		if pb.source != nil {
			n++
		}
	}
	return n
}

func (e *Engine) idleLocked() bool {
	return len(e.voices) == 0 && len(e.sequences) == 0 && len(e.playbacks) == 0
}

// Initialized reports whether the output has been opened.
func (e *Engine) Initialized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.out != nil
}

// Init opens the output now instead of on first use.
func (e *Engine) Init() error {
	e.mu.Lock()
	defer e.unlock()
	if err := e.ensureOpenLocked(); err != nil {
		e.reportLocked(err)
		return err
	}
	return nil
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Engine) WaveShape() WaveShape {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shape
}

// Now is the backend's audio clock.
func (e *Engine) Now() float64 {
	return e.backend.Now()
}

// ActiveVoices returns the voices currently sounding.
func (e *Engine) ActiveVoices() []*Voice {
	e.mu.Lock()
	defer e.mu.Unlock()
	voices := make([]*Voice, 0, len(e.voices))
	for v := range e.voices {
		voices = append(voices, v)
	}
	sortVoices(voices)
	return voices
}

// Waveform copies the latest mixed samples into dst. It returns 0 before
// the output is opened.
func (e *Engine) Waveform(dst []float32) int {
	e.mu.Lock()
	out := e.out
	e.mu.Unlock()
	if out == nil {
		return 0
	}
	return out.Waveform(dst)
}

// WaitIdle blocks until no voice, sequence or buffer playback is left,
// or ctx is done.
func (e *Engine) WaitIdle(ctx context.Context) error {
	e.mu.Lock()
	if e.idleLocked() {
		e.mu.Unlock()
		return nil
	}
	w := make(chan struct{})
	e.waiters = append(e.waiters, w)
	e.mu.Unlock()

	select {
	case <-w:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func clampVolume(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
