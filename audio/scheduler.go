package audio

import (
	"errors"
	"fmt"
	"math"
)

// Sequence is a submitted melody or pattern. Every step's timer is armed
// at submission, relative to that instant, so steps do not drift. Cancel
// drops the steps that have not fired yet.
type Sequence struct {
	engine  *Engine
	tempo   float64
	offsets []float64
	total   float64
	timers  []Timer
	left    int
	done    chan struct{}
	closed  bool
	cancels bool
}

// Offsets returns the start offset of every step in seconds.
func (s *Sequence) Offsets() []float64 {
	return append([]float64(nil), s.offsets...)
}

// Tempo is the tempo the pattern was submitted with. It is informational;
// durations are always seconds.
func (s *Sequence) Tempo() float64 { return s.tempo }

// Duration is the sum of all step durations.
func (s *Sequence) Duration() float64 { return s.total }

// Done is closed once every step has been dispatched or the sequence was
// cancelled. Voices started by the last steps may still be sounding.
func (s *Sequence) Done() <-chan struct{} { return s.done }

// Cancelled reports whether the sequence was cut short.
func (s *Sequence) Cancelled() bool {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return s.cancels
}

// Cancel stops the steps that have not started. Voices already sounding
// are left alone.
func (s *Sequence) Cancel() {
	e := s.engine
	e.mu.Lock()
	defer e.unlock()
	if s.cancelLocked() {
		e.updateLocked()
	}
}

func (s *Sequence) cancelLocked() bool {
	if s.closed {
		return false
	}
	for _, t := range s.timers {
		t.Stop()
	}
	s.cancels = true
	s.finishLocked()
	return true
}

func (s *Sequence) finishLocked() {
	s.closed = true
	close(s.done)
	delete(s.engine.sequences, s)
}

// PlayNote starts one note now at full peak.
func (e *Engine) PlayNote(name string, duration float64) (*Voice, error) {
	e.mu.Lock()
	defer e.unlock()
	v, err := e.playNoteLocked(name, duration, e.shape)
	if err != nil {
		e.reportLocked(err)
	}
	return v, err
}

func (e *Engine) playNoteLocked(name string, duration float64, shape WaveShape) (*Voice, error) {
	if !validDuration(duration) {
		return nil, fmt.Errorf("note %s: %w", name, ErrInvalidDuration)
	}
	freq, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return e.startVoiceLocked(name, freq, duration, e.cfg.NotePeak, shape)
}

// PlayChord starts every resolvable member now at the chord peak. Members
// that cannot be resolved are reported one by one and skipped; the rest
// of the chord still plays.
func (e *Engine) PlayChord(names []string, duration float64) ([]*Voice, error) {
	e.mu.Lock()
	defer e.unlock()
	return e.playChordLocked(names, duration, e.shape)
}

func (e *Engine) playChordLocked(names []string, duration float64, shape WaveShape) ([]*Voice, error) {
	if !validDuration(duration) {
		err := fmt.Errorf("chord %v: %w", names, ErrInvalidDuration)
		e.reportLocked(err)
		return nil, err
	}
	var (
		voices []*Voice
		errs   []error
	)
	for _, name := range names {
		freq, err := Lookup(name)
		if err == nil {
			var v *Voice
			v, err = e.startVoiceLocked(name, freq, duration, e.cfg.ChordPeak, shape)
			if err == nil {
				voices = append(voices, v)
				continue
			}
		}
		e.reportLocked(err)
		errs = append(errs, err)
	}
	return voices, errors.Join(errs...)
}

// PlayMelody plays names one after another. A length mismatch or an
// invalid duration rejects the whole melody with a single error.
func (e *Engine) PlayMelody(names []string, durations []float64) (*Sequence, error) {
	e.mu.Lock()
	defer e.unlock()
	if len(names) != len(durations) {
		err := fmt.Errorf("%w: %d notes, %d durations", ErrLengthMismatch, len(names), len(durations))
		e.reportLocked(err)
		return nil, err
	}
	events := make([]Event, len(names))
	for i, name := range names {
		events[i] = Note(name, durations[i])
	}
	return e.scheduleLocked(events, 0)
}

// PlayPattern plays events one after another; chord events play
// chord-style. The tempo must be positive but does not scale durations.
func (e *Engine) PlayPattern(events []Event, tempo float64) (*Sequence, error) {
	e.mu.Lock()
	defer e.unlock()
	if !(tempo > 0) || math.IsInf(tempo, 0) {
		err := fmt.Errorf("%w: %v", ErrInvalidTempo, tempo)
		e.reportLocked(err)
		return nil, err
	}
	return e.scheduleLocked(events, tempo)
}

func (e *Engine) scheduleLocked(events []Event, tempo float64) (*Sequence, error) {
	for i, ev := range events {
		if !validDuration(ev.Duration) {
			err := fmt.Errorf("step %d (%v): %w", i+1, ev, ErrInvalidDuration)
			e.reportLocked(err)
			return nil, err
		}
	}
	if err := e.ensureOpenLocked(); err != nil {
		e.reportLocked(err)
		return nil, err
	}

	seq := &Sequence{
		engine:  e,
		tempo:   tempo,
		offsets: make([]float64, len(events)),
		done:    make(chan struct{}),
	}
	offset := 0.0
	for i, ev := range events {
		seq.offsets[i] = offset
		offset += ev.Duration
	}
	seq.total = offset
	e.sequences[seq] = struct{}{}

	for i, ev := range events {
		if seq.offsets[i] == 0 {
			e.dispatchLocked(ev)
			continue
		}
		ev := ev
		seq.timers = append(seq.timers, e.backend.AfterFunc(seq.offsets[i], func() {
			e.fire(seq, ev)
		}))
		seq.left++
	}
	e.log.Debugf("Scheduled %d steps over %.3fs", len(events), seq.total)
	if seq.left == 0 {
		seq.finishLocked()
		e.updateLocked()
	}
	return seq, nil
}

// fire runs one deferred step.
func (e *Engine) fire(seq *Sequence, ev Event) {
	e.mu.Lock()
	defer e.unlock()
	if seq.closed {
		return
	}
	e.dispatchLocked(ev)
	seq.left--
	if seq.left == 0 {
		seq.finishLocked()
		e.updateLocked()
	}
}

// dispatchLocked starts the voices of one step. Errors are reported and
// do not affect other steps.
func (e *Engine) dispatchLocked(ev Event) {
	shape := ev.Shape
	if shape == "" {
		shape = e.shape
	}
	switch {
	case ev.IsRest():
	case ev.Chord:
		e.playChordLocked(ev.Notes, ev.Duration, shape)
	default:
		if _, err := e.playNoteLocked(ev.Notes[0], ev.Duration, shape); err != nil {
			e.reportLocked(err)
		}
	}
}
