package audio

import "sort"

// VoiceState tracks a voice from creation to release.
type VoiceState int

const (
	VoiceScheduled VoiceState = iota
	VoiceSounding
	VoiceEnded
	VoiceStopped
)

func (s VoiceState) String() string {
	switch s {
	case VoiceScheduled:
		return "scheduled"
	case VoiceSounding:
		return "sounding"
	case VoiceEnded:
		return "ended"
	case VoiceStopped:
		return "stopped"
	}
	return "unknown"
}

// Voice is one sounding pitch: an oscillator, its envelope and its end
// bookkeeping. A voice is started once and never reused.
type Voice struct {
	engine *Engine
	tone   Tone

	label string
	freq  float64
	shape WaveShape
	env   Envelope
	start float64
	stop  float64
	state VoiceState
	done  chan struct{}
}

func (v *Voice) Label() string         { return v.label }
func (v *Voice) Frequency() float64    { return v.freq }
func (v *Voice) Shape() WaveShape      { return v.shape }
func (v *Voice) Peak() float64         { return v.env.Peak }
func (v *Voice) Envelope() Envelope    { return v.env }
func (v *Voice) Done() <-chan struct{} { return v.done }

// StartTime is the audio-clock time the voice began.
func (v *Voice) StartTime() float64 {
	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	return v.start
}

// StopTime is the audio-clock time the oscillator stops. A forced stop
// moves it to the end of the fade.
func (v *Voice) StopTime() float64 {
	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	return v.stop
}

func (v *Voice) State() VoiceState {
	v.engine.mu.Lock()
	defer v.engine.mu.Unlock()
	return v.state
}

// Stop fades the voice out early. Stopping a voice that already ended or
// was stopped does nothing.
func (v *Voice) Stop() {
	e := v.engine
	e.mu.Lock()
	defer e.unlock()
	if e.forceStopLocked(v, e.backend.Now()) {
		e.updateLocked()
	}
}

// startVoiceLocked creates, envelopes and starts a voice now.
func (e *Engine) startVoiceLocked(label string, freq, duration, peak float64, shape WaveShape) (*Voice, error) {
	if err := e.ensureOpenLocked(); err != nil {
		return nil, err
	}
	now := e.backend.Now()
	v := &Voice{
		engine: e,
		tone:   e.backend.NewTone(e.out, shape, freq),
		label:  label,
		freq:   freq,
		shape:  shape,
		env:    NewEnvelope(duration, peak),
		state:  VoiceScheduled,
		done:   make(chan struct{}),
	}
	v.env.Apply(v.tone.Envelope(), now)
	v.tone.OnEnded(func() { e.voiceEnded(v) })
	v.start = now
	v.stop = now + duration
	v.tone.Start(now)
	v.tone.Stop(v.stop)
	v.state = VoiceSounding

	e.voices[v] = struct{}{}
	if h := e.hooks.OnVoice; h != nil {
		e.pending = append(e.pending, func() { h(label) })
	}
	e.log.Tracef("Voice %s %.2fHz %s peak %.2f for %.3fs", label, freq, shape, peak, duration)
	e.updateLocked()
	return v, nil
}

// voiceEnded runs when the backend reports the oscillator has stopped.
func (e *Engine) voiceEnded(v *Voice) {
	e.mu.Lock()
	defer e.unlock()
	v.tone.Disconnect()
	if v.state != VoiceSounding {
		return
	}
	v.state = VoiceEnded
	delete(e.voices, v)
	close(v.done)
	e.updateLocked()
}

// forceStopLocked pins the envelope at its current level and fades it to
// silence over the stop window. It reports whether v was sounding.
func (e *Engine) forceStopLocked(v *Voice, now float64) bool {
	if v.state != VoiceSounding {
		return false
	}
	end := now + e.cfg.StopFade
	g := v.tone.Envelope()
	// read before cancelling: the cancel drops any ramp in progress
	level := g.Value()
	g.CancelScheduledValues(now)
	g.SetValueAtTime(level, now)
	g.LinearRampToValueAtTime(0, end)
	v.tone.Stop(end)

	v.stop = end
	v.state = VoiceStopped
	delete(e.voices, v)
	close(v.done)
	return true
}

func sortVoices(voices []*Voice) {
	sort.SliceStable(voices, func(i, j int) bool {
		if voices[i].start != voices[j].start {
			return voices[i].start < voices[j].start
		}
		return voices[i].freq < voices[j].freq
	})
}
