package audio

// Envelope is the amplitude shape of one voice: a linear attack to the
// peak, a decay to the sustain level, a hold, and a linear release that
// reaches silence exactly at the end of the duration.
//
// Durations shorter than attack+decay+release shrink the three windows
// proportionally so the shape still fits.
type Envelope struct {
	Attack   float64
	Decay    float64
	Release  float64
	Duration float64
	Peak     float64
}

// EnvelopePoint is one automation step. Ramp points are reached linearly
// from the previous point; the others are set at their time.
type EnvelopePoint struct {
	Time  float64
	Level float64
	Ramp  bool
}

func NewEnvelope(duration, peak float64) Envelope {
	env := Envelope{
		Attack:   AttackTime,
		Decay:    DecayTime,
		Release:  ReleaseTime,
		Duration: duration,
		Peak:     peak,
	}
	if total := env.Attack + env.Decay + env.Release; duration < total {
		k := duration / total
		env.Attack *= k
		env.Decay *= k
		env.Release *= k
	}
	return env
}

// Sustain is the level held between decay and release.
func (e Envelope) Sustain() float64 {
	return SustainLevel * e.Peak
}

// Points returns the automation for a voice starting at now.
func (e Envelope) Points(now float64) []EnvelopePoint {
	return []EnvelopePoint{
		{Time: now, Level: 0},
		{Time: now + e.Attack, Level: e.Peak, Ramp: true},
		{Time: now + e.Attack + e.Decay, Level: e.Sustain(), Ramp: true},
		{Time: now + e.Duration - e.Release, Level: e.Sustain()},
		{Time: now + e.Duration, Level: 0, Ramp: true},
	}
}

// Apply schedules the envelope on p.
func (e Envelope) Apply(p Param, now float64) {
	for _, pt := range e.Points(now) {
		if pt.Ramp {
			p.LinearRampToValueAtTime(pt.Level, pt.Time)
		} else {
			p.SetValueAtTime(pt.Level, pt.Time)
		}
	}
}

// LevelAt evaluates the envelope t seconds after onset.
func (e Envelope) LevelAt(t float64) float64 {
	switch {
	case t <= 0 || t >= e.Duration:
		return 0
	case t < e.Attack:
		return e.Peak * t / e.Attack
	case t < e.Attack+e.Decay:
		return e.Peak + (e.Sustain()-e.Peak)*(t-e.Attack)/e.Decay
	case t < e.Duration-e.Release:
		return e.Sustain()
	default:
		return e.Sustain() * (e.Duration - t) / e.Release
	}
}
