package audio

// Envelope timings in seconds and the sustain ratio. They are fixed for
// every voice; only the peak varies between single notes and chords.
const (
	AttackTime   = 0.01
	DecayTime    = 0.1
	SustainLevel = 0.7
	ReleaseTime  = 0.1
)

// DefaultTempo is the tempo reported for patterns submitted without one.
const DefaultTempo = 120.0
