package audio

// The interfaces below describe the small slice of a Web Audio style
// graph the engine needs. Times are seconds on the backend's audio clock.
//
// Backends must never invoke a callback (timer, ended, decode) from
// inside one of their own methods; callbacks are delivered later, from
// the backend's event source, and may call back into the Engine.

// Param is an automatable value such as a gain.
type Param interface {
	Value() float64
	// SetValue replaces the value immediately and drops any automation.
	SetValue(v float64)
	SetValueAtTime(v, t float64)
	LinearRampToValueAtTime(v, t float64)
	CancelScheduledValues(t float64)
}

// Output is the shared master stage every voice and buffer connects to.
type Output interface {
	Gain() Param
	// Waveform copies the most recent mixed samples into dst and returns
	// how many were written.
	Waveform(dst []float32) int
}

// Tone is an oscillator feeding its own envelope gain.
type Tone interface {
	Envelope() Param
	Start(t float64)
	Stop(t float64)
	// OnEnded registers the function run once the tone has stopped.
	OnEnded(f func())
	Disconnect()
}

// Buffer is decoded audio ready for playback.
type Buffer interface {
	Duration() float64
}

// Source plays a Buffer once.
type Source interface {
	Start(t float64)
	Stop(t float64)
	OnEnded(f func())
	Disconnect()
}

// Timer is a pending deferred call.
type Timer interface {
	// Stop cancels the call. It reports false if the call already ran or
	// was already stopped.
	Stop() bool
}

// Backend builds and schedules the audio graph.
type Backend interface {
	// Open creates the master output with the given gain. It is called
	// once, on the engine's first use.
	Open(volume float64) (Output, error)
	Now() float64
	AfterFunc(delay float64, f func()) Timer
	NewTone(out Output, shape WaveShape, freq float64) Tone
	// Decode turns encoded audio into a Buffer and reports the result
	// asynchronously.
	Decode(data []byte, done func(Buffer, error))
	NewSource(out Output, buf Buffer) Source
}
