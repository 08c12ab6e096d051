package audio

// Config holds the engine settings that may differ between hosts.
type Config struct {
	Volume    float64   // initial master volume, 0.0 - 1.0
	WaveShape WaveShape // initial oscillator shape

	NotePeak  float64 // envelope peak of a single note
	ChordPeak float64 // envelope peak of each chord member
	StopFade  float64 // fade-out window of a forced stop, in seconds

	AnalyserSize int // samples kept for the waveform tap
	SampleRate   int // rate of software backends
}

// DefaultConfig is the configuration used by NewEngine.
var DefaultConfig = Config{
	Volume:    0.5,
	WaveShape: Sine,

	NotePeak:  1.0,
	ChordPeak: 0.3,
	StopFade:  0.05,

	AnalyserSize: 2048,
	SampleRate:   44100,
}
