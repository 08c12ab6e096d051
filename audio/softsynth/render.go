package softsynth

import (
	"github.com/decred/slog"

	"github.com/simukka/sprechstimme-playground/audio"
)

// RenderOptions control an offline render.
type RenderOptions struct {
	SampleRate int
	WaveShape  audio.WaveShape
	Tempo      float64
	// Volume is the master gain of the render; nil means full scale.
	Volume *float64
	Log    slog.Logger
}

// renderTail is rendered after the last step so forced fades and float
// rounding never cut the final release.
const renderTail = 0.05

// RenderEvents plays events through a private engine on a fresh synth and
// returns the mixed samples. Unknown notes are reported to opts.Log and
// skipped, like in live playback.
func RenderEvents(events []audio.Event, opts RenderOptions) ([]float32, error) {
	if opts.SampleRate <= 0 {
		opts.SampleRate = audio.DefaultConfig.SampleRate
	}
	if opts.WaveShape == "" {
		opts.WaveShape = audio.DefaultConfig.WaveShape
	}
	if opts.Tempo == 0 {
		opts.Tempo = audio.DefaultTempo
	}
	if opts.Log == nil {
		opts.Log = slog.Disabled
	}

	cfg := audio.DefaultConfig
	cfg.SampleRate = opts.SampleRate
	cfg.Volume = 1
	if opts.Volume != nil {
		cfg.Volume = *opts.Volume
	}
	cfg.WaveShape = opts.WaveShape

	s := New(opts.SampleRate, WithLogger(opts.Log))
	e := audio.NewEngine(s, audio.WithConfig(cfg), audio.WithLogger(opts.Log))
	seq, err := e.PlayPattern(events, opts.Tempo)
	if err != nil {
		return nil, err
	}
	return s.Render(seq.Duration() + renderTail), nil
}
