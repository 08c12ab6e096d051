//go:build js
// +build js

// Package webaudio implements audio.Backend on the browser's Web Audio API.
package webaudio

import (
	"errors"

	"github.com/decred/slog"
	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/sprechstimme-playground/audio"
)

// ErrUnsupported is returned by Open when the browser has no AudioContext.
var ErrUnsupported = errors.New("web audio is not supported by this browser")

// Backend owns one AudioContext with a master gain feeding an analyser.
type Backend struct {
	log          slog.Logger
	analyserSize int

	ctx *js.Object
	out *output
}

var _ audio.Backend = (*Backend)(nil)

func New(log slog.Logger, analyserSize int) *Backend {
	return &Backend{log: log, analyserSize: analyserSize}
}

// Open creates the AudioContext and the master chain
// gain -> analyser -> destination.
func (b *Backend) Open(volume float64) (audio.Output, error) {
	if b.out != nil {
		return b.out, nil
	}
	ctor := js.Global.Get("AudioContext")
	if ctor == nil || ctor == js.Undefined {
		ctor = js.Global.Get("webkitAudioContext")
	}
	if ctor == nil || ctor == js.Undefined {
		return nil, ErrUnsupported
	}

	b.ctx = ctor.New()
	gain := b.ctx.Call("createGain")
	gain.Get("gain").Set("value", volume)
	analyser := b.ctx.Call("createAnalyser")
	analyser.Set("fftSize", b.analyserSize)
	gain.Call("connect", analyser)
	analyser.Call("connect", b.ctx.Get("destination"))

	b.out = &output{
		b:        b,
		gain:     gain,
		analyser: analyser,
		samples:  js.Global.Get("Float32Array").New(b.analyserSize),
	}
	b.resume()
	b.log.Debugf("AudioContext created at %v Hz", b.ctx.Get("sampleRate").Float())
	return b.out, nil
}

// resume wakes a context suspended by the autoplay policy.
func (b *Backend) resume() {
	if b.ctx.Get("state").String() == "suspended" {
		b.ctx.Call("resume")
	}
}

func (b *Backend) Now() float64 {
	if b.ctx == nil {
		return 0
	}
	return b.ctx.Get("currentTime").Float()
}

type timer struct {
	id    *js.Object
	fired bool
	dead  bool
}

func (t *timer) Stop() bool {
	if t.fired || t.dead {
		return false
	}
	t.dead = true
	js.Global.Call("clearTimeout", t.id)
	return true
}

func (b *Backend) AfterFunc(delay float64, f func()) audio.Timer {
	t := &timer{}
	t.id = js.Global.Call("setTimeout", func() {
		t.fired = true
		f()
	}, delay*1000)
	return t
}

func (b *Backend) NewTone(out audio.Output, shape audio.WaveShape, freq float64) audio.Tone {
	b.resume()
	osc := b.ctx.Call("createOscillator")
	osc.Set("type", string(shape))
	osc.Get("frequency").Set("value", freq)
	gain := b.ctx.Call("createGain")
	osc.Call("connect", gain)
	gain.Call("connect", out.(*output).gain)
	return &tone{
		log:  b.log,
		osc:  osc,
		gain: gain,
		env:  &param{p: gain.Get("gain")},
	}
}

// Decode uses the promise form of decodeAudioData; both outcomes arrive
// from the JS event loop.
func (b *Backend) Decode(data []byte, done func(audio.Buffer, error)) {
	ab := js.NewArrayBuffer(data)
	promise := b.ctx.Call("decodeAudioData", ab)
	promise.Call("then", func(buf *js.Object) {
		done(&buffer{buf: buf}, nil)
	}, func(err *js.Object) {
		msg := "unsupported audio data"
		if err != nil && err != js.Undefined {
			msg = err.Call("toString").String()
		}
		done(nil, errors.New(msg))
	})
}

func (b *Backend) NewSource(out audio.Output, buf audio.Buffer) audio.Source {
	b.resume()
	src := b.ctx.Call("createBufferSource")
	src.Set("buffer", buf.(*buffer).buf)
	src.Call("connect", out.(*output).gain)
	return &source{log: b.log, node: src}
}
