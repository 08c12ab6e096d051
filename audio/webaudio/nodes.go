//go:build js
// +build js

package webaudio

import (
	"github.com/decred/slog"
	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/sprechstimme-playground/audio"
)

type param struct {
	p *js.Object
}

func (p *param) Value() float64                  { return p.p.Get("value").Float() }
func (p *param) SetValue(v float64)              { p.p.Set("value", v) }
func (p *param) SetValueAtTime(v, t float64)     { p.p.Call("setValueAtTime", v, t) }
func (p *param) CancelScheduledValues(t float64) { p.p.Call("cancelScheduledValues", t) }
func (p *param) LinearRampToValueAtTime(v, t float64) {
	p.p.Call("linearRampToValueAtTime", v, t)
}

type output struct {
	b        *Backend
	gain     *js.Object
	analyser *js.Object
	samples  *js.Object
}

func (o *output) Gain() audio.Param { return &param{p: o.gain.Get("gain")} }

func (o *output) Waveform(dst []float32) int {
	o.analyser.Call("getFloatTimeDomainData", o.samples)
	n := o.samples.Length()
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		dst[i] = float32(o.samples.Index(i).Float())
	}
	return n
}

type tone struct {
	log  slog.Logger
	osc  *js.Object
	gain *js.Object
	env  *param
}

func (t *tone) Envelope() audio.Param { return t.env }
func (t *tone) Start(at float64)      { t.osc.Call("start", at) }

// Stop may be called again to move the stop time; browsers that refuse a
// second stop throw, which is logged and ignored.
func (t *tone) Stop(at float64) {
	defer func() {
		if r := recover(); r != nil {
			t.log.Tracef("Oscillator stop ignored: %v", r)
		}
	}()
	t.osc.Call("stop", at)
}

func (t *tone) OnEnded(f func()) {
	t.osc.Set("onended", func() { f() })
}

func (t *tone) Disconnect() {
	t.osc.Call("disconnect")
	t.gain.Call("disconnect")
}

type buffer struct {
	buf *js.Object
}

func (b *buffer) Duration() float64 { return b.buf.Get("duration").Float() }

type source struct {
	log  slog.Logger
	node *js.Object
}

func (s *source) Start(at float64) { s.node.Call("start", at) }

func (s *source) Stop(at float64) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Tracef("Buffer source stop ignored: %v", r)
		}
	}()
	s.node.Call("stop", at)
}

func (s *source) OnEnded(f func()) {
	s.node.Set("onended", func() { f() })
}

func (s *source) Disconnect() { s.node.Call("disconnect") }
