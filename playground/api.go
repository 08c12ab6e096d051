//go:build js
// +build js

package playground

import (
	"encoding/json"

	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/sprechstimme-playground/audio"
)

func stringsOf(o *js.Object) []string {
	if o == nil || o == js.Undefined {
		return nil
	}
	if o.Get("length") == js.Undefined {
		return []string{o.String()}
	}
	out := make([]string, o.Length())
	for i := range out {
		out[i] = o.Index(i).String()
	}
	return out
}

func floatsOf(o *js.Object) []float64 {
	if o == nil || o == js.Undefined {
		return nil
	}
	out := make([]float64, o.Length())
	for i := range out {
		out[i] = o.Index(i).Float()
	}
	return out
}

// Export installs window.Sprechstimme and window.playWavFromBase64. The
// play functions return false when the request was rejected; the reason
// goes to the output panel.
func (p *Playground) Export() {
	e := p.Engine
	js.Global.Set("Sprechstimme", map[string]interface{}{
		"playNote": func(name string, duration float64) bool {
			_, err := e.PlayNote(name, duration)
			return err == nil
		},
		"playChord": func(names *js.Object, duration float64) bool {
			_, err := e.PlayChord(stringsOf(names), duration)
			return err == nil
		},
		"playMelody": func(names, durations *js.Object) bool {
			_, err := e.PlayMelody(stringsOf(names), floatsOf(durations))
			return err == nil
		},
		"playPattern": func(events *js.Object, tempo float64) bool {
			var evs []audio.Event
			raw := js.Global.Get("JSON").Call("stringify", events).String()
			if err := json.Unmarshal([]byte(raw), &evs); err != nil {
				p.log.Warnf("play pattern: %v", err)
				return false
			}
			if tempo == 0 {
				tempo = audio.DefaultTempo
			}
			_, err := e.PlayPattern(evs, tempo)
			return err == nil
		},
		"stopAll": func() {
			p.Stop()
		},
		"setVolume": func(v float64) float64 {
			applied := e.SetVolume(v)
			p.showVolume(applied)
			return applied
		},
		"setWaveShape": func(name string) bool {
			shape, err := audio.ParseWaveShape(name)
			if err != nil {
				p.log.Warnf("%v", err)
				return false
			}
			return e.SetWaveShape(shape) == nil
		},
		"status": func() string {
			return e.Status().String()
		},
		"notes": func() []string {
			return audio.Notes()
		},
	})

	// playWavFromBase64 resolves when the clip has finished playing and
	// rejects on a decode failure.
	js.Global.Set("playWavFromBase64", func(data string) *js.Object {
		return js.Global.Get("Promise").New(func(resolve, reject *js.Object) {
			pb := e.PlayBase64(data)
			go func() {
				<-pb.Done()
				if err := pb.Err(); err != nil {
					reject.Invoke(js.Global.Get("Error").New(err.Error()))
					return
				}
				resolve.Invoke()
			}()
		})
	})
}
