//go:build js
// +build js

// Package playground binds the audio engine and the script language to
// the playground page: editor, controls, output panel, note badges,
// waveform view, the window.Sprechstimme API and listen-along sessions.
package playground

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/decred/slog"
	"github.com/dustin/go-humanize"
	"github.com/gopherjs/gopherjs/js"

	"github.com/simukka/sprechstimme-playground/audio"
	"github.com/simukka/sprechstimme-playground/audio/softsynth"
	"github.com/simukka/sprechstimme-playground/audio/wavfile"
	"github.com/simukka/sprechstimme-playground/audio/webaudio"
	"github.com/simukka/sprechstimme-playground/script"
)

// Playback modes.
const (
	ModeLive   = "live"
	ModeRender = "render"
)

// noteBadgeLife is how long a playing-note badge stays on screen.
const noteBadgeLife = 2 * time.Second

// renderRate is the sample rate of render mode. Web Audio resamples it
// on decode.
const renderRate = 22050

var statusText = map[string]string{
	"loading": "Loading...",
	"ready":   "Ready",
	"playing": "Playing",
	"error":   "Error",
}

// Playground is the page controller.
type Playground struct {
	doc    *js.Object
	editor *js.Object
	output *js.Object
	notes  *js.Object

	logs     *slog.Backend
	log      slog.Logger
	audioLog slog.Logger

	Engine  *audio.Engine
	session *sessionClient

	mode  string
	ready bool
	last  *script.Result
	wave  []float32
}

// New builds the playground over the current document.
func New() *Playground {
	doc := js.Global.Get("document")
	p := &Playground{
		doc:    doc,
		editor: doc.Call("getElementById", "code-editor"),
		output: doc.Call("getElementById", "output-display"),
		notes:  doc.Call("getElementById", "current-notes"),
		mode:   ModeLive,
	}
	p.logs = slog.NewBackend(newPanelWriter(p.appendLine))
	p.log = p.logs.Logger("PLAY")

	p.audioLog = p.logs.Logger("AUDO")
	audioLog := p.audioLog
	cfg := audio.DefaultConfig
	p.wave = make([]float32, cfg.AnalyserSize)
	p.Engine = audio.NewEngine(
		webaudio.New(audioLog, cfg.AnalyserSize),
		audio.WithConfig(cfg),
		audio.WithLogger(audioLog),
		audio.WithHooks(audio.Hooks{
			OnStatus: func(s audio.Status) { p.setStatus(s.String()) },
			OnVoice:  p.addNote,
			OnError: func(err error) {
				if errors.Is(err, webaudio.ErrUnsupported) {
					p.setStatus("error")
				}
			},
		}),
	)
	return p
}

// SetLogLevel changes the level of the output panel loggers.
func (p *Playground) SetLogLevel(level slog.Level) {
	p.log.SetLevel(level)
	p.audioLog.SetLevel(level)
}

func (p *Playground) byID(id string) *js.Object {
	el := p.doc.Call("getElementById", id)
	if el == nil || el == js.Undefined {
		return nil
	}
	return el
}

func (p *Playground) on(id, event string, f func(*js.Object)) {
	if el := p.byID(id); el != nil {
		el.Call("addEventListener", event, f)
	}
}

// Start binds the page controls and shows the first example.
func (p *Playground) Start() {
	p.setStatus("loading")

	p.on("run-btn", "click", func(*js.Object) { p.Run() })
	p.on("clear-btn", "click", func(*js.Object) { p.clearOutput() })
	p.on("stop-btn", "click", func(*js.Object) { p.Stop() })
	p.on("volume-control", "input", func(ev *js.Object) {
		v, err := strconv.ParseFloat(ev.Get("target").Get("value").String(), 64)
		if err != nil {
			return
		}
		p.showVolume(p.Engine.SetVolume(v / 100))
	})
	p.on("wave-select", "change", func(ev *js.Object) {
		shape, err := audio.ParseWaveShape(ev.Get("target").Get("value").String())
		if err != nil {
			p.log.Warnf("%v", err)
			return
		}
		p.Engine.SetWaveShape(shape)
	})
	p.on("mode-select", "change", func(ev *js.Object) {
		p.mode = ev.Get("target").Get("value").String()
	})
	p.on("code-editor", "keydown", p.editorKey)

	buttons := p.doc.Call("querySelectorAll", ".example-btn")
	for i := 0; i < buttons.Length(); i++ {
		btn := buttons.Index(i)
		btn.Call("addEventListener", "click", func(*js.Object) {
			for j := 0; j < buttons.Length(); j++ {
				buttons.Index(j).Get("classList").Call("remove", "active")
			}
			btn.Get("classList").Call("add", "active")
			p.loadExample(btn.Call("getAttribute", "data-example").String())
		})
	}

	p.bindSession()
	p.startVisualizer()

	if p.editor != nil && p.editor.Get("value").String() == "" {
		p.editor.Set("value", Examples[0].Source)
	}
	p.ready = true
	p.setStatus("ready")
	p.appendLine(ClassSuccess, "Welcome to the Sprechstimme Playground!")
	p.appendLine(ClassInfo, `Usage: sp.new("synth") then sp.create("synth", wavetype=sp.waves.sine) then sp.play("synth", "C4", duration=1.0)`)
}

// editorKey runs on Ctrl/Cmd+Enter and turns Tab into four spaces.
func (p *Playground) editorKey(ev *js.Object) {
	key := ev.Get("key").String()
	if key == "Enter" && (ev.Get("ctrlKey").Bool() || ev.Get("metaKey").Bool()) {
		ev.Call("preventDefault")
		p.Run()
		return
	}
	if key == "Tab" {
		ev.Call("preventDefault")
		ta := ev.Get("target")
		start := ta.Get("selectionStart").Int()
		end := ta.Get("selectionEnd").Int()
		text := ta.Get("value").String()
		ta.Set("value", text[:start]+"    "+text[end:])
		ta.Set("selectionStart", start+4)
		ta.Set("selectionEnd", start+4)
	}
}

func (p *Playground) loadExample(name string) {
	ex, ok := Lookup(name)
	if !ok {
		p.log.Warnf("Unknown example %q", name)
		return
	}
	if p.editor != nil {
		p.editor.Set("value", ex.Source)
	}
	p.clearOutput()
	p.appendLine(ClassInfo, "Loaded example: "+name)
}

// Run evaluates the editor contents and plays the resulting pattern.
func (p *Playground) Run() {
	if !p.ready {
		p.appendLine(ClassError, "The playground is still loading...")
		return
	}
	if p.editor == nil {
		return
	}
	p.clearOutput()

	res, err := script.Run(p.editor.Get("value").String())
	if err != nil {
		p.appendLine(ClassError, "Error: "+err.Error())
		return
	}
	p.last = res
	p.apply(res)

	for _, line := range res.Output {
		p.appendLine(ClassSuccess, line)
	}
	if len(res.Events) == 0 {
		if len(res.Output) == 0 {
			p.appendLine(ClassInfo, "Code executed (no output or audio)")
		}
		return
	}
	p.Play(res)
}

// apply carries the program's volume and wave settings to the engine and
// the controls.
func (p *Playground) apply(res *script.Result) {
	if res.Volume != nil {
		p.showVolume(p.Engine.SetVolume(*res.Volume))
	}
	if res.WaveShape != "" && p.Engine.SetWaveShape(res.WaveShape) == nil {
		if sel := p.byID("wave-select"); sel != nil {
			sel.Set("value", string(res.WaveShape))
		}
	}
}

// Play sends a program's events to the engine in the current mode.
func (p *Playground) Play(res *script.Result) {
	if p.mode != ModeRender {
		if _, err := p.Engine.PlayPattern(res.Events, res.Tempo); err != nil {
			p.log.Debugf("Pattern rejected: %v", err)
		}
		return
	}

	// rendered at full scale; the master gain applies the volume on playback
	samples, err := softsynth.RenderEvents(res.Events, softsynth.RenderOptions{
		SampleRate: renderRate,
		WaveShape:  p.Engine.WaveShape(),
		Tempo:      res.Tempo,
		Log:        p.logs.Logger("REND"),
	})
	if err != nil {
		p.appendLine(ClassError, "Render failed: "+err.Error())
		return
	}
	data, err := wavfile.Encode(samples, renderRate)
	if err != nil {
		p.appendLine(ClassError, "Render failed: "+err.Error())
		return
	}
	p.log.Infof("Rendered %.2fs of audio (%s)", res.Duration(), humanize.Bytes(uint64(len(data))))
	pb := p.Engine.PlayEncodedAudio(data)
	go func() {
		<-pb.Done()
		if err := pb.Err(); err == nil {
			p.log.Infof("Playback finished")
		}
	}()
}

// Stop silences everything.
func (p *Playground) Stop() {
	p.Engine.StopAll()
	p.appendLine(ClassInfo, "All audio stopped")
	p.clearNotes()
}

func (p *Playground) showVolume(v float64) {
	pct := int(v*100 + 0.5)
	if el := p.byID("volume-control"); el != nil {
		el.Set("value", pct)
	}
	if el := p.byID("volume-value"); el != nil {
		el.Set("textContent", fmt.Sprintf("%d%%", pct))
	}
}

func (p *Playground) appendLine(class, msg string) {
	if p.output == nil {
		js.Global.Get("console").Call("log", msg)
		return
	}
	if ph := p.output.Call("querySelector", ".output-placeholder"); ph != nil && ph != js.Undefined {
		ph.Call("remove")
	}
	line := p.doc.Call("createElement", "div")
	line.Set("className", "output-line "+class)
	line.Set("textContent", msg)
	p.output.Call("appendChild", line)
	p.output.Set("scrollTop", p.output.Get("scrollHeight"))
}

func (p *Playground) clearOutput() {
	if p.output != nil {
		p.output.Set("innerHTML", `<span class="output-placeholder">Output cleared</span>`)
	}
}

func (p *Playground) setStatus(status string) {
	if el := p.byID("audio-status"); el != nil {
		el.Set("textContent", statusText[status])
	}
	if dot := p.doc.Call("querySelector", ".indicator-dot"); dot != nil && dot != js.Undefined {
		if status == "playing" {
			dot.Get("classList").Call("add", "playing")
		} else {
			dot.Get("classList").Call("remove", "playing")
		}
	}
}

// addNote shows a badge for a started voice for a couple of seconds.
func (p *Playground) addNote(label string) {
	if p.notes == nil {
		return
	}
	if ph := p.notes.Call("querySelector", ".placeholder"); ph != nil && ph != js.Undefined {
		ph.Call("remove")
	}
	badge := p.doc.Call("createElement", "span")
	badge.Set("className", "note-badge")
	badge.Set("textContent", label)
	p.notes.Call("appendChild", badge)
	js.Global.Call("setTimeout", func() {
		badge.Call("remove")
		if p.notes.Call("querySelector", ".note-badge") == nil {
			p.notes.Set("innerHTML", `<span class="placeholder">No notes playing</span>`)
		}
	}, int(noteBadgeLife/time.Millisecond))
}

func (p *Playground) clearNotes() {
	if p.notes != nil {
		p.notes.Set("innerHTML", `<span class="placeholder">No notes playing</span>`)
	}
}

// startVisualizer draws the master output waveform every animation frame.
func (p *Playground) startVisualizer() {
	canvas := p.byID("visualizer")
	if canvas == nil {
		return
	}
	ctx := canvas.Call("getContext", "2d")
	canvas.Set("width", canvas.Get("offsetWidth"))
	canvas.Set("height", canvas.Get("offsetHeight"))

	var draw func()
	draw = func() {
		js.Global.Call("requestAnimationFrame", draw)

		w := canvas.Get("width").Float()
		h := canvas.Get("height").Float()
		ctx.Set("fillStyle", "#2C2416")
		ctx.Call("fillRect", 0, 0, w, h)

		n := p.Engine.Waveform(p.wave)
		if n == 0 {
			return
		}
		ctx.Set("lineWidth", 2)
		ctx.Set("strokeStyle", "#D17B47")
		ctx.Call("beginPath")
		step := w / float64(n)
		for i := 0; i < n; i++ {
			y := (1 - float64(p.wave[i])) * h / 2
			if i == 0 {
				ctx.Call("moveTo", 0, y)
			} else {
				ctx.Call("lineTo", float64(i)*step, y)
			}
		}
		ctx.Call("lineTo", w, h/2)
		ctx.Call("stroke")
	}
	draw()
}
