package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/simukka/sprechstimme-playground/audio"
)

// keyRows lay the pitch table over the keyboard, lowest octave at the
// bottom.
var keyRows = []string{"iop", "qwertyu", "asdfghj", "zxcvbnm"}

const (
	keyNoteLength = 0.4
	volumeStep    = 0.05
	refreshRate   = 50 * time.Millisecond
)

// keyNotes maps each key to its note name.
func keyNotes() map[string]string {
	notes := audio.Notes()
	m := make(map[string]string, len(notes))
	i := 0
	for r := len(keyRows) - 1; r >= 0; r-- {
		for _, k := range keyRows[r] {
			if i < len(notes) {
				m[string(k)] = notes[i]
				i++
			}
		}
	}
	return m
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// keysModel is the keyboard TUI. Notes go straight to the engine; the
// view polls it for what is sounding.
type keysModel struct {
	engine *audio.Engine
	notes  map[string]string

	active map[string]bool
	last   string
	err    string
}

func newKeysModel(e *audio.Engine) keysModel {
	return keysModel{engine: e, notes: keyNotes(), active: map[string]bool{}}
}

func (m keysModel) Init() tea.Cmd { return tick() }

func (m keysModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		active := make(map[string]bool)
		for _, v := range m.engine.ActiveVoices() {
			active[v.Label()] = true
		}
		m.active = active
		return m, tick()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.engine.StopAll()
			return m, tea.Quit
		case tea.KeySpace:
			m.engine.StopAll()
			m.last = ""
			return m, nil
		case tea.KeyTab:
			m.engine.SetWaveShape(m.engine.WaveShape().Next())
			return m, nil
		}
		switch k := msg.String(); k {
		case "+", "=":
			m.engine.SetVolume(m.engine.Volume() + volumeStep)
		case "-", "_":
			m.engine.SetVolume(m.engine.Volume() - volumeStep)
		default:
			name, ok := m.notes[strings.ToLower(k)]
			if !ok {
				return m, nil
			}
			if _, err := m.engine.PlayNote(name, keyNoteLength); err != nil {
				m.err = err.Error()
				return m, nil
			}
			m.last = name
			m.err = ""
		}
	}
	return m, nil
}

func (m keysModel) View() string {
	var b strings.Builder
	title := fmt.Sprintf("  sprechplay keys - %s - volume %d%%", m.engine.WaveShape(), int(m.engine.Volume()*100+0.5))
	b.WriteString("\n" + title + "\n")
	b.WriteString("  " + strings.Repeat("=", len(title)-2) + "\n\n")

	for _, row := range keyRows {
		b.WriteString("  ")
		for _, k := range row {
			name := m.notes[string(k)]
			if m.active[name] {
				fmt.Fprintf(&b, "[\x1b[32;1m%c %-3s\x1b[0m] ", k, name)
			} else {
				fmt.Fprintf(&b, "[%c %-3s] ", k, name)
			}
		}
		b.WriteString("\n\n")
	}
	if m.last != "" {
		b.WriteString("  last: " + m.last + "\n")
	}
	if m.err != "" {
		b.WriteString("  error: " + m.err + "\n")
	}
	b.WriteString("\n  [ TAB: wave ]  [ +/-: volume ]  [ SPACE: silence ]  [ ESC: quit ]\n")
	return b.String()
}

func keysCmd(args []string, l *logs) error {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	wave := fs.String("wave", string(audio.DefaultConfig.WaveShape), "Initial wave shape")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	shape, err := audio.ParseWaveShape(*wave)
	if err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return errors.New("keys needs an interactive terminal")
	}

	// The TUI owns the terminal; engine messages would tear it.
	cfg := audio.DefaultConfig
	cfg.WaveShape = shape
	p, err := openPlayer(cfg, nil, audio.Hooks{})
	if err != nil {
		return err
	}
	defer p.Close()

	_, err = tea.NewProgram(newKeysModel(p.engine)).Run()
	p.stop()
	return err
}
