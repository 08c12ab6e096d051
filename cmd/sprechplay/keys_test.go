package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/simukka/sprechstimme-playground/audio"
	"github.com/simukka/sprechstimme-playground/audio/softsynth"
)

func newTestKeys() (keysModel, *softsynth.Synth) {
	s := softsynth.New(8000)
	return newKeysModel(audio.NewEngine(s)), s
}

func press(m keysModel, msg tea.KeyMsg) (keysModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(keysModel), cmd
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// TestKeyNotes tests that every pitch has exactly one key.
func TestKeyNotes(t *testing.T) {
	m := keyNotes()
	notes := audio.Notes()
	if len(m) != len(notes) {
		t.Fatalf("Expected %d keys, got %d", len(notes), len(m))
	}
	seen := map[string]bool{}
	for _, name := range m {
		if seen[name] {
			t.Errorf("Expected %s to have one key", name)
		}
		seen[name] = true
	}
	for key, want := range map[string]string{"z": "C3", "a": "C4", "q": "C5", "i": "C6", "p": "E6", "h": "A4"} {
		if m[key] != want {
			t.Errorf("Expected %s to play %s, got %s", key, want, m[key])
		}
	}
}

// TestKeysModel_Play tests that note keys start voices that the view
// picks up on the next tick.
func TestKeysModel_Play(t *testing.T) {
	m, s := newTestKeys()

	m, _ = press(m, runeKey('h'))
	if m.last != "A4" {
		t.Errorf("Expected A4 to be the last note, got %q", m.last)
	}
	next, cmd := m.Update(tickMsg{})
	m = next.(keysModel)
	if cmd == nil {
		t.Errorf("Expected the tick to be rearmed")
	}
	if !m.active["A4"] {
		t.Errorf("Expected A4 to be active, got %v", m.active)
	}

	s.Advance(keyNoteLength + 0.1)
	next, _ = m.Update(tickMsg{})
	m = next.(keysModel)
	if len(m.active) != 0 {
		t.Errorf("Expected the note to have ended, got %v", m.active)
	}

	m, _ = press(m, runeKey('!'))
	if m.last != "A4" {
		t.Errorf("Expected unmapped keys to be ignored")
	}
}

// TestKeysModel_Controls tests wave, volume, silence and quit keys.
func TestKeysModel_Controls(t *testing.T) {
	m, s := newTestKeys()
	e := m.engine

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyTab})
	if e.WaveShape() != audio.Square {
		t.Errorf("Expected square after one tab, got %s", e.WaveShape())
	}

	start := e.Volume()
	m, _ = press(m, runeKey('+'))
	if !floatNear(e.Volume(), start+volumeStep, 1e-9) {
		t.Errorf("Expected the volume to go up, got %v", e.Volume())
	}
	m, _ = press(m, runeKey('-'))
	m, _ = press(m, runeKey('-'))
	if !floatNear(e.Volume(), start-volumeStep, 1e-9) {
		t.Errorf("Expected the volume to go down, got %v", e.Volume())
	}

	m, _ = press(m, runeKey('a'))
	m, _ = press(m, runeKey('s'))
	if n := len(e.ActiveVoices()); n != 2 {
		t.Fatalf("Expected 2 voices, got %d", n)
	}
	m, _ = press(m, tea.KeyMsg{Type: tea.KeySpace})
	s.Advance(0.1)
	if n := len(e.ActiveVoices()); n != 0 {
		t.Errorf("Expected silence after space, got %d voices", n)
	}

	_, cmd := press(m, tea.KeyMsg{Type: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("Expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("Expected escape to quit")
	}
}

// TestKeysModel_View tests that the view shows the layout and state.
func TestKeysModel_View(t *testing.T) {
	m, _ := newTestKeys()
	m.last = "C4"
	m.err = "boom"
	v := m.View()
	for _, want := range []string{"sine", "volume 50%", "[a C4 ]", "last: C4", "error: boom", "ESC: quit"} {
		if !strings.Contains(v, want) {
			t.Errorf("Expected the view to contain %q", want)
		}
	}
}
