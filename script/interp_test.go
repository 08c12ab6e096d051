package script

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/simukka/sprechstimme-playground/audio"
)

func floatNear(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func mustRun(t *testing.T, src string) *Result {
	t.Helper()
	res, err := Run(src)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	return res
}

// TestRun_SprechstimmeModule tests sp.new, sp.create and sp.play lowering
func TestRun_SprechstimmeModule(t *testing.T) {
	res := mustRun(t, `
import sprechstimme as sp

sp.new("lead")
sp.create("lead", wavetype=sp.waves.square, attack=0.2)
sp.play("lead", "A4", duration=1.0)
sp.play("lead", ["C4", "E4", "G4"], duration=2)
sp.new("pad")
sp.play("pad", "C5")
print("Playing", "A4!")
`)
	if len(res.Events) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(res.Events))
	}
	first, chord, pad := res.Events[0], res.Events[1], res.Events[2]
	if first.Chord || first.Notes[0] != "A4" || first.Duration != 1 || first.Shape != audio.Square {
		t.Errorf("Unexpected first event %v (%s)", first, first.Shape)
	}
	if !chord.Chord || len(chord.Notes) != 3 || chord.Duration != 2 {
		t.Errorf("Unexpected chord event %v", chord)
	}
	if pad.Shape != audio.Sine || pad.Duration != 1.0 {
		t.Errorf("Expected default sine synth with 1s notes, got %v (%s)", pad, pad.Shape)
	}
	if len(res.Output) != 1 || res.Output[0] != "Playing A4!" {
		t.Errorf("Unexpected output %q", res.Output)
	}
	if res.Tempo != audio.DefaultTempo || res.Volume != nil || res.WaveShape != "" {
		t.Error("Expected untouched mixer settings")
	}
}

// TestRun_Loops tests for loops with unpacking and range steps
func TestRun_Loops(t *testing.T) {
	res := mustRun(t, `
import sprechstimme as sp
sp.new("lead")
sequence = [("C4", 0.25), ("E4", 0.5), (["G4", "C5"], 1)]
for note, d in sequence:
    sp.play("lead", note, duration=d)
for i in range(0, 6, 2):
    for n in ["C5", "E5"]:
        sp.play("lead", n, duration=0.125)
`)
	if len(res.Events) != 9 {
		t.Fatalf("Expected 9 events, got %d", len(res.Events))
	}
	if res.Events[1].Duration != 0.5 || !res.Events[2].Chord {
		t.Errorf("Unexpected unpacked events %v", res.Events[:3])
	}
	if res.Events[8].Notes[0] != "E5" {
		t.Errorf("Expected the nested loop to end on E5, got %v", res.Events[8])
	}
}

// TestRun_Builtins tests the direct playback builtins
func TestRun_Builtins(t *testing.T) {
	res := mustRun(t, `
scale = ["C4", "D4", "E4"]
for i in range(len(scale)):
    play_note(scale[i], 0.25)
rest(0.5)
play_chord(["C4", "E4"], duration=1)
play_melody(["G4", "A4"], [0.5, 0.5])
set_wave("triangle")
play_pattern([("C5", 0.5), (["C4", "G4"], 1), (None, 0.25)], tempo=90)
set_volume(0.8)
print(scale[-1], len(scale), str(2.5), notes()[0])
`)
	if len(res.Events) != 10 {
		t.Fatalf("Expected 10 events, got %d: %v", len(res.Events), res.Events)
	}
	if !res.Events[3].IsRest() || !res.Events[4].Chord || !res.Events[9].IsRest() {
		t.Error("Expected rest, chord and pattern rest in place")
	}
	if res.Events[6].Shape != "" || res.Events[7].Shape != audio.Triangle {
		t.Error("Expected set_wave to affect only later steps")
	}
	if res.Tempo != 90 || res.WaveShape != audio.Triangle || res.Volume == nil || *res.Volume != 0.8 {
		t.Errorf("Unexpected settings tempo=%v wave=%s volume=%v", res.Tempo, res.WaveShape, res.Volume)
	}
	if got := res.Output[0]; got != "E4 3 2.5 C3" {
		t.Errorf("Unexpected output %q", got)
	}
	if !floatNear(res.Duration(), 0.75+0.5+1+1+0.5+1+0.25, 1e-9) {
		t.Errorf("Unexpected duration %f", res.Duration())
	}
}

// TestRun_Shuffle tests that seeded shuffles are reproducible
func TestRun_Shuffle(t *testing.T) {
	src := `
notes = ["C4", "D4", "E4", "F4", "G4", "A4", "B4"]
print(shuffle(notes, seed=7))
print(shuffle(notes, "phrase"))
print(notes)
`
	a, b := mustRun(t, src), mustRun(t, src)
	for i := range a.Output {
		if a.Output[i] != b.Output[i] {
			t.Errorf("Line %d differs: %q vs %q", i, a.Output[i], b.Output[i])
		}
	}
	if a.Output[2] != "['C4', 'D4', 'E4', 'F4', 'G4', 'A4', 'B4']" {
		t.Errorf("Expected the original list untouched, got %q", a.Output[2])
	}
}

// TestRun_Values tests value formatting
func TestRun_Values(t *testing.T) {
	res := mustRun(t, `
import sprechstimme as sp
print([1, "a", (2,), (3, 4), None, True], sp.waves.sawtooth)
print("C" + "4", [1] * 3, "ab" * 2, 10 / 4)
print("x", "y", sep="-")
`)
	want := []string{
		"[1, 'a', (2,), (3, 4), None, True] sawtooth",
		"C4 [1, 1, 1] abab 2.5",
		"x-y",
	}
	if len(res.Output) != len(want) {
		t.Fatalf("Expected %d lines, got %q", len(want), res.Output)
	}
	for i := range want {
		if res.Output[i] != want[i] {
			t.Errorf("Line %d = %q, want %q", i, res.Output[i], want[i])
		}
	}
}

// TestRun_Errors tests runtime errors and their positions
func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		line int
		is   error
		msg  string
	}{
		{"undefined", "\nprint(x)\n", 2, nil, "not defined"},
		{"unknown module", "import numpy\n", 1, nil, "not available"},
		{"unknown synth", "import sprechstimme as sp\nsp.play('lead', 'C4')\n", 2, nil, "sp.new"},
		{"mismatch", "play_melody(['C4', 'E4'], [1])\n", 1, audio.ErrLengthMismatch, "2 notes, 1 durations"},
		{"zero duration", "play_note('C4', 0)\n", 1, audio.ErrInvalidDuration, "duration"},
		{"bad tempo", "play_pattern([('C4', 1)], tempo=0)\n", 1, audio.ErrInvalidTempo, "tempo"},
		{"bad wave", "set_wave('noise')\n", 1, audio.ErrUnknownWaveShape, "wave"},
		{"bad kwarg", "play_note('C4', length=1)\n", 1, nil, "unexpected keyword"},
		{"unpack", "a, b = [1, 2, 3]\n", 1, nil, "unpack"},
		{"not iterable", "for x in 3:\n    pass\n", 1, nil, "not iterable"},
		{"index", "x = [1]\nprint(x[5])\n", 2, nil, "out of range"},
		{"division", "print(1 / 0)\n", 1, nil, "division by zero"},
		{"note type", "play_note(4, 1)\n", 1, nil, "note must be a string"},
		{"loop limit", "for i in range(10000):\n    for j in range(10000):\n        pass\n", 3, ErrLimit, "steps"},
		{"huge repeat", "x = 'ab' * 4611686018427387904\n", 1, ErrLimit, "string longer"},
		{"list repeat", "x = [1, 2] * 60000\n", 1, ErrLimit, "list longer"},
		{"doubling", "x = 'a'\nfor i in range(22):\n    x = x + x\n", 3, ErrLimit, "string longer"},
		{"list doubling", "x = [0]\nfor i in range(22):\n    x = x + x\n", 3, ErrLimit, "list longer"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(tt.src)
			var serr *Error
			if !errors.As(err, &serr) {
				t.Fatalf("Expected *Error, got %v", err)
			}
			if serr.Pos.Line != tt.line {
				t.Errorf("Expected line %d, got %d (%v)", tt.line, serr.Pos.Line, err)
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("Expected %v, got %v", tt.is, err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("Expected %q in %q", tt.msg, err.Error())
			}
		})
	}
}

// TestRun_Repeat tests that sequence repetition stays within the size cap
func TestRun_Repeat(t *testing.T) {
	res, err := Run("x = 'ab' * 3\ny = [1] * 4\nz = 'a' * 100000\nprint(x, len(y), len(z))\n")
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if len(res.Output) != 1 || res.Output[0] != "ababab 4 100000" {
		t.Errorf("Expected [ababab 4 100000], got %q", res.Output)
	}
}

// TestRun_EventLimit tests the note cap
func TestRun_EventLimit(t *testing.T) {
	prog, err := Parse("for i in range(100):\n    play_note('C4', 0.1)\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	res, err := prog.Run(Limits{MaxSteps: 1000, MaxEvents: 10})
	if !errors.Is(err, ErrLimit) {
		t.Errorf("Expected ErrLimit, got %v", err)
	}
	if len(res.Events) != 10 {
		t.Errorf("Expected the first 10 events to be kept, got %d", len(res.Events))
	}
}
