package playground

// Example is a program offered by the example buttons.
type Example struct {
	Name   string
	Source string
}

// Examples lists the built-in programs in button order.
var Examples = []Example{
	{"basic", `# A first sound.
import sprechstimme as sp

# Make a synth, give it a wave, play one note.
sp.new("lead")
sp.create("lead", wavetype=sp.waves.sine)
sp.play("lead", "A4", duration=1.0)

print("A4 is 440 Hz")
`},
	{"chord", `import sprechstimme as sp

sp.new("pad")
sp.create("pad", wavetype=sp.waves.sine)

# A list of notes sounds together.
sp.play("pad", ["C4", "E4", "G4"], duration=2.0)

print("C major")
`},
	{"melody", `import sprechstimme as sp

sp.new("lead")
sp.create("lead", wavetype=sp.waves.sawtooth)

# One step after another up the C major scale.
scale = ["C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5"]
for note in scale:
    sp.play("lead", note, duration=0.3)

print("Scale of", len(scale), "notes")
`},
	{"synthesis", `import sprechstimme as sp

# The same pitch through every wave shape.
for shape in [sp.waves.sine, sp.waves.square, sp.waves.sawtooth, sp.waves.triangle]:
    sp.new("osc")
    sp.create("osc", wavetype=shape)
    print("A4 as", shape)
    sp.play("osc", "A4", duration=0.75)
    rest(0.25)
`},
	{"arpeggio", `import sprechstimme as sp

sp.new("arp")
sp.create("arp", wavetype=sp.waves.triangle)

up = ["C4", "E4", "G4", "C5"]
down = ["G4", "E4"]
for i in range(2):
    for note in up + down:
        sp.play("arp", note, duration=0.2)

# The same notes in a repeatable random order.
for note in shuffle(up, "arp"):
    sp.play("arp", note, duration=0.2)

print("Arpeggio done")
`},
	{"sequence", `# Patterns play on the mixer's wave.
set_wave("square")
set_volume(0.4)

# Pairs of (note, seconds). None is a rest.
steps = [
    ("C4", 0.4),
    ("E4", 0.4),
    (None, 0.2),
    ("G4", 0.4),
    (["C4", "E4", "G4", "C5"], 0.8),
]
play_pattern(steps, tempo=100)

print("Sequence of", len(steps), "steps")
`},
}

// Lookup returns the example with the given name.
func Lookup(name string) (Example, bool) {
	for _, ex := range Examples {
		if ex.Name == name {
			return ex, true
		}
	}
	return Example{}, false
}
