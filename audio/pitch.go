package audio

import (
	"fmt"
	"sort"
	"strings"
)

// pitches maps the note names the playground understands to their
// frequency in Hz. Sharps and flats are not part of the table.
var pitches = map[string]float64{
	"C3": 130.81, "D3": 146.83, "E3": 164.81, "F3": 174.61, "G3": 196.00, "A3": 220.00, "B3": 246.94,
	"C4": 261.63, "D4": 293.66, "E4": 329.63, "F4": 349.23, "G4": 392.00, "A4": 440.00, "B4": 493.88,
	"C5": 523.25, "D5": 587.33, "E5": 659.25, "F5": 698.46, "G5": 783.99, "A5": 880.00, "B5": 987.77,
	"C6": 1046.50, "D6": 1174.66, "E6": 1318.51,
}

// Lookup resolves a note name such as "A4" to its frequency. Names are
// matched case-insensitively; anything outside the table is an
// ErrUnknownNote.
func Lookup(name string) (float64, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if f, ok := pitches[key]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNote, name)
}

// Notes returns every table entry ordered from lowest to highest pitch.
func Notes() []string {
	names := make([]string, 0, len(pitches))
	for name := range pitches {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return pitches[names[i]] < pitches[names[j]]
	})
	return names
}
