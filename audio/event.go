package audio

import (
	"encoding/json"
	"fmt"
	"math"
)

// Event is one step of a pattern: a single note, a chord, or a rest when
// Notes is empty. Chord is kept separately from len(Notes) so a one-note
// collection still plays chord-style.
type Event struct {
	Notes    []string
	Chord    bool
	Duration float64
	// Shape overrides the mixer's wave shape for this step.
	Shape WaveShape
}

func Note(name string, duration float64) Event {
	return Event{Notes: []string{name}, Duration: duration}
}

func Chord(names []string, duration float64) Event {
	return Event{Notes: append([]string(nil), names...), Chord: true, Duration: duration}
}

func Rest(duration float64) Event {
	return Event{Duration: duration}
}

func (ev Event) IsRest() bool {
	return len(ev.Notes) == 0
}

func (ev Event) String() string {
	switch {
	case ev.IsRest():
		return fmt.Sprintf("rest %gs", ev.Duration)
	case ev.Chord:
		return fmt.Sprintf("chord %v %gs", ev.Notes, ev.Duration)
	default:
		return fmt.Sprintf("%s %gs", ev.Notes[0], ev.Duration)
	}
}

// Validate checks the event the way the scheduler will: a usable duration
// and, for sounding steps, names found in the pitch table.
func (ev Event) Validate() error {
	if !validDuration(ev.Duration) {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, ev.Duration)
	}
	for _, name := range ev.Notes {
		if _, err := Lookup(name); err != nil {
			return err
		}
	}
	return nil
}

// validDuration reports whether d can be used as a step or voice length.
func validDuration(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && !math.IsNaN(d)
}

type eventJSON struct {
	Note     json.RawMessage `json:"note,omitempty"`
	Duration float64         `json:"duration"`
	Wave     WaveShape       `json:"wave,omitempty"`
}

// MarshalJSON writes {"note": "C4" | ["C4","E4"] | null, "duration": d}.
func (ev Event) MarshalJSON() ([]byte, error) {
	out := eventJSON{Duration: ev.Duration, Wave: ev.Shape}
	var err error
	switch {
	case ev.Chord:
		out.Note, err = json.Marshal(ev.Notes)
	case !ev.IsRest():
		out.Note, err = json.Marshal(ev.Notes[0])
	}
	if err != nil {
		return nil, err
	}
	return json.Marshal(out)
}

func (ev *Event) UnmarshalJSON(data []byte) error {
	var in eventJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*ev = Event{Duration: in.Duration}
	if in.Wave != "" {
		shape, err := ParseWaveShape(string(in.Wave))
		if err != nil {
			return err
		}
		ev.Shape = shape
	}
	if len(in.Note) == 0 || string(in.Note) == "null" {
		return nil
	}
	var name string
	if err := json.Unmarshal(in.Note, &name); err == nil {
		ev.Notes = []string{name}
		return nil
	}
	var names []string
	if err := json.Unmarshal(in.Note, &names); err != nil {
		return fmt.Errorf("event note must be a name or a list of names: %w", err)
	}
	ev.Notes = names
	ev.Chord = true
	return nil
}
