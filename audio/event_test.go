package audio

import (
	"encoding/json"
	"errors"
	"testing"
)

// TestEvent_UnmarshalJSON tests the note, chord and rest forms
func TestEvent_UnmarshalJSON(t *testing.T) {
	var events []Event
	data := `[
		{"note": "C4", "duration": 0.5},
		{"note": ["C4", "E4", "G4"], "duration": 1},
		{"note": ["A4"], "duration": 0.25, "wave": "square"},
		{"note": null, "duration": 0.5},
		{"duration": 0.5}
	]`
	if err := json.Unmarshal([]byte(data), &events); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if len(events) != 5 {
		t.Fatalf("Expected 5 events, got %d", len(events))
	}
	if events[0].Chord || events[0].Notes[0] != "C4" {
		t.Errorf("Expected single note, got %v", events[0])
	}
	if !events[1].Chord || len(events[1].Notes) != 3 {
		t.Errorf("Expected three-note chord, got %v", events[1])
	}
	if !events[2].Chord || events[2].Shape != Square {
		t.Errorf("Expected one-note chord with square wave, got %v", events[2])
	}
	if !events[3].IsRest() || !events[4].IsRest() {
		t.Error("Expected rests")
	}
}

// TestEvent_UnmarshalJSON_Invalid tests malformed notes and shapes
func TestEvent_UnmarshalJSON_Invalid(t *testing.T) {
	for _, data := range []string{
		`{"note": 12, "duration": 1}`,
		`{"note": "C4", "duration": 1, "wave": "noise"}`,
	} {
		var ev Event
		if err := json.Unmarshal([]byte(data), &ev); err == nil {
			t.Errorf("Expected error for %s", data)
		}
	}
}

// TestEvent_MarshalJSON tests that chords keep their list form
func TestEvent_MarshalJSON(t *testing.T) {
	tests := []struct {
		ev   Event
		want string
	}{
		{Note("C4", 0.5), `{"note":"C4","duration":0.5}`},
		{Chord([]string{"A4"}, 1), `{"note":["A4"],"duration":1}`},
		{Rest(0.25), `{"duration":0.25}`},
	}
	for _, tt := range tests {
		got, err := json.Marshal(tt.ev)
		if err != nil {
			t.Fatalf("Marshal(%v) returned error: %v", tt.ev, err)
		}
		if string(got) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.ev, got, tt.want)
		}
	}
}

// TestEvent_Validate tests that events are checked for duration and pitch
// names before they reach the scheduler.
func TestEvent_Validate(t *testing.T) {
	cases := []struct {
		ev   Event
		want error
	}{
		{Note("C4", 0.5), nil},
		{Rest(1), nil},
		{Chord([]string{"C4", "E4"}, 1), nil},
		{Note("H9", 0.5), ErrUnknownNote},
		{Chord([]string{"C4", "nope"}, 1), ErrUnknownNote},
		{Note("C4", 0), ErrInvalidDuration},
		{Rest(-1), ErrInvalidDuration},
	}
	for _, c := range cases {
		err := c.ev.Validate()
		if c.want == nil && err != nil {
			t.Errorf("Expected %v to be valid, got %v", c.ev, err)
		}
		if c.want != nil && !errors.Is(err, c.want) {
			t.Errorf("Expected %v to fail with %v, got %v", c.ev, c.want, err)
		}
	}
}
