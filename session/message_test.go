package session

import (
	"errors"
	"testing"

	"github.com/simukka/sprechstimme-playground/audio"
)

// TestMessage_Validate tests which messages a peer may publish.
func TestMessage_Validate(t *testing.T) {
	good := []audio.Event{audio.Note("C4", 0.5), audio.Rest(0.25)}
	cases := []struct {
		name string
		msg  Message
		want error
	}{
		{"score", Score(good, 120), nil},
		{"stop", Message{Type: TypeStop}, nil},
		{"join", Message{Type: TypeJoin}, ErrUnknownType},
		{"empty", Score(nil, 120), ErrEmptyScore},
		{"too big", Score(make([]audio.Event, MaxEvents+1), 120), ErrScoreSize},
		{"tempo", Score(good, -1), audio.ErrInvalidTempo},
		{"note", Score([]audio.Event{audio.Note("Q4", 1)}, 0), audio.ErrUnknownNote},
		{"duration", Score([]audio.Event{audio.Note("C4", 0)}, 0), audio.ErrInvalidDuration},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.msg.Validate()
			if c.want == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if c.want != nil && !errors.Is(err, c.want) {
				t.Errorf("Expected %v, got %v", c.want, err)
			}
		})
	}
}

// TestDecode tests that a published score keeps its note forms.
func TestDecode(t *testing.T) {
	m, err := Decode([]byte(`{"type":"score","tempo":90,"events":[{"note":"C4","duration":0.5},{"note":["C4","E4"],"duration":1},{"note":null,"duration":0.25}]}`))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if m.Type != TypeScore || m.Tempo != 90 || len(m.Events) != 3 {
		t.Fatalf("Expected a 3 event score at 90, got %+v", m)
	}
	if !m.Events[1].Chord || len(m.Events[1].Notes) != 2 {
		t.Errorf("Expected the second event to be a chord, got %v", m.Events[1])
	}
	if !m.Events[2].IsRest() {
		t.Errorf("Expected the third event to be a rest, got %v", m.Events[2])
	}
	if err := m.Validate(); err != nil {
		t.Errorf("Expected the score to validate, got %v", err)
	}
}
