// Package session holds the messages exchanged by listen-along rooms: a
// peer publishes a score and every other peer in the room plays it on its
// own engine.
package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/simukka/sprechstimme-playground/audio"
)

// Message types
const (
	TypePeers = "peers"
	TypeJoin  = "join"
	TypeLeave = "leave"
	TypeScore = "score"
	TypeStop  = "stop"
)

// MaxEvents bounds the size of a published score.
const MaxEvents = 4096

var (
	ErrUnknownType = errors.New("unknown message type")
	ErrEmptyScore  = errors.New("score has no events")
	ErrScoreSize   = errors.New("score has too many events")
)

// Message is one server-sent event or one published score.
type Message struct {
	Type   string        `json:"type"`
	Room   string        `json:"room,omitempty"`
	Peer   string        `json:"peer,omitempty"`
	Peers  []string      `json:"peers,omitempty"`
	Events []audio.Event `json:"events,omitempty"`
	Tempo  float64       `json:"tempo,omitempty"`
	Time   int64         `json:"time"`
}

// Score builds a score message for events.
func Score(events []audio.Event, tempo float64) Message {
	return Message{Type: TypeScore, Events: events, Tempo: tempo}
}

// Validate checks a message a peer is allowed to publish.
func (m Message) Validate() error {
	switch m.Type {
	case TypeStop:
		return nil
	case TypeScore:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
	if len(m.Events) == 0 {
		return ErrEmptyScore
	}
	if len(m.Events) > MaxEvents {
		return fmt.Errorf("%w: %d > %d", ErrScoreSize, len(m.Events), MaxEvents)
	}
	if m.Tempo < 0 {
		return audio.ErrInvalidTempo
	}
	for i, ev := range m.Events {
		if err := ev.Validate(); err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
	}
	return nil
}

// Decode parses one message.
func Decode(data []byte) (Message, error) {
	var m Message
	err := json.Unmarshal(data, &m)
	return m, err
}

// Encode writes m as a single line of JSON, ready for an SSE data field.
func (m Message) Encode() ([]byte, error) {
	return json.Marshal(m)
}
