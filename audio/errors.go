package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNote is returned for a pitch name missing from the table.
	ErrUnknownNote = errors.New("unknown note")

	// ErrLengthMismatch is returned when a melody's note and duration
	// lists differ in length.
	ErrLengthMismatch = errors.New("notes and durations differ in length")

	ErrInvalidDuration  = errors.New("duration must be a positive number of seconds")
	ErrInvalidTempo     = errors.New("tempo must be a positive number")
	ErrUnknownWaveShape = errors.New("unknown wave shape")

	// ErrStopped completes playbacks that were cut short by StopAll.
	ErrStopped = errors.New("stopped")

	// ErrNotInitialized is returned by backends used before Open.
	ErrNotInitialized = errors.New("audio output not initialized")
)

// DecodeError reports encoded audio that could not be turned into a
// playable buffer.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode audio: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
