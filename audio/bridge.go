package audio

import (
	"context"
	"encoding/base64"
	"errors"
)

// Playback is one encoded-audio request. It completes when the buffer
// source reports its natural end, when decoding fails, or when StopAll
// cuts it short.
type Playback struct {
	engine   *Engine
	source   Source
	duration float64
	err      error
	finished bool
	done     chan struct{}
}

// Done is closed when the playback has completed.
func (p *Playback) Done() <-chan struct{} { return p.done }

// Err returns nil while the playback is running or after it ended
// naturally. Decode failures return a *DecodeError and stopped playbacks
// ErrStopped.
func (p *Playback) Err() error {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.err
}

// Duration is the decoded buffer's length, or 0 before decoding finished.
func (p *Playback) Duration() float64 {
	p.engine.mu.Lock()
	defer p.engine.mu.Unlock()
	return p.duration
}

// Wait blocks until the playback completes and returns its result.
func (p *Playback) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Playback) finishLocked(err error) {
	if p.finished {
		return
	}
	p.finished = true
	p.err = err
	close(p.done)
}

// PlayEncodedAudio decodes data and plays it once through the master
// output. Concurrent calls are independent.
func (e *Engine) PlayEncodedAudio(data []byte) *Playback {
	e.mu.Lock()
	defer e.unlock()

	pb := &Playback{engine: e, done: make(chan struct{})}
	if err := e.ensureOpenLocked(); err != nil {
		e.reportLocked(err)
		pb.finishLocked(err)
		return pb
	}
	e.playbacks[pb] = struct{}{}
	e.log.Debugf("Decoding %d bytes of audio", len(data))
	e.backend.Decode(data, func(buf Buffer, err error) {
		e.decoded(pb, buf, err)
	})
	return pb
}

// PlayBase64 is PlayEncodedAudio for base64 text.
func (e *Engine) PlayBase64(s string) *Playback {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		e.mu.Lock()
		defer e.unlock()
		pb := &Playback{engine: e, done: make(chan struct{})}
		derr := &DecodeError{Err: err}
		e.reportLocked(derr)
		pb.finishLocked(derr)
		return pb
	}
	return e.PlayEncodedAudio(data)
}

func (e *Engine) decoded(pb *Playback, buf Buffer, err error) {
	e.mu.Lock()
	defer e.unlock()
	if pb.finished {
		// stopped while decoding
		return
	}
	if err == nil && buf == nil {
		err = errors.New("no audio data")
	}
	if err != nil {
		derr := &DecodeError{Err: err}
		e.reportLocked(derr)
		pb.finishLocked(derr)
		delete(e.playbacks, pb)
		e.updateLocked()
		return
	}

	src := e.backend.NewSource(e.out, buf)
	pb.source = src
	pb.duration = buf.Duration()
	src.OnEnded(func() { e.playbackEnded(pb) })
	src.Start(e.backend.Now())
	e.log.Debugf("Playing %.3fs buffer", pb.duration)
	e.updateLocked()
}

func (e *Engine) playbackEnded(pb *Playback) {
	e.mu.Lock()
	defer e.unlock()
	pb.source.Disconnect()
	if pb.finished {
		return
	}
	pb.finishLocked(nil)
	delete(e.playbacks, pb)
	e.log.Debugf("Playback finished")
	e.updateLocked()
}
