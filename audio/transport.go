package audio

// StopAll cancels pending sequence steps, fades out every sounding voice
// and stops buffer playbacks. It may be called any number of times and
// does nothing before the output exists.
func (e *Engine) StopAll() {
	e.mu.Lock()
	defer e.unlock()
	if e.out == nil {
		return
	}
	now := e.backend.Now()

	for seq := range e.sequences {
		seq.cancelLocked()
	}
	// Voices are removed from the set as they are stopped, so iterate a
	// snapshot.
	for _, v := range e.snapshotVoicesLocked() {
		e.forceStopLocked(v, now)
	}
	for pb := range e.playbacks {
		if pb.source != nil {
			pb.source.Stop(now)
		}
		pb.finishLocked(ErrStopped)
		delete(e.playbacks, pb)
	}

	e.log.Infof("All audio stopped")
	wasIdle := e.status == StatusIdle
	e.updateLocked()
	if wasIdle {
		e.emitStatusLocked(StatusIdle)
	}
}

func (e *Engine) snapshotVoicesLocked() []*Voice {
	voices := make([]*Voice, 0, len(e.voices))
	for v := range e.voices {
		voices = append(voices, v)
	}
	return voices
}

// SetVolume clamps level to [0, 1] and applies it to the master gain
// immediately. Before the output exists the value is kept for Open. It
// returns the applied level.
func (e *Engine) SetVolume(level float64) float64 {
	e.mu.Lock()
	defer e.unlock()
	e.volume = clampVolume(level)
	if e.out != nil {
		e.out.Gain().SetValue(e.volume)
	}
	return e.volume
}

// SetWaveShape changes the shape used by voices created from now on.
func (e *Engine) SetWaveShape(shape WaveShape) error {
	e.mu.Lock()
	defer e.unlock()
	ws, err := ParseWaveShape(string(shape))
	if err != nil {
		e.reportLocked(err)
		return err
	}
	e.shape = ws
	return nil
}
