//go:build !headless

package speaker

import (
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/ebitengine/oto/v3"
)

// Speaker plays a Source through oto. Only one oto context may exist per
// process, so open a single Speaker and share the synth behind it.
type Speaker struct {
	src    Source
	log    slog.Logger
	ctx    *oto.Context
	player *oto.Player

	mu  sync.Mutex
	buf []float32
}

// Open starts pulling from src immediately.
func Open(src Source, log slog.Logger) (*Speaker, error) {
	op := &oto.NewContextOptions{
		SampleRate:   src.SampleRate(),
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   40 * time.Millisecond,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open sound device: %w", err)
	}
	<-ready

	sp := &Speaker{src: src, log: log, ctx: ctx}
	sp.player = ctx.NewPlayer(sp)
	sp.player.Play()
	log.Debugf("Speaker open at %d Hz", src.SampleRate())
	return sp, nil
}

// Read implements io.Reader for the oto player.
func (sp *Speaker) Read(p []byte) (int, error) {
	sp.mu.Lock()
	defer sp.mu.Unlock()
	n := len(p) / 4
	if cap(sp.buf) < n {
		sp.buf = make([]float32, n)
	}
	samples := sp.buf[:n]
	if _, err := sp.src.Read(samples); err != nil {
		return 0, err
	}
	encode(p, samples)
	return n * 4, nil
}

func (sp *Speaker) Close() error {
	if err := sp.player.Close(); err != nil {
		return fmt.Errorf("close player: %w", err)
	}
	return nil
}
