//go:build headless

package speaker

import (
	"sync"
	"time"

	"github.com/decred/slog"
)

const tick = 10 * time.Millisecond

// Speaker pulls samples from a Source in real time and discards them.
type Speaker struct {
	src  Source
	log  slog.Logger
	stop chan struct{}
	wg   sync.WaitGroup
}

func Open(src Source, log slog.Logger) (*Speaker, error) {
	sp := &Speaker{src: src, log: log, stop: make(chan struct{})}
	sp.wg.Add(1)
	go sp.run()
	log.Debugf("Headless speaker pacing %d Hz", src.SampleRate())
	return sp, nil
}

func (sp *Speaker) run() {
	defer sp.wg.Done()
	buf := make([]float32, framesPerTick(sp.src.SampleRate()))
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-sp.stop:
			return
		case <-t.C:
			if _, err := sp.src.Read(buf); err != nil {
				sp.log.Errorf("Read samples: %v", err)
				return
			}
		}
	}
}

func framesPerTick(rate int) int {
	return rate * int(tick) / int(time.Second)
}

func (sp *Speaker) Close() error {
	close(sp.stop)
	sp.wg.Wait()
	return nil
}
