package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/simukka/sprechstimme-playground/audio"
	"github.com/simukka/sprechstimme-playground/audio/softsynth"
	"github.com/simukka/sprechstimme-playground/audio/speaker"
	"github.com/simukka/sprechstimme-playground/script"
)

// fadeGrace bounds the wait for forced fades after an interrupt.
const fadeGrace = time.Second

// player is an engine on a software synth wired to the sound card.
type player struct {
	synth   *softsynth.Synth
	engine  *audio.Engine
	speaker *speaker.Speaker
}

func openPlayer(cfg audio.Config, l *logs, hooks audio.Hooks) (*player, error) {
	synth := softsynth.New(cfg.SampleRate,
		softsynth.WithLogger(l.logger("SYNT")),
		softsynth.WithAnalyserSize(cfg.AnalyserSize))
	engine := audio.NewEngine(synth,
		audio.WithConfig(cfg),
		audio.WithLogger(l.logger("AUDO")),
		audio.WithHooks(hooks))
	if err := engine.Init(); err != nil {
		return nil, err
	}
	spk, err := speaker.Open(synth, l.logger("SPKR"))
	if err != nil {
		return nil, err
	}
	return &player{synth: synth, engine: engine, speaker: spk}, nil
}

// wait blocks until the engine is idle. If ctx ends first everything is
// stopped and the fades are given a moment to play out.
func (p *player) wait(ctx context.Context) error {
	err := p.engine.WaitIdle(ctx)
	if err != nil {
		p.stop()
	}
	return err
}

func (p *player) stop() {
	p.engine.StopAll()
	ctx, cancel := context.WithTimeout(context.Background(), fadeGrace)
	defer cancel()
	p.engine.WaitIdle(ctx)
}

func (p *player) Close() error {
	return p.speaker.Close()
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

func runCmd(ctx context.Context, args []string, l *logs) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	rate := fs.Int("rate", audio.DefaultConfig.SampleRate, "Output sample rate")
	wave := fs.String("wave", string(audio.DefaultConfig.WaveShape), "Initial wave shape")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errUsage
	}
	shape, err := audio.ParseWaveShape(*wave)
	if err != nil {
		return err
	}
	src, err := readSource(fs.Arg(0))
	if err != nil {
		return err
	}
	res, err := script.Run(src)
	if err != nil {
		return err
	}
	for _, line := range res.Output {
		fmt.Println(line)
	}
	if len(res.Events) == 0 {
		return nil
	}

	log := l.logger("PLAY")
	cfg := audio.DefaultConfig
	cfg.SampleRate = *rate
	cfg.WaveShape = shape
	p, err := openPlayer(cfg, l, audio.Hooks{
		OnVoice: func(label string) { log.Debugf("Voice %s", label) },
	})
	if err != nil {
		return err
	}
	defer p.Close()

	if res.Volume != nil {
		p.engine.SetVolume(*res.Volume)
	}
	if res.WaveShape != "" {
		p.engine.SetWaveShape(res.WaveShape)
	}
	seq, err := p.engine.PlayPattern(res.Events, res.Tempo)
	if err != nil {
		return err
	}
	log.Infof("Playing %d steps (%s)", len(res.Events), seconds(seq.Duration()))
	return p.wait(ctx)
}

func wavCmd(ctx context.Context, args []string, l *logs) error {
	fs := flag.NewFlagSet("wav", flag.ContinueOnError)
	parallel := fs.Bool("parallel", false, "Play all files at once")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		return errUsage
	}

	log := l.logger("PLAY")
	p, err := openPlayer(audio.DefaultConfig, l, audio.Hooks{})
	if err != nil {
		return err
	}
	defer p.Close()

	play := func(ctx context.Context, path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		pb := p.engine.PlayEncodedAudio(data)
		if err := pb.Wait(ctx); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		log.Infof("Played %s (%s)", path, seconds(pb.Duration()))
		return nil
	}

	if !*parallel {
		for _, path := range files {
			if err := play(ctx, path); err != nil {
				return stopOnCancel(p, err)
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, path := range files {
		path := path
		g.Go(func() error {
			return play(gctx, path)
		})
	}
	return stopOnCancel(p, g.Wait())
}

// stopOnCancel silences whatever is still playing when err ended the
// command early.
func stopOnCancel(p *player, err error) error {
	if err == nil {
		return nil
	}
	p.stop()
	if errors.Is(err, audio.ErrStopped) {
		return context.Canceled
	}
	return err
}
