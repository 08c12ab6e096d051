package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/remeh/sizedwaitgroup"

	"github.com/simukka/sprechstimme-playground/audio"
	"github.com/simukka/sprechstimme-playground/audio/softsynth"
	"github.com/simukka/sprechstimme-playground/audio/wavfile"
	"github.com/simukka/sprechstimme-playground/script"
)

// renderScript evaluates src and renders its pattern to WAV bytes. The
// program's set_volume becomes the render gain.
func renderScript(src string, rate int, shape audio.WaveShape, log slog.Logger) ([]byte, *script.Result, error) {
	res, err := script.Run(src)
	if err != nil {
		return nil, nil, err
	}
	if len(res.Events) == 0 {
		return nil, res, fmt.Errorf("program plays nothing")
	}
	if res.WaveShape != "" {
		shape = res.WaveShape
	}
	opts := softsynth.RenderOptions{
		SampleRate: rate,
		WaveShape:  shape,
		Tempo:      res.Tempo,
		Volume:     res.Volume,
		Log:        log,
	}
	samples, err := softsynth.RenderEvents(res.Events, opts)
	if err != nil {
		return nil, res, err
	}
	data, err := wavfile.Encode(samples, rate)
	return data, res, err
}

// renderCmd renders one or more programs. With several files each is
// written next to its source, up to -jobs at a time.
func renderCmd(args []string, l *logs) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	out := fs.String("o", "", "Output WAV file for a single FILE (default: FILE with .wav)")
	rate := fs.Int("rate", audio.DefaultConfig.SampleRate, "Sample rate")
	wave := fs.String("wave", string(audio.DefaultConfig.WaveShape), "Initial wave shape")
	jobs := fs.Int("jobs", runtime.NumCPU(), "Files rendered at once")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 || (*out != "" && len(files) > 1) {
		return errUsage
	}
	shape, err := audio.ParseWaveShape(*wave)
	if err != nil {
		return err
	}
	if *jobs < 1 {
		*jobs = 1
	}

	log := l.logger("PLAY")
	render := func(path, dst string) error {
		if dst == "" {
			if path == "-" {
				return fmt.Errorf("%w: -o is required when reading standard input", errUsage)
			}
			dst = strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
		}
		src, err := readSource(path)
		if err != nil {
			return err
		}
		data, res, err := renderScript(src, *rate, shape, l.logger("REND"))
		if res != nil && len(files) == 1 {
			for _, line := range res.Output {
				fmt.Println(line)
			}
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return err
		}
		log.Infof("Wrote %s (%s, %s)", dst, seconds(res.Duration()), size(len(data)))
		return nil
	}

	if len(files) == 1 {
		return render(files[0], *out)
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	swg := sizedwaitgroup.New(*jobs)
	for _, path := range files {
		swg.Add()
		go func(path string) {
			defer swg.Done()
			if err := render(path, ""); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(path)
	}
	swg.Wait()
	return errors.Join(errs...)
}
