// Command sprechplay runs playground programs outside the browser: live
// through the sound card, rendered to WAV, or from the keyboard.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/decred/slog"
)

const usageText = `usage: sprechplay [-log-level LEVEL] COMMAND [ARGS]

commands:
  run FILE                 play a program through the sound card
  render [-o OUT] FILE...  render programs to WAV files
  wav [-parallel] FILE...  play WAV files
  keys                     play notes from the keyboard

FILE may be - for standard input.
`

// logs hands out subsystem loggers that share one backend and level.
type logs struct {
	backend *slog.Backend
	level   slog.Level
}

func newLogs(w io.Writer, level slog.Level) *logs {
	return &logs{backend: slog.NewBackend(w), level: level}
}

func (l *logs) logger(tag string) slog.Logger {
	if l == nil {
		return slog.Disabled
	}
	log := l.backend.Logger(tag)
	log.SetLevel(l.level)
	return log
}

func readSource(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

var errUsage = errors.New("bad usage")

func main() {
	logLevel := flag.String("log-level", "info", "Log level (trace, debug, info, warn, error, critical, off)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usageText) }
	flag.Parse()

	level, ok := slog.LevelFromString(*logLevel)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", *logLevel)
		os.Exit(2)
	}
	l := newLogs(os.Stderr, level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "run":
		err = runCmd(ctx, args[1:], l)
	case "render":
		err = renderCmd(args[1:], l)
	case "wav":
		err = wavCmd(ctx, args[1:], l)
	case "keys":
		err = keysCmd(args[1:], l)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		err = errUsage
	}
	switch {
	case errors.Is(err, errUsage):
		flag.Usage()
		os.Exit(2)
	case errors.Is(err, context.Canceled):
	case err != nil:
		fmt.Fprintf(os.Stderr, "sprechplay: %v\n", err)
		os.Exit(1)
	}
}
