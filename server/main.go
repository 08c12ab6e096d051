//go:build !js
// +build !js

package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/decred/slog"
	"github.com/hako/durafmt"
	"golang.org/x/sync/errgroup"
)

//go:embed index.html
var indexHTML []byte

const shutdownTimeout = 5 * time.Second

// newMux wires the page, the compiled client and the session API.
func newMux(hub *Hub, staticDir string) *http.ServeMux {
	static := http.FileServer(http.Dir(staticDir))

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || r.URL.Path == "/index.html" {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(indexHTML)
			return
		}
		static.ServeHTTP(w, r)
	})
	mux.Handle("/api/session", hub)
	mux.HandleFunc("/api/rooms", hub.handleRooms)
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	})
	return mux
}

func run(ctx context.Context, addr, staticDir string, ttl time.Duration, log slog.Logger) error {
	hub := NewHub(ttl, log)
	srv := &http.Server{
		Addr:              addr,
		Handler:           newMux(hub, staticDir),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Sprechstimme playground on http://localhost%s", addr)
		log.Infof("Serving static files from: %s", staticDir)
		log.Infof("Forgetting session peers after %s", durafmt.Parse(ttl).LimitFirstN(2))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Infof("Shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	staticDir := flag.String("static", ".", "Directory to serve static files from")
	logLevel := flag.String("log-level", "info", "Log level (trace, debug, info, warn, error, critical, off)")
	ttl := flag.Duration("session-ttl", 60*time.Second, "Forget session peers not seen for this long")
	flag.Parse()

	level, ok := slog.LevelFromString(*logLevel)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", *logLevel)
		os.Exit(2)
	}
	log := slog.NewBackend(os.Stdout).Logger("SRVR")
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *addr, *staticDir, *ttl, log); err != nil {
		log.Errorf("Server: %v", err)
		os.Exit(1)
	}
}
