// Package health maintains a liveness file: a fresh RFC3339 timestamp on a
// fixed interval while the daemon runs. Monitoring can alert on a stale file.
package health

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

const defaultInterval = 60 * time.Second

// Writer rewrites Path with the current UTC time every Interval.
type Writer struct {
	Path     string
	Interval time.Duration
	Logger   zerolog.Logger
	// Now is injectable for tests.
	Now func() time.Time
}

// New builds a Writer. A zero interval falls back to one minute.
func New(path string, interval time.Duration, logger zerolog.Logger) *Writer {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Writer{Path: path, Interval: interval, Logger: logger, Now: time.Now}
}

// Run touches the file immediately, then on every tick until ctx is
// cancelled. A failed write is logged and retried on the next tick; it never
// takes the daemon down.
func (w *Writer) Run(ctx context.Context) {
	if w.Path == "" {
		return
	}
	w.write()
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.write()
		}
	}
}

// Touch writes the timestamp once.
func (w *Writer) Touch() error {
	if err := os.MkdirAll(filepath.Dir(w.Path), 0o755); err != nil {
		return fmt.Errorf("mkdir health dir: %w", err)
	}
	stamp := w.Now().UTC().Format(time.RFC3339) + "\n"
	if err := os.WriteFile(w.Path, []byte(stamp), 0o640); err != nil {
		return fmt.Errorf("write health file: %w", err)
	}
	return nil
}

func (w *Writer) write() {
	if err := w.Touch(); err != nil {
		w.Logger.Error().Err(err).Str("path", w.Path).Msg("health file update failed")
	}
}
