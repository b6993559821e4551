// Package daemon runs the monitoring loop: it reads chat messages from a
// source channel, filters them for keywords, and hands matches to the
// notification registry.
package daemon

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/orizaruk/TeleWatch/internal/config"
	"github.com/orizaruk/TeleWatch/internal/filter"
	"github.com/orizaruk/TeleWatch/internal/metrics"
	"github.com/orizaruk/TeleWatch/internal/notify"
	"github.com/orizaruk/TeleWatch/internal/telegram"
)

// previewLen bounds how much message text is quoted in match log lines.
const previewLen = 200

// Watcher is the core loop that turns watched-chat messages into alerts.
type Watcher struct {
	cfg      *config.Config
	filter   *filter.Filter
	registry *notify.Registry
	stats    *metrics.Stats
	msgs     <-chan telegram.Message
	logger   zerolog.Logger
	Now      func() time.Time // injectable clock for testing
}

// New assembles a watcher over an already-built filter and destination
// registry. msgs is the message source, normally telegram.Client.Messages().
func New(cfg *config.Config, f *filter.Filter, reg *notify.Registry, stats *metrics.Stats, msgs <-chan telegram.Message, logger zerolog.Logger) *Watcher {
	return &Watcher{
		cfg:      cfg,
		filter:   f,
		registry: reg,
		stats:    stats,
		msgs:     msgs,
		logger:   logger,
		Now:      time.Now,
	}
}

// Run consumes messages until the source channel closes or ctx is cancelled.
// Messages are handled strictly one at a time, and cancellation is only
// observed while idle: a message that entered processing is always carried
// through every destination before the loop exits. Per-attempt send timeouts
// bound how long that tail can take.
func (w *Watcher) Run(ctx context.Context) {
	w.logger.Info().
		Int("chats", len(w.cfg.Chats)).
		Int("keywords", len(w.filter.Keywords())).
		Int("destinations", w.registry.Len()).
		Bool("dry_run", w.cfg.DryRun).
		Msg("starting watcher")

	for {
		select {
		case msg, ok := <-w.msgs:
			if !ok {
				w.logger.Info().Msg("message source closed")
				w.logSummary()
				return
			}
			w.process(ctx, msg)
		case <-ctx.Done():
			w.logger.Info().Msg("stopping watcher")
			w.logSummary()
			return
		}
	}
}

// process runs one message through the filter and, on a match, through every
// registered destination. It returns only after all outcomes are in.
func (w *Watcher) process(ctx context.Context, msg telegram.Message) {
	w.stats.IncProcessed()
	w.stats.SetLastMessage(msg.Time)

	matched, ok := w.filter.Match(msg.Text)
	if !ok {
		w.stats.IncRejected()
		w.logger.Debug().Str("chat", msg.Chat).Msg("no keyword match")
		return
	}

	w.stats.IncMatch()
	w.logger.Info().
		Str("chat", msg.Chat).
		Strs("keywords", matched).
		Str("preview", preview(msg.Text)).
		Msg("keyword match")

	if w.cfg.DryRun {
		w.logger.Info().Str("chat", msg.Chat).Msg("dry-run mode: skipping delivery")
		return
	}
	if w.registry.Len() == 0 {
		// log-only mode: the match line above is the whole alert
		return
	}

	alert := notify.Alert{Chat: msg.Chat, Text: msg.Text, Keywords: matched, Time: msg.Time}
	start := w.Now()
	// dispatch runs detached from shutdown: once a message entered processing
	// its sends complete or exhaust their retries, bounded by the per-attempt
	// timeout
	outcomes := w.registry.Dispatch(context.WithoutCancel(ctx), alert)
	w.stats.ObserveDispatchDuration(w.Now().Sub(start).Seconds())

	sent, failed := 0, 0
	for _, o := range outcomes {
		if o.Err != nil {
			w.stats.IncFailed()
			failed++
			continue
		}
		w.stats.IncSent()
		sent++
	}
	w.logger.Debug().Str("chat", msg.Chat).Int("sent", sent).Int("failed", failed).Msg("alert dispatched")
}

// logSummary emits one end-of-run accounting line.
func (w *Watcher) logSummary() {
	snap := w.stats.Snapshot()
	w.logger.Info().
		Int64("processed", snap.MessagesProcessed).
		Int64("matched", snap.MatchesFound).
		Int64("sent", snap.NotificationsSent).
		Int64("failed", snap.NotificationsFailed).
		Msg("session summary")
}

// preview clips text for log output so one giant message cannot flood the log.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewLen {
		return text
	}
	return string(runes[:previewLen]) + "..."
}
