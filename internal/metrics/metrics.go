// Package metrics provides counters, Prometheus collectors, and HTTP
// handlers for exporting TeleWatch runtime metrics.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const counterInc int64 = 1

// Stats tracks the session counters. The atomics are the source of truth for
// the JSON snapshot; every update is mirrored into Prometheus collectors on
// the instance's own registry, so two Stats never collide.
type Stats struct {
	// 1. Internal State (Source of Truth)
	messagesProcessed   int64
	matchesFound        int64
	filterRejections    int64
	notificationsSent   int64
	notificationsFailed int64
	lastMessage         int64

	// 2. Prometheus Collectors
	registry             *prometheus.Registry
	promProcessed        prometheus.Counter
	promMatches          prometheus.Counter
	promRejections       prometheus.Counter
	promDeliveries       *prometheus.CounterVec
	promDispatchDuration prometheus.Histogram
	promLastMessage      prometheus.Gauge
}

// NewStats builds a Stats with all collectors registered.
func NewStats() *Stats {
	s := &Stats{registry: prometheus.NewRegistry()}
	s.promProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telewatch_messages_processed_total",
			Help: "Total messages read from watched chats",
		},
	)
	s.promMatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telewatch_matches_found_total",
			Help: "Total messages that passed the keyword filter",
		},
	)
	s.promRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telewatch_filter_rejections_total",
			Help: "Total messages rejected by the keyword filter",
		},
	)
	s.promDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telewatch_notifications_total",
			Help: "Total notification deliveries",
		},
		[]string{"status"},
	)
	s.promDispatchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name: "telewatch_dispatch_duration_seconds",
			Help: "Duration of full alert dispatch per matched message",
			Buckets: []float64{
				0.05,
				0.1,
				0.25,
				0.5,
				1,
				2,
				5,
				10,
				30,
				60,
			},
		},
	)
	s.promLastMessage = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "telewatch_last_message_timestamp_seconds",
			Help: "Unix timestamp of the last message seen",
		},
	)
	s.registry.MustRegister(
		s.promProcessed,
		s.promMatches,
		s.promRejections,
		s.promDeliveries,
		s.promDispatchDuration,
		s.promLastMessage,
	)
	return s
}

// 3. Public API (Updates both Atomic and Prometheus)

// IncProcessed increments the counter of messages read from watched chats.
func (s *Stats) IncProcessed() {
	atomic.AddInt64(&s.messagesProcessed, counterInc)
	s.promProcessed.Inc()
}

// IncMatch increments the counter of messages that passed the filter.
func (s *Stats) IncMatch() {
	atomic.AddInt64(&s.matchesFound, counterInc)
	s.promMatches.Inc()
}

// IncRejected increments the counter of messages the filter turned away.
func (s *Stats) IncRejected() {
	atomic.AddInt64(&s.filterRejections, counterInc)
	s.promRejections.Inc()
}

// IncSent increments the counter of successful notification deliveries.
func (s *Stats) IncSent() {
	atomic.AddInt64(&s.notificationsSent, counterInc)
	s.promDeliveries.WithLabelValues("success").Inc()
}

// IncFailed increments the counter of failed notification deliveries.
func (s *Stats) IncFailed() {
	atomic.AddInt64(&s.notificationsFailed, counterInc)
	s.promDeliveries.WithLabelValues("failure").Inc()
}

// ObserveDispatchDuration records the duration (in seconds) spent delivering
// one matched message to all destinations.
func (s *Stats) ObserveDispatchDuration(seconds float64) {
	s.promDispatchDuration.Observe(seconds)
}

// SetLastMessage stores the provided time as the last-seen message timestamp
// and updates the corresponding Prometheus gauge.
func (s *Stats) SetLastMessage(t time.Time) {
	atomic.StoreInt64(&s.lastMessage, t.Unix())
	s.promLastMessage.Set(float64(t.Unix()))
}

// 4. JSON Snapshot Struct (For status endpoint and session summary)

// StatsSnapshot is a snapshot of metrics for JSON encoding.
type StatsSnapshot struct {
	MessagesProcessed   int64  `json:"messages_processed"`
	MatchesFound        int64  `json:"matches_found"`
	FilterRejections    int64  `json:"filter_rejections"`
	NotificationsSent   int64  `json:"notifications_sent"`
	NotificationsFailed int64  `json:"notifications_failed"`
	LastMessage         int64  `json:"last_message_timestamp"`
	LastMessageHuman    string `json:"last_message_human"`
}

// Snapshot returns a StatsSnapshot with the current values of all internal
// counters and timestamps.
func (s *Stats) Snapshot() StatsSnapshot {
	ts := atomic.LoadInt64(&s.lastMessage)
	return StatsSnapshot{
		MessagesProcessed:   atomic.LoadInt64(&s.messagesProcessed),
		MatchesFound:        atomic.LoadInt64(&s.matchesFound),
		FilterRejections:    atomic.LoadInt64(&s.filterRejections),
		NotificationsSent:   atomic.LoadInt64(&s.notificationsSent),
		NotificationsFailed: atomic.LoadInt64(&s.notificationsFailed),
		LastMessage:         ts,
		LastMessageHuman:    time.Unix(ts, 0).Format(time.RFC3339),
	}
}

// 5. Handlers

// PromHandler returns an HTTP handler exposing this instance's collectors.
func (s *Stats) PromHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// JSONHandler returns an HTTP handler that serves the current metrics as a
// JSON-encoded StatsSnapshot.
func (s *Stats) JSONHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(s.Snapshot())
	})
}
