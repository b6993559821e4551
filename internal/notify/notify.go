// Package notify delivers matched-message alerts to the configured
// destinations. Types are split across multiple files (alert and shared
// helpers here, retry.go, registry.go, builder.go, one file per channel)
// to keep implementations focused.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// Alert is one matched message on its way out to the destinations.
type Alert struct {
	// Chat is the human-readable name of the source chat.
	Chat string
	// Text is the full message text that matched.
	Text string
	// Keywords lists the configured keywords found in Text, in configured
	// order and casing. Empty when no keywords are configured at all.
	Keywords []string
	// Time is when the message arrived.
	Time time.Time
}

// KeywordLine joins the matched keywords for display.
func (a Alert) KeywordLine() string {
	return strings.Join(a.Keywords, ", ")
}

// Service is the interface all destinations must implement. Send must honor
// ctx cancellation and classify failures via Permanent when a retry cannot
// possibly succeed.
type Service interface {
	Send(ctx context.Context, alert Alert) error
	Name() string
}

// httpClient is shared by the HTTP-backed destinations. Per-attempt deadlines
// come from the caller's context; the client timeout is a backstop.
var httpClient = &http.Client{Timeout: 30 * time.Second}

// postJSON is a shared helper used by the webhook-style destinations
func postJSON(ctx context.Context, url string, data interface{}) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return statusErr(resp.StatusCode)
	}
	return nil
}

// truncate caps s at max runes, ending in "..." when something was cut off.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
