package notify

import (
	"context"
	"time"
)

// Webhook POSTs the alert as JSON to a user-supplied endpoint.
type Webhook struct {
	URL string
}

func NewWebhook(rawURL string) (*Webhook, error) {
	if rawURL == "" {
		return nil, &ConfigError{Channel: "webhook", Reason: "url is required"}
	}
	return &Webhook{URL: rawURL}, nil
}

func (g *Webhook) Name() string { return "Webhook" }

func (g *Webhook) Send(ctx context.Context, alert Alert) error {
	payload := map[string]interface{}{
		"chat":     alert.Chat,
		"keywords": alert.Keywords,
		"message":  alert.Text,
		"agent":    "TeleWatch",
		"ts":       alert.Time.UTC().Format(time.RFC3339),
	}
	return postJSON(ctx, g.URL, payload)
}
