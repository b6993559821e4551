package notify

import (
	"context"
	"fmt"
	"time"
)

// discordDescLimit is the embed description cap.
const discordDescLimit = 4096

// discordColor is the embed accent, a light blue.
const discordColor = 5814783

// Discord posts the alert as a webhook embed.
type Discord struct {
	WebhookURL string
}

func NewDiscord(webhookURL string) (*Discord, error) {
	if webhookURL == "" {
		return nil, &ConfigError{Channel: "discord", Reason: "webhook_url is required"}
	}
	return &Discord{WebhookURL: webhookURL}, nil
}

func (d *Discord) Name() string { return "Discord" }

func (d *Discord) Send(ctx context.Context, alert Alert) error {
	embed := map[string]interface{}{
		"title":       fmt.Sprintf("Keyword alert [%s]", alert.Chat),
		"description": truncate(alert.Text, discordDescLimit),
		"color":       discordColor,
		"timestamp":   alert.Time.UTC().Format(time.RFC3339),
	}
	// Discord rejects embed fields with empty values
	if len(alert.Keywords) > 0 {
		embed["fields"] = []map[string]interface{}{
			{"name": "Keywords", "value": alert.KeywordLine(), "inline": true},
		}
	}
	payload := map[string]interface{}{
		"username": "TeleWatch",
		"embeds":   []map[string]interface{}{embed},
	}
	return postJSON(ctx, d.WebhookURL, payload)
}
