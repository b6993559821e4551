package notify

import (
	"context"
	"fmt"
	"strings"
)

// Forwarder sends text into a Telegram chat. The daemon's inbound client
// satisfies it, so the relay destination rides the same connection the
// watcher listens on.
type Forwarder interface {
	SendTo(ctx context.Context, chatID int64, text string) error
}

// relayMaxLen is the Telegram message size cap.
const relayMaxLen = 4096

// Relay re-posts the matched message into another Telegram chat.
type Relay struct {
	fwd    Forwarder
	chatID int64
}

func NewRelay(fwd Forwarder, chatID int64) (*Relay, error) {
	if fwd == nil {
		return nil, &ConfigError{Channel: "relay", Reason: "no telegram client available"}
	}
	if chatID == 0 {
		return nil, &ConfigError{Channel: "relay", Reason: "chat_id is required"}
	}
	return &Relay{fwd: fwd, chatID: chatID}, nil
}

func (r *Relay) Name() string { return "Relay" }

func (r *Relay) Send(ctx context.Context, alert Alert) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Keyword alert [%s]\n", alert.Chat)
	fmt.Fprintf(&b, "Keywords: %s\n\n", alert.KeywordLine())
	b.WriteString(alert.Text)
	return r.fwd.SendTo(ctx, r.chatID, truncate(b.String(), relayMaxLen))
}
