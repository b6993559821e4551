package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/orizaruk/TeleWatch/internal/config"
)

// whatsappMaxLen is Twilio's WhatsApp body limit.
const whatsappMaxLen = 1600

// WhatsApp delivers alerts through Twilio's WhatsApp bridge. Numbers carry
// the whatsapp: prefix on the wire.
type WhatsApp struct {
	AccountSID, AuthToken, From, To string
}

func NewWhatsApp(cfg config.TwilioConfig) (*WhatsApp, error) {
	if err := checkTwilio("whatsapp", cfg); err != nil {
		return nil, err
	}
	return &WhatsApp{AccountSID: cfg.AccountSID, AuthToken: cfg.AuthToken, From: cfg.From, To: cfg.To}, nil
}

func (w *WhatsApp) Name() string { return "WhatsApp" }

func (w *WhatsApp) Send(ctx context.Context, alert Alert) error {
	body := fmt.Sprintf("*Keyword alert* - %s\nKeywords: %s\n\n%s", alert.Chat, alert.KeywordLine(), alert.Text)
	return sendTwilio(ctx, w.AccountSID, w.AuthToken,
		whatsappNumber(w.From), whatsappNumber(w.To), truncate(body, whatsappMaxLen))
}

// whatsappNumber ensures the whatsapp: prefix Twilio expects.
func whatsappNumber(n string) string {
	if strings.HasPrefix(n, "whatsapp:") {
		return n
	}
	return "whatsapp:" + n
}
