package notify

import (
	"github.com/rs/zerolog"

	"github.com/orizaruk/TeleWatch/internal/config"
)

// Build constructs the registry from the enabled destination blocks. A
// destination with incomplete settings is logged and left out; a bad channel
// config never aborts startup.
func Build(cfg *config.Config, fwd Forwarder, retrier *Retrier, logger zerolog.Logger) *Registry {
	reg := NewRegistry(retrier, logger)
	d := &cfg.Destinations
	entries := []struct {
		name    string
		enabled bool
		build   func() (Service, error)
	}{
		{"relay", d.Relay.Enabled, func() (Service, error) { return NewRelay(fwd, d.Relay.ChatID) }},
		{"email", d.Email.Enabled, func() (Service, error) { return NewEmail(d.Email) }},
		{"sms", d.SMS.Enabled, func() (Service, error) { return NewSMS(d.SMS) }},
		{"whatsapp", d.WhatsApp.Enabled, func() (Service, error) { return NewWhatsApp(d.WhatsApp) }},
		{"discord", d.Discord.Enabled, func() (Service, error) { return NewDiscord(d.Discord.WebhookURL) }},
		{"ntfy", d.Ntfy.Enabled, func() (Service, error) { return NewNtfy(d.Ntfy.Server, d.Ntfy.Topic) }},
		{"webhook", d.Webhook.Enabled, func() (Service, error) { return NewWebhook(d.Webhook.URL) }},
	}
	for _, e := range entries {
		if !e.enabled {
			continue
		}
		svc, err := e.build()
		if err != nil {
			logger.Warn().Err(err).Str("destination", e.name).Msg("destination disabled: invalid settings")
			continue
		}
		reg.Add(svc)
		logger.Info().Str("destination", e.name).Msg("destination enabled")
	}
	return reg
}
