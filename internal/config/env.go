package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides reads configuration values from environment variables and
// overrides fields in the provided Config. Returns an error if parsing fails.
// Overrides merge into file-loaded values field by field; an env var never
// clears a sibling setting of the same destination.
//
// Environment variables supported:
// - TELEWATCH_TELEGRAM_TOKEN (string, bot token)
// - TELEWATCH_CHATS (comma-separated chat IDs, e.g. "-1001234,-1005678")
// - TELEWATCH_KEYWORDS / TELEWATCH_EXCLUDED_KEYWORDS (comma-separated terms)
// - TELEWATCH_MAX_ATTEMPTS (int), TELEWATCH_BASE_DELAY / TELEWATCH_SEND_TIMEOUT (durations)
// - TELEWATCH_<CHANNEL>_ENABLED (bool) plus per-channel credentials, e.g.
//   TELEWATCH_EMAIL_HOST, TELEWATCH_TWILIO_ACCOUNT_SID, TELEWATCH_DISCORD_WEBHOOK,
//   TELEWATCH_NTFY_TOPIC, TELEWATCH_WEBHOOK_URL, TELEWATCH_RELAY_CHAT_ID
// - TELEWATCH_METRICS_ENABLED (bool), TELEWATCH_METRICS_PORT (int)
// - TELEWATCH_HEALTH_FILE (path), TELEWATCH_HEALTH_INTERVAL (duration)
// - TELEWATCH_LOG_FILE (path), TELEWATCH_LOG_LEVEL (debug/info/warn/error)
// - TELEWATCH_DRY_RUN (bool)
func ApplyEnvOverrides(cfg *Config) error {
	if err := applyWatchEnv(cfg); err != nil {
		return err
	}
	if err := applyDeliveryEnv(cfg); err != nil {
		return err
	}
	if err := applyDestinationEnv(cfg); err != nil {
		return err
	}
	if err := applyMetricsEnv(cfg); err != nil {
		return err
	}
	if err := applyRuntimeEnv(cfg); err != nil {
		return err
	}
	return nil
}

// applyWatchEnv covers the inbound side: token, chats, keyword lists
func applyWatchEnv(cfg *Config) error {
	if v := os.Getenv("TELEWATCH_TELEGRAM_TOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := os.Getenv("TELEWATCH_CHATS"); v != "" {
		ids, err := parseChatList(v)
		if err != nil {
			return fmt.Errorf("invalid TELEWATCH_CHATS: %w", err)
		}
		cfg.Chats = ids
	}
	if v := os.Getenv("TELEWATCH_KEYWORDS"); v != "" {
		cfg.Keywords = splitList(v)
	}
	if v := os.Getenv("TELEWATCH_EXCLUDED_KEYWORDS"); v != "" {
		cfg.ExcludedKeywords = splitList(v)
	}
	return nil
}

// applyDeliveryEnv covers the retry policy knobs
func applyDeliveryEnv(cfg *Config) error {
	if v := os.Getenv("TELEWATCH_MAX_ATTEMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TELEWATCH_MAX_ATTEMPTS: %w", err)
		}
		cfg.MaxAttempts = n
	}
	if v := os.Getenv("TELEWATCH_BASE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TELEWATCH_BASE_DELAY: %w", err)
		}
		cfg.BaseDelay = d
	}
	if v := os.Getenv("TELEWATCH_SEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TELEWATCH_SEND_TIMEOUT: %w", err)
		}
		cfg.SendTimeout = d
	}
	return nil
}

// applyDestinationEnv consolidates per-channel env parsing
func applyDestinationEnv(cfg *Config) error {
	if err := applyRelayAndEmailEnv(cfg); err != nil {
		return err
	}
	if err := applyTwilioEnv(cfg); err != nil {
		return err
	}
	return applyPushEnv(cfg)
}

func applyRelayAndEmailEnv(cfg *Config) error {
	d := &cfg.Destinations
	if err := setBoolEnv("TELEWATCH_RELAY_ENABLED", func(b bool) { d.Relay.Enabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("TELEWATCH_RELAY_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEWATCH_RELAY_CHAT_ID: %w", err)
		}
		d.Relay.ChatID = id
	}
	if err := setBoolEnv("TELEWATCH_EMAIL_ENABLED", func(b bool) { d.Email.Enabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("TELEWATCH_EMAIL_HOST"); v != "" {
		d.Email.Host = v
	}
	if v := os.Getenv("TELEWATCH_EMAIL_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TELEWATCH_EMAIL_PORT: %w", err)
		}
		d.Email.Port = p
	}
	if v := os.Getenv("TELEWATCH_EMAIL_FROM"); v != "" {
		d.Email.From = v
	}
	if v := os.Getenv("TELEWATCH_EMAIL_PASSWORD"); v != "" {
		d.Email.Password = v
	}
	if v := os.Getenv("TELEWATCH_EMAIL_TO"); v != "" {
		d.Email.To = splitList(v)
	}
	return nil
}

// applyTwilioEnv fills the shared Twilio credentials into both the SMS and
// WhatsApp blocks, then the per-channel numbers.
func applyTwilioEnv(cfg *Config) error {
	d := &cfg.Destinations
	if v := os.Getenv("TELEWATCH_TWILIO_ACCOUNT_SID"); v != "" {
		d.SMS.AccountSID = v
		d.WhatsApp.AccountSID = v
	}
	if v := os.Getenv("TELEWATCH_TWILIO_AUTH_TOKEN"); v != "" {
		d.SMS.AuthToken = v
		d.WhatsApp.AuthToken = v
	}
	if err := setBoolEnv("TELEWATCH_SMS_ENABLED", func(b bool) { d.SMS.Enabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("TELEWATCH_SMS_FROM"); v != "" {
		d.SMS.From = v
	}
	if v := os.Getenv("TELEWATCH_SMS_TO"); v != "" {
		d.SMS.To = v
	}
	if err := setBoolEnv("TELEWATCH_WHATSAPP_ENABLED", func(b bool) { d.WhatsApp.Enabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("TELEWATCH_WHATSAPP_FROM"); v != "" {
		d.WhatsApp.From = v
	}
	if v := os.Getenv("TELEWATCH_WHATSAPP_TO"); v != "" {
		d.WhatsApp.To = v
	}
	return nil
}

func applyPushEnv(cfg *Config) error {
	d := &cfg.Destinations
	if err := setBoolEnv("TELEWATCH_DISCORD_ENABLED", func(b bool) { d.Discord.Enabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("TELEWATCH_DISCORD_WEBHOOK"); v != "" {
		d.Discord.WebhookURL = v
	}
	if err := setBoolEnv("TELEWATCH_NTFY_ENABLED", func(b bool) { d.Ntfy.Enabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("TELEWATCH_NTFY_SERVER"); v != "" {
		d.Ntfy.Server = v
	}
	if v := os.Getenv("TELEWATCH_NTFY_TOPIC"); v != "" {
		d.Ntfy.Topic = v
	}
	if err := setBoolEnv("TELEWATCH_WEBHOOK_ENABLED", func(b bool) { d.Webhook.Enabled = b }); err != nil {
		return err
	}
	if v := os.Getenv("TELEWATCH_WEBHOOK_URL"); v != "" {
		d.Webhook.URL = v
	}
	return nil
}

// applyMetricsEnv consolidates metrics-related env parsing
func applyMetricsEnv(cfg *Config) error {
	if v := os.Getenv("TELEWATCH_METRICS_ENABLED"); v != "" {
		switch strings.ToLower(v) {
		case "true":
			cfg.MetricsEnabled = true
		case "false":
			cfg.MetricsEnabled = false
		}
	}
	if v := os.Getenv("TELEWATCH_METRICS_PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TELEWATCH_METRICS_PORT: %w", err)
		}
		cfg.MetricsPort = p
	}
	return nil
}

// applyRuntimeEnv handles health file, logging, and dry-run
func applyRuntimeEnv(cfg *Config) error {
	if v := os.Getenv("TELEWATCH_HEALTH_FILE"); v != "" {
		cfg.HealthFile = v
	}
	if v := os.Getenv("TELEWATCH_HEALTH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TELEWATCH_HEALTH_INTERVAL: %w", err)
		}
		cfg.HealthInterval = d
	}
	if v := os.Getenv("TELEWATCH_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("TELEWATCH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TELEWATCH_DRY_RUN"); v == "true" {
		cfg.DryRun = true
	}
	return nil
}

// setBoolEnv is a small helper to parse boolean environment variables
func setBoolEnv(env string, setter func(bool)) error {
	if v := os.Getenv(env); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", env, err)
		}
		setter(b)
	}
	return nil
}

// splitList splits a comma-separated env value into trimmed, non-empty items.
func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseChatList parses a comma-separated list of chat IDs.
func parseChatList(v string) ([]int64, error) {
	var ids []int64
	for _, p := range splitList(v) {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("chat id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
