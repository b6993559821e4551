package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration for TeleWatch
type Config struct {
	// TelegramToken is the bot token used for the inbound message stream
	// and for the chat relay destination. Usually supplied via environment.
	TelegramToken string `json:"telegram_token" yaml:"telegram_token"`

	// Chats lists the chat IDs to watch. Messages from any other chat are ignored.
	Chats []int64 `json:"chats" yaml:"chats"`

	// Keywords a message must contain (any of them, case-insensitive) to match.
	// An empty list matches every message; Validate warns about it.
	Keywords []string `json:"keywords" yaml:"keywords"`
	// ExcludedKeywords veto a message outright, even when a keyword matched.
	ExcludedKeywords []string `json:"excluded_keywords" yaml:"excluded_keywords"`

	// Destinations configures the delivery channels. Each block carries its
	// own enabled flag so credentials can stay in place while switched off.
	Destinations Destinations `json:"destinations" yaml:"destinations"`

	// Delivery retry policy: attempts per send and the first backoff step.
	// The delay doubles after every failed attempt.
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay" yaml:"base_delay"`
	// SendTimeout bounds a single delivery attempt.
	SendTimeout time.Duration `json:"send_timeout" yaml:"send_timeout"`

	// Metrics
	MetricsEnabled bool `json:"metrics_enabled" yaml:"metrics_enabled"`
	MetricsPort    int  `json:"metrics_port" yaml:"metrics_port"`

	// HealthFile gets a fresh RFC3339 timestamp every HealthInterval while
	// the daemon is alive. Empty disables the writer.
	HealthFile     string        `json:"health_file" yaml:"health_file"`
	HealthInterval time.Duration `json:"health_interval" yaml:"health_interval"`

	LogFile  string `json:"log_file" yaml:"log_file"`
	LogLevel string `json:"log_level" yaml:"log_level"`

	// Dry-run: log matches without delivering anything
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// Destinations groups the per-channel delivery settings.
type Destinations struct {
	Relay    RelayConfig    `json:"relay" yaml:"relay"`
	Email    EmailConfig    `json:"email" yaml:"email"`
	SMS      TwilioConfig   `json:"sms" yaml:"sms"`
	WhatsApp TwilioConfig   `json:"whatsapp" yaml:"whatsapp"`
	Discord  DiscordConfig  `json:"discord" yaml:"discord"`
	Ntfy     NtfyConfig     `json:"ntfy" yaml:"ntfy"`
	Webhook  WebhookConfig  `json:"webhook" yaml:"webhook"`
}

// RelayConfig forwards matched messages to another Telegram chat via the
// same bot the daemon listens with.
type RelayConfig struct {
	Enabled bool  `json:"enabled" yaml:"enabled"`
	ChatID  int64 `json:"chat_id" yaml:"chat_id"`
}

// EmailConfig delivers over SMTP with implicit TLS (port 465 by default).
type EmailConfig struct {
	Enabled  bool     `json:"enabled" yaml:"enabled"`
	Host     string   `json:"host" yaml:"host"`
	Port     int      `json:"port" yaml:"port"`
	From     string   `json:"from" yaml:"from"`
	Password string   `json:"password" yaml:"password"`
	To       []string `json:"to" yaml:"to"`
}

// TwilioConfig covers both the SMS and WhatsApp destinations; they share the
// Twilio REST API and differ only in number prefixes and size limits.
type TwilioConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	AccountSID string `json:"account_sid" yaml:"account_sid"`
	AuthToken  string `json:"auth_token" yaml:"auth_token"`
	From       string `json:"from" yaml:"from"`
	To         string `json:"to" yaml:"to"`
}

// DiscordConfig posts an embed to a webhook URL.
type DiscordConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	WebhookURL string `json:"webhook_url" yaml:"webhook_url"`
}

// NtfyConfig publishes to an ntfy topic.
type NtfyConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Server  string `json:"server" yaml:"server"`
	Topic   string `json:"topic" yaml:"topic"`
}

// WebhookConfig POSTs the alert as JSON to an arbitrary endpoint.
type WebhookConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	URL     string `json:"url" yaml:"url"`
}

// DefaultConfig returns a sane default configuration
func DefaultConfig() *Config {
	return &Config{
		// Delivery retry defaults: 3 attempts, 1s/2s/4s backoff ladder
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		SendTimeout: 30 * time.Second,

		// Metrics defaults (opt-in)
		MetricsEnabled: false,
		MetricsPort:    9090,

		// Health file disabled until a path is configured
		HealthInterval: 60 * time.Second,

		Destinations: Destinations{
			Email: EmailConfig{Port: 465},
			Ntfy:  NtfyConfig{Server: "https://ntfy.sh"},
		},

		// default: no dry-run
		DryRun: false,
	}
}

// Validate returns a list of non-fatal configuration warnings, such as
// incomplete destination credential combinations or an empty keyword list.
func (c *Config) Validate() []string {
	var warnings []string
	d := &c.Destinations
	checks := []struct {
		cond bool
		msg  string
	}{
		{len(c.Chats) == 0, "no chats configured; nothing will be monitored"},
		{len(c.Keywords) == 0, "no keywords configured; every message in watched chats will match"},
		{d.Relay.Enabled && d.Relay.ChatID == 0, "relay destination enabled but chat_id is missing"},
		{d.Email.Enabled && d.Email.Host == "", "email destination enabled but host is missing"},
		{d.Email.Enabled && len(d.Email.To) == 0, "email destination enabled but no recipients configured"},
		{d.SMS.Enabled && (d.SMS.AccountSID == "" || d.SMS.AuthToken == ""), "sms destination enabled but Twilio credentials are missing"},
		{d.SMS.Enabled && (d.SMS.From == "" || d.SMS.To == ""), "sms destination enabled but from/to numbers are missing"},
		{d.WhatsApp.Enabled && (d.WhatsApp.AccountSID == "" || d.WhatsApp.AuthToken == ""), "whatsapp destination enabled but Twilio credentials are missing"},
		{d.WhatsApp.Enabled && (d.WhatsApp.From == "" || d.WhatsApp.To == ""), "whatsapp destination enabled but from/to numbers are missing"},
		{d.Discord.Enabled && d.Discord.WebhookURL == "", "discord destination enabled but webhook_url is missing"},
		{d.Ntfy.Enabled && d.Ntfy.Topic == "", "ntfy destination enabled but topic is missing"},
		{d.Webhook.Enabled && d.Webhook.URL == "", "webhook destination enabled but url is missing"},
	}
	for _, ch := range checks {
		if ch.cond {
			warnings = append(warnings, ch.msg)
		}
	}
	if len(c.EnabledDestinations()) == 0 && !c.DryRun {
		warnings = append(warnings, "no destinations enabled; matches will only be logged")
	}
	return warnings
}

// EnabledDestinations returns the names of enabled destinations in delivery order.
func (c *Config) EnabledDestinations() []string {
	d := &c.Destinations
	var names []string
	for _, e := range []struct {
		name    string
		enabled bool
	}{
		{"relay", d.Relay.Enabled},
		{"email", d.Email.Enabled},
		{"sms", d.SMS.Enabled},
		{"whatsapp", d.WhatsApp.Enabled},
		{"discord", d.Discord.Enabled},
		{"ntfy", d.Ntfy.Enabled},
		{"webhook", d.Webhook.Enabled},
	} {
		if e.enabled {
			names = append(names, e.name)
		}
	}
	return names
}

// LoadConfigFromFile loads config from a YAML/JSON file
func LoadConfigFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if err := migrateLegacy(b, cfg); err != nil {
		return nil, err
	}
	if cfg.Destinations.Email.Port == 0 {
		cfg.Destinations.Email.Port = 465
	}
	if cfg.Destinations.Ntfy.Server == "" {
		cfg.Destinations.Ntfy.Server = "https://ntfy.sh"
	}
	return cfg, nil
}

// migrateLegacy upgrades the pre-destinations schema, where a single
// top-level "destination" chat ID meant "relay everything there". It only
// applies when the file does not configure the relay block itself.
func migrateLegacy(raw []byte, cfg *Config) error {
	var legacy struct {
		Destination int64 `json:"destination" yaml:"destination"`
	}
	if err := yaml.Unmarshal(raw, &legacy); err != nil {
		return fmt.Errorf("reading legacy destination: %w", err)
	}
	if legacy.Destination != 0 && !cfg.Destinations.Relay.Enabled && cfg.Destinations.Relay.ChatID == 0 {
		cfg.Destinations.Relay = RelayConfig{Enabled: true, ChatID: legacy.Destination}
	}
	return nil
}
