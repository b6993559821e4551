package notify

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/orizaruk/TeleWatch/internal/config"
)

func TestBuildSkipsMisconfiguredDestinations(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Destinations.Discord.Enabled = true // no webhook URL
	cfg.Destinations.Ntfy.Enabled = true
	cfg.Destinations.Ntfy.Topic = "alerts"

	reg := Build(cfg, nil, quietRetrier(), zerolog.Nop())
	if diff := cmp.Diff([]string{"Ntfy"}, reg.Names()); diff != "" {
		t.Fatalf("expected only the valid destination (-want +got):\n%s", diff)
	}
}

func TestBuildKeepsDeliveryOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Destinations.Webhook.Enabled = true
	cfg.Destinations.Webhook.URL = "https://example.com/hook"
	cfg.Destinations.Relay.Enabled = true
	cfg.Destinations.Relay.ChatID = -100555
	cfg.Destinations.Ntfy.Enabled = true
	cfg.Destinations.Ntfy.Topic = "alerts"

	reg := Build(cfg, &fakeForwarder{}, quietRetrier(), zerolog.Nop())
	if diff := cmp.Diff([]string{"Relay", "Ntfy", "Webhook"}, reg.Names()); diff != "" {
		t.Fatalf("destination order mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRelayNeedsForwarder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Destinations.Relay.Enabled = true
	cfg.Destinations.Relay.ChatID = -100555

	reg := Build(cfg, nil, quietRetrier(), zerolog.Nop())
	if reg.Len() != 0 {
		t.Fatalf("relay without a telegram client must be skipped, got %v", reg.Names())
	}
}

func TestBuildDisabledDestinationsStayOut(t *testing.T) {
	cfg := config.DefaultConfig()
	// fully configured but switched off
	cfg.Destinations.Webhook.URL = "https://example.com/hook"
	cfg.Destinations.Ntfy.Topic = "alerts"

	reg := Build(cfg, nil, quietRetrier(), zerolog.Nop())
	if reg.Len() != 0 {
		t.Fatalf("disabled destinations must not register, got %v", reg.Names())
	}
}

func TestBuildAllChannels(t *testing.T) {
	cfg := config.DefaultConfig()
	d := &cfg.Destinations
	d.Relay = config.RelayConfig{Enabled: true, ChatID: 1}
	d.Email = config.EmailConfig{Enabled: true, Host: "smtp.test", From: "a@b", Password: "p", To: []string{"a@b"}}
	d.SMS = twilioCfg()
	d.WhatsApp = twilioCfg()
	d.Discord = config.DiscordConfig{Enabled: true, WebhookURL: "https://discord.test/hook"}
	d.Ntfy = config.NtfyConfig{Enabled: true, Server: "https://ntfy.test", Topic: "alerts"}
	d.Webhook = config.WebhookConfig{Enabled: true, URL: "https://example.com/hook"}

	reg := Build(cfg, &fakeForwarder{}, quietRetrier(), zerolog.Nop())
	want := []string{"Relay", "Email", "SMS", "WhatsApp", "Discord", "Ntfy", "Webhook"}
	if diff := cmp.Diff(want, reg.Names()); diff != "" {
		t.Fatalf("expected every channel registered (-want +got):\n%s", diff)
	}
}
