package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/orizaruk/TeleWatch/internal/config"
	"github.com/orizaruk/TeleWatch/internal/daemon"
	"github.com/orizaruk/TeleWatch/internal/filter"
	"github.com/orizaruk/TeleWatch/internal/health"
	"github.com/orizaruk/TeleWatch/internal/logging"
	"github.com/orizaruk/TeleWatch/internal/metrics"
	"github.com/orizaruk/TeleWatch/internal/notify"
	"github.com/orizaruk/TeleWatch/internal/telegram"
)

// shutdownGrace bounds how long main waits for an in-flight dispatch to
// finish after a stop signal.
const shutdownGrace = 10 * time.Second

func main() {
	cfgFile := flag.String("config", "", "Path to config file (YAML or JSON)")
	dryRun := flag.Bool("dry-run", false, "log matches but do not deliver notifications")
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error")
	logFile := flag.String("log-file", "", "also write logs to this file")
	flag.Parse()

	// best-effort .env for local runs
	_ = godotenv.Load()

	cfg, err := loadConfig(*cfgFile)
	if err != nil {
		log.Fatalf("failed loading config: %v", err)
	}
	applyFlags(cfg, *dryRun, *logLevel, *logFile)

	logger, cleanup, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	for _, w := range cfg.Validate() {
		logger.Warn().Str("warning", w).Msg("config validation")
	}
	if cfg.TelegramToken == "" {
		logger.Fatal().Msg("no telegram bot token configured; set telegram_token or TELEWATCH_TELEGRAM_TOKEN")
	}
	if len(cfg.Chats) == 0 {
		logger.Fatal().Msg("no chats configured; nothing to watch")
	}

	stats := metrics.NewStats()
	startMetricsServer(cfg, stats, logger)

	tg, err := telegram.New(cfg.TelegramToken, cfg.Chats, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create telegram client")
	}

	retrier := &notify.Retrier{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		Timeout:     cfg.SendTimeout,
		Logger:      logger,
	}
	registry := notify.Build(cfg, tg, retrier, logger)
	if registry.Len() == 0 && !cfg.DryRun {
		logger.Warn().Msg("no destinations enabled; matches will only be logged")
	}

	watcher := daemon.New(cfg, filter.New(cfg.Keywords, cfg.ExcludedKeywords), registry, stats, tg.Messages(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.HealthFile != "" {
		go health.New(cfg.HealthFile, cfg.HealthInterval, logger).Run(ctx)
	}
	go tg.Run(ctx)

	done := make(chan struct{})
	go func() {
		watcher.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
		// message source ended on its own
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received, waiting for in-flight deliveries")
		select {
		case <-done:
		case <-time.After(shutdownGrace):
			logger.Warn().Msg("shutdown grace period exceeded, exiting before all deliveries finished")
		}
	}
}

// loadConfig builds the effective configuration: defaults, then the config
// file when given, then environment overrides.
func loadConfig(path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path != "" {
		c, err := config.LoadConfigFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	}
	if err := config.ApplyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyFlags gives command-line flags the last word over file and env values.
func applyFlags(cfg *config.Config, dryRun bool, logLevel, logFile string) {
	if dryRun {
		cfg.DryRun = true
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
}

// startMetricsServer exposes /metrics and /status when metrics are enabled.
func startMetricsServer(cfg *config.Config, stats *metrics.Stats, logger zerolog.Logger) {
	if !cfg.MetricsEnabled {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", stats.PromHandler())
		mux.Handle("/status", stats.JSONHandler())
		addr := fmt.Sprintf(":%d", cfg.MetricsPort)
		logger.Info().Str("addr", addr).Msg("starting metrics server")
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error().Err(err).Msg("metrics server stopped")
		}
	}()
}
