package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"subtrack/internal/config"
	applog "subtrack/internal/log"
	"subtrack/internal/realtime"
	"subtrack/internal/service"
	"subtrack/internal/store"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.ComponentWorker, slog.LevelInfo)
	applog.SetDefault(logger)

	logger.Info("Starting billing-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	repo, err := store.NewSupabaseRepository(cfg.SupabaseURL, cfg.SupabaseKey)
	if err != nil {
		logger.Error("Failed to initialize data layer", applog.FieldError, err)
		os.Exit(1)
	}

	var events *realtime.Channel
	if cfg.AMQPURL != "" {
		events, err = realtime.NewChannel(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Change-event channel unavailable, advancing dates without push updates", applog.FieldError, err)
			events = nil
		} else {
			defer events.Close()
		}
	}

	processor := service.NewDueProcessor(repo, events)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Due sweep configured", "interval", cfg.DueSweepInterval)

	// Run an initial sweep on startup, then on every tick.
	if count, err := processor.ProcessDue(ctx); err != nil {
		logger.Error("Initial due sweep failed", applog.FieldError, err)
	} else {
		logger.Info("Initial due sweep complete", "advanced", count)
	}

	ticker := time.NewTicker(cfg.DueSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Billing worker stopped")
			return
		case <-ticker.C:
			if count, err := processor.ProcessDue(ctx); err != nil {
				logger.Error("Due sweep failed", applog.FieldError, err)
			} else if count > 0 {
				logger.Info("Due sweep complete", "advanced", count)
			}
		}
	}
}
