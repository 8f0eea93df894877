package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"subtrack/internal/config"
	"subtrack/internal/httpapi"
	applog "subtrack/internal/log"
	"subtrack/internal/rates"
	"subtrack/internal/realtime"
	"subtrack/internal/service"
	"subtrack/internal/settings"
	"subtrack/internal/store"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := applog.New(applog.ComponentApp, slog.LevelInfo)
	applog.SetDefault(logger)

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

	// The change-event channel is optional: without it mutations still
	// succeed, clients just get no push updates.
	var events *realtime.Channel
	if cfg.AMQPURL != "" {
		events, err = realtime.NewChannel(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			logger.Warn("Change-event channel unavailable, continuing without push updates", applog.FieldError, err)
			events = nil
		} else {
			defer events.Close()
		}
	}

	settingsStore, err := settings.NewStore(cfg.SettingsDBPath)
	if err != nil {
		logger.Error("Failed to open settings store", applog.FieldError, err)
		os.Exit(1)
	}
	defer settingsStore.Close()

	ratesProvider := rates.NewProvider(cfg.RatesFeedURL, nil)
	tracker := service.NewTracker(repo, events)
	api := httpapi.New(tracker, ratesProvider, settingsStore, logger)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        api.Handler(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting subtrack server", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
