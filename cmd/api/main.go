// Package main is the entry point for the planrelay service: a bridge that
// receives HacknPlan project-management webhooks and relays them to a Discord
// channel webhook as localized notifications.
//
// It initializes the configuration, builds the normalization pipeline and the
// delivery dispatcher, mounts the HTTP chassis, and starts listening for
// requests. Graceful shutdown is handled via OS signal interception (SIGINT,
// SIGTERM): the HTTP server stops accepting work first, then the dispatcher
// drains queued deliveries.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"planrelay/internal/api/handlers"
	"planrelay/internal/config"
	"planrelay/internal/core"
	"planrelay/internal/delivery"
	"planrelay/internal/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("planrelay starting",
		"environment", cfg.Environment,
		"locale", cfg.Notification.Locale,
		"port", cfg.Server.Port,
		"delivery_enabled", cfg.Discord.DeliveryEnabled(),
	)

	// The pipeline and its configuration are immutable after this point;
	// every worker and request goroutine shares them safely.
	pl := pipeline.New(pipeline.Options{
		Locale:            cfg.Notification.TypedLocale(),
		DesignURLTemplate: cfg.Notification.DesignURLTemplate,
		BoardURLTemplate:  cfg.Notification.BoardURLTemplate,
		MaxDescription:    cfg.Notification.MaxDescriptionLength,
	})

	var dispatcher *delivery.Dispatcher
	if cfg.Discord.DeliveryEnabled() {
		channel := delivery.NewChannel(cfg.Discord, logger)
		dispatcher = delivery.NewDispatcher(
			channel,
			cfg.Discord.Workers,
			cfg.Discord.QueueSize,
			deliveryTimeout(cfg.Discord),
			logger,
		)
	} else {
		logger.Warn("DISCORD_WEBHOOK_URL not set, delivery disabled")
	}

	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	webhookHandler := handlers.NewHacknPlanHandler(
		cfg.Inbound.Token,
		cfg.Inbound.MaxBodyBytes,
		pl,
		dispatcher,
		cfg.Discord.DeliveryEnabled(),
		logger,
	)
	srv.Registrars = append(srv.Registrars, func(r chi.Router) {
		webhookHandler.RegisterRoutes(r)
	})
	srv.MountRoutes()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}

		if dispatcher != nil {
			if err := dispatcher.Close(shutdownCtx); err != nil {
				return fmt.Errorf("dispatcher drain: %w", err)
			}
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")
	return nil
}

// deliveryTimeout bounds one delivery including all in-process retries:
// every attempt may take the HTTP timeout, and every gap may wait MaxWait.
func deliveryTimeout(cfg config.DiscordConfig) time.Duration {
	attempts := time.Duration(cfg.MaxRetries + 1)
	return attempts*cfg.Timeout + time.Duration(cfg.MaxRetries)*cfg.MaxWait
}

// newLogger builds the process-wide structured logger. JSON output keeps log
// aggregation trivial; the level falls back to info on unknown values.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
