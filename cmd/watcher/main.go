// Package main is the entry point for the arpscout watcher, which runs saved
// searches on a schedule and notifies the webhook with the results.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"arpscout/internal/app"
	"arpscout/internal/config"
	"arpscout/internal/watch"
	"arpscout/pkg/logger"
)

func main() {
	opts := NewOptions()
	opts.AddFlags(pflag.CommandLine)
	pflag.Parse()

	cfg, err := config.Load(opts.EnvFile)
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}
	opts.Apply(cfg)

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log = log.WithComponent("watcher")

	ctx, cancel := context.WithCancel(logger.WithLogger(context.Background(), log))
	defer cancel()

	if len(cfg.WatchItemCodes) == 0 {
		log.Fatal("WATCH_ITEM_CODES is empty, nothing to watch")
	}
	if cfg.WebhookURL == "" {
		log.Warn("N8N_WEBHOOK_URL is empty, searches will run without notifications")
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalw("failed to wire application", "error", err)
	}

	runner := watch.NewRunner(a.Search, watch.Config{
		Schedule:     cfg.WatchSchedule,
		ItemCodes:    cfg.WatchItemCodes,
		WindowDays:   cfg.WatchWindowDays,
		PageSize:     cfg.WatchPageSize,
		OnlyPositive: cfg.WatchOnlyPositive,
		WebhookURL:   cfg.WebhookURL,
	})

	if opts.Once {
		if _, err := runner.RunOnce(ctx); err != nil {
			log.Errorw("watch run failed", "error", err)
		}
		drain(log, a)
		return
	}

	scheduler, err := watch.NewScheduler(ctx, runner)
	if err != nil {
		log.Fatalw("invalid schedule", "error", err)
	}
	scheduler.Start()
	log.Infow("watcher started",
		"schedule", cfg.WatchSchedule,
		"items", cfg.WatchItemCodes,
		"next_run", scheduler.Next(),
	)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down watcher...")
	cancel()
	<-scheduler.Stop().Done()

	drain(log, a)
	log.Info("watcher stopped")
}

func drain(log *logger.Logger, a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := a.Notifier.Wait(ctx); err != nil {
		log.Warnw("pending notifications dropped", "error", err)
	}
}
