// Package main is the entry point for the arpscout API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klauspost/compress/gzhttp"

	"arpscout/internal/app"
	"arpscout/internal/config"
	"arpscout/internal/infrastructure/cache"
	"arpscout/internal/infrastructure/http/proxy"
	v1 "arpscout/internal/infrastructure/http/v1"
	"arpscout/pkg/logger"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Infow("starting arpscout server", "upstream_mode", cfg.UpstreamMode)

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalw("failed to wire application", "error", err)
	}

	// --- Sessions ---
	sessions := cache.NewSessionCache(a.Search, cfg.SessionIdleTimeout)
	sessions.Start()
	defer sessions.Stop()

	// --- Local proxy ---
	var px *proxy.Proxy
	if cfg.ProxyEnabled {
		px = proxy.New(a.Upstreams, a.HTTPClient, cfg.ProxyTimeout, a.Metrics)
		log.Info("local proxy enabled on /api/*")
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:    log,
		Upstreams: a.Upstreams,
		Search:    a.Search,
		Suppliers: a.Suppliers,
		Sessions:  sessions,
		Proxy:     px,
		Metrics:   a.Metrics,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      gzhttp.GzipHandler(router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
	defer stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}
	if err := a.Notifier.Wait(shutdownCtx); err != nil {
		log.Warnw("pending notifications dropped", "error", err)
	}

	log.Info("server stopped")
}
