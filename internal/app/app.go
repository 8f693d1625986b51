// Package app wires the shared components of the server and the watcher from
// configuration.
package app

import (
	"fmt"
	"net/http"

	"arpscout/internal/config"
	"arpscout/internal/domain/arp"
	"arpscout/internal/domain/notify"
	"arpscout/internal/domain/supplier"
	"arpscout/internal/infrastructure/metrics"
	"arpscout/internal/upstream"
)

// App holds the wired pipeline.
type App struct {
	Config     *config.Config
	Metrics    *metrics.Registry
	Upstreams  *upstream.Router
	HTTPClient *http.Client
	Client     *upstream.Client
	Notifier   *notify.Dispatcher
	Search     *arp.Service
	Suppliers  *supplier.Resolver
}

// New builds the pipeline. Upstream base URLs are resolved once here.
func New(cfg *config.Config) (*App, error) {
	routes, err := upstream.NewRouter(
		upstream.Environment{Local: cfg.IsLocal(), ProxyOrigin: cfg.ProxyOrigin},
		upstream.Hosts{
			ARP:               cfg.ARPBaseURL,
			SupplierPrimary:   cfg.SupplierPrimaryURL,
			SupplierSecondary: cfg.SupplierSecondaryURL,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("upstream routes: %w", err)
	}

	m := metrics.NewRegistry()
	httpClient := &http.Client{}
	client := upstream.NewClient(
		upstream.WithHTTPClient(httpClient),
		upstream.WithTimeout(cfg.FetchTimeout),
		upstream.WithMetrics(m),
	)

	retrier := upstream.NewRetrier(client, upstream.RetryConfig{
		MaxAttempts: cfg.NotifyMaxAttempts,
		Timeout:     cfg.NotifyTimeout,
		BackoffUnit: cfg.NotifyBackoffUnit,
	})
	notifier := notify.NewDispatcher(retrier, m)

	service := arp.NewService(arp.ServiceConfig{
		Fetcher:         client,
		Router:          routes,
		Enricher:        arp.NewEnricher(client, routes, cfg.FanoutLimit, m),
		Notifier:        notifier,
		DefaultWebhook:  cfg.WebhookURL,
		AllowedWebhooks: cfg.NotifyAllowedURLs,
		Metrics:         m,
	})

	return &App{
		Config:     cfg,
		Metrics:    m,
		Upstreams:  routes,
		HTTPClient: httpClient,
		Client:     client,
		Notifier:   notifier,
		Search:     service,
		Suppliers:  supplier.NewResolver(client, routes, cfg.SupplierTimeout),
	}, nil
}
