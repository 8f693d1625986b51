// Package metrics exposes Prometheus instruments for upstream traffic,
// enrichment outcomes, notifications and the local proxy.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry owns a private Prometheus registry. A nil *Registry is valid and records nothing.
type Registry struct {
	reg *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamLatency  *prometheus.HistogramVec
	Searches         prometheus.Counter
	EnrichedRows     *prometheus.CounterVec
	Notifications    *prometheus.CounterVec
	ProxyRequests    *prometheus.CounterVec
}

// NewRegistry creates the instruments and registers them on a fresh registry.
func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	upstreamRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arpscout_upstream_requests_total",
		Help: "Upstream HTTP calls by kind and outcome.",
	}, []string{"kind", "outcome"})
	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "arpscout_upstream_request_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	searches := prometheus.NewCounter(prometheus.CounterOpts{Name: "arpscout_searches_total"})
	enriched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arpscout_enriched_rows_total",
		Help: "Rows processed by the balance fan-out, by balance status.",
	}, []string{"status"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arpscout_notifications_total",
	}, []string{"outcome"})
	proxyRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "arpscout_proxy_requests_total",
	}, []string{"target", "code"})

	r.MustRegister(upstreamRequests, upstreamLatency, searches, enriched, notifications, proxyRequests)
	return &Registry{
		reg:              r,
		UpstreamRequests: upstreamRequests,
		UpstreamLatency:  upstreamLatency,
		Searches:         searches,
		EnrichedRows:     enriched,
		Notifications:    notifications,
		ProxyRequests:    proxyRequests,
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// Gatherer exposes the underlying registry, mainly for tests.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// ObserveUpstream counts one upstream call and records its latency.
func (r *Registry) ObserveUpstream(kind, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.UpstreamRequests.WithLabelValues(kind, outcome).Inc()
	r.UpstreamLatency.WithLabelValues(kind).Observe(d.Seconds())
}

// IncSearch counts a search page loaded from the ARP API.
func (r *Registry) IncSearch() {
	if r == nil {
		return
	}
	r.Searches.Inc()
}

// IncEnriched counts one row of the balance fan-out by its balance status.
func (r *Registry) IncEnriched(status string) {
	if r == nil {
		return
	}
	r.EnrichedRows.WithLabelValues(status).Inc()
}

// IncNotification counts a webhook delivery as "delivered" or "failed".
func (r *Registry) IncNotification(outcome string) {
	if r == nil {
		return
	}
	r.Notifications.WithLabelValues(outcome).Inc()
}

// IncProxy counts a proxied request by target and response code.
func (r *Registry) IncProxy(target string, code int) {
	if r == nil {
		return
	}
	r.ProxyRequests.WithLabelValues(target, strconv.Itoa(code)).Inc()
}
