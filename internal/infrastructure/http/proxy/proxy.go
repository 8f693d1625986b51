// Package proxy forwards /api/* calls to the public upstreams so browser
// clients can reach them without CORS restrictions.
package proxy

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"arpscout/internal/infrastructure/metrics"
	"arpscout/internal/upstream"
	"arpscout/pkg/logger"
)

const (
	defaultAccept      = "*/*"
	defaultUserAgent   = "Mozilla/5.0"
	defaultContentType = "application/json; charset=utf-8"

	// FailureMessage is the body error text when the upstream is unreachable.
	FailureMessage = "Falha ao acessar a API externa."
)

// DefaultTimeout bounds a proxied call.
const DefaultTimeout = 30 * time.Second

type route struct {
	prefix string
	kind   upstream.Kind
	label  string
}

// Longest prefixes first, "/api/" catches the rest.
var routes = []route{
	{prefix: upstream.ProxyPrefix[upstream.KindSupplierPrimary], kind: upstream.KindSupplierPrimary, label: "receitaws"},
	{prefix: upstream.ProxyPrefix[upstream.KindSupplierSecondary], kind: upstream.KindSupplierSecondary, label: "brasilapi"},
	{prefix: upstream.ProxyPrefix[upstream.KindSearch], kind: upstream.KindSearch, label: "dadosabertos"},
}

// Proxy forwards requests to the direct upstream hosts.
type Proxy struct {
	router  *upstream.Router
	client  *http.Client
	timeout time.Duration
	metrics *metrics.Registry
}

// New creates a Proxy. A nil client uses a default one; timeout <= 0 uses DefaultTimeout.
func New(router *upstream.Router, client *http.Client, timeout time.Duration, m *metrics.Registry) *Proxy {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Proxy{router: router, client: client, timeout: timeout, metrics: m}
}

// Register mounts the proxy under /api.
func (p *Proxy) Register(r gin.IRouter) {
	r.Any("/api/*path", p.Handle)
}

// Target maps an incoming request path and raw query onto the upstream URL.
// ok is false when the path is outside /api/.
func (p *Proxy) Target(path, rawQuery string) (target *url.URL, label string, ok bool) {
	for _, rt := range routes {
		if !strings.HasPrefix(path, rt.prefix) {
			continue
		}
		base := p.router.DirectBaseURL(rt.kind)
		if base == nil {
			return nil, "", false
		}
		u := base.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, rt.prefix)})
		u.RawQuery = rawQuery
		return u, rt.label, true
	}
	return nil, "", false
}

// Handle forwards the request method, Accept and User-Agent, and relays the
// upstream status, content type and body. Every response, failures included,
// carries a permissive CORS header.
func (p *Proxy) Handle(c *gin.Context) {
	ctx := c.Request.Context()
	c.Header("Access-Control-Allow-Origin", "*")

	target, label, ok := p.Target(c.Request.URL.Path, c.Request.URL.RawQuery)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown proxy route"})
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, c.Request.Method, target.String(), nil)
	if err != nil {
		p.fail(c, label, err)
		return
	}
	req.Header.Set("Accept", headerOr(c.GetHeader("Accept"), defaultAccept))
	req.Header.Set("User-Agent", headerOr(c.GetHeader("User-Agent"), defaultUserAgent))

	resp, err := p.client.Do(req)
	if err != nil {
		p.fail(c, label, err)
		return
	}
	defer resp.Body.Close()

	c.Header("Content-Type", headerOr(resp.Header.Get("Content-Type"), defaultContentType))
	c.Status(resp.StatusCode)
	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		logger.Warn(ctx, "proxy body copy interrupted", "target", label, "error", err)
	}
	p.metrics.IncProxy(label, resp.StatusCode)
}

func (p *Proxy) fail(c *gin.Context, label string, err error) {
	logger.Warn(c.Request.Context(), "proxy request failed", "target", label, "error", err)
	p.metrics.IncProxy(label, http.StatusBadGateway)
	c.Header("Content-Type", defaultContentType)
	c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": FailureMessage})
}

func headerOr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
