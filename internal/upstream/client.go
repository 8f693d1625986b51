package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"arpscout/internal/core/apperror"
	appctx "arpscout/internal/core/context"
	"arpscout/internal/infrastructure/metrics"
)

var tracer = otel.Tracer("arpscout/upstream")

// DefaultTimeout bounds a single upstream call when the request sets none.
const DefaultTimeout = 12 * time.Second

// Request describes one upstream call.
type Request struct {
	Kind   Kind
	Method string // GET when empty
	URL    string
	// Body is JSON-encoded when non-nil.
	Body    any
	Header  http.Header
	Timeout time.Duration
}

// Fetcher performs bounded JSON calls. *Client implements it.
type Fetcher interface {
	FetchJSON(ctx context.Context, req Request, out any) error
}

// Client issues bounded JSON requests. It never retries.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	metrics    *metrics.Registry
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the default per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMetrics records call outcomes and latency.
func WithMetrics(m *metrics.Registry) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile-time check that Client implements Fetcher.
var _ Fetcher = (*Client)(nil)

// FetchJSON performs req and decodes a 2xx JSON body into out (skipped when out is nil).
// The call is cancelled once its timeout elapses. Non-2xx responses, timeouts and
// transport failures all return an apperror with code UPSTREAM_ERROR.
func (c *Client) FetchJSON(ctx context.Context, req Request, out any) (err error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	kind := string(req.Kind)

	ctx, span := tracer.Start(ctx, "upstream.fetch", trace.WithAttributes(
		attribute.String("upstream.kind", kind),
		attribute.String("http.method", method),
	))
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	outcome := "ok"
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		c.metrics.ObserveUpstream(kind, outcome, time.Since(start))
	}()

	var body io.Reader
	if req.Body != nil {
		payload, mErr := json.Marshal(req.Body)
		if mErr != nil {
			outcome = "error"
			return apperror.NewInternal(fmt.Errorf("encode %s request body: %w", kind, mErr))
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(callCtx, method, req.URL, body)
	if err != nil {
		outcome = "error"
		return apperror.NewUpstream(kind, 0, false).WithCause(err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if httpReq.Header.Get("Accept") == "" {
		httpReq.Header.Set("Accept", "application/json")
	}
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if rid := appctx.GetRequestID(ctx); rid != "" {
		httpReq.Header.Set("X-Request-ID", rid)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			outcome = "timeout"
			return apperror.NewUpstream(kind, 0, true).
				WithDetail("timeout_ms", timeout.Milliseconds()).
				WithCause(err)
		}
		outcome = "error"
		return apperror.NewUpstream(kind, 0, false).WithCause(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = "status"
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return apperror.NewUpstream(kind, resp.StatusCode, false)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			outcome = "timeout"
			return apperror.NewUpstream(kind, 0, true).WithCause(err)
		}
		outcome = "decode"
		return apperror.NewUpstream(kind, resp.StatusCode, false).
			WithDetail("reason", "invalid JSON body").
			WithCause(err)
	}
	return nil
}
