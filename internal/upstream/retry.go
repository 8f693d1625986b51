package upstream

import (
	"context"
	"net/http"
	"time"

	"arpscout/pkg/logger"
)

// RetryConfig tunes Retrier.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first one.
	MaxAttempts int
	// Timeout bounds every single attempt.
	Timeout time.Duration
	// BackoffUnit is multiplied by the attempt number to get the wait before the next try.
	BackoffUnit time.Duration
}

// DefaultRetryConfig matches the notification side-channel: two attempts of
// 5s each, waiting 1s after the first failure.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 2,
		Timeout:     5 * time.Second,
		BackoffUnit: time.Second,
	}
}

// Retrier POSTs JSON payloads with bounded linear-backoff retry.
type Retrier struct {
	fetcher Fetcher
	cfg     RetryConfig
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewRetrier wraps fetcher. Zero config fields fall back to DefaultRetryConfig.
func NewRetrier(fetcher Fetcher, cfg RetryConfig) *Retrier {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.BackoffUnit < 0 {
		cfg.BackoffUnit = def.BackoffUnit
	}
	return &Retrier{fetcher: fetcher, cfg: cfg, sleep: sleepContext}
}

// Send POSTs payload to endpoint. After a failed attempt n it waits BackoffUnit*n
// before trying again; when every attempt fails the last error is returned.
func (r *Retrier) Send(ctx context.Context, endpoint string, payload any) error {
	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		lastErr = r.fetcher.FetchJSON(ctx, Request{
			Kind:    KindWebhook,
			Method:  http.MethodPost,
			URL:     endpoint,
			Body:    payload,
			Timeout: r.cfg.Timeout,
		}, nil)
		if lastErr == nil {
			return nil
		}

		if attempt == r.cfg.MaxAttempts {
			break
		}

		wait := r.cfg.BackoffUnit * time.Duration(attempt)
		logger.Warn(ctx, "webhook attempt failed, retrying",
			"attempt", attempt,
			"max_attempts", r.cfg.MaxAttempts,
			"backoff", wait,
			"error", lastErr,
		)
		if err := r.sleep(ctx, wait); err != nil {
			return lastErr
		}
	}
	return lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
