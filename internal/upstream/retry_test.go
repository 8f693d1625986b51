package upstream

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpscout/internal/core/apperror"
)

type scriptedFetcher struct {
	calls    atomic.Int32
	failures int32
	timeouts []time.Duration
}

func (f *scriptedFetcher) FetchJSON(ctx context.Context, req Request, out any) error {
	n := f.calls.Add(1)
	f.timeouts = append(f.timeouts, req.Timeout)
	if n <= f.failures {
		return apperror.NewUpstream(string(req.Kind), http.StatusBadGateway, false)
	}
	return nil
}

func newTestRetrier(f Fetcher, cfg RetryConfig) (*Retrier, *[]time.Duration) {
	r := NewRetrier(f, cfg)
	var waits []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return r, &waits
}

func TestRetrier_SucceedsAfterOneFailure(t *testing.T) {
	f := &scriptedFetcher{failures: 1}
	r, waits := newTestRetrier(f, DefaultRetryConfig())

	err := r.Send(context.Background(), "http://hook.local", map[string]any{"a": 1})
	require.NoError(t, err)

	assert.Equal(t, int32(2), f.calls.Load())
	assert.Equal(t, []time.Duration{time.Second}, *waits)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, f.timeouts)
}

func TestRetrier_ReturnsLastErrorWhenExhausted(t *testing.T) {
	f := &scriptedFetcher{failures: 10}
	r, waits := newTestRetrier(f, RetryConfig{MaxAttempts: 3, Timeout: time.Second, BackoffUnit: time.Second})

	err := r.Send(context.Background(), "http://hook.local", nil)
	require.Error(t, err)
	assert.True(t, apperror.IsUpstream(err))

	assert.Equal(t, int32(3), f.calls.Load())
	// Linear backoff: 1s after attempt 1, 2s after attempt 2, none after the last.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *waits)
}

func TestRetrier_StopsWhenContextCancelled(t *testing.T) {
	f := &scriptedFetcher{failures: 10}
	r := NewRetrier(f, RetryConfig{MaxAttempts: 5, Timeout: time.Second, BackoffUnit: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Send(ctx, "http://hook.local", nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), f.calls.Load())
}

func TestRetrier_AgainstServer(t *testing.T) {
	var hits atomic.Int32
	srv := newFlakyServer(t, &hits, 1)
	defer srv.Close()

	r := NewRetrier(NewClient(), RetryConfig{MaxAttempts: 2, Timeout: time.Second, BackoffUnit: time.Millisecond})
	require.NoError(t, r.Send(context.Background(), srv.URL, map[string]any{"tipo": "consulta-arp"}))
	assert.Equal(t, int32(2), hits.Load())
}
