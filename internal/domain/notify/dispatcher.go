// Package notify delivers search notifications to an automation webhook in the
// background. Delivery is at-most-once per attempt budget and never blocks the
// caller.
package notify

import (
	"context"
	"sync"

	"arpscout/internal/infrastructure/metrics"
	"arpscout/pkg/logger"
)

// Sender delivers one payload, retrying as it sees fit. *upstream.Retrier implements it.
type Sender interface {
	Send(ctx context.Context, endpoint string, payload any) error
}

// Dispatcher runs deliveries in goroutines detached from the caller's cancellation.
type Dispatcher struct {
	sender  Sender
	metrics *metrics.Registry
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(sender Sender, m *metrics.Registry) *Dispatcher {
	return &Dispatcher{sender: sender, metrics: m}
}

// Dispatch starts delivering payload and returns immediately. The request context
// only contributes its values (trace ids, logger); cancelling it does not stop
// the delivery.
func (d *Dispatcher) Dispatch(ctx context.Context, endpoint string, payload any) {
	if endpoint == "" {
		return
	}
	ctx = context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.Send(ctx, endpoint, payload)
	}()
}

// Send delivers payload synchronously. Failures are logged and counted.
func (d *Dispatcher) Send(ctx context.Context, endpoint string, payload any) error {
	log := logger.FromContext(ctx).WithComponent("notify")

	if err := d.sender.Send(ctx, endpoint, payload); err != nil {
		d.metrics.IncNotification("failed")
		log.Errorw("webhook delivery failed", "endpoint", endpoint, "error", err)
		return err
	}
	d.metrics.IncNotification("delivered")
	log.Debugw("webhook delivered", "endpoint", endpoint)
	return nil
}

// Wait blocks until every dispatched delivery finishes or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
