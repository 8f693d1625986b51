package supplier

import (
	"context"
	"net/http"
	"strings"
	"time"

	"arpscout/internal/core/apperror"
	"arpscout/internal/core/fields"
	"arpscout/internal/upstream"
	"arpscout/pkg/logger"
)

// DefaultTimeout bounds each registry call.
const DefaultTimeout = 15 * time.Second

// Resolver looks a CNPJ up in the primary registry and falls back to the
// secondary one.
type Resolver struct {
	fetcher upstream.Fetcher
	router  *upstream.Router
	timeout time.Duration
}

// NewResolver creates a Resolver. timeout <= 0 uses DefaultTimeout.
func NewResolver(fetcher upstream.Fetcher, router *upstream.Router, timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Resolver{fetcher: fetcher, router: router, timeout: timeout}
}

// Resolve returns the registry record of taxID. Formatting characters are stripped
// first. The secondary registry is asked only when the primary answers with
// status "ERROR" or fails; a response carrying a message is reported as not found.
func (r *Resolver) Resolve(ctx context.Context, taxID string) (*Record, error) {
	digits := fields.Digits(taxID)
	if digits == "" {
		return nil, apperror.NewValidation("tax id must contain digits").WithDetail("taxId", taxID)
	}

	log := logger.FromContext(ctx).WithComponent("supplier")

	data, err := r.fetch(ctx, upstream.KindSupplierPrimary, digits)
	source := SourcePrimary
	switch {
	case err != nil && !apperror.IsUpstream(err):
		return nil, err
	case err != nil:
		log.Warnw("primary registry failed, trying secondary", "tax_id", digits, "error", err)
		fallthrough
	case data.String("status") == "ERROR":
		source = SourceSecondary
		data, err = r.fetch(ctx, upstream.KindSupplierSecondary, digits)
		if err != nil {
			if apperror.UpstreamStatus(err) == http.StatusNotFound {
				return nil, apperror.NewNotFound("supplier", digits).WithCause(err)
			}
			return nil, err
		}
	}

	if msg := strings.TrimSpace(data.String("message")); msg != "" {
		return nil, apperror.NewNotFound("supplier", digits).
			WithDetail("message", msg).
			WithDetail("source", string(source))
	}

	rec := Normalize(data, digits, source)
	return &rec, nil
}

func (r *Resolver) fetch(ctx context.Context, kind upstream.Kind, digits string) (fields.Raw, error) {
	var data fields.Raw
	err := r.fetcher.FetchJSON(ctx, upstream.Request{
		Kind:    kind,
		URL:     r.router.BuildURL(kind, digits, nil),
		Timeout: r.timeout,
	}, &data)
	return data, err
}
