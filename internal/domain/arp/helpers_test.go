package arp

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"arpscout/internal/upstream"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type handlerFunc func(q url.Values) (int, any)

// fakeARP serves the three modulo-arp endpoints from per-path handlers.
type fakeARP struct {
	search     handlerFunc
	agreements handlerFunc
	units      handlerFunc

	searchCalls atomic.Int32
	unitCalls   atomic.Int32
	lastSearch  atomic.Pointer[url.Values]
}

func newFakeARP(t *testing.T, f *fakeARP) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var h handlerFunc
		switch r.URL.Path {
		case PathItems:
			f.searchCalls.Add(1)
			f.lastSearch.Store(&q)
			h = f.search
		case PathAgreements:
			h = f.agreements
		case PathItemUnits:
			f.unitCalls.Add(1)
			h = f.units
		}
		if h == nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		status, body := h(q)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T, base string) *upstream.Router {
	t.Helper()
	r, err := upstream.NewRouter(upstream.Environment{}, upstream.Hosts{
		ARP:               base,
		SupplierPrimary:   base,
		SupplierSecondary: base,
	})
	require.NoError(t, err)
	return r
}

func newTestService(t *testing.T, srv *httptest.Server, notifier Notifier, webhook string, allowed ...string) *Service {
	t.Helper()
	client := upstream.NewClient(upstream.WithTimeout(2 * time.Second))
	svc := NewService(ServiceConfig{
		Fetcher:         client,
		Router:          newTestRouter(t, srv.URL),
		Notifier:        notifier,
		DefaultWebhook:  webhook,
		AllowedWebhooks: allowed,
	})
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func str(s string) *string { return &s }
