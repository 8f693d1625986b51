package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpscout/internal/domain/arp"
	"arpscout/internal/domain/supplier"
	"arpscout/internal/infrastructure/cache"
	"arpscout/internal/infrastructure/http/proxy"
	"arpscout/internal/infrastructure/http/v1/middleware"
	"arpscout/internal/infrastructure/metrics"
	"arpscout/internal/upstream"
	"arpscout/pkg/logger"
)

// fakeUpstream answers the ARP and registry endpoints with canned data.
func fakeUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		q := r.URL.Query()
		switch {
		case r.URL.Path == arp.PathItems:
			page := q.Get("pagina")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"resultado": []map[string]any{{
					"numeroAtaRegistroPreco":    "ATA-" + page,
					"codigoUnidadeGerenciadora": "999",
					"codigoItem":                150364,
					"numeroItem":                1,
					"valorUnitario":             1234.5,
				}},
				"totalRegistros": 2,
				"totalPaginas":   2,
			})
		case r.URL.Path == arp.PathItemUnits:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"resultado": []map[string]any{{"saldoAdesoes": 7, "aceitaAdesao": true}},
			})
		case r.URL.Path == arp.PathAgreements:
			_ = json.NewEncoder(w).Encode(map[string]any{
				"resultado": []map[string]any{{"numeroAtaRegistroPreco": q.Get("numeroAtaRegistroPreco"), "objeto": "Papel"}},
			})
		case strings.HasPrefix(r.URL.Path, "/cnpj/"):
			_ = json.NewEncoder(w).Encode(map[string]any{"nome": "ACME LTDA", "uf": "SP"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h, _ := newTestRouterWithSessions(t)
	return h
}

func newTestRouterWithSessions(t *testing.T) (http.Handler, *cache.SessionCache) {
	t.Helper()
	srv := fakeUpstream(t)

	routes, err := upstream.NewRouter(upstream.Environment{}, upstream.Hosts{
		ARP:               srv.URL,
		SupplierPrimary:   srv.URL + "/cnpj/",
		SupplierSecondary: srv.URL + "/cnpj-br/",
	})
	require.NoError(t, err)

	m := metrics.NewRegistry()
	client := upstream.NewClient(upstream.WithTimeout(2*time.Second), upstream.WithMetrics(m))
	service := arp.NewService(arp.ServiceConfig{Fetcher: client, Router: routes, Metrics: m})

	sessions := cache.NewSessionCache(service, time.Minute)
	sessions.Start()
	t.Cleanup(sessions.Stop)
	return NewRouter(RouterConfig{
		Logger:    logger.Nop(),
		Upstreams: routes,
		Search:    service,
		Suppliers: supplier.NewResolver(client, routes, time.Second),
		Sessions:  sessions,
		Proxy:     proxy.New(routes, nil, time.Second, m),
		Metrics:   m,
	}), sessions
}

type searchBody struct {
	Items []struct {
		AgreementNumber string `json:"agreementNumber"`
		BalanceStatus   string `json:"balanceStatus"`
		Display         struct {
			UnitValue string `json:"unitValue"`
			Balance   string `json:"balance"`
		} `json:"display"`
	} `json:"items"`
	Pagination arp.PageState `json:"pagination"`
	Moved      bool          `json:"moved"`
}

func do(t *testing.T, h http.Handler, method, path, session, body string) (*httptest.ResponseRecorder, searchBody) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set(middleware.HeaderSessionID, session)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var out searchBody
	if strings.HasPrefix(path, "/v1/search") && w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestSearchFlow(t *testing.T) {
	h := newTestRouter(t)

	w, first := do(t, h, http.MethodPost, "/v1/search", "", `{"itemCode":"150364","enrich":true}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	session := w.Header().Get(middleware.HeaderSessionID)
	require.NotEmpty(t, session)
	assert.NotEmpty(t, w.Header().Get(middleware.HeaderRequestID))

	require.Len(t, first.Items, 1)
	assert.Equal(t, "ATA-1", first.Items[0].AgreementNumber)
	assert.Equal(t, "ok", first.Items[0].BalanceStatus)
	assert.Equal(t, "R$ 1.234,50", first.Items[0].Display.UnitValue)
	assert.Equal(t, "7 (aceita)", first.Items[0].Display.Balance)
	assert.Equal(t, arp.PageState{Page: 1, PageSize: 10, TotalPages: 2, TotalRecords: 2, HasNext: true}, first.Pagination)

	w, prev := do(t, h, http.MethodPost, "/v1/search/previous", session, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, prev.Moved)
	assert.Equal(t, 1, prev.Pagination.Page)

	w, next := do(t, h, http.MethodPost, "/v1/search/next", session, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, next.Moved)
	assert.Equal(t, "ATA-2", next.Items[0].AgreementNumber)
	assert.Equal(t, "ok", next.Items[0].BalanceStatus, "options carry over to navigation")

	w, beyond := do(t, h, http.MethodPost, "/v1/search/page/3", session, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, beyond.Moved)
	assert.Equal(t, 2, beyond.Pagination.Page)

	w, current := do(t, h, http.MethodGet, "/v1/search", session, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ATA-2", current.Items[0].AgreementNumber)
}

func TestSearch_OnlyNewSearchesCreateSessions(t *testing.T) {
	h, sessions := newTestRouterWithSessions(t)

	w, current := do(t, h, http.MethodGet, "/v1/search", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(middleware.HeaderSessionID))
	assert.Empty(t, current.Items)
	assert.False(t, current.Moved)

	w, next := do(t, h, http.MethodPost, "/v1/search/next", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, next.Moved)

	// An unknown id is not adopted by reads or moves either.
	w, _ = do(t, h, http.MethodPost, "/v1/search/page/2", "0b6b1f0e-8f5e-4c1a-9f6e-2d1c3b4a5e6f", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get(middleware.HeaderSessionID))
	assert.Zero(t, sessions.Len())

	w, _ = do(t, h, http.MethodPost, "/v1/search", "", `{"itemCode":"150364"}`)
	require.Equal(t, http.StatusOK, w.Code)
	session := w.Header().Get(middleware.HeaderSessionID)
	require.NotEmpty(t, session)
	assert.Equal(t, 1, sessions.Len())

	w, _ = do(t, h, http.MethodGet, "/v1/search", session, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, session, w.Header().Get(middleware.HeaderSessionID))
	assert.Equal(t, 1, sessions.Len())
}

func TestSearch_RejectsUnlistedNotifyURL(t *testing.T) {
	h := newTestRouter(t)

	w, _ := do(t, h, http.MethodPost, "/v1/search", "", `{"itemCode":"150364","notifyUrl":"http://127.0.0.1:9/internal"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReady_SessionsStopped(t *testing.T) {
	h, sessions := newTestRouterWithSessions(t)
	sessions.Stop()

	w, _ := do(t, h, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"sessions":"stopped"`)
}

func TestSearch_ValidationError(t *testing.T) {
	h := newTestRouter(t)

	w, _ := do(t, h, http.MethodPost, "/v1/search", "", `{"itemCode":"12"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestSearch_BadPageParam(t *testing.T) {
	h := newTestRouter(t)
	w, _ := do(t, h, http.MethodPost, "/v1/search/page/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBalanceEndpoint(t *testing.T) {
	h := newTestRouter(t)

	w, _ := do(t, h, http.MethodGet, "/v1/balance?agreementNumber=A&managingUnitCode=999&itemNumber=1", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "7 (aceita)", body["label"])
	assert.Equal(t, true, body["accepted"])

	w, _ = do(t, h, http.MethodGet, "/v1/balance?agreementNumber=A", "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAgreementEndpoint_EncodedNumber(t *testing.T) {
	h := newTestRouter(t)

	w, _ := do(t, h, http.MethodGet, "/v1/agreements/999/00012%2F2024", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "00012/2024", body["number"])
	assert.Equal(t, "Papel", body["object"])
}

func TestSupplierEndpoint(t *testing.T) {
	h := newTestRouter(t)

	w, _ := do(t, h, http.MethodGet, "/v1/suppliers/12345678000190", "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ACME LTDA", body["displayName"])
	assert.Equal(t, "SP", body["address"])
	assert.Equal(t, "receitaws", body["source"])
}

func TestProxyAndOperationalRoutes(t *testing.T) {
	h := newTestRouter(t)

	w, _ := do(t, h, http.MethodGet, "/api/cnpj/12345678000190", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w, _ = do(t, h, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessions":"running"`)

	w, _ = do(t, h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "arpscout_proxy_requests_total")

	w, _ = do(t, h, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
