package arp

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"arpscout/internal/core/apperror"
	"arpscout/internal/core/fields"
	"arpscout/internal/infrastructure/metrics"
	"arpscout/internal/upstream"
	"arpscout/pkg/logger"
)

// NotificationType tags webhook payloads sent after a search.
const NotificationType = "consulta-arp"

// sampleSize is the number of rows included in a search notification.
const sampleSize = 5

// Notifier delivers a payload to a webhook without blocking the caller.
type Notifier interface {
	Dispatch(ctx context.Context, endpoint string, payload any)
}

// SearchOptions controls the post-processing of a search page.
type SearchOptions struct {
	// Enrich looks up the balance of every row on the page.
	Enrich bool `json:"enrich"`
	// OnlyPositive keeps only rows with a positive balance. Implies Enrich.
	OnlyPositive bool `json:"onlyPositive"`
	// NotifyURL overrides the default webhook. Empty uses the default; anything
	// else must be the default or one of the allowed webhooks.
	NotifyURL string `json:"notifyUrl,omitempty"`
}

// SearchNotification is the webhook payload sent after a completed search.
type SearchNotification struct {
	Type         string         `json:"tipo"`
	Filters      map[string]any `json:"filtros"`
	TotalRecords int            `json:"totalRegistros"`
	Sample       []ResultRow    `json:"amostra"`
}

// Service runs searches and per-row lookups against the ARP API.
type Service struct {
	fetcher  upstream.Fetcher
	router   *upstream.Router
	enricher *Enricher
	notifier Notifier
	metrics  *metrics.Registry

	defaultWebhook  string
	allowedWebhooks map[string]struct{}
	now             func() time.Time
}

// ServiceConfig wires a Service.
type ServiceConfig struct {
	Fetcher  upstream.Fetcher
	Router   *upstream.Router
	Enricher *Enricher
	// Notifier may be nil to disable notifications.
	Notifier       Notifier
	DefaultWebhook string
	// AllowedWebhooks lists the extra endpoints a search may pick with NotifyURL.
	AllowedWebhooks []string
	Metrics         *metrics.Registry
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) *Service {
	enricher := cfg.Enricher
	if enricher == nil {
		enricher = NewEnricher(cfg.Fetcher, cfg.Router, 0, cfg.Metrics)
	}
	defaultWebhook := strings.TrimSpace(cfg.DefaultWebhook)
	allowed := make(map[string]struct{}, len(cfg.AllowedWebhooks)+1)
	for _, u := range append([]string{defaultWebhook}, cfg.AllowedWebhooks...) {
		if u = strings.TrimSpace(u); u != "" {
			allowed[u] = struct{}{}
		}
	}
	return &Service{
		fetcher:         cfg.Fetcher,
		router:          cfg.Router,
		enricher:        enricher,
		notifier:        cfg.Notifier,
		metrics:         cfg.Metrics,
		defaultWebhook:  defaultWebhook,
		allowedWebhooks: allowed,
		now:             time.Now,
	}
}

// Search validates filters, loads one page from the item search API, normalizes
// it and, when asked, enriches and filters it. A notification is dispatched after
// every completed search; its outcome never affects the returned page.
func (s *Service) Search(ctx context.Context, filters SearchFilters, opts SearchOptions) (*SearchPage, error) {
	filters.Normalize(s.now())
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkWebhook(opts.NotifyURL); err != nil {
		return nil, err
	}

	var resp fields.Raw
	err := s.fetcher.FetchJSON(ctx, upstream.Request{
		Kind: upstream.KindSearch,
		URL:  s.router.BuildURL(upstream.KindSearch, PathItems, filters.Params()),
	}, &resp)
	if err != nil {
		return nil, err
	}
	s.metrics.IncSearch()

	raws, _ := resp["resultado"].([]any)
	page := &SearchPage{
		Items:        NormalizeAll(raws),
		TotalRecords: intValue(resp["totalRegistros"]),
		TotalPages:   intValue(resp["totalPaginas"]),
		Page:         filters.Page,
	}

	if len(page.Items) > 0 && (opts.Enrich || opts.OnlyPositive) {
		page.Items = s.enricher.EnrichAndFilter(ctx, page.Items, opts.OnlyPositive)
	}

	logger.Info(ctx, "search completed",
		"item_code", filters.ItemCode,
		"page", page.Page,
		"rows", len(page.Items),
		"total_records", page.TotalRecords,
		"total_pages", page.TotalPages,
	)

	s.notify(ctx, filters, page, opts.NotifyURL)
	return page, nil
}

// checkWebhook rejects a NotifyURL that is not a configured webhook.
func (s *Service) checkWebhook(raw string) error {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return nil
	}
	if _, ok := s.allowedWebhooks[endpoint]; ok {
		return nil
	}
	return apperror.NewValidation("notifyUrl is not an allowed webhook").WithDetail("notifyUrl", endpoint)
}

func (s *Service) notify(ctx context.Context, filters SearchFilters, page *SearchPage, override string) {
	if s.notifier == nil {
		return
	}
	endpoint := strings.TrimSpace(override)
	if endpoint == "" {
		endpoint = s.defaultWebhook
	}
	if endpoint == "" {
		return
	}

	sample := page.Items
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}
	// Copy so later mutations of the page do not race with the dispatch.
	sample = append([]ResultRow(nil), sample...)

	s.notifier.Dispatch(ctx, endpoint, SearchNotification{
		Type:         NotificationType,
		Filters:      nonBlank(filters.Params()),
		TotalRecords: page.TotalRecords,
		Sample:       sample,
	})
}

// CheckBalance runs the single-row balance lookup.
func (s *Service) CheckBalance(ctx context.Context, q BalanceQuery) (BalanceSummary, error) {
	q.AgreementNumber = strings.TrimSpace(q.AgreementNumber)
	q.ManagingUnitCode = strings.TrimSpace(q.ManagingUnitCode)
	q.ItemNumber = strings.TrimSpace(q.ItemNumber)
	if !q.Complete() {
		return BalanceSummary{}, apperror.NewValidation("agreement number, managing unit and item number are required")
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = balancePageSize
	}
	return s.enricher.CheckBalance(ctx, q)
}

// AgreementQuery selects one agreement for the detail view.
type AgreementQuery struct {
	ManagingUnitCode string
	AgreementNumber  string
	ValidityFrom     string
	ValidityTo       string
}

// Agreement loads the detail of one agreement. The entry whose number matches is
// preferred, otherwise the first returned entry is used.
func (s *Service) Agreement(ctx context.Context, q AgreementQuery) (*Agreement, error) {
	unit := strings.TrimSpace(q.ManagingUnitCode)
	number := strings.TrimSpace(q.AgreementNumber)
	if unit == "" || number == "" {
		return nil, apperror.NewValidation("managing unit and agreement number are required")
	}

	var resp fields.Raw
	err := s.fetcher.FetchJSON(ctx, upstream.Request{
		Kind: upstream.KindSearch,
		URL: s.router.BuildURL(upstream.KindSearch, PathAgreements, upstream.Params{
			"pagina":                    1,
			"tamanhoPagina":             10,
			"codigoUnidadeGerenciadora": unit,
			"numeroAtaRegistroPreco":    number,
			"dataVigenciaInicialMin":    q.ValidityFrom,
			"dataVigenciaInicialMax":    q.ValidityTo,
		}),
	}, &resp)
	if err != nil {
		return nil, err
	}

	entries := resultObjects(resp)
	if len(entries) == 0 {
		return nil, apperror.NewNotFound("agreement", number).WithDetail("managingUnitCode", unit)
	}
	chosen := entries[0]
	for _, e := range entries {
		if e.String("numeroAtaRegistroPreco") == number {
			chosen = e
			break
		}
	}

	return &Agreement{
		Number:           chosen.String("numeroAtaRegistroPreco"),
		ManagingUnitName: chosen.String("nomeUnidadeGerenciadora"),
		Object:           chosen.String("objeto"),
		ValidityStart:    chosen.String("dataVigenciaInicial"),
		ValidityEnd:      chosen.String("dataVigenciaFinal"),
		ModalityName:     chosen.String("nomeModalidadeCompra"),
		AgreementLink:    chosen.First("linkAtaPNCP", "linkAtaPncp"),
		PurchaseLink:     chosen.First("linkCompraPNCP", "linkCompraPncp"),
	}, nil
}

// intValue reads a JSON count, treating absent or non-numeric values as zero.
func intValue(v any) int {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return int(f)
		}
	case float64:
		return int(n)
	}
	return 0
}

func nonBlank(p upstream.Params) map[string]any {
	out := make(map[string]any, len(p))
	for k, v := range p {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		out[k] = v
	}
	return out
}
