// Package arp implements the price-registry (ARP) query pipeline: filter
// validation, the paginated item search, row normalization and the balance
// fan-out that annotates and filters a page.
package arp

import (
	"github.com/shopspring/decimal"

	"arpscout/internal/core/types"
	"arpscout/internal/upstream"
)

// Upstream paths of the dadosabertos "modulo-arp" API.
const (
	PathItems      = "/modulo-arp/2_consultarARPItem"
	PathAgreements = "/modulo-arp/1_consultarARP"
	PathItemUnits  = "/modulo-arp/3_consultarUnidadesItem"
)

const (
	DateLayout        = "2006-01-02"
	DefaultPageSize   = 10
	DefaultWindowDays = 180

	balancePageSize = 20
)

// SearchFilters is the user-facing filter set of an item search.
type SearchFilters struct {
	Page                    int    `json:"page"`
	PageSize                int    `json:"pageSize"`
	ItemCode                string `json:"itemCode"`
	ValidityFrom            string `json:"validityFrom"`
	ValidityTo              string `json:"validityTo"`
	ManagingUnitCode        string `json:"managingUnitCode,omitempty"`
	AgreementNumber         string `json:"agreementNumber,omitempty"`
	ProcurementModalityCode string `json:"procurementModalityCode,omitempty"`
	ItemType                string `json:"itemType,omitempty"`
}

// Params maps the filters onto upstream query parameter names.
func (f SearchFilters) Params() upstream.Params {
	return upstream.Params{
		"pagina":                    f.Page,
		"tamanhoPagina":             f.PageSize,
		"codigoItem":                f.ItemCode,
		"dataVigenciaInicialMin":    f.ValidityFrom,
		"dataVigenciaInicialMax":    f.ValidityTo,
		"codigoUnidadeGerenciadora": f.ManagingUnitCode,
		"numeroAtaRegistroPreco":    f.AgreementNumber,
		"codigoModalidadeCompra":    f.ProcurementModalityCode,
		"tipoItem":                  f.ItemType,
	}
}

// SearchPage is one loaded page of results.
type SearchPage struct {
	Items        []ResultRow `json:"items"`
	TotalRecords int         `json:"totalRecords"`
	TotalPages   int         `json:"totalPages"`
	Page         int         `json:"page"`
}

// BalanceStatus marks the outcome of the balance lookup for one row.
type BalanceStatus string

const (
	// BalanceNotQueried means enrichment did not run for the page.
	BalanceNotQueried BalanceStatus = ""
	BalanceOK         BalanceStatus = "ok"
	// BalanceNone means the lookup succeeded but returned no numeric balance.
	BalanceNone BalanceStatus = "no_balance"
	// BalanceFailed means the lookup for this row failed.
	BalanceFailed BalanceStatus = "failed"
	// BalanceUnavailable means the row lacks the identifiers needed to query.
	BalanceUnavailable BalanceStatus = "unavailable"
)

// ResultRow is a normalized procurement line item. Text fields are nil when the
// upstream omitted them, which is kept distinct from an explicit empty value.
type ResultRow struct {
	AgreementNumber  *string       `json:"agreementNumber"`
	ItemCatalogCode  *string       `json:"itemCatalogCode"`
	ItemNumber       *string       `json:"itemNumber"`
	Description      *string       `json:"description"`
	ManagingUnitCode *string       `json:"managingUnitCode"`
	ManagingUnitName *string       `json:"managingUnitName"`
	SupplierTaxID    *string       `json:"supplierTaxId"`
	SupplierName     *string       `json:"supplierName"`
	UnitValue        *types.Amount `json:"unitValue"`

	// Set by the balance fan-out only.
	MaxAdhesionBalance *decimal.Decimal `json:"maxAdhesionBalance"`
	AdhesionAccepted   *bool            `json:"adhesionAccepted"`
	BalanceStatus      BalanceStatus    `json:"balanceStatus,omitempty"`
}

// RowKey identifies a row within a result set.
type RowKey struct {
	AgreementNumber  string
	ManagingUnitCode string
	ItemCatalogCode  string
}

// Key returns the identity of the row.
func (r ResultRow) Key() RowKey {
	return RowKey{
		AgreementNumber:  deref(r.AgreementNumber),
		ManagingUnitCode: deref(r.ManagingUnitCode),
		ItemCatalogCode:  deref(r.ItemCatalogCode),
	}
}

// BalanceQuery derives the balance lookup for the row. ok is false when any of
// agreement number, managing unit or item number is missing or empty.
func (r ResultRow) BalanceQuery() (BalanceQuery, bool) {
	q := NewBalanceQuery(deref(r.AgreementNumber), deref(r.ManagingUnitCode), deref(r.ItemNumber))
	return q, q.Complete()
}

// BalanceQuery selects the participating units of one agreement item.
type BalanceQuery struct {
	AgreementNumber  string `json:"agreementNumber"`
	ManagingUnitCode string `json:"managingUnitCode"`
	ItemNumber       string `json:"itemNumber"`
	Page             int    `json:"page"`
	PageSize         int    `json:"pageSize"`
}

// NewBalanceQuery builds a query for the first page of up to 20 units.
func NewBalanceQuery(agreement, unit, item string) BalanceQuery {
	return BalanceQuery{
		AgreementNumber:  agreement,
		ManagingUnitCode: unit,
		ItemNumber:       item,
		Page:             1,
		PageSize:         balancePageSize,
	}
}

// Complete reports whether all identifying fields are set.
func (q BalanceQuery) Complete() bool {
	return q.AgreementNumber != "" && q.ManagingUnitCode != "" && q.ItemNumber != ""
}

// Params maps the query onto upstream parameter names.
func (q BalanceQuery) Params() upstream.Params {
	return upstream.Params{
		"pagina":              q.Page,
		"tamanhoPagina":       q.PageSize,
		"numeroAta":           q.AgreementNumber,
		"unidadeGerenciadora": q.ManagingUnitCode,
		"numeroItem":          q.ItemNumber,
	}
}

// BalanceSummary aggregates the balance of every unit returned for one item.
type BalanceSummary struct {
	// Max is the largest numeric balance, zero when there is none.
	Max decimal.Decimal `json:"max"`
	// HasValues is false when no unit carried a numeric balance.
	HasValues bool `json:"hasValues"`
	// Accepted is true when any unit accepts adhesion.
	Accepted bool `json:"accepted"`
}

// Agreement is the detail record of a price-registry agreement.
type Agreement struct {
	Number           string `json:"number"`
	ManagingUnitName string `json:"managingUnitName"`
	Object           string `json:"object"`
	ValidityStart    string `json:"validityStart"`
	ValidityEnd      string `json:"validityEnd"`
	ModalityName     string `json:"modalityName"`
	AgreementLink    string `json:"agreementLink,omitempty"`
	PurchaseLink     string `json:"purchaseLink,omitempty"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
