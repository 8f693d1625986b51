package dto

import (
	"arpscout/internal/domain/arp"
)

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	ItemCode                string `json:"itemCode"`
	ValidityFrom            string `json:"validityFrom"`
	ValidityTo              string `json:"validityTo"`
	PageSize                int    `json:"pageSize" binding:"omitempty,min=1,max=500"`
	ManagingUnitCode        string `json:"managingUnitCode"`
	AgreementNumber         string `json:"agreementNumber"`
	ProcurementModalityCode string `json:"procurementModalityCode"`
	ItemType                string `json:"itemType"`

	Enrich       bool   `json:"enrich"`
	OnlyPositive bool   `json:"onlyPositive"`
	NotifyURL    string `json:"notifyUrl"`
}

// Filters converts the request to search filters. The page is chosen by the pager.
func (r SearchRequest) Filters() arp.SearchFilters {
	return arp.SearchFilters{
		PageSize:                r.PageSize,
		ItemCode:                r.ItemCode,
		ValidityFrom:            r.ValidityFrom,
		ValidityTo:              r.ValidityTo,
		ManagingUnitCode:        r.ManagingUnitCode,
		AgreementNumber:         r.AgreementNumber,
		ProcurementModalityCode: r.ProcurementModalityCode,
		ItemType:                r.ItemType,
	}
}

// Options converts the post-processing flags.
func (r SearchRequest) Options() arp.SearchOptions {
	return arp.SearchOptions{
		Enrich:       r.Enrich,
		OnlyPositive: r.OnlyPositive,
		NotifyURL:    r.NotifyURL,
	}
}

// RowDisplay holds the presentation text of a row.
type RowDisplay struct {
	UnitValue string `json:"unitValue"`
	Balance   string `json:"balance,omitempty"`
}

// RowResponse is a result row with its display text.
type RowResponse struct {
	arp.ResultRow
	Display RowDisplay `json:"display"`
}

// SearchResponse is returned by every search and navigation endpoint.
// Moved is false when a navigation request was out of range and the current
// page is returned unchanged.
type SearchResponse struct {
	Items      []RowResponse `json:"items"`
	Pagination arp.PageState `json:"pagination"`
	Moved      bool          `json:"moved"`
}

// FromSearchPage builds the response for page (nil means nothing loaded yet).
func FromSearchPage(page *arp.SearchPage, state arp.PageState, moved bool) SearchResponse {
	resp := SearchResponse{
		Items:      []RowResponse{},
		Pagination: state,
		Moved:      moved,
	}
	if page == nil {
		return resp
	}
	for _, row := range page.Items {
		resp.Items = append(resp.Items, FromResultRow(row))
	}
	return resp
}

// FromResultRow adds display text to row.
func FromResultRow(row arp.ResultRow) RowResponse {
	display := RowDisplay{UnitValue: arp.DisplayAmount(row.UnitValue)}
	switch {
	case row.MaxAdhesionBalance != nil:
		display.Balance = arp.BalanceLabel(arp.BalanceSummary{
			Max:       *row.MaxAdhesionBalance,
			HasValues: row.BalanceStatus == arp.BalanceOK,
			Accepted:  row.AdhesionAccepted != nil && *row.AdhesionAccepted,
		})
	case row.BalanceStatus == arp.BalanceFailed, row.BalanceStatus == arp.BalanceUnavailable:
		display.Balance = arp.NotAvailable
	}
	return RowResponse{ResultRow: row, Display: display}
}

// BalanceRequest is the query of GET /v1/balance.
type BalanceRequest struct {
	AgreementNumber  string `form:"agreementNumber" binding:"required"`
	ManagingUnitCode string `form:"managingUnitCode" binding:"required"`
	ItemNumber       string `form:"itemNumber" binding:"required"`
}

// Query converts the request to a balance query.
func (r BalanceRequest) Query() arp.BalanceQuery {
	return arp.NewBalanceQuery(r.AgreementNumber, r.ManagingUnitCode, r.ItemNumber)
}

// BalanceResponse is returned by GET /v1/balance.
type BalanceResponse struct {
	arp.BalanceSummary
	Label string `json:"label"`
}

// FromBalanceSummary adds the display label.
func FromBalanceSummary(s arp.BalanceSummary) BalanceResponse {
	return BalanceResponse{BalanceSummary: s, Label: arp.BalanceLabel(s)}
}

// AgreementRequest is the query of GET /v1/agreements/:unit/:number.
type AgreementRequest struct {
	ValidityFrom string `form:"validityFrom"`
	ValidityTo   string `form:"validityTo"`
}
