package arp

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"arpscout/internal/core/fields"
	"arpscout/internal/core/types"
	"arpscout/internal/infrastructure/metrics"
	"arpscout/internal/upstream"
	"arpscout/pkg/logger"
)

// Enricher annotates rows with their adhesion balance.
type Enricher struct {
	fetcher upstream.Fetcher
	router  *upstream.Router
	metrics *metrics.Registry

	// limit caps concurrent lookups per page, 0 means one goroutine per row.
	limit int
}

// NewEnricher creates an Enricher. limit <= 0 disables the concurrency cap.
func NewEnricher(fetcher upstream.Fetcher, router *upstream.Router, limit int, m *metrics.Registry) *Enricher {
	if limit < 0 {
		limit = 0
	}
	return &Enricher{fetcher: fetcher, router: router, limit: limit, metrics: m}
}

type balanceOutcome struct {
	summary BalanceSummary
	status  BalanceStatus
}

// EnrichAndFilter looks up the balance of every row concurrently and writes
// MaxAdhesionBalance, AdhesionAccepted and BalanceStatus in place.
//
// A failed lookup only affects its own row. Rows that cannot be queried keep
// no balance. With onlyPositive the result holds just the rows whose balance is
// strictly positive, in their original order; otherwise rows is returned as is.
func (e *Enricher) EnrichAndFilter(ctx context.Context, rows []ResultRow, onlyPositive bool) []ResultRow {
	outcomes := make([]balanceOutcome, len(rows))

	var g errgroup.Group
	if e.limit > 0 {
		g.SetLimit(e.limit)
	}

	for i := range rows {
		query, ok := rows[i].BalanceQuery()
		if !ok {
			outcomes[i].status = BalanceUnavailable
			continue
		}
		i := i
		g.Go(func() error {
			summary, err := e.CheckBalance(ctx, query)
			if err != nil {
				logger.Debug(ctx, "balance lookup failed",
					"agreement", query.AgreementNumber,
					"unit", query.ManagingUnitCode,
					"item", query.ItemNumber,
					"error", err,
				)
				outcomes[i].status = BalanceFailed
				return nil
			}
			outcomes[i].summary = summary
			outcomes[i].status = BalanceOK
			if !summary.HasValues {
				outcomes[i].status = BalanceNone
			}
			return nil
		})
	}
	_ = g.Wait()

	for i := range rows {
		out := outcomes[i]
		rows[i].BalanceStatus = out.status
		e.metrics.IncEnriched(string(out.status))

		if out.status == BalanceOK || out.status == BalanceNone {
			balance := out.summary.Max
			accepted := out.summary.Accepted
			rows[i].MaxAdhesionBalance = &balance
			rows[i].AdhesionAccepted = &accepted
		}
	}

	if !onlyPositive {
		return rows
	}
	return FilterPositive(rows)
}

// FilterPositive keeps rows with a balance strictly greater than zero, preserving order.
func FilterPositive(rows []ResultRow) []ResultRow {
	kept := make([]ResultRow, 0, len(rows))
	for _, row := range rows {
		if row.MaxAdhesionBalance != nil && row.MaxAdhesionBalance.IsPositive() {
			kept = append(kept, row)
		}
	}
	return kept
}

// CheckBalance queries the units of a single agreement item and aggregates them.
// The batch path uses it for every row, so both produce the same numbers.
func (e *Enricher) CheckBalance(ctx context.Context, q BalanceQuery) (BalanceSummary, error) {
	var resp fields.Raw
	err := e.fetcher.FetchJSON(ctx, upstream.Request{
		Kind: upstream.KindBalance,
		URL:  e.router.BuildURL(upstream.KindBalance, PathItemUnits, q.Params()),
	}, &resp)
	if err != nil {
		return BalanceSummary{}, err
	}
	return Aggregate(resultObjects(resp)), nil
}

// Aggregate folds the units of one item: the maximum numeric balance (preferring
// saldoAdesoes, falling back to saldoEmpenho) and whether any unit accepts adhesion.
func Aggregate(units []fields.Raw) BalanceSummary {
	summary := BalanceSummary{Max: decimal.Zero}
	for _, unit := range units {
		if unit.Bool("aceitaAdesao") {
			summary.Accepted = true
		}

		v, ok := unit.Value("saldoAdesoes", "saldoEmpenho")
		if !ok {
			continue
		}
		n, ok := types.ParseNumber(v)
		if !ok {
			continue
		}
		if !summary.HasValues || n.GreaterThan(summary.Max) {
			summary.Max = n
		}
		summary.HasValues = true
	}
	return summary
}

// resultObjects returns the objects of the "resultado" array, or nil when the
// field is missing or not an array.
func resultObjects(resp fields.Raw) []fields.Raw {
	list, ok := resp["resultado"].([]any)
	if !ok {
		return nil
	}
	out := make([]fields.Raw, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, fields.Raw(obj))
		}
	}
	return out
}
