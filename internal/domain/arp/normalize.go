package arp

import (
	"strings"

	"arpscout/internal/core/fields"
	"arpscout/internal/core/types"
)

// Key aliases, highest priority first.
var (
	keysAgreementNumber  = []string{"numeroAtaRegistroPreco", "numeroAta"}
	keysItemCatalogCode  = []string{"codigoItem", "codigoItemMaterial"}
	keysItemNumber       = []string{"numeroItem"}
	keysDescription      = []string{"descricaoItem", "descricaoDetalhada", "descricao"}
	keysManagingUnitCode = []string{"codigoUnidadeGerenciadora", "unidadeGerenciadora"}
	keysManagingUnitName = []string{"nomeUnidadeGerenciadora", "nomeOrgaoGerenciador"}
	keysSupplierTaxID    = []string{"niFornecedor", "cnpjFornecedor"}
	keysSupplierName     = []string{"nomeRazaoSocialFornecedor", "nomeFornecedor"}
	keysUnitValue        = []string{"valorUnitario", "valorUnitarioItem", "valorUnitarioHomologado"}
)

// Normalize maps a raw search row onto ResultRow.
func Normalize(raw fields.Raw) ResultRow {
	row := ResultRow{
		AgreementNumber:  raw.Pick(keysAgreementNumber...),
		ItemCatalogCode:  raw.Pick(keysItemCatalogCode...),
		ItemNumber:       raw.Pick(keysItemNumber...),
		Description:      raw.Pick(keysDescription...),
		ManagingUnitCode: raw.Pick(keysManagingUnitCode...),
		ManagingUnitName: raw.Pick(keysManagingUnitName...),
		SupplierTaxID:    raw.Pick(keysSupplierTaxID...),
		SupplierName:     raw.Pick(keysSupplierName...),
	}
	if v, ok := raw.Value(keysUnitValue...); ok {
		row.UnitValue = types.NewAmount(v)
	}
	return row
}

// NormalizeAll maps raw rows in order, skipping entries that are not objects.
func NormalizeAll(raws []any) []ResultRow {
	rows := make([]ResultRow, 0, len(raws))
	for _, r := range raws {
		obj, ok := r.(map[string]any)
		if !ok {
			continue
		}
		rows = append(rows, Normalize(fields.Raw(obj)))
	}
	return rows
}

// NotAvailable is what presentation layers show for missing values.
const NotAvailable = "-"

// DisplayText renders an optional text field, using NotAvailable for nil or blank.
func DisplayText(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return NotAvailable
	}
	return *s
}

// DisplayAmount renders an optional monetary field in BRL.
func DisplayAmount(a *types.Amount) string {
	if a == nil || (!a.Valid && a.Raw == "") {
		return NotAvailable
	}
	return a.FormatBRL()
}

// BalanceLabel renders a balance summary the way the result table shows it.
func BalanceLabel(s BalanceSummary) string {
	value := "Sem saldo"
	if s.HasValues {
		value = s.Max.String()
	}
	if s.Accepted {
		return value + " (aceita)"
	}
	return value + " (nao aceita)"
}
