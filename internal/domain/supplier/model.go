// Package supplier resolves company registration data by CNPJ through two
// public registries, falling back from the primary to the secondary.
package supplier

import "strings"

// Source names the registry that answered.
type Source string

const (
	SourcePrimary   Source = "receitaws"
	SourceSecondary Source = "brasilapi"
)

// Record is the registry data of one company, normalized across both registries.
type Record struct {
	TaxID        string   `json:"taxId"`
	LegalName    string   `json:"legalName"`
	TradeName    string   `json:"tradeName,omitempty"`
	Status       string   `json:"status,omitempty"`
	FoundedDate  string   `json:"foundedDate,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	Email        string   `json:"email,omitempty"`
	AddressParts []string `json:"addressParts"`
	Source       Source   `json:"source"`
}

// Address joins the address parts the way the supplier card shows them.
// Returns "" when no part is informed.
func (r Record) Address() string {
	return strings.Join(r.AddressParts, " - ")
}

// DisplayName prefers the name already known from the search row, then the
// registry name, then a generic label.
func (r Record) DisplayName(known string) string {
	if strings.TrimSpace(known) != "" {
		return known
	}
	if r.LegalName != "" {
		return r.LegalName
	}
	return "Fornecedor"
}
