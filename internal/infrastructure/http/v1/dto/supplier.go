package dto

import "arpscout/internal/domain/supplier"

// SupplierResponse is returned by GET /v1/suppliers/:taxId.
type SupplierResponse struct {
	supplier.Record
	DisplayName string `json:"displayName"`
	Address     string `json:"address"`
}

// FromSupplierRecord adds display text. known is the supplier name already shown
// in the result row, if any.
func FromSupplierRecord(rec *supplier.Record, known string) SupplierResponse {
	address := rec.Address()
	if address == "" {
		address = "Nao informado"
	}
	return SupplierResponse{
		Record:      *rec,
		DisplayName: rec.DisplayName(known),
		Address:     address,
	}
}
