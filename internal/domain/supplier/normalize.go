package supplier

import "arpscout/internal/core/fields"

// Key aliases across the ReceitaWS and BrasilAPI shapes, first informed wins.
var (
	keysLegalName   = []string{"razaoSocial", "nome", "razao_social", "fantasia", "nome_fantasia"}
	keysTradeName   = []string{"fantasia", "nome_fantasia"}
	keysStatus      = []string{"situacao", "descricao_situacao_cadastral"}
	keysFoundedDate = []string{"abertura", "data_inicio_atividade"}
	keysPhone       = []string{"telefone", "ddd_telefone_1", "ddd_telefone_2"}

	addressKeys = [][]string{
		{"logradouro", "descricao_tipo_de_logradouro"},
		{"numero"},
		{"complemento"},
		{"bairro"},
		{"municipio"},
		{"uf"},
		{"cep"},
	}
)

// Normalize maps a registry response onto Record. Both shapes are probed
// whatever the source, since the registries overlap in field names.
func Normalize(raw fields.Raw, taxID string, source Source) Record {
	rec := Record{
		TaxID:        taxID,
		LegalName:    raw.First(keysLegalName...),
		TradeName:    raw.First(keysTradeName...),
		Status:       raw.First(keysStatus...),
		FoundedDate:  raw.First(keysFoundedDate...),
		Phone:        raw.First(keysPhone...),
		Email:        raw.First("email"),
		AddressParts: []string{},
		Source:       source,
	}
	for _, keys := range addressKeys {
		if part := raw.First(keys...); part != "" {
			rec.AddressParts = append(rec.AddressParts, part)
		}
	}
	return rec
}
