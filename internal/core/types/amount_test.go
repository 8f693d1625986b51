package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
		ok   bool
	}{
		{name: "json number", in: json.Number("12.50"), want: "12.5", ok: true},
		{name: "numeric string", in: " 9 ", want: "9", ok: true},
		{name: "float", in: 3.25, want: "3.25", ok: true},
		{name: "int", in: 7, want: "7", ok: true},
		{name: "blank string", in: "  ", ok: false},
		{name: "text", in: "sob consulta", ok: false},
		{name: "nan", in: "NaN", ok: false},
		{name: "nil", in: nil, ok: false},
		{name: "bool", in: true, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseNumber(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestAmount_KeepsMalformedValue(t *testing.T) {
	assert.Nil(t, NewAmount(nil))

	bad := NewAmount("R$ 10,00")
	require.NotNil(t, bad)
	assert.False(t, bad.Valid)
	assert.Equal(t, "R$ 10,00", bad.String())
	assert.Equal(t, "R$ 10,00", bad.FormatBRL())

	data, err := json.Marshal(bad)
	require.NoError(t, err)
	assert.JSONEq(t, `"R$ 10,00"`, string(data))
}

func TestAmount_JSONString(t *testing.T) {
	a := NewAmount(json.Number("1234.5"))
	require.NotNil(t, a)
	assert.True(t, a.Valid)

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"1234.5"`, string(data))

	balance, err := json.Marshal(a.Value)
	require.NoError(t, err)
	assert.Equal(t, string(balance), string(data), "amounts and decimals share one encoding")

	var back Amount
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Valid)
	assert.True(t, a.Value.Equal(back.Value))
}

func TestAmount_FormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 1.234.567,89", NewAmount("1234567.891").FormatBRL())
	assert.Equal(t, "R$ 0,50", NewAmount(0.5).FormatBRL())
	assert.Equal(t, "-R$ 12,00", NewAmount(-12).FormatBRL())
}
