// Package types provides value types shared across domains.
package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// ParseNumber converts a decoded JSON scalar into a finite decimal.
// Strings are trimmed; blank strings, booleans, nil and non-finite text are rejected.
func ParseNumber(v any) (Money, bool) {
	switch n := v.(type) {
	case nil:
		return decimal.Zero, false
	case json.Number:
		return parseDecimalString(n.String())
	case string:
		return parseDecimalString(n)
	case float64:
		d, err := decimal.NewFromString(fmt.Sprint(n))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	default:
		return decimal.Zero, false
	}
}

func parseDecimalString(s string) (Money, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Amount is an upstream monetary field. When the upstream value is not a finite
// number the original text is kept in Raw and Valid is false, so a malformed
// value is shown as-is instead of being reported as zero.
type Amount struct {
	Value Money
	Raw   string
	Valid bool
}

// NewAmount builds an Amount from a decoded JSON value. Returns nil for nil input.
func NewAmount(v any) *Amount {
	if v == nil {
		return nil
	}
	if d, ok := ParseNumber(v); ok {
		return &Amount{Value: d, Raw: d.String(), Valid: true}
	}
	return &Amount{Raw: fmt.Sprint(v)}
}

// MarshalJSON encodes the amount as a JSON string, like decimal.Decimal, so
// precision survives. Invalid amounts keep their raw text.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts either a JSON number or a string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var v any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return err
	}
	if parsed := NewAmount(v); parsed != nil {
		*a = *parsed
	}
	return nil
}

// String returns the decimal representation or the raw upstream text.
func (a Amount) String() string {
	if a.Valid {
		return a.Value.String()
	}
	return a.Raw
}

// FormatBRL renders a valid amount in Brazilian currency notation ("R$ 1.234,56").
// Invalid amounts are returned unchanged.
func (a Amount) FormatBRL() string {
	if !a.Valid {
		return a.Raw
	}
	neg := a.Value.IsNegative()
	fixed := a.Value.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	out := "R$ " + b.String() + "," + frac
	if neg {
		return "-" + out
	}
	return out
}
