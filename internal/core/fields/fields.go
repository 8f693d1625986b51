// Package fields reads loosely-typed upstream JSON objects whose key names vary
// between API versions and providers.
package fields

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Raw is a decoded upstream JSON object. Decode with json.Decoder.UseNumber so
// numeric codes keep their exact digits.
type Raw map[string]any

// Value returns the first value among keys that is present and non-null.
// An explicit empty string stops the search, only null falls through.
func (r Raw) Value(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// Pick returns the first present, non-null value among keys as text.
// Nil means every key was absent or null.
func (r Raw) Pick(keys ...string) *string {
	v, ok := r.Value(keys...)
	if !ok {
		return nil
	}
	s := Text(v)
	return &s
}

// First returns the first value among keys whose text is non-empty.
// Unlike Pick, empty strings, zero and false fall through to the next key.
func (r Raw) First(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok && Truthy(v) {
			return Text(v)
		}
	}
	return ""
}

// String returns the text of key, or "" when absent or null.
func (r Raw) String(key string) string {
	if v, ok := r[key]; ok && v != nil {
		return Text(v)
	}
	return ""
}

// Bool reports whether key holds the boolean true. Strings like "true" do not count.
func (r Raw) Bool(key string) bool {
	b, ok := r[key].(bool)
	return ok && b
}

// Text renders a decoded JSON scalar as a string.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// Truthy mirrors how the upstream consumers treat optional values: nil, "",
// false and numeric zero are all "not informed".
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	default:
		return true
	}
}

// Digits strips every non-digit character.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
