package fields

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, s string) Raw {
	t.Helper()
	var r Raw
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&r))
	return r
}

func TestPick_NullFallsThroughEmptyDoesNot(t *testing.T) {
	r := decode(t, `{"a": null, "b": "", "c": "x", "n": 123456789012}`)

	got := r.Pick("a", "b", "c")
	require.NotNil(t, got)
	assert.Equal(t, "", *got)

	assert.Nil(t, r.Pick("a", "missing"))
	assert.Equal(t, "123456789012", *r.Pick("n"))
}

func TestFirst_SkipsFalsyValues(t *testing.T) {
	r := decode(t, `{"a": "", "b": null, "c": 0, "d": "found"}`)
	assert.Equal(t, "found", r.First("a", "b", "c", "d"))
	assert.Equal(t, "", r.First("a", "b"))
}

func TestBool_StrictTrue(t *testing.T) {
	r := decode(t, `{"yes": true, "str": "true", "no": false}`)
	assert.True(t, r.Bool("yes"))
	assert.False(t, r.Bool("str"))
	assert.False(t, r.Bool("no"))
	assert.False(t, r.Bool("missing"))
}

func TestDigits(t *testing.T) {
	assert.Equal(t, "12345678000195", Digits("12.345.678/0001-95"))
	assert.Equal(t, "", Digits("n/a"))
}
