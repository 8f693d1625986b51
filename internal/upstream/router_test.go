package upstream

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveBaseURL_Direct(t *testing.T) {
	r, err := NewRouter(Environment{}, DefaultHosts())
	require.NoError(t, err)

	assert.False(t, r.IsLocal())
	assert.Equal(t, "https://dadosabertos.compras.gov.br/", r.ResolveBaseURL(KindSearch).String())
	assert.Equal(t, "https://dadosabertos.compras.gov.br/", r.ResolveBaseURL(KindBalance).String())
	assert.Equal(t, "https://www.receitaws.com.br/v1/cnpj/", r.ResolveBaseURL(KindSupplierPrimary).String())
	assert.Equal(t, "https://brasilapi.com.br/api/cnpj/v1/", r.ResolveBaseURL(KindSupplierSecondary).String())
}

func TestResolveBaseURL_Local(t *testing.T) {
	r, err := NewRouter(Environment{Local: true, ProxyOrigin: "http://localhost:3000"}, DefaultHosts())
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api/", r.ResolveBaseURL(KindSearch).String())
	assert.Equal(t, "http://localhost:3000/api/", r.ResolveBaseURL(KindBalance).String())
	assert.Equal(t, "http://localhost:3000/api/cnpj/", r.ResolveBaseURL(KindSupplierPrimary).String())
	assert.Equal(t, "http://localhost:3000/api/cnpj-br/", r.ResolveBaseURL(KindSupplierSecondary).String())

	// Direct hosts stay available to the proxy.
	assert.Equal(t, "https://www.receitaws.com.br/v1/cnpj/", r.DirectBaseURL(KindSupplierPrimary).String())
}

func TestResolveBaseURL_ReturnsCopy(t *testing.T) {
	r, err := NewRouter(Environment{}, DefaultHosts())
	require.NoError(t, err)

	u := r.ResolveBaseURL(KindSearch)
	u.Path = "/mutated/"
	assert.Equal(t, "https://dadosabertos.compras.gov.br/", r.ResolveBaseURL(KindSearch).String())
}

func TestNewRouter_InvalidOrigin(t *testing.T) {
	_, err := NewRouter(Environment{Local: true, ProxyOrigin: "localhost"}, DefaultHosts())
	assert.Error(t, err)

	_, err = NewRouter(Environment{}, Hosts{ARP: "::bad"})
	assert.Error(t, err)
}

func TestBuildURL_SkipsBlankParams(t *testing.T) {
	r, err := NewRouter(Environment{}, DefaultHosts())
	require.NoError(t, err)

	var nilStr *string
	got := r.BuildURL(KindSearch, "/x", Params{"a": "", "b": nil, "c": "5", "d": "   ", "e": nilStr})

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "/x", u.Path)
	assert.Equal(t, "c=5", u.RawQuery)
}

func TestBuildURL_JoinsPathUnderBase(t *testing.T) {
	r, err := NewRouter(Environment{Local: true, ProxyOrigin: "http://127.0.0.1:8080"}, DefaultHosts())
	require.NoError(t, err)

	got := r.BuildURL(KindSearch, "/modulo-arp/2_consultarARPItem", Params{"pagina": 1, "codigoItem": "1234"})
	assert.Equal(t, "http://127.0.0.1:8080/api/modulo-arp/2_consultarARPItem?codigoItem=1234&pagina=1", got)

	got = r.BuildURL(KindSupplierSecondary, "12345678000195", nil)
	assert.Equal(t, "http://127.0.0.1:8080/api/cnpj-br/12345678000195", got)
}
