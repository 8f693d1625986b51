package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"arpscout/internal/config"
	"arpscout/internal/upstream"
)

func TestNew_LocalModeRoutesThroughProxy(t *testing.T) {
	t.Setenv("UPSTREAM_MODE", "local")
	t.Setenv("UPSTREAM_PROXY_ORIGIN", "http://localhost:3000")
	cfg, err := config.Load("")
	require.NoError(t, err)

	a, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000/api/cnpj/", a.Upstreams.ResolveBaseURL(upstream.KindSupplierPrimary).String())
	assert.Equal(t, "https://www.receitaws.com.br/v1/cnpj/", a.Upstreams.DirectBaseURL(upstream.KindSupplierPrimary).String())
	assert.NotNil(t, a.Search)
	assert.NotNil(t, a.Notifier)
}

func TestNew_RejectsBadHost(t *testing.T) {
	t.Setenv("ARP_API_BASE", "not a url")
	cfg, err := config.Load("")
	require.NoError(t, err)

	_, err = New(cfg)
	assert.Error(t, err)
}
