// Package upstream talks to the third-party APIs: the ARP search and balance
// endpoints and the two company registries.
package upstream

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Kind identifies an upstream service.
type Kind string

const (
	KindSearch            Kind = "search"
	KindBalance           Kind = "balance"
	KindSupplierPrimary   Kind = "supplier_primary"
	KindSupplierSecondary Kind = "supplier_secondary"
	KindWebhook           Kind = "webhook"
)

// Kinds lists the routed upstream services.
var Kinds = []Kind{KindSearch, KindBalance, KindSupplierPrimary, KindSupplierSecondary}

// ProxyPrefix is the sub-path under which each kind is served by the local proxy.
var ProxyPrefix = map[Kind]string{
	KindSearch:            "/api/",
	KindBalance:           "/api/",
	KindSupplierPrimary:   "/api/cnpj/",
	KindSupplierSecondary: "/api/cnpj-br/",
}

// Hosts are the real external base URLs.
type Hosts struct {
	ARP               string
	SupplierPrimary   string
	SupplierSecondary string
}

// DefaultHosts returns the production endpoints.
func DefaultHosts() Hosts {
	return Hosts{
		ARP:               "https://dadosabertos.compras.gov.br/",
		SupplierPrimary:   "https://www.receitaws.com.br/v1/cnpj/",
		SupplierSecondary: "https://brasilapi.com.br/api/cnpj/v1/",
	}
}

// Environment describes where the process runs. It is read once at startup.
type Environment struct {
	// Local routes every kind through ProxyOrigin instead of the real hosts.
	Local       bool
	ProxyOrigin string
}

// Router resolves base URLs per kind for a fixed environment.
type Router struct {
	env    Environment
	bases  map[Kind]*url.URL
	direct map[Kind]*url.URL
}

// NewRouter resolves all base URLs up front.
func NewRouter(env Environment, hosts Hosts) (*Router, error) {
	r := &Router{
		env:    env,
		bases:  make(map[Kind]*url.URL, len(Kinds)),
		direct: make(map[Kind]*url.URL, len(Kinds)),
	}

	directRaw := map[Kind]string{
		KindSearch:            hosts.ARP,
		KindBalance:           hosts.ARP,
		KindSupplierPrimary:   hosts.SupplierPrimary,
		KindSupplierSecondary: hosts.SupplierSecondary,
	}

	var origin *url.URL
	if env.Local {
		u, err := parseBase(env.ProxyOrigin)
		if err != nil {
			return nil, fmt.Errorf("proxy origin: %w", err)
		}
		origin = u
	}

	for _, kind := range Kinds {
		d, err := parseBase(directRaw[kind])
		if err != nil {
			return nil, fmt.Errorf("%s host: %w", kind, err)
		}
		r.direct[kind] = d

		if origin != nil {
			r.bases[kind] = origin.ResolveReference(&url.URL{Path: ProxyPrefix[kind]})
		} else {
			r.bases[kind] = d
		}
	}

	return r, nil
}

func parseBase(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q is not an absolute URL", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// IsLocal reports whether calls go through the local proxy.
func (r *Router) IsLocal() bool { return r.env.Local }

// ResolveBaseURL returns the base URL for kind in the configured environment.
func (r *Router) ResolveBaseURL(kind Kind) *url.URL {
	return cloneURL(r.bases[kind])
}

// DirectBaseURL returns the real external base URL for kind, ignoring the environment.
// The local proxy forwards to these.
func (r *Router) DirectBaseURL(kind Kind) *url.URL {
	return cloneURL(r.direct[kind])
}

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Params are query parameters. Values whose trimmed text is empty are never sent.
type Params map[string]any

// BuildURL joins path (one leading "/" stripped) onto the base URL of kind and
// appends the non-blank params.
func (r *Router) BuildURL(kind Kind, path string, params Params) string {
	base := r.bases[kind]
	if base == nil {
		return ""
	}
	return JoinURL(base, path, params)
}

// JoinURL resolves path against base and encodes the non-blank params.
func JoinURL(base *url.URL, path string, params Params) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	u := base.ResolveReference(ref)

	q := u.Query()
	for key, value := range params {
		text, ok := paramText(value)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		q.Set(key, text)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func paramText(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case *string:
		if t == nil {
			return "", false
		}
		return *t, true
	case int:
		return strconv.Itoa(t), true
	case *int:
		if t == nil {
			return "", false
		}
		return strconv.Itoa(*t), true
	case bool:
		return strconv.FormatBool(t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return fmt.Sprint(t), true
	}
}
