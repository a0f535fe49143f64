// Package providers holds the built-in market-data providers and the rules
// for turning a provider endpoint into a request URL.
package providers

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/GregMSThompson/findash-backend/internal/errs"
	"github.com/GregMSThompson/findash-backend/internal/models"
)

const (
	AlphaVantage = "alpha-vantage"
	Finnhub      = "finnhub"

	// Custom labels any host that is not a built-in provider.
	Custom = "custom"
)

// Defaults returns a fresh copy of the built-in providers. Both start
// disabled and without a key.
func Defaults() []models.Provider {
	return []models.Provider{
		{
			ID:      AlphaVantage,
			Name:    "Alpha Vantage",
			BaseURL: "https://www.alphavantage.co/query",
			Endpoints: []models.Endpoint{
				{Name: "quote", Path: "?function=GLOBAL_QUOTE&symbol={symbol}&apikey={apiKey}"},
				{Name: "search", Path: "?function=SYMBOL_SEARCH&keywords={keywords}&apikey={apiKey}"},
				{Name: "intraday", Path: "?function=TIME_SERIES_INTRADAY&symbol={symbol}&interval=5min&apikey={apiKey}"},
				{Name: "daily", Path: "?function=TIME_SERIES_DAILY&symbol={symbol}&apikey={apiKey}"},
				{Name: "forex", Path: "?function=CURRENCY_EXCHANGE_RATE&from_currency={from}&to_currency={to}&apikey={apiKey}"},
			},
		},
		{
			ID:      Finnhub,
			Name:    "Finnhub",
			BaseURL: "https://finnhub.io/api/v1",
			Endpoints: []models.Endpoint{
				{Name: "quote", Path: "/quote?symbol={symbol}&token={apiKey}"},
				{Name: "search", Path: "/search?q={keywords}&token={apiKey}"},
				{Name: "candles", Path: "/stock/candle?symbol={symbol}&resolution=D&from={from}&to={to}&token={apiKey}"},
				{Name: "crypto-candles", Path: "/crypto/candle?symbol={symbol}&resolution=D&from={from}&to={to}&token={apiKey}"},
			},
		},
	}
}

// IsBuiltin reports whether id names a default provider.
func IsBuiltin(id string) bool {
	for _, p := range Defaults() {
		if p.ID == id {
			return true
		}
	}
	return false
}

// ForHost maps a request host to the built-in provider serving it, or Custom.
// The result is safe to use as a metric label.
func ForHost(host string) string {
	host = strings.ToLower(host)
	for _, p := range Defaults() {
		u, err := url.Parse(p.BaseURL)
		if err != nil {
			continue
		}
		base := strings.TrimPrefix(u.Hostname(), "www.")
		h := strings.TrimPrefix(stripPort(host), "www.")
		if h == base || strings.HasSuffix(h, "."+base) {
			return p.ID
		}
	}
	return Custom
}

func stripPort(host string) string {
	if i := strings.LastIndexByte(host, ':'); i >= 0 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}

// Merge overlays saved providers on the defaults: a saved entry with a
// default's id replaces its settings, and the remaining saved entries are
// appended in their saved order. Empty name, base URL or endpoint list on a
// saved entry keep the default's value.
func Merge(defaults, saved []models.Provider) []models.Provider {
	byID := make(map[string]models.Provider, len(saved))
	for _, s := range saved {
		byID[s.ID] = s
	}

	out := make([]models.Provider, 0, len(defaults)+len(saved))
	known := make(map[string]struct{}, len(defaults))
	for _, d := range defaults {
		known[d.ID] = struct{}{}
		s, ok := byID[d.ID]
		if !ok {
			out = append(out, d)
			continue
		}
		if s.Name == "" {
			s.Name = d.Name
		}
		if s.BaseURL == "" {
			s.BaseURL = d.BaseURL
		}
		if len(s.Endpoints) == 0 {
			s.Endpoints = d.Endpoints
		}
		out = append(out, s)
	}
	for _, s := range saved {
		if _, ok := known[s.ID]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Find returns the provider with the given id.
func Find(list []models.Provider, id string) (models.Provider, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return models.Provider{}, false
}

// BuildURL fills an endpoint template. Parameters replace the first
// occurrence of their placeholder, URI-component encoded; the API key is
// substituted last and verbatim.
func BuildURL(p models.Provider, endpointName string, params map[string]string) (string, error) {
	if !p.Enabled {
		return "", errs.NewConfigError(fmt.Sprintf("Provider %s is not enabled.", p.Name))
	}
	if p.APIKey == "" {
		return "", errs.NewConfigError(fmt.Sprintf("API key for %s is missing.", p.Name))
	}

	var tmpl string
	found := false
	for _, e := range p.Endpoints {
		if e.Name == endpointName {
			tmpl, found = e.Path, true
			break
		}
	}
	if !found {
		return "", errs.NewConfigError(fmt.Sprintf("Endpoint '%s' not found for provider '%s'.", endpointName, p.Name))
	}

	names := make([]string, 0, len(params))
	for k := range params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		tmpl = strings.Replace(tmpl, "{"+k+"}", EncodeURIComponent(params[k]), 1)
	}
	tmpl = strings.Replace(tmpl, "{apiKey}", p.APIKey, 1)

	return p.BaseURL + tmpl, nil
}

// EncodeURIComponent escapes everything except A-Z a-z 0-9 and -_.!~*'().
func EncodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
