// Package rates supplies live currency-rate tables with an EUR base,
// caching them briefly and degrading to the built-in static table whenever
// the feed is unreachable. Rate data is a display concern, so every failure
// path here is soft.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"subtrack/internal/cache"
	"subtrack/internal/currency"
)

const (
	// DefaultFeedURL serves latest EUR-based rates as {"base":..,"rates":{..}}.
	DefaultFeedURL = "https://api.frankfurter.app/latest"

	feedBase     = "EUR"
	cacheTTL     = 30 * time.Minute
	fetchTimeout = 10 * time.Second
)

// Provider fetches rate tables on demand.
type Provider struct {
	url    string
	client *http.Client
	cache  *cache.TTLCache[currency.RateTable]
}

// NewProvider builds a provider for the given feed URL. A nil client uses a
// default with a sane timeout.
func NewProvider(url string, client *http.Client) *Provider {
	if url == "" {
		url = DefaultFeedURL
	}
	if client == nil {
		client = &http.Client{Timeout: fetchTimeout}
	}
	return &Provider{
		url:    url,
		client: client,
		cache:  cache.NewTTLCache[currency.RateTable](1, cacheTTL),
	}
}

// Table returns the current dynamic rate table, served from cache when
// fresh. On any fetch or decode failure the static USD table is returned
// instead; the caller cannot tell the difference and does not need to,
// since conversion falls back identically either way.
func (p *Provider) Table(ctx context.Context) currency.RateTable {
	if table, ok := p.cache.Get(p.url); ok {
		return table
	}

	table, err := p.fetch(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Rate feed unavailable, using static table",
			"url", p.url, "error", err)
		return currency.StaticTable()
	}

	p.cache.Set(p.url, table)
	return table
}

func (p *Provider) fetch(ctx context.Context) (currency.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return currency.RateTable{}, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return currency.RateTable{}, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return currency.RateTable{}, fmt.Errorf("rate feed returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return currency.RateTable{}, fmt.Errorf("read response: %w", err)
	}

	var table currency.RateTable
	if err := json.Unmarshal(body, &table); err != nil {
		return currency.RateTable{}, fmt.Errorf("decode rates: %w", err)
	}
	if len(table.Rates) == 0 {
		return currency.RateTable{}, fmt.Errorf("rate feed returned no rates")
	}
	if table.Base == "" {
		table.Base = feedBase
	}
	return table, nil
}
