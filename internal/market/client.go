// Package market provides the outbound client for the quote provider.
package market

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stockpilot/internal/config"
)

// ProviderQuote is one quote as returned by the provider, normalized to
// cents.
type ProviderQuote struct {
	Symbol    string
	Price     int64 // cents
	DayChange int64 // cents, signed
	AsOf      time.Time
}

// Fetcher is the interface the quote service consumes. Satisfied by Client
// and by test fakes.
type Fetcher interface {
	FetchQuotes(ctx context.Context, symbols []string) ([]ProviderQuote, error)
}

// Client is a rate-limited client for the market data provider.
type Client struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.SugaredLogger
	limiter *rate.Limiter
}

// ensure Client implements the interface
var _ Fetcher = (*Client)(nil)

// NewClient creates a new market data client from configuration.
func NewClient(cfg *config.Config, logger *zap.SugaredLogger) *Client {
	client := resty.New().
		SetBaseURL(cfg.MarketBaseURL).
		SetTimeout(cfg.MarketTimeout)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.MarketRateLimit), cfg.MarketRateLimitBurst)

	return &Client{
		client:  client,
		apiKey:  cfg.MarketAPIKey,
		logger:  logger,
		limiter: limiter,
	}
}

// quoteResponse is the provider's wire format: prices in dollars.
type quoteResponse struct {
	Quotes []struct {
		Symbol    string  `json:"symbol"`
		Price     float64 `json:"price"`
		DayChange float64 `json:"change"`
		Timestamp int64   `json:"timestamp"`
	} `json:"quotes"`
}

// FetchQuotes fetches current quotes for the given symbols in one batch
// request. Symbols are deduplicated and upper-cased. Quotes the provider
// does not know are simply absent from the result.
func (c *Client) FetchQuotes(ctx context.Context, symbols []string) ([]ProviderQuote, error) {
	symbols = normalizeSymbols(symbols)
	if len(symbols) == 0 {
		return []ProviderQuote{}, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait: %w", err)
	}

	var result quoteResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("X-Api-Key", c.apiKey).
		SetQueryParam("symbols", strings.Join(symbols, ",")).
		SetResult(&result).
		Get("/quotes")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("quote request failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	quotes := make([]ProviderQuote, 0, len(result.Quotes))
	for _, q := range result.Quotes {
		asOf := time.Now()
		if q.Timestamp > 0 {
			asOf = time.Unix(q.Timestamp, 0)
		}
		quotes = append(quotes, ProviderQuote{
			Symbol:    strings.ToUpper(q.Symbol),
			Price:     dollarsToCents(q.Price),
			DayChange: dollarsToCents(q.DayChange),
			AsOf:      asOf,
		})
	}

	c.logger.Debugw("fetched quotes", "requested", len(symbols), "received", len(quotes))
	return quotes, nil
}

// dollarsToCents converts a dollar amount from the wire into whole cents
// without accumulating float error.
func dollarsToCents(dollars float64) int64 {
	return decimal.NewFromFloat(dollars).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// normalizeSymbols upper-cases, trims, and deduplicates while preserving
// order.
func normalizeSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
