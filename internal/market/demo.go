package market

import (
	"strings"
	"time"
)

// demoQuotes is the deterministic fallback quote set served when the
// provider is unreachable. Prices are cents. The set covers the symbols
// the demo dashboard ships with; anything else gets a synthetic quote
// derived from the symbol so fallback output stays reproducible.
var demoQuotes = map[string]ProviderQuote{
	"AAPL":  {Symbol: "AAPL", Price: 22000, DayChange: 200},
	"MSFT":  {Symbol: "MSFT", Price: 41550, DayChange: -125},
	"GOOGL": {Symbol: "GOOGL", Price: 17485, DayChange: 93},
	"AMZN":  {Symbol: "AMZN", Price: 18320, DayChange: 147},
	"NVDA":  {Symbol: "NVDA", Price: 87566, DayChange: 1250},
	"TSLA":  {Symbol: "TSLA", Price: 43658, DayChange: -1350},
	"SPY":   {Symbol: "SPY", Price: 54510, DayChange: 218},
	"VTI":   {Symbol: "VTI", Price: 26933, DayChange: 101},
}

// DemoQuotes returns fallback quotes for the given symbols. Every requested
// symbol gets a quote; output is deterministic for a given input.
func DemoQuotes(symbols []string, asOf time.Time) []ProviderQuote {
	symbols = normalizeSymbols(symbols)
	quotes := make([]ProviderQuote, 0, len(symbols))
	for _, s := range symbols {
		q, ok := demoQuotes[s]
		if !ok {
			q = syntheticQuote(s)
		}
		q.AsOf = asOf
		quotes = append(quotes, q)
	}
	return quotes
}

// syntheticQuote derives a stable pseudo-price from the symbol's letters so
// unknown symbols still render something plausible in demo mode.
func syntheticQuote(symbol string) ProviderQuote {
	var h int64
	for _, r := range strings.ToUpper(symbol) {
		h = h*31 + int64(r)
	}
	if h < 0 {
		h = -h
	}
	price := 1000 + h%99000 // $10.00 .. $999.99
	change := h%400 - 200   // -$2.00 .. +$1.99
	return ProviderQuote{Symbol: symbol, Price: price, DayChange: change}
}
