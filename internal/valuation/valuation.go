// Package valuation computes portfolio summaries from holdings and quotes.
// The engine is pure: same inputs always produce the same summary, and it
// never touches the database or the network. Callers (the portfolio
// service) are responsible for loading holdings and attaching prices.
//
// Money is int64 cents at the boundaries, matching the storage convention.
// Internally the engine multiplies fractional share quantities with cent
// prices through shopspring/decimal so no precision is lost mid-computation.
package valuation

import (
	"math"

	"github.com/shopspring/decimal"
)

// Holding is one position as the engine consumes it: quantity, cost basis
// per share, and the externally supplied current quote.
type Holding struct {
	Symbol    string
	Shares    float64
	AvgCost   int64 // cents per share
	Price     int64 // cents per share
	DayChange int64 // per-share delta since prior close, cents, signed
}

// HoldingSummary is the per-position slice of a portfolio summary.
type HoldingSummary struct {
	Symbol       string  `json:"symbol"`
	Shares       float64 `json:"shares"`
	MarketValue  int64   `json:"market_value"`
	CostBasis    int64   `json:"cost_basis"`
	GainLoss     int64   `json:"gain_loss"`
	GainLossPct  float64 `json:"gain_loss_pct"`
	DayChange    int64   `json:"day_change"`
	DayChangePct float64 `json:"day_change_pct"`
}

// Rejection reports a holding excluded from the summary and why.
type Rejection struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// Summary is the aggregated portfolio view.
type Summary struct {
	TotalValue     int64            `json:"total_value"`
	TotalCost      int64            `json:"total_cost"`
	TotalReturn    int64            `json:"total_return"`
	TotalReturnPct float64          `json:"total_return_pct"`
	DayChange      int64            `json:"day_change"`
	DayChangePct   float64          `json:"day_change_pct"`
	Holdings       []HoldingSummary `json:"holdings"`
	Rejected       []Rejection      `json:"rejected,omitempty"`
}

// Summarize aggregates the given holdings into a portfolio summary.
//
// Invalid holdings (non-positive shares, non-positive price, negative cost
// basis, non-finite quantity) are skipped and listed in Rejected rather
// than failing the whole computation, so one bad row never blanks the
// dashboard. An empty input yields the all-zero summary, not an error.
func Summarize(holdings []Holding) Summary {
	summary := Summary{Holdings: []HoldingSummary{}}

	totalValue := decimal.Zero
	totalCost := decimal.Zero
	totalDayChange := decimal.Zero

	for _, h := range holdings {
		if reason, ok := validate(h); !ok {
			summary.Rejected = append(summary.Rejected, Rejection{Symbol: h.Symbol, Reason: reason})
			continue
		}

		shares := decimal.NewFromFloat(h.Shares)
		value := shares.Mul(decimal.NewFromInt(h.Price))
		cost := shares.Mul(decimal.NewFromInt(h.AvgCost))
		dayChange := shares.Mul(decimal.NewFromInt(h.DayChange))
		gainLoss := value.Sub(cost)

		totalValue = totalValue.Add(value)
		totalCost = totalCost.Add(cost)
		totalDayChange = totalDayChange.Add(dayChange)

		summary.Holdings = append(summary.Holdings, HoldingSummary{
			Symbol:       h.Symbol,
			Shares:       h.Shares,
			MarketValue:  toCents(value),
			CostBasis:    toCents(cost),
			GainLoss:     toCents(gainLoss),
			GainLossPct:  pct(gainLoss, cost),
			DayChange:    toCents(dayChange),
			DayChangePct: pct(dayChange, value.Sub(dayChange)),
		})
	}

	totalReturn := totalValue.Sub(totalCost)

	summary.TotalValue = toCents(totalValue)
	summary.TotalCost = toCents(totalCost)
	summary.TotalReturn = toCents(totalReturn)
	summary.TotalReturnPct = pct(totalReturn, totalCost)
	summary.DayChange = toCents(totalDayChange)
	summary.DayChangePct = pct(totalDayChange, totalValue.Sub(totalDayChange))

	return summary
}

// validate returns a rejection reason for holdings the engine must not
// compute over.
func validate(h Holding) (string, bool) {
	switch {
	case math.IsNaN(h.Shares) || math.IsInf(h.Shares, 0):
		return "shares is not a finite number", false
	case h.Shares <= 0:
		return "shares must be positive", false
	case h.Price <= 0:
		return "price must be positive", false
	case h.AvgCost < 0:
		return "average cost must not be negative", false
	}
	return "", true
}

// pct computes delta/base*100. A zero base yields exactly 0 rather than
// propagating NaN or Inf.
func pct(delta, base decimal.Decimal) float64 {
	if base.IsZero() {
		return 0
	}
	f, _ := delta.Div(base).Mul(decimal.NewFromInt(100)).Round(4).Float64()
	return f
}

// toCents rounds a decimal cent amount to a whole number of cents.
func toCents(d decimal.Decimal) int64 {
	return d.Round(0).IntPart()
}
