package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeEmptyPortfolio(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, int64(0), s.TotalValue)
	assert.Equal(t, int64(0), s.TotalCost)
	assert.Equal(t, int64(0), s.TotalReturn)
	assert.Equal(t, float64(0), s.TotalReturnPct)
	assert.Equal(t, int64(0), s.DayChange)
	assert.Equal(t, float64(0), s.DayChangePct)
	assert.Empty(t, s.Holdings)
	assert.Empty(t, s.Rejected)
}

func TestSummarizeTwoHoldings(t *testing.T) {
	// AAPL: 10 shares @ $150 cost, $220 now, +$2 today
	// TSLA: 5 shares @ $300 cost, $436.58 now, -$13.50 today
	holdings := []Holding{
		{Symbol: "AAPL", Shares: 10, AvgCost: 15000, Price: 22000, DayChange: 200},
		{Symbol: "TSLA", Shares: 5, AvgCost: 30000, Price: 43658, DayChange: -1350},
	}

	s := Summarize(holdings)

	assert.Equal(t, int64(300000), s.TotalCost)
	assert.Equal(t, int64(438290), s.TotalValue)
	assert.Equal(t, int64(138290), s.TotalReturn)
	assert.InDelta(t, 46.0967, s.TotalReturnPct, 0.0001)
	assert.Equal(t, int64(-4750), s.DayChange)

	assert.Len(t, s.Holdings, 2)
	aapl := s.Holdings[0]
	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.Equal(t, int64(220000), aapl.MarketValue)
	assert.Equal(t, int64(70000), aapl.GainLoss)
	assert.InDelta(t, 46.6667, aapl.GainLossPct, 0.0001)
	assert.Equal(t, int64(2000), aapl.DayChange)
}

func TestSummarizeFractionalShares(t *testing.T) {
	// 2.5 shares * $100.01 = $250.025, which must round to whole cents
	// without drifting through float math.
	s := Summarize([]Holding{
		{Symbol: "VTI", Shares: 2.5, AvgCost: 10000, Price: 10001, DayChange: 0},
	})

	assert.Equal(t, int64(25003), s.TotalValue)
	assert.Equal(t, int64(25000), s.TotalCost)
	assert.Equal(t, int64(3), s.TotalReturn)
}

func TestSummarizeZeroCostBasis(t *testing.T) {
	// Granted shares with zero cost: return percentage must be exactly 0,
	// not NaN or Inf.
	s := Summarize([]Holding{
		{Symbol: "RSU", Shares: 100, AvgCost: 0, Price: 5000, DayChange: 0},
	})

	assert.Equal(t, int64(500000), s.TotalValue)
	assert.Equal(t, int64(0), s.TotalCost)
	assert.Equal(t, float64(0), s.TotalReturnPct)
	assert.Equal(t, float64(0), s.Holdings[0].GainLossPct)
}

func TestSummarizeSkipsInvalidHoldings(t *testing.T) {
	valid := Holding{Symbol: "AAPL", Shares: 10, AvgCost: 15000, Price: 22000, DayChange: 200}

	s := Summarize([]Holding{
		valid,
		{Symbol: "BAD1", Shares: 0, AvgCost: 100, Price: 100},
		{Symbol: "BAD2", Shares: -5, AvgCost: 100, Price: 100},
		{Symbol: "BAD3", Shares: 1, AvgCost: 100, Price: -100},
		{Symbol: "BAD4", Shares: 1, AvgCost: -100, Price: 100},
	})

	assert.Len(t, s.Rejected, 4)
	rejected := make([]string, 0, len(s.Rejected))
	for _, r := range s.Rejected {
		rejected = append(rejected, r.Symbol)
	}
	assert.Equal(t, []string{"BAD1", "BAD2", "BAD3", "BAD4"}, rejected)

	// Rejections must not alter totals for the valid rows.
	onlyValid := Summarize([]Holding{valid})
	assert.Equal(t, onlyValid.TotalValue, s.TotalValue)
	assert.Equal(t, onlyValid.TotalCost, s.TotalCost)
	assert.Equal(t, onlyValid.TotalReturnPct, s.TotalReturnPct)
	assert.Len(t, s.Holdings, 1)
}

func TestSummarizeDeterministic(t *testing.T) {
	holdings := []Holding{
		{Symbol: "AAPL", Shares: 10.123, AvgCost: 15000, Price: 22000, DayChange: 217},
		{Symbol: "TSLA", Shares: 5.007, AvgCost: 30000, Price: 43658, DayChange: -1350},
		{Symbol: "VTI", Shares: 0.333, AvgCost: 21000, Price: 24391, DayChange: 13},
	}

	first := Summarize(holdings)
	second := Summarize(holdings)
	assert.Equal(t, first, second)
}

func TestSummarizeNonNegativeValue(t *testing.T) {
	// Valid holdings always have positive price and shares, so the total
	// value can never go negative even when every position is underwater.
	s := Summarize([]Holding{
		{Symbol: "DOWN", Shares: 3, AvgCost: 50000, Price: 1, DayChange: -20},
	})
	assert.GreaterOrEqual(t, s.TotalValue, int64(0))
	assert.Negative(t, s.TotalReturn)
}
