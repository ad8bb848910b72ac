package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stockpilot/internal/entitlement"
	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/models"
)

// maxBacktestDays caps the replay window so one request cannot walk years
// of quote history.
const maxBacktestDays = 366

// backtestService replays stored quote history into a daily portfolio
// value series.
type backtestService struct {
	db          *gorm.DB
	userService UserServicer
}

// NewBacktestService creates a new BacktestServicer.
func NewBacktestService(db *gorm.DB, userService UserServicer) BacktestServicer {
	return &backtestService{db: db, userService: userService}
}

// Run computes the daily value of the user's current holdings across
// [start, end] using stored quotes. Backtesting is a pro feature; free
// users get ErrPlanRequired.
func (s *backtestService) Run(userID uint, start, end time.Time) (*BacktestResult, error) {
	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}
	if d := entitlement.Evaluate(user.Plan, entitlement.FeatureBacktest); !d.Allowed {
		return nil, apperrors.WithMessage(apperrors.ErrPlanRequired,
			"Backtesting requires the "+string(d.RequiredPlan)+" plan")
	}

	start = start.UTC().Truncate(24 * time.Hour)
	end = end.UTC().Truncate(24 * time.Hour)
	if !end.After(start) {
		return nil, apperrors.ErrInvalidDateRange
	}
	if end.Sub(start) > maxBacktestDays*24*time.Hour {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Date range exceeds one year")
	}

	var holdings []models.Holding
	if err := s.db.Where("user_id = ?", userID).Order("symbol ASC").Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(holdings) == 0 {
		return &BacktestResult{Series: []BacktestPoint{}}, nil
	}

	symbols := make([]string, 0, len(holdings))
	for i := range holdings {
		symbols = append(symbols, holdings[i].Symbol)
	}

	// All quotes up to the end of the window, oldest first. Quotes from
	// before the window seed the price a symbol carries into day one.
	var quotes []models.Quote
	if err := s.db.Where("symbol IN ? AND recorded_at < ?", symbols, end.Add(24*time.Hour)).
		Order("recorded_at ASC").Find(&quotes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(quotes) == 0 {
		return nil, apperrors.ErrNoHistory
	}

	series := s.replay(holdings, quotes, start, end)
	if len(series) == 0 {
		return nil, apperrors.ErrNoHistory
	}

	result := &BacktestResult{
		StartValue: series[0].Value,
		EndValue:   series[len(series)-1].Value,
		Series:     series,
	}
	result.ReturnAbs = result.EndValue - result.StartValue
	if result.StartValue != 0 {
		pct, _ := decimal.NewFromInt(result.ReturnAbs).
			Div(decimal.NewFromInt(result.StartValue)).
			Mul(decimal.NewFromInt(100)).Round(4).Float64()
		result.ReturnPct = pct
	}

	return result, nil
}

// replay walks the window day by day, carrying the latest known price per
// symbol forward. Days before any symbol has a price are skipped rather
// than reported as zero-value points.
func (s *backtestService) replay(holdings []models.Holding, quotes []models.Quote, start, end time.Time) []BacktestPoint {
	prices := make(map[string]int64, len(holdings))
	next := 0

	series := make([]BacktestPoint, 0, int(end.Sub(start)/(24*time.Hour))+1)
	for day := start; !day.After(end); day = day.Add(24 * time.Hour) {
		dayEnd := day.Add(24 * time.Hour)
		for next < len(quotes) && quotes[next].RecordedAt.Before(dayEnd) {
			prices[quotes[next].Symbol] = quotes[next].Price
			next++
		}
		if len(prices) == 0 {
			continue
		}

		value := decimal.Zero
		for i := range holdings {
			price, ok := prices[holdings[i].Symbol]
			if !ok {
				continue
			}
			value = value.Add(decimal.NewFromFloat(holdings[i].Shares).Mul(decimal.NewFromInt(price)))
		}
		series = append(series, BacktestPoint{Date: day, Value: value.Round(0).IntPart()})
	}
	return series
}
