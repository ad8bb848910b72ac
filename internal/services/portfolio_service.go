package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/models"
	"stockpilot/internal/pagination"
	"stockpilot/internal/valuation"
)

// portfolioService handles holdings and portfolio valuation.
type portfolioService struct {
	db           *gorm.DB
	quoteService QuoteServicer
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(db *gorm.DB, quoteService QuoteServicer) PortfolioServicer {
	return &portfolioService{db: db, quoteService: quoteService}
}

// AddHolding adds a new position to the user's portfolio. One holding per
// symbol per user; buying more of the same symbol is an update, not an add.
func (s *portfolioService) AddHolding(userID uint, symbol string, shares float64, avgCost int64, purchaseDate *time.Time, notes string) (*models.Holding, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}
	if shares <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "shares must be positive")
	}
	if avgCost < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "purchase price must not be negative")
	}

	var count int64
	if err := s.db.Model(&models.Holding{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateHolding
	}

	holding := &models.Holding{
		UserID:       userID,
		Symbol:       symbol,
		Shares:       shares,
		AvgCost:      avgCost,
		PurchaseDate: purchaseDate,
		Notes:        notes,
	}
	if err := s.db.Create(holding).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return holding, nil
}

// GetHoldings returns a paginated list of the user's holdings.
func (s *portfolioService) GetHoldings(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Holding], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Holding{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var holdings []models.Holding
	if err := s.db.Where("user_id = ?", userID).Order("symbol ASC").
		Scopes(pagination.Paginate(page)).Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(holdings, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetHoldingBySymbol returns one of the user's holdings by symbol.
func (s *portfolioService) GetHoldingBySymbol(userID uint, symbol string) (*models.Holding, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var holding models.Holding
	if err := s.db.Where("user_id = ? AND symbol = ?", userID, symbol).First(&holding).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrHoldingNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &holding, nil
}

// UpdateHolding edits the share count and cost basis of a position.
func (s *portfolioService) UpdateHolding(userID uint, symbol string, shares float64, avgCost int64) (*models.Holding, error) {
	if shares <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "shares must be positive")
	}
	if avgCost < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "purchase price must not be negative")
	}

	holding, err := s.GetHoldingBySymbol(userID, symbol)
	if err != nil {
		return nil, err
	}

	if err := s.db.Model(holding).Updates(map[string]interface{}{
		"shares":   shares,
		"avg_cost": avgCost,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	holding.Shares = shares
	holding.AvgCost = avgCost

	return holding, nil
}

// RemoveHolding deletes a position from the user's portfolio.
func (s *portfolioService) RemoveHolding(userID uint, symbol string) error {
	holding, err := s.GetHoldingBySymbol(userID, symbol)
	if err != nil {
		return err
	}

	if err := s.db.Delete(holding).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetSummary values the user's portfolio against the latest quotes. The
// aggregation itself is delegated to the valuation engine; this method only
// assembles its input and maps the output onto the API shape.
func (s *portfolioService) GetSummary(ctx context.Context, userID uint) (*PortfolioSummary, error) {
	var holdings []models.Holding
	if err := s.db.Where("user_id = ?", userID).Order("symbol ASC").Find(&holdings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	symbols := make([]string, 0, len(holdings))
	for i := range holdings {
		symbols = append(symbols, holdings[i].Symbol)
	}

	quotes, degraded, err := s.quoteService.EnsureQuotes(ctx, symbols)
	if err != nil {
		return nil, err
	}

	inputs := make([]valuation.Holding, 0, len(holdings))
	for i := range holdings {
		q := quotes[holdings[i].Symbol]
		inputs = append(inputs, valuation.Holding{
			Symbol:    holdings[i].Symbol,
			Shares:    holdings[i].Shares,
			AvgCost:   holdings[i].AvgCost,
			Price:     q.Price,
			DayChange: q.DayChange,
		})
	}

	summary := valuation.Summarize(inputs)

	views := make([]HoldingView, 0, len(summary.Holdings))
	for _, h := range summary.Holdings {
		views = append(views, HoldingView{
			Symbol:       h.Symbol,
			Shares:       h.Shares,
			AvgCost:      avgCostFor(holdings, h.Symbol),
			CurrentPrice: quotes[h.Symbol].Price,
			MarketValue:  h.MarketValue,
			CostBasis:    h.CostBasis,
			GainLoss:     h.GainLoss,
			GainLossPct:  h.GainLossPct,
			DayChange:    h.DayChange,
			DayChangePct: h.DayChangePct,
		})
	}

	rejected := make([]RejectedHolding, 0, len(summary.Rejected))
	for _, r := range summary.Rejected {
		rejected = append(rejected, RejectedHolding{Symbol: r.Symbol, Reason: r.Reason})
	}
	if len(rejected) == 0 {
		rejected = nil
	}

	return &PortfolioSummary{
		TotalValue:     summary.TotalValue,
		TotalCost:      summary.TotalCost,
		TotalReturn:    summary.TotalReturn,
		TotalReturnPct: summary.TotalReturnPct,
		DayChange:      summary.DayChange,
		DayChangePct:   summary.DayChangePct,
		Holdings:       views,
		Rejected:       rejected,
		QuotesDegraded: degraded,
		AsOf:           time.Now(),
	}, nil
}

// avgCostFor looks up the stored per-share cost for a symbol.
func avgCostFor(holdings []models.Holding, symbol string) int64 {
	for i := range holdings {
		if holdings[i].Symbol == symbol {
			return holdings[i].AvgCost
		}
	}
	return 0
}
