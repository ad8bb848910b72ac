package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/logger"
	"stockpilot/internal/market"
	"stockpilot/internal/models"
)

// quoteStaleness is how old a stored quote may be before GetQuote tries the
// provider again.
const quoteStaleness = 15 * time.Minute

// quoteService handles quote persistence and provider fetches.
type quoteService struct {
	db      *gorm.DB
	fetcher market.Fetcher
}

// NewQuoteService creates a new QuoteServicer.
func NewQuoteService(db *gorm.DB, fetcher market.Fetcher) QuoteServicer {
	return &quoteService{db: db, fetcher: fetcher}
}

// LatestQuotes returns the most recent stored quote for each symbol.
// Symbols with no stored quote are not included in the map.
func (s *quoteService) LatestQuotes(symbols []string) (map[string]models.Quote, error) {
	result := make(map[string]models.Quote, len(symbols))
	if len(symbols) == 0 {
		return result, nil
	}

	subq := s.db.Model(&models.Quote{}).
		Select("symbol, MAX(recorded_at) AS max_recorded").
		Where("symbol IN ?", symbols).
		Group("symbol")

	var rows []models.Quote
	if err := s.db.Table("quotes q").
		Select("q.*").
		Joins("INNER JOIN (?) latest ON q.symbol = latest.symbol AND q.recorded_at = latest.max_recorded", subq).
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, q := range rows {
		result[q.Symbol] = q
	}
	return result, nil
}

// EnsureQuotes returns a quote for every requested symbol. Stored quotes
// are used as-is; missing symbols are fetched from the provider and
// persisted. When the provider fails, missing symbols get demo quotes
// (not persisted) and the result is flagged degraded; the dashboard must
// render something rather than error out.
func (s *quoteService) EnsureQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, bool, error) {
	quotes, err := s.LatestQuotes(symbols)
	if err != nil {
		return nil, false, err
	}

	missing := make([]string, 0)
	for _, sym := range symbols {
		if _, ok := quotes[strings.ToUpper(sym)]; !ok {
			missing = append(missing, sym)
		}
	}
	if len(missing) == 0 {
		return quotes, false, nil
	}

	fetched, err := s.fetcher.FetchQuotes(ctx, missing)
	if err != nil {
		logger.Get().Warnw("quote provider unavailable, using demo data",
			"symbols", missing, "error", err.Error())
		for _, q := range market.DemoQuotes(missing, time.Now()) {
			quotes[q.Symbol] = models.Quote{
				Symbol:     q.Symbol,
				Price:      q.Price,
				DayChange:  q.DayChange,
				Source:     models.QuoteSourceDemo,
				RecordedAt: q.AsOf,
			}
		}
		return quotes, true, nil
	}

	stored, err := s.storeProviderQuotes(fetched)
	if err != nil {
		return nil, false, err
	}
	for _, q := range stored {
		quotes[q.Symbol] = q
	}

	// The provider may not know every symbol; fill the gaps with demo
	// quotes so callers always get a complete map.
	degraded := false
	for _, sym := range missing {
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if _, ok := quotes[sym]; !ok {
			demo := market.DemoQuotes([]string{sym}, time.Now())[0]
			quotes[sym] = models.Quote{
				Symbol:     demo.Symbol,
				Price:      demo.Price,
				DayChange:  demo.DayChange,
				Source:     models.QuoteSourceDemo,
				RecordedAt: demo.AsOf,
			}
			degraded = true
		}
	}

	return quotes, degraded, nil
}

// RefreshQuotes fetches fresh quotes for the given symbols and persists
// them. A provider outage degrades the run (nothing is stored, demo data is
// never written to history) rather than failing it.
func (s *quoteService) RefreshQuotes(ctx context.Context, symbols []string) (int, bool, error) {
	if len(symbols) == 0 {
		return 0, false, nil
	}

	fetched, err := s.fetcher.FetchQuotes(ctx, symbols)
	if err != nil {
		logger.Get().Warnw("quote refresh degraded, provider unavailable",
			"symbols", len(symbols), "error", err.Error())
		return 0, true, nil
	}

	stored, err := s.storeProviderQuotes(fetched)
	if err != nil {
		return 0, false, err
	}
	return len(stored), false, nil
}

// GetQuote returns the latest quote for one symbol, consulting the provider
// when nothing is stored yet or the stored quote has gone stale. A stale
// stored quote beats an unreachable provider.
func (s *quoteService) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	latest, err := s.LatestQuotes([]string{symbol})
	if err != nil {
		return nil, err
	}

	if q, ok := latest[symbol]; ok && time.Since(q.RecordedAt) < quoteStaleness {
		return &q, nil
	}

	fetched, fetchErr := s.fetcher.FetchQuotes(ctx, []string{symbol})
	if fetchErr == nil && len(fetched) > 0 {
		stored, err := s.storeProviderQuotes(fetched)
		if err != nil {
			return nil, err
		}
		return &stored[0], nil
	}

	if q, ok := latest[symbol]; ok {
		return &q, nil
	}
	if fetchErr != nil {
		return nil, apperrors.Wrap(apperrors.ErrMarketUnavailable, fetchErr)
	}
	return nil, apperrors.ErrQuoteNotFound
}

// History returns stored quotes for a symbol within [from, to], oldest first.
func (s *quoteService) History(symbol string, from, to time.Time) ([]models.Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var quotes []models.Quote
	if err := s.db.Where("symbol = ? AND recorded_at >= ? AND recorded_at <= ?", symbol, from, to).
		Order("recorded_at ASC").Find(&quotes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return quotes, nil
}

// ActiveSymbols returns every distinct symbol currently held or watched.
func (s *quoteService) ActiveSymbols() ([]string, error) {
	var held []string
	if err := s.db.Model(&models.Holding{}).Distinct("symbol").Pluck("symbol", &held).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var watched []string
	if err := s.db.Model(&models.WatchlistItem{}).Distinct("symbol").Pluck("symbol", &watched).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	seen := make(map[string]bool, len(held)+len(watched))
	symbols := make([]string, 0, len(held)+len(watched))
	for _, sym := range append(held, watched...) {
		if !seen[sym] {
			seen[sym] = true
			symbols = append(symbols, sym)
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}

// storeProviderQuotes persists provider quotes as history rows.
func (s *quoteService) storeProviderQuotes(fetched []market.ProviderQuote) ([]models.Quote, error) {
	quotes := make([]models.Quote, 0, len(fetched))
	for _, q := range fetched {
		quotes = append(quotes, models.Quote{
			Symbol:     q.Symbol,
			Price:      q.Price,
			DayChange:  q.DayChange,
			Source:     models.QuoteSourceProvider,
			RecordedAt: q.AsOf,
		})
	}
	if len(quotes) == 0 {
		return quotes, nil
	}
	if err := s.db.Create(&quotes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return quotes, nil
}
