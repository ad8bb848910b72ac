package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"stockpilot/internal/entitlement"
	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/models"
	"stockpilot/internal/pagination"
)

// watchlistService handles watchlist management.
type watchlistService struct {
	db          *gorm.DB
	userService UserServicer
}

// NewWatchlistService creates a new WatchlistServicer.
func NewWatchlistService(db *gorm.DB, userService UserServicer) WatchlistServicer {
	return &watchlistService{db: db, userService: userService}
}

// GetWatchlist returns a paginated list of the user's watchlist items.
func (s *watchlistService) GetWatchlist(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.WatchlistItem], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.WatchlistItem{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var items []models.WatchlistItem
	if err := s.db.Where("user_id = ?", userID).Order("symbol ASC").
		Scopes(pagination.Paginate(page)).Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(items, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// AddSymbol puts a symbol on the user's watchlist, bounded by the plan's
// watchlist cap.
func (s *watchlistService) AddSymbol(userID uint, symbol string) (*models.WatchlistItem, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}

	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.WatchlistItem{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !entitlement.WithinLimit(user.Plan, entitlement.LimitWatchlistItems, count) {
		return nil, apperrors.WithMessage(apperrors.ErrLimitExceeded,
			"Watchlist limit reached for the "+string(user.Plan)+" plan")
	}

	var existing int64
	if err := s.db.Model(&models.WatchlistItem{}).
		Where("user_id = ? AND symbol = ?", userID, symbol).Count(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if existing > 0 {
		return nil, apperrors.ErrDuplicateWatchlistItem
	}

	item := &models.WatchlistItem{UserID: userID, Symbol: symbol}
	if err := s.db.Create(item).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return item, nil
}

// RemoveSymbol takes a symbol off the user's watchlist.
func (s *watchlistService) RemoveSymbol(userID uint, symbol string) error {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	var item models.WatchlistItem
	if err := s.db.Where("user_id = ? AND symbol = ?", userID, symbol).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrWatchlistItemNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Delete(&item).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
