package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"stockpilot/internal/entitlement"
	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/logger"
	"stockpilot/internal/models"
	"stockpilot/internal/pagination"
)

// alertService handles price alerts.
type alertService struct {
	db           *gorm.DB
	userService  UserServicer
	quoteService QuoteServicer
}

// NewAlertService creates a new AlertServicer.
func NewAlertService(db *gorm.DB, userService UserServicer, quoteService QuoteServicer) AlertServicer {
	return &alertService{db: db, userService: userService, quoteService: quoteService}
}

// GetUserAlerts returns a paginated list of the user's alerts, newest first.
func (s *alertService) GetUserAlerts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error) {
	page.Defaults()

	var totalItems int64
	base := s.db.Model(&models.Alert{}).Where("user_id = ?", userID)
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var alerts []models.Alert
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").
		Scopes(pagination.Paginate(page)).Find(&alerts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(alerts, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// CreateAlert creates a price alert, bounded by the plan's alert cap.
// Only active alerts count toward the cap.
func (s *alertService) CreateAlert(userID uint, symbol string, condition models.AlertCondition, threshold int64) (*models.Alert, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "symbol is required")
	}
	if threshold <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "threshold must be positive")
	}

	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	var active int64
	if err := s.db.Model(&models.Alert{}).
		Where("user_id = ? AND is_active = ?", userID, true).Count(&active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !entitlement.WithinLimit(user.Plan, entitlement.LimitAlerts, active) {
		return nil, apperrors.WithMessage(apperrors.ErrLimitExceeded,
			"Alert limit reached for the "+string(user.Plan)+" plan")
	}

	alert := &models.Alert{
		UserID:    userID,
		Symbol:    symbol,
		Condition: condition,
		Threshold: threshold,
		IsActive:  true,
	}
	if err := s.db.Create(alert).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return alert, nil
}

// DeleteAlert removes one of the user's alerts.
func (s *alertService) DeleteAlert(userID, alertID uint) error {
	var alert models.Alert
	if err := s.db.Where("id = ? AND user_id = ?", alertID, userID).First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrAlertNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.db.Delete(&alert).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// EvaluateActive checks every active alert against the latest stored
// quotes, deactivating and timestamping the ones that fired. Symbols with
// no stored quote are left for the next run.
func (s *alertService) EvaluateActive() (int, error) {
	var alerts []models.Alert
	if err := s.db.Where("is_active = ?", true).Find(&alerts).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(alerts) == 0 {
		return 0, nil
	}

	symbols := make([]string, 0, len(alerts))
	for i := range alerts {
		symbols = append(symbols, alerts[i].Symbol)
	}
	quotes, err := s.quoteService.LatestQuotes(symbols)
	if err != nil {
		return 0, err
	}

	triggered := 0
	now := time.Now()
	for i := range alerts {
		quote, ok := quotes[alerts[i].Symbol]
		if !ok {
			continue
		}
		if !alertFires(&alerts[i], quote.Price) {
			continue
		}

		if err := s.db.Model(&alerts[i]).Updates(map[string]interface{}{
			"is_active":    false,
			"triggered_at": now,
		}).Error; err != nil {
			return triggered, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		triggered++
		logger.Get().Infow("alert triggered",
			"alert_id", alerts[i].ID,
			"user_id", alerts[i].UserID,
			"symbol", alerts[i].Symbol,
			"condition", alerts[i].Condition,
			"threshold", alerts[i].Threshold,
			"price", quote.Price,
		)
	}
	return triggered, nil
}

// alertFires reports whether the given price satisfies the alert condition.
func alertFires(alert *models.Alert, price int64) bool {
	switch alert.Condition {
	case models.AlertConditionAbove:
		return price >= alert.Threshold
	case models.AlertConditionBelow:
		return price <= alert.Threshold
	}
	return false
}
