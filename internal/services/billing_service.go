package services

import (
	"time"

	"gorm.io/gorm"

	"stockpilot/internal/entitlement"
	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/models"
)

// billingService owns subscription plan mutation. It reacts to confirmed
// events from the external payment processor; it never talks to the
// processor itself.
type billingService struct {
	db          *gorm.DB
	userService UserServicer
}

// NewBillingService creates a new BillingServicer.
func NewBillingService(db *gorm.DB, userService UserServicer) BillingServicer {
	return &billingService{db: db, userService: userService}
}

// ApplyCheckout upgrades the user to the purchased plan after a confirmed
// checkout. Checking out the free tier is not a thing.
func (s *billingService) ApplyCheckout(userID uint, plan entitlement.Plan) (*models.User, error) {
	if !plan.Valid() {
		return nil, apperrors.ErrUnknownPlan
	}
	if plan == entitlement.PlanFree {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Cannot check out the free plan")
	}

	return s.setPlan(userID, plan)
}

// CancelSubscription downgrades the user to the free tier. Existing data
// over the free tier's caps is kept; the caps only block new additions.
func (s *billingService) CancelSubscription(userID uint) (*models.User, error) {
	return s.setPlan(userID, entitlement.PlanFree)
}

func (s *billingService) setPlan(userID uint, plan entitlement.Plan) (*models.User, error) {
	user, err := s.userService.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(user).Updates(map[string]interface{}{
		"plan":            plan,
		"plan_changed_at": now,
	}).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.Plan = plan
	user.PlanChangedAt = &now

	return user, nil
}
