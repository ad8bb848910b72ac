package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"stockpilot/internal/entitlement"
	"stockpilot/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a free-tier user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	return CreateTestUserWithPlan(t, db, entitlement.PlanFree)
}

// CreateTestUserWithPlan creates a user on the given plan tier.
func CreateTestUserWithPlan(t *testing.T, db *gorm.DB, plan entitlement.Plan) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		Plan:     plan,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestHolding creates a holding for the given symbol with shares and
// per-share average cost (in cents).
func CreateTestHolding(t *testing.T, db *gorm.DB, userID uint, symbol string, shares float64, avgCost int64) *models.Holding {
	t.Helper()

	holding := &models.Holding{
		UserID:  userID,
		Symbol:  symbol,
		Shares:  shares,
		AvgCost: avgCost,
	}
	if err := db.Create(holding).Error; err != nil {
		t.Fatalf("failed to create test holding: %v", err)
	}
	return holding
}

// CreateTestQuote stores a provider quote for the symbol at the given price
// (in cents), recorded now.
func CreateTestQuote(t *testing.T, db *gorm.DB, symbol string, price, dayChange int64) *models.Quote {
	t.Helper()
	return CreateTestQuoteAt(t, db, symbol, price, dayChange, time.Now())
}

// CreateTestQuoteAt stores a provider quote with an explicit recorded-at time.
func CreateTestQuoteAt(t *testing.T, db *gorm.DB, symbol string, price, dayChange int64, recordedAt time.Time) *models.Quote {
	t.Helper()

	quote := &models.Quote{
		Symbol:     symbol,
		Price:      price,
		DayChange:  dayChange,
		Source:     models.QuoteSourceProvider,
		RecordedAt: recordedAt,
	}
	if err := db.Create(quote).Error; err != nil {
		t.Fatalf("failed to create test quote: %v", err)
	}
	return quote
}

// CreateTestWatchlistItem puts a symbol on the user's watchlist.
func CreateTestWatchlistItem(t *testing.T, db *gorm.DB, userID uint, symbol string) *models.WatchlistItem {
	t.Helper()

	item := &models.WatchlistItem{
		UserID: userID,
		Symbol: symbol,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("failed to create test watchlist item: %v", err)
	}
	return item
}

// CreateTestAlert creates an active alert with the given condition and
// threshold (in cents).
func CreateTestAlert(t *testing.T, db *gorm.DB, userID uint, symbol string, condition models.AlertCondition, threshold int64) *models.Alert {
	t.Helper()

	alert := &models.Alert{
		UserID:    userID,
		Symbol:    symbol,
		Condition: condition,
		Threshold: threshold,
		IsActive:  true,
	}
	if err := db.Create(alert).Error; err != nil {
		t.Fatalf("failed to create test alert: %v", err)
	}
	return alert
}
