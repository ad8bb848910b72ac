package services

import (
	"fmt"
	"testing"

	"stockpilot/internal/entitlement"
	"stockpilot/internal/models"
	"stockpilot/internal/testutil"
)

func TestCreateAlert(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAlertService(db, NewUserService(db), NewQuoteService(db, &fakeFetcher{}))
		user := testutil.CreateTestUser(t, db)

		alert, err := svc.CreateAlert(user.ID, "aapl", models.AlertConditionAbove, 25000)
		testutil.AssertNoError(t, err)

		if alert.Symbol != "AAPL" {
			t.Errorf("expected normalized symbol AAPL, got %s", alert.Symbol)
		}
		if !alert.IsActive {
			t.Error("expected new alert to be active")
		}
	})

	t.Run("invalid_input", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAlertService(db, NewUserService(db), NewQuoteService(db, &fakeFetcher{}))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAlert(user.ID, "", models.AlertConditionAbove, 25000)
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateAlert(user.ID, "AAPL", models.AlertConditionAbove, 0)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("free_plan_cap_counts_active_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAlertService(db, NewUserService(db), NewQuoteService(db, &fakeFetcher{}))
		user := testutil.CreateTestUser(t, db)

		limit := entitlement.LimitFor(entitlement.PlanFree, entitlement.LimitAlerts)
		for i := 0; i < limit; i++ {
			testutil.CreateTestAlert(t, db, user.ID, fmt.Sprintf("SYM%d", i), models.AlertConditionAbove, 10000)
		}

		_, err := svc.CreateAlert(user.ID, "AAPL", models.AlertConditionAbove, 25000)
		testutil.AssertAppError(t, err, "LIMIT_EXCEEDED")

		// Deactivating one frees a slot.
		if err := db.Model(&models.Alert{}).Where("user_id = ? AND symbol = ?", user.ID, "SYM0").
			Update("is_active", false).Error; err != nil {
			t.Fatalf("failed to deactivate alert: %v", err)
		}

		_, err = svc.CreateAlert(user.ID, "AAPL", models.AlertConditionAbove, 25000)
		testutil.AssertNoError(t, err)
	})
}

func TestDeleteAlert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAlertService(db, NewUserService(db), NewQuoteService(db, &fakeFetcher{}))
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	alert := testutil.CreateTestAlert(t, db, user.ID, "AAPL", models.AlertConditionAbove, 25000)

	// Another user cannot delete it.
	testutil.AssertAppError(t, svc.DeleteAlert(other.ID, alert.ID), "ALERT_NOT_FOUND")

	testutil.AssertNoError(t, svc.DeleteAlert(user.ID, alert.ID))
	testutil.AssertAppError(t, svc.DeleteAlert(user.ID, alert.ID), "ALERT_NOT_FOUND")
}

func TestEvaluateActive(t *testing.T) {
	t.Run("triggers_and_deactivates", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAlertService(db, NewUserService(db), NewQuoteService(db, &fakeFetcher{}))
		user := testutil.CreateTestUser(t, db)

		fired := testutil.CreateTestAlert(t, db, user.ID, "AAPL", models.AlertConditionAbove, 20000)
		waiting := testutil.CreateTestAlert(t, db, user.ID, "AAPL", models.AlertConditionAbove, 30000)
		below := testutil.CreateTestAlert(t, db, user.ID, "TSLA", models.AlertConditionBelow, 45000)
		testutil.CreateTestQuote(t, db, "AAPL", 22000, 200)
		testutil.CreateTestQuote(t, db, "TSLA", 43658, -1350)

		count, err := svc.EvaluateActive()
		testutil.AssertNoError(t, err)

		if count != 2 {
			t.Fatalf("expected 2 triggered alerts, got %d", count)
		}

		var check models.Alert
		db.First(&check, fired.ID)
		if check.IsActive || check.TriggeredAt == nil {
			t.Errorf("expected fired alert deactivated with timestamp, got %+v", check)
		}
		check = models.Alert{}
		db.First(&check, waiting.ID)
		if !check.IsActive || check.TriggeredAt != nil {
			t.Errorf("expected waiting alert untouched, got %+v", check)
		}
		check = models.Alert{}
		db.First(&check, below.ID)
		if check.IsActive {
			t.Error("expected below-threshold alert to fire")
		}
	})

	t.Run("no_quote_leaves_alert_active", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAlertService(db, NewUserService(db), NewQuoteService(db, &fakeFetcher{}))
		user := testutil.CreateTestUser(t, db)
		alert := testutil.CreateTestAlert(t, db, user.ID, "ZZZZ", models.AlertConditionAbove, 100)

		count, err := svc.EvaluateActive()
		testutil.AssertNoError(t, err)

		if count != 0 {
			t.Errorf("expected no triggered alerts, got %d", count)
		}

		var check models.Alert
		db.First(&check, alert.ID)
		if !check.IsActive {
			t.Error("expected alert without quote to stay active")
		}
	})

	t.Run("no_active_alerts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAlertService(db, NewUserService(db), NewQuoteService(db, &fakeFetcher{}))

		count, err := svc.EvaluateActive()
		testutil.AssertNoError(t, err)
		if count != 0 {
			t.Errorf("expected 0, got %d", count)
		}
	})
}
