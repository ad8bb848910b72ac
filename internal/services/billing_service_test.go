package services

import (
	"testing"

	"stockpilot/internal/entitlement"
	"stockpilot/internal/testutil"
)

func TestApplyCheckout(t *testing.T) {
	t.Run("upgrade_to_pro", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBillingService(db, NewUserService(db))
		user := testutil.CreateTestUser(t, db)

		updated, err := svc.ApplyCheckout(user.ID, entitlement.PlanPro)
		testutil.AssertNoError(t, err)

		if updated.Plan != entitlement.PlanPro {
			t.Errorf("expected pro plan, got %s", updated.Plan)
		}
		if updated.PlanChangedAt == nil {
			t.Error("expected plan change timestamp")
		}
	})

	t.Run("unknown_plan", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBillingService(db, NewUserService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.ApplyCheckout(user.ID, entitlement.Plan("platinum"))
		testutil.AssertAppError(t, err, "UNKNOWN_PLAN")
	})

	t.Run("free_plan_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBillingService(db, NewUserService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.ApplyCheckout(user.ID, entitlement.PlanFree)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("unknown_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBillingService(db, NewUserService(db))

		_, err := svc.ApplyCheckout(9999, entitlement.PlanPro)
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestCancelSubscription(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewBillingService(db, NewUserService(db))
	user := testutil.CreateTestUserWithPlan(t, db, entitlement.PlanEnterprise)

	updated, err := svc.CancelSubscription(user.ID)
	testutil.AssertNoError(t, err)

	if updated.Plan != entitlement.PlanFree {
		t.Errorf("expected downgrade to free, got %s", updated.Plan)
	}
}
