package services

import (
	"testing"
	"time"

	"stockpilot/internal/entitlement"
	"stockpilot/internal/testutil"
)

// day returns midnight UTC n days before today.
func day(n int) time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -n)
}

func TestBacktestRun(t *testing.T) {
	t.Run("free_plan_is_gated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBacktestService(db, NewUserService(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Run(user.ID, day(7), day(0))
		testutil.AssertAppError(t, err, "PLAN_REQUIRED")
	})

	t.Run("invalid_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBacktestService(db, NewUserService(db))
		user := testutil.CreateTestUserWithPlan(t, db, entitlement.PlanPro)

		_, err := svc.Run(user.ID, day(0), day(7))
		testutil.AssertAppError(t, err, "INVALID_DATE_RANGE")

		_, err = svc.Run(user.ID, day(400), day(0))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("empty_portfolio", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBacktestService(db, NewUserService(db))
		user := testutil.CreateTestUserWithPlan(t, db, entitlement.PlanPro)

		result, err := svc.Run(user.ID, day(7), day(0))
		testutil.AssertNoError(t, err)

		if len(result.Series) != 0 || result.StartValue != 0 || result.EndValue != 0 {
			t.Errorf("expected empty result, got %+v", result)
		}
	})

	t.Run("no_history", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBacktestService(db, NewUserService(db))
		user := testutil.CreateTestUserWithPlan(t, db, entitlement.PlanPro)
		testutil.CreateTestHolding(t, db, user.ID, "AAPL", 10, 15000)

		_, err := svc.Run(user.ID, day(7), day(0))
		testutil.AssertAppError(t, err, "NO_HISTORY")
	})

	t.Run("replays_daily_values", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBacktestService(db, NewUserService(db))
		user := testutil.CreateTestUserWithPlan(t, db, entitlement.PlanPro)

		testutil.CreateTestHolding(t, db, user.ID, "AAPL", 10, 15000)
		// Prices at noon on day -3 and day -1; day -2 carries the -3 price.
		testutil.CreateTestQuoteAt(t, db, "AAPL", 20000, 0, day(3).Add(12*time.Hour))
		testutil.CreateTestQuoteAt(t, db, "AAPL", 22000, 0, day(1).Add(12*time.Hour))

		result, err := svc.Run(user.ID, day(3), day(1))
		testutil.AssertNoError(t, err)

		if len(result.Series) != 3 {
			t.Fatalf("expected 3 daily points, got %d", len(result.Series))
		}
		if result.Series[0].Value != 200000 {
			t.Errorf("expected day 1 value 200000, got %d", result.Series[0].Value)
		}
		if result.Series[1].Value != 200000 {
			t.Errorf("expected carried-forward value 200000, got %d", result.Series[1].Value)
		}
		if result.Series[2].Value != 220000 {
			t.Errorf("expected day 3 value 220000, got %d", result.Series[2].Value)
		}
		if result.StartValue != 200000 || result.EndValue != 220000 {
			t.Errorf("unexpected start/end: %d/%d", result.StartValue, result.EndValue)
		}
		if result.ReturnAbs != 20000 {
			t.Errorf("expected return 20000, got %d", result.ReturnAbs)
		}
		if result.ReturnPct != 10 {
			t.Errorf("expected return pct 10, got %f", result.ReturnPct)
		}
	})

	t.Run("skips_days_before_first_price", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBacktestService(db, NewUserService(db))
		user := testutil.CreateTestUserWithPlan(t, db, entitlement.PlanPro)

		testutil.CreateTestHolding(t, db, user.ID, "AAPL", 10, 15000)
		testutil.CreateTestQuoteAt(t, db, "AAPL", 20000, 0, day(2).Add(12*time.Hour))

		result, err := svc.Run(user.ID, day(5), day(1))
		testutil.AssertNoError(t, err)

		// Days -5 through -3 have no price yet and are skipped.
		if len(result.Series) != 2 {
			t.Fatalf("expected 2 points, got %d", len(result.Series))
		}
		if !result.Series[0].Date.Equal(day(2)) {
			t.Errorf("expected first point on %v, got %v", day(2), result.Series[0].Date)
		}
	})
}
