package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/services"
)

type mockBacktestService struct {
	runFn func(userID uint, start, end time.Time) (*services.BacktestResult, error)
}

func (m *mockBacktestService) Run(userID uint, start, end time.Time) (*services.BacktestResult, error) {
	if m.runFn != nil {
		return m.runFn(userID, start, end)
	}
	return &services.BacktestResult{Series: []services.BacktestPoint{}}, nil
}

func setupBacktestRouter(handler *BacktestHandler) *gin.Engine {
	r := gin.New()
	r.POST("/portfolio/backtest", injectUserID(1), handler.Run)
	return r
}

func TestBacktestHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockBacktestService{
			runFn: func(_ uint, start, end time.Time) (*services.BacktestResult, error) {
				if !start.Before(end) {
					t.Errorf("expected parsed range, got %v..%v", start, end)
				}
				return &services.BacktestResult{
					StartValue: 200000,
					EndValue:   220000,
					ReturnAbs:  20000,
					ReturnPct:  10,
					Series: []services.BacktestPoint{
						{Date: start, Value: 200000},
						{Date: end, Value: 220000},
					},
				}, nil
			},
		}
		r := setupBacktestRouter(NewBacktestHandler(svc))

		rec := doRequest(r, http.MethodPost, "/portfolio/backtest",
			`{"start":"2026-07-01T00:00:00Z","end":"2026-08-01T00:00:00Z"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		result := parseJSON(t, rec)
		if result["return_pct"].(float64) != 10 {
			t.Errorf("expected return_pct 10, got %v", result["return_pct"])
		}
	})

	t.Run("plan_gate_surfaces_403", func(t *testing.T) {
		svc := &mockBacktestService{
			runFn: func(uint, time.Time, time.Time) (*services.BacktestResult, error) {
				return nil, apperrors.WithMessage(apperrors.ErrPlanRequired, "Backtesting requires the pro plan")
			},
		}
		r := setupBacktestRouter(NewBacktestHandler(svc))

		rec := doRequest(r, http.MethodPost, "/portfolio/backtest",
			`{"start":"2026-07-01T00:00:00Z","end":"2026-08-01T00:00:00Z"}`)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PLAN_REQUIRED")
	})

	t.Run("missing_dates", func(t *testing.T) {
		r := setupBacktestRouter(NewBacktestHandler(&mockBacktestService{}))

		rec := doRequest(r, http.MethodPost, "/portfolio/backtest", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
