package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/models"
	"stockpilot/internal/pagination"
)

type mockWatchlistService struct {
	getWatchlistFn func(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.WatchlistItem], error)
	addSymbolFn    func(userID uint, symbol string) (*models.WatchlistItem, error)
	removeSymbolFn func(userID uint, symbol string) error
}

func (m *mockWatchlistService) GetWatchlist(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.WatchlistItem], error) {
	if m.getWatchlistFn != nil {
		return m.getWatchlistFn(userID, page)
	}
	resp := pagination.NewPageResponse[models.WatchlistItem](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockWatchlistService) AddSymbol(userID uint, symbol string) (*models.WatchlistItem, error) {
	if m.addSymbolFn != nil {
		return m.addSymbolFn(userID, symbol)
	}
	return &models.WatchlistItem{}, nil
}

func (m *mockWatchlistService) RemoveSymbol(userID uint, symbol string) error {
	if m.removeSymbolFn != nil {
		return m.removeSymbolFn(userID, symbol)
	}
	return nil
}

func setupWatchlistRouter(handler *WatchlistHandler) *gin.Engine {
	r := gin.New()
	auth := injectUserID(1)
	r.GET("/watchlist", auth, handler.List)
	r.POST("/watchlist", auth, handler.Add)
	r.DELETE("/watchlist/:symbol", auth, handler.Remove)
	return r
}

func TestAddWatchlistHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockWatchlistService{
			addSymbolFn: func(_ uint, symbol string) (*models.WatchlistItem, error) {
				return &models.WatchlistItem{Symbol: symbol}, nil
			},
		}
		r := setupWatchlistRouter(NewWatchlistHandler(svc))

		rec := doRequest(r, http.MethodPost, "/watchlist", `{"symbol":"NVDA"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("limit_exceeded", func(t *testing.T) {
		svc := &mockWatchlistService{
			addSymbolFn: func(uint, string) (*models.WatchlistItem, error) {
				return nil, apperrors.WithMessage(apperrors.ErrLimitExceeded, "Watchlist limit reached for the free plan")
			},
		}
		r := setupWatchlistRouter(NewWatchlistHandler(svc))

		rec := doRequest(r, http.MethodPost, "/watchlist", `{"symbol":"NVDA"}`)

		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "LIMIT_EXCEEDED")
	})

	t.Run("missing_symbol", func(t *testing.T) {
		r := setupWatchlistRouter(NewWatchlistHandler(&mockWatchlistService{}))

		rec := doRequest(r, http.MethodPost, "/watchlist", `{}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestRemoveWatchlistHandler(t *testing.T) {
	svc := &mockWatchlistService{
		removeSymbolFn: func(_ uint, symbol string) error {
			if symbol != "NVDA" {
				t.Errorf("expected path symbol NVDA, got %s", symbol)
			}
			return nil
		},
	}
	r := setupWatchlistRouter(NewWatchlistHandler(svc))

	rec := doRequest(r, http.MethodDelete, "/watchlist/NVDA", "")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}
