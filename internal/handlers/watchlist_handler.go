package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/pagination"
	"stockpilot/internal/services"
)

// WatchlistHandler handles watchlist requests.
type WatchlistHandler struct {
	watchlistService services.WatchlistServicer
}

// NewWatchlistHandler creates a new WatchlistHandler.
func NewWatchlistHandler(watchlistService services.WatchlistServicer) *WatchlistHandler {
	return &WatchlistHandler{watchlistService: watchlistService}
}

// AddWatchlistRequest represents the request payload for watching a symbol.
type AddWatchlistRequest struct {
	Symbol string `json:"symbol" binding:"required,ticker"`
}

// List returns the user's watchlist, paginated.
func (h *WatchlistHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	items, err := h.watchlistService.GetWatchlist(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// Add puts a symbol on the user's watchlist.
func (h *WatchlistHandler) Add(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddWatchlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	item, err := h.watchlistService.AddSymbol(userID, req.Symbol)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

// Remove takes a symbol off the user's watchlist.
func (h *WatchlistHandler) Remove(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.watchlistService.RemoveSymbol(userID, c.Param("symbol")); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
