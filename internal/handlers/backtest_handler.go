package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/services"
)

// BacktestHandler handles portfolio backtest requests.
type BacktestHandler struct {
	backtestService services.BacktestServicer
}

// NewBacktestHandler creates a new BacktestHandler.
func NewBacktestHandler(backtestService services.BacktestServicer) *BacktestHandler {
	return &BacktestHandler{backtestService: backtestService}
}

// BacktestRequest represents the request payload for running a backtest.
type BacktestRequest struct {
	Start time.Time `json:"start" binding:"required" time_format:"2006-01-02"`
	End   time.Time `json:"end" binding:"required" time_format:"2006-01-02"`
}

// Run replays the user's current holdings over stored quote history.
func (h *BacktestHandler) Run(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.backtestService.Run(userID, req.Start, req.End)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
