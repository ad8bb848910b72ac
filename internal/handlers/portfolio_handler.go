package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/pagination"
	"stockpilot/internal/services"
)

// PortfolioHandler handles holdings and portfolio valuation requests.
type PortfolioHandler struct {
	portfolioService services.PortfolioServicer
	auditService     services.AuditServicer
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(portfolioService services.PortfolioServicer, auditService services.AuditServicer) *PortfolioHandler {
	return &PortfolioHandler{portfolioService: portfolioService, auditService: auditService}
}

// AddHoldingRequest represents the request payload for adding a holding.
type AddHoldingRequest struct {
	Symbol       string     `json:"symbol" binding:"required,ticker"`
	Shares       float64    `json:"shares" binding:"required,gt=0"`
	AvgCost      int64      `json:"avg_cost" binding:"gte=0"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	Notes        string     `json:"notes" binding:"max=500"`
}

// UpdateHoldingRequest represents the request payload for editing a holding.
type UpdateHoldingRequest struct {
	Shares  float64 `json:"shares" binding:"required,gt=0"`
	AvgCost int64   `json:"avg_cost" binding:"gte=0"`
}

// GetSummary returns the valued portfolio summary.
func (h *PortfolioHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.portfolioService.GetSummary(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ListHoldings returns the user's holdings, paginated.
func (h *PortfolioHandler) ListHoldings(c *gin.Context) {
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

	holdings, err := h.portfolioService.GetHoldings(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, holdings)
}

// AddHolding creates a new position in the user's portfolio.
func (h *PortfolioHandler) AddHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req AddHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.portfolioService.AddHolding(userID, req.Symbol, req.Shares, req.AvgCost, req.PurchaseDate, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "holding.create", "holding", holding.ID, c.ClientIP(), map[string]any{
		"symbol": holding.Symbol,
		"shares": holding.Shares,
	})

	c.JSON(http.StatusCreated, holding)
}

// GetHolding returns one holding by symbol.
func (h *PortfolioHandler) GetHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	holding, err := h.portfolioService.GetHoldingBySymbol(userID, c.Param("symbol"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, holding)
}

// UpdateHolding edits the share count and cost basis of a position.
func (h *PortfolioHandler) UpdateHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateHoldingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	holding, err := h.portfolioService.UpdateHolding(userID, c.Param("symbol"), req.Shares, req.AvgCost)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "holding.update", "holding", holding.ID, c.ClientIP(), map[string]any{
		"shares":   req.Shares,
		"avg_cost": req.AvgCost,
	})

	c.JSON(http.StatusOK, holding)
}

// RemoveHolding deletes a position from the user's portfolio.
func (h *PortfolioHandler) RemoveHolding(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	symbol := c.Param("symbol")
	if err := h.portfolioService.RemoveHolding(userID, symbol); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "holding.delete", "holding", 0, c.ClientIP(), map[string]any{
		"symbol": symbol,
	})

	c.Status(http.StatusNoContent)
}
