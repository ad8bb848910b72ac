package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/services"
)

// QuoteHandler handles market quote requests.
type QuoteHandler struct {
	quoteService services.QuoteServicer
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(quoteService services.QuoteServicer) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

// historyQuery represents the query parameters for quote history.
type historyQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02"`
	To   time.Time `form:"to" time_format:"2006-01-02"`
}

// GetQuote returns the latest quote for a symbol.
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	quote, err := h.quoteService.GetQuote(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

// GetHistory returns stored quotes for a symbol in a date range. The range
// defaults to the last 30 days.
func (h *QuoteHandler) GetHistory(c *gin.Context) {
	var q historyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	if q.To.IsZero() {
		q.To = time.Now()
	}
	if q.From.IsZero() {
		q.From = q.To.AddDate(0, 0, -30)
	}
	if q.To.Before(q.From) {
		respondWithError(c, apperrors.ErrInvalidDateRange)
		return
	}

	history, err := h.quoteService.History(c.Param("symbol"), q.From, q.To)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"symbol": c.Param("symbol"), "quotes": history})
}
