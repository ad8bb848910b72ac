package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/models"
	"stockpilot/internal/pagination"
	"stockpilot/internal/services"
)

// AlertHandler handles price alert requests.
type AlertHandler struct {
	alertService services.AlertServicer
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(alertService services.AlertServicer) *AlertHandler {
	return &AlertHandler{alertService: alertService}
}

// CreateAlertRequest represents the request payload for creating an alert.
type CreateAlertRequest struct {
	Symbol    string `json:"symbol" binding:"required,ticker"`
	Condition string `json:"condition" binding:"required,alert_condition"`
	Threshold int64  `json:"threshold" binding:"required,gt=0"`
}

// List returns the user's alerts, paginated.
func (h *AlertHandler) List(c *gin.Context) {
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

	alerts, err := h.alertService.GetUserAlerts(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// Create creates a new price alert.
func (h *AlertHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	alert, err := h.alertService.CreateAlert(userID, req.Symbol, models.AlertCondition(req.Condition), req.Threshold)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, alert)
}

// Delete removes one of the user's alerts.
func (h *AlertHandler) Delete(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	alertID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.alertService.DeleteAlert(userID, alertID); err != nil {
		respondWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
