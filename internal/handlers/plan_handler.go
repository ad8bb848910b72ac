package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/entitlement"
	apperrors "stockpilot/internal/errors"
	"stockpilot/internal/services"
)

// PlanHandler handles subscription plan and entitlement requests.
type PlanHandler struct {
	userService    services.UserServicer
	billingService services.BillingServicer
	auditService   services.AuditServicer
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(userService services.UserServicer, billingService services.BillingServicer, auditService services.AuditServicer) *PlanHandler {
	return &PlanHandler{userService: userService, billingService: billingService, auditService: auditService}
}

// CheckoutRequest represents a confirmed checkout event payload.
type CheckoutRequest struct {
	Plan string `json:"plan" binding:"required,plan_tier"`
}

// PlanResponse represents the user's plan tier with its feature decisions
// and usage limits.
type PlanResponse struct {
	Plan     string                                       `json:"plan"`
	Features map[entitlement.Feature]entitlement.Decision `json:"features"`
	Limits   map[entitlement.Limit]int                    `json:"limits"`
}

func planResponse(plan entitlement.Plan) PlanResponse {
	features := make(map[entitlement.Feature]entitlement.Decision, len(entitlement.Features()))
	for _, f := range entitlement.Features() {
		features[f] = entitlement.Evaluate(plan, f)
	}
	return PlanResponse{
		Plan:     string(plan),
		Features: features,
		Limits:   entitlement.Limits(plan),
	}
}

// GetPlan returns the authenticated user's plan tier, every known feature
// decision for it, and its usage limits.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, planResponse(user.Plan))
}

// CheckFeature evaluates a single feature against the user's plan. Unknown
// feature identifiers come back allowed.
func (h *PlanHandler) CheckFeature(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	feature := entitlement.Feature(c.Param("feature"))
	c.JSON(http.StatusOK, gin.H{
		"feature":  feature,
		"decision": entitlement.Evaluate(user.Plan, feature),
	})
}

// Checkout applies a confirmed plan purchase to the user.
func (h *PlanHandler) Checkout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.billingService.ApplyCheckout(userID, entitlement.Plan(req.Plan))
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "plan.checkout", "user", userID, c.ClientIP(), map[string]any{
		"plan": req.Plan,
	})

	c.JSON(http.StatusOK, planResponse(user.Plan))
}

// Cancel downgrades the user to the free tier.
func (h *PlanHandler) Cancel(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.billingService.CancelSubscription(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "plan.cancel", "user", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, planResponse(user.Plan))
}
