// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"stockpilot/internal/entitlement"
)

// tickerRegex matches short uppercase ticker symbols, optionally with a
// class suffix (BRK.B) or hyphen (BF-B).
var tickerRegex = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,9}([.-][A-Z0-9]{1,4})?$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("ticker", validateTicker)
		_ = v.RegisterValidation("plan_tier", validatePlanTier)
		_ = v.RegisterValidation("feature", validateFeature)
		_ = v.RegisterValidation("alert_condition", validateAlertCondition)
	}
}

func validateTicker(fl validator.FieldLevel) bool {
	return tickerRegex.MatchString(fl.Field().String())
}

func validatePlanTier(fl validator.FieldLevel) bool {
	return entitlement.Plan(fl.Field().String()).Valid()
}

// validateFeature accepts only the canonical feature identifiers. The
// fail-open policy for unknown features applies to entitlement evaluation,
// not to request payloads that name a feature explicitly.
func validateFeature(fl validator.FieldLevel) bool {
	value := entitlement.Feature(fl.Field().String())
	for _, f := range entitlement.Features() {
		if f == value {
			return true
		}
	}
	return false
}

func validateAlertCondition(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "above", "below":
		return true
	}
	return false
}
