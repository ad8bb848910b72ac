// Package errors provides custom error types for the StockPilot API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAccountLocked      = &AppError{Code: "ACCOUNT_LOCKED", Message: "Account is temporarily locked", StatusCode: http.StatusLocked}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound   = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateEmail = &AppError{Code: "DUPLICATE_EMAIL", Message: "A user with this email already exists", StatusCode: http.StatusConflict}
)

// Holding errors.
var (
	ErrHoldingNotFound  = &AppError{Code: "HOLDING_NOT_FOUND", Message: "Holding not found", StatusCode: http.StatusNotFound}
	ErrDuplicateHolding = &AppError{Code: "DUPLICATE_HOLDING", Message: "A holding for this symbol already exists", StatusCode: http.StatusConflict}
)

// Entitlement errors. ErrPlanRequired is returned when an action is gated
// behind a higher subscription tier; the feature check endpoint reports the
// same condition as a normal Locked decision instead.
var (
	ErrPlanRequired  = &AppError{Code: "PLAN_REQUIRED", Message: "This feature requires a higher subscription plan", StatusCode: http.StatusForbidden}
	ErrLimitExceeded = &AppError{Code: "LIMIT_EXCEEDED", Message: "Plan usage limit reached", StatusCode: http.StatusConflict}
	ErrUnknownPlan   = &AppError{Code: "UNKNOWN_PLAN", Message: "Unknown subscription plan", StatusCode: http.StatusBadRequest}
)

// Market data errors.
var (
	ErrQuoteNotFound     = &AppError{Code: "QUOTE_NOT_FOUND", Message: "No quote available for this symbol", StatusCode: http.StatusNotFound}
	ErrMarketUnavailable = &AppError{Code: "MARKET_UNAVAILABLE", Message: "Market data provider is unavailable", StatusCode: http.StatusServiceUnavailable}
)

// Watchlist errors.
var (
	ErrWatchlistItemNotFound  = &AppError{Code: "WATCHLIST_ITEM_NOT_FOUND", Message: "Watchlist item not found", StatusCode: http.StatusNotFound}
	ErrDuplicateWatchlistItem = &AppError{Code: "DUPLICATE_WATCHLIST_ITEM", Message: "Symbol is already on the watchlist", StatusCode: http.StatusConflict}
)

// Alert errors.
var (
	ErrAlertNotFound = &AppError{Code: "ALERT_NOT_FOUND", Message: "Alert not found", StatusCode: http.StatusNotFound}
)

// Backtest errors.
var (
	ErrInvalidDateRange = &AppError{Code: "INVALID_DATE_RANGE", Message: "End date must be after start date", StatusCode: http.StatusBadRequest}
	ErrNoHistory        = &AppError{Code: "NO_HISTORY", Message: "No price history available for the requested range", StatusCode: http.StatusNotFound}
)
