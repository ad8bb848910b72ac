package services

import (
	"context"
	"time"

	"stockpilot/internal/entitlement"
	"stockpilot/internal/models"
	"stockpilot/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
}

// QuoteServicer defines the contract for quote storage and refresh.
type QuoteServicer interface {
	// LatestQuotes returns the newest stored quote per symbol. Symbols
	// with no stored quote are absent from the map.
	LatestQuotes(symbols []string) (map[string]models.Quote, error)
	// EnsureQuotes returns a quote for every requested symbol, fetching
	// and persisting missing ones from the provider. When the provider is
	// unavailable it falls back to demo quotes and reports degraded=true.
	EnsureQuotes(ctx context.Context, symbols []string) (map[string]models.Quote, bool, error)
	// RefreshQuotes fetches fresh quotes for the given symbols and
	// persists them. Returns the number stored and whether the run was
	// degraded to demo data.
	RefreshQuotes(ctx context.Context, symbols []string) (int, bool, error)
	// GetQuote returns the latest quote for one symbol, fetching it when
	// nothing is stored yet.
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	// History returns stored quotes for a symbol in [from, to], oldest first.
	History(symbol string, from, to time.Time) ([]models.Quote, error)
	// ActiveSymbols returns every distinct symbol that is currently held
	// or watched by any user.
	ActiveSymbols() ([]string, error)
}

// PortfolioSummary is the valuation engine output plus delivery metadata.
type PortfolioSummary struct {
	TotalValue     int64             `json:"total_value"`
	TotalCost      int64             `json:"total_cost"`
	TotalReturn    int64             `json:"total_return"`
	TotalReturnPct float64           `json:"total_return_pct"`
	DayChange      int64             `json:"day_change"`
	DayChangePct   float64           `json:"day_change_pct"`
	Holdings       []HoldingView     `json:"holdings"`
	Rejected       []RejectedHolding `json:"rejected,omitempty"`
	QuotesDegraded bool              `json:"quotes_degraded"`
	AsOf           time.Time         `json:"as_of"`
}

// HoldingView is one valued position in a portfolio summary.
type HoldingView struct {
	Symbol       string  `json:"symbol"`
	Shares       float64 `json:"shares"`
	AvgCost      int64   `json:"avg_cost"`
	CurrentPrice int64   `json:"current_price"`
	MarketValue  int64   `json:"market_value"`
	CostBasis    int64   `json:"cost_basis"`
	GainLoss     int64   `json:"gain_loss"`
	GainLossPct  float64 `json:"gain_loss_pct"`
	DayChange    int64   `json:"day_change"`
	DayChangePct float64 `json:"day_change_pct"`
}

// RejectedHolding reports a position excluded from the summary.
type RejectedHolding struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
}

// PortfolioServicer defines the contract for holdings and valuation.
type PortfolioServicer interface {
	AddHolding(userID uint, symbol string, shares float64, avgCost int64, purchaseDate *time.Time, notes string) (*models.Holding, error)
	GetHoldings(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Holding], error)
	GetHoldingBySymbol(userID uint, symbol string) (*models.Holding, error)
	UpdateHolding(userID uint, symbol string, shares float64, avgCost int64) (*models.Holding, error)
	RemoveHolding(userID uint, symbol string) error
	GetSummary(ctx context.Context, userID uint) (*PortfolioSummary, error)
}

// BacktestPoint is one day in a backtest value series.
type BacktestPoint struct {
	Date  time.Time `json:"date"`
	Value int64     `json:"value"`
}

// BacktestResult is the replayed value series for a portfolio.
type BacktestResult struct {
	StartValue int64           `json:"start_value"`
	EndValue   int64           `json:"end_value"`
	ReturnAbs  int64           `json:"return_abs"`
	ReturnPct  float64         `json:"return_pct"`
	Series     []BacktestPoint `json:"series"`
}

// BacktestServicer defines the contract for portfolio backtests.
type BacktestServicer interface {
	Run(userID uint, start, end time.Time) (*BacktestResult, error)
}

// WatchlistServicer defines the contract for watchlist management.
type WatchlistServicer interface {
	GetWatchlist(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.WatchlistItem], error)
	AddSymbol(userID uint, symbol string) (*models.WatchlistItem, error)
	RemoveSymbol(userID uint, symbol string) error
}

// AlertServicer defines the contract for price alerts.
type AlertServicer interface {
	GetUserAlerts(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Alert], error)
	CreateAlert(userID uint, symbol string, condition models.AlertCondition, threshold int64) (*models.Alert, error)
	DeleteAlert(userID, alertID uint) error
	// EvaluateActive checks every active alert against the latest stored
	// quotes and deactivates the ones that fired. Returns the number
	// triggered.
	EvaluateActive() (int, error)
}

// BillingServicer owns plan tier mutation. Payment processing is external;
// only confirmed checkout/cancellation events land here.
type BillingServicer interface {
	ApplyCheckout(userID uint, plan entitlement.Plan) (*models.User, error)
	CancelSubscription(userID uint) (*models.User, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]any)
}
