package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stockpilot/internal/handlers"
	"stockpilot/internal/logger"
	"stockpilot/internal/market"
	"stockpilot/internal/middleware"
	"stockpilot/internal/models"
	"stockpilot/internal/services"
	"stockpilot/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// stubFetcher serves a fixed price table; nil table means provider outage.
type stubFetcher struct {
	prices map[string]int64
}

func (f *stubFetcher) FetchQuotes(_ context.Context, symbols []string) ([]market.ProviderQuote, error) {
	if f.prices == nil {
		return nil, fmt.Errorf("provider unavailable")
	}
	quotes := make([]market.ProviderQuote, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.ToUpper(sym)
		if price, ok := f.prices[sym]; ok {
			quotes = append(quotes, market.ProviderQuote{Symbol: sym, Price: price, AsOf: time.Now()})
		}
	}
	return quotes, nil
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.Holding{},
		&models.Quote{},
		&models.WatchlistItem{},
		&models.Alert{},
		&models.AuditLog{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory
// SQLite and the given quote fetcher.
func setupApp(t *testing.T, fetcher market.Fetcher) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)
	if fetcher == nil {
		fetcher = &stubFetcher{prices: map[string]int64{
			"AAPL": 22000,
			"TSLA": 43658,
			"MSFT": 41000,
		}}
	}

	// Services
	userService := services.NewUserService(db)
	quoteService := services.NewQuoteService(db, fetcher)
	portfolioService := services.NewPortfolioService(db, quoteService)
	backtestService := services.NewBacktestService(db, userService)
	watchlistService := services.NewWatchlistService(db, userService)
	alertService := services.NewAlertService(db, userService, quoteService)
	billingService := services.NewBillingService(db, userService)
	auditService := services.NewAuditService(db)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, auditService)
	quoteHandler := handlers.NewQuoteHandler(quoteService)
	backtestHandler := handlers.NewBacktestHandler(backtestService)
	planHandler := handlers.NewPlanHandler(userService, billingService, auditService)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService)
	alertHandler := handlers.NewAlertHandler(alertService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/user/plan", planHandler.GetPlan)
	protected.GET("/features/:feature", planHandler.CheckFeature)

	billing := protected.Group("/billing")
	billing.POST("/checkout", planHandler.Checkout)
	billing.POST("/cancel", planHandler.Cancel)

	portfolio := protected.Group("/portfolio")
	portfolio.GET("/summary", portfolioHandler.GetSummary)
	portfolio.POST("/backtest", backtestHandler.Run)
	portfolio.GET("/holdings", portfolioHandler.ListHoldings)
	portfolio.POST("/holdings", portfolioHandler.AddHolding)
	portfolio.GET("/holdings/:symbol", portfolioHandler.GetHolding)
	portfolio.PUT("/holdings/:symbol", portfolioHandler.UpdateHolding)
	portfolio.DELETE("/holdings/:symbol", portfolioHandler.RemoveHolding)

	quotes := protected.Group("/quotes")
	quotes.GET("/:symbol", quoteHandler.GetQuote)
	quotes.GET("/:symbol/history", quoteHandler.GetHistory)

	watchlist := protected.Group("/watchlist")
	watchlist.GET("", watchlistHandler.List)
	watchlist.POST("", watchlistHandler.Add)
	watchlist.DELETE("/:symbol", watchlistHandler.Remove)

	alerts := protected.Group("/alerts")
	alerts.GET("", alertHandler.List)
	alerts.POST("", alertHandler.Create)
	alerts.DELETE("/:id", alertHandler.Delete)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token, refresh token, and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken, refreshToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"first_name":"Test","last_name":"User"}`, email, password)
	rec := app.request("POST", "/api/v1/auth/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	return result["access_token"].(string), result["refresh_token"].(string), user["id"].(float64)
}

// upgradeUser moves the user onto the given plan through the billing endpoint.
func (app *testApp) upgradeUser(t *testing.T, token, plan string) {
	t.Helper()
	rec := app.request("POST", "/api/v1/billing/checkout", fmt.Sprintf(`{"plan":%q}`, plan), token)
	if rec.Code != http.StatusOK {
		t.Fatalf("checkout failed: %d %s", rec.Code, rec.Body.String())
	}
}
