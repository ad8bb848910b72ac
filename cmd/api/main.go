package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"stockpilot/internal/config"
	"stockpilot/internal/database"
	"stockpilot/internal/handlers"
	"stockpilot/internal/logger"
	"stockpilot/internal/market"
	"stockpilot/internal/middleware"
	"stockpilot/internal/scheduler"
	"stockpilot/internal/services"
	"stockpilot/internal/validator"
)

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Initialize services
	db := dbManager.DB()
	marketClient := market.NewClient(appConfig, logger.Named("market"))
	userService := services.NewUserService(db)
	quoteService := services.NewQuoteService(db, marketClient)
	portfolioService := services.NewPortfolioService(db, quoteService)
	backtestService := services.NewBacktestService(db, userService)
	watchlistService := services.NewWatchlistService(db, userService)
	alertService := services.NewAlertService(db, userService, quoteService)
	billingService := services.NewBillingService(db, userService)
	auditService := services.NewAuditService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService, auditService)
	portfolioHandler := handlers.NewPortfolioHandler(portfolioService, auditService)
	quoteHandler := handlers.NewQuoteHandler(quoteService)
	backtestHandler := handlers.NewBacktestHandler(backtestService)
	planHandler := handlers.NewPlanHandler(userService, billingService, auditService)
	watchlistHandler := handlers.NewWatchlistHandler(watchlistService)
	alertHandler := handlers.NewAlertHandler(alertService)

	// Start the quote refresh scheduler
	refresher := scheduler.NewQuoteRefresher(quoteService, alertService, appConfig.QuoteRefreshSpec)
	if err := refresher.Start(); err != nil {
		return fmt.Errorf("failed to start quote refresher: %w", err)
	}
	defer refresher.Stop()

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile and plan
	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/user/plan", planHandler.GetPlan)
	protected.GET("/features/:feature", planHandler.CheckFeature)

	// Billing events
	billing := protected.Group("/billing")
	billing.POST("/checkout", planHandler.Checkout)
	billing.POST("/cancel", planHandler.Cancel)

	// Portfolio routes
	portfolio := protected.Group("/portfolio")
	portfolio.GET("/summary", portfolioHandler.GetSummary)
	portfolio.POST("/backtest", backtestHandler.Run)
	portfolio.GET("/holdings", portfolioHandler.ListHoldings)
	portfolio.POST("/holdings", portfolioHandler.AddHolding)
	portfolio.GET("/holdings/:symbol", portfolioHandler.GetHolding)
	portfolio.PUT("/holdings/:symbol", portfolioHandler.UpdateHolding)
	portfolio.DELETE("/holdings/:symbol", portfolioHandler.RemoveHolding)

	// Quote routes
	quotes := protected.Group("/quotes")
	quotes.GET("/:symbol", quoteHandler.GetQuote)
	quotes.GET("/:symbol/history", quoteHandler.GetHistory)

	// Watchlist routes
	watchlist := protected.Group("/watchlist")
	watchlist.GET("", watchlistHandler.List)
	watchlist.POST("", watchlistHandler.Add)
	watchlist.DELETE("/:symbol", watchlistHandler.Remove)

	// Alert routes
	alerts := protected.Group("/alerts")
	alerts.GET("", alertHandler.List)
	alerts.POST("", alertHandler.Create)
	alerts.DELETE("/:id", alertHandler.Delete)

	log.Infof("Starting StockPilot backend server on port %s", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
