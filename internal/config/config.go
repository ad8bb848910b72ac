package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration

	// Market data provider
	MarketBaseURL        string
	MarketAPIKey         string
	MarketTimeout        time.Duration
	MarketRateLimit      float64
	MarketRateLimitBurst int

	// Quote refresh scheduler ("" disables the cron job)
	QuoteRefreshSpec string
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get values from environment variables with defaults
	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),

		// Database
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "stockpilot"),
		DBPassword: getEnv("DB_PASSWORD", "stockpilot"),
		DBName:     getEnv("DB_NAME", "stockpilot"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Market data provider
		MarketBaseURL:        getEnv("MARKET_BASE_URL", "https://api.marketfeed.example.com/v1"),
		MarketAPIKey:         getEnv("MARKET_API_KEY", ""),
		MarketTimeout:        getEnvDuration("MARKET_TIMEOUT", 10*time.Second),
		MarketRateLimit:      getEnvFloat("MARKET_RATE_LIMIT", 5),
		MarketRateLimitBurst: getEnvInt("MARKET_RATE_LIMIT_BURST", 10),

		// Scheduler: weekdays every 15 minutes during extended trading hours
		QuoteRefreshSpec: getEnv("QUOTE_REFRESH_SPEC", "*/15 6-20 * * 1-5"),
	}

	config.JWTExpirationDur = getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration parses a duration environment variable, falling back on
// the default (with a warning) when missing or malformed.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, value, defaultValue)
		return defaultValue
	}
	return d
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %d\n", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %g\n", key, value, defaultValue)
		return defaultValue
	}
	return f
}
