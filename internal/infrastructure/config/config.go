// internal/infrastructure/config/config.go
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// App
	AppVersion string

	// Server
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Redis cache store
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	// PostgreSQL (reliability reference table)
	PostgresURI string

	// MongoDB (search audit log)
	MongoURI string
	MongoDB  string

	// Partner availability API
	PartnerAPIBaseURL string
	PartnerAPIKey     string
	FetchTimeout      time.Duration

	// Engine
	MaxFetchConcurrency   int
	MinConnectionMinutes  int
	PricingCacheEnabled   bool
	ReliabilityRefreshTTL time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	// Set defaults and override with env vars
	config := &Config{
		AppVersion:   getEnv("APP_VERSION", "1.0.0"),
		Port:         getEnv("PORT", "8080"),
		ReadTimeout:  time.Duration(getEnvAsInt("READ_TIMEOUT", 30)) * time.Second,
		WriteTimeout: time.Duration(getEnvAsInt("WRITE_TIMEOUT", 60)) * time.Second,

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 1800)) * time.Second,

		PostgresURI: getEnv("POSTGRES_DSN", "host=localhost user=postgres dbname=routes port=5432"),

		MongoURI: getEnv("MONGODB_DSN", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "routeapi"),

		PartnerAPIBaseURL: getEnv("PARTNER_API_BASE_URL", ""),
		PartnerAPIKey:     getEnv("PARTNER_API_KEY", ""),
		FetchTimeout:      time.Duration(getEnvAsInt("FETCH_TIMEOUT", 45)) * time.Second,

		MaxFetchConcurrency:   getEnvAsInt("MAX_FETCH_CONCURRENCY", 5),
		MinConnectionMinutes:  getEnvAsInt("MIN_CONNECTION_MINUTES", 45),
		PricingCacheEnabled:   getEnv("PRICING_CACHE_ENABLED", "true") == "true",
		ReliabilityRefreshTTL: time.Duration(getEnvAsInt("RELIABILITY_REFRESH_SECONDS", 300)) * time.Second,
	}

	return config, nil
}

// Helper functions to get environment variables
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
