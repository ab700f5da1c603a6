package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type MongoConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type PlacesProviderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey string
}

type JWTConfig struct {
	SecretKey       string
	TokenExpiration time.Duration
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type RepositoriesConfig struct {
	Mongo MongoConfig
}

type Config struct {
	Repositories RepositoriesConfig
	Places       PlacesProviderConfig
	Gemini       GeminiConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	ServerPort   string
}

func Load() (*Config, error) {
	cfg := &Config{
		Repositories: RepositoriesConfig{
			Mongo: MongoConfig{
				URI:      getEnvOrDefault("MONGO_URI", "mongodb://localhost:27017"),
				Database: getEnvOrDefault("MONGO_DB", "roamly"),
				Timeout:  10 * time.Second,
			},
		},
		Places: PlacesProviderConfig{
			BaseURL: getEnvOrDefault("PLACES_API_URL", "https://api.foursquare.com/v2"),
			APIKey:  os.Getenv("PLACES_API_KEY"),
			Timeout: 10 * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		JWT: JWTConfig{
			SecretKey:       os.Getenv("JWT_SECRET_KEY"),
			TokenExpiration: 24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 10),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 20),
		},
		ServerPort: getEnvOrDefault("SERVER_PORT", "8091"),
	}

	if cfg.Places.APIKey == "" {
		return nil, fmt.Errorf("PLACES_API_KEY environment variable is required")
	}
	if cfg.JWT.SecretKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
