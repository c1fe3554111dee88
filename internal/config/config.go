package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Server struct {
		Port         string
		ReadTimeout  time.Duration
		WriteTimeout time.Duration
		LogLevel     string
	}

	Meteomatics struct {
		BaseURL  string
		Username string
		Password string
	}

	OpenMeteo struct {
		BaseURL      string
		GeocodingURL string
	}

	Nominatim struct {
		BaseURL   string
		UserAgent string
	}

	History struct {
		Path string
	}

	Suggest struct {
		Debounce time.Duration
		Limit    int
	}

	HTTPClient struct {
		Timeout time.Duration
	}

	CircuitBreaker struct {
		Threshold int
		Timeout   time.Duration
	}

	Retry struct {
		MaxRetries int
		Delay      time.Duration
		Multiplier float64
	}
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if err := godotenv.Load(); err != nil {
		zap.L().Info("No .env file found, using environment variables")
	}

	cfg := &Config{}

	// Server configuration
	cfg.Server.Port = getEnv("SERVER_PORT", "8080")
	cfg.Server.ReadTimeout = parseDuration(getEnv("SERVER_READ_TIMEOUT", "10s"))
	cfg.Server.WriteTimeout = parseDuration(getEnv("SERVER_WRITE_TIMEOUT", "10s"))
	cfg.Server.LogLevel = getEnv("LOG_LEVEL", "info")

	// Weather provider configuration. The Meteomatics credential comes from
	// the environment only; without it the primary provider answers 403 and
	// every lookup rides the fallback.
	cfg.Meteomatics.BaseURL = getEnv("METEOMATICS_URL", "https://api.meteomatics.com")
	cfg.Meteomatics.Username = getEnv("METEOMATICS_USERNAME", "")
	cfg.Meteomatics.Password = getEnv("METEOMATICS_PASSWORD", "")
	cfg.OpenMeteo.BaseURL = getEnv("OPENMETEO_URL", "https://api.open-meteo.com/v1")
	cfg.OpenMeteo.GeocodingURL = getEnv("OPENMETEO_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1")
	cfg.Nominatim.BaseURL = getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	cfg.Nominatim.UserAgent = getEnv("NOMINATIM_USER_AGENT", "weather-service/1.0")

	if cfg.Meteomatics.Username == "" || cfg.Meteomatics.Password == "" {
		zap.L().Warn("Meteomatics credentials not set, lookups will use the fallback provider")
	}

	// Search history configuration
	cfg.History.Path = getEnv("HISTORY_DB_PATH", "data/history.db")

	// Suggestion configuration
	cfg.Suggest.Debounce = parseDuration(getEnv("SUGGEST_DEBOUNCE", "300ms"))
	cfg.Suggest.Limit = parseInt(getEnv("SUGGEST_LIMIT", "10"))

	// HTTP client configuration
	cfg.HTTPClient.Timeout = parseDuration(getEnv("HTTP_CLIENT_TIMEOUT", "10s"))

	// Circuit breaker configuration
	cfg.CircuitBreaker.Threshold = parseInt(getEnv("CIRCUIT_BREAKER_THRESHOLD", "3"))
	cfg.CircuitBreaker.Timeout = parseDuration(getEnv("CIRCUIT_BREAKER_TIMEOUT", "30s"))

	// Retry configuration. The weather path recovers through the provider
	// fallback, not retries, so the default budget is zero.
	cfg.Retry.MaxRetries = parseInt(getEnv("MAX_RETRIES", "0"))
	cfg.Retry.Delay = parseDuration(getEnv("RETRY_DELAY", "1s"))
	cfg.Retry.Multiplier = parseFloat(getEnv("RETRY_MULTIPLIER", "2"))

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(value string) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		zap.L().Warn("Failed to parse duration", zap.String("value", value), zap.Error(err))
		return 0
	}
	return duration
}

func parseInt(value string) int {
	intValue, err := strconv.Atoi(value)
	if err != nil {
		zap.L().Warn("Failed to parse int", zap.String("value", value), zap.Error(err))
		return 0
	}
	return intValue
}

func parseFloat(value string) float64 {
	floatValue, err := strconv.ParseFloat(value, 64)
	if err != nil {
		zap.L().Warn("Failed to parse float", zap.String("value", value), zap.Error(err))
		return 0
	}
	return floatValue
}
