package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NewRelic  NewRelicConfig
	Providers ProvidersConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// ProviderConfig holds the settings for one payment provider endpoint.
type ProviderConfig struct {
	BaseURL string
	APIKey  string
	Latency time.Duration
}

// ProvidersConfig holds payment provider configuration. Mock switches every
// adapter to simulated round trips; Latency values only apply in mock mode.
type ProvidersConfig struct {
	Mock         bool
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	MTN          ProviderConfig
	Vodafone     ProviderConfig
	Card         ProviderConfig
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "ride_payments"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "ride-payment-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Providers: ProvidersConfig{
			Mock:         getBoolEnv("PROVIDERS_MOCK", true),
			Timeout:      getDurationEnv("PROVIDER_TIMEOUT", 10*time.Second),
			MaxRetries:   getIntEnv("PROVIDER_MAX_RETRIES", 2),
			RetryBackoff: getDurationEnv("PROVIDER_RETRY_BACKOFF", 200*time.Millisecond),
			MTN: ProviderConfig{
				BaseURL: getEnv("MTN_MOMO_BASE_URL", "https://sandbox.momodeveloper.mtn.com"),
				APIKey:  getEnv("MTN_MOMO_API_KEY", ""),
				Latency: getDurationEnv("MTN_MOMO_MOCK_LATENCY", 2*time.Second),
			},
			Vodafone: ProviderConfig{
				BaseURL: getEnv("VODAFONE_CASH_BASE_URL", "https://api.vodafone.com.gh"),
				APIKey:  getEnv("VODAFONE_CASH_API_KEY", ""),
				Latency: getDurationEnv("VODAFONE_CASH_MOCK_LATENCY", 1800*time.Millisecond),
			},
			Card: ProviderConfig{
				BaseURL: getEnv("CARD_GATEWAY_BASE_URL", "https://api.card-gateway.example"),
				APIKey:  getEnv("CARD_GATEWAY_API_KEY", ""),
				Latency: getDurationEnv("CARD_GATEWAY_MOCK_LATENCY", 2500*time.Millisecond),
			},
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
