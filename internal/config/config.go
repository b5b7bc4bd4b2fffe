// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Language model settings
	OpenAIAPIKey string
	Model        string
	Temperature  float64
	MaxTokens    int

	// Library catalog settings
	LibraryBaseURL string
	LibraryAPIKey  string
	SearchTimeout  time.Duration
	RetryAttempts  int
	RetryBaseDelay time.Duration

	// Agent settings
	MaxIterations      int
	ResultLimitDefault int
	ResultLimitMax     int

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 120*time.Second),

		// Language model
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
		Model:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		Temperature:  getFloatEnv("MODEL_TEMPERATURE", 0.7),
		MaxTokens:    getIntEnv("MODEL_MAX_TOKENS", 4096),

		// Library catalog
		LibraryBaseURL: getEnv("LIBRARY_API_URL", "https://library.example.edu/api/v1"),
		LibraryAPIKey:  getEnv("LIBRARY_API_KEY", ""),
		SearchTimeout:  getDurationEnv("SEARCH_TIMEOUT", 20*time.Second),
		RetryAttempts:  getIntEnv("SEARCH_RETRY_ATTEMPTS", 5),
		RetryBaseDelay: getDurationEnv("SEARCH_RETRY_BASE_DELAY", 500*time.Millisecond),

		// Agent
		MaxIterations:      getIntEnv("AGENT_MAX_ITERATIONS", 5),
		ResultLimitDefault: getIntEnv("RESULT_LIMIT_DEFAULT", 10),
		ResultLimitMax:     getIntEnv("RESULT_LIMIT_MAX", 50),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
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
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
