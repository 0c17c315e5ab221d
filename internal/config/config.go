// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
//
// Provider API keys are deliberately not validated at startup: a missing key
// only disables the endpoints that need it, and those endpoints report the
// missing credential at request time so operators can tell broken setup
// apart from upstream failures.
type Config struct {
	Port      int
	LogLevel  string
	DevMode   bool
	StaticDir string // optional directory of dashboard assets to serve

	AlphaVantageAPIKey string
	FinnhubAPIKey      string
	OpenAIAPIKey       string
	OpenAIModel        string
	CoinGeckoAPIKey    string // optional, the keyless tier works

	BrokerBaseURL    string
	BrokerSessionKey string // session credential for the broker account API
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:      getEnvAsInt("PORT", 8080),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		DevMode:   getEnvAsBool("DEV_MODE", false),
		StaticDir: getEnv("STATIC_DIR", ""),

		AlphaVantageAPIKey: getEnv("ALPHAVANTAGE_API_KEY", ""),
		FinnhubAPIKey:      getEnv("FINNHUB_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		CoinGeckoAPIKey:    getEnv("COINGECKO_API_KEY", ""),

		BrokerBaseURL:    getEnv("BROKER_BASE_URL", ""),
		BrokerSessionKey: getEnv("BROKER_SESSION_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks for structurally broken configuration.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
