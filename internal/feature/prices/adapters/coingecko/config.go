// Package coingecko provides a client for the CoinGecko Pro market API.
package coingecko

import (
	"os"
	"time"
)

// Config holds configuration for the CoinGecko API client.
type Config struct {
	APIKey  string        // Pro API key for authentication
	BaseURL string        // Base URL for the API (e.g., "https://pro-api.coingecko.com/api/v3")
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads CoinGecko configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("COINGECKO_BASE_URL")
	if base == "" {
		base = "https://pro-api.coingecko.com/api/v3"
	}
	return Config{
		APIKey:  os.Getenv("COINGECKO_API_KEY"),
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
