// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"time"

	"pricehistory_backend/internal/platform/config"
)

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication
	BaseURL          string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout          time.Duration // HTTP request timeout
}

// ConfigFrom converts the application config section into a client Config.
func ConfigFrom(c config.TwelveDataConfig) Config {
	return Config{
		TwelveDataAPIKey: c.APIKey,
		BaseURL:          c.BaseURL,
		Timeout:          c.GetTimeout(),
	}
}
