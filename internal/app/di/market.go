// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"pricehistory_backend/internal/feature/prices/usecase"
	"pricehistory_backend/internal/platform/config"
	"pricehistory_backend/internal/platform/externalapi/twelvedata"
	infrahttp "pricehistory_backend/internal/platform/http"
	"pricehistory_backend/internal/shared/ratelimiter"
)

// NewMarket creates a fully configured TwelveDataMarket with HTTP client.
func NewMarket(cfg config.TwelveDataConfig) *twelvedata.TwelveDataMarket {
	tdCfg := twelvedata.ConfigFrom(cfg)
	httpClient := infrahttp.NewHTTPClient(tdCfg.Timeout, 2)
	return twelvedata.NewTwelveDataMarket(tdCfg, httpClient)
}

// NewMarketWindow builds the trading-hours window used to skip unfinished bars.
func NewMarketWindow(cfg config.MarketConfig) (usecase.MarketWindow, error) {
	return usecase.NewMarketWindow(cfg.Timezone, cfg.Open, cfg.Close)
}

// NewIngestLimiter paces market API calls at cfg.RateLimit requests per minute.
func NewIngestLimiter(cfg config.TwelveDataConfig) *ratelimiter.RateLimiter {
	return ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute)
}
