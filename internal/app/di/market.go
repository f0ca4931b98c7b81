// Package di provides dependency injection factories for creating application components.
package di

import (
	"hns_backend/internal/feature/prices/adapters/coingecko"
	platformhttp "hns_backend/internal/platform/http"
)

// NewMarket creates a fully configured CoinGecko client with its HTTP client.
func NewMarket() *coingecko.CoinGeckoMarket {
	cfg := coingecko.LoadConfig()
	httpClient := platformhttp.NewHTTPClient(cfg.Timeout)
	return coingecko.NewCoinGeckoMarket(cfg, httpClient)
}
