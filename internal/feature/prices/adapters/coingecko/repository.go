package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hns_backend/internal/feature/prices/adapters/coingecko/dto"
	"hns_backend/internal/feature/prices/domain"
	"hns_backend/internal/feature/prices/domain/entity"
	"hns_backend/internal/feature/prices/usecase"
)

// CoinGeckoMarket fetches historical market data from the CoinGecko Pro
// API as a MarketRepository implementation.
type CoinGeckoMarket struct {
	cfg    Config
	client *http.Client
}

var _ usecase.MarketRepository = (*CoinGeckoMarket)(nil)

// NewCoinGeckoMarket creates a new CoinGeckoMarket with the given
// configuration and HTTP client.
func NewCoinGeckoMarket(cfg Config, client *http.Client) *CoinGeckoMarket {
	return &CoinGeckoMarket{cfg: cfg, client: client}
}

// FetchMarketChartRange retrieves the price, market cap and volume
// streams for a coin over [from, to]. Any transport failure or non-2xx
// status is reported as *domain.RemoteError.
func (c *CoinGeckoMarket) FetchMarketChartRange(ctx context.Context, coinID, vsCurrency string, from, to time.Time) (*entity.MarketChart, error) {
	q := url.Values{}
	q.Set("vs_currency", vsCurrency)
	q.Set("from", strconv.FormatInt(from.Unix(), 10))
	q.Set("to", strconv.FormatInt(to.Unix(), 10))
	q.Set("x_cg_pro_api_key", c.cfg.APIKey)

	u := fmt.Sprintf("%s/coins/%s/market_chart/range?%s", c.cfg.BaseURL, url.PathEscape(coinID), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.RemoteError{Message: err.Error()}
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, remoteError(res.StatusCode, res.Body)
	}

	var body dto.MarketChartResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, &domain.RemoteError{Message: fmt.Sprintf("decode response: %v", err)}
	}

	return &entity.MarketChart{
		Prices:       toSamples(body.Prices),
		MarketCaps:   toSamples(body.MarketCaps),
		TotalVolumes: toSamples(body.TotalVolumes),
	}, nil
}

// toSamples converts the provider's [millis, value] pairs, skipping
// malformed rows.
func toSamples(pairs [][]float64) []entity.Sample {
	out := make([]entity.Sample, 0, len(pairs))
	for _, p := range pairs {
		if len(p) < 2 {
			continue
		}
		out = append(out, entity.Sample{TimestampMillis: int64(p[0]), Value: p[1]})
	}
	return out
}

// remoteError builds a RemoteError from a failed response, preferring
// the structured error message when the body parses.
func remoteError(status int, body io.Reader) error {
	payload, _ := io.ReadAll(io.LimitReader(body, 4096))

	var apiErr dto.ErrorResponse
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Status.ErrorMessage != "" {
		return &domain.RemoteError{StatusCode: status, Message: apiErr.Status.ErrorMessage}
	}
	return &domain.RemoteError{StatusCode: status, Message: strings.TrimSpace(string(payload))}
}
