package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"hns_backend/internal/feature/prices/domain/entity"
	"hns_backend/internal/shared/ratelimiter"
)

const (
	// seriesCoinID is the provider identifier of the tracked coin.
	seriesCoinID = "handshake"

	// chunkDays is the width of one ingestion chunk. 90 days keeps the
	// provider responding with hourly granularity.
	chunkDays = 90

	// chunkLookaheadDays extends each fetch past the chunk end so
	// same-day boundary samples are not missed. The cursor filter drops
	// the resulting overlap.
	chunkLookaheadDays = 1
)

// seriesInception is the first day the tracked series traded; ingestion
// for an empty store starts here.
var seriesInception = time.Date(2020, time.February, 4, 0, 0, 0, 0, time.Local)

// defaultCurrencies are the quote currencies synchronized per run.
var defaultCurrencies = []string{"usd", "btc"}

// MarketRepository abstracts the remote price provider.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type MarketRepository interface {
	FetchMarketChartRange(ctx context.Context, coinID, vsCurrency string, from, to time.Time) (*entity.MarketChart, error)
}

// IngestUsecase synchronizes the store with the remote provider in
// resumable 90-day chunks. Currencies are processed sequentially and
// independently; the first error aborts the whole run, and already
// committed chunks stay durable so a retry resumes from the new cursor.
type IngestUsecase struct {
	market      MarketRepository
	price       PriceRepository
	rateLimiter ratelimiter.RateLimiterInterface
	currencies  []string

	now func() time.Time
}

// NewIngestUsecase creates a new IngestUsecase. An empty currencies
// slice falls back to the default usd/btc pair.
func NewIngestUsecase(market MarketRepository, price PriceRepository, rateLimiter ratelimiter.RateLimiterInterface, currencies []string) *IngestUsecase {
	if len(currencies) == 0 {
		currencies = defaultCurrencies
	}
	return &IngestUsecase{
		market:      market,
		price:       price,
		rateLimiter: rateLimiter,
		currencies:  currencies,
		now:         time.Now,
	}
}

// IngestAll runs one synchronization pass over every configured
// currency, from each currency's cursor up through today.
func (iu *IngestUsecase) IngestAll(ctx context.Context) error {
	for _, currency := range iu.currencies {
		if err := iu.ingestCurrency(ctx, currency); err != nil {
			return fmt.Errorf("ingest %s: %w", currency, err)
		}
	}
	return nil
}

func (iu *IngestUsecase) ingestCurrency(ctx context.Context, currency string) error {
	cursor, err := iu.price.LatestTimestamp(ctx, currency)
	if err != nil {
		return err
	}

	start := seriesInception
	if cursor > 0 {
		start = dateOf(time.Unix(cursor, 0))
	}
	end := dateOf(iu.now())

	slog.Info("starting ingestion",
		"currency", currency,
		"from", start.Format(dateLayout),
		"to", end.Format(dateLayout))

	for day := start; !day.After(end); day = day.AddDate(0, 0, chunkDays) {
		chunkEnd := day.AddDate(0, 0, chunkDays-1)
		if chunkEnd.After(end) {
			chunkEnd = end
		}

		iu.rateLimiter.WaitIfNeeded()

		chart, err := iu.market.FetchMarketChartRange(ctx, seriesCoinID, currency,
			day, chunkEnd.AddDate(0, 0, chunkLookaheadDays))
		if err != nil {
			return err
		}

		points := mergeChart(chart, currency, cursor)
		if err := iu.price.UpsertBatch(ctx, points); err != nil {
			return err
		}

		slog.Info("chunk ingested",
			"currency", currency,
			"from", day.Format(dateLayout),
			"to", chunkEnd.Format(dateLayout),
			"points", len(points))
	}
	return nil
}

// mergeChart folds the three provider streams into one record per
// timestamp. A record exists only where the price stream has a sample;
// market cap and volume attach where their timestamps match and stay
// nil otherwise. Everything at or before the cursor is dropped, which
// makes re-fetching overlapping chunk ranges idempotent.
func mergeChart(chart *entity.MarketChart, currency string, cursor int64) []entity.PricePoint {
	merged := make(map[int64]*entity.PricePoint, len(chart.Prices))
	for _, s := range chart.Prices {
		ts := s.TimestampMillis / 1000
		if cursor > 0 && ts <= cursor {
			continue
		}
		merged[ts] = &entity.PricePoint{Timestamp: ts, Currency: currency, Price: s.Value}
	}
	for _, s := range chart.MarketCaps {
		if p, ok := merged[s.TimestampMillis/1000]; ok {
			v := s.Value
			p.MarketCap = &v
		}
	}
	for _, s := range chart.TotalVolumes {
		if p, ok := merged[s.TimestampMillis/1000]; ok {
			v := s.Value
			p.TotalVolume = &v
		}
	}

	out := make([]entity.PricePoint, 0, len(merged))
	for _, p := range merged {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out
}

// dateOf truncates a moment to its local calendar day.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
