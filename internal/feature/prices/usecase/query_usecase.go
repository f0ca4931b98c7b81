// Package usecase implements the business logic for the prices feature.
package usecase

import (
	"context"
	"fmt"
	"time"

	"hns_backend/internal/feature/prices/domain"
	"hns_backend/internal/feature/prices/domain/entity"
)

const (
	// DefaultCurrency is used when a request omits the currency parameter.
	DefaultCurrency = "usd"

	dateLayout = "2006-01-02"
)

// ExtremeDirection selects which price extreme a query resolves.
type ExtremeDirection string

const (
	ExtremeMin ExtremeDirection = "min"
	ExtremeMax ExtremeDirection = "max"
)

// PriceRepository abstracts the durable price store.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PriceRepository interface {
	// UpsertBatch inserts or replaces points keyed by (timestamp, currency).
	UpsertBatch(ctx context.Context, points []entity.PricePoint) error
	// Range returns points matching the conjunctive filters, newest first.
	Range(ctx context.Context, from, to *int64, currency string) ([]entity.PricePoint, error)
	// DailySummary returns the latest point per calendar day in [from, to], newest first.
	DailySummary(ctx context.Context, from, to int64, currency string) ([]entity.PricePoint, error)
	// LatestTimestamp returns the greatest stored timestamp, or 0 when none.
	LatestTimestamp(ctx context.Context, currency string) (int64, error)
	// Latest returns the newest point, or nil when none.
	Latest(ctx context.Context, currency string) (*entity.PricePoint, error)
	// Extreme returns the min/max priced point, optionally bounded below by since.
	Extreme(ctx context.Context, currency string, dir ExtremeDirection, since *int64) (*entity.PricePoint, error)
}

// queryUsecase is a stateless facade mapping request parameters onto
// store operations.
type queryUsecase struct {
	price PriceRepository
}

// NewQueryUsecase creates a new queryUsecase over the given store.
func NewQueryUsecase(price PriceRepository) *queryUsecase {
	return &queryUsecase{price: price}
}

// GetHistorical resolves the historical query policy:
//   - no from: the whole stored series for the currency
//   - from only, or from == to: every granular point of that single day
//   - distinct from and to: one latest point per day across the range
func (qu *queryUsecase) GetHistorical(ctx context.Context, fromDate, toDate, currency string) ([]entity.PricePoint, error) {
	if currency == "" {
		currency = DefaultCurrency
	}

	if fromDate == "" {
		return qu.price.Range(ctx, nil, nil, currency)
	}

	from, err := parseDate(fromDate, "from")
	if err != nil {
		return nil, err
	}

	if toDate == "" || toDate == fromDate {
		f, t := startOfDay(from), endOfDay(from)
		return qu.price.Range(ctx, &f, &t, currency)
	}

	to, err := parseDate(toDate, "to")
	if err != nil {
		return nil, err
	}

	return qu.price.DailySummary(ctx, startOfDay(from), endOfDay(to), currency)
}

// GetLatest returns the most recent point for the currency.
func (qu *queryUsecase) GetLatest(ctx context.Context, currency string) (*entity.PricePoint, error) {
	if currency == "" {
		currency = DefaultCurrency
	}

	p, err := qu.price.Latest(ctx, currency)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNoPriceData
	}
	return p, nil
}

// GetExtreme returns the min or max priced point for the currency,
// optionally restricted to days from sinceDate onwards.
func (qu *queryUsecase) GetExtreme(ctx context.Context, currency string, dir ExtremeDirection, sinceDate string) (*entity.PricePoint, error) {
	if currency == "" {
		currency = DefaultCurrency
	}

	var since *int64
	if sinceDate != "" {
		d, err := parseDate(sinceDate, "since")
		if err != nil {
			return nil, err
		}
		s := startOfDay(d)
		since = &s
	}

	p, err := qu.price.Extreme(ctx, currency, dir, since)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNoPriceData
	}
	return p, nil
}

// parseDate parses a YYYY-MM-DD request parameter in the process's
// local zone, mirroring how ingestion anchors its chunk boundaries.
func parseDate(s, field string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q, want YYYY-MM-DD", domain.ErrInvalidDate, field, s)
	}
	return d, nil
}

func startOfDay(d time.Time) int64 {
	return d.Unix()
}

func endOfDay(d time.Time) int64 {
	return d.Add(23*time.Hour + 59*time.Minute + 59*time.Second).Unix()
}
