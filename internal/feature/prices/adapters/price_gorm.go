package adapters

import (
	"context"
	"sort"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"hns_backend/internal/feature/prices/domain/entity"
	"hns_backend/internal/feature/prices/usecase"
)

type priceGorm struct {
	db *gorm.DB
}

var _ usecase.PriceRepository = (*priceGorm)(nil)

func NewPriceRepository(db *gorm.DB) *priceGorm {
	return &priceGorm{db: db}
}

// PricePointModel is the persisted form of entity.PricePoint. One row
// per (timestamp, currency); re-ingestion replaces in place.
type PricePointModel struct {
	Timestamp   int64   `gorm:"primaryKey;autoIncrement:false"`
	Currency    string  `gorm:"primaryKey;size:16"`
	Price       float64 `gorm:"not null"`
	MarketCap   *float64
	TotalVolume *float64
}

func (PricePointModel) TableName() string {
	return "prices"
}

func toModel(e entity.PricePoint) PricePointModel {
	return PricePointModel{
		Timestamp:   e.Timestamp,
		Currency:    e.Currency,
		Price:       e.Price,
		MarketCap:   e.MarketCap,
		TotalVolume: e.TotalVolume,
	}
}

func toEntity(m PricePointModel) entity.PricePoint {
	return entity.PricePoint{
		Timestamp:   m.Timestamp,
		Currency:    m.Currency,
		Price:       m.Price,
		MarketCap:   m.MarketCap,
		TotalVolume: m.TotalVolume,
	}
}

func toEntities(ms []PricePointModel) []entity.PricePoint {
	out := make([]entity.PricePoint, 0, len(ms))
	for _, m := range ms {
		out = append(out, toEntity(m))
	}
	return out
}

// UpsertBatch inserts or replaces points keyed by (timestamp, currency).
// Existing keys are overwritten, never rejected.
func (r *priceGorm) UpsertBatch(ctx context.Context, points []entity.PricePoint) error {
	if len(points) == 0 {
		return nil
	}
	ms := make([]PricePointModel, 0, len(points))
	for _, e := range points {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "timestamp"}, {Name: "currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"price", "market_cap", "total_volume"}),
	}).Create(&ms).Error
}

// Range returns points matching the conjunction of the given filters,
// newest first. Nil bounds and an empty currency impose no constraint.
func (r *priceGorm) Range(ctx context.Context, from, to *int64, currency string) ([]entity.PricePoint, error) {
	q := r.db.WithContext(ctx).Model(&PricePointModel{})
	if from != nil {
		q = q.Where("timestamp >= ?", *from)
	}
	if to != nil {
		q = q.Where("timestamp <= ?", *to)
	}
	if currency != "" {
		q = q.Where("currency = ?", currency)
	}

	var rows []PricePointModel
	if err := q.Order("timestamp DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

// DailySummary returns, per UTC calendar day inside [from, to], the
// point with the greatest timestamp, newest first. The reduction runs
// in Go over one ascending query so it works identically on every
// gorm driver.
func (r *priceGorm) DailySummary(ctx context.Context, from, to int64, currency string) ([]entity.PricePoint, error) {
	var rows []PricePointModel
	err := r.db.WithContext(ctx).
		Where("currency = ? AND timestamp >= ? AND timestamp <= ?", currency, from, to).
		Order("timestamp ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	// Rows arrive oldest first, so the last write per day key is the
	// day's greatest timestamp.
	perDay := make(map[string]PricePointModel)
	for _, m := range rows {
		perDay[dayKey(m.Timestamp)] = m
	}

	out := make([]entity.PricePoint, 0, len(perDay))
	for _, m := range perDay {
		out = append(out, toEntity(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

// dayKey buckets an epoch-second timestamp into its UTC calendar day.
func dayKey(ts int64) string {
	return time.Unix(ts, 0).UTC().Format("2006-01-02")
}

// LatestTimestamp returns the greatest stored timestamp for the
// currency, or 0 when nothing is stored yet.
func (r *priceGorm) LatestTimestamp(ctx context.Context, currency string) (int64, error) {
	var ts int64
	err := r.db.WithContext(ctx).
		Model(&PricePointModel{}).
		Where("currency = ?", currency).
		Select("COALESCE(MAX(timestamp), 0)").
		Scan(&ts).Error
	if err != nil {
		return 0, err
	}
	return ts, nil
}

// Latest returns the newest point for the currency, or nil when none.
func (r *priceGorm) Latest(ctx context.Context, currency string) (*entity.PricePoint, error) {
	var rows []PricePointModel
	err := r.db.WithContext(ctx).
		Where("currency = ?", currency).
		Order("timestamp DESC").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := toEntity(rows[0])
	return &p, nil
}

// Extreme returns the minimum or maximum priced point for the currency,
// optionally restricted to timestamp >= since. Equal prices resolve to
// the earliest timestamp.
func (r *priceGorm) Extreme(ctx context.Context, currency string, dir usecase.ExtremeDirection, since *int64) (*entity.PricePoint, error) {
	order := "price ASC, timestamp ASC"
	if dir == usecase.ExtremeMax {
		order = "price DESC, timestamp ASC"
	}

	q := r.db.WithContext(ctx).Where("currency = ?", currency)
	if since != nil {
		q = q.Where("timestamp >= ?", *since)
	}

	var rows []PricePointModel
	if err := q.Order(order).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := toEntity(rows[0])
	return &p, nil
}
