// Package entity defines the core domain models for the prices feature.
package entity

// PricePoint is one stored sample of the tracked price series.
// MarketCap and TotalVolume are nil when the provider stream did not
// carry a sample for this timestamp.
type PricePoint struct {
	Timestamp   int64
	Currency    string
	Price       float64
	MarketCap   *float64
	TotalVolume *float64
}

// Sample is a single (timestamp, value) pair as returned by the
// provider, with millisecond precision.
type Sample struct {
	TimestampMillis int64
	Value           float64
}

// MarketChart holds the three independently timestamped streams of a
// market chart range response. The streams are not guaranteed to share
// timestamp sets.
type MarketChart struct {
	Prices       []Sample
	MarketCaps   []Sample
	TotalVolumes []Sample
}
