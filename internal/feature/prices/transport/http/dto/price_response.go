// Package dto defines HTTP response shapes for the prices feature.
package dto

// PricePointResponse is the JSON form of one stored price point.
// MarketCap and TotalVolume serialize as null when the provider had no
// sample at this timestamp.
type PricePointResponse struct {
	Timestamp   int64    `json:"timestamp"`
	Currency    string   `json:"currency"`
	Price       float64  `json:"price"`
	MarketCap   *float64 `json:"market_cap"`
	TotalVolume *float64 `json:"total_volume"`
}

// MessageResponse is a generic success envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the failure envelope; Detail carries the cause.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
