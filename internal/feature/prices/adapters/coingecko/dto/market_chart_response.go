// Package dto mirrors CoinGecko API response shapes.
package dto

// MarketChartResponse is the body of /coins/{id}/market_chart/range.
// Each inner pair is [epoch-milliseconds, value]; the three series are
// sampled independently and may disagree on timestamps.
type MarketChartResponse struct {
	Prices       [][]float64 `json:"prices"`
	MarketCaps   [][]float64 `json:"market_caps"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// ErrorResponse is the body CoinGecko returns on failed requests.
type ErrorResponse struct {
	Status struct {
		ErrorCode    int    `json:"error_code"`
		ErrorMessage string `json:"error_message"`
	} `json:"status"`
}
