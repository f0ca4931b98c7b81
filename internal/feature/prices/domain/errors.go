// Package domain defines domain-level errors for the prices feature.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoPriceData indicates that no stored price matches the query.
	// Transport maps this to HTTP 404.
	ErrNoPriceData = errors.New("no price data found for this currency")

	// ErrInvalidDate indicates a malformed YYYY-MM-DD request parameter.
	// Transport maps this to HTTP 400.
	ErrInvalidDate = errors.New("invalid date")
)

// RemoteError reports a failed call to the remote price provider, either
// a non-2xx response or a transport failure (StatusCode 0). It is fatal
// to the ingestion run that observes it.
type RemoteError struct {
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("coingecko: %s", e.Message)
	}
	return fmt.Sprintf("coingecko http %d: %s", e.StatusCode, e.Message)
}
