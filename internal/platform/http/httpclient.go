package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient builds the HTTP client used for outbound API calls.
// http.DefaultClient carries no timeout, so external calls always go
// through this one; the transport is pinned explicitly to keep
// connection reuse and handshake limits predictable.
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
