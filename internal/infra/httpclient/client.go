package httpclient

import (
	"net"
	"net/http"
	"time"

	"github.com/staybook/payments/internal/infra/config"
)

// New creates the shared outbound HTTP client used by the Stripe gateway and
// the booking service client.
func New(cfg config.HTTPClientConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: cfg.KeepAlive,
		}).DialContext,
		MaxIdleConns:        cfg.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.MaxIdleConnsPerHost,
		MaxConnsPerHost:     cfg.MaxConnsPerHost,
		IdleConnTimeout:     cfg.IdleConnTimeout,
		TLSHandshakeTimeout: cfg.TLSHandshakeTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   cfg.ResponseTimeout,
	}
}

// WithTimeout returns a client sharing c's connection pool with a different
// overall timeout. A non-positive timeout returns c unchanged.
func WithTimeout(c *http.Client, timeout time.Duration) *http.Client {
	if c == nil || timeout <= 0 {
		return c
	}
	clone := *c
	clone.Timeout = timeout
	return &clone
}
