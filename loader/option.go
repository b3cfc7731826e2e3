package loader

import (
	"errors"
	"net/http"
	"time"
)

// HTTPOption configures an HTTPLoader.
type HTTPOption func(*HTTPLoader) error

// WithHTTPClient sets the client used for requests. If not specified, a
// client with a 30s timeout is used.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(l *HTTPLoader) error {
		if c == nil {
			return errors.New("HTTP client cannot be nil")
		}
		l.client = c
		return nil
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) HTTPOption {
	return func(l *HTTPLoader) error {
		l.userAgent = ua
		return nil
	}
}

// CacheOption configures a CachingLoader.
type CacheOption func(*CachingLoader) error

// WithCacheTTL sets how long documents are cached. A server's Cache-Control
// max-age extends it; it is never shortened. Zero selects DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *CachingLoader) error {
		if ttl < 0 {
			return errors.New("cache TTL cannot be negative")
		}
		if ttl == 0 {
			ttl = DefaultCacheTTL
		}
		c.ttl = ttl
		return nil
	}
}

func withClock(now func() time.Time) CacheOption {
	return func(c *CachingLoader) error {
		c.now = now
		return nil
	}
}
