package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const (
	// DefaultTimeout bounds a single fetch when no client is supplied.
	DefaultTimeout = 30 * time.Second

	// MaxDocumentSize is the largest response body read from a server.
	MaxDocumentSize = 1 * 1024 * 1024

	acceptHeader = "application/ld+json, application/json"
)

// HTTPLoader fetches documents with an http.Client.
type HTTPLoader struct {
	client    *http.Client
	userAgent string
}

// NewHTTPLoader builds an HTTPLoader.
//
// Optional options:
//   - WithHTTPClient: custom HTTP client (default: 30s timeout)
//   - WithUserAgent: User-Agent request header
func NewHTTPLoader(opts ...HTTPOption) (*HTTPLoader, error) {
	l := &HTTPLoader{
		client: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		if err := opt(l); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return l, nil
}

// Fetch implements Loader.
func (l *HTTPLoader) Fetch(ctx context.Context, url string) (map[string]any, error) {
	doc, _, err := l.FetchWithTTL(ctx, url)
	return doc, err
}

// FetchWithTTL fetches url and also returns the lifetime the server allows
// the document to be cached for: 0 when it does not say, NoStore when it
// forbids caching.
func (l *HTTPLoader) FetchWithTTL(ctx context.Context, url string) (map[string]any, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", acceptHeader)
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, &StatusError{URL: url, StatusCode: resp.StatusCode}
	}

	var ttl time.Duration
	if cacheControl := resp.Header.Get("Cache-Control"); cacheControl != "" {
		ttl = parseCacheControl(cacheControl)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize+1))
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}
	if len(body) > MaxDocumentSize {
		return nil, 0, fmt.Errorf("document at %s exceeds %d bytes", url, MaxDocumentSize)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, 0, fmt.Errorf("failed to parse document: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, 0, fmt.Errorf("%s: %w", url, ErrNotObject)
	}
	return obj, ttl, nil
}

// NoStore is the TTL reported for responses that must not be cached.
const NoStore time.Duration = -1

// parseCacheControl extracts max-age from a Cache-Control header. It
// returns NoStore for no-store and no-cache, and 0 when max-age is missing,
// malformed or outside one second to seven days.
func parseCacheControl(cacheControl string) time.Duration {
	const (
		maxAgePrefix = "max-age="
		minTTL       = 1 * time.Second
		maxTTL       = 7 * 24 * time.Hour
	)

	var ttl time.Duration
	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.ToLower(strings.TrimSpace(directive))
		switch {
		case directive == "no-store", directive == "no-cache":
			return NoStore
		case ttl == 0 && strings.HasPrefix(directive, maxAgePrefix):
			seconds, err := strconv.ParseInt(strings.TrimPrefix(directive, maxAgePrefix), 10, 64)
			if err != nil || seconds <= 0 {
				continue
			}
			d := time.Duration(seconds) * time.Second
			if d < minTTL || d > maxTTL {
				continue
			}
			ttl = d
		}
	}
	return ttl
}
