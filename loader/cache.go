package loader

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultCacheTTL is how long CachingLoader keeps a document when neither
// the caller nor the server asks for longer.
const DefaultCacheTTL = 5 * time.Minute

// ttlFetcher is implemented by loaders that know how long a document may
// be cached, such as HTTPLoader.
type ttlFetcher interface {
	FetchWithTTL(ctx context.Context, url string) (map[string]any, time.Duration, error)
}

// CachingLoader wraps a Loader and keeps successfully fetched documents in
// memory. Concurrent fetches of the same URL share one request. Every call
// returns its own copy of the document, so a warm cache behaves exactly
// like a cold one.
type CachingLoader struct {
	next Loader
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	doc       map[string]any
	expiresAt time.Time
	inflight  chan struct{} // closed when the running fetch finishes
}

// NewCachingLoader builds a CachingLoader in front of next.
//
// Optional options:
//   - WithCacheTTL: how long documents are kept (default: 5 minutes)
func NewCachingLoader(next Loader, opts ...CacheOption) (*CachingLoader, error) {
	if next == nil {
		return nil, fmt.Errorf("loader cannot be nil")
	}
	c := &CachingLoader{
		next:    next,
		ttl:     DefaultCacheTTL,
		now:     time.Now,
		entries: make(map[string]*cacheEntry),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	return c, nil
}

// Fetch implements Loader.
func (c *CachingLoader) Fetch(ctx context.Context, url string) (map[string]any, error) {
	now := c.now()

	c.mu.RLock()
	if entry, ok := c.entries[url]; ok && entry.doc != nil && now.Before(entry.expiresAt) {
		doc := entry.doc
		c.mu.RUnlock()
		return copyObject(doc), nil
	}
	c.mu.RUnlock()

	for {
		c.mu.Lock()
		entry, ok := c.entries[url]
		if !ok {
			entry = &cacheEntry{}
			c.entries[url] = entry
		}
		if entry.doc != nil && c.now().Before(entry.expiresAt) {
			doc := entry.doc
			c.mu.Unlock()
			return copyObject(doc), nil
		}

		// Wait for the running fetch, then look again. A failed or
		// uncacheable fetch leaves the entry empty and we fetch ourselves.
		if wait := entry.inflight; wait != nil {
			c.mu.Unlock()
			select {
			case <-wait:
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		done := make(chan struct{})
		entry.inflight = done
		c.mu.Unlock()

		return c.fill(ctx, url, entry, done)
	}
}

// fill runs the fetch owned by this caller and publishes the result.
func (c *CachingLoader) fill(ctx context.Context, url string, entry *cacheEntry, done chan struct{}) (map[string]any, error) {
	defer close(done)

	doc, serverTTL, err := c.fetch(ctx, url)

	c.mu.Lock()
	entry.inflight = nil
	if err == nil && serverTTL != NoStore {
		effectiveTTL := c.ttl
		if serverTTL > effectiveTTL {
			effectiveTTL = serverTTL
		}
		entry.doc = doc
		entry.expiresAt = c.now().Add(effectiveTTL)
	}
	c.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return copyObject(doc), nil
}

func (c *CachingLoader) fetch(ctx context.Context, url string) (map[string]any, time.Duration, error) {
	if f, ok := c.next.(ttlFetcher); ok {
		return f.FetchWithTTL(ctx, url)
	}
	doc, err := c.next.Fetch(ctx, url)
	return doc, 0, err
}

// Len returns the number of cached documents, including expired ones not
// yet replaced.
func (c *CachingLoader) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, e := range c.entries {
		if e.doc != nil {
			n++
		}
	}
	return n
}

// Purge drops every cached document.
func (c *CachingLoader) Purge() {
	c.mu.Lock()
	c.entries = make(map[string]*cacheEntry)
	c.mu.Unlock()
}
