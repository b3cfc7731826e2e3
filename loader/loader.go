// Package loader fetches the JSON documents a badge links to.
//
// A Loader turns a URL into a decoded JSON object. HTTPLoader does so over
// the network, CachingLoader keeps recent documents in memory and
// StaticLoader answers from a fixed set of documents, which is convenient
// in tests and for offline verification.
package loader

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by StaticLoader for unknown URLs.
	ErrNotFound = errors.New("document not found")

	// ErrNotObject is returned when a document is valid JSON but not an object.
	ErrNotObject = errors.New("document is not a JSON object")
)

// Loader fetches the JSON object published at a URL.
type Loader interface {
	Fetch(ctx context.Context, url string) (map[string]any, error)
}

// Func adapts a function to the Loader interface.
type Func func(ctx context.Context, url string) (map[string]any, error)

// Fetch calls f(ctx, url).
func (f Func) Fetch(ctx context.Context, url string) (map[string]any, error) {
	return f(ctx, url)
}

// StatusError is returned when a server answers with a status other than
// 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s returned status %d, expected 200", e.URL, e.StatusCode)
}

// StaticLoader serves documents from memory. Lookups return deep copies so
// callers may modify what they receive.
type StaticLoader map[string]map[string]any

// Fetch returns the document stored under url.
func (s StaticLoader) Fetch(ctx context.Context, url string) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc, ok := s[url]
	if !ok {
		return nil, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	return copyObject(doc), nil
}

func copyObject(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return copyObject(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = copyValue(item)
		}
		return out
	default:
		return v
	}
}
