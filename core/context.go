package core

import "context"

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	resultKey contextKey = iota
)

// GetResult retrieves the verification result an adapter stored in ctx.
func GetResult(ctx context.Context) (*Result, error) {
	r, ok := ctx.Value(resultKey).(*Result)
	if !ok || r == nil {
		return nil, ErrResultNotFound
	}
	return r, nil
}

// SetResult stores a verification result in ctx.
func SetResult(ctx context.Context, r *Result) context.Context {
	return context.WithValue(ctx, resultKey, r)
}

// HasResult checks if a result exists in ctx without retrieving it.
func HasResult(ctx context.Context) bool {
	return ctx.Value(resultKey) != nil
}
