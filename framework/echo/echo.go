// Package badgeecho adapts a badgecheck.Verifier to echo.
package badgeecho

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/openbadges/badgecheck"
	"github.com/openbadges/badgecheck/core"
)

// DefaultResultKey is the echo context key results are stored under.
var DefaultResultKey = "badge"

// config holds all configuration for the middleware
type config struct {
	errorHandler func(echo.Context, error) error
	contextKey   string
	extractor    badgecheck.ArtifactExtractor
}

// Option is a function that configures the middleware
type Option func(*config)

// WithErrorHandler sets a custom error handler
func WithErrorHandler(handler func(echo.Context, error) error) Option {
	return func(c *config) {
		c.errorHandler = handler
	}
}

// WithContextKey sets a custom context key to store results
func WithContextKey(key string) Option {
	return func(c *config) {
		c.contextKey = key
	}
}

// WithArtifactExtractor sets a custom artifact extractor
func WithArtifactExtractor(extractor badgecheck.ArtifactExtractor) Option {
	return func(c *config) {
		c.extractor = extractor
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		errorHandler: DefaultErrorHandler,
		contextKey:   DefaultResultKey,
		extractor:    badgecheck.BodyArtifactExtractor,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHandler returns an echo handler that verifies the badge carried by
// the request and responds with the result as JSON.
func NewHandler(v *badgecheck.Verifier, opts ...Option) echo.HandlerFunc {
	cfg := newConfig(opts)
	return func(c echo.Context) error {
		result, err := verify(c, v, cfg)
		if err != nil {
			return cfg.errorHandler(c, err)
		}
		return c.JSON(http.StatusOK, result)
	}
}

// NewMiddleware verifies the badge carried by each request and, when it
// verifies, stores the result in the echo context and the request context
// before calling the next handler.
func NewMiddleware(v *badgecheck.Verifier, opts ...Option) echo.MiddlewareFunc {
	cfg := newConfig(opts)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			result, err := verify(c, v, cfg)
			if err != nil {
				return cfg.errorHandler(c, err)
			}

			c.Set(cfg.contextKey, result)
			c.SetRequest(c.Request().WithContext(core.SetResult(c.Request().Context(), result)))
			return next(c)
		}
	}
}

func verify(c echo.Context, v *badgecheck.Verifier, cfg *config) (*badgecheck.Result, error) {
	req, err := cfg.extractor(c.Request())
	if err != nil {
		return nil, badgecheck.NewRequestError(err)
	}
	if req == nil {
		return nil, badgecheck.ErrArtifactMissing
	}
	return v.Verify(c.Request().Context(), req.Artifact, req.Options()...)
}

// DefaultErrorHandler responds with the status and body
// badgecheck.NewErrorResponse maps err to.
func DefaultErrorHandler(c echo.Context, err error) error {
	status, body := badgecheck.NewErrorResponse(err)
	return c.JSON(status, body)
}

// GetResult extracts the verification result from the echo context
func GetResult(c echo.Context, contextKey string) (*badgecheck.Result, bool) {
	value := c.Get(contextKey)
	if value == nil {
		return nil, false
	}

	result, ok := value.(*badgecheck.Result)
	return result, ok
}
