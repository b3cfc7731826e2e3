package badgecheck

import (
	"errors"
	"net/http"
	"time"

	"github.com/openbadges/badgecheck/core"
	"github.com/openbadges/badgecheck/loader"
)

// Option configures the Verifier.
// Returns error for validation failures.
type Option func(*Verifier) error

// WithLoader sets the loader used to fetch linked badge classes and
// issuers, replacing the default caching HTTP loader. It cannot be combined
// with WithHTTPClient, WithUserAgent or WithCacheTTL, which configure the
// default loader.
//
// Example:
//
//	v, err := badgecheck.New(
//	    badgecheck.WithLoader(loader.StaticLoader{
//	        "https://example.org/badge.json": badgeClass,
//	    }),
//	)
func WithLoader(l loader.Loader) Option {
	return func(v *Verifier) error {
		if l == nil {
			return ErrLoaderNil
		}
		v.loader = l
		return nil
	}
}

// WithHTTPClient sets the HTTP client of the default loader.
//
// Default: a client with a 30 second timeout
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) error {
		if c == nil {
			return ErrHTTPClientNil
		}
		v.httpOpts = append(v.httpOpts, loader.WithHTTPClient(c))
		return nil
	}
}

// WithUserAgent sets the User-Agent header the default loader sends.
func WithUserAgent(ua string) Option {
	return func(v *Verifier) error {
		v.httpOpts = append(v.httpOpts, loader.WithUserAgent(ua))
		return nil
	}
}

// WithCacheTTL sets how long the default loader caches fetched documents.
// A document served with a longer Cache-Control max-age is kept for that
// long instead.
//
// Default: loader.DefaultCacheTTL
func WithCacheTTL(ttl time.Duration) Option {
	return func(v *Verifier) error {
		if ttl < 0 {
			return ErrCacheTTLNegative
		}
		v.cacheOpts = append(v.cacheOpts, loader.WithCacheTTL(ttl))
		return nil
	}
}

// WithRejectLegacyVersions makes Verify fail with core.ErrUnsupportedVersion
// for badges older than 1.0.
//
// Default: false (0.5 badges are verified)
func WithRejectLegacyVersions(reject bool) Option {
	return func(v *Verifier) error {
		v.coreOpts = append(v.coreOpts, core.WithRejectLegacyVersions(reject))
		return nil
	}
}

// WithCoreOptions passes options straight to the verification engine.
func WithCoreOptions(opts ...core.Option) Option {
	return func(v *Verifier) error {
		v.coreOpts = append(v.coreOpts, opts...)
		return nil
	}
}

// WithErrorHandler sets the handler called when verifying a badge from an
// HTTP request fails. See the ErrorHandler type for more information.
//
// Default: DefaultErrorHandler
func WithErrorHandler(h ErrorHandler) Option {
	return func(v *Verifier) error {
		if h == nil {
			return ErrErrorHandlerNil
		}
		v.errorHandler = h
		return nil
	}
}

// WithArtifactExtractor sets the function that reads the badge from an
// HTTP request.
//
// Default: BodyArtifactExtractor
func WithArtifactExtractor(e ArtifactExtractor) Option {
	return func(v *Verifier) error {
		if e == nil {
			return ErrArtifactExtractorNil
		}
		v.extractor = e
		return nil
	}
}

// WithLogger sets an optional logger for the Verifier.
// The logger is used by the HTTP handlers and by the core engine.
//
// The logger interface is compatible with log/slog.Logger and similar loggers.
//
// Example:
//
//	v, err := badgecheck.New(
//	    badgecheck.WithLogger(slog.Default()),
//	)
func WithLogger(logger Logger) Option {
	return func(v *Verifier) error {
		if logger == nil {
			return ErrLoggerNil
		}
		v.logger = logger
		return nil
	}
}

// WithMetrics sets the metrics sink.
//
// Default: NoopMetrics
func WithMetrics(m Metrics) Option {
	return func(v *Verifier) error {
		if m == nil {
			return ErrMetricsNil
		}
		v.metrics = m
		return nil
	}
}

// WithTracer sets the tracer that spans every verification.
//
// Default: NoopTracer
func WithTracer(t Tracer) Option {
	return func(v *Verifier) error {
		if t == nil {
			return ErrTracerNil
		}
		v.tracer = t
		return nil
	}
}

// Sentinel errors for configuration validation
var (
	ErrLoaderNil            = errors.New("loader cannot be nil")
	ErrLoaderConflict       = errors.New("WithLoader cannot be combined with WithHTTPClient, WithUserAgent or WithCacheTTL")
	ErrHTTPClientNil        = errors.New("http client cannot be nil")
	ErrCacheTTLNegative     = errors.New("cache TTL cannot be negative")
	ErrErrorHandlerNil      = errors.New("errorHandler cannot be nil")
	ErrArtifactExtractorNil = errors.New("artifactExtractor cannot be nil")
	ErrLoggerNil            = errors.New("logger cannot be nil")
	ErrMetricsNil           = errors.New("metrics cannot be nil")
	ErrTracerNil            = errors.New("tracer cannot be nil")
)

// VerifyOption configures a single verification.
type VerifyOption = core.VerifyOption

// WithRecipients sets the identifiers the caller has verified as
// belonging to the badge holder.
func WithRecipients(identifiers ...string) VerifyOption {
	return core.WithRecipients(identifiers...)
}

// WithInstanceURL sets where the assertion is hosted.
func WithInstanceURL(url string) VerifyOption {
	return core.WithInstanceURL(url)
}
