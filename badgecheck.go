package badgecheck

import (
	"context"
	"fmt"
	"time"

	"github.com/openbadges/badgecheck/core"
	"github.com/openbadges/badgecheck/loader"
)

// outcomeValid tags successful verifications in metrics. Failures are
// tagged with their error code.
const outcomeValid = "valid"

// Result is the outcome of a verification.
type Result = core.Result

// Verifier verifies Open Badges. It wraps the core engine with metrics,
// tracing and HTTP handling, and is safe for concurrent use.
type Verifier struct {
	core         *core.Core
	errorHandler ErrorHandler
	extractor    ArtifactExtractor
	logger       Logger
	metrics      Metrics
	tracer       Tracer

	// cache is the default loader's cache, nil when WithLoader was used.
	cache *loader.CachingLoader

	// Temporary fields used during construction
	loader    loader.Loader
	httpOpts  []loader.HTTPOption
	cacheOpts []loader.CacheOption
	coreOpts  []core.Option
}

// New constructs a new Verifier instance with the supplied options.
// Without WithLoader, linked components are fetched over HTTP and cached.
//
// Example:
//
//	v, err := badgecheck.New(
//	    badgecheck.WithCacheTTL(10*time.Minute),
//	    badgecheck.WithLogger(slog.Default()),
//	)
//	if err != nil {
//	    log.Fatalf("failed to create verifier: %v", err)
//	}
func New(opts ...Option) (*Verifier, error) {
	v := &Verifier{}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if err := v.validate(); err != nil {
		return nil, fmt.Errorf("invalid verifier configuration: %w", err)
	}

	if err := v.applyDefaults(); err != nil {
		return nil, err
	}

	if err := v.createCore(); err != nil {
		return nil, fmt.Errorf("failed to create core: %w", err)
	}

	return v, nil
}

// validate rejects option combinations that cannot both apply.
func (v *Verifier) validate() error {
	if v.loader != nil && (len(v.httpOpts) > 0 || len(v.cacheOpts) > 0) {
		return ErrLoaderConflict
	}
	return nil
}

func (v *Verifier) applyDefaults() error {
	if v.errorHandler == nil {
		v.errorHandler = DefaultErrorHandler
	}
	if v.extractor == nil {
		v.extractor = BodyArtifactExtractor
	}
	if v.metrics == nil {
		v.metrics = &NoopMetrics{}
	}
	if v.tracer == nil {
		v.tracer = &NoopTracer{}
	}

	if v.loader == nil {
		httpLoader, err := loader.NewHTTPLoader(v.httpOpts...)
		if err != nil {
			return fmt.Errorf("failed to create loader: %w", err)
		}
		cache, err := loader.NewCachingLoader(httpLoader, v.cacheOpts...)
		if err != nil {
			return fmt.Errorf("failed to create loader: %w", err)
		}
		v.cache = cache
		v.loader = cache
	}
	return nil
}

func (v *Verifier) createCore() error {
	coreOpts := []core.Option{core.WithLoader(v.loader)}
	if v.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(v.logger))
	}
	coreOpts = append(coreOpts, v.coreOpts...)

	c, err := core.New(coreOpts...)
	if err != nil {
		return err
	}
	v.core = c
	return nil
}

// Verify verifies artifact, which may be baked PNG or SVG bytes, JSON
// text, a hosted-assertion URL or an already parsed object.
//
// On failure the error matches one of the core sentinels, and the result,
// when not nil, holds whatever was resolved before the failure.
func (v *Verifier) Verify(ctx context.Context, artifact any, opts ...VerifyOption) (*Result, error) {
	ctx, span := v.tracer.StartSpan(ctx, "badgecheck.Verify")
	defer span.Finish()

	start := time.Now()
	result, err := v.core.Verify(ctx, artifact, opts...)
	elapsed := time.Since(start)

	outcome, version := outcomeValid, ""
	if err != nil {
		outcome = core.ErrorCode(err)
		span.RecordError(err)
	}
	if result != nil {
		version = result.Version
	}
	span.SetTag("badge.version", version)
	span.SetTag("badge.outcome", outcome)

	v.metrics.IncCounter(MetricVerifications, map[string]string{"outcome": outcome, "version": version})
	v.metrics.ObserveHistogram(MetricVerificationSeconds, elapsed.Seconds(), map[string]string{"outcome": outcome})
	if v.cache != nil {
		v.metrics.SetGauge(MetricCachedDocuments, float64(v.cache.Len()), map[string]string{})
	}

	return result, err
}

// GetResult retrieves the verification result stored in the context by
// Middleware.
//
// Example:
//
//	result, err := badgecheck.GetResult(r.Context())
//	if err != nil {
//	    http.Error(w, "no badge verified", http.StatusInternalServerError)
//	    return
//	}
//	fmt.Println(result.Version)
func GetResult(ctx context.Context) (*Result, error) {
	return core.GetResult(ctx)
}

// MustGetResult retrieves the verification result from the context or
// panics. Use only after Middleware has run.
func MustGetResult(ctx context.Context) *Result {
	result, err := core.GetResult(ctx)
	if err != nil {
		panic(err)
	}
	return result
}

// HasResult checks if a verification result exists in the context.
func HasResult(ctx context.Context) bool {
	return core.HasResult(ctx)
}
