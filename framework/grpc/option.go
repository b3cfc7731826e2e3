package badgegrpc

import (
	"errors"

	"github.com/openbadges/badgecheck"
)

// Option configures the interceptor.
type Option func(*Interceptor) error

// WithVerifier sets the verifier (REQUIRED).
func WithVerifier(v *badgecheck.Verifier) Option {
	return func(i *Interceptor) error {
		if v == nil {
			return errors.New("verifier cannot be nil")
		}
		i.verifier = v
		return nil
	}
}

// WithErrorHandler sets a custom error handler.
// Default is DefaultErrorHandler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(i *Interceptor) error {
		if handler == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = handler
		return nil
	}
}

// WithArtifactExtractor sets a custom artifact extractor.
// Default is MessageArtifactExtractor.
func WithArtifactExtractor(extractor ArtifactExtractor) Option {
	return func(i *Interceptor) error {
		if extractor == nil {
			return errors.New("artifact extractor cannot be nil")
		}
		i.extractor = extractor
		return nil
	}
}

// WithExcludedMethods sets full method names that skip verification.
func WithExcludedMethods(methods ...string) Option {
	return func(i *Interceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}

// WithLogger sets an optional logger for the interceptor.
//
// The logger interface is compatible with log/slog.Logger and similar loggers.
func WithLogger(logger badgecheck.Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}
