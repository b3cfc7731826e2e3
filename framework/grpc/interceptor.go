package badgegrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"github.com/openbadges/badgecheck"
	"github.com/openbadges/badgecheck/core"
)

// Interceptor verifies badges carried by gRPC requests.
type Interceptor struct {
	verifier        *badgecheck.Verifier
	extractor       ArtifactExtractor
	errorHandler    ErrorHandler
	excludedMethods map[string]bool
	logger          badgecheck.Logger
}

// New creates a new gRPC badge interceptor with the provided options.
// WithVerifier option is required.
func New(opts ...Option) (*Interceptor, error) {
	i := &Interceptor{
		extractor:       MessageArtifactExtractor,
		errorHandler:    DefaultErrorHandler,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	if i.verifier == nil {
		return nil, errors.New("verifier is required, use WithVerifier option")
	}

	return i, nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor that
// verifies the badge in each request message and makes the result
// available in the request context. Errors returned by the handler are
// passed through the error handler too.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			if i.logger != nil {
				i.logger.Debug("skipping badge verification for excluded method",
					"method", info.FullMethod)
			}
			return handler(ctx, req)
		}

		verifiedCtx, err := i.verifyRequest(ctx, req, info.FullMethod)
		if err != nil {
			return nil, err
		}

		resp, err := handler(verifiedCtx, req)
		if err != nil {
			return nil, i.errorHandler(err)
		}
		return resp, nil
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor that maps
// errors returned by stream handlers to status errors. Streams carry no
// single request message, so handlers verify received messages themselves.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if err := handler(srv, ss); err != nil {
			return i.errorHandler(err)
		}
		return nil
	}
}

// verifyRequest extracts and verifies the badge in req.
func (i *Interceptor) verifyRequest(ctx context.Context, req any, method string) (context.Context, error) {
	badge, err := i.extractor(ctx, req)
	if err != nil {
		if i.logger != nil {
			i.logger.Error("failed to extract badge from request",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(badgecheck.NewRequestError(err))
	}
	if badge == nil {
		return ctx, nil
	}

	result, err := i.verifier.Verify(ctx, badge.Artifact, badge.Options()...)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("badge verification failed",
				"error", err,
				"method", method)
		}
		return ctx, i.errorHandler(err)
	}

	if i.logger != nil {
		i.logger.Debug("badge verification successful, setting result in context",
			"method", method)
	}
	return core.SetResult(ctx, result), nil
}
