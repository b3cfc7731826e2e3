package badgegrpc

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/openbadges/badgecheck"
	"github.com/openbadges/badgecheck/core"
)

// ErrorHandler converts verification errors to gRPC status errors.
type ErrorHandler func(error) error

// DefaultErrorHandler maps verification errors to gRPC status codes.
// Errors that already carry a status are returned unchanged.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	return status.Error(Code(err), message(err))
}

// Code returns the gRPC status code for a verification error.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, badgecheck.ErrArtifactMissing),
		errors.Is(err, badgecheck.ErrInvalidRequest),
		errors.Is(err, core.ErrFormat):
		return codes.InvalidArgument
	case errors.Is(err, core.ErrResource):
		return codes.Unavailable
	case errors.Is(err, core.ErrClassification),
		errors.Is(err, core.ErrStructuralValidation),
		errors.Is(err, core.ErrSemanticValidation),
		errors.Is(err, core.ErrUnsupportedVersion):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// message keeps the detail of verification errors and hides the rest.
func message(err error) string {
	if Code(err) == codes.Internal {
		return "unable to verify badge"
	}
	return err.Error()
}
