package badgecheck

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/openbadges/badgecheck/core"
	"github.com/openbadges/badgecheck/schema"
)

var (
	// ErrArtifactMissing is returned when a request carries no badge.
	ErrArtifactMissing = errors.New("badge artifact missing")

	// ErrInvalidRequest is returned when a request names a badge but the
	// badge could not be read from it.
	ErrInvalidRequest = errors.New("invalid verification request")
)

// Error codes for request errors. Verification failures use the codes
// from the core package.
const (
	ErrorCodeArtifactMissing = "artifact_missing"
	ErrorCodeInvalidRequest  = "invalid_request"
)

// ErrorHandler is a handler which is called when verifying a badge from an
// HTTP request fails. The err can be checked against ErrArtifactMissing,
// ErrInvalidRequest and the core sentinels (core.ErrFormat and so on).
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// ErrorResponse is the JSON body written for a failed verification.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// URL is the linked resource that could not be fetched.
	URL string `json:"url,omitempty"`

	Violations []schema.Violation `json:"violations,omitempty"`
	Failures   []core.Failure     `json:"failures,omitempty"`
}

// NewErrorResponse maps err to an HTTP status code and response body.
//
// Verification failures are client errors:
//   - 400 for requests without a readable badge and format errors
//   - 422 for classification, structural, semantic and version errors
//   - 424 when a linked badge class or issuer could not be fetched
//
// Anything else is a 500 whose message does not leak err.
func NewErrorResponse(err error) (int, ErrorResponse) {
	var (
		resourceErr *core.ResourceError
		structErr   *core.StructuralValidationError
		semErr      *core.SemanticValidationError
	)

	switch {
	case errors.Is(err, ErrArtifactMissing):
		return http.StatusBadRequest, ErrorResponse{
			Code:    ErrorCodeArtifactMissing,
			Message: "No badge was provided.",
		}
	case errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, ErrorResponse{Code: ErrorCodeInvalidRequest, Message: err.Error()}
	case errors.Is(err, core.ErrFormat):
		return http.StatusBadRequest, ErrorResponse{Code: core.ErrorCode(err), Message: err.Error()}
	case errors.As(err, &resourceErr):
		return http.StatusFailedDependency, ErrorResponse{
			Code:    core.ErrorCodeResourceFetchFailed,
			Message: err.Error(),
			URL:     resourceErr.URL,
		}
	case errors.As(err, &structErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Code:       core.ErrorCodeStructureInvalid,
			Message:    err.Error(),
			Violations: structErr.Violations,
		}
	case errors.As(err, &semErr):
		return http.StatusUnprocessableEntity, ErrorResponse{
			Code:     core.ErrorCodeSemanticInvalid,
			Message:  err.Error(),
			Failures: semErr.Failures,
		}
	case errors.Is(err, core.ErrClassification), errors.Is(err, core.ErrUnsupportedVersion):
		return http.StatusUnprocessableEntity, ErrorResponse{Code: core.ErrorCode(err), Message: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Code:    core.ErrorCodeInternal,
			Message: "Something went wrong while verifying the badge.",
		}
	}
}

// DefaultErrorHandler is the default error handler implementation for the
// Verifier. If an error handler is not provided via the WithErrorHandler
// option this will be used.
func DefaultErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	status, body := NewErrorResponse(err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// NewRequestError marks a failure to read a badge from a request, so that
// it matches ErrInvalidRequest. Adapters for other frameworks use it to
// report ArtifactExtractor errors.
func NewRequestError(details error) error {
	return requestError{details: details}
}

// requestError wraps a failure to read a badge from a request with the
// concrete error ErrInvalidRequest.
type requestError struct {
	details error
}

// Is allows the error to support equality to ErrInvalidRequest.
func (e requestError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// Error returns a string representation of the error.
func (e requestError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidRequest, e.details)
}

// Unwrap allows the error to support equality to the
// underlying error and not just ErrInvalidRequest.
func (e requestError) Unwrap() error {
	return e.details
}
