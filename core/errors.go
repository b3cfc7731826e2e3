package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/openbadges/badgecheck/badge"
	"github.com/openbadges/badgecheck/schema"
)

// Sentinel errors, one per failure kind. Every error returned by Verify
// matches exactly one of them with errors.Is.
var (
	// ErrFormat is returned when the input cannot be turned into a badge
	// object: unrecognized bytes, an image without a payload, malformed
	// JSON, or a signed badge.
	ErrFormat = errors.New("badge format error")

	// ErrClassification is returned when no known specification version
	// matches the badge.
	ErrClassification = errors.New("badge classification error")

	// ErrResource is returned when a linked component cannot be fetched.
	ErrResource = errors.New("badge resource error")

	// ErrStructuralValidation is returned when a component does not
	// conform to its version's schema.
	ErrStructuralValidation = errors.New("badge structural validation error")

	// ErrSemanticValidation is returned when an error-severity semantic
	// rule fails.
	ErrSemanticValidation = errors.New("badge semantic validation error")

	// ErrUnsupportedVersion is returned for versions the verifier was
	// configured not to accept.
	ErrUnsupportedVersion = errors.New("unsupported badge version")

	// ErrResultNotFound is returned when no verification result is stored
	// in a context.
	ErrResultNotFound = errors.New("verification result not found in context")
)

// Error codes
const (
	ErrorCodeFormatInvalid          = "format_invalid"
	ErrorCodeImageNotBaked          = "image_not_baked"
	ErrorCodeSignedBadgeUnsupported = "signed_badge_unsupported"
	ErrorCodeVersionUnclassifiable  = "version_unclassifiable"
	ErrorCodeUnexpectedType         = "unexpected_type"
	ErrorCodeResourceFetchFailed    = "resource_fetch_failed"
	ErrorCodeStructureInvalid       = "structure_invalid"
	ErrorCodeSemanticInvalid        = "semantic_invalid"
	ErrorCodeVersionUnsupported     = "version_unsupported"
	ErrorCodeInternal               = "internal_error"
)

// FormatError reports input that could not be normalized.
type FormatError struct {
	Code    string
	Message string
	Details error
}

func (e *FormatError) Error() string {
	return withDetails(e.Message, e.Details)
}

func (e *FormatError) Unwrap() error { return e.Details }

// Is allows the error to be compared with ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// ClassificationError reports a badge whose version could not be determined.
type ClassificationError struct {
	Code    string
	Message string
	Details error
}

func (e *ClassificationError) Error() string {
	return withDetails(e.Message, e.Details)
}

func (e *ClassificationError) Unwrap() error { return e.Details }

// Is allows the error to be compared with ErrClassification.
func (e *ClassificationError) Is(target error) bool { return target == ErrClassification }

// ResourceError reports a linked component that could not be fetched.
type ResourceError struct {
	URL     string
	Role    badge.Role
	Details error
}

func (e *ResourceError) Error() string {
	return withDetails(fmt.Sprintf("could not fetch %s from %s", e.Role, e.URL), e.Details)
}

func (e *ResourceError) Unwrap() error { return e.Details }

// Is allows the error to be compared with ErrResource.
func (e *ResourceError) Is(target error) bool { return target == ErrResource }

// StructuralValidationError reports the first component that failed its
// schema.
type StructuralValidationError struct {
	Role       badge.Role
	Violations []schema.Violation
}

func (e *StructuralValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	msg := fmt.Sprintf("%s is not structurally valid", e.Role)
	if len(parts) > 0 {
		msg += ": " + strings.Join(parts, "; ")
	}
	return msg
}

// Is allows the error to be compared with ErrStructuralValidation.
func (e *StructuralValidationError) Is(target error) bool { return target == ErrStructuralValidation }

// Failure is one failed semantic check.
type Failure struct {
	Check   string `json:"check"`
	Message string `json:"message"`
}

// SemanticValidationError lists the error-severity rules a badge failed.
type SemanticValidationError struct {
	Failures []Failure
}

func (e *SemanticValidationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Check+": "+f.Message)
	}
	return "badge failed verification: " + strings.Join(parts, "; ")
}

// Is allows the error to be compared with ErrSemanticValidation.
func (e *SemanticValidationError) Is(target error) bool { return target == ErrSemanticValidation }

// UnsupportedVersionError reports a badge of a version the verifier does
// not accept. URL is set when the input was a bare hosted-assertion URL.
type UnsupportedVersionError struct {
	Version string
	URL     string
}

func (e *UnsupportedVersionError) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("badge version %s is not supported: fetch %s and verify the hosted assertion", e.Version, e.URL)
	}
	return fmt.Sprintf("badge version %s is not supported", e.Version)
}

// Is allows the error to be compared with ErrUnsupportedVersion.
func (e *UnsupportedVersionError) Is(target error) bool { return target == ErrUnsupportedVersion }

// ErrorCode returns the machine-readable code for err, or
// ErrorCodeInternal when err is not one of the verification errors.
func ErrorCode(err error) string {
	var (
		formatErr   *FormatError
		classErr    *ClassificationError
		resourceErr *ResourceError
		structErr   *StructuralValidationError
		semErr      *SemanticValidationError
		versionErr  *UnsupportedVersionError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &formatErr):
		return formatErr.Code
	case errors.As(err, &classErr):
		return classErr.Code
	case errors.As(err, &resourceErr):
		return ErrorCodeResourceFetchFailed
	case errors.As(err, &structErr):
		return ErrorCodeStructureInvalid
	case errors.As(err, &semErr):
		return ErrorCodeSemanticInvalid
	case errors.As(err, &versionErr):
		return ErrorCodeVersionUnsupported
	}
	return ErrorCodeInternal
}

func withDetails(msg string, details error) string {
	if details != nil {
		return msg + ": " + details.Error()
	}
	return msg
}
